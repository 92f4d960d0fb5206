// Package render derives display directives for a single slide.
//
// Build is a pure, total function: the same slide text, ordinal, image and
// palette always produce the same Plan, and no input makes it fail.
package render

import (
	"regexp"
	"strings"

	"github.com/ziadkadry99/slide/internal/theme"
)

// Size is a relative type scale.
type Size string

const (
	SizeLarge   Size = "large"
	SizeXLarge  Size = "xlarge"
	SizeXXLarge Size = "xxlarge"
)

// Align is a text alignment.
type Align string

const (
	AlignStart  Align = "start"
	AlignCenter Align = "center"
)

// PanelAlign places the translucent panel used over image backgrounds.
type PanelAlign string

const (
	PanelNone  PanelAlign = ""
	PanelStart PanelAlign = "start"
	PanelEnd   PanelAlign = "end"
)

// Background is either a palette color name or a CSS style "url(...)" value.
type Background string

// IsImage reports whether b is an image reference.
func (b Background) IsImage() bool {
	return strings.HasPrefix(string(b), "url(")
}

// URL returns the image address of an image background, or "".
func (b Background) URL() string {
	if !b.IsImage() {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(string(b), "url("), ")")
}

// Plan holds the render directives for one slide.
type Plan struct {
	Body        string
	Background  Background
	Footer      string
	HeadingSize Size
	TextSize    Size
	TextAlign   Align
	Panel       PanelAlign
}

// HasFooter reports whether a footer strip should be drawn.
func (p Plan) HasFooter() bool {
	return p.Footer != ""
}

var (
	imageLine = regexp.MustCompile(`^!\[.*\]\((.+)\)$`)
	colorLine = regexp.MustCompile(`^!([A-Za-z][\w-]*)$`)
)

// fewLines is the non-blank line count under which the larger type scale is
// used.
const fewLines = 5

// Build derives the Plan for slide at position ordinal. image is an
// externally resolved background ("url(...)"); anything else is ignored.
func Build(slide string, ordinal int, image string, palette theme.Palette) Plan {
	lines := strings.Split(slide, "\n")
	for len(lines) > 1 && isBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}

	var plan Plan
	switch second := line(lines, 1); {
	case imageLine.MatchString(second):
		m := imageLine.FindStringSubmatch(second)
		plan.Background = Background("url(" + m[1] + ")")
		lines = remove(lines, 1)
	case colorLine.MatchString(second) && palette.Has(colorLine.FindStringSubmatch(second)[1]):
		plan.Background = Background(colorLine.FindStringSubmatch(second)[1])
		lines = remove(lines, 1)
	case Background(image).IsImage():
		plan.Background = Background(image)
	default:
		plan.Background = Background(palette.Accent(ordinal))
	}

	trailing := false
	if first := line(lines, 0); strings.HasPrefix(first, "#") {
		trimmed := strings.TrimRight(first, " \t")
		trailing = trimmed != first
		if trimmed == "#" {
			lines = remove(lines, 0)
		} else {
			lines[0] = trimmed
		}
	}

	if n := len(lines); n >= 3 && isBlank(lines[n-3]) && isBlank(lines[n-2]) && !isBlank(lines[n-1]) {
		plan.Footer = strings.TrimSpace(lines[n-1])
		lines = lines[:n-3]
	}

	plan.Body = strings.Join(lines, "\n")

	if countNonBlank(lines) < fewLines {
		plan.HeadingSize, plan.TextSize = SizeXLarge, SizeXXLarge
	} else {
		plan.HeadingSize, plan.TextSize = SizeLarge, SizeXLarge
	}

	plan.TextAlign = AlignStart
	if !strings.Contains(strings.TrimSpace(plan.Body), "\n") {
		plan.TextAlign = AlignCenter
	}

	if plan.Background.IsImage() {
		plan.Panel = PanelStart
		if trailing {
			plan.Panel = PanelEnd
		}
	}
	return plan
}

// NameBackground picks a deterministic accent for a deck name by summing its
// code points. Deck listings use it so each name keeps its color.
func NameBackground(name string, palette theme.Palette) string {
	sum := 0
	for _, r := range name {
		sum += int(r)
	}
	return palette.Accent(sum)
}

func line(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}

func remove(lines []string, i int) []string {
	out := make([]string, 0, len(lines)-1)
	out = append(out, lines[:i]...)
	return append(out, lines[i+1:]...)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func countNonBlank(lines []string) int {
	n := 0
	for _, l := range lines {
		if !isBlank(l) {
			n++
		}
	}
	return n
}

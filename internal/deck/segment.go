package deck

import "regexp"

// boundary matches a level-1 heading marker preceded by whitespace. The
// marker at position 0 of the text has no preceding whitespace and is not a
// boundary.
var boundary = regexp.MustCompile(`\s# `)

// Segment splits deck text into slides. Every slide after the first gets its
// "# " marker back so headings survive the split. The result always has at
// least one element; Segment("") is [""].
func Segment(text string) []string {
	parts := boundary.Split(text, -1)
	for i := 1; i < len(parts); i++ {
		parts[i] = "# " + parts[i]
	}
	return parts
}

// SlideIndexForOffset maps a byte offset into text to the index of the slide
// that contains it. Each slide accounts for its length plus the one
// whitespace character consumed by the boundary. Offsets past the end clamp
// to the last slide, negative offsets to the first.
func SlideIndexForOffset(text string, offset int) int {
	slides := Segment(text)
	if offset <= 0 {
		return 0
	}
	end := 0
	for i, s := range slides {
		end += len(s) + 1
		if end > offset {
			return i
		}
	}
	return len(slides) - 1
}

// ClampIndex keeps i within [0, n-1]. With n <= 0 it returns 0.
func ClampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

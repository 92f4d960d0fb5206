package deck

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSegmentEmpty(t *testing.T) {
	got := Segment("")
	if len(got) != 1 || got[0] != "" {
		t.Fatalf("Segment(\"\") = %q, want [\"\"]", got)
	}
}

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single", "# Only", []string{"# Only"}},
		{"no heading", "just words", []string{"just words"}},
		{"two slides", "# A\n\nbody\n\n# B\nbody2", []string{"# A\n\nbody\n", "# B\nbody2"}},
		{"initial", InitialText, []string{"# Hot\n\n- first\n- second\n", "# Frosty\n"}},
		{"inline marker needs whitespace", "a#  b", []string{"a#  b"}},
		{"space separator", "intro # B", []string{"intro", "# B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Segment(%q) = %q, want %q", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("slide %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSegmentRoundTrip(t *testing.T) {
	texts := []string{
		"# A\nbody\n# B\n\n- x\n# C",
		InitialText,
		"intro\n# one\n# two\n",
	}
	for _, text := range texts {
		if got := strings.Join(Segment(text), "\n"); got != text {
			t.Errorf("join(Segment(%q)) = %q", text, got)
		}
	}
}

func TestSlideIndexForOffset(t *testing.T) {
	text := "# A\n\nbody\n\n# B\nbody2"
	slideA := "# A\n\nbody\n"

	if got := SlideIndexForOffset(text, 0); got != 0 {
		t.Errorf("offset 0 = %d, want 0", got)
	}
	for off := 0; off < len(slideA); off++ {
		if got := SlideIndexForOffset(text, off); got != 0 {
			t.Errorf("offset %d = %d, want 0", off, got)
		}
	}
	for off := len(slideA) + 1; off < len(text); off++ {
		if got := SlideIndexForOffset(text, off); got != 1 {
			t.Errorf("offset %d = %d, want 1", off, got)
		}
	}
	if got := SlideIndexForOffset(text, len(text)+50); got != 1 {
		t.Errorf("offset past end = %d, want 1", got)
	}
	if got := SlideIndexForOffset("", 0); got != 0 {
		t.Errorf("empty text = %d, want 0", got)
	}
}

func TestClampIndex(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{-1, 3, 0},
		{0, 3, 0},
		{2, 3, 2},
		{5, 3, 2},
		{4, 0, 0},
	}
	for _, tt := range tests {
		if got := ClampIndex(tt.i, tt.n); got != tt.want {
			t.Errorf("ClampIndex(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestEncodePIN(t *testing.T) {
	now := time.Date(2024, 3, 9, 10, 11, 12, 987654321, time.UTC)
	got, err := EncodePIN(now, "042")
	if err != nil {
		t.Fatalf("EncodePIN: %v", err)
	}
	if PINFromDate(got) != 42 {
		t.Errorf("PINFromDate = %d, want 42", PINFromDate(got))
	}
	if got.Second() != 12 {
		t.Errorf("seconds changed: %v", got)
	}
	if r := RoundDate(got); r.Nanosecond() != 0 || !r.Equal(now.Truncate(time.Second)) {
		t.Errorf("RoundDate = %v", r)
	}

	b, err := json.Marshal(Deck{Name: "n", Date: &got})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(b), `"date":"2024-03-09T10:11:12.042Z"`) {
		t.Errorf("encoded date not in %s", b)
	}
}

func TestParsePINRejects(t *testing.T) {
	for _, pin := range []string{"", "12", "1234", "abc", "12a", " 12"} {
		if _, err := ParsePIN(pin); !errors.Is(err, ErrInvalidPIN) {
			t.Errorf("ParsePIN(%q) err = %v, want ErrInvalidPIN", pin, err)
		}
	}
}

func TestWireDropsLocal(t *testing.T) {
	d := Deck{Name: "talk", Text: "# t", Local: true, PIN: "123"}
	b, err := json.Marshal(d.Wire())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(b)
	if strings.Contains(s, "local") {
		t.Errorf("wire form contains local flag: %s", s)
	}
	if strings.Contains(s, "123") {
		t.Errorf("wire form leaks pin: %s", s)
	}
	if !d.Local {
		t.Error("Wire mutated the receiver")
	}
}

func TestWithHelpersCopy(t *testing.T) {
	d := Deck{Name: "a", Text: "x"}
	e := d.WithText("y").WithName("b").WithTheme("dark")
	if d.Text != "x" || d.Name != "a" || d.Theme != "" {
		t.Errorf("receiver mutated: %+v", d)
	}
	if e.Text != "y" || e.Name != "b" || e.Theme != "dark" {
		t.Errorf("copy = %+v", e)
	}
}

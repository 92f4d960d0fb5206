package deckstore

import (
	"github.com/ziadkadry99/slide/internal/debounce"
	"github.com/ziadkadry99/slide/internal/deck"
	"github.com/ziadkadry99/slide/internal/render"
)

// Current returns the cursor and the slide under it.
func (s *Store) Current() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor, s.slides[s.cursor]
}

// Next moves to the following slide, stopping at the last one.
func (s *Store) Next() int {
	return s.moveTo(func(cur, _ int) int { return cur + 1 })
}

// Previous moves to the preceding slide, stopping at the first one.
func (s *Store) Previous() int {
	return s.moveTo(func(cur, _ int) int { return cur - 1 })
}

// SetCursor moves to slide i (0-based), clamped to the slide list.
func (s *Store) SetCursor(i int) int {
	return s.moveTo(func(int, int) int { return i })
}

// SetCursorFromOffset moves to the slide containing the byte offset of the
// deck text, as when an editor caret moves. While a text edit is waiting to
// be saved the offset refers to the edited text.
func (s *Store) SetCursorFromOffset(offset int) int {
	text := s.Value(debounce.FieldText)
	return s.moveTo(func(_, _ int) int {
		return deck.SlideIndexForOffset(text, offset)
	})
}

func (s *Store) moveTo(target func(cur, n int) int) int {
	s.mu.Lock()
	n := len(s.slides)
	next := deck.ClampIndex(target(s.cursor, n), n)
	changed := next != s.cursor
	s.cursor = next
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return next
}

// Plan renders the current slide.
func (s *Store) Plan() render.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planLocked(s.cursor)
}

// PlanAt renders slide i (clamped).
func (s *Store) PlanAt(i int) render.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planLocked(deck.ClampIndex(i, len(s.slides)))
}

func (s *Store) planLocked(i int) render.Plan {
	var image string
	if i < len(s.images) {
		image = s.images[i]
	}
	return render.Build(s.slides[i], i, image, s.palette)
}

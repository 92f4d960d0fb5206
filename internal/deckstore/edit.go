package deckstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ziadkadry99/slide/internal/debounce"
	"github.com/ziadkadry99/slide/internal/deck"
	"github.com/ziadkadry99/slide/internal/kv"
	"github.com/ziadkadry99/slide/internal/publish"
)

// Edit records a change to one field of the current deck. The displayed
// value changes at once, and a text edit re-segments the displayed slides;
// the deck is saved after the edit debounce.
func (s *Store) Edit(field debounce.Field, value string) {
	s.fields.Set(field, value)
	if field != debounce.FieldText {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.showSlidesLocked(deck.Segment(value))
	s.mu.Unlock()
	s.notify()
}

// Value returns the value to display for field, which is the unsaved edit
// while one is in flight.
func (s *Store) Value(field debounce.Field) string {
	s.mu.Lock()
	d := s.deck
	s.mu.Unlock()

	var canonical string
	switch field {
	case debounce.FieldName:
		canonical = d.Name
	case debounce.FieldText:
		canonical = d.Text
	case debounce.FieldTheme:
		canonical = d.Theme
	}
	return s.fields.Value(field, canonical)
}

func (s *Store) commitField(field debounce.Field, value string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	next := s.deck.Clone()
	if s.pending != nil {
		next = s.pending.Clone()
	}
	s.mu.Unlock()

	switch field {
	case debounce.FieldName:
		next = next.WithName(value)
	case debounce.FieldText:
		next = next.WithText(value)
	case debounce.FieldTheme:
		next = next.WithTheme(value)
	}

	err := s.Change(s.ctx, next)
	if err != nil && !errors.Is(err, ErrNameConflict) {
		s.logger.Error("saving deck", "field", string(field), "error", err)
	}
}

// Change makes next the current deck and saves it. A deck that is not local
// (opened by id or imported) is not allowed to overwrite an existing local
// record with the same name: the change is held and ErrNameConflict is
// returned until ConfirmReplace or Discard.
func (s *Store) Change(ctx context.Context, next deck.Deck) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if !next.Local && next.Name != "" {
		_, exists, err := kv.Lookup(ctx, s.kv, next.Name)
		if err != nil {
			return fmt.Errorf("checking local deck %q: %w", next.Name, err)
		}
		if exists {
			s.mu.Lock()
			held := next.Clone()
			s.pending = &held
			s.state = publish.ConflictPendingConfirmation
			s.mu.Unlock()
			s.notify()
			return ErrNameConflict
		}
		next.Local = true
	}

	if err := s.persist(ctx, next); err != nil {
		return err
	}

	s.mu.Lock()
	s.pending = nil
	s.setDeckLocked(next)
	s.mu.Unlock()

	s.refresh(ctx)
	s.notify()
	return nil
}

// ConfirmReplace accepts the held change: it replaces the local record and
// records which deck it derives from, the adopted deck's id or, for a deck
// that was never published, the id of the record it replaces.
func (s *Store) ConfirmReplace(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return ErrNoPending
	}
	next := s.pending.Clone()
	s.mu.Unlock()

	next.DerivedFromID = next.ID
	if next.DerivedFromID == "" {
		replaced, _, err := s.readRecord(ctx, next.Name)
		if err != nil {
			return err
		}
		next.DerivedFromID = replaced.ID
	}
	next.Local = true

	return s.Change(ctx, next)
}

// Discard drops the held change and keeps the current deck as it was.
func (s *Store) Discard() {
	s.mu.Lock()
	s.pending = nil
	s.setDeckLocked(s.deck)
	s.mu.Unlock()
	s.notify()
}

// NewDeck starts a fresh local deck named after today's date.
func (s *Store) NewDeck(ctx context.Context) error {
	return s.Change(ctx, deck.New(s.now()))
}

// Remove deletes a local deck and its index entry.
func (s *Store) Remove(ctx context.Context, name string) error {
	return s.index.Remove(ctx, name)
}

// persist writes the record under its name and moves the name to the front
// of the index. Unnamed decks are kept in memory only.
func (s *Store) persist(ctx context.Context, d deck.Deck) error {
	if d.Name == "" {
		return nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding deck %q: %w", d.Name, err)
	}
	if err := s.kv.Set(ctx, d.Name, string(data)); err != nil {
		return fmt.Errorf("saving deck %q: %w", d.Name, err)
	}
	if err := s.index.Promote(ctx, d.Name); err != nil {
		return fmt.Errorf("indexing deck %q: %w", d.Name, err)
	}
	s.logger.Debug("deck saved", "name", d.Name)
	return nil
}

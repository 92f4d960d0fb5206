package deckstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ziadkadry99/slide/internal/deck"
	"github.com/ziadkadry99/slide/internal/kv"
	"github.com/ziadkadry99/slide/internal/lzstring"
)

// Storage keys outside the index and the deck records.
const (
	EditFlagKey     = "slide-edit"
	LegacySlidesKey = "slides"
	LegacyTextKey   = "text"
)

// LoadParams selects the deck to show on start.
type LoadParams struct {
	// ID opens a published deck from the storage service.
	ID string
	// Name opens a local record.
	Name string
	// Text is compressed deck text from a legacy share link.
	Text string
	// Slide is the 1-based slide to show first. Zero means the first.
	Slide int
}

// Load picks the deck to show: a published id, then a named local record,
// then the most recently used local deck, then legacy compressed text, and
// finally the initial deck. It also restores the editor flag.
func (s *Store) Load(ctx context.Context, p LoadParams) error {
	d, err := s.selectDeck(ctx, p)
	if err != nil {
		return err
	}

	edit, err := s.readEditFlag(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.pending = nil
	s.cursor = 0
	s.setDeckLocked(d)
	if p.Slide > 0 {
		s.cursor = deck.ClampIndex(p.Slide-1, len(s.slides))
	}
	s.edit = edit
	s.mu.Unlock()

	s.refresh(ctx)
	s.notify()
	return nil
}

func (s *Store) selectDeck(ctx context.Context, p LoadParams) (deck.Deck, error) {
	if p.ID != "" {
		if s.client == nil {
			return deck.Deck{}, ErrPublishDisabled
		}
		d, err := s.client.Fetch(ctx, p.ID)
		if err != nil {
			return deck.Deck{}, fmt.Errorf("opening published deck: %w", err)
		}
		s.logger.Info("opened published deck", "id", p.ID, "name", d.Name)
		return d, nil
	}

	if p.Name != "" {
		d, ok, err := s.readRecord(ctx, p.Name)
		if err != nil {
			return deck.Deck{}, err
		}
		if ok {
			return d, nil
		}
		s.logger.Warn("no local deck with that name", "name", p.Name)
	}

	names, err := s.index.List(ctx)
	if err != nil {
		return deck.Deck{}, err
	}
	if len(names) > 0 {
		d, ok, err := s.readRecord(ctx, names[0])
		if err != nil {
			return deck.Deck{}, err
		}
		if ok {
			return d, nil
		}
	}

	if text, ok, err := s.legacyText(ctx, p.Text); err != nil {
		return deck.Deck{}, err
	} else if ok {
		return deck.New(s.now()).WithText(text), nil
	}

	return deck.Deck{Text: deck.InitialText, Local: true}, nil
}

// readRecord loads the local record stored under name. Opening a local
// record makes it the local copy.
func (s *Store) readRecord(ctx context.Context, name string) (deck.Deck, bool, error) {
	raw, ok, err := kv.Lookup(ctx, s.kv, name)
	if err != nil {
		return deck.Deck{}, false, fmt.Errorf("reading deck %q: %w", name, err)
	}
	if !ok {
		return deck.Deck{}, false, nil
	}
	var d deck.Deck
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return deck.Deck{}, false, fmt.Errorf("parsing deck %q: %w", name, err)
	}
	if d.Name == "" {
		d.Name = name
	}
	d.Local = true
	return d, true, nil
}

// legacyText decodes compressed text from the link parameter or from the
// keys older versions stored a single deck under.
func (s *Store) legacyText(ctx context.Context, param string) (string, bool, error) {
	encoded := param
	for _, key := range []string{LegacySlidesKey, LegacyTextKey} {
		if encoded != "" {
			break
		}
		v, _, err := kv.Lookup(ctx, s.kv, key)
		if err != nil {
			return "", false, fmt.Errorf("reading %s: %w", key, err)
		}
		encoded = v
	}
	if encoded == "" {
		return "", false, nil
	}
	text, err := lzstring.DecompressFromEncodedURIComponent(encoded)
	if err != nil {
		s.logger.Warn("ignoring unreadable compressed text", "error", err)
		return "", false, nil
	}
	return text, true, nil
}

func (s *Store) readEditFlag(ctx context.Context) (bool, error) {
	raw, ok, err := kv.Lookup(ctx, s.kv, EditFlagKey)
	if err != nil {
		return false, fmt.Errorf("reading editor flag: %w", err)
	}
	if !ok {
		return false, nil
	}
	var edit bool
	if err := json.Unmarshal([]byte(raw), &edit); err != nil {
		return false, nil
	}
	return edit, nil
}

// EditMode reports whether the editor view is on.
func (s *Store) EditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edit
}

// SetEditMode switches the editor view and remembers the choice.
func (s *Store) SetEditMode(ctx context.Context, on bool) error {
	s.mu.Lock()
	s.edit = on
	s.mu.Unlock()

	data, _ := json.Marshal(on)
	if err := s.kv.Set(ctx, EditFlagKey, string(data)); err != nil {
		return fmt.Errorf("saving editor flag: %w", err)
	}
	return nil
}

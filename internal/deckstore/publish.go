package deckstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/ziadkadry99/slide/internal/deck"
	"github.com/ziadkadry99/slide/internal/publish"
)

// Publish sends the current deck under id. The identity is remembered before
// the request, as it was entered. On success the published copy replaces the
// current deck and is saved; on failure the deck is unchanged and the state
// becomes Rejected for a wrong PIN.
func (s *Store) Publish(ctx context.Context, id publish.Identity) (deck.Deck, error) {
	if s.client == nil {
		return deck.Deck{}, ErrPublishDisabled
	}
	if err := id.Validate(); err != nil {
		return deck.Deck{}, err
	}

	s.Flush()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return deck.Deck{}, ErrClosed
	}
	current := s.deck.Clone()
	if current.Name == "" {
		s.mu.Unlock()
		return current, ErrUnnamed
	}
	previous := s.state
	s.state = publish.Publishing
	s.mu.Unlock()
	s.notify()

	if err := s.ids.Remember(ctx, current.Name, id); err != nil {
		s.logger.Warn("remembering identity", "name", current.Name, "error", err)
	}

	published, err := s.client.Publish(ctx, current, id)
	if err != nil {
		s.mu.Lock()
		if errors.Is(err, publish.ErrUnauthorized) {
			s.state = publish.Rejected
		} else {
			s.state = previous
		}
		s.mu.Unlock()
		s.notify()
		return current, err
	}

	if err := s.persist(ctx, published); err != nil {
		return published, fmt.Errorf("saving published deck: %w", err)
	}

	s.mu.Lock()
	s.pending = nil
	s.setDeckLocked(published)
	s.mu.Unlock()
	s.notify()

	s.logger.Info("deck published", "name", published.Name, "id", published.ID)
	return published, nil
}

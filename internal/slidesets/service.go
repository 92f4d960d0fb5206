// Package slidesets is the deck storage service: a stateless HTTP front over a
// blob store that accepts PIN-gated publishes and serves published decks.
package slidesets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ziadkadry99/slide/internal/blob"
	"github.com/ziadkadry99/slide/internal/deck"
)

var (
	// ErrNotFound is returned by Get when no deck is stored under the id.
	ErrNotFound = errors.New("slide set not found")
	// ErrUnauthorized is returned by Publish when the incoming PIN does not
	// match the stored one.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformed is returned by Publish for bodies that are not a deck.
	ErrMalformed = errors.New("malformed slide set")
)

// isoMillis matches the format browsers produce for Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

var separatorPattern = regexp.MustCompile(`\.|\s+`)

// DeriveKey returns the storage id for a deck published by email under name.
// The same author and deck name always map to the same id.
func DeriveKey(name, email string) string {
	raw := name + "-" + strings.Replace(email, "@", "-", 1)
	raw = separatorPattern.ReplaceAllString(raw, "-")
	return url.QueryEscape(strings.ToLower(raw))
}

func blobName(id string) string {
	return id + ".json"
}

// Service implements the publish and fetch operations.
type Service struct {
	store  blob.Store
	logger *slog.Logger
}

// NewService creates a Service over store.
func NewService(store blob.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Get returns the stored deck with its date truncated to whole seconds, so the
// PIN carried in the milliseconds is never served. All other fields are
// returned as stored.
func (s *Service) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.store.Get(ctx, blobName(id))
	if errors.Is(err, blob.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading slide set %q: %w", id, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decoding slide set %q: %w", id, err)
	}
	if raw, ok := fields["date"]; ok {
		if t, ok := parseDate(raw); ok {
			rounded, _ := json.Marshal(deck.RoundDate(t).UTC().Format(isoMillis))
			fields["date"] = rounded
		}
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding slide set %q: %w", id, err)
	}
	return out, nil
}

// incoming is the subset of a published deck the service inspects.
type incoming struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date"`
}

// Publish stores body under the key derived from its name and email. It
// reports created=true for a first publish. An existing record is replaced
// only when both dates carry the same PIN.
func (s *Service) Publish(ctx context.Context, body []byte) (id string, created bool, err error) {
	var in incoming
	if err := json.Unmarshal(body, &in); err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if in.Name == "" || in.Email == "" || in.Date == "" {
		return "", false, fmt.Errorf("%w: name, email and date are required", ErrMalformed)
	}
	date, err := time.Parse(time.RFC3339Nano, in.Date)
	if err != nil {
		return "", false, fmt.Errorf("%w: date: %v", ErrMalformed, err)
	}

	id = DeriveKey(in.Name, in.Email)
	name := blobName(id)

	existing, err := s.store.Get(ctx, name)
	switch {
	case errors.Is(err, blob.ErrNotFound):
		if err := s.store.Put(ctx, name, body); err != nil {
			return "", false, fmt.Errorf("saving slide set %q: %w", id, err)
		}
		s.logger.Info("slide set published", "id", id)
		return id, true, nil
	case err != nil:
		return "", false, fmt.Errorf("loading slide set %q: %w", id, err)
	}

	var stored incoming
	if err := json.Unmarshal(existing, &stored); err != nil {
		return "", false, ErrUnauthorized
	}
	storedDate, err := time.Parse(time.RFC3339Nano, stored.Date)
	if err != nil || deck.PINFromDate(storedDate) != deck.PINFromDate(date) {
		s.logger.Warn("slide set update rejected", "id", id)
		return "", false, ErrUnauthorized
	}

	if err := s.store.Put(ctx, name, body); err != nil {
		return "", false, fmt.Errorf("saving slide set %q: %w", id, err)
	}
	s.logger.Info("slide set updated", "id", id)
	return id, false, nil
}

func parseDate(raw json.RawMessage) (time.Time, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/ziadkadry99/slide/internal/deck"
	"github.com/ziadkadry99/slide/internal/kv"
)

// GlobalIdentityKey holds the identity used most recently for any deck.
const GlobalIdentityKey = "identity"

// ErrInvalidEmail is returned for addresses that do not look like user@host.tld.
var ErrInvalidEmail = errors.New("email must look like user@example.com")

// ErrInvalidPIN is returned for PINs that are not three digits.
var ErrInvalidPIN = deck.ErrInvalidPIN

var emailPattern = regexp.MustCompile(`\w+@\w+\.\w+`)

// Identity is the email and PIN a deck is published under.
type Identity struct {
	Email string `json:"email"`
	PIN   string `json:"pin"`
}

// Validate checks the email shape and the PIN format.
func (id Identity) Validate() error {
	if !emailPattern.MatchString(id.Email) {
		return ErrInvalidEmail
	}
	if _, err := deck.ParsePIN(id.PIN); err != nil {
		return err
	}
	return nil
}

// IdentityKey is the storage key of the identity remembered for a deck name.
func IdentityKey(name string) string {
	return name + "--identity"
}

// Identities remembers the identity used to publish each deck.
type Identities struct {
	store kv.Store
}

// NewIdentities creates an identity memory over store.
func NewIdentities(store kv.Store) *Identities {
	return &Identities{store: store}
}

// Lookup returns the identity for name, falling back to the global one.
func (ids *Identities) Lookup(ctx context.Context, name string) (Identity, bool, error) {
	for _, key := range []string{IdentityKey(name), GlobalIdentityKey} {
		raw, ok, err := kv.Lookup(ctx, ids.store, key)
		if err != nil {
			return Identity{}, false, fmt.Errorf("reading identity: %w", err)
		}
		if !ok {
			continue
		}
		var id Identity
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			continue
		}
		return id, true, nil
	}
	return Identity{}, false, nil
}

// Remember stores id for name and as the global fallback.
func (ids *Identities) Remember(ctx context.Context, name string, id Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshalling identity: %w", err)
	}
	for _, key := range []string{IdentityKey(name), GlobalIdentityKey} {
		if err := ids.store.Set(ctx, key, string(data)); err != nil {
			return fmt.Errorf("saving identity: %w", err)
		}
	}
	return nil
}

// Package localindex keeps the ordered list of locally saved deck names.
package localindex

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ziadkadry99/slide/internal/kv"
)

// Key is the storage key of the name list.
const Key = "slide-sets"

// Index is the most-recently-used-first list of deck names. Each name points
// at a deck record stored under the name itself.
type Index struct {
	store kv.Store
}

// New creates an Index over store.
func New(store kv.Store) *Index {
	return &Index{store: store}
}

// List returns the names whose records still exist. Dangling names are
// dropped and the pruned list is written back.
func (x *Index) List(ctx context.Context) ([]string, error) {
	names, err := x.read(ctx)
	if err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(names))
	for _, name := range names {
		_, ok, err := kv.Lookup(ctx, x.store, name)
		if err != nil {
			return nil, fmt.Errorf("checking record %q: %w", name, err)
		}
		if ok {
			kept = append(kept, name)
		}
	}

	if len(kept) != len(names) {
		if err := x.write(ctx, kept); err != nil {
			return nil, err
		}
	}
	return kept, nil
}

// Promote moves name to the front, inserting it when absent.
func (x *Index) Promote(ctx context.Context, name string) error {
	names, err := x.read(ctx)
	if err != nil {
		return err
	}
	next := make([]string, 0, len(names)+1)
	next = append(next, name)
	for _, n := range names {
		if n != name {
			next = append(next, n)
		}
	}
	return x.write(ctx, next)
}

// Remove deletes name from the list together with its record.
func (x *Index) Remove(ctx context.Context, name string) error {
	names, err := x.read(ctx)
	if err != nil {
		return err
	}
	next := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			next = append(next, n)
		}
	}
	if err := x.write(ctx, next); err != nil {
		return err
	}
	if err := x.store.Remove(ctx, name); err != nil {
		return fmt.Errorf("removing record %q: %w", name, err)
	}
	return nil
}

// Contains reports whether name is listed, without pruning.
func (x *Index) Contains(ctx context.Context, name string) (bool, error) {
	names, err := x.read(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

func (x *Index) read(ctx context.Context) ([]string, error) {
	raw, ok, err := kv.Lookup(ctx, x.store, Key)
	if err != nil {
		return nil, fmt.Errorf("reading deck index: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("parsing deck index: %w", err)
	}
	return names, nil
}

func (x *Index) write(ctx context.Context, names []string) error {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("marshalling deck index: %w", err)
	}
	if err := x.store.Set(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("writing deck index: %w", err)
	}
	return nil
}

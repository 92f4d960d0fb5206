package debounce

import (
	"sync"
	"time"
)

// Field names an editable deck field.
type Field string

const (
	FieldName  Field = "name"
	FieldText  Field = "text"
	FieldTheme Field = "theme"
)

// FieldSync keeps a shadow copy of fields being edited. Set updates the
// shadow at once and schedules a debounced commit; until that commit lands
// the shadow wins over the canonical value, afterwards the canonical value
// resynchronizes it.
type FieldSync struct {
	deb    *Debouncer[Field, string]
	commit func(Field, string)

	mu       sync.Mutex
	shadow   map[Field]string
	changing map[Field]bool
}

// NewFieldSync creates a FieldSync that hands settled values to commit after
// quiet has elapsed.
func NewFieldSync(quiet time.Duration, commit func(Field, string)) *FieldSync {
	f := &FieldSync{
		commit:   commit,
		shadow:   make(map[Field]string),
		changing: make(map[Field]bool),
	}
	f.deb = New(quiet, f.settle)
	return f
}

// Set records a local edit.
func (f *FieldSync) Set(field Field, value string) {
	f.mu.Lock()
	f.shadow[field] = value
	f.changing[field] = true
	f.mu.Unlock()

	f.deb.Update(field, value)
}

// Value returns what should be displayed for field. canonical is the value
// currently held by the owner of the record.
func (f *FieldSync) Value(field Field, canonical string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.changing[field] {
		f.shadow[field] = canonical
	}
	return f.shadow[field]
}

// Changing reports whether field has an edit that has not been committed.
func (f *FieldSync) Changing(field Field) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.changing[field]
}

// Flush commits all pending edits now.
func (f *FieldSync) Flush() {
	f.deb.Flush()
}

// Stop drops pending edits; nothing is committed afterwards.
func (f *FieldSync) Stop() {
	f.deb.Stop()
}

func (f *FieldSync) settle(field Field, value string) {
	f.mu.Lock()
	// a Set racing with this commit keeps the field in the changing state
	if f.shadow[field] == value {
		f.changing[field] = false
	}
	f.mu.Unlock()

	f.commit(field, value)
}

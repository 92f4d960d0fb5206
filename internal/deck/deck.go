package deck

import (
	"time"
)

// InitialText is the deck shown when nothing has been saved or shared yet.
const InitialText = "# Hot\n\n- first\n- second\n\n# Frosty\n"

// Deck is the unit of persistence and sharing.
//
// Deck is a value type. Edits go through the With* helpers, which return a
// modified copy and leave the receiver untouched.
type Deck struct {
	Name          string     `json:"name"`
	Text          string     `json:"text"`
	Theme         string     `json:"theme,omitempty"`
	Email         string     `json:"email,omitempty"`
	Date          *time.Time `json:"date,omitempty"`
	ID            string     `json:"id,omitempty"`
	PublishedURL  string     `json:"publishedUrl,omitempty"`
	Local         bool       `json:"local,omitempty"`
	DerivedFromID string     `json:"derivedFromId,omitempty"`

	// PIN is never serialized. It is remembered separately as an identity.
	PIN string `json:"-"`
}

// New returns a fresh local deck named after today's date.
func New(now time.Time) Deck {
	return Deck{
		Name:  now.Format(time.DateOnly),
		Text:  "# Welcome",
		Local: true,
	}
}

// Slides segments the deck text.
func (d Deck) Slides() []string {
	return Segment(d.Text)
}

// Published reports whether the deck has a server-assigned id.
func (d Deck) Published() bool {
	return d.ID != ""
}

// WithName returns a copy of d with Name replaced.
func (d Deck) WithName(name string) Deck {
	d.Name = name
	return d
}

// WithText returns a copy of d with Text replaced.
func (d Deck) WithText(text string) Deck {
	d.Text = text
	return d
}

// WithTheme returns a copy of d with Theme replaced.
func (d Deck) WithTheme(theme string) Deck {
	d.Theme = theme
	return d
}

// WithLocal returns a copy of d with the Local flag set to local.
func (d Deck) WithLocal(local bool) Deck {
	d.Local = local
	return d
}

// Clone returns a deep copy of d.
func (d Deck) Clone() Deck {
	if d.Date != nil {
		t := *d.Date
		d.Date = &t
	}
	return d
}

// Wire returns the copy of d that is sent to the storage service: the local
// flag is dropped.
func (d Deck) Wire() Deck {
	w := d.Clone()
	w.Local = false
	return w
}

// Package deckstore owns the deck being viewed or edited. It loads the deck on
// start, debounces edits into the local store, keeps the slide list, cursor,
// backgrounds and palette current, and runs the publish flow.
package deckstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ziadkadry99/slide/internal/debounce"
	"github.com/ziadkadry99/slide/internal/deck"
	"github.com/ziadkadry99/slide/internal/imagesearch"
	"github.com/ziadkadry99/slide/internal/kv"
	"github.com/ziadkadry99/slide/internal/localindex"
	"github.com/ziadkadry99/slide/internal/publish"
	"github.com/ziadkadry99/slide/internal/theme"
)

var (
	// ErrNameConflict is returned when a deck that is not local would
	// overwrite a local record of the same name. The change is held until
	// ConfirmReplace or Discard.
	ErrNameConflict = errors.New("a local deck with this name already exists")
	// ErrNoPending is returned by ConfirmReplace when nothing is held.
	ErrNoPending = errors.New("no pending replacement")
	// ErrPublishDisabled is returned by Publish without a configured client.
	ErrPublishDisabled = errors.New("publishing is not configured")
	// ErrUnnamed is returned by Publish for a deck without a name.
	ErrUnnamed = errors.New("the deck needs a name before it can be published")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("deck store closed")
)

// DefaultEditDebounce is the quiet period before an edit is saved.
const DefaultEditDebounce = time.Second

// Options configures a Store. Zero values pick defaults; Client, Finder and
// Themes may be nil.
type Options struct {
	Client       *publish.Client
	Finder       imagesearch.Finder
	Themes       *theme.Loader
	EditDebounce time.Duration
	ImageDelay   time.Duration
	Logger       *slog.Logger
	Now          func() time.Time
}

// Event is sent to subscribers after every change.
type Event struct {
	Deck   deck.Deck
	Cursor int
	State  publish.State
}

// Store holds the current deck and everything derived from it.
type Store struct {
	kv       kv.Store
	index    *localindex.Index
	ids      *publish.Identities
	client   *publish.Client
	themes   *theme.Loader
	resolver *imagesearch.Resolver
	fields   *debounce.FieldSync
	logger   *slog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	deck     deck.Deck
	pending  *deck.Deck
	state    publish.State
	slides   []string
	images   []string
	palette  theme.Palette
	themeRef string
	cursor   int
	edit     bool
	closed   bool
	subs     map[int]func(Event)
	nextSub  int
}

// New creates a Store over the local key/value store. The store starts with
// the initial deck; call Load to pick the deck to show.
func New(store kv.Store, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.EditDebounce <= 0 {
		opts.EditDebounce = DefaultEditDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		kv:      store,
		index:   localindex.New(store),
		ids:     publish.NewIdentities(store),
		client:  opts.Client,
		themes:  opts.Themes,
		logger:  opts.Logger,
		now:     opts.Now,
		ctx:     ctx,
		cancel:  cancel,
		palette: theme.Default(),
		subs:    make(map[int]func(Event)),
	}
	s.resolver = imagesearch.NewResolver(store, opts.Finder, opts.ImageDelay, opts.Logger, s.imageResolved)
	s.fields = debounce.NewFieldSync(opts.EditDebounce, s.commitField)
	s.setDeckLocked(deck.Deck{Text: deck.InitialText, Local: true})
	return s
}

// Index returns the local deck index.
func (s *Store) Index() *localindex.Index { return s.index }

// Identities returns the remembered publishing identities.
func (s *Store) Identities() *publish.Identities { return s.ids }

// Deck returns a copy of the current deck.
func (s *Store) Deck() deck.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Clone()
}

// Pending returns the change waiting for ConfirmReplace, if any.
func (s *Store) Pending() (deck.Deck, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return deck.Deck{}, false
	}
	return s.pending.Clone(), true
}

// State returns the publish state of the current deck.
func (s *Store) State() publish.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Slides returns the current slide list.
func (s *Store) Slides() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.slides...)
}

// Palette returns the palette of the current deck's theme.
func (s *Store) Palette() theme.Palette {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.palette
}

// Subscribe registers fn for change events and returns a function that
// removes it. fn runs on the goroutine that made the change.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Flush saves pending edits now.
func (s *Store) Flush() {
	s.fields.Flush()
}

// Close stops the debouncers and cancels background lookups. Pending edits
// are dropped; call Flush first to keep them.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.fields.Stop()
	s.resolver.Stop()
	s.cancel()
}

// notify sends the current snapshot to subscribers. It must be called
// without s.mu held.
func (s *Store) notify() {
	s.mu.Lock()
	ev := Event{Deck: s.deck.Clone(), Cursor: s.cursor, State: s.state}
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// setDeckLocked replaces the current deck and recomputes what derives from
// it. Theme loading and image lookups happen in refresh.
func (s *Store) setDeckLocked(d deck.Deck) {
	s.deck = d
	s.showSlidesLocked(d.Slides())
	switch {
	case d.Published():
		s.state = publish.Published
	default:
		s.state = publish.Unpublished
	}
}

// showSlidesLocked replaces the displayed slide list and keeps the cursor
// and the background list in range.
func (s *Store) showSlidesLocked(slides []string) {
	s.slides = slides
	s.cursor = deck.ClampIndex(s.cursor, len(s.slides))
	if len(s.images) != len(s.slides) {
		s.images = make([]string, len(s.slides))
	}
}

// refresh reloads the palette when the theme changed and re-resolves slide
// backgrounds.
func (s *Store) refresh(ctx context.Context) {
	s.mu.Lock()
	ref := s.deck.Theme
	themeChanged := ref != s.themeRef
	slides := append([]string(nil), s.slides...)
	s.mu.Unlock()

	if themeChanged {
		palette := theme.Default()
		if s.themes != nil {
			palette = s.themes.Load(ctx, ref)
		}
		s.mu.Lock()
		s.palette = palette
		s.themeRef = ref
		s.mu.Unlock()
	}

	images, err := s.resolver.Images(ctx, slides)
	if err != nil {
		s.logger.Debug("resolving slide images", "error", err)
		return
	}
	s.mu.Lock()
	if len(images) == len(s.slides) {
		s.images = images
	}
	s.mu.Unlock()
}

func (s *Store) imageResolved(label, background string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	changed := false
	for i, slide := range s.slides {
		if l, ok := imagesearch.Label(slide); ok && l == label && i < len(s.images) {
			s.images[i] = background
			changed = true
		}
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

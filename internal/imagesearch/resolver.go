package imagesearch

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ziadkadry99/slide/internal/debounce"
	"github.com/ziadkadry99/slide/internal/kv"
)

// DefaultDelay is how long the slide list must stay unchanged before images
// are looked up.
const DefaultDelay = 5 * time.Second

var labelPattern = regexp.MustCompile(`^# (\w+)\s*$`)

// Label returns the search term of a slide that is a single-word heading.
func Label(slide string) (string, bool) {
	m := labelPattern.FindStringSubmatch(slide)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CacheKey is the storage key of the resolved background for label.
func CacheKey(label string) string {
	return "slide-image-" + label
}

// Resolver maps slides to cached backgrounds and looks up missing ones in the
// background once the slide list settles.
type Resolver struct {
	store  kv.Store
	finder Finder
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	deb    *debounce.Debouncer[string, []string]

	onResolved func(label, background string)
}

// NewResolver creates a Resolver. finder may be nil, in which case only
// cached values are used. onResolved, when set, is called after a lookup
// caches a new background.
func NewResolver(store kv.Store, finder Finder, delay time.Duration, logger *slog.Logger, onResolved func(label, background string)) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Resolver{
		store:      store,
		finder:     finder,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		onResolved: onResolved,
	}
	r.deb = debounce.New(delay, r.lookup)
	return r
}

// Images returns one entry per slide: the cached `url(...)` background, the
// bare label when it has not been resolved yet, or "" for slides that are not
// single-word headings. Unresolved labels are scheduled for lookup.
func (r *Resolver) Images(ctx context.Context, slides []string) ([]string, error) {
	images := make([]string, len(slides))
	var missing []string
	for i, s := range slides {
		label, ok := Label(s)
		if !ok {
			continue
		}
		cached, found, err := kv.Lookup(ctx, r.store, CacheKey(label))
		if err != nil {
			return nil, fmt.Errorf("reading image cache: %w", err)
		}
		if found && isResolved(cached) {
			images[i] = cached
			continue
		}
		images[i] = label
		missing = append(missing, label)
	}

	// every slide list change restarts the wait, even with nothing missing
	r.deb.Update("images", missing)
	return images, nil
}

// Flush runs any scheduled lookup now.
func (r *Resolver) Flush() {
	r.deb.Flush()
}

// Stop cancels scheduled and running lookups.
func (r *Resolver) Stop() {
	r.deb.Stop()
	r.cancel()
}

func (r *Resolver) lookup(_ string, labels []string) {
	if r.finder == nil {
		return
	}
	seen := make(map[string]bool)
	for _, label := range labels {
		if seen[label] || r.ctx.Err() != nil {
			continue
		}
		seen[label] = true

		imageURL, ok, err := r.finder.Find(r.ctx, label)
		if err != nil {
			r.logger.Debug("image lookup failed", "label", label, "error", err)
			continue
		}
		if !ok {
			continue
		}
		background := "url(" + imageURL + ")"
		if err := r.store.Set(r.ctx, CacheKey(label), background); err != nil {
			r.logger.Debug("caching image failed", "label", label, "error", err)
			continue
		}
		if r.onResolved != nil {
			r.onResolved(label, background)
		}
	}
}

func isResolved(background string) bool {
	return strings.HasPrefix(background, "url(")
}

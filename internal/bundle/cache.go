package bundle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/bnema/streamview/assets"
	"github.com/bnema/streamview/internal/logging"
)

// Entry is the cached payload set for one variant. Immutable after first
// population; read-shared by every pool instance of that variant.
type Entry struct {
	// Variant is the variant actually loaded, which may be smaller than the
	// one requested when fallback kicked in.
	Variant Variant
	// Script is the bundle text. Empty means the bootstrap document should
	// reference the bundle externally relative to BaseAnchor.
	Script string
	// Style is the companion stylesheet, only carried by the full variant.
	// Lighter variants ship their styling inline in the bootstrap document.
	Style string
	// BaseAnchor resolves relative asset references in the document.
	BaseAnchor string
	// Bootstrap is the precomputed empty bootstrap document for warm-up and
	// recycling. Populated when the cache was built with a bootstrap
	// builder.
	Bootstrap string
}

// Loader fetches bundle payload text. The embedded loader never fails; a
// filesystem loader backs development overrides and makes the fallback path
// reachable.
type Loader interface {
	Script(variant Variant) (string, error)
	Style(variant Variant) (string, error)
}

// EmbeddedLoader serves the compile-time embedded bundles.
type EmbeddedLoader struct{}

func (EmbeddedLoader) Script(variant Variant) (string, error) {
	switch variant {
	case VariantMinimal:
		return assets.MinimalBundle, nil
	case VariantBalanced:
		return assets.BalancedBundle, nil
	case VariantFull:
		return assets.FullBundle, nil
	}
	return "", fmt.Errorf("bundle: no embedded script for %s", variant)
}

func (EmbeddedLoader) Style(variant Variant) (string, error) {
	if variant == VariantFull {
		return assets.FullStylesheet, nil
	}
	return "", nil
}

// Cache memoizes bundle payloads per variant for the process lifetime.
// First access loads lazily; concurrent first access from multiple callers
// is collapsed to one load.
type Cache struct {
	loader     Loader
	baseAnchor string
	bootstrap  func(Entry) string

	mu      sync.RWMutex
	entries map[Variant]*Entry
	group   singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithBaseAnchor overrides the base-resolution anchor.
func WithBaseAnchor(anchor string) Option {
	return func(c *Cache) { c.baseAnchor = anchor }
}

// WithBootstrapBuilder supplies the empty-bootstrap-document builder so each
// entry carries its precomputed warm-up document. Injected at wiring time to
// keep this package below the template builder in the dependency order.
func WithBootstrapBuilder(build func(Entry) string) Option {
	return func(c *Cache) { c.bootstrap = build }
}

// NewCache creates a cache over the given loader. A nil loader means the
// embedded bundles.
func NewCache(loader Loader, opts ...Option) *Cache {
	if loader == nil {
		loader = EmbeddedLoader{}
	}
	c := &Cache{
		loader:     loader,
		baseAnchor: defaultBaseAnchor(),
		entries:    make(map[Variant]*Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the payload entry for the variant, loading it on first access.
// The second return is false when no artifact could be located for the
// variant or any smaller fallback; that is an availability result, not an
// error.
func (c *Cache) Get(ctx context.Context, variant Variant) (*Entry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[variant]
	c.mu.RUnlock()
	if ok {
		return entry, entry != nil
	}

	v, err, _ := c.group.Do(variant.String(), func() (any, error) {
		return c.load(ctx, variant), nil
	})
	if err != nil {
		return nil, false
	}
	entry = v.(*Entry)
	return entry, entry != nil
}

// Available probes whether the variant (or a fallback for it) can be loaded.
func (c *Cache) Available(ctx context.Context, variant Variant) bool {
	_, ok := c.Get(ctx, variant)
	return ok
}

// load walks the fallback order and memoizes the first success. Failures are
// not memoized so a transient artifact problem does not poison the process.
func (c *Cache) load(ctx context.Context, requested Variant) *Entry {
	log := logging.FromContext(ctx)

	for _, candidate := range fallbackOrder(requested) {
		script, err := c.loader.Script(candidate)
		if err != nil {
			log.Warn().Err(err).
				Str("requested", requested.String()).
				Str("candidate", candidate.String()).
				Msg("bundle script unavailable, trying smaller variant")
			continue
		}

		entry := &Entry{
			Variant:    candidate,
			Script:     script,
			BaseAnchor: c.baseAnchor,
		}

		// Style payload is only fetched for the highest-capability variant;
		// a missing stylesheet downgrades polish, not availability.
		if candidate == VariantFull {
			style, err := c.loader.Style(candidate)
			if err != nil {
				log.Warn().Err(err).Msg("full-variant stylesheet unavailable")
			} else {
				entry.Style = style
			}
		}

		if c.bootstrap != nil {
			entry.Bootstrap = c.bootstrap(*entry)
		}

		c.mu.Lock()
		c.entries[requested] = entry
		if candidate != requested {
			// The fallback result also answers direct requests for the
			// candidate itself.
			if _, ok := c.entries[candidate]; !ok {
				c.entries[candidate] = entry
			}
		}
		c.mu.Unlock()

		log.Debug().
			Str("requested", requested.String()).
			Str("loaded", candidate.String()).
			Int("script_len", len(entry.Script)).
			Int("style_len", len(entry.Style)).
			Msg("bundle cached")
		return entry
	}

	log.Warn().Str("variant", requested.String()).Msg("no bundle artifact available")
	return nil
}

// defaultBaseAnchor points relative asset references at the per-user data
// directory, where optional companion assets (fonts, media) may be unpacked.
func defaultBaseAnchor() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "file:///tmp/streamview/"
	}
	return "file://" + filepath.Join(home, ".local", "share", "streamview") + "/"
}

package templates

import (
	"context"
	"fmt"
	"sync"
	"text/template"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"lakehose/internal/logger"
	"lakehose/pkg/metrics"
)

// ParseError reports template source that does not compile. The key
// keeps failing until the stored object is corrected; the process
// keeps serving other keys.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse template %q: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type cacheEntry struct {
	tmpl      *template.Template
	expiresOn time.Time
}

// Cache memoizes compiled templates per object key. Entries expire
// after the configured window and are replaced wholesale; a compiled
// template is never mutated. Compilation on a cold or expired key is
// deduplicated with singleflight, which is an optimization only:
// compiling is idempotent and side-effect free.
type Cache struct {
	store  Store
	funcs  template.FuncMap
	window time.Duration
	clock  clockwork.Clock
	logger logger.Logger

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

func NewCache(store Store, registry *Registry, window time.Duration, clock clockwork.Clock, log logger.Logger) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		store:   store,
		funcs:   registry.FuncMap(),
		window:  window,
		clock:   clock,
		logger:  log,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) Get(ctx context.Context, key string) (*template.Template, error) {
	if tmpl, ok := c.lookup(key); ok {
		metrics.TemplateCacheRequestsTotal.WithLabelValues("hit").Inc()
		return tmpl, nil
	}

	metrics.TemplateCacheRequestsTotal.WithLabelValues("miss").Inc()
	c.logger.DebugwCtx(ctx, "Template cache miss", "key", key)

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent flight may have refreshed the entry already.
		if tmpl, ok := c.lookup(key); ok {
			return tmpl, nil
		}
		return c.fetchAndCompile(ctx, key)
	})
	if err != nil {
		return nil, err
	}

	return result.(*template.Template), nil
}

func (c *Cache) lookup(key string) (*template.Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !c.clock.Now().Before(entry.expiresOn) {
		return nil, false
	}
	return entry.tmpl, true
}

func (c *Cache) fetchAndCompile(ctx context.Context, key string) (*template.Template, error) {
	source, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(key).
		Funcs(c.funcs).
		Option("missingkey=error").
		Parse(source)
	if err != nil {
		return nil, &ParseError{Key: key, Err: err}
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{
		tmpl:      tmpl,
		expiresOn: c.clock.Now().Add(c.window),
	}
	c.mu.Unlock()

	return tmpl, nil
}

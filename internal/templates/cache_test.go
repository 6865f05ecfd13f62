package templates

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakehose/internal/logger"
)

type fakeStore struct {
	objects map[string]string
	calls   map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects: make(map[string]string),
		calls:   make(map[string]int),
	}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	s.calls[key]++
	source, ok := s.objects[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, key)
	}
	return source, nil
}

func (s *fakeStore) Ping(context.Context) error {
	return nil
}

func newTestCache(store Store, clock clockwork.Clock, window time.Duration) *Cache {
	registry := NewRegistry("123456789012", logger.NopLogger())
	return NewCache(store, registry, window, clock, logger.NopLogger())
}

func TestCacheGet(t *testing.T) {
	ctx := context.Background()

	t.Run("compiles on miss and serves hits from memory", func(t *testing.T) {
		store := newFakeStore()
		store.objects["templates/messaging.tmpl"] = `{"channel": "{{.channel}}"}`
		clock := clockwork.NewFakeClock()
		cache := newTestCache(store, clock, 15*time.Minute)

		first, err := cache.Get(ctx, "templates/messaging.tmpl")
		require.NoError(t, err)
		second, err := cache.Get(ctx, "templates/messaging.tmpl")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, store.calls["templates/messaging.tmpl"])
	})

	t.Run("refetches after the window elapses", func(t *testing.T) {
		store := newFakeStore()
		store.objects["templates/ses.tmpl"] = `{"kind": "ses"}`
		clock := clockwork.NewFakeClock()
		cache := newTestCache(store, clock, 15*time.Minute)

		_, err := cache.Get(ctx, "templates/ses.tmpl")
		require.NoError(t, err)

		clock.Advance(15*time.Minute + time.Second)

		_, err = cache.Get(ctx, "templates/ses.tmpl")
		require.NoError(t, err)
		assert.Equal(t, 2, store.calls["templates/ses.tmpl"])
	})

	t.Run("serves the stale-but-valid entry just before expiry", func(t *testing.T) {
		store := newFakeStore()
		store.objects["templates/status.tmpl"] = `{"kind": "status"}`
		clock := clockwork.NewFakeClock()
		cache := newTestCache(store, clock, 15*time.Minute)

		_, err := cache.Get(ctx, "templates/status.tmpl")
		require.NoError(t, err)

		clock.Advance(15*time.Minute - time.Second)

		_, err = cache.Get(ctx, "templates/status.tmpl")
		require.NoError(t, err)
		assert.Equal(t, 1, store.calls["templates/status.tmpl"])
	})

	t.Run("missing object propagates not found", func(t *testing.T) {
		store := newFakeStore()
		cache := newTestCache(store, clockwork.NewFakeClock(), 15*time.Minute)

		_, err := cache.Get(ctx, "templates/absent.tmpl")
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	t.Run("uncompilable source reports a parse error and is not cached", func(t *testing.T) {
		store := newFakeStore()
		store.objects["templates/broken.tmpl"] = `{{if .x}no close`
		cache := newTestCache(store, clockwork.NewFakeClock(), 15*time.Minute)

		_, err := cache.Get(ctx, "templates/broken.tmpl")
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "templates/broken.tmpl", parseErr.Key)

		_, err = cache.Get(ctx, "templates/broken.tmpl")
		require.Error(t, err)
		assert.Equal(t, 2, store.calls["templates/broken.tmpl"])
	})

	t.Run("compiled templates can call registry functions", func(t *testing.T) {
		store := newFakeStore()
		store.objects["templates/funcs.tmpl"] = `{"account": "{{fetchAccountId}}"}`
		cache := newTestCache(store, clockwork.NewFakeClock(), 15*time.Minute)

		tmpl, err := cache.Get(ctx, "templates/funcs.tmpl")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, tmpl.Execute(&buf, map[string]interface{}{}))
		assert.JSONEq(t, `{"account":"123456789012"}`, buf.String())
	})
}

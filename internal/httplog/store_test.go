package httplog

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore_Update tests that updates keep fields the mutator does not touch.
func TestStore_Update(t *testing.T) {
	t.Parallel()

	store := NewStore()

	store.Update(func(c *Configuration) { c.LogHeaders = true })
	store.Update(func(c *Configuration) { c.URLBlacklistPattern = regexp.MustCompile(`example\.com`) })

	cfg := store.Get()
	assert.True(t, cfg.LogHeaders)
	require.NotNil(t, cfg.URLBlacklistPattern)
	assert.Equal(t, `example\.com`, cfg.URLBlacklistPattern.String())
	assert.True(t, cfg.LogResponse)
}

// TestStore_Reset tests that Reset restores the defaults.
func TestStore_Reset(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Update(func(c *Configuration) {
		c.Enabled = false
		c.Prefix = LiteralPrefix("x")
	})

	store.Reset()

	cfg := store.Get()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, DefaultPrefix, cfg.Prefix.Resolve())
}

// TestStore_With tests that With restores the previous configuration.
func TestStore_With(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Update(func(c *Configuration) { c.CompactLog = true })

	store.With(func(c *Configuration) { c.JSONLog = true }, func() {
		assert.Equal(t, ModeJSON, store.Get().Mode())
	})

	assert.Equal(t, ModeCompact, store.Get().Mode())
}

// TestStore_WithPanic tests that With restores the configuration when fn panics.
func TestStore_WithPanic(t *testing.T) {
	t.Parallel()

	store := NewStore()

	assert.Panics(t, func() {
		store.With(func(c *Configuration) { c.Enabled = false }, func() {
			panic("boom")
		})
	})

	assert.True(t, store.Get().Enabled)
}

// TestStore_SnapshotIsolation tests that snapshots do not share slices with the store.
func TestStore_SnapshotIsolation(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Update(func(c *Configuration) { c.FilterParameters = []string{"password"} })

	snapshot := store.Get()
	snapshot.FilterParameters[0] = "changed"

	assert.Equal(t, []string{"password"}, store.Get().FilterParameters)
}

// TestStore_ConcurrentAccess tests that readers and writers can run together.
func TestStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := NewStore()

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			store.Update(func(c *Configuration) { c.MaxBodyLength = i })
		}()

		go func() {
			defer wg.Done()

			_ = store.Get().Mode()
		}()
	}

	wg.Wait()

	assert.GreaterOrEqual(t, store.Get().MaxBodyLength, 0)
}

// TestConfigure tests the package-level store helpers.
func TestConfigure(t *testing.T) {
	// Don't run in parallel: it touches the process-wide store.
	defer DefaultStore().Reset()

	Configure(func(c *Configuration) { c.LogHeaders = true })

	assert.True(t, Current().LogHeaders)
	assert.Same(t, DefaultStore(), NewPipeline(nil, nil).Store())
}

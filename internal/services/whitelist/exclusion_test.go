package whitelist

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/listgate/internal/model"
	"github.com/mcoot/listgate/internal/testutil"
)

// pausingStore is a SettingsStore whose next Whitelist or Reload call stops
// until the test releases it
type pausingStore struct {
	mu       sync.Mutex
	ids      []model.Identity
	reloadTo []model.Identity
	saves    int

	release chan struct{}
	entered chan struct{}
}

// pauseNext makes the next Whitelist or Reload call wait for the returned channel
func (f *pausingStore) pauseNext() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.release = make(chan struct{})
	f.entered = make(chan struct{}, 1)
	return f.release
}

func (f *pausingStore) wait() {
	f.mu.Lock()
	release, entered := f.release, f.entered
	f.release = nil
	f.mu.Unlock()
	if release != nil {
		entered <- struct{}{}
		<-release
	}
}

func (f *pausingStore) Whitelist() []model.Identity {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ids)
}

func (f *pausingStore) SetWhitelist(ids []model.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = slices.Clone(ids)
}

func (f *pausingStore) Save(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	return nil
}

func (f *pausingStore) Reload(context.Context) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = slices.Clone(f.reloadTo)
	return nil
}

func (f *pausingStore) persisted() []model.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.SortedIdentities(f.ids)
}

// addWhilePaused starts Add once the store is paused inside another call and
// checks that it cannot finish until the store is released
func addWhilePaused(t *testing.T, cache *Cache, store *pausingStore, release chan struct{}, identity string) {
	t.Helper()

	<-store.entered

	done := make(chan error, 1)
	go func() {
		_, err := cache.Add(context.Background(), identity)
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("Add completed while the whitelist was being re-read")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-done)
}

func TestRefreshExcludesConcurrentAdd(t *testing.T) {
	store := &pausingStore{ids: []model.Identity{"bob"}}
	cache := New(store, testutil.NopLogger())

	release := store.pauseNext()
	refreshed := make(chan struct{})
	go func() {
		cache.Refresh()
		close(refreshed)
	}()

	addWhilePaused(t, cache, store, release, "alice")
	<-refreshed

	assert.True(t, cache.IsMember("alice"))
	assert.Equal(t, store.persisted(), cache.Snapshot())
	assert.Equal(t, []model.Identity{"alice", "bob"}, cache.Snapshot())
}

func TestReloadExcludesConcurrentAdd(t *testing.T) {
	store := &pausingStore{ids: []model.Identity{"bob"}, reloadTo: []model.Identity{"carol"}}
	cache := New(store, testutil.NopLogger())

	release := store.pauseNext()
	reloaded := make(chan error, 1)
	go func() {
		reloaded <- cache.Reload(context.Background(), store)
	}()

	addWhilePaused(t, cache, store, release, "alice")
	require.NoError(t, <-reloaded)

	// The add lands on top of the reloaded list, never the stale one
	assert.Equal(t, []model.Identity{"alice", "carol"}, cache.Snapshot())
	assert.Equal(t, store.persisted(), cache.Snapshot())
	assert.False(t, cache.IsMember("bob"))
	assert.Equal(t, 1, store.saves)
}

func TestReloadRehydratesOnError(t *testing.T) {
	store := &pausingStore{ids: []model.Identity{"bob"}}
	cache := New(store, testutil.NopLogger())
	store.SetWhitelist([]model.Identity{"dave"})

	err := cache.Reload(context.Background(), failingReloader{})
	require.ErrorIs(t, err, model.ErrPersistence)
	assert.Equal(t, []model.Identity{"dave"}, cache.Snapshot())
}

type failingReloader struct{}

func (failingReloader) Reload(context.Context) error {
	return model.ErrPersistence
}

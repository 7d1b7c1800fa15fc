// Package whitelist holds the in-memory membership set consulted on every
// connection and sweep. Every mutation is persisted to the settings store
// before the write lock is released.
package whitelist

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/mcoot/listgate/internal/model"
)

// SettingsStore is the persisted side of the whitelist
type SettingsStore interface {
	Whitelist() []model.Identity
	SetWhitelist(ids []model.Identity)
	Save(ctx context.Context) error
}

// Cache is a concurrency-safe set of identities kept in lock-step with a SettingsStore
type Cache struct {
	store  SettingsStore
	logger *slog.Logger

	mu      sync.RWMutex
	members map[model.Identity]struct{}
}

// New creates a cache hydrated from the store's current whitelist
func New(store SettingsStore, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	c := &Cache{
		store:   store,
		logger:  logger.With(slog.String("component", "whitelist")),
		members: make(map[model.Identity]struct{}),
	}
	c.hydrate()
	return c
}

// IsMember reports whether identity is whitelisted. Matching is exact and a
// blank identity is never a member.
func (c *Cache) IsMember(identity string) bool {
	if identity == "" {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.members[identity]
	return ok
}

// Add inserts identity and persists. It returns false without writing if the
// identity is already present. A persistence error leaves the insertion in place.
func (c *Cache) Add(ctx context.Context, identity string) (bool, error) {
	id, ok := model.NormalizeIdentity(identity)
	if !ok {
		return false, fmt.Errorf("%w: identity must not be blank", model.ErrValidation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.members[id]; exists {
		return false, nil
	}
	c.members[id] = struct{}{}
	c.logger.Info("identity added", slog.String("identity", id))

	if err := c.persistLocked(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// Remove deletes identity and persists. It returns false without writing if
// the identity is absent.
func (c *Cache) Remove(ctx context.Context, identity string) (bool, error) {
	id, ok := model.NormalizeIdentity(identity)
	if !ok {
		return false, fmt.Errorf("%w: identity must not be blank", model.ErrValidation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.members[id]; !exists {
		return false, nil
	}
	delete(c.members, id)
	c.logger.Info("identity removed", slog.String("identity", id))

	if err := c.persistLocked(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// AddMany inserts every identity not already present and persists once.
// Blank entries and duplicates are skipped. Nothing is written if no entry changed.
func (c *Cache) AddMany(ctx context.Context, identities []string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, raw := range identities {
		id, ok := model.NormalizeIdentity(raw)
		if !ok {
			continue
		}
		if _, exists := c.members[id]; exists {
			continue
		}
		c.members[id] = struct{}{}
		count++
	}
	if count == 0 {
		return 0, nil
	}
	c.logger.Info("identities added", slog.Int("count", count))
	return count, c.persistLocked(ctx)
}

// RemoveMany deletes every listed identity that is present and persists once
func (c *Cache) RemoveMany(ctx context.Context, identities []string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, raw := range identities {
		id, ok := model.NormalizeIdentity(raw)
		if !ok {
			continue
		}
		if _, exists := c.members[id]; !exists {
			continue
		}
		delete(c.members, id)
		count++
	}
	if count == 0 {
		return 0, nil
	}
	c.logger.Info("identities removed", slog.Int("count", count))
	return count, c.persistLocked(ctx)
}

// Clear empties the whitelist and persists the empty list
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cleared := len(c.members)
	c.members = make(map[model.Identity]struct{})
	c.logger.Info("whitelist cleared", slog.Int("count", cleared))
	return c.persistLocked(ctx)
}

// Snapshot returns the members as a new sorted slice
func (c *Cache) Snapshot() []model.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortedLocked()
}

// Refresh discards the in-memory set and re-reads the store's whitelist.
// Used after the store has been reloaded from durable storage.
func (c *Cache) Refresh() {
	c.hydrate()
}

// Reloader re-reads the store from durable storage
type Reloader interface {
	Reload(ctx context.Context) error
}

// Reload runs r.Reload and re-hydrates under one write lock, so no mutation
// can land between the two and write the stale set back over the reloaded file.
// The set is re-hydrated even when the reload fails, since the store then
// holds its fallback settings.
func (c *Cache) Reload(ctx context.Context, r Reloader) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := r.Reload(ctx)
	c.hydrateLocked()
	return err
}

// Size returns the number of whitelisted identities
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.members)
}

// IsEmpty reports whether the whitelist has no members
func (c *Cache) IsEmpty() bool {
	return c.Size() == 0
}

func (c *Cache) hydrate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hydrateLocked()
}

// hydrateLocked replaces the set with the store's whitelist. Caller holds mu.
func (c *Cache) hydrateLocked() {
	ids := c.store.Whitelist()
	c.members = make(map[model.Identity]struct{}, len(ids))
	for _, raw := range ids {
		if id, ok := model.NormalizeIdentity(raw); ok {
			c.members[id] = struct{}{}
		}
	}
	c.logger.Debug("whitelist hydrated", slog.Int("size", len(c.members)))
}

// persistLocked pushes the sorted set to the store and saves. Caller holds mu.
func (c *Cache) persistLocked(ctx context.Context) error {
	c.store.SetWhitelist(c.sortedLocked())
	if err := c.store.Save(ctx); err != nil {
		c.logger.Error("failed to persist whitelist", slog.String("error", err.Error()))
		return fmt.Errorf("persist whitelist: %w", err)
	}
	return nil
}

func (c *Cache) sortedLocked() []model.Identity {
	ids := make([]model.Identity, 0, len(c.members))
	for id := range c.members {
		ids = append(ids, id)
	}
	return model.SortedIdentities(ids)
}

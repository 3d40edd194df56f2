package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go-guildsync/internal/gamedata/models"
)

// Cache holds the current snapshot. Readers see either the old or the new snapshot, never a mix.
type Cache struct {
	store   Store
	now     func() time.Time
	current atomic.Pointer[models.GameData]
}

func NewCache(store Store, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	c := &Cache{store: store, now: now}
	c.current.Store(models.Empty(now()))
	return c
}

// Current returns the published snapshot
func (c *Cache) Current() *models.GameData {
	return c.current.Load()
}

// Replace publishes a new snapshot
func (c *Cache) Replace(data *models.GameData) {
	c.current.Store(data)
}

// LoadOrCreate loads the persisted snapshot. Any load failure degrades to an
// empty snapshot and is only logged.
func (c *Cache) LoadOrCreate(ctx context.Context) *models.GameData {
	data, err := c.store.Load(ctx)
	if err != nil || data == nil {
		slog.WarnContext(ctx, "Game data unavailable, starting empty", "store", c.store.Name(), "error", err)
		data = models.Empty(c.now())
	} else {
		slog.InfoContext(ctx, "Game data loaded",
			"store", c.store.Name(),
			"units", len(data.Units),
			"titles", len(data.Titles),
			"zetas", len(data.Zetas),
			"updated", data.Updated,
		)
	}

	c.Replace(data)
	return data
}

// Persist saves the snapshot to the backing store
func (c *Cache) Persist(ctx context.Context, data *models.GameData) error {
	return c.store.Save(ctx, data)
}

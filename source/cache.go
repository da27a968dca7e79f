package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spektr-org/podes/engine"
)

const villagesKey = "villages"

// Cached keeps the row set of another source in a TTL cache and can refresh
// it on a cron schedule.
type Cached struct {
	src    Source
	store  *cache.Cache
	logger *zap.Logger

	fetchMu sync.Mutex // one upstream fetch at a time
	cronMu  sync.Mutex
	cron    *cron.Cron
}

// NewCached wraps src. A zero ttl keeps rows until Invalidate.
func NewCached(src Source, ttl, cleanup time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Cached{
		src:    src,
		store:  cache.New(ttl, cleanup),
		logger: logger,
	}
}

// Villages implements Source.
func (c *Cached) Villages(ctx context.Context) ([]engine.VillageRecord, error) {
	if rows, ok := c.cached(); ok {
		return rows, nil
	}

	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()
	if rows, ok := c.cached(); ok {
		return rows, nil
	}
	return c.fetch(ctx)
}

func (c *Cached) cached() ([]engine.VillageRecord, bool) {
	x, found := c.store.Get(villagesKey)
	if !found {
		return nil, false
	}
	return x.([]engine.VillageRecord), true
}

// fetch must be called with fetchMu held.
func (c *Cached) fetch(ctx context.Context) ([]engine.VillageRecord, error) {
	start := time.Now()
	rows, err := c.src.Villages(ctx)
	if err != nil {
		return nil, err
	}
	c.store.Set(villagesKey, rows, cache.DefaultExpiration)
	c.logger.Info("Village rows loaded",
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(start)))
	return rows, nil
}

// Refresh reloads the rows from the wrapped source. On failure the
// previous rows stay cached.
func (c *Cached) Refresh(ctx context.Context) error {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()
	_, err := c.fetch(ctx)
	return err
}

// Invalidate drops the cached rows.
func (c *Cached) Invalidate() {
	c.store.Delete(villagesKey)
}

// StartRefresh schedules Refresh with a standard 5-field cron expression.
func (c *Cached) StartRefresh(schedule string, timeout time.Duration) error {
	c.cronMu.Lock()
	defer c.cronMu.Unlock()
	if c.cron != nil {
		return fmt.Errorf("refresh already scheduled")
	}

	sched := cron.New()
	_, err := sched.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := c.Refresh(ctx); err != nil {
			c.logger.Error("Scheduled refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling refresh %q: %w", schedule, err)
	}
	sched.Start()
	c.cron = sched
	c.logger.Info("Refresh scheduled", zap.String("schedule", schedule))
	return nil
}

// Close stops the refresh schedule and closes the wrapped source.
func (c *Cached) Close() error {
	c.cronMu.Lock()
	if c.cron != nil {
		<-c.cron.Stop().Done()
		c.cron = nil
	}
	c.cronMu.Unlock()
	return c.src.Close()
}

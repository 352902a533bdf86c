package service

import (
	"context"
	"encoding/json"

	"poolpay/internal/domain"
	"poolpay/pkg/logger"
	"poolpay/pkg/redis"
)

// TakesCache caches computed actual-takes tables per team. A nil cache or a
// missing Redis client degrades to straight repository reads, so every
// method is safe to call in either state.
type TakesCache struct {
	client *redis.Client
	log    *logger.Logger
}

// NewTakesCache creates a new takes cache. client may be nil when Redis is
// not configured.
func NewTakesCache(client *redis.Client, log *logger.Logger) *TakesCache {
	return &TakesCache{client: client, log: log}
}

// GetTable returns the cached table for a team and whether it was present.
func (c *TakesCache) GetTable(ctx context.Context, teamSlug string) ([]domain.ActualTake, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.client.KeyBuilder.KeyTakesTable(teamSlug))
	if err != nil {
		if !redis.IsMiss(err) {
			c.log.WithError(err).WithField("team", teamSlug).Warn("Takes cache read failed")
		}
		return nil, false
	}
	var rows []domain.ActualTake
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		c.log.WithError(err).WithField("team", teamSlug).Warn("Takes cache entry corrupt, dropping")
		c.Invalidate(ctx, teamSlug)
		return nil, false
	}
	return rows, true
}

// SetTable caches a team's table. Failures are logged and swallowed; the
// cache is best effort.
func (c *TakesCache) SetTable(ctx context.Context, teamSlug string, rows []domain.ActualTake) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		c.log.WithError(err).WithField("team", teamSlug).Warn("Failed to encode takes table")
		return
	}
	if err := c.client.Set(ctx, c.client.KeyBuilder.KeyTakesTable(teamSlug), raw, redis.TTLTakesTable); err != nil {
		c.log.WithError(err).WithField("team", teamSlug).Warn("Takes cache write failed")
	}
}

// Invalidate drops a team's cached table after a ledger or payroll write.
func (c *TakesCache) Invalidate(ctx context.Context, teamSlug string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Delete(ctx, c.client.KeyBuilder.KeyTakesTable(teamSlug)); err != nil {
		c.log.WithError(err).WithField("team", teamSlug).Warn("Takes cache invalidation failed")
	}
}

package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"poolpay/internal/domain"
	"poolpay/pkg/logger"
	"poolpay/pkg/redis"
)

func newTestCache(t *testing.T) (*TakesCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "development", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewTakesCache(client, logger.NewNop()), mr
}

func sampleTable() []domain.ActualTake {
	return []domain.ActualTake{
		{MemberID: 3, NominalAmount: dec("0.30"), ActualAmount: dec("0.30"), Balance: dec("0.70"), Percentage: dec("0.3")},
		{MemberID: 2, NominalAmount: dec("0.80"), ActualAmount: dec("0.70"), Balance: dec("0.00"), Percentage: dec("0.7")},
	}
}

func TestTakesCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.GetTable(ctx, "TheEnterprise")
	assert.False(t, ok)

	cache.SetTable(ctx, "TheEnterprise", sampleTable())

	rows, ok := cache.GetTable(ctx, "TheEnterprise")
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(3), rows[0].MemberID)
	assert.True(t, dec("0.70").Equal(rows[1].ActualAmount))
}

func TestTakesCacheKeysPerTeam(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.SetTable(ctx, "TheEnterprise", sampleTable())

	_, ok := cache.GetTable(ctx, "TheTrident")
	assert.False(t, ok)
}

func TestTakesCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.SetTable(ctx, "TheEnterprise", sampleTable())
	cache.Invalidate(ctx, "TheEnterprise")

	_, ok := cache.GetTable(ctx, "TheEnterprise")
	assert.False(t, ok)
}

func TestTakesCacheDropsCorruptEntries(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	key := cache.client.KeyBuilder.KeyTakesTable("TheEnterprise")
	mr.Set(key, "not json")

	_, ok := cache.GetTable(ctx, "TheEnterprise")
	assert.False(t, ok)
	assert.False(t, mr.Exists(key))
}

func TestTakesCacheExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.SetTable(ctx, "TheEnterprise", sampleTable())
	mr.FastForward(redis.TTLTakesTable * 2)

	_, ok := cache.GetTable(ctx, "TheEnterprise")
	assert.False(t, ok)
}

func TestTakesCacheNilClientDegrades(t *testing.T) {
	cache := NewTakesCache(nil, logger.NewNop())
	ctx := context.Background()

	cache.SetTable(ctx, "TheEnterprise", sampleTable())
	_, ok := cache.GetTable(ctx, "TheEnterprise")
	assert.False(t, ok)
	cache.Invalidate(ctx, "TheEnterprise")
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type brokenCacheRepo struct{}

func (brokenCacheRepo) Get(context.Context, string, interface{}) error {
	return errors.New("connection refused")
}

func (brokenCacheRepo) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("connection refused")
}

func (brokenCacheRepo) DeleteByPattern(context.Context, string) error {
	return errors.New("connection refused")
}

func TestCacheServiceRoundTrip(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(&stubCacheRepo{}, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var dest map[string]int
	hit, err := svc.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "k", map[string]int{"a": 1}, 0))
	hit, err = svc.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, map[string]int{"a": 1}, dest)

	assert.InDelta(t, 0.5, metrics.Snapshot().CacheHitRatio, 0.001)
}

func TestCacheServiceDisabledAndBroken(t *testing.T) {
	ctx := context.Background()
	var dest map[string]int

	disabled := NewCacheService(&stubCacheRepo{}, nil, 0, nil, false)
	assert.False(t, disabled.Enabled())
	hit, err := disabled.Get(ctx, "k", &dest)
	assert.NoError(t, err)
	assert.False(t, hit)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())

	broken := NewCacheService(brokenCacheRepo{}, nil, 0, nil, true)
	hit, err = broken.Get(ctx, "k", &dest)
	assert.Error(t, err)
	assert.False(t, hit)
	assert.Error(t, broken.Set(ctx, "k", 1, 0))
	assert.Error(t, broken.Invalidate(ctx, "k*"))
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/case-dashboard-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]any
	err := repo.Get(ctx, "case-dashboard:snapshot", &dest)
	require.ErrorIs(t, err, appErrors.ErrCacheMiss)

	assert.NoError(t, repo.Set(ctx, "case-dashboard:snapshot", map[string]any{"a": 1}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "case-dashboard:*"))
	assert.NoError(t, repo.Close())
}

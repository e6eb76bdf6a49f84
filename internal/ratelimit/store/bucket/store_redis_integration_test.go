//go:build integration

package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voterweight/pkg/testutil/containers"
)

func TestRedisBucketStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	store := NewRedis(rc.Client)

	for i := range 3 {
		result, err := store.Allow(ctx, "vw:ratelimit:test", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 3-i-1, result.Remaining)
	}

	result, err := store.Allow(ctx, "vw:ratelimit:test", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Positive(t, result.RetryAfter)

	require.NoError(t, store.Reset(ctx, "vw:ratelimit:test"))
	result, err = store.Allow(ctx, "vw:ratelimit:test", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_AllowWithinLimit(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewRateLimitStore(client)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := store.Allow(ctx, "owner-1", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}

	result, err := store.Allow(ctx, "owner-1", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.EqualValues(t, 0, result.Remaining)
}

func TestRateLimitStore_KeysAreIndependent(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewRateLimitStore(client)
	ctx := context.Background()

	_, err := store.Allow(ctx, "owner-1", 1, time.Minute)
	require.NoError(t, err)

	result, err := store.Allow(ctx, "owner-2", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

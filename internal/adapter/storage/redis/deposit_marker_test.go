package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestDepositMarker_MarkAndCheck(t *testing.T) {
	client, _ := newTestClient(t)
	marker := NewDepositMarker(client)
	ctx := context.Background()

	credited, err := marker.IsCredited(ctx, "0xabc")
	require.NoError(t, err)
	assert.False(t, credited)

	require.NoError(t, marker.MarkCredited(ctx, "0xabc", time.Hour))

	credited, err = marker.IsCredited(ctx, "0xabc")
	require.NoError(t, err)
	assert.True(t, credited)
}

func TestDepositMarker_MarkTwiceIsSafe(t *testing.T) {
	client, _ := newTestClient(t)
	marker := NewDepositMarker(client)
	ctx := context.Background()

	require.NoError(t, marker.MarkCredited(ctx, "0xabc", time.Hour))
	// Second write loses the NX race and is still a success.
	require.NoError(t, marker.MarkCredited(ctx, "0xabc", time.Hour))

	credited, err := marker.IsCredited(ctx, "0xabc")
	require.NoError(t, err)
	assert.True(t, credited)
}

func TestDepositMarker_Expires(t *testing.T) {
	client, mr := newTestClient(t)
	marker := NewDepositMarker(client)
	ctx := context.Background()

	require.NoError(t, marker.MarkCredited(ctx, "0xabc", time.Minute))
	mr.FastForward(2 * time.Minute)

	credited, err := marker.IsCredited(ctx, "0xabc")
	require.NoError(t, err)
	assert.False(t, credited)
}

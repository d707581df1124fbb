package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DepositMarker implements ports.DepositMarker using Redis. It is the cheap
// first layer of deposit idempotency; the deposit_claims row stays
// authoritative, so a lost marker only costs one extra database round trip.
type DepositMarker struct {
	client *goredis.Client
	prefix string
}

// NewDepositMarker creates a new Redis-backed deposit marker.
func NewDepositMarker(client *goredis.Client) *DepositMarker {
	return &DepositMarker{
		client: client,
		prefix: "deposit:credited:",
	}
}

// IsCredited reports whether the txHash has a credited marker.
func (m *DepositMarker) IsCredited(ctx context.Context, txHash string) (bool, error) {
	_, err := m.client.Get(ctx, m.prefix+txHash).Result()
	if err != nil {
		if err == goredis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("redis credited marker get: %w", err)
	}
	return true, nil
}

// MarkCredited writes the credited marker with a TTL. SET NX keeps the
// first writer's TTL when confirms race.
func (m *DepositMarker) MarkCredited(ctx context.Context, txHash string, ttl time.Duration) error {
	_, err := m.client.SetArgs(ctx, m.prefix+txHash, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil && err != goredis.Nil {
		return fmt.Errorf("redis credited marker set: %w", err)
	}
	return nil
}

package redis

import (
	"context"
	"fmt"
	"strconv"

	"auction-ledger/internal/domain"

	"github.com/go-redis/redis/v8"
)

// CounterAllocator takes ids from a shared INCR counter, so they stay
// unique across restarts for as long as Redis keeps the key.
type CounterAllocator struct {
	client *redis.Client
	key    string
}

func NewCounterAllocator(client *redis.Client, key string) *CounterAllocator {
	return &CounterAllocator{client: client, key: key}
}

func (r *CounterAllocator) Allocate(ctx context.Context) (domain.AuctionID, error) {
	n, err := r.client.Incr(ctx, r.key).Result()
	if err != nil {
		return "", fmt.Errorf("incr %s: %w", r.key, err)
	}
	// INCR starts at 1; ids start at 0 like the local counter.
	return domain.AuctionID(strconv.FormatInt(n-1, 10)), nil
}

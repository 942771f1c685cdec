package services

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"auction-ledger/internal/domain"

	"github.com/google/uuid"
)

// CounterAllocator is a process-local, strictly increasing counter starting
// at zero. Ids collide across restarts since nothing is persisted.
type CounterAllocator struct {
	mu   sync.Mutex
	next *big.Int
}

func NewCounterAllocator() *CounterAllocator {
	return &CounterAllocator{next: new(big.Int)}
}

func (c *CounterAllocator) Allocate(_ context.Context) (domain.AuctionID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := domain.AuctionID(c.next.String())
	c.next.Add(c.next, big.NewInt(1))
	return id, nil
}

// RandomAllocator draws an unsigned 64-bit id from a fresh random UUID.
type RandomAllocator struct {
	newRandom func() (uuid.UUID, error)
}

func NewRandomAllocator() *RandomAllocator {
	return &RandomAllocator{newRandom: uuid.NewRandom}
}

func (r *RandomAllocator) Allocate(ctx context.Context) (domain.AuctionID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	u, err := r.newRandom()
	if err != nil {
		return "", fmt.Errorf("draw random id: %w", err)
	}
	return domain.AuctionID(strconv.FormatUint(binary.BigEndian.Uint64(u[:8]), 10)), nil
}

// SystemClock reads the wall clock; time.Now carries a monotonic reading so
// differences between two readings never go backwards.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

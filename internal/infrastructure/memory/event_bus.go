package memory

import (
	"context"
	"errors"
	"sync"

	"auction-ledger/internal/domain"
	"auction-ledger/pkg/logger"
)

var ErrSubscriberFull = errors.New("event subscriber buffer full")

const subscriberBuffer = 256

// EventBus is the in-process stand-in for the Redis channel, used when Redis
// is disabled. Publishing never blocks; a full subscriber drops the event.
type EventBus struct {
	mutex       sync.RWMutex
	subscribers map[int]chan *domain.AuctionEvent
	nextID      int
	log         logger.Logger
}

func NewEventBus(log logger.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[int]chan *domain.AuctionEvent),
		log:         log,
	}
}

func (b *EventBus) PublishAuctionEvent(_ context.Context, event *domain.AuctionEvent) error {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	var dropped bool
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			dropped = true
		}
	}
	if dropped {
		return ErrSubscriberFull
	}
	return nil
}

// SubscribeToAuctionEvents runs handler for each event until ctx is done.
func (b *EventBus) SubscribeToAuctionEvents(ctx context.Context, handler domain.EventHandler) error {
	ch := make(chan *domain.AuctionEvent, subscriberBuffer)

	b.mutex.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	b.mutex.Unlock()

	defer func() {
		b.mutex.Lock()
		delete(b.subscribers, id)
		b.mutex.Unlock()
	}()

	for {
		select {
		case event := <-ch:
			if err := handler(event); err != nil {
				b.log.Error("Failed to handle event", "type", event.Type, "auction_id", event.AuctionID, "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Subscribers reports how many subscriptions are active.
func (b *EventBus) Subscribers() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.subscribers)
}

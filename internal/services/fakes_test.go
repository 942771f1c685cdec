package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"auction-ledger/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// scriptedAllocator hands out the given ids in order, then fails.
type scriptedAllocator struct {
	mu  sync.Mutex
	ids []domain.AuctionID
	err error
}

func (a *scriptedAllocator) Allocate(_ context.Context) (domain.AuctionID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	if len(a.ids) == 0 {
		return "", errors.New("exhausted")
	}
	id := a.ids[0]
	a.ids = a.ids[1:]
	return id, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.AuctionEvent
	err    error
}

func (p *recordingPublisher) PublishAuctionEvent(_ context.Context, event *domain.AuctionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Events() []*domain.AuctionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*domain.AuctionEvent(nil), p.events...)
}

type sentMessage struct {
	target  string
	message interface{}
}

// fakeNotifier records user notifications, broadcasts and closes in order.
type fakeNotifier struct {
	mu    sync.Mutex
	sent  []sentMessage
	close []domain.AuctionID
}

func (n *fakeNotifier) NotifyUser(_ context.Context, userID string, message interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{target: "user:" + userID, message: message})
	return nil
}

func (n *fakeNotifier) BroadcastToAuction(_ context.Context, auctionID domain.AuctionID, message interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{target: "auction:" + auctionID.String(), message: message})
	return nil
}

func (n *fakeNotifier) CloseAuction(_ context.Context, auctionID domain.AuctionID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.close = append(n.close, auctionID)
	return nil
}

type memoryBidRepository struct {
	mu     sync.Mutex
	events []*domain.AuctionEvent
}

func (r *memoryBidRepository) SaveBidEvent(_ context.Context, event *domain.AuctionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *memoryBidRepository) GetBidHistory(_ context.Context, auctionID domain.AuctionID) ([]*domain.AuctionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AuctionEvent
	for _, event := range r.events {
		if event.AuctionID == auctionID {
			out = append(out, event)
		}
	}
	return out, nil
}

// counterValue sums every sample of the named counter family in reg.
func counterValue(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	if err != nil {
		return -1
	}
	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

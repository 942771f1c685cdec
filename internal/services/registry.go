package services

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"auction-ledger/internal/domain"
	"auction-ledger/pkg/logger"
)

// maxAllocationAttempts bounds retries when an allocator hands out an id
// that is already taken.
const maxAllocationAttempts = 3

// AuctionRegistry owns every auction record. All mutations run under the
// write lock for the whole operation; reads copy out under the read lock.
type AuctionRegistry struct {
	ids    domain.IDAllocator
	clock  domain.Clock
	engine *BiddingEngine
	log    logger.Logger

	mutex    sync.RWMutex
	auctions map[domain.AuctionID]*domain.Auction
	order    []*domain.Auction // creation order, oldest first
}

func NewAuctionRegistry(ids domain.IDAllocator, clock domain.Clock, engine *BiddingEngine, log logger.Logger) *AuctionRegistry {
	return &AuctionRegistry{
		ids:      ids,
		clock:    clock,
		engine:   engine,
		log:      log,
		auctions: make(map[domain.AuctionID]*domain.Auction),
	}
}

func (r *AuctionRegistry) CreateAuction(ctx context.Context, item domain.Item, duration *big.Int) (domain.AuctionID, error) {
	if duration == nil || duration.Sign() < 0 {
		return "", domain.ErrInvalidDuration
	}

	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		// Allocation may block on I/O, so it happens before the lock.
		id, err := r.ids.Allocate(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrIDAllocationFailed, err)
		}

		if r.insert(id, item, duration) {
			r.log.Debug("Auction created", "auction_id", id, "duration", duration.String())
			return id, nil
		}
		r.log.Warn("Allocated auction id already in use", "auction_id", id, "attempt", attempt)
	}

	return "", fmt.Errorf("%w: no unused id after %d attempts", domain.ErrIDAllocationFailed, maxAllocationAttempts)
}

func (r *AuctionRegistry) insert(id domain.AuctionID, item domain.Item, duration *big.Int) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.auctions[id]; exists {
		return false
	}

	auction := &domain.Auction{
		ID:        id,
		Item:      item.Clone(),
		StartedAt: r.clock.Now(),
		Duration:  new(big.Int).Set(duration),
	}
	r.auctions[id] = auction
	r.order = append(r.order, auction)
	return true
}

// ListOverviews returns every auction, open and closed, newest first.
func (r *AuctionRegistry) ListOverviews(_ context.Context) []domain.AuctionOverview {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	overviews := make([]domain.AuctionOverview, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		auction := r.order[i]
		overviews = append(overviews, domain.AuctionOverview{
			ID:   auction.ID,
			Item: auction.Item.Clone(),
		})
	}
	return overviews
}

func (r *AuctionRegistry) GetDetails(_ context.Context, auctionID domain.AuctionID) (*domain.AuctionDetails, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	auction, exists := r.auctions[auctionID]
	if !exists {
		return nil, domain.ErrNotFound
	}

	return &domain.AuctionDetails{
		Item:          auction.Item.Clone(),
		BidHistory:    cloneBids(auction.BidHistory),
		RemainingTime: auction.RemainingTime(r.clock.Now()),
	}, nil
}

// PlaceBid is the only path that appends to a bid history. Nothing is
// changed unless every check passes.
func (r *AuctionRegistry) PlaceBid(_ context.Context, auctionID domain.AuctionID, price *big.Int, caller domain.Caller) (*domain.Bid, error) {
	if err := r.engine.CheckCaller(caller); err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	auction, exists := r.auctions[auctionID]
	if !exists {
		return nil, domain.ErrNotFound
	}

	bid, err := r.engine.Evaluate(auction, price, caller, r.clock.Now())
	if err != nil {
		return nil, err
	}

	auction.BidHistory = append(auction.BidHistory, *bid)
	accepted := bid.Clone()
	return &accepted, nil
}

// Closures lists the auctions whose remaining time is zero right now,
// oldest first, each with its winning bid if any.
func (r *AuctionRegistry) Closures(_ context.Context) []domain.Closure {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	now := r.clock.Now()
	var closures []domain.Closure
	for _, auction := range r.order {
		if !auction.IsClosed(now) {
			continue
		}
		closure := domain.Closure{AuctionID: auction.ID}
		if last, ok := auction.LastBid(); ok {
			winner := last.Clone()
			closure.Winner = &winner
		}
		closures = append(closures, closure)
	}
	return closures
}

func cloneBids(bids []domain.Bid) []domain.Bid {
	out := make([]domain.Bid, len(bids))
	for i, bid := range bids {
		out[i] = bid.Clone()
	}
	return out
}

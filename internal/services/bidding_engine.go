package services

import (
	"fmt"
	"math/big"
	"time"

	"auction-ledger/internal/domain"
)

// BiddingEngine holds the pure accept/reject rules for a bid. It never
// mutates the auction it inspects.
type BiddingEngine struct{}

func NewBiddingEngine() *BiddingEngine {
	return &BiddingEngine{}
}

// CheckCaller runs before the auction is even looked up, so an anonymous
// caller learns nothing about which ids exist.
func (e *BiddingEngine) CheckCaller(caller domain.Caller) error {
	if caller == nil || caller.IsAnonymous() {
		return domain.ErrAnonymousCaller
	}
	return nil
}

// MinimumPrice is one unit above the last bid, or 1 for an empty history.
func (e *BiddingEngine) MinimumPrice(auction *domain.Auction) *big.Int {
	last, ok := auction.LastBid()
	if !ok {
		return big.NewInt(1)
	}
	return new(big.Int).Add(last.Price, big.NewInt(1))
}

// Evaluate applies the checks in order: caller, price, then deadline. The
// returned bid is ready to append.
func (e *BiddingEngine) Evaluate(auction *domain.Auction, price *big.Int, caller domain.Caller, now time.Time) (*domain.Bid, error) {
	if err := e.CheckCaller(caller); err != nil {
		return nil, err
	}

	if price == nil {
		price = new(big.Int)
	}
	minimum := e.MinimumPrice(auction)
	if price.Cmp(minimum) < 0 {
		return nil, fmt.Errorf("%w: minimum is %s", domain.ErrPriceTooLow, minimum)
	}

	if auction.IsClosed(now) {
		return nil, domain.ErrAuctionClosed
	}

	return &domain.Bid{
		Originator: caller.Principal(),
		Price:      new(big.Int).Set(price),
		Time:       auction.Elapsed(now),
	}, nil
}

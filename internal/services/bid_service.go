package services

import (
	"context"
	"math/big"
	"time"

	"auction-ledger/internal/domain"
	"auction-ledger/internal/metrics"
	"auction-ledger/pkg/logger"
)

type BidService struct {
	registry domain.AuctionRegistry
	eventPub domain.EventPublisher
	metrics  *metrics.Metrics
	log      logger.Logger
}

func NewBidService(
	registry domain.AuctionRegistry,
	eventPub domain.EventPublisher,
	metrics *metrics.Metrics,
	log logger.Logger,
) *BidService {
	return &BidService{
		registry: registry,
		eventPub: eventPub,
		metrics:  metrics,
		log:      log,
	}
}

// PlaceBid commits the bid in the registry, then announces it. A failed
// announcement is logged and never undoes the bid.
func (s *BidService) PlaceBid(ctx context.Context, auctionID domain.AuctionID, price *big.Int, caller domain.Caller) (*domain.Bid, error) {
	bid, err := s.registry.PlaceBid(ctx, auctionID, price, caller)
	if err != nil {
		s.metrics.IncrementBidsRejected(domain.ErrorCode(err))
		s.log.Debug("Bid rejected", "auction_id", auctionID, "price", priceString(price), "error", err)
		return nil, err
	}

	s.metrics.IncrementBidsAccepted()
	s.log.Info("Bid accepted", "auction_id", auctionID, "user_id", bid.Originator, "price", bid.Price.String())

	publish(ctx, s.eventPub, s.metrics, s.log, &domain.AuctionEvent{
		Type:      domain.BidAccepted,
		AuctionID: auctionID,
		UserID:    bid.Originator,
		Price:     bid.Price,
		Elapsed:   bid.Time,
		Timestamp: time.Now(),
	})
	return bid, nil
}

func publish(ctx context.Context, pub domain.EventPublisher, m *metrics.Metrics, log logger.Logger, event *domain.AuctionEvent) {
	// The state change is already committed; a cancelled request must not
	// suppress the event.
	if err := pub.PublishAuctionEvent(context.WithoutCancel(ctx), event); err != nil {
		m.IncrementEventsDropped()
		log.Error("Failed to publish auction event", "type", event.Type, "auction_id", event.AuctionID, "error", err)
	}
}

func priceString(price *big.Int) string {
	if price == nil {
		return "<nil>"
	}
	return price.String()
}

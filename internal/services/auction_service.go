package services

import (
	"context"
	"math/big"
	"time"

	"auction-ledger/internal/domain"
	"auction-ledger/internal/metrics"
	"auction-ledger/pkg/logger"
)

type AuctionService struct {
	registry domain.AuctionRegistry
	eventPub domain.EventPublisher
	metrics  *metrics.Metrics
	log      logger.Logger
}

func NewAuctionService(
	registry domain.AuctionRegistry,
	eventPub domain.EventPublisher,
	metrics *metrics.Metrics,
	log logger.Logger,
) *AuctionService {
	return &AuctionService{
		registry: registry,
		eventPub: eventPub,
		metrics:  metrics,
		log:      log,
	}
}

func (s *AuctionService) CreateAuction(ctx context.Context, item domain.Item, duration *big.Int) (domain.AuctionID, error) {
	id, err := s.registry.CreateAuction(ctx, item, duration)
	if err != nil {
		s.log.Error("Failed to create auction", "error", err)
		return "", err
	}

	s.metrics.IncrementAuctionsCreated()
	s.log.Info("Auction created", "auction_id", id, "title", item.Title, "duration", duration.String())

	publish(ctx, s.eventPub, s.metrics, s.log, &domain.AuctionEvent{
		Type:      domain.AuctionCreated,
		AuctionID: id,
		Timestamp: time.Now(),
	})
	return id, nil
}

func (s *AuctionService) ListOverviews(ctx context.Context) []domain.AuctionOverview {
	return s.registry.ListOverviews(ctx)
}

func (s *AuctionService) GetDetails(ctx context.Context, auctionID domain.AuctionID) (*domain.AuctionDetails, error) {
	return s.registry.GetDetails(ctx, auctionID)
}

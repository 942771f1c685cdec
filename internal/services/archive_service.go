package services

import (
	"context"

	"auction-ledger/internal/domain"
	"auction-ledger/pkg/logger"
)

// ArchiveService copies accepted bids from the event stream into a
// BidRepository.
type ArchiveService struct {
	bidRepo domain.BidRepository
	log     logger.Logger
}

func NewArchiveService(bidRepo domain.BidRepository, log logger.Logger) *ArchiveService {
	return &ArchiveService{
		bidRepo: bidRepo,
		log:     log,
	}
}

func (as *ArchiveService) Start(ctx context.Context, subscriber domain.EventSubscriber) error {
	as.log.Info("Starting bid archive")
	return subscriber.SubscribeToAuctionEvents(ctx, func(event *domain.AuctionEvent) error {
		return as.HandleEvent(ctx, event)
	})
}

func (as *ArchiveService) HandleEvent(ctx context.Context, event *domain.AuctionEvent) error {
	// Only store successful bid events
	if event.Type != domain.BidAccepted {
		return nil
	}
	as.log.Debug("Storing bid event", "auction_id", event.AuctionID, "user_id", event.UserID, "price", priceString(event.Price))
	return as.bidRepo.SaveBidEvent(context.WithoutCancel(ctx), event)
}

func (as *ArchiveService) History(ctx context.Context, auctionID domain.AuctionID) ([]*domain.AuctionEvent, error) {
	return as.bidRepo.GetBidHistory(ctx, auctionID)
}

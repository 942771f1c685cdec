package services

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"auction-ledger/internal/domain"
	"auction-ledger/pkg/logger"
)

// EventListener relays auction events to websocket watchers. It remembers
// the current leader per auction so an outbid user can be told directly.
// Events may arrive out of commit order; a bid no higher than the recorded
// leader is stale and dropped.
type EventListener struct {
	broadcaster domain.AuctionBroadcaster
	notifier    domain.UserNotifier
	log         logger.Logger

	leaderMutex sync.Mutex
	leaders     map[domain.AuctionID]leader
}

type leader struct {
	userID string
	price  *big.Int
}

func NewEventListener(broadcaster domain.AuctionBroadcaster, notifier domain.UserNotifier, log logger.Logger) *EventListener {
	return &EventListener{
		broadcaster: broadcaster,
		notifier:    notifier,
		log:         log,
		leaders:     make(map[domain.AuctionID]leader),
	}
}

func (el *EventListener) Start(ctx context.Context, subscriber domain.EventSubscriber) error {
	el.log.Info("Starting event listener")
	return subscriber.SubscribeToAuctionEvents(ctx, el.HandleEvent)
}

func (el *EventListener) HandleEvent(event *domain.AuctionEvent) error {
	el.log.Debug("Handling auction event", "type", event.Type, "auction_id", event.AuctionID)

	switch event.Type {
	case domain.BidAccepted:
		return el.handleBidAccepted(event)
	case domain.AuctionEnded:
		return el.handleAuctionEnded(event)
	case domain.AuctionCreated:
		return nil
	}

	return fmt.Errorf("unknown event type %q", event.Type)
}

func (el *EventListener) handleBidAccepted(event *domain.AuctionEvent) error {
	previous, fresh := el.advanceLeader(event.AuctionID, event.UserID, event.Price)
	if !fresh {
		el.log.Debug("Dropping stale bid event", "auction_id", event.AuctionID,
			"user_id", event.UserID, "price", numberString(event.Price))
		return nil
	}
	if previous != "" && previous != event.UserID {
		if err := el.notifier.NotifyUser(context.Background(), previous, map[string]interface{}{
			"type":       "outbid",
			"auction_id": event.AuctionID,
			"price":      numberString(event.Price),
		}); err != nil {
			el.log.Warn("Failed to notify outbid user", "user_id", previous, "error", err)
		}
	}

	// Broadcast to all connected users for this auction
	return el.broadcaster.BroadcastToAuction(context.Background(), event.AuctionID, map[string]interface{}{
		"type":           "bid_update",
		"current_bid":    numberString(event.Price),
		"current_winner": event.UserID,
		"elapsed":        numberString(event.Elapsed),
		"timestamp":      event.Timestamp,
	})
}

func (el *EventListener) handleAuctionEnded(event *domain.AuctionEvent) error {
	el.leaderMutex.Lock()
	delete(el.leaders, event.AuctionID)
	el.leaderMutex.Unlock()

	// Final broadcast
	if err := el.broadcaster.BroadcastToAuction(context.Background(), event.AuctionID, map[string]interface{}{
		"type":        "auction_ended",
		"winner":      event.UserID,
		"final_price": numberString(event.Price),
		"timestamp":   event.Timestamp,
	}); err != nil {
		el.log.Error("Failed to broadcast auction ended event", "error", err)
		return err
	}

	if err := el.broadcaster.CloseAuction(context.Background(), event.AuctionID); err != nil {
		el.log.Error("Failed to finalize connections for auction", "auction_id",
			event.AuctionID, "error", err)
		return err
	}
	return nil
}

// advanceLeader records userID as leader when price beats the current one
// and returns the previous leader. fresh is false for a stale event.
func (el *EventListener) advanceLeader(auctionID domain.AuctionID, userID string, price *big.Int) (previous string, fresh bool) {
	if price == nil {
		price = new(big.Int)
	}

	el.leaderMutex.Lock()
	defer el.leaderMutex.Unlock()

	current, exists := el.leaders[auctionID]
	if exists && price.Cmp(current.price) <= 0 {
		return "", false
	}
	el.leaders[auctionID] = leader{userID: userID, price: new(big.Int).Set(price)}
	return current.userID, true
}

func numberString(n *big.Int) string {
	if n == nil {
		return ""
	}
	return n.String()
}

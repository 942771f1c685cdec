package domain

import (
	"context"
	"math/big"
	"time"
)

// Registry interface
type AuctionRegistry interface {
	CreateAuction(ctx context.Context, item Item, duration *big.Int) (AuctionID, error)
	ListOverviews(ctx context.Context) []AuctionOverview
	GetDetails(ctx context.Context, auctionID AuctionID) (*AuctionDetails, error)
	PlaceBid(ctx context.Context, auctionID AuctionID, price *big.Int, caller Caller) (*Bid, error)
	Closures(ctx context.Context) []Closure
}

// IDAllocator hands out fresh auction ids. Implementations may block on
// external I/O and must be called outside the registry lock.
type IDAllocator interface {
	Allocate(ctx context.Context) (AuctionID, error)
}

type Clock interface {
	Now() time.Time
}

// Repository interfaces
type BidRepository interface {
	SaveBidEvent(ctx context.Context, event *AuctionEvent) error
	GetBidHistory(ctx context.Context, auctionID AuctionID) ([]*AuctionEvent, error)
}

// Event interfaces
type EventPublisher interface {
	PublishAuctionEvent(ctx context.Context, event *AuctionEvent) error
}

type EventSubscriber interface {
	SubscribeToAuctionEvents(ctx context.Context, handler EventHandler) error
}

type EventHandler func(event *AuctionEvent) error

// Notification interfaces
type UserNotifier interface {
	NotifyUser(ctx context.Context, userID string, message interface{}) error
}

type AuctionBroadcaster interface {
	BroadcastToAuction(ctx context.Context, auctionID AuctionID, message interface{}) error
	CloseAuction(ctx context.Context, auctionID AuctionID) error
}

// WebSocket interfaces
type WebSocketConnection interface {
	Send(message interface{}) error
	Close() error
	UserID() string
	AuctionID() AuctionID
}

type ConnectionManager interface {
	RegisterConnection(userID string, auctionID AuctionID, conn WebSocketConnection) error
	UnregisterConnection(userID string, auctionID AuctionID, conn WebSocketConnection) error
	GetConnectionsForAuction(auctionID AuctionID) []WebSocketConnection
	GetConnectionsForUser(userID string) []WebSocketConnection
	BroadcastToAuction(auctionID AuctionID, message interface{}) error
	NotifyUser(userID string, message interface{}) error
	CloseAndUnregisterConnections(auctionID AuctionID) error
}

package websocket

import (
	"context"

	"auction-ledger/internal/domain"
)

type WebSocketNotifier struct {
	connManager domain.ConnectionManager
}

func NewWebSocketNotifier(connManager domain.ConnectionManager) *WebSocketNotifier {
	return &WebSocketNotifier{connManager: connManager}
}

func (n *WebSocketNotifier) NotifyUser(ctx context.Context, userID string, message interface{}) error {
	return n.connManager.NotifyUser(userID, message)
}

func (n *WebSocketNotifier) BroadcastToAuction(ctx context.Context, auctionID domain.AuctionID, message interface{}) error {
	return n.connManager.BroadcastToAuction(auctionID, message)
}

func (n *WebSocketNotifier) CloseAuction(ctx context.Context, auctionID domain.AuctionID) error {
	return n.connManager.CloseAndUnregisterConnections(auctionID)
}

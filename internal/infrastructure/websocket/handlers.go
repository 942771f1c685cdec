package websocket

import (
	"context"
	"math/big"
	"net/http"
	"sync"
	"time"

	"auction-ledger/internal/api/middleware"
	"auction-ledger/internal/domain"
	"auction-ledger/pkg/logger"
	"auction-ledger/pkg/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	// Largest client message accepted; a bid is a few dozen bytes.
	maxMessageSize = 4096

	// Per-message write deadline.
	writeWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // identity comes from the principal, not the origin
	},
}

type Bidder interface {
	PlaceBid(ctx context.Context, auctionID domain.AuctionID, price *big.Int, caller domain.Caller) (*domain.Bid, error)
}

type AuctionReader interface {
	GetDetails(ctx context.Context, auctionID domain.AuctionID) (*domain.AuctionDetails, error)
}

type clientMessage struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

type WebSocketHandler struct {
	bidder      Bidder
	auctions    AuctionReader
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewWebSocketHandler(bidder Bidder, auctions AuctionReader,
	connManager domain.ConnectionManager, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		bidder:      bidder,
		auctions:    auctions,
		connManager: connManager,
		log:         log,
	}
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	auctionID, ok := domain.ParseAuctionID(vars["auctionID"])
	if !ok {
		http.Error(w, "auction not found", http.StatusNotFound)
		return
	}

	details, err := h.auctions.GetDetails(r.Context(), auctionID)
	if err != nil {
		h.log.Info("Rejected connection - unknown auction", "auction_id", auctionID)
		http.Error(w, "auction not found", http.StatusNotFound)
		return
	}
	if details.RemainingTime.Sign() == 0 {
		h.log.Info("Rejected connection - auction has ended", "auction_id", auctionID)
		http.Error(w, "auction has already ended", http.StatusForbidden)
		return
	}

	caller := middleware.PrincipalFromRequest(r)
	// Anonymous watchers each get their own key; they can watch but not bid.
	userID := caller.Principal()
	if caller.IsAnonymous() {
		userID = "anonymous-" + uuid.NewString()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	wsConn := NewWebSocketConnection(conn, userID, auctionID)

	// Register connection
	if err := h.connManager.RegisterConnection(userID, auctionID, wsConn); err != nil {
		h.log.Error("Failed to register connection", "error", err)
		conn.Close()
		return
	}

	// Start message handling
	go h.handleMessages(wsConn, caller)
}

func (h *WebSocketHandler) handleMessages(conn *WebSocketConnection, caller domain.Caller) {
	defer func() {
		h.connManager.UnregisterConnection(conn.UserID(), conn.AuctionID(), conn)
		conn.Close()
	}()

	for {
		var msg clientMessage
		if err := conn.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("Failed to read message", "user_id", conn.UserID(), "error", err)
			}
			return
		}

		switch msg.Type {
		case "place_bid":
			h.handleBidMessage(conn, caller, msg)
		case "ping":
			conn.Send(map[string]string{"type": "pong"})
		default:
			conn.Send(map[string]string{"type": "error", "message": "unknown message type"})
		}
	}
}

func (h *WebSocketHandler) handleBidMessage(conn *WebSocketConnection, caller domain.Caller, msg clientMessage) {
	price, err := utils.NonNegativeInteger(msg.Amount)
	if err != nil {
		conn.Send(map[string]string{"type": "error", "message": "invalid amount: " + err.Error()})
		return
	}

	bid, err := h.bidder.PlaceBid(context.Background(), conn.AuctionID(), price, caller)
	if err != nil {
		conn.Send(map[string]string{
			"type":    "bid_rejected",
			"reason":  domain.ErrorCode(err),
			"message": err.Error(),
		})
		return
	}

	conn.Send(map[string]string{
		"type":    "bid_accepted",
		"price":   bid.Price.String(),
		"elapsed": bid.Time.String(),
	})
}

// WebSocketConnection serializes writes; gorilla allows one writer at a time
// and broadcasts arrive from the event listener goroutine.
type WebSocketConnection struct {
	conn      *websocket.Conn
	userID    string
	auctionID domain.AuctionID
	writeMu   sync.Mutex
	writeWait time.Duration
}

func NewWebSocketConnection(conn *websocket.Conn, userID string, auctionID domain.AuctionID) *WebSocketConnection {
	return &WebSocketConnection{
		conn:      conn,
		userID:    userID,
		auctionID: auctionID,
		writeWait: writeWait,
	}
}

// Send fails once the peer stops reading for writeWait. A timed out write
// leaves the connection unusable, so it is closed and its reader unregisters it.
func (wsc *WebSocketConnection) Send(message interface{}) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()

	if err := wsc.conn.SetWriteDeadline(time.Now().Add(wsc.writeWait)); err != nil {
		return err
	}
	if err := wsc.conn.WriteJSON(message); err != nil {
		wsc.conn.Close()
		return err
	}
	return nil
}

func (wsc *WebSocketConnection) Close() error {
	return wsc.conn.Close()
}

func (wsc *WebSocketConnection) UserID() string {
	return wsc.userID
}

func (wsc *WebSocketConnection) AuctionID() domain.AuctionID {
	return wsc.auctionID
}

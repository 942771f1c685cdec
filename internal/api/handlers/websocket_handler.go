package handlers

import (
	"net/http"

	"auction-ledger/internal/api/middleware"
	"auction-ledger/internal/domain"
	"auction-ledger/internal/infrastructure/websocket"
	"auction-ledger/pkg/logger"

	"github.com/gorilla/mux"
)

type WebSocketHandlers struct {
	wsHandler *websocket.WebSocketHandler
	log       logger.Logger
}

func NewWebSocketHandlers(bidder websocket.Bidder, auctions websocket.AuctionReader,
	connManager domain.ConnectionManager, log logger.Logger) *WebSocketHandlers {
	wsHandler := websocket.NewWebSocketHandler(bidder, auctions, connManager, log)
	return &WebSocketHandlers{
		wsHandler: wsHandler,
		log:       log,
	}
}

func (h *WebSocketHandlers) HandleConnection(w http.ResponseWriter, r *http.Request) {
	h.wsHandler.HandleConnection(w, r)
}

// Router serves the live feed under /ws/auctions/{auctionID}.
func (h *WebSocketHandlers) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.CORSWithLogging(h.log))
	router.HandleFunc("/ws/auctions/{auctionID}", h.HandleConnection).Methods(http.MethodGet)
	return router
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"auction-ledger/internal/api/middleware"
	"auction-ledger/internal/domain"
	"auction-ledger/pkg/logger"

	"github.com/gorilla/mux"
)

type BidArchive interface {
	History(ctx context.Context, auctionID domain.AuctionID) ([]*domain.AuctionEvent, error)
}

type ArchiveHandler struct {
	archive BidArchive
	log     logger.Logger
}

type ArchivedBidResponse struct {
	UserID    string    `json:"user_id"`
	Price     string    `json:"price"`
	Elapsed   string    `json:"elapsed"`
	Timestamp time.Time `json:"timestamp"`
}

func NewArchiveHandler(archive BidArchive, log logger.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		archive: archive,
		log:     log,
	}
}

func (h *ArchiveHandler) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.CORSWithLogging(h.log))
	router.HandleFunc("/archive/auctions/{auctionID}/bids", h.GetBidHistory).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	return router
}

func (h *ArchiveHandler) GetBidHistory(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := domain.ParseAuctionID(mux.Vars(r)["auctionID"])
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "auction not found"})
		return
	}

	events, err := h.archive.History(r.Context(), auctionID)
	if err != nil {
		h.log.Error("Failed to load bid history", "auction_id", auctionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "failed to load bid history"})
		return
	}

	response := make([]ArchivedBidResponse, 0, len(events))
	for _, event := range events {
		response = append(response, ArchivedBidResponse{
			UserID:    event.UserID,
			Price:     event.Price.String(),
			Elapsed:   event.Elapsed.String(),
			Timestamp: event.Timestamp,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

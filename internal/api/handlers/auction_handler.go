package handlers

import (
	"context"
	"errors"
	"math/big"
	"net/http"

	"auction-ledger/internal/api/middleware"
	"auction-ledger/internal/domain"
	"auction-ledger/pkg/logger"
	"auction-ledger/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type AuctionManager interface {
	CreateAuction(ctx context.Context, item domain.Item, duration *big.Int) (domain.AuctionID, error)
	ListOverviews(ctx context.Context) []domain.AuctionOverview
	GetDetails(ctx context.Context, auctionID domain.AuctionID) (*domain.AuctionDetails, error)
}

type BidPlacer interface {
	PlaceBid(ctx context.Context, auctionID domain.AuctionID, price *big.Int, caller domain.Caller) (*domain.Bid, error)
}

type AuctionHandler struct {
	auctions AuctionManager
	bids     BidPlacer
	log      logger.Logger
}

// Image travels as base64, the default JSON encoding of []byte.
type ItemPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       []byte `json:"image"`
}

type CreateAuctionRequest struct {
	ItemPayload
	Duration *decimal.Decimal `json:"duration"`
}

type CreateAuctionResponse struct {
	AuctionID string `json:"id"`
}

type PlaceBidRequest struct {
	Price *decimal.Decimal `json:"price"`
}

type BidResponse struct {
	Originator string `json:"originator"`
	Price      string `json:"price"`
	Time       string `json:"time"`
}

type OverviewResponse struct {
	ID   string      `json:"id"`
	Item ItemPayload `json:"item"`
}

type DetailsResponse struct {
	Item          ItemPayload   `json:"item"`
	BidHistory    []BidResponse `json:"bid_history"`
	RemainingTime string        `json:"remaining_time"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewAuctionHandler(auctions AuctionManager, bids BidPlacer, log logger.Logger) *AuctionHandler {
	return &AuctionHandler{
		auctions: auctions,
		bids:     bids,
		log:      log,
	}
}

// Register mounts the auction routes on g.
func (h *AuctionHandler) Register(g *echo.Group) {
	g.GET("/auctions", h.ListAuctions)
	g.POST("/auctions", h.CreateAuction)
	g.GET("/auctions/:id", h.GetAuction)
	g.POST("/auctions/:id/bids", h.PlaceBid)
}

func (h *AuctionHandler) CreateAuction(c echo.Context) error {
	var req CreateAuctionRequest
	if err := c.Bind(&req); err != nil {
		h.log.Debug("Failed to bind request", "error", err)
		return invalidRequest(c, "invalid request body")
	}

	if req.Duration == nil {
		return invalidRequest(c, "duration is required")
	}
	duration, err := utils.NonNegativeInteger(*req.Duration)
	if err != nil {
		return invalidRequest(c, "duration: "+err.Error())
	}

	item := domain.Item{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
	}
	id, err := h.auctions.CreateAuction(c.Request().Context(), item, duration)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, CreateAuctionResponse{AuctionID: id.String()})
}

func (h *AuctionHandler) ListAuctions(c echo.Context) error {
	overviews := h.auctions.ListOverviews(c.Request().Context())

	response := make([]OverviewResponse, 0, len(overviews))
	for _, overview := range overviews {
		response = append(response, OverviewResponse{
			ID:   overview.ID.String(),
			Item: toItemPayload(overview.Item),
		})
	}
	return c.JSON(http.StatusOK, response)
}

func (h *AuctionHandler) GetAuction(c echo.Context) error {
	auctionID, ok := domain.ParseAuctionID(c.Param("id"))
	if !ok {
		return writeError(c, domain.ErrNotFound)
	}

	details, err := h.auctions.GetDetails(c.Request().Context(), auctionID)
	if err != nil {
		return writeError(c, err)
	}

	history := make([]BidResponse, 0, len(details.BidHistory))
	for _, bid := range details.BidHistory {
		history = append(history, toBidResponse(bid))
	}
	return c.JSON(http.StatusOK, DetailsResponse{
		Item:          toItemPayload(details.Item),
		BidHistory:    history,
		RemainingTime: details.RemainingTime.String(),
	})
}

func (h *AuctionHandler) PlaceBid(c echo.Context) error {
	caller := middleware.CallerFrom(c)
	// Identity is checked before the id or body is even looked at.
	if caller.IsAnonymous() {
		return writeError(c, domain.ErrAnonymousCaller)
	}

	auctionID, ok := domain.ParseAuctionID(c.Param("id"))
	if !ok {
		return writeError(c, domain.ErrNotFound)
	}

	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, "invalid request body")
	}
	if req.Price == nil {
		return invalidRequest(c, "price is required")
	}
	price, err := utils.NonNegativeInteger(*req.Price)
	if err != nil {
		return invalidRequest(c, "price: "+err.Error())
	}

	bid, err := h.bids.PlaceBid(c.Request().Context(), auctionID, price, caller)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toBidResponse(*bid))
}

func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAnonymousCaller):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrPriceTooLow):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAuctionClosed):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrIDAllocationFailed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidDuration):
		status = http.StatusBadRequest
	}
	return c.JSON(status, ErrorResponse{Error: domain.ErrorCode(err), Message: err.Error()})
}

func invalidRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: message})
}

func toItemPayload(item domain.Item) ItemPayload {
	return ItemPayload{
		Title:       item.Title,
		Description: item.Description,
		Image:       item.Image,
	}
}

func toBidResponse(bid domain.Bid) BidResponse {
	return BidResponse{
		Originator: bid.Originator,
		Price:      bid.Price.String(),
		Time:       bid.Time.String(),
	}
}

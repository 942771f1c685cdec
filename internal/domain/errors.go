package domain

import "errors"

// Sentinel errors returned by the registry. Callers match them with
// errors.Is; the registry may wrap them with extra context.
var (
	ErrNotFound           = errors.New("auction not found")
	ErrAnonymousCaller    = errors.New("anonymous caller")
	ErrPriceTooLow        = errors.New("price too low")
	ErrAuctionClosed      = errors.New("auction closed")
	ErrIDAllocationFailed = errors.New("id allocation failed")
	ErrInvalidDuration    = errors.New("invalid duration")
)

// ErrorCode maps an error to the stable code shown to clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAnonymousCaller):
		return "anonymous_caller"
	case errors.Is(err, ErrPriceTooLow):
		return "price_too_low"
	case errors.Is(err, ErrAuctionClosed):
		return "auction_closed"
	case errors.Is(err, ErrIDAllocationFailed):
		return "id_allocation_failed"
	case errors.Is(err, ErrInvalidDuration):
		return "invalid_request"
	default:
		return "internal_error"
	}
}

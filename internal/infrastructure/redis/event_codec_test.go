package redis

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-ledger/internal/domain"
)

func TestEventCodec(t *testing.T) {
	huge, _ := new(big.Int).SetString("98765432109876543210987654321", 10)
	event := &domain.AuctionEvent{
		Type:      domain.BidAccepted,
		AuctionID: "12",
		UserID:    "alice",
		Price:     huge,
		Elapsed:   big.NewInt(4),
		Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	payload, err := EncodeEvent(event)
	require.NoError(t, err)
	assert.Contains(t, payload, `"price":98765432109876543210987654321`)

	decoded, err := ParseEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, event.Type, decoded.Type)
	assert.Equal(t, event.AuctionID, decoded.AuctionID)
	assert.Equal(t, 0, event.Price.Cmp(decoded.Price))
	assert.Equal(t, 0, event.Elapsed.Cmp(decoded.Elapsed))
	assert.True(t, event.Timestamp.Equal(decoded.Timestamp))
}

func TestParseEvent_Invalid(t *testing.T) {
	for _, payload := range []string{
		`not json`,
		`{"auction_id":"1"}`,
		`{"type":"bid_accepted"}`,
	} {
		_, err := ParseEvent(payload)
		assert.Error(t, err, payload)
	}
}

func TestEncodeEvent_OmitsEmptyWinner(t *testing.T) {
	payload, err := EncodeEvent(&domain.AuctionEvent{Type: domain.AuctionEnded, AuctionID: "3"})
	require.NoError(t, err)
	assert.NotContains(t, payload, "user_id")
	assert.NotContains(t, payload, "price")
}

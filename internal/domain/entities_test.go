package domain

import (
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAuctionID(t *testing.T) {
	tests := []struct {
		in   string
		want AuctionID
		ok   bool
	}{
		{"0", "0", true},
		{"42", "42", true},
		{"007", "7", true},
		{"18446744073709551616", "18446744073709551616", true},
		{"-1", "", false},
		{"abc", "", false},
		{"", "", false},
		{"1.5", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAuctionID(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuction_RemainingTime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	auction := &Auction{StartedAt: start, Duration: big.NewInt(60)}

	assert.Equal(t, "60", auction.RemainingTime(start).String())
	assert.Equal(t, "60", auction.RemainingTime(start.Add(999*time.Millisecond)).String())
	assert.Equal(t, "55", auction.RemainingTime(start.Add(5*time.Second)).String())
	assert.Equal(t, "0", auction.RemainingTime(start.Add(60*time.Second)).String())
	assert.Equal(t, "0", auction.RemainingTime(start.Add(time.Hour)).String())
	assert.Equal(t, "60", auction.RemainingTime(start.Add(-time.Minute)).String(), "clock before start")

	assert.False(t, auction.IsClosed(start.Add(59*time.Second)))
	assert.True(t, auction.IsClosed(start.Add(60*time.Second)))

	zero := &Auction{StartedAt: start, Duration: big.NewInt(0)}
	assert.True(t, zero.IsClosed(start))
}

func TestAuction_LastBid(t *testing.T) {
	auction := &Auction{}
	_, ok := auction.LastBid()
	assert.False(t, ok)

	auction.BidHistory = []Bid{
		{Originator: "a", Price: big.NewInt(1), Time: big.NewInt(0)},
		{Originator: "b", Price: big.NewInt(2), Time: big.NewInt(1)},
	}
	last, ok := auction.LastBid()
	assert.True(t, ok)
	assert.Equal(t, "b", last.Originator)
}

func TestBid_CloneIsDeep(t *testing.T) {
	bid := Bid{Originator: "a", Price: big.NewInt(5), Time: big.NewInt(1)}
	clone := bid.Clone()
	clone.Price.SetInt64(99)
	assert.Equal(t, int64(5), bid.Price.Int64())
}

func TestPrincipal_IsAnonymous(t *testing.T) {
	assert.True(t, Principal("").IsAnonymous())
	assert.True(t, Principal(AnonymousPrincipal).IsAnonymous())
	assert.False(t, Principal("aaaaa-aa").IsAnonymous())
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "not_found", ErrorCode(ErrNotFound))
	assert.Equal(t, "price_too_low", ErrorCode(fmt.Errorf("%w: minimum is 3", ErrPriceTooLow)))
	assert.Equal(t, "auction_closed", ErrorCode(ErrAuctionClosed))
	assert.Equal(t, "anonymous_caller", ErrorCode(ErrAnonymousCaller))
	assert.Equal(t, "id_allocation_failed", ErrorCode(fmt.Errorf("%w: boom", ErrIDAllocationFailed)))
	assert.Equal(t, "invalid_request", ErrorCode(ErrInvalidDuration))
	assert.Equal(t, "internal_error", ErrorCode(errors.New("other")))
}

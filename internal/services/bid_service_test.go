package services

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-ledger/internal/domain"
	"auction-ledger/internal/metrics"
	"auction-ledger/pkg/logger"
)

type serviceFixture struct {
	clock     *fakeClock
	registry  *AuctionRegistry
	publisher *recordingPublisher
	reg       *prometheus.Registry
	auctions  *AuctionService
	bids      *BidService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		clock:     newFakeClock(),
		publisher: &recordingPublisher{},
		reg:       prometheus.NewRegistry(),
	}
	m := metrics.New(f.reg)
	f.registry = NewAuctionRegistry(NewCounterAllocator(), f.clock, NewBiddingEngine(), logger.NewNop())
	f.auctions = NewAuctionService(f.registry, f.publisher, m, logger.NewNop())
	f.bids = NewBidService(f.registry, f.publisher, m, logger.NewNop())
	return f
}

func TestBidService_PlaceBid(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted bid is published", func(t *testing.T) {
		f := newServiceFixture(t)
		id, err := f.auctions.CreateAuction(ctx, domain.Item{Title: "lamp"}, big.NewInt(60))
		require.NoError(t, err)

		f.clock.Advance(7 * time.Second)
		bid, err := f.bids.PlaceBid(ctx, id, big.NewInt(3), domain.Principal("alice"))
		require.NoError(t, err)
		assert.Equal(t, int64(7), bid.Time.Int64())

		events := f.publisher.Events()
		require.Len(t, events, 2)
		assert.Equal(t, domain.AuctionCreated, events[0].Type)
		assert.Equal(t, domain.BidAccepted, events[1].Type)
		assert.Equal(t, id, events[1].AuctionID)
		assert.Equal(t, "alice", events[1].UserID)
		assert.Equal(t, "3", events[1].Price.String())
		assert.Equal(t, "7", events[1].Elapsed.String())

		assert.Equal(t, 1.0, counterValue(f.reg, "auction_ledger_auctions_created_total"))
		assert.Equal(t, 1.0, counterValue(f.reg, "auction_ledger_bids_accepted_total"))
	})

	t.Run("rejected bid is counted and not published", func(t *testing.T) {
		f := newServiceFixture(t)
		id, err := f.auctions.CreateAuction(ctx, domain.Item{}, big.NewInt(60))
		require.NoError(t, err)

		_, err = f.bids.PlaceBid(ctx, id, big.NewInt(0), domain.Principal("alice"))
		assert.ErrorIs(t, err, domain.ErrPriceTooLow)
		_, err = f.bids.PlaceBid(ctx, "42", big.NewInt(1), domain.Principal("alice"))
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.Len(t, f.publisher.Events(), 1)
		assert.Equal(t, 2.0, counterValue(f.reg, "auction_ledger_bids_rejected_total"))
		assert.Equal(t, 0.0, counterValue(f.reg, "auction_ledger_bids_accepted_total"))
	})

	t.Run("publish failure keeps the bid", func(t *testing.T) {
		f := newServiceFixture(t)
		id, err := f.auctions.CreateAuction(ctx, domain.Item{}, big.NewInt(60))
		require.NoError(t, err)
		f.publisher.err = errors.New("broker unavailable")

		_, err = f.bids.PlaceBid(ctx, id, big.NewInt(1), domain.Principal("alice"))
		require.NoError(t, err)

		details, err := f.auctions.GetDetails(ctx, id)
		require.NoError(t, err)
		assert.Len(t, details.BidHistory, 1)
		assert.Equal(t, 1.0, counterValue(f.reg, "auction_ledger_events_dropped_total"))
	})

	t.Run("cancelled request still publishes", func(t *testing.T) {
		f := newServiceFixture(t)
		id, err := f.auctions.CreateAuction(ctx, domain.Item{}, big.NewInt(60))
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = f.bids.PlaceBid(cancelled, id, big.NewInt(1), domain.Principal("alice"))
		require.NoError(t, err)
		assert.Len(t, f.publisher.Events(), 2)
	})
}

func TestAuctionService_CreateAuction(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid duration is not counted", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.auctions.CreateAuction(ctx, domain.Item{}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)
		assert.Empty(t, f.publisher.Events())
		assert.Equal(t, 0.0, counterValue(f.reg, "auction_ledger_auctions_created_total"))
	})

	t.Run("reads pass through to the registry", func(t *testing.T) {
		f := newServiceFixture(t)
		first, err := f.auctions.CreateAuction(ctx, domain.Item{Title: "first"}, big.NewInt(5))
		require.NoError(t, err)
		second, err := f.auctions.CreateAuction(ctx, domain.Item{Title: "second"}, big.NewInt(5))
		require.NoError(t, err)

		overviews := f.auctions.ListOverviews(ctx)
		require.Len(t, overviews, 2)
		assert.Equal(t, second, overviews[0].ID)
		assert.Equal(t, first, overviews[1].ID)

		details, err := f.auctions.GetDetails(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, "first", details.Item.Title)
		assert.Equal(t, "5", details.RemainingTime.String())
	})
}

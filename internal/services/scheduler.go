package services

import (
	"context"
	"sync"
	"time"

	"auction-ledger/internal/domain"
	"auction-ledger/internal/metrics"
	"auction-ledger/pkg/logger"

	"github.com/robfig/cron/v3"
)

// ClosingScheduler periodically looks for auctions whose deadline passed and
// announces each closure once. It only reads the registry; closing itself is
// derived from the clock.
type ClosingScheduler struct {
	cron     *cron.Cron
	spec     string
	registry domain.AuctionRegistry
	eventPub domain.EventPublisher
	metrics  *metrics.Metrics
	log      logger.Logger

	mutex     sync.Mutex
	announced map[domain.AuctionID]struct{}
}

func NewClosingScheduler(spec string, registry domain.AuctionRegistry, eventPub domain.EventPublisher,
	metrics *metrics.Metrics, log logger.Logger) *ClosingScheduler {
	return &ClosingScheduler{
		cron:      cron.New(cron.WithSeconds()),
		spec:      spec,
		registry:  registry,
		eventPub:  eventPub,
		metrics:   metrics,
		log:       log,
		announced: make(map[domain.AuctionID]struct{}),
	}
}

func (s *ClosingScheduler) Start(ctx context.Context) error {
	s.log.Info("Starting closing scheduler", "spec", s.spec)

	_, err := s.cron.AddFunc(s.spec, func() {
		s.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish.
func (s *ClosingScheduler) Stop() error {
	s.log.Info("Stopping closing scheduler")
	<-s.cron.Stop().Done()
	return nil
}

// Sweep announces every closure not announced before and returns how many
// were announced.
func (s *ClosingScheduler) Sweep(ctx context.Context) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	count := 0
	for _, closure := range s.registry.Closures(ctx) {
		if _, done := s.announced[closure.AuctionID]; done {
			continue
		}
		s.announced[closure.AuctionID] = struct{}{}
		count++

		event := &domain.AuctionEvent{
			Type:      domain.AuctionEnded,
			AuctionID: closure.AuctionID,
			Timestamp: time.Now(),
		}
		if closure.Winner != nil {
			event.UserID = closure.Winner.Originator
			event.Price = closure.Winner.Price
			event.Elapsed = closure.Winner.Time
		}

		s.log.Info("Auction ended", "auction_id", closure.AuctionID, "winner", event.UserID)
		publish(ctx, s.eventPub, s.metrics, s.log, event)
	}
	return count
}

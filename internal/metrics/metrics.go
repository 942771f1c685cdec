package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the auction service.
type Metrics struct {
	AuctionsCreated prometheus.Counter
	BidsAccepted    prometheus.Counter
	BidsRejected    *prometheus.CounterVec
	EventsDropped   prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AuctionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "auction_ledger_auctions_created_total",
			Help: "Total number of auctions created",
		}),
		BidsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "auction_ledger_bids_accepted_total",
			Help: "Total number of bids appended to a bid history",
		}),
		BidsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_ledger_bids_rejected_total",
			Help: "Total number of rejected bids by reason",
		}, []string{"reason"}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "auction_ledger_events_dropped_total",
			Help: "Auction events that could not be published",
		}),
	}
}

func (m *Metrics) IncrementAuctionsCreated() {
	m.AuctionsCreated.Inc()
}

func (m *Metrics) IncrementBidsAccepted() {
	m.BidsAccepted.Inc()
}

func (m *Metrics) IncrementBidsRejected(reason string) {
	m.BidsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementEventsDropped() {
	m.EventsDropped.Inc()
}

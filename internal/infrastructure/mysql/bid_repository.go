package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"auction-ledger/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

// Schema for the archive table. Prices and elapsed times are unbounded
// integers, so they are kept as decimal strings.
const CreateBidEventsTable = `
CREATE TABLE IF NOT EXISTS bid_events (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    auction_id VARCHAR(80) NOT NULL,
    user_id VARCHAR(255) NOT NULL,
    price TEXT NOT NULL,
    elapsed TEXT NOT NULL,
    event_type VARCHAR(32) NOT NULL,
    timestamp DATETIME(6) NOT NULL,
    created_at DATETIME(6) NOT NULL,
    INDEX idx_bid_events_auction (auction_id, id)
)`

type MySQLBidRepository struct {
	db *sql.DB
}

func NewMySQLBidRepository(db *sql.DB) *MySQLBidRepository {
	return &MySQLBidRepository{db: db}
}

func (r *MySQLBidRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, CreateBidEventsTable)
	return err
}

func (r *MySQLBidRepository) SaveBidEvent(ctx context.Context, event *domain.AuctionEvent) error {
	query := `
        INSERT INTO bid_events (auction_id, user_id, price, elapsed, event_type, timestamp, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		string(event.AuctionID), event.UserID, intString(event.Price), intString(event.Elapsed),
		string(event.Type), event.Timestamp, time.Now())
	return err
}

// GetBidHistory returns archived accepted bids in insertion order.
func (r *MySQLBidRepository) GetBidHistory(ctx context.Context, auctionID domain.AuctionID) ([]*domain.AuctionEvent, error) {
	query := `
        SELECT auction_id, user_id, price, elapsed, event_type, timestamp
        FROM bid_events
        WHERE auction_id = ? AND event_type = 'bid_accepted'
        ORDER BY id ASC
    `

	rows, err := r.db.QueryContext(ctx, query, string(auctionID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.AuctionEvent
	for rows.Next() {
		var event domain.AuctionEvent
		var id, eventType, price, elapsed string

		err := rows.Scan(&id, &event.UserID, &price, &elapsed,
			&eventType, &event.Timestamp)
		if err != nil {
			return nil, err
		}

		event.AuctionID = domain.AuctionID(id)
		event.Type = domain.AuctionEventType(eventType)
		if event.Price, err = parseInt(price); err != nil {
			return nil, err
		}
		if event.Elapsed, err = parseInt(elapsed); err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}

func intString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}

func parseInt(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid stored integer %q", s)
	}
	return n, nil
}

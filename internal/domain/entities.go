package domain

import (
	"bytes"
	"math/big"
	"time"
)

// AuctionID is the canonical base-10 form of a non-negative integer.
type AuctionID string

func (id AuctionID) String() string {
	return string(id)
}

// ParseAuctionID accepts a base-10 non-negative integer and returns its
// canonical form, so "007" and "7" name the same auction.
func ParseAuctionID(s string) (AuctionID, bool) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return "", false
	}
	return AuctionID(n.String()), true
}

// Item is caller supplied and never validated beyond its shape.
type Item struct {
	Title       string
	Description string
	Image       []byte
}

func (i Item) Clone() Item {
	return Item{
		Title:       i.Title,
		Description: i.Description,
		Image:       bytes.Clone(i.Image),
	}
}

// Bid is immutable once appended to a history. Time is seconds elapsed
// since the auction started.
type Bid struct {
	Originator string
	Price      *big.Int
	Time       *big.Int
}

func (b Bid) Clone() Bid {
	return Bid{
		Originator: b.Originator,
		Price:      new(big.Int).Set(b.Price),
		Time:       new(big.Int).Set(b.Time),
	}
}

// Auction is the aggregate root. The closing instant is StartedAt plus
// Duration seconds; open/closed is derived from it and never stored.
type Auction struct {
	ID         AuctionID
	Item       Item
	BidHistory []Bid
	StartedAt  time.Time
	Duration   *big.Int
}

// Elapsed returns whole seconds since the auction started, never negative.
func (a *Auction) Elapsed(now time.Time) *big.Int {
	d := now.Sub(a.StartedAt)
	if d < 0 {
		return new(big.Int)
	}
	return big.NewInt(int64(d / time.Second))
}

// RemainingTime is max(0, Duration - Elapsed(now)) in seconds.
func (a *Auction) RemainingTime(now time.Time) *big.Int {
	remaining := new(big.Int).Sub(a.Duration, a.Elapsed(now))
	if remaining.Sign() < 0 {
		return new(big.Int)
	}
	return remaining
}

func (a *Auction) IsClosed(now time.Time) bool {
	return a.RemainingTime(now).Sign() == 0
}

// LastBid returns the most recent bid, which is also the highest.
func (a *Auction) LastBid() (Bid, bool) {
	if len(a.BidHistory) == 0 {
		return Bid{}, false
	}
	return a.BidHistory[len(a.BidHistory)-1], true
}

// AuctionOverview is the reduced projection used in list views.
type AuctionOverview struct {
	ID   AuctionID
	Item Item
}

// AuctionDetails is the full projection of an auction at one instant.
type AuctionDetails struct {
	Item          Item
	BidHistory    []Bid
	RemainingTime *big.Int
}

// Closure describes an auction whose remaining time reached zero.
type Closure struct {
	AuctionID AuctionID
	Winner    *Bid
}

type AuctionEvent struct {
	Type      AuctionEventType `json:"type"`
	AuctionID AuctionID        `json:"auction_id"`
	UserID    string           `json:"user_id,omitempty"`
	Price     *big.Int         `json:"price,omitempty"`
	Elapsed   *big.Int         `json:"elapsed,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

type AuctionEventType string

const (
	AuctionCreated AuctionEventType = "auction_created"
	BidAccepted    AuctionEventType = "bid_accepted"
	AuctionEnded   AuctionEventType = "auction_ended"
)

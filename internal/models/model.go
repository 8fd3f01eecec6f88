package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing represents an auctioned item as supplied by the catalog.
// The engine never mutates a listing once it is registered.
type Listing struct {
	ListingID     string          `json:"listingId"`
	Title         string          `json:"title"`
	SellerID      string          `json:"sellerId,omitempty"`
	StartingPrice decimal.Decimal `json:"startingPrice"`
	ClosesAt      time.Time       `json:"closesAt"`
}

// IsOpenAt reports whether bids are accepted at the given instant.
func (l Listing) IsOpenAt(now time.Time) bool {
	return now.Before(l.ClosesAt)
}

// Bid represents an accepted bid on a listing
type Bid struct {
	BidID       string          `json:"bidId"`
	ListingID   string          `json:"listingId"`
	BidderID    string          `json:"bidderId"`
	Amount      decimal.Decimal `json:"amount"`
	SubmittedAt time.Time       `json:"submittedAt"`
}

// AuctionPhase is derived from a listing's closing time and its settled cell.
type AuctionPhase string

const (
	PhaseOpen            AuctionPhase = "OPEN"
	PhaseClosedUnsettled AuctionPhase = "CLOSED_UNSETTLED"
	PhaseSettled         AuctionPhase = "SETTLED"
)

// AuctionStatus is the read model served to clients for a single listing.
type AuctionStatus struct {
	Listing    Listing         `json:"listing"`
	Phase      AuctionPhase    `json:"phase"`
	Leader     *Bid            `json:"leader,omitempty"`
	MinimumBid decimal.Decimal `json:"minimumBid"`
	BidCount   int             `json:"bidCount"`
}

// SettlementOutcome names the result of a settlement attempt.
type SettlementOutcome string

const (
	OutcomeWon            SettlementOutcome = "Won"
	OutcomeEndedNoBids    SettlementOutcome = "EndedNoBids"
	OutcomeAlreadySettled SettlementOutcome = "AlreadySettled"
)

// SettlementResult is returned by a settlement attempt. Winner is set only for OutcomeWon.
type SettlementResult struct {
	ListingID string            `json:"listingId"`
	Outcome   SettlementOutcome `json:"result"`
	Winner    *Bid              `json:"winner,omitempty"`
}

// EventType identifies an engine event handed to the notifier.
type EventType string

const (
	EventOutbid      EventType = "Outbid"
	EventWon         EventType = "Won"
	EventEndedNoBids EventType = "EndedNoBids"
)

// Event is emitted by the engine after its state change is recorded.
// For Outbid, BidderID is the displaced leader and Amount the new leading amount.
type Event struct {
	Type       EventType       `json:"type"`
	ListingID  string          `json:"listingId"`
	BidderID   string          `json:"bidderId,omitempty"`
	SellerID   string          `json:"sellerId,omitempty"`
	BidID      string          `json:"bidId,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// Notification is a message stored for a user in the in-app inbox
type Notification struct {
	NotificationID string    `json:"notificationId"`
	UserID         string    `json:"userId"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	ListingID      string    `json:"listingId,omitempty"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}

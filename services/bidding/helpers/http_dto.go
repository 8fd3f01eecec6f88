package helpers

import (
	"time"

	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	BidderID string          `json:"bidderId" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

type BidResponse struct {
	BidID       string          `json:"bidId"`
	ListingID   string          `json:"listingId"`
	BidderID    string          `json:"bidderId"`
	Amount      decimal.Decimal `json:"amount"`
	SubmittedAt string          `json:"submittedAt"`
}

type RegisterListingRequest struct {
	Title         string          `json:"title"`
	SellerID      string          `json:"sellerId" binding:"required"`
	StartingPrice decimal.Decimal `json:"startingPrice"`
	ClosesAt      time.Time       `json:"closesAt" binding:"required"`
}

type SettlementResponse struct {
	ListingID string           `json:"listingId"`
	Result    string           `json:"result"`
	BidderID  string           `json:"bidderId,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
}

// NewBidResponse converts a ledger bid into its wire form
func NewBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:       bid.BidID,
		ListingID:   bid.ListingID,
		BidderID:    bid.BidderID,
		Amount:      bid.Amount,
		SubmittedAt: bid.SubmittedAt.UTC().Format(time.RFC3339Nano),
	}
}

// NewSettlementResponse flattens a settlement result; the winner is inlined for Won
func NewSettlementResponse(result model.SettlementResult) SettlementResponse {
	resp := SettlementResponse{
		ListingID: result.ListingID,
		Result:    string(result.Outcome),
	}
	if result.Winner != nil {
		amount := result.Winner.Amount
		resp.BidderID = result.Winner.BidderID
		resp.Amount = &amount
	}
	return resp
}

package bidding

import (
	"slices"
	"strings"

	model "auction-engine/internal/models"
)

// compareRank orders bids highest rank first: larger amount, then earlier submission,
// then smaller bid id. It returns a negative number when a ranks above b.
func compareRank(a, b model.Bid) int {
	if c := b.Amount.Cmp(a.Amount); c != 0 {
		return c
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		if a.SubmittedAt.Before(b.SubmittedAt) {
			return -1
		}
		return 1
	}
	return strings.Compare(a.BidID, b.BidID)
}

// sortByRank sorts bids in place, highest rank first
func sortByRank(bids []model.Bid) {
	slices.SortFunc(bids, compareRank)
}

// leaderOf scans a ledger for its leading bid
func leaderOf(bids []model.Bid) (model.Bid, bool) {
	if len(bids) == 0 {
		return model.Bid{}, false
	}
	leader := bids[0]
	for _, b := range bids[1:] {
		if compareRank(b, leader) < 0 {
			leader = b
		}
	}
	return leader, true
}

package bidding

import (
	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

// recordingPublisher keeps every event handed to it
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *recordingPublisher) Publish(event model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) ofType(eventType model.EventType) []model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []model.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService(t *testing.T, listings ...model.Listing) (*BiddingService, *recordingPublisher) {
	t.Helper()
	repo := repository.NewMemoryRepo()
	events := &recordingPublisher{}
	svc := NewBiddingService(repo, events)
	for _, l := range listings {
		require.NoError(t, svc.RegisterListing(l))
	}
	return svc, events
}

func listing(id, startingPrice string, closesAt time.Time) model.Listing {
	return model.Listing{
		ListingID:     id,
		Title:         "title " + id,
		SellerID:      "seller-" + id,
		StartingPrice: dec(startingPrice),
		ClosesAt:      closesAt,
	}
}

// Scenario: L1, starting price 100, closes at T+1h
func TestBiddingService_AuctionScenario(t *testing.T) {
	svc, events := newTestService(t, listing("L1", "100", t0.Add(time.Hour)))
	ctx := context.Background()

	bidA, err := svc.PlaceBid(ctx, "L1", "A", dec("150"), t0.Add(time.Minute))
	require.NoError(t, err)
	leader, err := svc.CurrentLeader(ctx, "L1")
	require.NoError(t, err)
	require.Equal(t, bidA, leader)
	require.Empty(t, events.ofType(model.EventOutbid), "first bid displaces nobody")

	_, err = svc.PlaceBid(ctx, "L1", "B", dec("120"), t0.Add(2*time.Minute))
	require.True(t, errors.Is(err, biddingerrors.ErrBidTooLow))
	var tooLow *biddingerrors.BidTooLowError
	require.True(t, errors.As(err, &tooLow))
	require.True(t, dec("150.01").Equal(tooLow.Minimum), "minimum was %s", tooLow.Minimum)

	bidB, err := svc.PlaceBid(ctx, "L1", "B", dec("200"), t0.Add(3*time.Minute))
	require.NoError(t, err)
	leader, err = svc.CurrentLeader(ctx, "L1")
	require.NoError(t, err)
	require.Equal(t, "B", leader.BidderID)
	require.True(t, dec("200").Equal(leader.Amount))

	outbid := events.ofType(model.EventOutbid)
	require.Len(t, outbid, 1)
	require.Equal(t, "A", outbid[0].BidderID)
	require.Equal(t, "L1", outbid[0].ListingID)
	require.Equal(t, bidB.BidID, outbid[0].BidID)

	result, err := svc.Settle(ctx, "L1", t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.Equal(t, model.OutcomeWon, result.Outcome)
	require.NotNil(t, result.Winner)
	require.Equal(t, "B", result.Winner.BidderID)
	require.True(t, dec("200").Equal(result.Winner.Amount))

	won := events.ofType(model.EventWon)
	require.Len(t, won, 1)
	require.Equal(t, "B", won[0].BidderID)
	require.Equal(t, "seller-L1", won[0].SellerID)
	require.True(t, dec("200").Equal(won[0].Amount))
}

// Scenario: L2, no bids, settled after close
func TestBiddingService_SettleWithoutBids(t *testing.T) {
	svc, events := newTestService(t, listing("L2", "10", t0))

	result, err := svc.Settle(context.Background(), "L2", t0.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, model.OutcomeEndedNoBids, result.Outcome)
	require.Nil(t, result.Winner)

	ended := events.ofType(model.EventEndedNoBids)
	require.Len(t, ended, 1)
	require.Equal(t, "L2", ended[0].ListingID)
	require.Equal(t, "seller-L2", ended[0].SellerID)
}

func TestBiddingService_PlaceBid(t *testing.T) {
	t.Parallel()

	closesAt := t0.Add(time.Hour)
	tests := []struct {
		name          string
		listingID     string
		bidderID      string
		amount        string
		now           time.Time
		expectedError error
	}{
		{name: "valid_first_bid", listingID: "L1", bidderID: "user1", amount: "100.01", now: t0},
		{name: "equal_to_starting_price", listingID: "L1", bidderID: "user1", amount: "100", now: t0, expectedError: biddingerrors.ErrBidTooLow},
		{name: "below_starting_price", listingID: "L1", bidderID: "user1", amount: "50", now: t0, expectedError: biddingerrors.ErrBidTooLow},
		{name: "empty_listingID", listingID: "", bidderID: "user1", amount: "150", now: t0, expectedError: biddingerrors.ErrInvalidBid},
		{name: "empty_bidderID", listingID: "L1", bidderID: "", amount: "150", now: t0, expectedError: biddingerrors.ErrInvalidBid},
		{name: "zero_amount", listingID: "L1", bidderID: "user1", amount: "0", now: t0, expectedError: biddingerrors.ErrInvalidBid},
		{name: "negative_amount", listingID: "L1", bidderID: "user1", amount: "-50", now: t0, expectedError: biddingerrors.ErrInvalidBid},
		{name: "sub_cent_amount", listingID: "L1", bidderID: "user1", amount: "150.001", now: t0, expectedError: biddingerrors.ErrInvalidBid},
		{name: "largest_allowed_amount", listingID: "L1", bidderID: "user1", amount: "999999999999999.99", now: t0},
		{name: "too_many_integer_digits", listingID: "L1", bidderID: "user1", amount: "1000000000000000", now: t0, expectedError: biddingerrors.ErrInvalidBid},
		{name: "huge_exponent", listingID: "L1", bidderID: "user1", amount: "1e30000000", now: t0, expectedError: biddingerrors.ErrInvalidBid},
		{name: "huge_negative_exponent", listingID: "L1", bidderID: "user1", amount: "1e-30000000", now: t0, expectedError: biddingerrors.ErrInvalidBid},
		{name: "unknown_listing", listingID: "LX", bidderID: "user1", amount: "150", now: t0, expectedError: biddingerrors.ErrListingNotFound},
		{name: "at_closing_time", listingID: "L1", bidderID: "user1", amount: "150", now: closesAt, expectedError: biddingerrors.ErrAuctionClosed},
		{name: "after_closing_time", listingID: "L1", bidderID: "user1", amount: "1000000", now: closesAt.Add(time.Minute), expectedError: biddingerrors.ErrAuctionClosed},
		{name: "after_closing_time_tiny_amount", listingID: "L1", bidderID: "user1", amount: "0.001", now: closesAt.Add(time.Minute), expectedError: biddingerrors.ErrAuctionClosed},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel() // every case gets a fresh ledger

			svc, _ := newTestService(t, listing("L1", "100", closesAt))
			bid, err := svc.PlaceBid(context.Background(), tc.listingID, tc.bidderID, dec(tc.amount), tc.now)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				return
			}

			require.NoError(t, err)
			_, parseErr := uuid.Parse(bid.BidID)
			require.NoError(t, parseErr, "BidID should be a valid UUID")
			require.Equal(t, tc.listingID, bid.ListingID)
			require.Equal(t, tc.bidderID, bid.BidderID)
			require.True(t, dec(tc.amount).Equal(bid.Amount))
			require.Equal(t, tc.now, bid.SubmittedAt)
		})
	}
}

func TestBiddingService_EqualToLeaderIsTooLow(t *testing.T) {
	svc, _ := newTestService(t, listing("L1", "1", t0.Add(time.Hour)))
	ctx := context.Background()

	_, err := svc.PlaceBid(ctx, "L1", "A", dec("10"), t0)
	require.NoError(t, err)

	_, err = svc.PlaceBid(ctx, "L1", "B", dec("10"), t0.Add(time.Second))
	var tooLow *biddingerrors.BidTooLowError
	require.True(t, errors.As(err, &tooLow))
	require.Equal(t, "10.01", tooLow.Minimum.String())
}

func TestBiddingService_SelfRaiseEmitsNoOutbid(t *testing.T) {
	svc, events := newTestService(t, listing("L1", "1", t0.Add(time.Hour)))
	ctx := context.Background()

	_, err := svc.PlaceBid(ctx, "L1", "A", dec("10"), t0)
	require.NoError(t, err)
	_, err = svc.PlaceBid(ctx, "L1", "A", dec("11"), t0.Add(time.Second))
	require.NoError(t, err)

	require.Empty(t, events.ofType(model.EventOutbid))
}

func TestBiddingService_CustomIncrement(t *testing.T) {
	repo := repository.NewMemoryRepo()
	svc := NewBiddingService(repo, nil, WithBidIncrement(dec("5")), WithPricePrecision(0))
	require.NoError(t, svc.RegisterListing(listing("L1", "100", t0.Add(time.Hour))))

	_, err := svc.PlaceBid(context.Background(), "L1", "A", dec("104"), t0)
	var tooLow *biddingerrors.BidTooLowError
	require.True(t, errors.As(err, &tooLow))
	require.Equal(t, "105", tooLow.Minimum.String())

	_, err = svc.PlaceBid(context.Background(), "L1", "A", dec("105.5"), t0)
	require.True(t, errors.Is(err, biddingerrors.ErrInvalidBid))

	_, err = svc.PlaceBid(context.Background(), "L1", "A", dec("105"), t0)
	require.NoError(t, err)
}

func TestBiddingService_MaxAmountDigits(t *testing.T) {
	t.Parallel()

	svc := NewBiddingService(repository.NewMemoryRepo(), nil, WithMaxAmountDigits(3))
	require.NoError(t, svc.RegisterListing(listing("L1", "10", t0.Add(time.Hour))))

	_, err := svc.PlaceBid(context.Background(), "L1", "A", dec("1000"), t0)
	require.True(t, errors.Is(err, biddingerrors.ErrInvalidBid), "got %v", err)

	bid, err := svc.PlaceBid(context.Background(), "L1", "A", dec("999.99"), t0)
	require.NoError(t, err)
	require.Equal(t, "999.99", bid.Amount.String())

	err = svc.RegisterListing(listing("L2", "1000", t0.Add(time.Hour)))
	require.True(t, errors.Is(err, biddingerrors.ErrInvalidListing), "got %v", err)
}

func TestBiddingService_AcceptedAmountsStrictlyIncrease(t *testing.T) {
	svc, _ := newTestService(t, listing("L1", "1", t0.Add(time.Hour)))
	ctx := context.Background()

	amounts := []string{"5", "3", "5", "7.5", "7.49", "7.51", "100", "99.99", "100.01"}
	var accepted []model.Bid
	for i, a := range amounts {
		bid, err := svc.PlaceBid(ctx, "L1", fmt.Sprintf("user%d", i%3), dec(a), t0.Add(time.Duration(i)*time.Second))
		if err == nil {
			accepted = append(accepted, bid)
		} else {
			require.True(t, errors.Is(err, biddingerrors.ErrBidTooLow))
		}
	}

	require.Len(t, accepted, 5)
	for i := 1; i < len(accepted); i++ {
		require.True(t, accepted[i].Amount.GreaterThan(accepted[i-1].Amount))
	}

	leader, err := svc.CurrentLeader(ctx, "L1")
	require.NoError(t, err)
	require.Equal(t, accepted[len(accepted)-1], leader)
}

func TestBiddingService_ConcurrentBids(t *testing.T) {
	svc, events := newTestService(t, listing("L1", "1", t0.Add(time.Hour)), listing("L2", "1", t0.Add(time.Hour)))
	ctx := context.Background()

	const bidders = 64
	var wg sync.WaitGroup
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			for _, id := range []string{"L1", "L2"} {
				amount := decimal.NewFromInt(int64(10 + i%8)) // plenty of equal amounts racing
				_, err := svc.PlaceBid(ctx, id, fmt.Sprintf("user%d", i), amount, t0.Add(time.Duration(i)*time.Millisecond))
				if err != nil {
					assert.True(t, errors.Is(err, biddingerrors.ErrBidTooLow), "unexpected error %v", err)
				}
			}
		}()
	}
	wg.Wait()

	for _, id := range []string{"L1", "L2"} {
		history, err := svc.BidHistory(id)
		require.NoError(t, err)

		var ranked []model.Bid
		for b := range history {
			ranked = append(ranked, b)
		}
		require.NotEmpty(t, ranked)

		seen := map[string]bool{}
		for i, b := range ranked {
			require.False(t, seen[b.Amount.String()], "two accepted bids with the same amount %s", b.Amount)
			seen[b.Amount.String()] = true
			if i > 0 {
				require.True(t, ranked[i-1].Amount.GreaterThan(b.Amount))
			}
		}

		leader, err := svc.CurrentLeader(ctx, id)
		require.NoError(t, err)
		require.Equal(t, ranked[0], leader)
		require.True(t, dec("17").Equal(leader.Amount))
	}

	for _, e := range events.ofType(model.EventOutbid) {
		require.NotEmpty(t, e.BidderID)
	}
}

func TestBiddingService_BidHistory(t *testing.T) {
	svc, _ := newTestService(t, listing("L1", "1", t0.Add(time.Hour)))
	ctx := context.Background()

	for i, a := range []string{"2", "3", "4", "5", "6", "7"} {
		_, err := svc.PlaceBid(ctx, "L1", fmt.Sprintf("u%d", i), dec(a), t0.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	history, err := svc.BidHistory("L1")
	require.NoError(t, err)

	var top []string
	for b := range history {
		top = append(top, b.Amount.String())
		if len(top) == 5 {
			break
		}
	}
	require.Equal(t, []string{"7", "6", "5", "4", "3"}, top)

	// the sequence is restartable
	count := 0
	for range history {
		count++
	}
	require.Equal(t, 6, count)

	_, err = svc.BidHistory("LX")
	require.True(t, errors.Is(err, biddingerrors.ErrListingNotFound))
	_, err = svc.BidHistory("")
	require.True(t, errors.Is(err, biddingerrors.ErrInvalidBid))
}

func TestBiddingService_CurrentLeaderWithoutBids(t *testing.T) {
	svc, _ := newTestService(t, listing("L1", "1", t0.Add(time.Hour)))

	_, err := svc.CurrentLeader(context.Background(), "L1")
	require.True(t, errors.Is(err, biddingerrors.ErrNoBids))

	_, err = svc.CurrentLeader(context.Background(), "LX")
	require.True(t, errors.Is(err, biddingerrors.ErrListingNotFound))
}

func TestBiddingService_Phase(t *testing.T) {
	svc, _ := newTestService(t, listing("L1", "1", t0))
	ctx := context.Background()

	phase, err := svc.Phase("L1", t0.Add(-time.Nanosecond))
	require.NoError(t, err)
	require.Equal(t, model.PhaseOpen, phase)

	phase, err = svc.Phase("L1", t0)
	require.NoError(t, err)
	require.Equal(t, model.PhaseClosedUnsettled, phase)

	_, err = svc.Settle(ctx, "L1", t0)
	require.NoError(t, err)

	phase, err = svc.Phase("L1", t0.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, model.PhaseSettled, phase)

	// no transition leaves SETTLED, even for a clock that reads earlier
	phase, err = svc.Phase("L1", t0.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, model.PhaseSettled, phase)

	_, err = svc.Phase("LX", t0)
	require.True(t, errors.Is(err, biddingerrors.ErrListingNotFound))
}

func TestBiddingService_SettleRules(t *testing.T) {
	svc, events := newTestService(t, listing("L1", "1", t0.Add(time.Hour)))
	ctx := context.Background()

	_, err := svc.Settle(ctx, "L1", t0)
	require.True(t, errors.Is(err, biddingerrors.ErrAuctionOpen))

	_, err = svc.Settle(ctx, "LX", t0)
	require.True(t, errors.Is(err, biddingerrors.ErrListingNotFound))

	_, err = svc.Settle(ctx, "", t0)
	require.True(t, errors.Is(err, biddingerrors.ErrInvalidBid))

	_, err = svc.PlaceBid(ctx, "L1", "A", dec("2"), t0)
	require.NoError(t, err)

	first, err := svc.Settle(ctx, "L1", t0.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, model.OutcomeWon, first.Outcome)

	second, err := svc.Settle(ctx, "L1", t0.Add(2*time.Hour))
	require.True(t, errors.Is(err, biddingerrors.ErrAlreadySettled))
	require.Equal(t, model.OutcomeAlreadySettled, second.Outcome)
	require.Nil(t, second.Winner)

	require.Len(t, events.ofType(model.EventWon), 1)

	// a late bid carrying an early clock is still refused once settled
	_, err = svc.PlaceBid(ctx, "L1", "B", dec("50"), t0.Add(time.Minute))
	require.True(t, errors.Is(err, biddingerrors.ErrAuctionClosed))
}

func TestBiddingService_ConcurrentSettle(t *testing.T) {
	for _, withBid := range []bool{true, false} {
		withBid := withBid
		t.Run(fmt.Sprintf("with_bid_%v", withBid), func(t *testing.T) {
			t.Parallel()
			svc, events := newTestService(t, listing("L1", "1", t0))
			ctx := context.Background()
			if withBid {
				_, err := svc.PlaceBid(ctx, "L1", "A", dec("5"), t0.Add(-time.Minute))
				require.NoError(t, err)
			}

			const callers = 32
			var wg sync.WaitGroup
			outcomes := make(chan model.SettlementOutcome, callers)
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					result, err := svc.Settle(ctx, "L1", t0.Add(time.Hour))
					if err != nil {
						assert.True(t, errors.Is(err, biddingerrors.ErrAlreadySettled), "unexpected error %v", err)
					}
					outcomes <- result.Outcome
				}()
			}
			wg.Wait()
			close(outcomes)

			counts := map[model.SettlementOutcome]int{}
			for o := range outcomes {
				counts[o]++
			}
			require.Equal(t, callers-1, counts[model.OutcomeAlreadySettled])
			if withBid {
				require.Equal(t, 1, counts[model.OutcomeWon])
				require.Len(t, events.ofType(model.EventWon), 1)
				require.Empty(t, events.ofType(model.EventEndedNoBids))
			} else {
				require.Equal(t, 1, counts[model.OutcomeEndedNoBids])
				require.Len(t, events.ofType(model.EventEndedNoBids), 1)
				require.Empty(t, events.ofType(model.EventWon))
			}
		})
	}
}

func TestBiddingService_SettleDue(t *testing.T) {
	svc, events := newTestService(t,
		listing("closed-with-bid", "1", t0.Add(time.Minute)),
		listing("closed-empty", "1", t0.Add(time.Minute)),
		listing("open", "1", t0.Add(time.Hour)),
	)
	ctx := context.Background()

	_, err := svc.PlaceBid(ctx, "closed-with-bid", "A", dec("3"), t0)
	require.NoError(t, err)

	results, err := svc.SettleDue(ctx, t0.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, results, 2)

	outcomes := map[string]model.SettlementOutcome{}
	for _, r := range results {
		outcomes[r.ListingID] = r.Outcome
	}
	require.Equal(t, model.OutcomeWon, outcomes["closed-with-bid"])
	require.Equal(t, model.OutcomeEndedNoBids, outcomes["closed-empty"])

	// a second sweep has nothing left to do
	results, err = svc.SettleDue(ctx, t0.Add(3*time.Minute))
	require.NoError(t, err)
	require.Empty(t, results)
	require.Len(t, events.ofType(model.EventWon), 1)
	require.Len(t, events.ofType(model.EventEndedNoBids), 1)
}

func TestBiddingService_AuctionStatus(t *testing.T) {
	svc, _ := newTestService(t, listing("L1", "100", t0.Add(time.Hour)), listing("L0", "5", t0.Add(time.Minute)))
	ctx := context.Background()

	status, err := svc.AuctionStatus(ctx, "L1", t0)
	require.NoError(t, err)
	require.Equal(t, model.PhaseOpen, status.Phase)
	require.Nil(t, status.Leader)
	require.Equal(t, "100.01", status.MinimumBid.String())
	require.Equal(t, 0, status.BidCount)

	_, err = svc.PlaceBid(ctx, "L1", "A", dec("150"), t0)
	require.NoError(t, err)

	status, err = svc.AuctionStatus(ctx, "L1", t0)
	require.NoError(t, err)
	require.NotNil(t, status.Leader)
	require.Equal(t, "A", status.Leader.BidderID)
	require.Equal(t, "150.01", status.MinimumBid.String())
	require.Equal(t, 1, status.BidCount)

	all, err := svc.ListAuctions(ctx, t0.Add(30*time.Minute), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "L0", all[0].Listing.ListingID)

	open, err := svc.ListAuctions(ctx, t0.Add(30*time.Minute), model.PhaseOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, "L1", open[0].Listing.ListingID)

	_, err = svc.AuctionStatus(ctx, "LX", t0)
	require.True(t, errors.Is(err, biddingerrors.ErrListingNotFound))
}

func TestBiddingService_RegisterListing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		listing       model.Listing
		expectedError error
	}{
		{name: "valid", listing: listing("L1", "10", t0)},
		{name: "missing_id", listing: listing("", "10", t0), expectedError: biddingerrors.ErrInvalidListing},
		{name: "zero_price", listing: listing("L1", "0", t0), expectedError: biddingerrors.ErrInvalidListing},
		{name: "sub_cent_price", listing: listing("L1", "0.001", t0), expectedError: biddingerrors.ErrInvalidListing},
		{name: "missing_close", listing: listing("L1", "10", time.Time{}), expectedError: biddingerrors.ErrInvalidListing},
		{name: "huge_price", listing: listing("L1", "1e30000000", t0), expectedError: biddingerrors.ErrInvalidListing},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := NewBiddingService(repository.NewMemoryRepo(), nil)
			err := svc.RegisterListing(tc.listing)
			if tc.expectedError != nil {
				require.True(t, errors.Is(err, tc.expectedError), "got %v", err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestBiddingService_LockTimeout(t *testing.T) {
	svc, _ := newTestService(t, listing("L1", "1", t0.Add(time.Hour)))

	st := svc.locks.get("L1")
	require.NoError(t, st.acquire(context.Background(), "L1"))
	defer st.release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.PlaceBid(ctx, "L1", "A", dec("2"), t0)
	require.True(t, errors.Is(err, biddingerrors.ErrLockTimeout))
	require.False(t, biddingerrors.IsBusinessRule(err))
}

// Tests infrastructure failures with a mocked repository
func TestBiddingService_RepositoryFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	events := &recordingPublisher{}
	service := NewBiddingService(mockRepo, events)
	l1 := listing("L1", "100", t0.Add(time.Hour))
	storageDown := fmt.Errorf("append: %w", biddingerrors.ErrStorageUnavailable)

	t.Run("append_fails", func(t *testing.T) {
		mockRepo.EXPECT().GetListing("L1").Return(l1, nil)
		mockRepo.EXPECT().GetBidsByListing("L1").Return([]model.Bid{}, nil)
		mockRepo.EXPECT().IsSettled("L1").Return(false, nil)
		mockRepo.EXPECT().AppendBid(gomock.Any()).Return(storageDown)

		_, err := service.PlaceBid(context.Background(), "L1", "A", dec("150"), t0)
		require.True(t, errors.Is(err, biddingerrors.ErrStorageUnavailable))
		require.False(t, biddingerrors.IsBusinessRule(err))

		// the failed append did not move the leader
		mockRepo.EXPECT().GetListing("L1").Return(l1, nil)
		_, err = service.CurrentLeader(context.Background(), "L1")
		require.True(t, errors.Is(err, biddingerrors.ErrNoBids))
	})

	t.Run("cached_ledger_is_reused", func(t *testing.T) {
		mockRepo.EXPECT().GetListing("L1").Return(l1, nil)
		mockRepo.EXPECT().AppendBid(gomock.Any()).DoAndReturn(func(bid model.Bid) error {
			require.Equal(t, "L1", bid.ListingID)
			require.True(t, dec("150").Equal(bid.Amount))
			return nil
		})

		bid, err := service.PlaceBid(context.Background(), "L1", "A", dec("150"), t0)
		require.NoError(t, err)
		require.Equal(t, "A", bid.BidderID)
	})

	t.Run("mark_settled_fails", func(t *testing.T) {
		mockRepo.EXPECT().GetListing("L1").Return(l1, nil)
		mockRepo.EXPECT().MarkSettled("L1", t0.Add(2*time.Hour)).Return(false, storageDown)

		_, err := service.Settle(context.Background(), "L1", t0.Add(2*time.Hour))
		require.True(t, errors.Is(err, biddingerrors.ErrStorageUnavailable))
		require.Empty(t, events.ofType(model.EventWon), "no event without a recorded settlement")
	})

	t.Run("ledger_load_fails", func(t *testing.T) {
		l2 := listing("L2", "1", t0.Add(time.Hour))
		mockRepo.EXPECT().GetListing("L2").Return(l2, nil)
		mockRepo.EXPECT().GetBidsByListing("L2").Return(nil, storageDown)

		_, err := service.PlaceBid(context.Background(), "L2", "A", dec("5"), t0)
		require.True(t, errors.Is(err, biddingerrors.ErrStorageUnavailable))
	})
}

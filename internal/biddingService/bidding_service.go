package bidding

import (
	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/shopspring/decimal"
)

// EventPublisher receives engine events. Implementations must not block.
type EventPublisher interface {
	Publish(event model.Event)
}

type discardPublisher struct{}

func (discardPublisher) Publish(model.Event) {}

// Option configures a BiddingService
type Option func(*BiddingService)

// WithBidIncrement sets the smallest raise over the current floor.
func WithBidIncrement(increment decimal.Decimal) Option {
	return func(s *BiddingService) { s.increment = increment }
}

// WithPricePrecision sets how many decimal places an amount may carry.
func WithPricePrecision(places int32) Option {
	return func(s *BiddingService) { s.precision = places }
}

// WithLockTimeout bounds how long a caller waits for a listing lock.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *BiddingService) { s.lockTimeout = timeout }
}

// WithMaxAmountDigits caps how many integer digits a bid amount or starting price may have.
func WithMaxAmountDigits(digits int32) Option {
	return func(s *BiddingService) { s.maxDigits = digits }
}

// WithIDGenerator replaces the bid id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *BiddingService) { s.newID = gen }
}

// BiddingService is the auction engine: it owns the bid ledger rules and settlement
type BiddingService struct {
	repo        repository.AuctionDB
	events      EventPublisher
	locks       *listingLocks
	increment   decimal.Decimal
	precision   int32
	maxDigits   int32
	lockTimeout time.Duration
	newID       func() string
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, events EventPublisher, opts ...Option) *BiddingService {
	if events == nil {
		events = discardPublisher{}
	}
	s := &BiddingService{
		repo:        repo,
		events:      events,
		locks:       newListingLocks(),
		increment:   decimal.New(1, -2),
		precision:   2,
		maxDigits:   15,
		lockTimeout: 2 * time.Second,
		newID:       utils.GenerateID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterListing records a catalog listing so it can be bid on
func (s *BiddingService) RegisterListing(listing model.Listing) error {
	switch {
	case listing.ListingID == "":
		return fmt.Errorf("service: %w - missing listing ID", biddingerrors.ErrInvalidListing)
	case !listing.StartingPrice.IsPositive():
		return fmt.Errorf("service: %w - non-positive starting price", biddingerrors.ErrInvalidListing)
	case !s.inRange(listing.StartingPrice):
		return fmt.Errorf("service: %w - starting price has more than %d integer digits", biddingerrors.ErrInvalidListing, s.maxDigits)
	case !s.hasValidPrecision(listing.StartingPrice):
		return fmt.Errorf("service: %w - starting price has more than %d decimal places", biddingerrors.ErrInvalidListing, s.precision)
	case listing.ClosesAt.IsZero():
		return fmt.Errorf("service: %w - missing closing time", biddingerrors.ErrInvalidListing)
	}

	listing.ClosesAt = listing.ClosesAt.UTC()
	if err := s.repo.AddListing(listing); err != nil {
		return fmt.Errorf("service: failed to register listing %s: %w", listing.ListingID, err)
	}
	return nil
}

// PlaceBid validates and records a bid. The bid id and submission time are assigned here.
func (s *BiddingService) PlaceBid(ctx context.Context, listingID, bidderID string, amount decimal.Decimal, now time.Time) (model.Bid, error) {
	if listingID == "" || bidderID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - missing listingID or bidderID", biddingerrors.ErrInvalidBid)
	}

	listing, err := s.repo.GetListing(listingID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}
	// closed wins over every other rejection, whatever the amount
	if !listing.IsOpenAt(now) {
		return model.Bid{}, fmt.Errorf("service: %w - listing %s closed at %s", biddingerrors.ErrAuctionClosed, listingID, listing.ClosesAt.Format(time.RFC3339))
	}
	if err := s.validateAmount(amount); err != nil {
		return model.Bid{}, err
	}

	ctx, cancel := s.lockContext(ctx)
	defer cancel()

	st := s.locks.get(listingID)
	if err := st.acquire(ctx, listingID); err != nil {
		return model.Bid{}, fmt.Errorf("service: %w", err)
	}
	bid, previous, err := s.submitLocked(st, listing, bidderID, amount, now)
	st.release()
	if err != nil {
		return model.Bid{}, err
	}

	if previous != nil && previous.BidderID != bid.BidderID {
		s.events.Publish(model.Event{
			Type:       model.EventOutbid,
			ListingID:  listingID,
			BidderID:   previous.BidderID,
			BidID:      bid.BidID,
			Amount:     bid.Amount,
			OccurredAt: bid.SubmittedAt,
		})
	}
	return bid, nil
}

// submitLocked applies the ledger rules; the caller holds the listing lock.
func (s *BiddingService) submitLocked(st *listingState, listing model.Listing, bidderID string, amount decimal.Decimal, now time.Time) (model.Bid, *model.Bid, error) {
	previous, err := s.loadLocked(st, listing.ListingID)
	if err != nil {
		return model.Bid{}, nil, err
	}
	if st.settled.Load() {
		return model.Bid{}, nil, fmt.Errorf("service: %w - listing %s already settled", biddingerrors.ErrAuctionClosed, listing.ListingID)
	}

	minimum := s.minimumOver(listing, previous)
	if amount.LessThan(minimum) {
		return model.Bid{}, nil, fmt.Errorf("service: %w", &biddingerrors.BidTooLowError{Minimum: minimum})
	}

	bid := model.Bid{
		BidID:       s.newID(),
		ListingID:   listing.ListingID,
		BidderID:    bidderID,
		Amount:      amount,
		SubmittedAt: now.UTC(),
	}
	if err := s.repo.AppendBid(bid); err != nil {
		return model.Bid{}, nil, fmt.Errorf("service: failed to record bid for listing %s by bidder %s: %w", listing.ListingID, bidderID, err)
	}

	st.leader.Store(&bid)
	st.bidCount.Add(1)
	return bid, previous, nil
}

// validateAmount checks a bid amount is positive and priced in whole units of the precision
func (s *BiddingService) validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("service: %w - non-positive bid amount", biddingerrors.ErrInvalidBid)
	}
	if !s.inRange(amount) {
		return fmt.Errorf("service: %w - amount has more than %d integer digits", biddingerrors.ErrInvalidBid, s.maxDigits)
	}
	if !s.hasValidPrecision(amount) {
		return fmt.Errorf("service: %w - amount has more than %d decimal places", biddingerrors.ErrInvalidBid, s.precision)
	}
	return nil
}

// maxCoefficientBits bounds the unscaled value before any digit counting; 256 bits is about 77 digits.
const maxCoefficientBits = 256

// inRange reports whether amount stays within maxDigits integer digits. It only inspects the
// exponent and the coefficient and never rescales the value.
func (s *BiddingService) inRange(amount decimal.Decimal) bool {
	exp := int64(amount.Exponent())
	if exp > int64(s.maxDigits) || exp < -int64(s.maxDigits)-int64(s.precision) {
		return false
	}
	if amount.Coefficient().BitLen() > maxCoefficientBits {
		return false
	}
	return int64(amount.NumDigits())+exp <= int64(s.maxDigits)
}

func (s *BiddingService) hasValidPrecision(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(s.precision))
}

// minimumOver is the smallest amount that beats the current floor
func (s *BiddingService) minimumOver(listing model.Listing, leader *model.Bid) decimal.Decimal {
	floor := listing.StartingPrice
	if leader != nil {
		floor = leader.Amount
	}
	return floor.Add(s.increment)
}

// loadLocked fills the listing's cached leader from the ledger once; the caller holds the lock.
func (s *BiddingService) loadLocked(st *listingState, listingID string) (*model.Bid, error) {
	if st.loaded.Load() {
		return st.leader.Load(), nil
	}

	bids, err := s.repo.GetBidsByListing(listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load ledger for listing %s: %w", listingID, err)
	}
	settled, err := s.repo.IsSettled(listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load settled flag for listing %s: %w", listingID, err)
	}

	if leader, ok := leaderOf(bids); ok {
		st.leader.Store(&leader)
	}
	st.bidCount.Store(int64(len(bids)))
	st.settled.Store(settled)
	st.loaded.Store(true)
	return st.leader.Load(), nil
}

// leader returns the cached leader, taking the listing lock only for the first load
func (s *BiddingService) leader(ctx context.Context, st *listingState, listingID string) (*model.Bid, error) {
	if st.loaded.Load() {
		return st.leader.Load(), nil
	}

	ctx, cancel := s.lockContext(ctx)
	defer cancel()
	if err := st.acquire(ctx, listingID); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	defer st.release()
	return s.loadLocked(st, listingID)
}

func (s *BiddingService) lockContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.lockTimeout > 0 {
		return context.WithTimeout(ctx, s.lockTimeout)
	}
	return context.WithCancel(ctx)
}

// CurrentLeader returns the leading bid of a listing, or ErrNoBids
func (s *BiddingService) CurrentLeader(ctx context.Context, listingID string) (model.Bid, error) {
	if listingID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - empty listing ID", biddingerrors.ErrInvalidBid)
	}
	if _, err := s.repo.GetListing(listingID); err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to get leader for listing %s: %w", listingID, err)
	}

	leader, err := s.leader(ctx, s.locks.get(listingID), listingID)
	if err != nil {
		return model.Bid{}, err
	}
	if leader == nil {
		return model.Bid{}, fmt.Errorf("service: listing %s: %w", listingID, biddingerrors.ErrNoBids)
	}
	return *leader, nil
}

// BidHistory returns a listing's bids highest rank first. The sequence is a snapshot of the
// ledger taken at call time and can be ranged over any number of times.
func (s *BiddingService) BidHistory(listingID string) (iter.Seq[model.Bid], error) {
	if listingID == "" {
		return nil, fmt.Errorf("service: %w - empty listing ID", biddingerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByListing(listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for listing %s: %w", listingID, err)
	}
	sortByRank(bids)

	return func(yield func(model.Bid) bool) {
		for _, b := range bids {
			if !yield(b) {
				return
			}
		}
	}, nil
}

// Phase derives the auction phase of a listing at now
func (s *BiddingService) Phase(listingID string, now time.Time) (model.AuctionPhase, error) {
	listing, err := s.repo.GetListing(listingID)
	if err != nil {
		return "", fmt.Errorf("service: failed to get phase for listing %s: %w", listingID, err)
	}
	settled, err := s.repo.IsSettled(listingID)
	if err != nil {
		return "", fmt.Errorf("service: failed to get phase for listing %s: %w", listingID, err)
	}
	return phaseOf(listing, settled, now), nil
}

func phaseOf(listing model.Listing, settled bool, now time.Time) model.AuctionPhase {
	switch {
	case settled:
		return model.PhaseSettled
	case listing.IsOpenAt(now):
		return model.PhaseOpen
	default:
		return model.PhaseClosedUnsettled
	}
}

// AuctionStatus assembles the read model for one listing
func (s *BiddingService) AuctionStatus(ctx context.Context, listingID string, now time.Time) (model.AuctionStatus, error) {
	listing, err := s.repo.GetListing(listingID)
	if err != nil {
		return model.AuctionStatus{}, fmt.Errorf("service: failed to get status for listing %s: %w", listingID, err)
	}
	return s.statusOf(ctx, listing, now)
}

func (s *BiddingService) statusOf(ctx context.Context, listing model.Listing, now time.Time) (model.AuctionStatus, error) {
	st := s.locks.get(listing.ListingID)
	leader, err := s.leader(ctx, st, listing.ListingID)
	if err != nil {
		return model.AuctionStatus{}, err
	}
	settled, err := s.repo.IsSettled(listing.ListingID)
	if err != nil {
		return model.AuctionStatus{}, fmt.Errorf("service: failed to get status for listing %s: %w", listing.ListingID, err)
	}

	status := model.AuctionStatus{
		Listing:    listing,
		Phase:      phaseOf(listing, settled, now),
		MinimumBid: s.minimumOver(listing, leader),
		BidCount:   int(st.bidCount.Load()),
	}
	if leader != nil {
		copied := *leader
		status.Leader = &copied
	}
	return status, nil
}

// ListAuctions returns the status of every listing, optionally restricted to one phase
func (s *BiddingService) ListAuctions(ctx context.Context, now time.Time, phase model.AuctionPhase) ([]model.AuctionStatus, error) {
	listings, err := s.repo.ListListings()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list listings: %w", err)
	}

	statuses := make([]model.AuctionStatus, 0, len(listings))
	for _, listing := range listings {
		status, err := s.statusOf(ctx, listing, now)
		if err != nil {
			return nil, err
		}
		if phase != "" && status.Phase != phase {
			continue
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// Settle finalises a closed auction exactly once. Callers that lose the race get
// OutcomeAlreadySettled together with ErrAlreadySettled.
func (s *BiddingService) Settle(ctx context.Context, listingID string, now time.Time) (model.SettlementResult, error) {
	if listingID == "" {
		return model.SettlementResult{}, fmt.Errorf("service: %w - empty listing ID", biddingerrors.ErrInvalidBid)
	}

	listing, err := s.repo.GetListing(listingID)
	if err != nil {
		return model.SettlementResult{}, fmt.Errorf("service: failed to settle listing %s: %w", listingID, err)
	}
	if listing.IsOpenAt(now) {
		return model.SettlementResult{}, fmt.Errorf("service: %w - listing %s closes at %s", biddingerrors.ErrAuctionOpen, listingID, listing.ClosesAt.Format(time.RFC3339))
	}

	ctx, cancel := s.lockContext(ctx)
	defer cancel()

	st := s.locks.get(listingID)
	if err := st.acquire(ctx, listingID); err != nil {
		return model.SettlementResult{}, fmt.Errorf("service: %w", err)
	}
	result, err := s.settleLocked(st, listing, now)
	st.release()
	if err != nil {
		return result, err
	}

	event := model.Event{
		ListingID:  listingID,
		SellerID:   listing.SellerID,
		OccurredAt: now.UTC(),
	}
	if result.Winner != nil {
		event.Type = model.EventWon
		event.BidderID = result.Winner.BidderID
		event.BidID = result.Winner.BidID
		event.Amount = result.Winner.Amount
	} else {
		event.Type = model.EventEndedNoBids
	}
	s.events.Publish(event)
	return result, nil
}

// settleLocked reads the leader and then wins or loses the compare-and-set; the caller holds the lock.
func (s *BiddingService) settleLocked(st *listingState, listing model.Listing, now time.Time) (model.SettlementResult, error) {
	leader, err := s.loadLocked(st, listing.ListingID)
	if err != nil {
		return model.SettlementResult{}, err
	}

	won, err := s.repo.MarkSettled(listing.ListingID, now.UTC())
	if err != nil {
		return model.SettlementResult{}, fmt.Errorf("service: failed to mark listing %s settled: %w", listing.ListingID, err)
	}
	st.settled.Store(true)

	if !won {
		return model.SettlementResult{ListingID: listing.ListingID, Outcome: model.OutcomeAlreadySettled},
			fmt.Errorf("service: settle listing %s: %w", listing.ListingID, biddingerrors.ErrAlreadySettled)
	}

	if leader == nil {
		return model.SettlementResult{ListingID: listing.ListingID, Outcome: model.OutcomeEndedNoBids}, nil
	}
	winner := *leader
	return model.SettlementResult{ListingID: listing.ListingID, Outcome: model.OutcomeWon, Winner: &winner}, nil
}

// SettleDue settles every closed, unsettled listing. A failure on one listing does not stop the rest;
// lost races are reported as OutcomeAlreadySettled results, not errors.
func (s *BiddingService) SettleDue(ctx context.Context, now time.Time) ([]model.SettlementResult, error) {
	due, err := s.repo.ListDueListings(now)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list due listings: %w", err)
	}

	results := make([]model.SettlementResult, 0, len(due))
	var errs []error
	for _, listing := range due {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := s.Settle(ctx, listing.ListingID, now)
		switch {
		case err == nil:
			results = append(results, result)
		case errors.Is(err, biddingerrors.ErrAlreadySettled):
			results = append(results, result)
		default:
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

// GetListingsByBidder returns all listings a user has placed bids on
func (s *BiddingService) GetListingsByBidder(bidderID string) ([]model.Listing, error) {
	if bidderID == "" {
		return nil, fmt.Errorf("service: %w - empty bidder ID", biddingerrors.ErrInvalidBid)
	}

	listings, err := s.repo.GetListingsByBidder(bidderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get listings for bidder %s: %w", bidderID, err)
	}
	return listings, nil
}

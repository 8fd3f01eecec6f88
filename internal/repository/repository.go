package repository

import (
	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// AuctionDB defines the ledger storage for the auction engine: a per-listing append log of
// bids plus a per-listing settled cell with compare-and-set semantics.
type AuctionDB interface {
	AddListing(listing model.Listing) error
	GetListing(listingID string) (model.Listing, error)
	ListListings() ([]model.Listing, error)
	AppendBid(bid model.Bid) error
	GetBidsByListing(listingID string) ([]model.Bid, error)
	GetListingsByBidder(bidderID string) ([]model.Listing, error)
	IsSettled(listingID string) (bool, error)
	// MarkSettled flips the settled cell from false to true at settledAt and reports whether this call did it.
	MarkSettled(listingID string, settledAt time.Time) (bool, error)
	// ListDueListings returns unsettled listings whose closing time is at or before now.
	ListDueListings(now time.Time) ([]model.Listing, error)
}

// partition holds everything stored for one listing.
type partition struct {
	listing model.Listing
	mu      sync.RWMutex
	bids    []model.Bid
	settled atomic.Bool
	// settledAt is written once, by the caller that wins the settled compare-and-set
	settledAt time.Time
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB.
// Bids are partitioned per listing so appends on different listings never share a lock.
type MemoryRepo struct {
	mu         sync.RWMutex
	partitions map[string]*partition // key: listingID
	userMu     sync.RWMutex
	userBids   map[string][]string // key: bidderID -> listingIDs the bidder has bid on
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		partitions: make(map[string]*partition),
		userBids:   make(map[string][]string),
	}
}

func (r *MemoryRepo) partition(listingID string) (*partition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.partitions[listingID]
	return p, ok
}

// AddListing registers a listing. Re-registering identical terms is a no-op.
func (r *MemoryRepo) AddListing(listing model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.partitions[listing.ListingID]; ok {
		if sameTerms(existing.listing, listing) {
			return nil
		}
		return fmt.Errorf("add listing %s: %w", listing.ListingID, biddingerrors.ErrListingExists)
	}
	r.partitions[listing.ListingID] = &partition{listing: listing}
	return nil
}

// GetListing returns a registered listing
func (r *MemoryRepo) GetListing(listingID string) (model.Listing, error) {
	p, ok := r.partition(listingID)
	if !ok {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}
	return p.listing, nil
}

// ListListings returns every listing ordered by closing time
func (r *MemoryRepo) ListListings() ([]model.Listing, error) {
	r.mu.RLock()
	listings := make([]model.Listing, 0, len(r.partitions))
	for _, p := range r.partitions {
		listings = append(listings, p.listing)
	}
	r.mu.RUnlock()

	sortByClosing(listings)
	return listings, nil
}

// AppendBid appends a bid to its listing's log
func (r *MemoryRepo) AppendBid(bid model.Bid) error {
	p, ok := r.partition(bid.ListingID)
	if !ok {
		return fmt.Errorf("append bid for listing %s: %w", bid.ListingID, biddingerrors.ErrListingNotFound)
	}

	p.mu.Lock()
	p.bids = append(p.bids, bid)
	p.mu.Unlock()

	r.userMu.Lock()
	defer r.userMu.Unlock()
	for _, id := range r.userBids[bid.BidderID] {
		if id == bid.ListingID {
			return nil
		}
	}
	r.userBids[bid.BidderID] = append(r.userBids[bid.BidderID], bid.ListingID)
	return nil
}

// GetBidsByListing returns a copy of a listing's bids in append order
func (r *MemoryRepo) GetBidsByListing(listingID string) ([]model.Bid, error) {
	p, ok := r.partition(listingID)
	if !ok {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]model.Bid{}, p.bids...), nil
}

// GetListingsByBidder returns all listings a user has bid on
func (r *MemoryRepo) GetListingsByBidder(bidderID string) ([]model.Listing, error) {
	r.userMu.RLock()
	listingIDs := append([]string(nil), r.userBids[bidderID]...)
	r.userMu.RUnlock()

	listings := make([]model.Listing, 0, len(listingIDs))
	for _, id := range listingIDs {
		if p, ok := r.partition(id); ok {
			listings = append(listings, p.listing)
		}
	}
	return listings, nil
}

// IsSettled reads a listing's settled cell
func (r *MemoryRepo) IsSettled(listingID string) (bool, error) {
	p, ok := r.partition(listingID)
	if !ok {
		return false, fmt.Errorf("is settled %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}
	return p.settled.Load(), nil
}

// MarkSettled performs the compare-and-set on a listing's settled cell
func (r *MemoryRepo) MarkSettled(listingID string, settledAt time.Time) (bool, error) {
	p, ok := r.partition(listingID)
	if !ok {
		return false, fmt.Errorf("mark settled %s: %w", listingID, biddingerrors.ErrListingNotFound)
	}
	if !p.settled.CompareAndSwap(false, true) {
		return false, nil
	}
	p.mu.Lock()
	p.settledAt = settledAt
	p.mu.Unlock()
	return true, nil
}

// ListDueListings returns closed, unsettled listings
func (r *MemoryRepo) ListDueListings(now time.Time) ([]model.Listing, error) {
	r.mu.RLock()
	var due []model.Listing
	for _, p := range r.partitions {
		if !p.listing.IsOpenAt(now) && !p.settled.Load() {
			due = append(due, p.listing)
		}
	}
	r.mu.RUnlock()

	sortByClosing(due)
	return due, nil
}

func sameTerms(a, b model.Listing) bool {
	return a.ListingID == b.ListingID &&
		a.Title == b.Title &&
		a.SellerID == b.SellerID &&
		a.StartingPrice.Equal(b.StartingPrice) &&
		a.ClosesAt.Equal(b.ClosesAt)
}

func sortByClosing(listings []model.Listing) {
	sort.Slice(listings, func(i, j int) bool {
		if listings[i].ClosesAt.Equal(listings[j].ClosesAt) {
			return listings[i].ListingID < listings[j].ListingID
		}
		return listings[i].ClosesAt.Before(listings[j].ClosesAt)
	})
}

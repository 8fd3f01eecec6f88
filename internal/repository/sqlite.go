package repository

import (
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type listingRecord struct {
	ListingID     string          `gorm:"primaryKey"`
	Title         string          `gorm:"not null"`
	SellerID      string          `gorm:"index"`
	StartingPrice decimal.Decimal `gorm:"type:text;not null"`
	ClosesAt      time.Time       `gorm:"not null;index"`
	Settled       bool            `gorm:"not null;index"`
	SettledAt     *time.Time
	CreatedAt     time.Time
}

func (listingRecord) TableName() string { return "auction_listings" }

type bidRecord struct {
	Seq         uint64          `gorm:"primaryKey;autoIncrement"`
	BidID       string          `gorm:"uniqueIndex;not null"`
	ListingID   string          `gorm:"index;not null"`
	BidderID    string          `gorm:"index;not null"`
	Amount      decimal.Decimal `gorm:"type:text;not null"`
	SubmittedAt time.Time       `gorm:"not null"`
}

func (bidRecord) TableName() string { return "auction_bids" }

// SQLRepo is a durable AuctionDB backed by SQLite through gorm.
// Bids are an append-only table; the settled flag is flipped with a conditional update.
type SQLRepo struct {
	db *gorm.DB
}

// NewSQLRepo opens the database at dsn and migrates the auction tables
func NewSQLRepo(dsn string) (*SQLRepo, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w: %w", dsn, biddingerrors.ErrStorageUnavailable, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w: %w", dsn, biddingerrors.ErrStorageUnavailable, err)
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&listingRecord{}, &bidRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLRepo{db: db}, nil
}

// Close releases the underlying connection pool
func (r *SQLRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, biddingerrors.ErrStorageUnavailable, err)
}

// AddListing registers a listing. Re-registering identical terms is a no-op.
func (r *SQLRepo) AddListing(listing model.Listing) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing listingRecord
		err := tx.Where("listing_id = ?", listing.ListingID).First(&existing).Error
		switch {
		case err == nil:
			if sameTerms(existing.toModel(), listing) {
				return nil
			}
			return fmt.Errorf("add listing %s: %w", listing.ListingID, biddingerrors.ErrListingExists)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return storageErr("add listing "+listing.ListingID, err)
		}

		record := listingRecord{
			ListingID:     listing.ListingID,
			Title:         listing.Title,
			SellerID:      listing.SellerID,
			StartingPrice: listing.StartingPrice,
			ClosesAt:      listing.ClosesAt.UTC(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return storageErr("add listing "+listing.ListingID, err)
		}
		return nil
	})
}

// GetListing returns a registered listing
func (r *SQLRepo) GetListing(listingID string) (model.Listing, error) {
	record, err := r.getRecord(listingID)
	if err != nil {
		return model.Listing{}, err
	}
	return record.toModel(), nil
}

func (r *SQLRepo) getRecord(listingID string) (listingRecord, error) {
	var record listingRecord
	if err := r.db.Where("listing_id = ?", listingID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return listingRecord{}, fmt.Errorf("get listing %s: %w", listingID, biddingerrors.ErrListingNotFound)
		}
		return listingRecord{}, storageErr("get listing "+listingID, err)
	}
	return record, nil
}

// ListListings returns every listing ordered by closing time
func (r *SQLRepo) ListListings() ([]model.Listing, error) {
	var records []listingRecord
	if err := r.db.Order("closes_at ASC, listing_id ASC").Find(&records).Error; err != nil {
		return nil, storageErr("list listings", err)
	}
	return toListings(records), nil
}

// AppendBid inserts a bid row
func (r *SQLRepo) AppendBid(bid model.Bid) error {
	if _, err := r.getRecord(bid.ListingID); err != nil {
		return fmt.Errorf("append bid: %w", err)
	}

	record := bidRecord{
		BidID:       bid.BidID,
		ListingID:   bid.ListingID,
		BidderID:    bid.BidderID,
		Amount:      bid.Amount,
		SubmittedAt: bid.SubmittedAt.UTC(),
	}
	if err := r.db.Create(&record).Error; err != nil {
		return storageErr("append bid for listing "+bid.ListingID, err)
	}
	return nil
}

// GetBidsByListing returns a listing's bids in append order
func (r *SQLRepo) GetBidsByListing(listingID string) ([]model.Bid, error) {
	if _, err := r.getRecord(listingID); err != nil {
		return nil, err
	}

	var records []bidRecord
	if err := r.db.Where("listing_id = ?", listingID).Order("seq ASC").Find(&records).Error; err != nil {
		return nil, storageErr("get bids for listing "+listingID, err)
	}

	bids := make([]model.Bid, 0, len(records))
	for _, rec := range records {
		bids = append(bids, model.Bid{
			BidID:       rec.BidID,
			ListingID:   rec.ListingID,
			BidderID:    rec.BidderID,
			Amount:      rec.Amount,
			SubmittedAt: rec.SubmittedAt.UTC(),
		})
	}
	return bids, nil
}

// GetListingsByBidder returns all listings a user has bid on
func (r *SQLRepo) GetListingsByBidder(bidderID string) ([]model.Listing, error) {
	var records []listingRecord
	sub := r.db.Model(&bidRecord{}).Distinct("listing_id").Where("bidder_id = ?", bidderID)
	if err := r.db.Where("listing_id IN (?)", sub).Order("closes_at ASC").Find(&records).Error; err != nil {
		return nil, storageErr("get listings for bidder "+bidderID, err)
	}
	return toListings(records), nil
}

// IsSettled reads a listing's settled flag
func (r *SQLRepo) IsSettled(listingID string) (bool, error) {
	record, err := r.getRecord(listingID)
	if err != nil {
		return false, err
	}
	return record.Settled, nil
}

// MarkSettled flips settled from false to true; only one caller can observe a changed row.
func (r *SQLRepo) MarkSettled(listingID string, settledAt time.Time) (bool, error) {
	settledAt = settledAt.UTC()
	result := r.db.Model(&listingRecord{}).
		Where("listing_id = ? AND settled = ?", listingID, false).
		Updates(map[string]any{
			"settled":    true,
			"settled_at": &settledAt,
		})
	if result.Error != nil {
		return false, storageErr("mark settled "+listingID, result.Error)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	// nothing changed: either already settled or unknown
	if _, err := r.getRecord(listingID); err != nil {
		return false, err
	}
	return false, nil
}

// ListDueListings returns closed, unsettled listings
func (r *SQLRepo) ListDueListings(now time.Time) ([]model.Listing, error) {
	var records []listingRecord
	if err := r.db.Where("settled = ?", false).Order("closes_at ASC, listing_id ASC").Find(&records).Error; err != nil {
		return nil, storageErr("list due listings", err)
	}

	due := make([]model.Listing, 0, len(records))
	for _, rec := range records {
		listing := rec.toModel()
		if !listing.IsOpenAt(now) {
			due = append(due, listing)
		}
	}
	return due, nil
}

func (rec listingRecord) toModel() model.Listing {
	return model.Listing{
		ListingID:     rec.ListingID,
		Title:         rec.Title,
		SellerID:      rec.SellerID,
		StartingPrice: rec.StartingPrice,
		ClosesAt:      rec.ClosesAt.UTC(),
	}
}

func toListings(records []listingRecord) []model.Listing {
	listings := make([]model.Listing, 0, len(records))
	for _, rec := range records {
		listings = append(listings, rec.toModel())
	}
	return listings
}

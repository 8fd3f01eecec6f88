package biddingerrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Repository-level errors
var (
	ErrListingNotFound      = errors.New("listing not found")
	ErrListingExists        = errors.New("listing already registered with different terms")
	ErrNoBids               = errors.New("no bids found for listing")
	ErrNotificationNotFound = errors.New("notification not found")
)

// business logic errors
var (
	ErrInvalidBid     = errors.New("invalid bid")
	ErrInvalidListing = errors.New("invalid listing")
	ErrBidTooLow      = errors.New("bid amount too low")
	ErrAuctionClosed  = errors.New("auction closed")
	ErrAuctionOpen    = errors.New("auction still open")
	ErrAlreadySettled = errors.New("auction already settled")
)

// infrastructure errors
var (
	ErrLockTimeout        = errors.New("timed out waiting for listing lock")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// BidTooLowError carries the smallest amount that would have been accepted.
type BidTooLowError struct {
	Minimum decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("%s: minimum acceptable bid is %s", ErrBidTooLow, e.Minimum.String())
}

func (e *BidTooLowError) Unwrap() error {
	return ErrBidTooLow
}

// IsBusinessRule reports whether err is a rule rejection rather than an infrastructure failure.
func IsBusinessRule(err error) bool {
	for _, target := range []error{
		ErrListingNotFound, ErrListingExists, ErrNoBids, ErrNotificationNotFound,
		ErrInvalidBid, ErrInvalidListing, ErrBidTooLow, ErrAuctionClosed, ErrAuctionOpen, ErrAlreadySettled,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

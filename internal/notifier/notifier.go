package notifier

import (
	"auction-engine/internal/models"
	"auction-engine/utils"
	"context"
	"errors"
	"fmt"
)

// Notifier delivers one engine event to its recipients
type Notifier interface {
	Notify(ctx context.Context, event models.Event) error
}

// LogNotifier writes every event to the application log
type LogNotifier struct{}

// Notify logs the event
func (LogNotifier) Notify(_ context.Context, event models.Event) error {
	utils.Info("Auction event", map[string]any{
		"type":      event.Type,
		"listingID": event.ListingID,
		"bidderID":  event.BidderID,
		"sellerID":  event.SellerID,
		"amount":    event.Amount.String(),
	})
	return nil
}

// Multi fans an event out to several notifiers. Every notifier is tried even when an earlier one fails.
type Multi []Notifier

// Notify delivers the event to each notifier and joins their errors
func (m Multi) Notify(ctx context.Context, event models.Event) error {
	var errs []error
	for i, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("notifier %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

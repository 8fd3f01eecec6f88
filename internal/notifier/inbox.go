package notifier

import (
	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/models"
	"auction-engine/utils"
	"context"
	"fmt"
	"sync"
	"time"
)

// NotificationTypeBid is the inbox type for every auction notification
const NotificationTypeBid = "BID"

// Inbox keeps the most recent notifications of each user in memory
type Inbox struct {
	mu    sync.RWMutex
	users map[string][]models.Notification // key: userID, oldest first
	limit int
	newID func() string
	clock func() time.Time
}

// NewInbox creates an inbox keeping at most limit notifications per user
func NewInbox(limit int) *Inbox {
	if limit < 1 {
		limit = 1
	}
	return &Inbox{
		users: make(map[string][]models.Notification),
		limit: limit,
		newID: utils.GenerateID,
		clock: time.Now,
	}
}

// Notify turns an event into notifications for the users it concerns
func (in *Inbox) Notify(_ context.Context, event models.Event) error {
	switch event.Type {
	case models.EventOutbid:
		in.add(event.BidderID, event.ListingID, "You have been outbid",
			fmt.Sprintf("A bid of %s now leads listing %s.", event.Amount.String(), event.ListingID))
	case models.EventWon:
		in.add(event.BidderID, event.ListingID, "You won the auction",
			fmt.Sprintf("Your bid of %s won listing %s.", event.Amount.String(), event.ListingID))
		in.add(event.SellerID, event.ListingID, "Your auction has ended",
			fmt.Sprintf("Listing %s sold for %s.", event.ListingID, event.Amount.String()))
	case models.EventEndedNoBids:
		in.add(event.SellerID, event.ListingID, "Your auction has ended",
			fmt.Sprintf("Listing %s closed without any bids.", event.ListingID))
	default:
		return fmt.Errorf("inbox: unknown event type %q", event.Type)
	}
	return nil
}

func (in *Inbox) add(userID, listingID, title, content string) {
	if userID == "" {
		return
	}

	n := models.Notification{
		NotificationID: in.newID(),
		UserID:         userID,
		Type:           NotificationTypeBid,
		Title:          title,
		Content:        content,
		ListingID:      listingID,
		CreatedAt:      in.clock().UTC(),
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	list := append(in.users[userID], n)
	if len(list) > in.limit {
		list = append([]models.Notification(nil), list[len(list)-in.limit:]...)
	}
	in.users[userID] = list
}

// List returns a user's notifications newest first
func (in *Inbox) List(userID string, unreadOnly bool) []models.Notification {
	in.mu.RLock()
	defer in.mu.RUnlock()

	list := in.users[userID]
	out := make([]models.Notification, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		if unreadOnly && list[i].Read {
			continue
		}
		out = append(out, list[i])
	}
	return out
}

// MarkRead marks one notification as read
func (in *Inbox) MarkRead(userID, notificationID string) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	list := in.users[userID]
	for i := range list {
		if list[i].NotificationID == notificationID {
			list[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("mark read %s for user %s: %w", notificationID, userID, biddingerrors.ErrNotificationNotFound)
}

// MarkAllRead marks every notification of a user as read and reports how many changed
func (in *Inbox) MarkAllRead(userID string) int {
	in.mu.Lock()
	defer in.mu.Unlock()

	changed := 0
	list := in.users[userID]
	for i := range list {
		if !list[i].Read {
			list[i].Read = true
			changed++
		}
	}
	return changed
}

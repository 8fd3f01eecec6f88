package helpers

import (
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strconv"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// SubjectContextKey is where the auth middleware stores the authenticated user id
const SubjectContextKey = "subject"

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	utils.JSONError(c, http.StatusBadRequest, "InvalidRequest", "invalid request payload", nil)
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code, error code and message
func MapErrorToHTTP(err error) (int, string, string) {
	switch {
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return http.StatusConflict, "BidTooLow", "bid amount too low"
	case errors.Is(err, biddingerrors.ErrAuctionClosed):
		return http.StatusGone, "AuctionClosed", "auction is closed"
	case errors.Is(err, biddingerrors.ErrListingNotFound):
		return http.StatusNotFound, "ListingNotFound", "listing not found"
	case errors.Is(err, biddingerrors.ErrNoBids):
		return http.StatusNotFound, "NoBids", "no bids found for listing"
	case errors.Is(err, biddingerrors.ErrNotificationNotFound):
		return http.StatusNotFound, "NotificationNotFound", "notification not found"
	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return http.StatusBadRequest, "InvalidBid", "invalid bid details"
	case errors.Is(err, biddingerrors.ErrInvalidListing):
		return http.StatusBadRequest, "InvalidListing", "invalid listing details"
	case errors.Is(err, biddingerrors.ErrAuctionOpen):
		return http.StatusConflict, "AuctionOpen", "auction is still open"
	case errors.Is(err, biddingerrors.ErrListingExists):
		return http.StatusConflict, "ListingExists", "listing already registered with different terms"
	case errors.Is(err, biddingerrors.ErrLockTimeout):
		return http.StatusServiceUnavailable, "LockTimeout", "listing is busy, try again"
	default:
		return http.StatusInternalServerError, "InternalError", "internal server error"
	}
}

// WriteError maps err to its HTTP form and logs it. A rejected bid carries the minimum that would succeed.
func WriteError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, code, message := MapErrorToHTTP(err)

	var extra gin.H
	var tooLow *biddingerrors.BidTooLowError
	if errors.As(err, &tooLow) {
		extra = gin.H{"minimum": tooLow.Minimum}
	}
	utils.JSONError(c, status, code, message, extra)

	logFields := map[string]any{"handler": handlerName, "error": err.Error()}
	for k, v := range fields {
		logFields[k] = v
	}
	if biddingerrors.IsBusinessRule(err) {
		utils.Warn(handlerName+": request rejected", logFields)
		return
	}
	utils.Error(handlerName+": request failed", logFields)
}

// ParseLimit reads an optional positive "limit" query parameter; zero means no limit
func ParseLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("limit %q must be a positive integer", raw)
	}
	return limit, nil
}

// CollectBids drains a ranked bid sequence into wire form, stopping after limit bids when limit > 0
func CollectBids(bids iter.Seq[model.Bid], limit int) []BidResponse {
	out := []BidResponse{}
	for bid := range bids {
		out = append(out, NewBidResponse(bid))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

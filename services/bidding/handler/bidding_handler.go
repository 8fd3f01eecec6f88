package handler

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"time"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"auction-engine/services/bidding/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=bidding_handler.go -destination=mock_bidding_service.go -package=handler

type BiddingServiceInterface interface {
	RegisterListing(listing model.Listing) error
	PlaceBid(ctx context.Context, listingID, bidderID string, amount decimal.Decimal, now time.Time) (model.Bid, error)
	CurrentLeader(ctx context.Context, listingID string) (model.Bid, error)
	BidHistory(listingID string) (iter.Seq[model.Bid], error)
	AuctionStatus(ctx context.Context, listingID string, now time.Time) (model.AuctionStatus, error)
	ListAuctions(ctx context.Context, now time.Time, phase model.AuctionPhase) ([]model.AuctionStatus, error)
	Settle(ctx context.Context, listingID string, now time.Time) (model.SettlementResult, error)
	GetListingsByBidder(bidderID string) ([]model.Listing, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
	clock   func() time.Time
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service, clock: time.Now}
}

// RegisterListingHandler handles PUT /internal/listings/:listing_id
func (h *BiddingHandler) RegisterListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	var req helpers.RegisterListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterListingHandler", err)
		return
	}

	listing := model.Listing{
		ListingID:     listingID,
		Title:         req.Title,
		SellerID:      req.SellerID,
		StartingPrice: req.StartingPrice,
		ClosesAt:      req.ClosesAt.UTC(),
	}
	if err := h.service.RegisterListing(listing); err != nil {
		helpers.WriteError(c, "RegisterListingHandler", err, map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, listing, "listing registered successfully")
	helpers.LogSuccess("RegisterListingHandler", "listing registered successfully", map[string]any{
		"listing_id":     listingID,
		"seller_id":      req.SellerID,
		"starting_price": req.StartingPrice.String(),
		"closes_at":      listing.ClosesAt.Format(time.RFC3339),
	})
}

// PlaceBidHandler handles POST /listings/:listing_id/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	if subject := c.GetString(helpers.SubjectContextKey); subject != "" && subject != req.BidderID {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "bidderId does not match the authenticated user", nil)
		utils.Warn("PlaceBidHandler: bidder mismatch", map[string]any{
			"listing_id": listingID,
			"bidder_id":  req.BidderID,
			"subject":    subject,
		})
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), listingID, req.BidderID, req.Amount, h.clock())
	if err != nil {
		helpers.WriteError(c, "PlaceBidHandler", err, map[string]any{
			"listing_id": listingID,
			"bidder_id":  req.BidderID,
			"amount":     req.Amount.String(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.BidID,
		"listing_id": bid.ListingID,
		"bidder_id":  bid.BidderID,
		"amount":     bid.Amount.String(),
	})
}

// GetBidsHandler handles GET /listings/:listing_id/bids
func (h *BiddingHandler) GetBidsHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	limit, err := helpers.ParseLimit(c)
	if err != nil {
		helpers.HandleBindError(c, "GetBidsHandler", err)
		return
	}

	history, err := h.service.BidHistory(listingID)
	if err != nil {
		helpers.WriteError(c, "GetBidsHandler", err, map[string]any{"listing_id": listingID})
		return
	}

	bids := helpers.CollectBids(history, limit)
	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsHandler", "bids retrieved successfully", map[string]any{
		"listing_id": listingID,
		"count":      len(bids),
	})
}

// GetLeaderHandler handles GET /listings/:listing_id/leader
func (h *BiddingHandler) GetLeaderHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	bid, err := h.service.CurrentLeader(c.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, biddingerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, "NoBids", "no leading bid found", nil)
			utils.Info("GetLeaderHandler: no leading bid found", map[string]any{"listing_id": listingID})
			return
		}
		helpers.WriteError(c, "GetLeaderHandler", err, map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "leading bid retrieved successfully")
	helpers.LogSuccess("GetLeaderHandler", "leading bid retrieved successfully", map[string]any{
		"bid_id":     bid.BidID,
		"listing_id": listingID,
		"bidder_id":  bid.BidderID,
		"amount":     bid.Amount.String(),
	})
}

// GetAuctionHandler handles GET /listings/:listing_id
func (h *BiddingHandler) GetAuctionHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	status, err := h.service.AuctionStatus(c.Request.Context(), listingID, h.clock())
	if err != nil {
		helpers.WriteError(c, "GetAuctionHandler", err, map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, status, "auction retrieved successfully")
}

// ListAuctionsHandler handles GET /listings
func (h *BiddingHandler) ListAuctionsHandler(c *gin.Context) {
	phase := model.AuctionPhase(c.Query("phase"))
	switch phase {
	case "", model.PhaseOpen, model.PhaseClosedUnsettled, model.PhaseSettled:
	default:
		utils.JSONError(c, http.StatusBadRequest, "InvalidRequest", "unknown auction phase", gin.H{"phase": phase})
		return
	}

	auctions, err := h.service.ListAuctions(c.Request.Context(), h.clock(), phase)
	if err != nil {
		helpers.WriteError(c, "ListAuctionsHandler", err, map[string]any{"phase": phase})
		return
	}
	if auctions == nil {
		auctions = []model.AuctionStatus{}
	}

	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
	helpers.LogSuccess("ListAuctionsHandler", "auctions retrieved successfully", map[string]any{
		"phase": phase,
		"count": len(auctions),
	})
}

// SettleHandler handles POST /listings/:listing_id/settle. Repeated calls are answered with AlreadySettled.
func (h *BiddingHandler) SettleHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	result, err := h.service.Settle(c.Request.Context(), listingID, h.clock())
	if errors.Is(err, biddingerrors.ErrAlreadySettled) {
		utils.JSONResponse(c, http.StatusOK, helpers.NewSettlementResponse(result), "auction already settled")
		utils.Info("SettleHandler: auction already settled", map[string]any{"listing_id": listingID})
		return
	}
	if err != nil {
		helpers.WriteError(c, "SettleHandler", err, map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewSettlementResponse(result), "auction settled successfully")
	helpers.LogSuccess("SettleHandler", "auction settled successfully", map[string]any{
		"listing_id": listingID,
		"result":     result.Outcome,
	})
}

// GetListingsByUserHandler handles GET /users/:user_id/listings
func (h *BiddingHandler) GetListingsByUserHandler(c *gin.Context) {
	userID := c.Param("user_id")

	listings, err := h.service.GetListingsByBidder(userID)
	if err != nil {
		helpers.WriteError(c, "GetListingsByUserHandler", err, map[string]any{"user_id": userID})
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}

	utils.JSONResponse(c, http.StatusOK, listings, "listings retrieved successfully")
	helpers.LogSuccess("GetListingsByUserHandler", "listings retrieved successfully", map[string]any{
		"user_id":        userID,
		"listings_count": len(listings),
	})
}

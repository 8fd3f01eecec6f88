package server

import (
	handler "auction-engine/services/bidding/handler"

	"github.com/gin-gonic/gin"
)

// Options configures the optional HTTP protections
type Options struct {
	// JWTSecret enables bearer-token checks on bid and internal routes when set.
	JWTSecret string
	// BidLimiter rate limits bid submissions when set.
	BidLimiter *RateLimiter
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(service handler.BiddingServiceInterface, inbox handler.InboxInterface, opts Options) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	biddingHandler := handler.NewBiddingHandler(service)
	notificationHandler := handler.NewNotificationHandler(inbox)

	var auth []gin.HandlerFunc
	if opts.JWTSecret != "" {
		auth = append(auth, JWTAuth(opts.JWTSecret))
	}
	bidChain := append([]gin.HandlerFunc{}, auth...)
	if opts.BidLimiter != nil {
		bidChain = append(bidChain, opts.BidLimiter.Middleware())
	}

	listings := router.Group("/listings")
	{
		listings.GET("", biddingHandler.ListAuctionsHandler)
		listings.GET("/:listing_id", biddingHandler.GetAuctionHandler)
		listings.GET("/:listing_id/leader", biddingHandler.GetLeaderHandler)
		listings.GET("/:listing_id/bids", biddingHandler.GetBidsHandler)
		listings.POST("/:listing_id/bids", append(bidChain, biddingHandler.PlaceBidHandler)...)
		listings.POST("/:listing_id/settle", biddingHandler.SettleHandler)
	}

	internal := router.Group("/internal", auth...)
	{
		internal.PUT("/listings/:listing_id", biddingHandler.RegisterListingHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/listings", biddingHandler.GetListingsByUserHandler)
		users.GET("/:user_id/notifications", notificationHandler.ListNotificationsHandler)
		users.POST("/:user_id/notifications/read", notificationHandler.MarkAllReadHandler)
		users.POST("/:user_id/notifications/:notification_id/read", notificationHandler.MarkReadHandler)
	}

	return router
}

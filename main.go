package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/config"
	model "auction-engine/internal/models"
	"auction-engine/internal/notifier"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
	"auction-engine/internal/settlement"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		utils.Fatal("Auction engine stopped with an error", map[string]any{"error": err.Error()})
	}
}

func run() error {
	var configPath, port, logLevel string

	flagSet := pflag.NewFlagSet("auction-engine", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the YAML config file (default: $AUCTION_CONFIG)")
	flagSet.StringVar(&port, "port", "", "HTTP listen port, overrides the config file and $PORT")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Server.Port = port
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := utils.SetLevel(cfg.Log.Level); err != nil {
		return err
	}
	if err := utils.SetFormat(cfg.Log.Format); err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)

	repo, closeRepo, err := openRepository(cfg.Store)
	if err != nil {
		return err
	}
	defer closeRepo()

	inbox := notifier.NewInbox(cfg.Notifier.InboxLimit)
	dispatcher := notifier.NewDispatcher(
		notifier.Multi{notifier.LogNotifier{}, inbox},
		cfg.Notifier.QueueSize,
		cfg.Notifier.Workers,
		cfg.Notifier.DeliveryTimeout,
	)

	increment, err := cfg.BidIncrement()
	if err != nil {
		return err
	}
	biddingSvc := bidding.NewBiddingService(repo, dispatcher,
		bidding.WithBidIncrement(increment),
		bidding.WithPricePrecision(cfg.Auction.PricePrecision),
		bidding.WithMaxAmountDigits(cfg.Auction.MaxAmountDigits),
		bidding.WithLockTimeout(cfg.Auction.LockTimeout),
	)

	if err := seedListings(biddingSvc, cfg.Listings); err != nil {
		return err
	}

	var limiter *server.RateLimiter
	if cfg.RateLimit.BidsPerMinute > 0 {
		limiter = server.NewRateLimiter(cfg.RateLimit.BidsPerMinute, cfg.RateLimit.Burst)
	}
	router := server.SetupRouter(biddingSvc, inbox, server.Options{
		JWTSecret:  cfg.Auth.JWTSecret,
		BidLimiter: limiter,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	processor := settlement.NewProcessor(biddingSvc, cfg.Settlement.SweepInterval)

	// the dispatcher outlives the producers so events raised during shutdown are still delivered
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		_ = dispatcher.Run(dispatchCtx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		utils.Info("Starting auction server", map[string]any{"port": cfg.Server.Port, "store": cfg.Store.Driver})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		utils.Info("Shutting down auction server", nil)
		return httpServer.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		return processor.Start(groupCtx)
	})
	if limiter != nil {
		group.Go(func() error {
			return limiter.Run(groupCtx, 3*time.Minute)
		})
	}

	err = group.Wait()
	stopDispatch()
	<-dispatchDone
	return err
}

// openRepository builds the configured ledger store and its cleanup
func openRepository(store config.StoreConfig) (repository.AuctionDB, func(), error) {
	switch store.Driver {
	case config.DriverSQLite:
		repo, err := repository.NewSQLRepo(store.DSN)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				utils.Warn("Failed to close sqlite store", map[string]any{"error": err.Error()})
			}
		}, nil
	default:
		return repository.NewMemoryRepo(), func() {}, nil
	}
}

// seedListings registers the catalog listings from the config file
func seedListings(svc *bidding.BiddingService, listings []config.ListingConfig) error {
	for _, l := range listings {
		price, err := decimal.NewFromString(l.StartingPrice)
		if err != nil {
			return fmt.Errorf("seed listing %s: %w", l.ID, err)
		}

		err = svc.RegisterListing(model.Listing{
			ListingID:     l.ID,
			Title:         l.Title,
			SellerID:      l.SellerID,
			StartingPrice: price,
			ClosesAt:      l.ClosesAt,
		})
		if errors.Is(err, biddingerrors.ErrListingExists) {
			utils.Warn("Seed listing conflicts with the stored listing, keeping the stored one", map[string]any{"listing_id": l.ID})
			continue
		}
		if err != nil {
			return err
		}
	}

	if len(listings) > 0 {
		utils.Info("Seeded listings", map[string]any{"count": len(listings)})
	}
	return nil
}

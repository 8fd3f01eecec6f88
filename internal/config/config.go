// Package config loads the auction engine configuration.
//
// Configuration comes from an optional YAML file named by the --config flag or the
// AUCTION_CONFIG environment variable, layered over Default(). The PORT environment
// variable and command-line flags override the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config is the complete process configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Auction    AuctionConfig    `yaml:"auction"`
	Store      StoreConfig      `yaml:"store"`
	Notifier   NotifierConfig   `yaml:"notifier"`
	Settlement SettlementConfig `yaml:"settlement"`
	Auth       AuthConfig       `yaml:"auth"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`

	// Listings are registered at startup.
	Listings []ListingConfig `yaml:"listings"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is json or text.
	Format string `yaml:"format"`
}

// AuctionConfig configures the bidding rules.
type AuctionConfig struct {
	// BidIncrement is the smallest raise over the current floor, as a decimal string.
	BidIncrement    string        `yaml:"bid_increment"`
	PricePrecision  int32         `yaml:"price_precision"`
	// MaxAmountDigits caps the integer digits of bid amounts and starting prices.
	MaxAmountDigits int32         `yaml:"max_amount_digits"`
	LockTimeout     time.Duration `yaml:"lock_timeout"`
}

// StoreConfig selects the ledger storage.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	// DSN is the sqlite data source; ignored for the memory driver.
	DSN string `yaml:"dsn"`
}

// NotifierConfig configures event delivery.
type NotifierConfig struct {
	QueueSize       int           `yaml:"queue_size"`
	Workers         int           `yaml:"workers"`
	DeliveryTimeout time.Duration `yaml:"delivery_timeout"`
	InboxLimit      int           `yaml:"inbox_limit"`
}

// SettlementConfig configures the settlement sweep.
type SettlementConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// AuthConfig enables bearer-token checks when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// RateLimitConfig limits bid submissions per client. Zero disables the limit.
type RateLimitConfig struct {
	BidsPerMinute int `yaml:"bids_per_minute"`
	Burst         int `yaml:"burst"`
}

// ListingConfig is a catalog listing registered at startup.
type ListingConfig struct {
	ID            string    `yaml:"id"`
	Title         string    `yaml:"title"`
	SellerID      string    `yaml:"seller_id"`
	StartingPrice string    `yaml:"starting_price"`
	ClosesAt      time.Time `yaml:"closes_at"`
}

// Default returns a configuration that runs without a config file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Auction: AuctionConfig{
			BidIncrement:    "0.01",
			PricePrecision:  2,
			MaxAmountDigits: 15,
			LockTimeout:     2 * time.Second,
		},
		Store: StoreConfig{
			Driver: DriverMemory,
			DSN:    "file:auction.db",
		},
		Notifier: NotifierConfig{
			QueueSize:       1024,
			Workers:         4,
			DeliveryTimeout: 5 * time.Second,
			InboxLimit:      100,
		},
		Settlement: SettlementConfig{
			SweepInterval: 10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			BidsPerMinute: 120,
			Burst:         10,
		},
	}
}

// Load reads the file at path over the defaults and applies environment overrides.
// An empty path falls back to AUCTION_CONFIG; with neither, only defaults and environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("AUCTION_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
}

// BidIncrement parses the configured increment
func (c *Config) BidIncrement() (decimal.Decimal, error) {
	inc, err := decimal.NewFromString(c.Auction.BidIncrement)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("auction.bid_increment %q: %w", c.Auction.BidIncrement, err)
	}
	return inc, nil
}

// Validate checks the configuration for errors and reports all of them.
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %q is not a valid port", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}

	if c.Auction.PricePrecision < 0 {
		errs = append(errs, errors.New("auction.price_precision must not be negative"))
	}
	if inc, err := c.BidIncrement(); err != nil {
		errs = append(errs, err)
	} else if !inc.IsPositive() {
		errs = append(errs, errors.New("auction.bid_increment must be positive"))
	} else if !inc.Equal(inc.Truncate(c.Auction.PricePrecision)) {
		errs = append(errs, fmt.Errorf("auction.bid_increment %s has more than %d decimal places", inc, c.Auction.PricePrecision))
	}
	if c.Auction.MaxAmountDigits < 1 || c.Auction.MaxAmountDigits > 30 {
		errs = append(errs, errors.New("auction.max_amount_digits must be between 1 and 30"))
	}
	if c.Auction.LockTimeout <= 0 {
		errs = append(errs, errors.New("auction.lock_timeout must be positive"))
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of %s, %s", c.Store.Driver, DriverMemory, DriverSQLite))
	}

	if c.Notifier.QueueSize < 1 || c.Notifier.Workers < 1 || c.Notifier.InboxLimit < 1 {
		errs = append(errs, errors.New("notifier.queue_size, notifier.workers and notifier.inbox_limit must be positive"))
	}
	if c.Settlement.SweepInterval <= 0 {
		errs = append(errs, errors.New("settlement.sweep_interval must be positive"))
	}
	if c.RateLimit.BidsPerMinute < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate_limit values must not be negative"))
	}

	for i, l := range c.Listings {
		if l.ID == "" {
			errs = append(errs, fmt.Errorf("listings[%d].id is required", i))
		}
		if _, err := decimal.NewFromString(l.StartingPrice); err != nil {
			errs = append(errs, fmt.Errorf("listings[%d].starting_price %q: %w", i, l.StartingPrice, err))
		}
		if l.ClosesAt.IsZero() {
			errs = append(errs, fmt.Errorf("listings[%d].closes_at is required", i))
		}
	}

	return errors.Join(errs...)
}

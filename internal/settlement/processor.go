package settlement

import (
	"auction-engine/internal/models"
	"auction-engine/utils"
	"context"
	"time"
)

// Settler is the part of the engine the sweep drives
type Settler interface {
	SettleDue(ctx context.Context, now time.Time) ([]models.SettlementResult, error)
}

// Processor periodically settles every auction whose closing time has passed
type Processor struct {
	settler  Settler
	interval time.Duration
	clock    func() time.Time
}

// NewProcessor creates a sweep running every interval
func NewProcessor(settler Settler, interval time.Duration) *Processor {
	return &Processor{
		settler:  settler,
		interval: interval,
		clock:    time.Now,
	}
}

// Start runs the sweep loop until ctx is cancelled
func (p *Processor) Start(ctx context.Context) error {
	fields := map[string]any{"component": "settlement_processor", "interval": p.interval.String()}
	utils.Info("Starting settlement processor", fields)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.Info("Shutting down settlement processor", fields)
			return nil
		case <-ticker.C:
			p.Sweep(ctx)
		}
	}
}

// Sweep settles the auctions due at the current time and returns how many it finalised
func (p *Processor) Sweep(ctx context.Context) int {
	results, err := p.settler.SettleDue(ctx, p.clock())
	if err != nil {
		utils.Error("Settlement sweep failed for some listings", map[string]any{
			"component": "settlement_processor",
			"error":     err.Error(),
		})
	}

	settled := 0
	for _, r := range results {
		fields := map[string]any{"component": "settlement_processor", "listingID": r.ListingID, "result": r.Outcome}
		switch r.Outcome {
		case models.OutcomeAlreadySettled:
			utils.Debug("Listing settled elsewhere", fields)
		case models.OutcomeWon:
			settled++
			fields["winner"] = r.Winner.BidderID
			fields["amount"] = r.Winner.Amount.String()
			utils.Info("Auction settled", fields)
		default:
			settled++
			utils.Info("Auction settled", fields)
		}
	}
	return settled
}

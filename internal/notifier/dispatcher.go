package notifier

import (
	"auction-engine/internal/models"
	"auction-engine/utils"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Dispatcher hands engine events to a Notifier on background workers.
// Publish never blocks the caller: when the queue is full the event is dropped and logged.
type Dispatcher struct {
	notifier Notifier
	queue    chan models.Event
	workers  int
	timeout  time.Duration

	delivered atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewDispatcher creates a dispatcher with a bounded queue
func NewDispatcher(n Notifier, queueSize, workers int, timeout time.Duration) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		notifier: n,
		queue:    make(chan models.Event, queueSize),
		workers:  workers,
		timeout:  timeout,
	}
}

// Publish enqueues an event without blocking
func (d *Dispatcher) Publish(event models.Event) {
	select {
	case d.queue <- event:
	default:
		d.dropped.Add(1)
		utils.Warn("Notification queue full, dropping event", map[string]any{
			"type":      event.Type,
			"listingID": event.ListingID,
			"bidderID":  event.BidderID,
		})
	}
}

// Run delivers queued events until ctx is cancelled, then drains what is left and returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	utils.Info("Starting notification dispatcher", map[string]any{"workers": d.workers, "queueSize": cap(d.queue)})

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx)
		}()
	}
	wg.Wait()

	d.drain()
	utils.Info("Notification dispatcher stopped", d.Stats())
	return nil
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.queue:
			d.deliver(event)
		}
	}
}

// drain delivers events still queued at shutdown
func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(event models.Event) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.notify(ctx, event); err != nil {
		d.failed.Add(1)
		utils.Warn("Failed to deliver notification", map[string]any{
			"type":      event.Type,
			"listingID": event.ListingID,
			"bidderID":  event.BidderID,
			"error":     err.Error(),
		})
		return
	}
	d.delivered.Add(1)
}

func (d *Dispatcher) notify(ctx context.Context, event models.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panicked: %v", r)
		}
	}()
	return d.notifier.Notify(ctx, event)
}

// Stats reports delivery counters
func (d *Dispatcher) Stats() map[string]any {
	return map[string]any{
		"delivered": d.delivered.Load(),
		"failed":    d.failed.Load(),
		"dropped":   d.dropped.Load(),
		"queued":    len(d.queue),
	}
}

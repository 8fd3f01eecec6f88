package bidding

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
)

// listingState is the coordination unit for one listing. The one-slot channel is the
// listing lock; the cached fields are only written while holding it.
type listingState struct {
	lock     chan struct{}
	loaded   atomic.Bool
	leader   atomic.Pointer[model.Bid]
	bidCount atomic.Int64
	settled  atomic.Bool
}

func (st *listingState) acquire(ctx context.Context, listingID string) error {
	select {
	case st.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("listing %s: %w: %w", listingID, biddingerrors.ErrLockTimeout, ctx.Err())
	}
}

func (st *listingState) release() {
	<-st.lock
}

// listingLocks hands out one listingState per listing id. States are never evicted, so every
// caller for a listing serialises on the same lock.
type listingLocks struct {
	mu     sync.RWMutex
	states map[string]*listingState
}

func newListingLocks() *listingLocks {
	return &listingLocks{states: make(map[string]*listingState)}
}

func (l *listingLocks) get(listingID string) *listingState {
	l.mu.RLock()
	st, ok := l.states[listingID]
	l.mu.RUnlock()
	if ok {
		return st
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok = l.states[listingID]; ok {
		return st
	}
	st = &listingState{lock: make(chan struct{}, 1)}
	l.states[listingID] = st
	return st
}

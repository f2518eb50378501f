package availability

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/empanadas-abdonur/api/internal/store"
)

// BranchLister defines the store methods the monitor needs.
// Satisfied by *store.Queries.
type BranchLister interface {
	ListActiveBranches(ctx context.Context) ([]store.Branch, error)
}

// Monitor keeps a per-branch open/closed signal fresh. The open state is a
// function of wall-clock time, so long-lived consumers (branch listings)
// need it recomputed periodically, not just once at load.
type Monitor struct {
	store    BranchLister
	calc     *Calculator
	interval time.Duration

	mu   sync.RWMutex
	open map[uuid.UUID]bool
}

// NewMonitor creates a monitor recomputing at the given interval
// (one minute when zero).
func NewMonitor(store BranchLister, calc *Calculator, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Monitor{
		store:    store,
		calc:     calc,
		interval: interval,
		open:     make(map[uuid.UUID]bool),
	}
}

// Start refreshes immediately, then loops on a ticker until the context is
// cancelled. Run it in its own goroutine.
func (m *Monitor) Start(ctx context.Context) {
	m.refresh(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.refresh(ctx)
		}
	}
}

func (m *Monitor) refresh(ctx context.Context) {
	branches, err := m.store.ListActiveBranches(ctx)
	if err != nil {
		// Keep serving the last known state; a transient store failure
		// should not flip every branch to closed.
		zap.L().Error("availability refresh failed", zap.Error(err))
		return
	}

	next := make(map[uuid.UUID]bool, len(branches))
	for _, b := range branches {
		next[b.ID] = m.calc.IsOpenNow(b.OpeningHours)
	}

	m.mu.Lock()
	m.open = next
	m.mu.Unlock()
}

// IsBranchOpen returns the last computed open signal for a branch.
// Unknown branches read as closed.
func (m *Monitor) IsBranchOpen(id uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.open[id]
}

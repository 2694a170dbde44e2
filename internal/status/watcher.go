// Package status tracks backend reachability with a periodic health poll.
package status

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Backend states.
const (
	Online   = "online"
	Offline  = "offline"
	Checking = "checking"
)

// State is a snapshot of backend reachability.
type State struct {
	Status      string    `json:"status"`
	LastChecked time.Time `json:"last_checked"`
}

// HealthChecker probes the backend. It never errors; unreachable is false.
type HealthChecker interface {
	CheckHealth(ctx context.Context) bool
}

// Watcher polls the backend health endpoint on an interval and keeps the
// latest result. It only drives a status indicator, so failures are
// absorbed, never propagated.
type Watcher struct {
	checker  HealthChecker
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	state State
}

// NewWatcher creates a Watcher. If interval is <= 0, it defaults to 30s.
func NewWatcher(checker HealthChecker, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Watcher{
		checker:  checker,
		interval: interval,
		logger:   slog.Default(),
		now:      time.Now,
		state:    State{Status: Checking},
	}
}

// Run checks immediately, then on every interval tick until ctx is
// cancelled.
func (w *Watcher) Run(ctx context.Context) {
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single health check and records the result.
func (w *Watcher) RunOnce(ctx context.Context) State {
	w.mu.Lock()
	prev := w.state.Status
	w.state.Status = Checking
	w.mu.Unlock()

	status := Offline
	if w.checker.CheckHealth(ctx) {
		status = Online
	}

	w.mu.Lock()
	w.state = State{Status: status, LastChecked: w.now()}
	next := w.state
	w.mu.Unlock()

	if prev != status && prev != Checking {
		w.logger.Info("backend status changed", "from", prev, "to", status)
	}
	return next
}

// State returns the latest snapshot.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

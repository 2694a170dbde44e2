package status

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeChecker struct {
	healthy atomic.Bool
	calls   atomic.Int64
}

func (f *fakeChecker) CheckHealth(ctx context.Context) bool {
	f.calls.Add(1)
	return f.healthy.Load()
}

func TestRunOnce(t *testing.T) {
	checker := &fakeChecker{}
	w := NewWatcher(checker, time.Minute)

	if got := w.State().Status; got != Checking {
		t.Errorf("initial status = %q, want checking", got)
	}

	st := w.RunOnce(context.Background())
	if st.Status != Offline {
		t.Errorf("status = %q, want offline", st.Status)
	}
	if st.LastChecked.IsZero() {
		t.Error("LastChecked not set")
	}

	checker.healthy.Store(true)
	st = w.RunOnce(context.Background())
	if st.Status != Online {
		t.Errorf("status = %q, want online", st.Status)
	}
	if w.State().Status != Online {
		t.Errorf("State() = %q, want online", w.State().Status)
	}
}

func TestRun_PollsUntilCancelled(t *testing.T) {
	checker := &fakeChecker{}
	checker.healthy.Store(true)
	w := NewWatcher(checker, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for checker.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("watcher did not poll repeatedly")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestNewWatcher_DefaultInterval(t *testing.T) {
	w := NewWatcher(&fakeChecker{}, 0)
	if w.interval != 30*time.Second {
		t.Errorf("interval = %v, want 30s", w.interval)
	}
}

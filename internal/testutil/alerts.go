package testutil

import (
	"sync"

	"github.com/roach88/craftledger/internal/notify"
)

// AlertRecorder captures alerts synchronously instead of dispatching them.
// It satisfies ledger.AlertSink.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type AlertRecorder struct {
	mu     sync.Mutex
	alerts []notify.Alert
}

// Dispatch records the alert and reports it as queued.
func (r *AlertRecorder) Dispatch(a notify.Alert) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return true
}

// Alerts returns a copy of everything recorded so far.
func (r *AlertRecorder) Alerts() []notify.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Alert, len(r.alerts))
	copy(out, r.alerts)
	return out
}

// Reset forgets recorded alerts.
func (r *AlertRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = nil
}

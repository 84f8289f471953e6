// Package notify delivers low-stock alerts raised by the ledger.
//
// The ledger only decides WHEN an alert fires (threshold > 0 and
// stock <= threshold, once per mutated item after commit). Delivery is the
// job of a Notifier. The Dispatcher sits between the two so a slow or broken
// delivery channel can never stall a ledger transaction:
//
//	ledger --Dispatch (non-blocking)--> Dispatcher queue --worker--> Notifier
//
// Notifiers provided here:
//   - LogNotifier: writes one structured log line per alert
//   - NATSNotifier: publishes a JSON payload to a NATS subject
//   - Throttle: wraps another Notifier with a per-item rate limit
package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/craftledger/internal/model"
)

// ErrThrottled is returned by Throttle when an alert is suppressed.
var ErrThrottled = errors.New("alert throttled")

// Alert describes an item whose stock fell to or below its threshold.
type Alert struct {
	Kind      model.ItemKind `json:"kind"`
	Item      string         `json:"item"`
	Stock     int64          `json:"stock"`
	Threshold int64          `json:"threshold"`
	At        time.Time      `json:"at"`
}

// Notifier delivers one alert. Implementations should honor ctx; the
// Dispatcher bounds every call with a timeout.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, a Alert) error

// Notify calls f(ctx, a).
func (f NotifierFunc) Notify(ctx context.Context, a Alert) error {
	return f(ctx, a)
}

// LogNotifier writes alerts to a structured logger at WARN level.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs the alert. It never fails.
func (n LogNotifier) Notify(ctx context.Context, a Alert) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, "low stock",
		"kind", a.Kind,
		"item", a.Item,
		"stock", a.Stock,
		"threshold", a.Threshold,
	)
	return nil
}

// Fanout delivers each alert to every notifier in order. All notifiers are
// tried; their errors are joined.
type Fanout []Notifier

// Notify calls every notifier with the same alert.
func (f Fanout) Notify(ctx context.Context, a Alert) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

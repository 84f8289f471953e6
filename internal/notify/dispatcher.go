package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/craftledger/internal/metrics"
)

// Dispatcher defaults.
const (
	DefaultQueueSize = 64
	DefaultTimeout   = 2 * time.Second
)

// Dispatcher hands alerts to a Notifier from a single background worker.
//
// Thread-safety model:
//   - Dispatch(): safe from any goroutine, never blocks
//   - Close(): safe to call more than once; waits for queued alerts
//
// INVARIANTS:
//   - Alerts are delivered in Dispatch order
//   - Each Notify call runs under its own timeout context
//   - A full queue drops the alert (logged and counted), it never waits
type Dispatcher struct {
	notifier Notifier
	queue    chan Alert
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithQueueSize sets the queue capacity. Values < 1 keep the default.
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Alert, n)
		}
	}
}

// WithTimeout bounds each Notify call. Values <= 0 keep the default.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithLogger sets the logger for delivery failures and drops.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics records alert outcomes.
func WithMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher starts the worker goroutine immediately.
// Call Close to stop it.
func NewDispatcher(n Notifier, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifier: n,
		queue:    make(chan Alert, DefaultQueueSize),
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.loop()
	return d
}

// Dispatch queues an alert for delivery.
// Returns false if the dispatcher is closed or the queue is full.
func (d *Dispatcher) Dispatch(a Alert) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}

	select {
	case d.queue <- a:
		return true
	default:
		d.logger.Warn("alert queue full, dropping alert",
			"kind", a.Kind, "item", a.Item, "stock", a.Stock)
		d.metrics.ObserveAlert(metrics.AlertDropped)
		return false
	}
}

// Close stops accepting alerts and waits until queued ones are delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	<-d.done
}

// loop delivers alerts sequentially until the queue is closed and drained.
func (d *Dispatcher) loop() {
	defer close(d.done)

	for a := range d.queue {
		d.deliver(a)
	}
}

func (d *Dispatcher) deliver(a Alert) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.notifier.Notify(ctx, a)
	switch {
	case err == nil:
		d.metrics.ObserveAlert(metrics.AlertDelivered)
	case errors.Is(err, ErrThrottled):
		d.logger.Debug("alert throttled", "kind", a.Kind, "item", a.Item)
		d.metrics.ObserveAlert(metrics.AlertThrottled)
	default:
		d.logger.Error("alert delivery failed",
			"kind", a.Kind, "item", a.Item, "error", err)
		d.metrics.ObserveAlert(metrics.AlertFailed)
	}
}

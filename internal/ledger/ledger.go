// Package ledger implements the inventory and transaction ledger: catalog
// maintenance, Craft and Sell, manual stock adjustment, attendance, the
// audit trail and the derived sales and attendance reports.
//
// Every mutating operation runs inside exactly one store transaction
// (BEGIN IMMEDIATE on a single connection), so its check-then-commit
// sequence is serializable with respect to every other operation:
//
//	validate preconditions -> mutate rows -> append audit record -> commit
//	                                                                  |
//	                                    alert check (after commit) <--+
//
// Business-rule failures are returned as *Error before any write and roll
// the transaction back. Alerts are handed to an AlertSink that must not
// block; delivery failures never undo a committed operation.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/craftledger/internal/metrics"
	"github.com/roach88/craftledger/internal/model"
	"github.com/roach88/craftledger/internal/notify"
	"github.com/roach88/craftledger/internal/store"
)

// Clock supplies wall-clock time for audit timestamps and work sessions.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// AlertSink receives low-stock alerts after commit. Dispatch must not block;
// *notify.Dispatcher satisfies it.
type AlertSink interface {
	Dispatch(a notify.Alert) bool
}

type discardAlerts struct{}

func (discardAlerts) Dispatch(notify.Alert) bool { return false }

// Ledger is the transaction engine over a Store.
//
// Thread-safety: all methods are safe for concurrent use. Serialization
// is provided by the store's single write transaction.
type Ledger struct {
	store   *store.Store
	clock   Clock
	ids     RequestIDGenerator
	alerts  AlertSink
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the wall clock. Default: time.Now in UTC.
func WithClock(c Clock) Option {
	return func(l *Ledger) {
		l.clock = c
	}
}

// WithRequestIDs sets the request ID generator. Default: UUIDv7Generator.
func WithRequestIDs(g RequestIDGenerator) Option {
	return func(l *Ledger) {
		l.ids = g
	}
}

// WithAlerts sets where low-stock alerts go. Default: discarded.
func WithAlerts(sink AlertSink) Option {
	return func(l *Ledger) {
		l.alerts = sink
	}
}

// WithMetrics records operation counts and latencies.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) {
		l.metrics = m
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// New creates a Ledger over s.
func New(s *store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  s,
		clock:  systemClock{},
		ids:    UUIDv7Generator{},
		alerts: discardAlerts{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// update runs fn in one write transaction and records the outcome.
// Errors that are not *Error are wrapped as CodeStorageUnavailable.
func (l *Ledger) update(ctx context.Context, op string, fn func(tx *store.Tx) error) error {
	start := time.Now()
	err := classify(op, l.store.Update(ctx, fn))
	l.metrics.ObserveOperation(op, outcome(err), time.Since(start))
	return err
}

// view runs fn in a read-only transaction.
func (l *Ledger) view(ctx context.Context, op string, fn func(tx *store.Tx) error) error {
	return classify(op, l.store.View(ctx, fn))
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if CodeOf(err) != "" {
		return err
	}
	return errStorage(op, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case IsCode(err, CodeStorageUnavailable):
		return metrics.OutcomeError
	default:
		return metrics.OutcomeRejected
	}
}

// audit appends one record inside tx, stamped with the operation's request ID.
func (l *Ledger) audit(ctx context.Context, tx *store.Tx, requestID, actor string, kind model.ActionKind, detail string) error {
	_, err := tx.AppendAudit(ctx, model.AuditRecord{
		RequestID: requestID,
		Actor:     actor,
		Kind:      kind,
		Detail:    detail,
		CreatedAt: l.clock.Now(),
	})
	return err
}

// alertIfLow hands an alert to the sink when the trigger condition holds.
// Called only after commit.
func (l *Ledger) alertIfLow(kind model.ItemKind, item string, stock, threshold int64) {
	if !model.BelowThreshold(stock, threshold) {
		return
	}
	a := notify.Alert{
		Kind:      kind,
		Item:      item,
		Stock:     stock,
		Threshold: threshold,
		At:        l.clock.Now(),
	}
	if !l.alerts.Dispatch(a) {
		l.logger.Debug("alert not queued", "kind", kind, "item", item)
	}
}

// Ping checks that the store is reachable.
func (l *Ledger) Ping(ctx context.Context) error {
	if err := l.store.DB().PingContext(ctx); err != nil {
		return errStorage("ping", err)
	}
	return nil
}

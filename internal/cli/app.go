package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/roach88/craftledger/internal/config"
	"github.com/roach88/craftledger/internal/ledger"
	"github.com/roach88/craftledger/internal/metrics"
	"github.com/roach88/craftledger/internal/notify"
	"github.com/roach88/craftledger/internal/store"
)

// app is everything one command invocation needs: config, logger, the open
// store, the ledger and the alert pipeline behind it.
type app struct {
	cfg        config.Config
	logger     *slog.Logger
	store      *store.Store
	ledger     *ledger.Ledger
	dispatcher *notify.Dispatcher
	nats       *notify.NATSNotifier
	metrics    *metrics.Metrics
}

// newFormatter builds the formatter for cmd's output streams.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// newLogger builds the process logger on w. --verbose forces debug level.
func newLogger(cfg config.LogConfig, verbose bool, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler), nil
}

// openApp loads config, configures logging, opens the database and wires
// the alert pipeline. Failures are reported through out. reg may be nil,
// in which case no metrics are recorded.
func openApp(opts *RootOptions, cmd *cobra.Command, out *OutputFormatter, reg prometheus.Registerer) (*app, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, out.Fail(ErrCodeConfig, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}

	logger, err := newLogger(cfg.Log, opts.Verbose, cmd.ErrOrStderr())
	if err != nil {
		return nil, out.Fail(ErrCodeConfig, "invalid log config", err)
	}
	slog.SetDefault(logger)

	logger.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, out.Fail(ErrCodeStorage, "failed to open database", err)
	}

	a := &app{cfg: cfg, logger: logger, store: st}
	if reg != nil {
		a.metrics = metrics.New(reg)
	}

	notifier, err := a.notifier()
	if err != nil {
		a.closeStore()
		return nil, out.Fail(ErrCodeConfig, "failed to set up alerts", err)
	}
	a.dispatcher = notify.NewDispatcher(notifier,
		notify.WithQueueSize(cfg.Alerts.QueueSize),
		notify.WithTimeout(cfg.Alerts.Timeout),
		notify.WithLogger(logger),
		notify.WithMetrics(a.metrics),
	)

	ledgerOpts := []ledger.Option{
		ledger.WithAlerts(a.dispatcher),
		ledger.WithLogger(logger),
		ledger.WithMetrics(a.metrics),
	}
	if opts.Clock != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithClock(opts.Clock))
	}
	if opts.RequestIDs != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithRequestIDs(opts.RequestIDs))
	}
	a.ledger = ledger.New(st, ledgerOpts...)

	return a, nil
}

// notifier assembles log (and NATS, when configured) delivery behind the
// per-item throttle.
func (a *app) notifier() (notify.Notifier, error) {
	var n notify.Notifier = notify.LogNotifier{Logger: a.logger}

	if url := a.cfg.Alerts.NATS.URL; url != "" {
		nn, err := notify.ConnectNATS(url, a.cfg.Alerts.NATS.Subject)
		if err != nil {
			return nil, err
		}
		a.nats = nn
		a.logger.Debug("publishing alerts to nats", "url", url, "subject", a.cfg.Alerts.NATS.Subject)
		n = notify.Fanout{n, nn}
	}

	if a.cfg.Alerts.Rate > 0 {
		n = notify.NewThrottle(n, rate.Limit(a.cfg.Alerts.Rate), a.cfg.Alerts.Burst)
	}
	return n, nil
}

// Close drains pending alerts, then releases NATS and the database.
func (a *app) Close() {
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.nats != nil {
		if err := a.nats.Close(); err != nil {
			a.logger.Error("error closing nats connection", "error", err)
		}
	}
	a.closeStore()
}

func (a *app) closeStore() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}

// withApp opens the app, runs fn and closes the app again.
func withApp(opts *RootOptions, cmd *cobra.Command, out *OutputFormatter, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(opts, cmd, out, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(commandContext(cmd), a)
}

// commandContext returns cmd's context, or Background when run outside
// Execute (tests calling RunE directly).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// parseCount parses a non-negative integer argument.
func parseCount(out *OutputFormatter, name, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, out.Fail(ErrCodeUsage, "invalid "+name, fmt.Errorf("%q is not a non-negative integer", s))
	}
	return n, nil
}

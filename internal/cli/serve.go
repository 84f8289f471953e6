package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/craftledger/internal/httpapi"
)

// DefaultShutdownTimeout bounds graceful shutdown of in-flight requests.
const DefaultShutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr            string
	ShutdownTimeout time.Duration

	// ready, if set, is called with the bound address once the listener is
	// open (for testing).
	ready func(addr string)
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over HTTP",
		Long: `Serve the JSON HTTP API used by the chat front end.

Prometheus metrics are exposed on /metrics and a liveness check on /healthz.
Low-stock alerts are logged and, when alerts.nats.url is configured,
published to NATS. Ctrl-C drains in-flight requests and pending alerts.

Example:
  craftledger serve --db ./craftledger.db --addr 127.0.0.1:8080
  craftledger serve --config ./craftledger.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides http.addr)")
	cmd.Flags().DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", DefaultShutdownTimeout, "grace period for in-flight requests")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := openApp(opts.RootOptions, cmd, out, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := opts.Addr
	if addr == "" {
		addr = a.cfg.HTTP.Addr
	}

	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(a.ledger,
		httpapi.WithLogger(a.logger),
		httpapi.WithGatherer(reg),
		httpapi.WithAuditPageSize(a.cfg.Audit.PageSize),
	)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return out.Fail(ErrCodeServer, "failed to listen", err)
	}
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	bound := ln.Addr().String()
	a.logger.Info("http server starting", "addr", bound, "db", a.cfg.Database)
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", bound)
	if opts.ready != nil {
		opts.ready(bound)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
		defer cancelShutdown()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return out.Fail(ErrCodeServer, "http server error", err)
	}

	a.logger.Info("http server stopped gracefully")
	return nil
}

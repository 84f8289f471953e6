package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/craftledger/internal/ledger"
	"github.com/roach88/craftledger/internal/model"
)

// AuditOptions holds flags for the audit command.
type AuditOptions struct {
	*RootOptions
	Limit int
}

// SalesResetOptions holds flags for sales reset.
type SalesResetOptions struct {
	*RootOptions
	All bool
}

// AttendanceReport is the JSON shape of the attendance command.
type AttendanceReport struct {
	Worked []model.WorkedTime  `json:"worked"`
	OnDuty []model.WorkSession `json:"on_duty"`
}

// NewClockCommand creates the clock command group.
func NewClockCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clock",
		Short: "Clock in and out of work",
		Long: `Start and end a work session for --actor.

An actor can have at most one open session. Worked time is counted in whole
minutes, rounded down.

Example:
  craftledger clock in --actor alice
  craftledger clock out --actor alice`,
	}

	in := &cobra.Command{
		Use:           "in",
		Short:         "Start a work session",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				s, err := a.ledger.ClockIn(ctx, rootOpts.Actor)
				if err != nil {
					return out.Fail(ErrCodeInternal, "clock in failed", err)
				}
				return out.Render(s, "", func(w io.Writer) {
					renderClockIn(w, s)
				})
			})
		},
	}

	clockOut := &cobra.Command{
		Use:           "out",
		Short:         "End the open work session",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				s, err := a.ledger.ClockOut(ctx, rootOpts.Actor)
				if err != nil {
					return out.Fail(ErrCodeInternal, "clock out failed", err)
				}
				return out.Render(s, "", func(w io.Writer) {
					renderClockOut(w, s)
				})
			})
		},
	}

	cmd.AddCommand(in, clockOut)
	return cmd
}

// NewAttendanceCommand creates the attendance command.
func NewAttendanceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "attendance",
		Short:         "Show worked time per actor and who is on duty",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				worked, err := a.ledger.Attendance(ctx)
				if err != nil {
					return out.Fail(ErrCodeInternal, "attendance failed", err)
				}
				open, err := a.ledger.OpenSessions(ctx)
				if err != nil {
					return out.Fail(ErrCodeInternal, "attendance failed", err)
				}
				report := AttendanceReport{Worked: worked, OnDuty: open}
				return out.Render(report, "", func(w io.Writer) {
					renderAttendance(w, worked, open)
				})
			})
		},
	}
}

// NewLeaderboardCommand creates the leaderboard command.
func NewLeaderboardCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "leaderboard",
		Short:         "Show sales totals, highest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				totals, err := a.ledger.Leaderboard(ctx)
				if err != nil {
					return out.Fail(ErrCodeInternal, "leaderboard failed", err)
				}
				return out.Render(totals, "", func(w io.Writer) {
					renderLeaderboard(w, totals)
				})
			})
		},
	}
}

// NewSalesCommand creates the sales command group.
func NewSalesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SalesResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Manage sales totals",
	}

	reset := &cobra.Command{
		Use:   "reset [actor]",
		Short: "Zero one actor's sales total, or everyone's with --all",
		Long: `Zero sales totals. The reset is recorded in the audit log.

Example:
  craftledger sales reset bob --actor admin
  craftledger sales reset --all --actor admin`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSalesReset(opts, cmd, args)
		},
	}
	reset.Flags().BoolVar(&opts.All, "all", false, "reset every actor's total")

	cmd.AddCommand(reset)
	return cmd
}

func runSalesReset(opts *SalesResetOptions, cmd *cobra.Command, args []string) error {
	out := newFormatter(opts.RootOptions, cmd)

	if opts.All == (len(args) == 1) {
		return out.Fail(ErrCodeUsage, "invalid arguments", fmt.Errorf("give either an actor or --all"))
	}

	return withApp(opts.RootOptions, cmd, out, func(ctx context.Context, a *app) error {
		var (
			res    ledger.ResetResult
			err    error
			target string
		)
		if opts.All {
			res, err = a.ledger.ResetAllSales(ctx, opts.Actor)
		} else {
			target = args[0]
			res, err = a.ledger.ResetSales(ctx, opts.Actor, target)
		}
		if err != nil {
			return out.Fail(ErrCodeInternal, "sales reset failed", err)
		}
		return out.Render(res, res.RequestID, func(w io.Writer) {
			renderReset(w, target, res)
		})
	})
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the most recent audit records",
		Long: `Show the most recent audit records, newest first.

Without --limit the page size comes from audit.page_size in the config.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				limit := opts.Limit
				if limit <= 0 {
					limit = a.cfg.Audit.PageSize
				}
				records, err := a.ledger.RecentAudit(ctx, limit)
				if err != nil {
					return out.Fail(ErrCodeInternal, "audit failed", err)
				}
				return out.Render(records, "", func(w io.Writer) {
					renderAudit(w, records)
				})
			})
		},
	}
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "number of records to show")

	return cmd
}

// NewRoleCommand creates the role command group. Role membership itself
// lives in the chat front end; the ledger only records the change.
func NewRoleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Record role grants and revocations in the audit log",
	}
	cmd.AddCommand(newRoleChangeCommand(rootOpts, "grant", "Record that a role was granted", true))
	cmd.AddCommand(newRoleChangeCommand(rootOpts, "revoke", "Record that a role was revoked", false))
	return cmd
}

func newRoleChangeCommand(rootOpts *RootOptions, name, short string, granted bool) *cobra.Command {
	return &cobra.Command{
		Use:           name + " <target> <role>",
		Short:         short,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				id, err := a.ledger.RecordRoleChange(ctx, rootOpts.Actor, args[0], args[1], granted)
				if err != nil {
					return out.Fail(ErrCodeInternal, "role change failed", err)
				}
				data := map[string]any{"target": args[0], "role": args[1], "granted": granted}
				return out.Render(data, id, func(w io.Writer) {
					renderRoleChange(w, args[0], args[1], granted)
				})
			})
		},
	}
}

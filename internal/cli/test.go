package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/craftledger/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run ledger scenarios",
		Long: `Run YAML ledger scenarios against a fresh in-memory ledger.

Each scenario seeds the catalog, runs a flow of operations and checks the
expected outcomes, the audit log, the alerts raised and the final tables.
When <scenarios-dir>/golden/<name>.golden exists the full trace must match it.
The configured database is never touched.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (missing directory, bad filter)

Examples:
  craftledger test ./scenarios
  craftledger test ./scenarios --filter "craft_*"
  craftledger test ./scenarios --update
  craftledger test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	res, err := harness.RunSuite(dir, harness.SuiteOptions{
		Filter: opts.Filter,
		Update: opts.Update,
	})
	if err != nil {
		return out.Fail(ErrCodeUsage, "cannot run scenarios", err)
	}
	out.VerboseLog("ran %d scenario(s) from %s", res.Total, dir)

	if res.Failed > 0 {
		if opts.Format == "json" {
			_ = out.Error(ErrCodeScenario, fmt.Sprintf("%d scenario(s) failed", res.Failed), res)
		} else {
			renderSuite(out.Writer, res)
		}
		e := NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", res.Failed))
		e.Reported = true
		return e
	}

	return out.Render(res, "", func(w io.Writer) {
		renderSuite(w, res)
	})
}

// renderSuite prints one line per scenario and a summary.
func renderSuite(w io.Writer, res *harness.SuiteResult) {
	if res.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}

	for _, s := range res.Scenarios {
		mark := "PASS"
		if !s.Pass {
			mark = "FAIL"
		}
		switch s.Golden {
		case harness.GoldenUpdated:
			fmt.Fprintf(w, "%s  %s (golden updated)\n", mark, s.Name)
		default:
			fmt.Fprintf(w, "%s  %s\n", mark, s.Name)
		}
		for _, e := range s.Errors {
			fmt.Fprintf(w, "      %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", res.Passed, res.Failed, res.Total)
}

package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/craftledger/internal/ledger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Config   string // path to YAML config; empty uses defaults
	Database string // overrides config.database when set
	Actor    string // who is acting; defaults to $CRAFTLEDGER_ACTOR

	// Clock and RequestIDs override the ledger's defaults (for testing).
	Clock      ledger.Clock
	RequestIDs ledger.RequestIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the craftledger CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "craftledger",
		Short: "craftledger - workshop inventory and sales ledger",
		Long: `Track materials, products and recipes for a small workshop.

Crafting consumes materials per recipe, sales draw down product stock and
credit the seller, and every change is written to an append-only audit log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Actor, "actor", os.Getenv("CRAFTLEDGER_ACTOR"), "name recorded as the actor of mutations")

	// Add subcommands
	cmd.AddCommand(NewCraftCommand(opts))
	cmd.AddCommand(NewSellCommand(opts))
	cmd.AddCommand(NewStockCommand(opts))
	cmd.AddCommand(NewMaterialCommand(opts))
	cmd.AddCommand(NewProductCommand(opts))
	cmd.AddCommand(NewRecipeCommand(opts))
	cmd.AddCommand(NewClockCommand(opts))
	cmd.AddCommand(NewAttendanceCommand(opts))
	cmd.AddCommand(NewLeaderboardCommand(opts))
	cmd.AddCommand(NewSalesCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))
	cmd.AddCommand(NewRoleCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

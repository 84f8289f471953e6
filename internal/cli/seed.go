package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/craftledger/internal/catalogspec"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <catalog.cue>",
		Short: "Load materials, products and recipes from a CUE file",
		Long: `Load a catalog from a CUE file and apply it to the ledger.

The file is validated in full before anything is written. Items are
registered (or updated), recipe lines are set, and declared stock levels are
reached with audited restocks or withdrawals.

Example:
  craftledger seed ./workshop.cue
  craftledger seed ./workshop.cue --db /tmp/ledger.db --format json

File format:
  materials: Wood: {threshold: 5, stock: 10}
  products: Chair: {price: 500, threshold: 1}
  recipes: Chair: {Wood: 3}`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runSeed(opts *RootOptions, cmd *cobra.Command, path string) error {
	out := newFormatter(opts, cmd)

	catalog, err := catalogspec.Load(path)
	if err != nil {
		return out.Fail(ErrCodeSeed, "invalid catalog", err)
	}
	out.VerboseLog("loaded %s: %d materials, %d products", path, len(catalog.Materials), len(catalog.Products))

	return withApp(opts, cmd, out, func(ctx context.Context, a *app) error {
		sum, err := catalogspec.Apply(ctx, a.ledger, catalog)
		if err != nil {
			return out.Fail(ErrCodeSeed, "seed failed", err)
		}
		return out.Render(sum, "", func(w io.Writer) {
			renderSeed(w, path, sum)
		})
	})
}

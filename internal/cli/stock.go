package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/craftledger/internal/ledger"
	"github.com/roach88/craftledger/internal/model"
)

// NewStockCommand creates the stock command group.
func NewStockCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Show and adjust stock levels",
		Long: `Show and adjust stock levels of materials and products.

Kinds may be written as material (mat, m) or product (prod, p). A withdrawal
larger than the current stock is rejected; stock never goes negative.

Example:
  craftledger stock restock material Wood 20 --actor alice
  craftledger stock withdraw product Chair 1 --actor alice
  craftledger stock show m Wood
  craftledger stock low`,
	}

	cmd.AddCommand(newAdjustCommand(rootOpts, "restock", "Add stock to an item", 1))
	cmd.AddCommand(newAdjustCommand(rootOpts, "withdraw", "Remove stock from an item", -1))
	cmd.AddCommand(newStockShowCommand(rootOpts))
	cmd.AddCommand(newStockLowCommand(rootOpts))

	return cmd
}

func newAdjustCommand(rootOpts *RootOptions, name, short string, sign int64) *cobra.Command {
	return &cobra.Command{
		Use:           name + " <kind> <item> <quantity>",
		Short:         short,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdjust(rootOpts, cmd, args, sign)
		},
	}
}

func runAdjust(opts *RootOptions, cmd *cobra.Command, args []string, sign int64) error {
	out := newFormatter(opts, cmd)

	kind, err := model.ParseItemKind(args[0])
	if err != nil {
		return out.Fail(ErrCodeUsage, "invalid kind", err)
	}
	qty, err := parseCount(out, "quantity", args[2])
	if err != nil {
		return err
	}

	return withApp(opts, cmd, out, func(ctx context.Context, a *app) error {
		res, err := a.ledger.AdjustStock(ctx, ledger.StockAdjustment{
			Actor: opts.Actor,
			Kind:  kind,
			Item:  args[1],
			Delta: sign * qty,
		})
		if err != nil {
			return out.Fail(ErrCodeInternal, "stock adjustment failed", err)
		}
		return out.Render(res, res.RequestID, func(w io.Writer) {
			renderAdjust(w, res)
		})
	})
}

func newStockShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <kind> <item>",
		Short:         "Show an item's stock and alert threshold",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			kind, err := model.ParseItemKind(args[0])
			if err != nil {
				return out.Fail(ErrCodeUsage, "invalid kind", err)
			}
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				level, err := a.ledger.GetStock(ctx, kind, args[1])
				if err != nil {
					return out.Fail(ErrCodeInternal, "stock lookup failed", err)
				}
				return out.Render(level, "", func(w io.Writer) {
					renderStockLevel(w, level)
				})
			})
		},
	}
}

func newStockLowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "low",
		Short:         "List items at or below their alert threshold",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				low, err := lowStock(ctx, a.ledger)
				if err != nil {
					return out.Fail(ErrCodeInternal, "stock lookup failed", err)
				}
				return out.Render(low, "", func(w io.Writer) {
					if len(low) == 0 {
						fmt.Fprintln(w, "Nothing is running low.")
						return
					}
					for _, s := range low {
						renderStockLevel(w, s)
					}
				})
			})
		},
	}
}

// lowStock lists materials then products whose stock is at or below an
// enabled threshold.
func lowStock(ctx context.Context, l *ledger.Ledger) ([]ledger.StockLevel, error) {
	materials, err := l.ListMaterials(ctx)
	if err != nil {
		return nil, err
	}
	products, err := l.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	low := []ledger.StockLevel{}
	for _, m := range materials {
		s := ledger.StockLevel{Kind: model.KindMaterial, Item: m.Name, Stock: m.Stock, Threshold: m.Threshold}
		if s.Low() {
			low = append(low, s)
		}
	}
	for _, p := range products {
		s := ledger.StockLevel{Kind: model.KindProduct, Item: p.Name, Stock: p.Stock, Threshold: p.Threshold}
		if s.Low() {
			low = append(low, s)
		}
	}
	return low, nil
}

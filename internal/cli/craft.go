package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/craftledger/internal/ledger"
)

// SellOptions holds flags for the sell command.
type SellOptions struct {
	*RootOptions
	Price int64
}

// NewCraftCommand creates the craft command.
func NewCraftCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "craft <product> [quantity]",
		Short: "Craft products from materials",
		Long: `Craft one or more units of a product.

Every material on the product's recipe is checked before anything is taken
out of stock: either the whole craft happens or nothing changes.

Example:
  craftledger craft Chair 3 --actor alice`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCraft(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runCraft(opts *RootOptions, cmd *cobra.Command, args []string) error {
	out := newFormatter(opts, cmd)

	qty := int64(1)
	if len(args) == 2 {
		n, err := parseCount(out, "quantity", args[1])
		if err != nil {
			return err
		}
		qty = n
	}

	return withApp(opts, cmd, out, func(ctx context.Context, a *app) error {
		res, err := a.ledger.Craft(ctx, ledger.CraftRequest{
			Actor:    opts.Actor,
			Product:  args[0],
			Quantity: qty,
		})
		if err != nil {
			return out.Fail(ErrCodeInternal, "craft failed", err)
		}
		return out.Render(res, res.RequestID, func(w io.Writer) {
			renderCraft(w, res)
		})
	})
}

// NewSellCommand creates the sell command.
func NewSellCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SellOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sell <product> [quantity]",
		Short: "Sell products from stock",
		Long: `Sell one or more units of a product and credit the seller.

The unit price is read from the catalog before the sale unless --price is
given. The price used is the one recorded in the audit log.

Example:
  craftledger sell Chair 2 --actor alice
  craftledger sell Chair --price 450 --actor bob`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSell(opts, cmd, args)
		},
	}

	cmd.Flags().Int64Var(&opts.Price, "price", 0, "unit price (defaults to the catalog price)")

	return cmd
}

func runSell(opts *SellOptions, cmd *cobra.Command, args []string) error {
	out := newFormatter(opts.RootOptions, cmd)

	qty := int64(1)
	if len(args) == 2 {
		n, err := parseCount(out, "quantity", args[1])
		if err != nil {
			return err
		}
		qty = n
	}

	return withApp(opts.RootOptions, cmd, out, func(ctx context.Context, a *app) error {
		price := opts.Price
		if !cmd.Flags().Changed("price") {
			p, err := a.ledger.GetProduct(ctx, args[0])
			if err != nil {
				return out.Fail(ErrCodeInternal, "sell failed", err)
			}
			price = p.Price
		}

		res, err := a.ledger.Sell(ctx, ledger.SellRequest{
			Actor:     opts.Actor,
			Product:   args[0],
			Quantity:  qty,
			UnitPrice: price,
		})
		if err != nil {
			return out.Fail(ErrCodeInternal, "sell failed", err)
		}
		return out.Render(res, res.RequestID, func(w io.Writer) {
			renderSell(w, opts.Actor, res)
		})
	})
}

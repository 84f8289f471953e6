package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/craftledger/internal/model"
)

// MaterialOptions holds flags for material set.
type MaterialOptions struct {
	*RootOptions
	Threshold int64
}

// ProductOptions holds flags for product set.
type ProductOptions struct {
	*RootOptions
	Price     int64
	Threshold int64
}

// NewMaterialCommand creates the material command group.
func NewMaterialCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MaterialOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "material",
		Aliases: []string{"materials", "mat"},
		Short:   "Manage raw materials",
		Long: `Register, list and delete raw materials.

Registering an existing name updates its alert threshold and keeps its stock.
Deleting a material removes every recipe line that uses it.

Example:
  craftledger material set Wood --threshold 5
  craftledger material list
  craftledger material delete Wood`,
	}

	set := &cobra.Command{
		Use:           "set <name>",
		Short:         "Register or update a material",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				m, err := a.ledger.RegisterMaterial(ctx, args[0], opts.Threshold)
				if err != nil {
					return out.Fail(ErrCodeInternal, "register material failed", err)
				}
				return out.Render(m, "", func(w io.Writer) {
					renderMaterials(w, []model.Material{m})
				})
			})
		},
	}
	set.Flags().Int64Var(&opts.Threshold, "threshold", 0, "alert when stock falls to or below this (0 disables)")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List materials",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				ms, err := a.ledger.ListMaterials(ctx)
				if err != nil {
					return out.Fail(ErrCodeInternal, "list materials failed", err)
				}
				return out.Render(ms, "", func(w io.Writer) {
					renderMaterials(w, ms)
				})
			})
		},
	}

	cmd.AddCommand(set, list,
		newDeleteCommand(rootOpts, model.KindMaterial),
		newThresholdCommand(rootOpts, model.KindMaterial),
	)
	return cmd
}

// NewProductCommand creates the product command group.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "product",
		Aliases: []string{"products", "prod"},
		Short:   "Manage finished products",
		Long: `Register, price, list and delete finished products.

Registering an existing name updates its price and threshold and keeps its
stock. Deleting a product removes its recipe.

Example:
  craftledger product set Chair --price 500 --threshold 1
  craftledger product price Chair 550
  craftledger product list`,
	}

	set := &cobra.Command{
		Use:           "set <name>",
		Short:         "Register or update a product",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				p, err := a.ledger.RegisterProduct(ctx, args[0], opts.Price, opts.Threshold)
				if err != nil {
					return out.Fail(ErrCodeInternal, "register product failed", err)
				}
				return out.Render(p, "", func(w io.Writer) {
					renderProducts(w, []model.Product{p})
				})
			})
		},
	}
	set.Flags().Int64Var(&opts.Price, "price", 0, "unit price")
	set.Flags().Int64Var(&opts.Threshold, "threshold", 0, "alert when stock falls to or below this (0 disables)")
	_ = set.MarkFlagRequired("price")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List products",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				ps, err := a.ledger.ListProducts(ctx)
				if err != nil {
					return out.Fail(ErrCodeInternal, "list products failed", err)
				}
				return out.Render(ps, "", func(w io.Writer) {
					renderProducts(w, ps)
				})
			})
		},
	}

	price := &cobra.Command{
		Use:           "price <name> <price>",
		Short:         "Change a product's unit price",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			n, err := parseCount(out, "price", args[1])
			if err != nil {
				return err
			}
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				if err := a.ledger.SetPrice(ctx, args[0], n); err != nil {
					return out.Fail(ErrCodeInternal, "set price failed", err)
				}
				p, err := a.ledger.GetProduct(ctx, args[0])
				if err != nil {
					return out.Fail(ErrCodeInternal, "set price failed", err)
				}
				return out.Render(p, "", func(w io.Writer) {
					renderProducts(w, []model.Product{p})
				})
			})
		},
	}

	cmd.AddCommand(set, list, price,
		newDeleteCommand(rootOpts, model.KindProduct),
		newThresholdCommand(rootOpts, model.KindProduct),
	)
	return cmd
}

func newDeleteCommand(rootOpts *RootOptions, kind model.ItemKind) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <name>",
		Short:         "Delete a " + string(kind) + " and the recipe lines that mention it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				del := a.ledger.DeleteMaterial
				if kind == model.KindProduct {
					del = a.ledger.DeleteProduct
				}
				lines, err := del(ctx, args[0])
				if err != nil {
					return out.Fail(ErrCodeInternal, "delete "+string(kind)+" failed", err)
				}
				data := map[string]any{"kind": kind, "name": args[0], "recipe_lines_removed": lines}
				return out.Render(data, "", func(w io.Writer) {
					renderDeleted(w, kind, args[0], lines)
				})
			})
		},
	}
}

func newThresholdCommand(rootOpts *RootOptions, kind model.ItemKind) *cobra.Command {
	return &cobra.Command{
		Use:           "threshold <name> <threshold>",
		Short:         "Change a " + string(kind) + "'s alert threshold (0 disables alerts)",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			n, err := parseCount(out, "threshold", args[1])
			if err != nil {
				return err
			}
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				if err := a.ledger.SetThreshold(ctx, kind, args[0], n); err != nil {
					return out.Fail(ErrCodeInternal, "set threshold failed", err)
				}
				level, err := a.ledger.GetStock(ctx, kind, args[0])
				if err != nil {
					return out.Fail(ErrCodeInternal, "set threshold failed", err)
				}
				return out.Render(level, "", func(w io.Writer) {
					renderStockLevel(w, level)
				})
			})
		},
	}
}

// NewRecipeCommand creates the recipe command group.
func NewRecipeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recipe",
		Aliases: []string{"recipes"},
		Short:   "Manage product recipes",
		Long: `Show and edit the materials one unit of a product consumes.

Example:
  craftledger recipe set Chair Wood 3
  craftledger recipe show Chair
  craftledger recipe remove Chair Wood`,
	}

	show := &cobra.Command{
		Use:           "show <product>",
		Short:         "Show a product's recipe",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				lines, err := a.ledger.ListRecipe(ctx, args[0])
				if err != nil {
					return out.Fail(ErrCodeInternal, "recipe lookup failed", err)
				}
				return out.Render(lines, "", func(w io.Writer) {
					renderRecipe(w, args[0], lines)
				})
			})
		},
	}

	set := &cobra.Command{
		Use:           "set <product> <material> <quantity>",
		Short:         "Set how many units of a material one product uses",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			n, err := parseCount(out, "quantity", args[2])
			if err != nil {
				return err
			}
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				line, err := a.ledger.SetRecipeLine(ctx, args[0], args[1], n)
				if err != nil {
					return out.Fail(ErrCodeInternal, "set recipe line failed", err)
				}
				lines, err := a.ledger.ListRecipe(ctx, line.Product)
				if err != nil {
					return out.Fail(ErrCodeInternal, "set recipe line failed", err)
				}
				return out.Render(line, "", func(w io.Writer) {
					renderRecipe(w, line.Product, lines)
				})
			})
		},
	}

	remove := &cobra.Command{
		Use:           "remove <product> <material>",
		Aliases:       []string{"rm"},
		Short:         "Remove a material from a product's recipe",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withApp(rootOpts, cmd, out, func(ctx context.Context, a *app) error {
				if err := a.ledger.RemoveRecipeLine(ctx, args[0], args[1]); err != nil {
					return out.Fail(ErrCodeInternal, "remove recipe line failed", err)
				}
				lines, err := a.ledger.ListRecipe(ctx, args[0])
				if err != nil {
					return out.Fail(ErrCodeInternal, "remove recipe line failed", err)
				}
				return out.Render(lines, "", func(w io.Writer) {
					renderRecipe(w, args[0], lines)
				})
			})
		},
	}

	cmd.AddCommand(show, set, remove)
	return cmd
}

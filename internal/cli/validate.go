package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/craftledger/internal/catalogspec"
)

// ValidationResult reports a catalog file that passed validation.
type ValidationResult struct {
	Valid       bool   `json:"valid"`
	File        string `json:"file"`
	Materials   int    `json:"materials"`
	Products    int    `json:"products"`
	RecipeLines int    `json:"recipe_lines"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog.cue>",
		Short: "Check a catalog file without applying it",
		Long: `Validate a CUE catalog file against the seed schema.

Performs syntax checking, schema validation and reference checks (every
recipe must name declared products and materials) without opening the
database. Use it before seed for fast feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)

	catalog, err := catalogspec.Load(path)
	if err != nil {
		var cerr *catalogspec.Error
		if !errors.As(err, &cerr) {
			return out.Fail(ErrCodeSeed, "cannot read catalog", err)
		}
		details := map[string]any{"field": cerr.Field}
		if cerr.Pos.IsValid() {
			details["line"] = cerr.Pos.Line()
			details["column"] = cerr.Pos.Column()
		}
		_ = out.Error(ErrCodeSeed, cerr.Error(), details)
		e := WrapExitError(ExitFailure, "invalid catalog", err)
		e.Reported = true
		return e
	}

	res := ValidationResult{
		Valid:     true,
		File:      path,
		Materials: len(catalog.Materials),
		Products:  len(catalog.Products),
	}
	for _, lines := range catalog.Recipes {
		res.RecipeLines += len(lines)
	}

	return out.Render(res, "", func(w io.Writer) {
		fmt.Fprintf(w, "%s is valid: %d materials, %d products, %d recipe lines\n",
			path, res.Materials, res.Products, res.RecipeLines)
		if opts.Verbose {
			for _, name := range sortedNames(catalog.Products) {
				fmt.Fprintf(w, "  %s: %d recipe lines\n", name, len(catalog.Recipes[name]))
			}
		}
	})
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

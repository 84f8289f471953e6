// Package catalogspec loads catalog seed files written in CUE.
//
// A seed file declares materials, products and recipes:
//
//	materials: Wood: {threshold: 5, stock: 10}
//	products: Chair: {price: 500, threshold: 1}
//	recipes: Chair: {Wood: 3}
//
// The document is unified with an embedded schema (#Catalog) and must be
// concrete. Recipes may only reference items declared in the same file.
// All checks run in Parse, before Apply writes anything.
package catalogspec

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/craftledger/internal/ledger"
	"github.com/roach88/craftledger/internal/model"
)

//go:embed schema.cue
var schemaSource string

// SeedActor is the actor stamped on audit records written by Apply.
const SeedActor = "seed"

// Catalog is a decoded seed file.
type Catalog struct {
	Materials map[string]MaterialSeed     `json:"materials"`
	Products  map[string]ProductSeed      `json:"products"`
	Recipes   map[string]map[string]int64 `json:"recipes"`
}

// MaterialSeed declares one material. A nil Stock leaves stock untouched.
type MaterialSeed struct {
	Threshold int64  `json:"threshold"`
	Stock     *int64 `json:"stock"`
}

// ProductSeed declares one product. A nil Stock leaves stock untouched.
type ProductSeed struct {
	Price     int64  `json:"price"`
	Threshold int64  `json:"threshold"`
	Stock     *int64 `json:"stock"`
}

// Error is a seed file problem with its CUE position when known.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads and parses a seed file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(path, data)
}

// Parse validates src against the schema and decodes it.
func Parse(filename string, src []byte) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile seed schema: %w", err)
	}

	doc := ctx.CompileBytes(src, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Catalog")).Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var c Catalog
	if err := v.Decode(&c); err != nil {
		return nil, formatCUEError(err)
	}
	if err := c.checkReferences(v); err != nil {
		return nil, err
	}
	return &c, nil
}

// checkReferences rejects recipe lines naming items the file doesn't declare.
func (c *Catalog) checkReferences(v cue.Value) error {
	for _, product := range sortedKeys(c.Recipes) {
		if _, ok := c.Products[product]; !ok {
			return &Error{
				Field:   "recipes." + product,
				Message: "product is not declared in products",
				Pos:     v.LookupPath(cue.MakePath(cue.Str("recipes"), cue.Str(product))).Pos(),
			}
		}
		for _, material := range sortedKeys(c.Recipes[product]) {
			if _, ok := c.Materials[material]; !ok {
				return &Error{
					Field:   "recipes." + product + "." + material,
					Message: "material is not declared in materials",
					Pos:     v.LookupPath(cue.MakePath(cue.Str("recipes"), cue.Str(product), cue.Str(material))).Pos(),
				}
			}
		}
	}
	return nil
}

// Summary counts what Apply changed.
type Summary struct {
	Materials   int `json:"materials"`
	Products    int `json:"products"`
	RecipeLines int `json:"recipe_lines"`
	Adjustments int `json:"adjustments"`
}

// Apply registers every item and recipe line in name order. Declared stock
// is reached by adjusting by the difference, so the audit log records it as
// RESTOCK or WITHDRAW by SeedActor.
func Apply(ctx context.Context, l *ledger.Ledger, c *Catalog) (Summary, error) {
	var sum Summary

	for _, name := range sortedKeys(c.Materials) {
		seed := c.Materials[name]
		m, err := l.RegisterMaterial(ctx, name, seed.Threshold)
		if err != nil {
			return sum, fmt.Errorf("material %s: %w", name, err)
		}
		sum.Materials++
		adjusted, err := adjustTo(ctx, l, model.KindMaterial, m.Name, m.Stock, seed.Stock)
		if err != nil {
			return sum, err
		}
		sum.Adjustments += adjusted
	}

	for _, name := range sortedKeys(c.Products) {
		seed := c.Products[name]
		p, err := l.RegisterProduct(ctx, name, seed.Price, seed.Threshold)
		if err != nil {
			return sum, fmt.Errorf("product %s: %w", name, err)
		}
		sum.Products++
		adjusted, err := adjustTo(ctx, l, model.KindProduct, p.Name, p.Stock, seed.Stock)
		if err != nil {
			return sum, err
		}
		sum.Adjustments += adjusted
	}

	for _, product := range sortedKeys(c.Recipes) {
		lines := c.Recipes[product]
		for _, material := range sortedKeys(lines) {
			if _, err := l.SetRecipeLine(ctx, product, material, lines[material]); err != nil {
				return sum, fmt.Errorf("recipe %s/%s: %w", product, material, err)
			}
			sum.RecipeLines++
		}
	}

	return sum, nil
}

func adjustTo(ctx context.Context, l *ledger.Ledger, kind model.ItemKind, name string, current int64, target *int64) (int, error) {
	if target == nil || *target == current {
		return 0, nil
	}
	_, err := l.AdjustStock(ctx, ledger.StockAdjustment{
		Actor: SeedActor,
		Kind:  kind,
		Item:  name,
		Delta: *target - current,
	})
	if err != nil {
		return 0, fmt.Errorf("%s %s stock: %w", kind, name, err)
	}
	return 1, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &Error{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return &Error{Field: "cue", Message: first.Error()}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

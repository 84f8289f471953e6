package catalogspec

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craftledger/internal/ledger"
	"github.com/roach88/craftledger/internal/model"
	"github.com/roach88/craftledger/internal/store"
)

func TestLoad_Workshop(t *testing.T) {
	c, err := Load("testdata/workshop.cue")
	require.NoError(t, err)

	ten, forty, two := int64(10), int64(40), int64(2)
	assert.Equal(t, map[string]MaterialSeed{
		"Wood":      {Threshold: 5, Stock: &ten},
		"Nails":     {Stock: &forty},
		"Oak Plank": {Threshold: 2},
	}, c.Materials)
	assert.Equal(t, map[string]ProductSeed{
		"Chair": {Price: 500, Threshold: 1},
		"Table": {Price: 1200, Stock: &two},
	}, c.Products)
	assert.Equal(t, map[string]map[string]int64{
		"Chair": {"Wood": 3, "Nails": 8},
		"Table": {"Oak Plank": 4, "Nails": 12},
	}, c.Recipes)
}

func TestParse_Empty(t *testing.T) {
	c, err := Parse("empty.cue", []byte(""))
	require.NoError(t, err)
	assert.Empty(t, c.Materials)
	assert.Empty(t, c.Products)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "negative stock",
			src:     `materials: Wood: {stock: -1}`,
			wantErr: "invalid value",
		},
		{
			name:    "missing price",
			src:     `products: Chair: {threshold: 1}`,
			wantErr: "price",
		},
		{
			name:    "zero recipe quantity",
			src:     "materials: Wood: {}\nproducts: Chair: {price: 1}\nrecipes: Chair: Wood: 0",
			wantErr: "invalid value",
		},
		{
			name:    "unknown field",
			src:     `materials: Wood: {treshold: 1}`,
			wantErr: "not allowed",
		},
		{
			name:    "unknown top-level section",
			src:     `items: {}`,
			wantErr: "not allowed",
		},
		{
			name:    "recipe for undeclared product",
			src:     "materials: Wood: {}\nrecipes: Chair: Wood: 1",
			wantErr: "recipes.Chair: product is not declared",
		},
		{
			name:    "recipe with undeclared material",
			src:     "products: Chair: {price: 1}\nrecipes: Chair: Glue: 1",
			wantErr: "recipes.Chair.Glue: material is not declared",
		},
		{
			name:    "syntax error",
			src:     `materials: {`,
			wantErr: "seed.cue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("seed.cue", []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/nope.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read seed file")
}

func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return ledger.New(s, ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestApply(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	c, err := Load("testdata/workshop.cue")
	require.NoError(t, err)

	sum, err := Apply(ctx, l, c)
	require.NoError(t, err)
	assert.Equal(t, Summary{Materials: 3, Products: 2, RecipeLines: 4, Adjustments: 3}, sum)

	wood, err := l.GetStock(ctx, model.KindMaterial, "Wood")
	require.NoError(t, err)
	assert.Equal(t, int64(10), wood.Stock)
	assert.Equal(t, int64(5), wood.Threshold)

	lines, err := l.ListRecipe(ctx, "Table")
	require.NoError(t, err)
	assert.Equal(t, []model.RecipeLine{
		{Product: "Table", Material: "Nails", Quantity: 12},
		{Product: "Table", Material: "Oak Plank", Quantity: 4},
	}, lines)

	recs, err := l.RecentAudit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, r := range recs {
		assert.Equal(t, SeedActor, r.Actor)
		assert.Equal(t, model.ActionRestock, r.Kind)
	}
}

func TestApply_IsIdempotentAndConverges(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	c, err := Load("testdata/workshop.cue")
	require.NoError(t, err)
	_, err = Apply(ctx, l, c)
	require.NoError(t, err)

	sum, err := Apply(ctx, l, c)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Adjustments)

	// Stock drifted below the declared level; reapplying restores it.
	_, err = l.AdjustStock(ctx, ledger.StockAdjustment{Actor: "x", Kind: model.KindMaterial, Item: "Wood", Delta: -4})
	require.NoError(t, err)
	sum, err = Apply(ctx, l, c)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Adjustments)

	recs, err := l.RecentAudit(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Wood (+4)", recs[0].Detail)
}

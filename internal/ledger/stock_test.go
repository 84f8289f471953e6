package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craftledger/internal/model"
)

func TestAdjustStock_RestockAndWithdraw(t *testing.T) {
	f := newFixture(t)
	f.seedChair(t)
	ctx := context.Background()

	res, err := f.ledger.AdjustStock(ctx, StockAdjustment{Actor: "admin", Kind: model.KindMaterial, Item: "Wood", Delta: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(15), res.Stock)

	res, err = f.ledger.AdjustStock(ctx, StockAdjustment{Actor: "admin", Kind: model.KindMaterial, Item: "Wood", Delta: -12})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Stock)

	recs, err := f.ledger.RecentAudit(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, model.ActionWithdraw, recs[0].Kind)
	assert.Equal(t, "Wood (-12)", recs[0].Detail)
	assert.Equal(t, model.ActionRestock, recs[1].Kind)
	assert.Equal(t, "Wood (+5)", recs[1].Detail)

	// 3 <= threshold 5 after the withdrawal.
	alerts := f.alerts.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, int64(3), alerts[0].Stock)
	assert.Equal(t, int64(5), alerts[0].Threshold)
}

func TestAdjustStock_NeverClamps(t *testing.T) {
	f := newFixture(t)
	f.seedChair(t)
	ctx := context.Background()

	_, err := f.ledger.AdjustStock(ctx, StockAdjustment{Actor: "admin", Kind: model.KindMaterial, Item: "Nails", Delta: -5})
	le := requireCode(t, err, CodeInsufficientStock)
	assert.Equal(t, int64(5), le.Needed)
	assert.Equal(t, int64(4), le.Available)

	assert.Equal(t, int64(4), f.stock(t, model.KindMaterial, "Nails"))
	assert.Equal(t, int64(0), f.auditCount(t))
}

func TestAdjustStock_Rejections(t *testing.T) {
	f := newFixture(t)
	f.seedChair(t)
	ctx := context.Background()

	tests := []struct {
		name string
		adj  StockAdjustment
		code Code
	}{
		{"zero delta", StockAdjustment{Actor: "a", Kind: model.KindMaterial, Item: "Wood", Delta: 0}, CodeInvalidQuantity},
		{"unknown item", StockAdjustment{Actor: "a", Kind: model.KindMaterial, Item: "Glue", Delta: 1}, CodeUnknownItem},
		{"wrong kind", StockAdjustment{Actor: "a", Kind: model.KindProduct, Item: "Wood", Delta: 1}, CodeUnknownItem},
		{"bad kind", StockAdjustment{Actor: "a", Kind: "gadget", Item: "Wood", Delta: 1}, CodeUnknownItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.AdjustStock(ctx, tt.adj)
			requireCode(t, err, tt.code)
		})
	}
}

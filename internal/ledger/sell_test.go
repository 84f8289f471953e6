package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craftledger/internal/model"
)

func TestSell_ChairScenario(t *testing.T) {
	f := newFixture(t)
	f.seedChair(t)
	ctx := context.Background()

	_, err := f.ledger.AdjustStock(ctx, StockAdjustment{Actor: "admin", Kind: model.KindProduct, Item: "Chair", Delta: 3})
	require.NoError(t, err)
	f.alerts.Reset()

	res, err := f.ledger.Sell(ctx, SellRequest{Actor: "alice", Product: "Chair", Quantity: 2, UnitPrice: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.Amount)
	assert.Equal(t, int64(1), res.ProductStock)
	assert.Equal(t, int64(1000), res.ActorTotal)
	assert.Equal(t, int64(1000), f.salesTotal(t, "alice"))

	recs, err := f.ledger.RecentAudit(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, model.ActionSale, recs[0].Kind)
	assert.Equal(t, "Chair x2 (1000)", recs[0].Detail)

	// Chair threshold is 1 and stock fell to 1.
	alerts := f.alerts.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, model.KindProduct, alerts[0].Kind)
	assert.Equal(t, "Chair", alerts[0].Item)
	assert.Equal(t, int64(1), alerts[0].Stock)
}

func TestSell_NoOversell(t *testing.T) {
	f := newFixture(t)
	f.seedChair(t)
	ctx := context.Background()

	_, err := f.ledger.AdjustStock(ctx, StockAdjustment{Actor: "admin", Kind: model.KindProduct, Item: "Chair", Delta: 2})
	require.NoError(t, err)
	audits := f.auditCount(t)

	_, err = f.ledger.Sell(ctx, SellRequest{Actor: "alice", Product: "Chair", Quantity: 3, UnitPrice: 500})
	le := requireCode(t, err, CodeInsufficientStock)
	assert.Equal(t, "Chair", le.Item)
	assert.Equal(t, int64(3), le.Needed)
	assert.Equal(t, int64(2), le.Available)

	assert.Equal(t, int64(2), f.stock(t, model.KindProduct, "Chair"))
	assert.Equal(t, int64(0), f.salesTotal(t, "alice"))
	assert.Equal(t, audits, f.auditCount(t))

	// Exactly the available stock is fine.
	res, err := f.ledger.Sell(ctx, SellRequest{Actor: "alice", Product: "Chair", Quantity: 2, UnitPrice: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.ProductStock)
}

func TestSell_AccumulatesPerActor(t *testing.T) {
	f := newFixture(t)
	f.seedChair(t)
	ctx := context.Background()

	_, err := f.ledger.AdjustStock(ctx, StockAdjustment{Actor: "admin", Kind: model.KindProduct, Item: "Chair", Delta: 10})
	require.NoError(t, err)

	_, err = f.ledger.Sell(ctx, SellRequest{Actor: "alice", Product: "Chair", Quantity: 1, UnitPrice: 500})
	require.NoError(t, err)
	_, err = f.ledger.Sell(ctx, SellRequest{Actor: "bob", Product: "Chair", Quantity: 3, UnitPrice: 400})
	require.NoError(t, err)
	res, err := f.ledger.Sell(ctx, SellRequest{Actor: "alice", Product: "Chair", Quantity: 2, UnitPrice: 450})
	require.NoError(t, err)
	assert.Equal(t, int64(500+900), res.ActorTotal)

	board, err := f.ledger.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.SalesTotal{
		{Actor: "alice", Amount: 1400},
		{Actor: "bob", Amount: 1200},
	}, board)
}

func TestSell_UsesGivenPriceNotCatalog(t *testing.T) {
	f := newFixture(t)
	f.seedChair(t)
	ctx := context.Background()

	_, err := f.ledger.AdjustStock(ctx, StockAdjustment{Actor: "admin", Kind: model.KindProduct, Item: "Chair", Delta: 1})
	require.NoError(t, err)

	p, err := f.ledger.GetProduct(ctx, "Chair")
	require.NoError(t, err)
	require.NoError(t, f.ledger.SetPrice(ctx, "Chair", 9999))

	res, err := f.ledger.Sell(ctx, SellRequest{Actor: "alice", Product: "Chair", Quantity: 1, UnitPrice: p.Price})
	require.NoError(t, err)
	assert.Equal(t, int64(500), res.Amount)
}

func TestSell_Rejections(t *testing.T) {
	f := newFixture(t)
	f.seedChair(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  SellRequest
		code Code
	}{
		{"zero quantity", SellRequest{Actor: "a", Product: "Chair", Quantity: 0, UnitPrice: 1}, CodeInvalidQuantity},
		{"negative price", SellRequest{Actor: "a", Product: "Chair", Quantity: 1, UnitPrice: -5}, CodeInvalidPrice},
		{"unknown product", SellRequest{Actor: "a", Product: "Table", Quantity: 1, UnitPrice: 1}, CodeUnknownItem},
		{"empty actor", SellRequest{Actor: " ", Product: "Chair", Quantity: 1, UnitPrice: 1}, CodeInvalidName},
		{"amount overflow", SellRequest{Actor: "a", Product: "Chair", Quantity: 1 << 40, UnitPrice: 1 << 40}, CodeInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Sell(ctx, tt.req)
			requireCode(t, err, tt.code)
		})
	}
	assert.Equal(t, int64(0), f.auditCount(t))
}

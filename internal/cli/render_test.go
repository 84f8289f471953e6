package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/craftledger/internal/catalogspec"
	"github.com/roach88/craftledger/internal/ledger"
	"github.com/roach88/craftledger/internal/model"
	"github.com/roach88/craftledger/internal/testutil"
)

func assertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, got)
}

func TestRender_Craft(t *testing.T) {
	var buf bytes.Buffer
	renderCraft(&buf, ledger.CraftResult{
		RequestID:    "req-0001",
		Product:      "Chair",
		Quantity:     3,
		ProductStock: 3,
		Consumed: []ledger.Consumption{
			{Material: "Nails", Quantity: 6, Stock: 34, Threshold: 0},
			{Material: "Wood", Quantity: 9, Stock: 1, Threshold: 5},
		},
	})
	assertGolden(t, "craft", buf.Bytes())
}

func TestRender_Sell(t *testing.T) {
	var buf bytes.Buffer
	renderSell(&buf, "alice", ledger.SellResult{
		RequestID:    "req-0002",
		Product:      "Chair",
		Quantity:     2,
		UnitPrice:    500,
		Amount:       1000,
		ProductStock: 1,
		ActorTotal:   1500,
	})
	assertGolden(t, "sell", buf.Bytes())
}

func TestRender_Adjust(t *testing.T) {
	var buf bytes.Buffer
	renderAdjust(&buf, ledger.AdjustResult{Kind: model.KindMaterial, Item: "Wood", Delta: 5, Stock: 15, Threshold: 5})
	renderAdjust(&buf, ledger.AdjustResult{Kind: model.KindProduct, Item: "Chair", Delta: -2, Stock: 1, Threshold: 1})
	assertGolden(t, "adjust", buf.Bytes())
}

func TestRender_StockLevels(t *testing.T) {
	var buf bytes.Buffer
	renderStockLevel(&buf, ledger.StockLevel{Kind: model.KindMaterial, Item: "Wood", Stock: 1, Threshold: 5})
	renderStockLevel(&buf, ledger.StockLevel{Kind: model.KindMaterial, Item: "Nails", Stock: 40, Threshold: 0})
	assertGolden(t, "stock_levels", buf.Bytes())
}

func TestRender_Materials(t *testing.T) {
	var buf bytes.Buffer
	renderMaterials(&buf, []model.Material{
		{Name: "Nails", Stock: 40, Threshold: 0},
		{Name: "Oak Plank", Stock: 1, Threshold: 2},
		{Name: "Wood", Stock: 10, Threshold: 5},
	})
	renderMaterials(&buf, nil)
	assertGolden(t, "materials", buf.Bytes())
}

func TestRender_Products(t *testing.T) {
	var buf bytes.Buffer
	renderProducts(&buf, []model.Product{
		{Name: "Chair", Price: 500, Stock: 1, Threshold: 1},
		{Name: "Table", Price: 1200, Stock: 0, Threshold: 0},
	})
	renderProducts(&buf, nil)
	assertGolden(t, "products", buf.Bytes())
}

func TestRender_Recipe(t *testing.T) {
	var buf bytes.Buffer
	renderRecipe(&buf, "Chair", []model.RecipeLine{
		{Product: "Chair", Material: "Nails", Quantity: 8},
		{Product: "Chair", Material: "Wood", Quantity: 3},
	})
	renderRecipe(&buf, "Stool", nil)
	assertGolden(t, "recipe", buf.Bytes())
}

func TestRender_Leaderboard(t *testing.T) {
	var buf bytes.Buffer
	renderLeaderboard(&buf, []model.SalesTotal{
		{Actor: "alice", Amount: 1500},
		{Actor: "bob", Amount: 1000},
		{Actor: "carol", Amount: 0},
	})
	renderLeaderboard(&buf, nil)
	assertGolden(t, "leaderboard", buf.Bytes())
}

func TestRender_Attendance(t *testing.T) {
	var buf bytes.Buffer
	renderAttendance(&buf,
		[]model.WorkedTime{
			{Actor: "alice", Minutes: 150},
			{Actor: "bob", Minutes: 45},
		},
		[]model.WorkSession{
			{ID: 3, Actor: "carol", StartedAt: testutil.Epoch},
		},
	)
	renderAttendance(&buf, nil, nil)
	assertGolden(t, "attendance", buf.Bytes())
}

func TestRender_Clock(t *testing.T) {
	end := testutil.Epoch.Add(90*time.Minute + 59*time.Second)
	var buf bytes.Buffer
	renderClockIn(&buf, model.WorkSession{ID: 1, Actor: "alice", StartedAt: testutil.Epoch})
	renderClockOut(&buf, model.WorkSession{ID: 1, Actor: "alice", StartedAt: testutil.Epoch, EndedAt: &end, Minutes: 90})
	assertGolden(t, "clock", buf.Bytes())
}

func TestRender_Audit(t *testing.T) {
	var buf bytes.Buffer
	renderAudit(&buf, []model.AuditRecord{
		{Seq: 3, RequestID: "req-0003", Actor: "bob", Kind: model.ActionRestock, Detail: "Wood (+5)", CreatedAt: testutil.Epoch.Add(10 * time.Minute)},
		{Seq: 2, RequestID: "req-0002", Actor: "alice", Kind: model.ActionSale, Detail: "Chair x2 (1000)", CreatedAt: testutil.Epoch.Add(5 * time.Minute)},
		{Seq: 1, RequestID: "req-0001", Actor: "alice", Kind: model.ActionCraft, Detail: "Chair x3", CreatedAt: testutil.Epoch},
	})
	renderAudit(&buf, nil)
	assertGolden(t, "audit", buf.Bytes())
}

func TestRender_Reset(t *testing.T) {
	var buf bytes.Buffer
	renderReset(&buf, "bob", ledger.ResetResult{RequestID: "req-0001", Actors: 1})
	renderReset(&buf, "dave", ledger.ResetResult{})
	renderReset(&buf, "", ledger.ResetResult{RequestID: "req-0002", Actors: 3})
	renderReset(&buf, "", ledger.ResetResult{})
	assertGolden(t, "reset", buf.Bytes())
}

func TestRender_Misc(t *testing.T) {
	var buf bytes.Buffer
	renderDeleted(&buf, model.KindMaterial, "Wood", 2)
	renderRoleChange(&buf, "bob", "admin", true)
	renderRoleChange(&buf, "bob", "admin", false)
	renderSeed(&buf, "workshop.cue", catalogspec.Summary{Materials: 3, Products: 2, RecipeLines: 4, Adjustments: 3})
	assertGolden(t, "misc", buf.Bytes())
}

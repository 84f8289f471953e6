package ledger

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/craftledger/internal/model"
	"github.com/roach88/craftledger/internal/store"
	"github.com/roach88/craftledger/internal/testutil"
)

type fixture struct {
	ledger *Ledger
	store  *store.Store
	clock  *testutil.ManualClock
	alerts *testutil.AlertRecorder
}

// newFixture creates a ledger over a fresh database in t.TempDir() with a
// manual clock, sequential request IDs and a recording alert sink.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	f := &fixture{
		store:  s,
		clock:  testutil.NewManualClock(testutil.Epoch),
		alerts: &testutil.AlertRecorder{},
	}
	f.ledger = New(s,
		WithClock(f.clock),
		WithRequestIDs(testutil.NewSequenceGenerator("req")),
		WithAlerts(f.alerts),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return f
}

// seedChair registers Wood (stock 10, threshold 5), Nails (stock 4),
// Chair (price 500, threshold 1) and the recipe Chair = Wood x3 + Nails x2.
// Seeding goes through the store so the audit log starts empty.
func (f *fixture) seedChair(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	err := f.store.Update(ctx, func(tx *store.Tx) error {
		if err := tx.UpsertMaterial(ctx, "Wood", 5); err != nil {
			return err
		}
		if err := tx.UpsertMaterial(ctx, "Nails", 0); err != nil {
			return err
		}
		if err := tx.UpsertProduct(ctx, "Chair", 500, 1); err != nil {
			return err
		}
		if _, err := tx.AddStock(ctx, model.KindMaterial, "Wood", 10); err != nil {
			return err
		}
		if _, err := tx.AddStock(ctx, model.KindMaterial, "Nails", 4); err != nil {
			return err
		}
		if err := tx.SetRecipeLine(ctx, model.RecipeLine{Product: "Chair", Material: "Wood", Quantity: 3}); err != nil {
			return err
		}
		return tx.SetRecipeLine(ctx, model.RecipeLine{Product: "Chair", Material: "Nails", Quantity: 2})
	})
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, kind model.ItemKind, name string) int64 {
	t.Helper()
	level, err := f.ledger.GetStock(context.Background(), kind, name)
	require.NoError(t, err)
	return level.Stock
}

func (f *fixture) auditCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	err := f.store.View(context.Background(), func(tx *store.Tx) error {
		var err error
		n, err = tx.AuditCount(context.Background())
		return err
	})
	require.NoError(t, err)
	return n
}

func (f *fixture) salesTotal(t *testing.T, actor string) int64 {
	t.Helper()
	var n int64
	err := f.store.View(context.Background(), func(tx *store.Tx) error {
		var err error
		n, err = tx.SalesTotal(context.Background(), actor)
		return err
	})
	require.NoError(t, err)
	return n
}

// requireCode asserts err is a ledger *Error with the given code and returns it.
func requireCode(t *testing.T, err error, code Code) *Error {
	t.Helper()
	require.Error(t, err)
	var le *Error
	require.ErrorAs(t, err, &le)
	require.Equal(t, code, le.Code, "error: %v", err)
	return le
}

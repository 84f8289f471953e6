package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/craftledger/internal/model"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// seedChair registers Wood (stock 10, threshold 5), Nails (stock 4) and a
// Chair product priced 500 with recipe Wood x3, Nails x2.
func seedChair(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	err := s.Update(ctx, func(tx *Tx) error {
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
	require.NoError(t, err, "seedChair")
}

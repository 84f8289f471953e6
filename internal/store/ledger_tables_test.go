package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craftledger/internal/model"
)

func TestAppendAudit_AssignsIncreasingSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	var seqs []int64
	err := s.Update(ctx, func(tx *Tx) error {
		for i, detail := range []string{"Chair x1", "Chair x2", "Chair x3"} {
			seq, err := tx.AppendAudit(ctx, model.AuditRecord{
				RequestID: "req",
				Actor:     "alice",
				Kind:      model.ActionCraft,
				Detail:    detail,
				CreatedAt: at.Add(time.Duration(i) * time.Second),
			})
			if err != nil {
				return err
			}
			seqs = append(seqs, seq)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, seqs)
}

func TestRecentAudit_NewestFirstWithLimit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 3, 4, 5, 123e6, time.UTC)

	err := s.Update(ctx, func(tx *Tx) error {
		for _, kind := range []model.ActionKind{model.ActionCraft, model.ActionSale, model.ActionRestock} {
			if _, err := tx.AppendAudit(ctx, model.AuditRecord{
				RequestID: "req-" + string(kind), Actor: "bob", Kind: kind, Detail: "d", CreatedAt: at,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx *Tx) error {
		recs, err := tx.RecentAudit(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, int64(3), recs[0].Seq)
		assert.Equal(t, model.ActionRestock, recs[0].Kind)
		assert.Equal(t, int64(2), recs[1].Seq)
		assert.Equal(t, "req-SALE", recs[1].RequestID)
		assert.True(t, at.Equal(recs[0].CreatedAt), "millisecond timestamps round-trip")

		n, err := tx.AuditCount(ctx)
		assert.Equal(t, int64(3), n)
		return err
	})
	require.NoError(t, err)
}

func TestSales_AddResetLeaderboard(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(tx *Tx) error {
		total, err := tx.AddSales(ctx, "alice", 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), total)

		total, err = tx.AddSales(ctx, "alice", 500)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), total)

		_, err = tx.AddSales(ctx, "bob", 1500)
		require.NoError(t, err)
		_, err = tx.AddSales(ctx, "carol", 200)
		return err
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx *Tx) error {
		board, err := tx.Leaderboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.SalesTotal{
			{Actor: "alice", Amount: 1500},
			{Actor: "bob", Amount: 1500},
			{Actor: "carol", Amount: 200},
		}, board)

		total, err := tx.SalesTotal(ctx, "nobody")
		assert.Equal(t, int64(0), total)
		return err
	})
	require.NoError(t, err)

	err = s.Update(ctx, func(tx *Tx) error {
		require.NoError(t, tx.ResetSales(ctx, "bob"))
		assert.ErrorIs(t, tx.ResetSales(ctx, "nobody"), ErrNotFound)
		return nil
	})
	require.NoError(t, err)

	err = s.Update(ctx, func(tx *Tx) error {
		n, err := tx.ResetAllSales(ctx)
		assert.Equal(t, int64(3), n)
		return err
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx *Tx) error {
		total, err := tx.SalesTotal(ctx, "alice")
		assert.Equal(t, int64(0), total)
		return err
	})
	require.NoError(t, err)
}

func TestSessions_Lifecycle(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	var opened model.WorkSession
	err := s.Update(ctx, func(tx *Tx) error {
		_, err := tx.OpenSession(ctx, "alice")
		assert.ErrorIs(t, err, ErrNotFound)

		opened, err = tx.InsertSession(ctx, "alice", start)
		return err
	})
	require.NoError(t, err)
	assert.True(t, opened.Open())

	err = s.View(ctx, func(tx *Tx) error {
		ws, err := tx.OpenSession(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, opened.ID, ws.ID)
		assert.True(t, start.Equal(ws.StartedAt))

		open, err := tx.OpenSessions(ctx)
		assert.Len(t, open, 1)
		return err
	})
	require.NoError(t, err)

	err = s.Update(ctx, func(tx *Tx) error {
		if err := tx.CloseSession(ctx, opened.ID, start.Add(95*time.Minute), 95); err != nil {
			return err
		}
		// Closing twice is rejected.
		assert.ErrorIs(t, tx.CloseSession(ctx, opened.ID, start.Add(time.Hour), 60), ErrNotFound)

		// bob stays on duty and is not counted.
		_, err := tx.InsertSession(ctx, "bob", start)
		return err
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx *Tx) error {
		worked, err := tx.WorkedMinutes(ctx)
		assert.Equal(t, []model.WorkedTime{{Actor: "alice", Minutes: 95}}, worked)
		return err
	})
	require.NoError(t, err)
}

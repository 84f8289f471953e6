package store

import (
	"context"
	"fmt"

	"github.com/roach88/craftledger/internal/model"
)

// AddSales adds amount to an actor's cumulative total, creating the row at
// zero first if absent, and returns the new total.
func (t *Tx) AddSales(ctx context.Context, actor string, amount int64) (int64, error) {
	var total int64
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO sales_totals (actor_id, amount) VALUES (?, ?)
		ON CONFLICT(actor_id) DO UPDATE SET amount = amount + excluded.amount
		RETURNING amount
	`, actor, amount).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("add sales: %w", err)
	}
	return total, nil
}

// SalesTotal returns an actor's cumulative total, 0 if the actor never sold.
func (t *Tx) SalesTotal(ctx context.Context, actor string) (int64, error) {
	var total int64
	err := t.tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM sales_totals WHERE actor_id = ?
	`, actor).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("read sales total: %w", err)
	}
	return total, nil
}

// ResetSales sets one actor's total to zero.
// Returns ErrNotFound if the actor has no row.
func (t *Tx) ResetSales(ctx context.Context, actor string) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE sales_totals SET amount = 0 WHERE actor_id = ?
	`, actor)
	if err != nil {
		return fmt.Errorf("reset sales: %w", err)
	}
	return requireRow(res)
}

// ResetAllSales sets every total to zero and returns the number of rows
// touched.
func (t *Tx) ResetAllSales(ctx context.Context) (int64, error) {
	res, err := t.tx.ExecContext(ctx, "UPDATE sales_totals SET amount = 0")
	if err != nil {
		return 0, fmt.Errorf("reset all sales: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset all sales: rows affected: %w", err)
	}
	return n, nil
}

// Leaderboard returns every total ordered by amount DESC, then actor ASC so
// ties are stable. Returns an empty slice (not nil) if nobody has sold.
func (t *Tx) Leaderboard(ctx context.Context) ([]model.SalesTotal, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT actor_id, amount FROM sales_totals
		ORDER BY amount DESC, actor_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	totals := []model.SalesTotal{}
	for rows.Next() {
		var st model.SalesTotal
		if err := rows.Scan(&st.Actor, &st.Amount); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		totals = append(totals, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return totals, nil
}

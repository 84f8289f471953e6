package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/craftledger/internal/model"
	"github.com/roach88/craftledger/internal/store"
)

// ResetResult reports a sales reset. Actors is the number of totals zeroed;
// RequestID is empty when nothing changed and no record was written.
type ResetResult struct {
	RequestID string `json:"request_id,omitempty"`
	Actors    int64  `json:"actors"`
}

// Leaderboard returns every actor's sales total, highest first, ties by
// actor.
func (l *Ledger) Leaderboard(ctx context.Context) ([]model.SalesTotal, error) {
	var out []model.SalesTotal
	err := l.view(ctx, "leaderboard", func(tx *store.Tx) error {
		var err error
		out, err = tx.Leaderboard(ctx)
		return err
	})
	return out, err
}

// Attendance returns cumulative minutes over closed sessions per actor,
// highest first, ties by actor.
func (l *Ledger) Attendance(ctx context.Context) ([]model.WorkedTime, error) {
	var out []model.WorkedTime
	err := l.view(ctx, "attendance", func(tx *store.Tx) error {
		var err error
		out, err = tx.WorkedMinutes(ctx)
		return err
	})
	return out, err
}

// OpenSessions lists actors currently on duty, earliest first.
func (l *Ledger) OpenSessions(ctx context.Context) ([]model.WorkSession, error) {
	var out []model.WorkSession
	err := l.view(ctx, "open_sessions", func(tx *store.Tx) error {
		var err error
		out, err = tx.OpenSessions(ctx)
		return err
	})
	return out, err
}

// ResetSales zeroes target's sales total. An actor who never sold is left
// alone and nothing is audited.
func (l *Ledger) ResetSales(ctx context.Context, actor, target string) (ResetResult, error) {
	actor, err := normalizeName("actor", actor)
	if err != nil {
		return ResetResult{}, err
	}
	target, err = normalizeName("target", target)
	if err != nil {
		return ResetResult{}, err
	}

	var res ResetResult
	requestID := l.ids.Generate()
	err = l.update(ctx, "reset_sales", func(tx *store.Tx) error {
		err := tx.ResetSales(ctx, target)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		res = ResetResult{RequestID: requestID, Actors: 1}
		return l.audit(ctx, tx, requestID, actor, model.ActionResetSales, target)
	})
	if err != nil {
		return ResetResult{}, err
	}

	l.logger.Info("sales reset", "request_id", res.RequestID, "actor", actor, "target", target, "actors", res.Actors)
	return res, nil
}

// ResetAllSales zeroes every sales total.
func (l *Ledger) ResetAllSales(ctx context.Context, actor string) (ResetResult, error) {
	actor, err := normalizeName("actor", actor)
	if err != nil {
		return ResetResult{}, err
	}

	var res ResetResult
	requestID := l.ids.Generate()
	err = l.update(ctx, "reset_sales", func(tx *store.Tx) error {
		n, err := tx.ResetAllSales(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		res = ResetResult{RequestID: requestID, Actors: n}
		return l.audit(ctx, tx, requestID, actor, model.ActionResetSales,
			fmt.Sprintf("all (%d)", n))
	})
	if err != nil {
		return ResetResult{}, err
	}

	l.logger.Info("sales reset", "request_id", res.RequestID, "actor", actor, "target", "all", "actors", res.Actors)
	return res, nil
}

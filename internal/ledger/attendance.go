package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/roach88/craftledger/internal/model"
	"github.com/roach88/craftledger/internal/store"
)

// ClockIn opens a work session for actor starting now.
// Fails with AlreadyClockedIn if one is already open.
func (l *Ledger) ClockIn(ctx context.Context, actor string) (model.WorkSession, error) {
	actor, err := normalizeName("actor", actor)
	if err != nil {
		return model.WorkSession{}, err
	}

	var ws model.WorkSession
	err = l.update(ctx, "clock_in", func(tx *store.Tx) error {
		_, err := tx.OpenSession(ctx, actor)
		switch {
		case err == nil:
			return errAlreadyClockedIn(actor)
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		ws, err = tx.InsertSession(ctx, actor, l.clock.Now())
		return err
	})
	if err != nil {
		return model.WorkSession{}, err
	}

	l.logger.Info("clock in", "actor", actor, "session", ws.ID)
	return ws, nil
}

// ClockOut closes actor's open session, freezing its duration in whole
// minutes (rounded down). Fails with NotClockedIn if none is open.
func (l *Ledger) ClockOut(ctx context.Context, actor string) (model.WorkSession, error) {
	actor, err := normalizeName("actor", actor)
	if err != nil {
		return model.WorkSession{}, err
	}

	var ws model.WorkSession
	err = l.update(ctx, "clock_out", func(tx *store.Tx) error {
		var err error
		ws, err = tx.OpenSession(ctx, actor)
		if errors.Is(err, store.ErrNotFound) {
			return errNotClockedIn(actor)
		}
		if err != nil {
			return err
		}

		end := l.clock.Now()
		ws.Minutes = workedMinutes(ws.StartedAt, end)
		if err := tx.CloseSession(ctx, ws.ID, end, ws.Minutes); err != nil {
			return err
		}
		end = end.UTC().Truncate(time.Millisecond)
		ws.EndedAt = &end
		return nil
	})
	if err != nil {
		return model.WorkSession{}, err
	}

	l.logger.Info("clock out", "actor", actor, "session", ws.ID, "minutes", ws.Minutes)
	return ws, nil
}

// workedMinutes is end - start in whole minutes. A clock that went
// backwards counts as zero.
func workedMinutes(start, end time.Time) int64 {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Minute)
}

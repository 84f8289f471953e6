package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/craftledger/internal/model"
)

// OpenSession returns the actor's open work session.
// Returns ErrNotFound if the actor is not clocked in.
func (t *Tx) OpenSession(ctx context.Context, actor string) (model.WorkSession, error) {
	var ws model.WorkSession
	var startedAt int64
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, actor_id, started_at FROM work_sessions
		WHERE actor_id = ? AND ended_at IS NULL
	`, actor).Scan(&ws.ID, &ws.Actor, &startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WorkSession{}, ErrNotFound
	}
	if err != nil {
		return model.WorkSession{}, fmt.Errorf("read open session: %w", err)
	}
	ws.StartedAt = fromMillis(startedAt)
	return ws, nil
}

// InsertSession opens a new session and returns it.
// The partial unique index rejects a second open session for the same actor.
func (t *Tx) InsertSession(ctx context.Context, actor string, startedAt time.Time) (model.WorkSession, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO work_sessions (actor_id, started_at) VALUES (?, ?)
	`, actor, toMillis(startedAt))
	if err != nil {
		return model.WorkSession{}, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.WorkSession{}, fmt.Errorf("insert session: last insert id: %w", err)
	}
	return model.WorkSession{ID: id, Actor: actor, StartedAt: fromMillis(toMillis(startedAt))}, nil
}

// CloseSession freezes an open session's end time and minutes.
// Returns ErrNotFound if the session is missing or already closed.
func (t *Tx) CloseSession(ctx context.Context, id int64, endedAt time.Time, minutes int64) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE work_sessions SET ended_at = ?, minutes = ?
		WHERE id = ? AND ended_at IS NULL
	`, toMillis(endedAt), minutes, id)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return requireRow(res)
}

// OpenSessions lists every open session ordered by start time, then actor.
func (t *Tx) OpenSessions(ctx context.Context) ([]model.WorkSession, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, actor_id, started_at FROM work_sessions
		WHERE ended_at IS NULL
		ORDER BY started_at ASC, actor_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query open sessions: %w", err)
	}
	defer rows.Close()

	sessions := []model.WorkSession{}
	for rows.Next() {
		var ws model.WorkSession
		var startedAt int64
		if err := rows.Scan(&ws.ID, &ws.Actor, &startedAt); err != nil {
			return nil, fmt.Errorf("scan open session: %w", err)
		}
		ws.StartedAt = fromMillis(startedAt)
		sessions = append(sessions, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate open sessions: %w", err)
	}
	return sessions, nil
}

// WorkedMinutes sums minutes over closed sessions per actor, ordered by total
// DESC then actor ASC. Actors with only an open session are omitted.
func (t *Tx) WorkedMinutes(ctx context.Context) ([]model.WorkedTime, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT actor_id, SUM(minutes) AS total
		FROM work_sessions
		WHERE ended_at IS NOT NULL
		GROUP BY actor_id
		ORDER BY total DESC, actor_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query worked minutes: %w", err)
	}
	defer rows.Close()

	worked := []model.WorkedTime{}
	for rows.Next() {
		var wt model.WorkedTime
		if err := rows.Scan(&wt.Actor, &wt.Minutes); err != nil {
			return nil, fmt.Errorf("scan worked minutes: %w", err)
		}
		worked = append(worked, wt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate worked minutes: %w", err)
	}
	return worked, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/roach88/craftledger/internal/model"
)

// AppendAudit inserts an audit record and returns its assigned seq.
// rec.Seq is ignored; seq comes from the AUTOINCREMENT key.
//
// The audit_log table rejects UPDATE and DELETE via triggers, so a record
// written here is never changed afterwards.
func (t *Tx) AppendAudit(ctx context.Context, rec model.AuditRecord) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO audit_log (request_id, actor_id, kind, detail, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		rec.RequestID,
		rec.Actor,
		string(rec.Kind),
		rec.Detail,
		toMillis(rec.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("append audit: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append audit: last insert id: %w", err)
	}
	return seq, nil
}

// RecentAudit returns at most limit records, newest first (seq DESC).
// Returns an empty slice (not nil) if the log is empty.
func (t *Tx) RecentAudit(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT seq, request_id, actor_id, kind, detail, created_at
		FROM audit_log
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	records := []model.AuditRecord{}
	for rows.Next() {
		var rec model.AuditRecord
		var kind string
		var createdAt int64
		if err := rows.Scan(&rec.Seq, &rec.RequestID, &rec.Actor, &kind, &rec.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		rec.Kind = model.ActionKind(kind)
		rec.CreatedAt = fromMillis(createdAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit: %w", err)
	}
	return records, nil
}

// AuditCount returns the number of records in the audit log.
func (t *Tx) AuditCount(ctx context.Context) (int64, error) {
	var n int64
	if err := t.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log").Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit: %w", err)
	}
	return n, nil
}

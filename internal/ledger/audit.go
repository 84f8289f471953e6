package ledger

import (
	"context"
	"fmt"

	"github.com/roach88/craftledger/internal/model"
	"github.com/roach88/craftledger/internal/store"
)

// DefaultAuditLimit is the page size used when RecentAudit gets limit <= 0.
const DefaultAuditLimit = 15

// RecentAudit returns the most recent records, newest first.
func (l *Ledger) RecentAudit(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}

	var recs []model.AuditRecord
	err := l.view(ctx, "recent_audit", func(tx *store.Tx) error {
		var err error
		recs, err = tx.RecentAudit(ctx, limit)
		return err
	})
	return recs, err
}

// RecordRoleChange appends a ROLE_GRANT or ROLE_REVOKE record for a role
// assignment performed by the front end. The ledger keeps no role state;
// this only puts the change on the audit trail.
func (l *Ledger) RecordRoleChange(ctx context.Context, actor, target, role string, granted bool) (string, error) {
	actor, err := normalizeName("actor", actor)
	if err != nil {
		return "", err
	}
	target, err = normalizeName("target", target)
	if err != nil {
		return "", err
	}
	role, err = normalizeName("role", role)
	if err != nil {
		return "", err
	}

	kind, sign := model.ActionRoleGrant, "+"
	if !granted {
		kind, sign = model.ActionRoleRevoke, "-"
	}

	requestID := l.ids.Generate()
	err = l.update(ctx, "role_change", func(tx *store.Tx) error {
		return l.audit(ctx, tx, requestID, actor, kind,
			fmt.Sprintf("%s %s%s", target, sign, role))
	})
	if err != nil {
		return "", err
	}

	l.logger.Info("role change recorded",
		"request_id", requestID, "actor", actor, "target", target,
		"role", role, "granted", granted)
	return requestID, nil
}

package model

import (
	"fmt"
	"strings"
	"time"
)

// ItemKind distinguishes the two stocked catalog tables.
type ItemKind string

const (
	// KindMaterial is a raw material consumed by crafting.
	KindMaterial ItemKind = "material"

	// KindProduct is a finished good produced by crafting and consumed by sales.
	KindProduct ItemKind = "product"
)

// ParseItemKind accepts the long and short spellings used by the front end
// ("material", "mat", "m", "product", "prod", "p").
func ParseItemKind(s string) (ItemKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "material", "materials", "mat", "m":
		return KindMaterial, nil
	case "product", "products", "prod", "p":
		return KindProduct, nil
	}
	return "", fmt.Errorf("unknown item kind %q: must be material or product", s)
}

// Valid reports whether k is one of the known kinds.
func (k ItemKind) Valid() bool {
	return k == KindMaterial || k == KindProduct
}

// Material is a raw input tracked by stock level.
type Material struct {
	Name      string `json:"name"`
	Stock     int64  `json:"stock"`
	Threshold int64  `json:"threshold"`
}

// Product is a finished good with a unit price.
type Product struct {
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Stock     int64  `json:"stock"`
	Threshold int64  `json:"threshold"`
}

// RecipeLine says how many units of Material one unit of Product consumes.
type RecipeLine struct {
	Product  string `json:"product"`
	Material string `json:"material"`
	Quantity int64  `json:"quantity"`
}

// BelowThreshold is the alert trigger: alerting is enabled (threshold > 0)
// and stock is at or below the threshold.
func BelowThreshold(stock, threshold int64) bool {
	return threshold > 0 && stock <= threshold
}

// ActionKind labels an audit record.
type ActionKind string

const (
	ActionCraft      ActionKind = "CRAFT"
	ActionSale       ActionKind = "SALE"
	ActionRestock    ActionKind = "RESTOCK"
	ActionWithdraw   ActionKind = "WITHDRAW"
	ActionResetSales ActionKind = "RESET_SALES"
	ActionRoleGrant  ActionKind = "ROLE_GRANT"
	ActionRoleRevoke ActionKind = "ROLE_REVOKE"
)

// AuditRecord is one row of the append-only audit log.
// Seq is assigned by the store and strictly increases.
type AuditRecord struct {
	Seq       int64      `json:"seq"`
	RequestID string     `json:"request_id"`
	Actor     string     `json:"actor"`
	Kind      ActionKind `json:"kind"`
	Detail    string     `json:"detail"`
	CreatedAt time.Time  `json:"created_at"`
}

// SalesTotal is one leaderboard row.
type SalesTotal struct {
	Actor  string `json:"actor"`
	Amount int64  `json:"amount"`
}

// WorkSession is one clock-in/clock-out interval. EndedAt is nil while the
// session is open; Minutes is frozen when it closes.
type WorkSession struct {
	ID        int64      `json:"id"`
	Actor     string     `json:"actor"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Minutes   int64      `json:"minutes"`
}

// Open reports whether the session has not been clocked out yet.
func (w WorkSession) Open() bool {
	return w.EndedAt == nil
}

// WorkedTime is the cumulative closed-session duration for one actor.
type WorkedTime struct {
	Actor   string `json:"actor"`
	Minutes int64  `json:"minutes"`
}

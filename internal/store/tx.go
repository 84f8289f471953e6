package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/craftledger/internal/model"
)

// Tx is a transaction handle scoped to one Update or View call.
// It must not be retained after the callback returns.
type Tx struct {
	tx *sql.Tx
}

// itemTable maps an item kind to its table. Table names are never taken
// from user input.
func itemTable(kind model.ItemKind) (string, error) {
	switch kind {
	case model.KindMaterial:
		return "materials", nil
	case model.KindProduct:
		return "products", nil
	}
	return "", fmt.Errorf("unknown item kind %q", kind)
}

// recipeColumn is the recipes column that references an item of kind.
func recipeColumn(kind model.ItemKind) string {
	if kind == model.KindProduct {
		return "product_name"
	}
	return "material_name"
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/roach88/craftledger/internal/model"
	"github.com/roach88/craftledger/internal/store"
)

// StockAdjustment is a manual restock (Delta > 0) or withdrawal (Delta < 0).
type StockAdjustment struct {
	Actor string         `json:"actor"`
	Kind  model.ItemKind `json:"kind"`
	Item  string         `json:"item"`
	Delta int64          `json:"delta"`
}

// AdjustResult reports a committed adjustment.
type AdjustResult struct {
	RequestID string         `json:"request_id"`
	Kind      model.ItemKind `json:"kind"`
	Item      string         `json:"item"`
	Delta     int64          `json:"delta"`
	Stock     int64          `json:"stock"`
	Threshold int64          `json:"threshold"`
}

// AdjustStock applies a manual stock change under the same guard as Craft
// and Sell: a withdrawal larger than the current stock fails with
// InsufficientStock instead of clamping. The change is audited as RESTOCK
// or WITHDRAW and followed by the alert check.
func (l *Ledger) AdjustStock(ctx context.Context, adj StockAdjustment) (AdjustResult, error) {
	actor, err := normalizeName("actor", adj.Actor)
	if err != nil {
		return AdjustResult{}, err
	}
	if !adj.Kind.Valid() {
		return AdjustResult{}, errUnknownKind(adj.Kind)
	}
	item, err := normalizeName(string(adj.Kind), adj.Item)
	if err != nil {
		return AdjustResult{}, err
	}
	if adj.Delta == 0 || adj.Delta == math.MinInt64 {
		return AdjustResult{}, errInvalidQuantity("delta must be non-zero, got %d", adj.Delta)
	}

	res := AdjustResult{
		RequestID: l.ids.Generate(),
		Kind:      adj.Kind,
		Item:      item,
		Delta:     adj.Delta,
	}
	action := model.ActionRestock
	if adj.Delta < 0 {
		action = model.ActionWithdraw
	}

	err = l.update(ctx, "adjust_stock", func(tx *store.Tx) error {
		stock, threshold, err := tx.Stock(ctx, adj.Kind, item)
		if errors.Is(err, store.ErrNotFound) {
			return errUnknownItem(adj.Kind, item)
		}
		if err != nil {
			return err
		}
		if adj.Delta < 0 && stock < -adj.Delta {
			return errInsufficientStock(adj.Kind, item, -adj.Delta, stock)
		}
		if adj.Delta > 0 && stock > math.MaxInt64-adj.Delta {
			return errInvalidQuantity("restocking %d would overflow %s stock", adj.Delta, item)
		}
		res.Threshold = threshold

		res.Stock, err = tx.AddStock(ctx, adj.Kind, item, adj.Delta)
		if err != nil {
			return err
		}

		return l.audit(ctx, tx, res.RequestID, actor, action,
			fmt.Sprintf("%s (%+d)", item, adj.Delta))
	})
	if err != nil {
		return AdjustResult{}, err
	}

	l.logger.Info("stock adjusted",
		"request_id", res.RequestID, "actor", actor, "kind", adj.Kind,
		"item", item, "delta", adj.Delta, "stock", res.Stock)

	l.alertIfLow(adj.Kind, item, res.Stock, res.Threshold)
	return res, nil
}

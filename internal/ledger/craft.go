package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/roach88/craftledger/internal/model"
	"github.com/roach88/craftledger/internal/store"
)

// CraftRequest asks to produce Quantity units of Product on behalf of Actor.
type CraftRequest struct {
	Actor    string `json:"actor"`
	Product  string `json:"product"`
	Quantity int64  `json:"quantity"`
}

// Consumption is one material drawn down by a craft.
type Consumption struct {
	Material  string `json:"material"`
	Quantity  int64  `json:"quantity"`
	Stock     int64  `json:"stock"`
	Threshold int64  `json:"threshold"`
}

// CraftResult reports a committed craft.
type CraftResult struct {
	RequestID    string        `json:"request_id"`
	Product      string        `json:"product"`
	Quantity     int64         `json:"quantity"`
	ProductStock int64         `json:"product_stock"`
	Consumed     []Consumption `json:"consumed"`
}

// Craft converts materials into product stock according to the product's
// recipe.
//
// Every recipe line is checked before any line is decremented, in material
// name order, so the first shortfall reported is stable across retries. A
// product with no recipe lines crafts at no material cost.
//
// After commit, each consumed material at or below its threshold raises an
// alert.
func (l *Ledger) Craft(ctx context.Context, req CraftRequest) (CraftResult, error) {
	actor, err := normalizeName("actor", req.Actor)
	if err != nil {
		return CraftResult{}, err
	}
	product, err := normalizeName("product", req.Product)
	if err != nil {
		return CraftResult{}, err
	}
	if req.Quantity < 1 {
		return CraftResult{}, errInvalidQuantity("quantity must be >= 1, got %d", req.Quantity)
	}
	qty := req.Quantity

	res := CraftResult{
		RequestID: l.ids.Generate(),
		Product:   product,
		Quantity:  qty,
		Consumed:  []Consumption{},
	}

	err = l.update(ctx, "craft", func(tx *store.Tx) error {
		p, err := tx.Product(ctx, product)
		if errors.Is(err, store.ErrNotFound) {
			return errUnknownItem(model.KindProduct, product)
		}
		if err != nil {
			return err
		}
		if p.Stock > math.MaxInt64-qty {
			return errInvalidQuantity("crafting %d would overflow %s stock", qty, product)
		}

		lines, err := tx.RecipeLines(ctx, product)
		if err != nil {
			return err
		}

		// Check every line before mutating any.
		plan := make([]Consumption, 0, len(lines))
		for _, line := range lines {
			if line.Quantity > math.MaxInt64/qty {
				return errInvalidQuantity("crafting %d %s needs more %s than can be counted", qty, product, line.Material)
			}
			needed := line.Quantity * qty

			stock, threshold, err := tx.Stock(ctx, model.KindMaterial, line.Material)
			if errors.Is(err, store.ErrNotFound) {
				return errUnknownItem(model.KindMaterial, line.Material)
			}
			if err != nil {
				return err
			}
			if stock < needed {
				return errInsufficientMaterial(line.Material, needed, stock)
			}
			plan = append(plan, Consumption{Material: line.Material, Quantity: needed, Threshold: threshold})
		}

		for i := range plan {
			stock, err := tx.AddStock(ctx, model.KindMaterial, plan[i].Material, -plan[i].Quantity)
			if err != nil {
				return err
			}
			plan[i].Stock = stock
		}

		res.ProductStock, err = tx.AddStock(ctx, model.KindProduct, product, qty)
		if err != nil {
			return err
		}
		res.Consumed = plan

		return l.audit(ctx, tx, res.RequestID, actor, model.ActionCraft,
			fmt.Sprintf("%s x%d", product, qty))
	})
	if err != nil {
		l.logger.Debug("craft rejected",
			"request_id", res.RequestID, "actor", actor, "product", product,
			"quantity", qty, "error", err)
		return CraftResult{}, err
	}

	if len(res.Consumed) == 0 {
		l.logger.Warn("craft with empty recipe",
			"request_id", res.RequestID, "product", product)
	}
	l.logger.Info("craft",
		"request_id", res.RequestID, "actor", actor, "product", product,
		"quantity", qty, "stock", res.ProductStock)
	l.metrics.AddCrafted(product, qty)

	for _, c := range res.Consumed {
		l.alertIfLow(model.KindMaterial, c.Material, c.Stock, c.Threshold)
	}
	return res, nil
}

package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/roach88/craftledger/internal/model"
	"github.com/roach88/craftledger/internal/store"
)

// SellRequest records a sale of Quantity units of Product by Actor at
// UnitPrice. The caller resolves UnitPrice (usually from GetProduct) before
// calling Sell; the ledger never re-reads the catalog price.
type SellRequest struct {
	Actor     string `json:"actor"`
	Product   string `json:"product"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// SellResult reports a committed sale.
type SellResult struct {
	RequestID    string `json:"request_id"`
	Product      string `json:"product"`
	Quantity     int64  `json:"quantity"`
	UnitPrice    int64  `json:"unit_price"`
	Amount       int64  `json:"amount"`
	ProductStock int64  `json:"product_stock"`
	ActorTotal   int64  `json:"actor_total"`
}

// Sell decrements product stock and credits UnitPrice x Quantity to the
// actor's sales total. Stock, total and audit change together or not at all.
func (l *Ledger) Sell(ctx context.Context, req SellRequest) (SellResult, error) {
	actor, err := normalizeName("actor", req.Actor)
	if err != nil {
		return SellResult{}, err
	}
	product, err := normalizeName("product", req.Product)
	if err != nil {
		return SellResult{}, err
	}
	if req.Quantity < 1 {
		return SellResult{}, errInvalidQuantity("quantity must be >= 1, got %d", req.Quantity)
	}
	if req.UnitPrice < 0 {
		return SellResult{}, errInvalidPrice(req.UnitPrice)
	}
	if req.UnitPrice > 0 && req.Quantity > math.MaxInt64/req.UnitPrice {
		return SellResult{}, errInvalidQuantity("sale amount overflows")
	}

	res := SellResult{
		RequestID: l.ids.Generate(),
		Product:   product,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Amount:    req.UnitPrice * req.Quantity,
	}
	var threshold int64

	err = l.update(ctx, "sell", func(tx *store.Tx) error {
		stock, th, err := tx.Stock(ctx, model.KindProduct, product)
		if errors.Is(err, store.ErrNotFound) {
			return errUnknownItem(model.KindProduct, product)
		}
		if err != nil {
			return err
		}
		if stock < req.Quantity {
			return errInsufficientStock(model.KindProduct, product, req.Quantity, stock)
		}
		threshold = th

		res.ProductStock, err = tx.AddStock(ctx, model.KindProduct, product, -req.Quantity)
		if err != nil {
			return err
		}
		res.ActorTotal, err = tx.AddSales(ctx, actor, res.Amount)
		if err != nil {
			return err
		}

		return l.audit(ctx, tx, res.RequestID, actor, model.ActionSale,
			fmt.Sprintf("%s x%d (%d)", product, req.Quantity, res.Amount))
	})
	if err != nil {
		l.logger.Debug("sell rejected",
			"request_id", res.RequestID, "actor", actor, "product", product,
			"quantity", req.Quantity, "error", err)
		return SellResult{}, err
	}

	l.logger.Info("sell",
		"request_id", res.RequestID, "actor", actor, "product", product,
		"quantity", req.Quantity, "amount", res.Amount, "stock", res.ProductStock)
	l.metrics.AddSales(product, res.Amount)

	l.alertIfLow(model.KindProduct, product, res.ProductStock, threshold)
	return res, nil
}

package ledger

import (
	"context"
	"errors"

	"github.com/roach88/craftledger/internal/model"
	"github.com/roach88/craftledger/internal/store"
)

// StockLevel is the answer to GetStock.
type StockLevel struct {
	Kind      model.ItemKind `json:"kind"`
	Item      string         `json:"item"`
	Stock     int64          `json:"stock"`
	Threshold int64          `json:"threshold"`
}

// Low reports whether the level meets the alert trigger.
func (s StockLevel) Low() bool {
	return model.BelowThreshold(s.Stock, s.Threshold)
}

// RegisterMaterial creates a material or updates its threshold, keeping its
// stock.
func (l *Ledger) RegisterMaterial(ctx context.Context, name string, threshold int64) (model.Material, error) {
	name, err := normalizeName("material", name)
	if err != nil {
		return model.Material{}, err
	}
	if threshold < 0 {
		return model.Material{}, errInvalidQuantity("threshold must be >= 0, got %d", threshold)
	}

	var m model.Material
	err = l.update(ctx, "register_material", func(tx *store.Tx) error {
		if err := tx.UpsertMaterial(ctx, name, threshold); err != nil {
			return err
		}
		var err error
		m, err = tx.Material(ctx, name)
		return err
	})
	if err != nil {
		return model.Material{}, err
	}
	l.logger.Info("material registered", "material", name, "threshold", threshold)
	return m, nil
}

// RegisterProduct creates a product or updates its price and threshold,
// keeping its stock.
func (l *Ledger) RegisterProduct(ctx context.Context, name string, price, threshold int64) (model.Product, error) {
	name, err := normalizeName("product", name)
	if err != nil {
		return model.Product{}, err
	}
	if price < 0 {
		return model.Product{}, errInvalidPrice(price)
	}
	if threshold < 0 {
		return model.Product{}, errInvalidQuantity("threshold must be >= 0, got %d", threshold)
	}

	var p model.Product
	err = l.update(ctx, "register_product", func(tx *store.Tx) error {
		if err := tx.UpsertProduct(ctx, name, price, threshold); err != nil {
			return err
		}
		var err error
		p, err = tx.Product(ctx, name)
		return err
	})
	if err != nil {
		return model.Product{}, err
	}
	l.logger.Info("product registered", "product", name, "price", price, "threshold", threshold)
	return p, nil
}

// SetRecipeLine sets how many units of material one unit of product
// consumes, replacing any previous quantity for the pair.
func (l *Ledger) SetRecipeLine(ctx context.Context, product, material string, quantity int64) (model.RecipeLine, error) {
	product, err := normalizeName("product", product)
	if err != nil {
		return model.RecipeLine{}, err
	}
	material, err = normalizeName("material", material)
	if err != nil {
		return model.RecipeLine{}, err
	}
	if quantity < 1 {
		return model.RecipeLine{}, errInvalidQuantity("recipe quantity must be >= 1, got %d", quantity)
	}

	line := model.RecipeLine{Product: product, Material: material, Quantity: quantity}
	err = l.update(ctx, "set_recipe_line", func(tx *store.Tx) error {
		if err := requireItem(ctx, tx, model.KindProduct, product); err != nil {
			return err
		}
		if err := requireItem(ctx, tx, model.KindMaterial, material); err != nil {
			return err
		}
		return tx.SetRecipeLine(ctx, line)
	})
	if err != nil {
		return model.RecipeLine{}, err
	}
	l.logger.Info("recipe line set", "product", product, "material", material, "quantity", quantity)
	return line, nil
}

// RemoveRecipeLine deletes one (product, material) line.
func (l *Ledger) RemoveRecipeLine(ctx context.Context, product, material string) error {
	product, err := normalizeName("product", product)
	if err != nil {
		return err
	}
	material, err = normalizeName("material", material)
	if err != nil {
		return err
	}

	return l.update(ctx, "remove_recipe_line", func(tx *store.Tx) error {
		err := tx.DeleteRecipeLine(ctx, product, material)
		if errors.Is(err, store.ErrNotFound) {
			return errUnknownRecipeLine(product, material)
		}
		return err
	})
}

// DeleteMaterial removes a material and every recipe line using it.
// Returns the number of recipe lines removed.
func (l *Ledger) DeleteMaterial(ctx context.Context, name string) (int64, error) {
	return l.deleteItem(ctx, model.KindMaterial, name)
}

// DeleteProduct removes a product and its recipe.
// Returns the number of recipe lines removed.
func (l *Ledger) DeleteProduct(ctx context.Context, name string) (int64, error) {
	return l.deleteItem(ctx, model.KindProduct, name)
}

func (l *Ledger) deleteItem(ctx context.Context, kind model.ItemKind, name string) (int64, error) {
	name, err := normalizeName(string(kind), name)
	if err != nil {
		return 0, err
	}

	var lines int64
	err = l.update(ctx, "delete_"+string(kind), func(tx *store.Tx) error {
		var err error
		lines, err = tx.DeleteItem(ctx, kind, name)
		if errors.Is(err, store.ErrNotFound) {
			return errUnknownItem(kind, name)
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	l.logger.Info("item deleted", "kind", kind, "item", name, "recipe_lines", lines)
	return lines, nil
}

// SetPrice changes a product's unit price. Sales already recorded keep the
// price they were made at.
func (l *Ledger) SetPrice(ctx context.Context, product string, price int64) error {
	product, err := normalizeName("product", product)
	if err != nil {
		return err
	}
	if price < 0 {
		return errInvalidPrice(price)
	}

	err = l.update(ctx, "set_price", func(tx *store.Tx) error {
		err := tx.SetPrice(ctx, product, price)
		if errors.Is(err, store.ErrNotFound) {
			return errUnknownItem(model.KindProduct, product)
		}
		return err
	})
	if err != nil {
		return err
	}
	l.logger.Info("price set", "product", product, "price", price)
	return nil
}

// SetThreshold changes an item's alert threshold. 0 disables alerting.
func (l *Ledger) SetThreshold(ctx context.Context, kind model.ItemKind, name string, threshold int64) error {
	if !kind.Valid() {
		return errUnknownKind(kind)
	}
	name, err := normalizeName(string(kind), name)
	if err != nil {
		return err
	}
	if threshold < 0 {
		return errInvalidQuantity("threshold must be >= 0, got %d", threshold)
	}

	err = l.update(ctx, "set_threshold", func(tx *store.Tx) error {
		err := tx.SetThreshold(ctx, kind, name, threshold)
		if errors.Is(err, store.ErrNotFound) {
			return errUnknownItem(kind, name)
		}
		return err
	})
	if err != nil {
		return err
	}
	l.logger.Info("threshold set", "kind", kind, "item", name, "threshold", threshold)
	return nil
}

// GetStock returns an item's stock level and threshold.
func (l *Ledger) GetStock(ctx context.Context, kind model.ItemKind, name string) (StockLevel, error) {
	if !kind.Valid() {
		return StockLevel{}, errUnknownKind(kind)
	}
	name, err := normalizeName(string(kind), name)
	if err != nil {
		return StockLevel{}, err
	}

	level := StockLevel{Kind: kind, Item: name}
	err = l.view(ctx, "get_stock", func(tx *store.Tx) error {
		var err error
		level.Stock, level.Threshold, err = tx.Stock(ctx, kind, name)
		if errors.Is(err, store.ErrNotFound) {
			return errUnknownItem(kind, name)
		}
		return err
	})
	if err != nil {
		return StockLevel{}, err
	}
	return level, nil
}

// GetMaterial returns one material.
func (l *Ledger) GetMaterial(ctx context.Context, name string) (model.Material, error) {
	name, err := normalizeName("material", name)
	if err != nil {
		return model.Material{}, err
	}

	var m model.Material
	err = l.view(ctx, "get_material", func(tx *store.Tx) error {
		var err error
		m, err = tx.Material(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return errUnknownItem(model.KindMaterial, name)
		}
		return err
	})
	return m, err
}

// GetProduct returns one product. Callers resolve the unit price for Sell
// from here before invoking it.
func (l *Ledger) GetProduct(ctx context.Context, name string) (model.Product, error) {
	name, err := normalizeName("product", name)
	if err != nil {
		return model.Product{}, err
	}

	var p model.Product
	err = l.view(ctx, "get_product", func(tx *store.Tx) error {
		var err error
		p, err = tx.Product(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return errUnknownItem(model.KindProduct, name)
		}
		return err
	})
	return p, err
}

// ListMaterials returns every material ordered by name.
func (l *Ledger) ListMaterials(ctx context.Context) ([]model.Material, error) {
	var out []model.Material
	err := l.view(ctx, "list_materials", func(tx *store.Tx) error {
		var err error
		out, err = tx.Materials(ctx)
		return err
	})
	return out, err
}

// ListProducts returns every product ordered by name.
func (l *Ledger) ListProducts(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	err := l.view(ctx, "list_products", func(tx *store.Tx) error {
		var err error
		out, err = tx.Products(ctx)
		return err
	})
	return out, err
}

// ListRecipe returns a product's recipe ordered by material name.
// An empty recipe is not an error.
func (l *Ledger) ListRecipe(ctx context.Context, product string) ([]model.RecipeLine, error) {
	product, err := normalizeName("product", product)
	if err != nil {
		return nil, err
	}

	var lines []model.RecipeLine
	err = l.view(ctx, "list_recipe", func(tx *store.Tx) error {
		if err := requireItem(ctx, tx, model.KindProduct, product); err != nil {
			return err
		}
		var err error
		lines, err = tx.RecipeLines(ctx, product)
		return err
	})
	return lines, err
}

// requireItem returns UnknownItem if the item doesn't exist.
func requireItem(ctx context.Context, tx *store.Tx, kind model.ItemKind, name string) error {
	_, _, err := tx.Stock(ctx, kind, name)
	if errors.Is(err, store.ErrNotFound) {
		return errUnknownItem(kind, name)
	}
	return err
}

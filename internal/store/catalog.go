package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/craftledger/internal/model"
)

// Material retrieves a single material by name.
// Returns ErrNotFound if it doesn't exist.
func (t *Tx) Material(ctx context.Context, name string) (model.Material, error) {
	var m model.Material
	err := t.tx.QueryRowContext(ctx, `
		SELECT name, stock, threshold FROM materials WHERE name = ?
	`, name).Scan(&m.Name, &m.Stock, &m.Threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Material{}, ErrNotFound
	}
	if err != nil {
		return model.Material{}, fmt.Errorf("read material: %w", err)
	}
	return m, nil
}

// Product retrieves a single product by name.
// Returns ErrNotFound if it doesn't exist.
func (t *Tx) Product(ctx context.Context, name string) (model.Product, error) {
	var p model.Product
	err := t.tx.QueryRowContext(ctx, `
		SELECT name, price, stock, threshold FROM products WHERE name = ?
	`, name).Scan(&p.Name, &p.Price, &p.Stock, &p.Threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("read product: %w", err)
	}
	return p, nil
}

// Materials returns every material ordered by name.
// Returns an empty slice (not nil) if there are none.
func (t *Tx) Materials(ctx context.Context) ([]model.Material, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT name, stock, threshold FROM materials
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	materials := []model.Material{}
	for rows.Next() {
		var m model.Material
		if err := rows.Scan(&m.Name, &m.Stock, &m.Threshold); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}
	return materials, nil
}

// Products returns every product ordered by name.
// Returns an empty slice (not nil) if there are none.
func (t *Tx) Products(ctx context.Context) ([]model.Product, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT name, price, stock, threshold FROM products
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.Name, &p.Price, &p.Stock, &p.Threshold); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// UpsertMaterial inserts a material or updates its threshold.
// Uses ON CONFLICT(name) DO UPDATE so the current stock is preserved.
func (t *Tx) UpsertMaterial(ctx context.Context, name string, threshold int64) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO materials (name, threshold) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET threshold = excluded.threshold
	`, name, threshold)
	if err != nil {
		return fmt.Errorf("upsert material: %w", err)
	}
	return nil
}

// UpsertProduct inserts a product or updates its price and threshold.
// Uses ON CONFLICT(name) DO UPDATE so the current stock is preserved.
func (t *Tx) UpsertProduct(ctx context.Context, name string, price, threshold int64) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO products (name, price, threshold) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET price = excluded.price, threshold = excluded.threshold
	`, name, price, threshold)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// Stock returns the stock level and threshold of an item.
// Returns ErrNotFound if it doesn't exist.
func (t *Tx) Stock(ctx context.Context, kind model.ItemKind, name string) (stock, threshold int64, err error) {
	table, err := itemTable(kind)
	if err != nil {
		return 0, 0, err
	}
	err = t.tx.QueryRowContext(ctx,
		"SELECT stock, threshold FROM "+table+" WHERE name = ?", name,
	).Scan(&stock, &threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("read %s stock: %w", kind, err)
	}
	return stock, threshold, nil
}

// AddStock adds delta (possibly negative) to an item's stock and returns the
// new level. The caller must have checked that the result is non-negative;
// the CHECK constraint turns a violation into an error rather than a clamp.
// Returns ErrNotFound if the item doesn't exist.
func (t *Tx) AddStock(ctx context.Context, kind model.ItemKind, name string, delta int64) (int64, error) {
	table, err := itemTable(kind)
	if err != nil {
		return 0, err
	}
	var stock int64
	err = t.tx.QueryRowContext(ctx,
		"UPDATE "+table+" SET stock = stock + ? WHERE name = ? RETURNING stock", delta, name,
	).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("add %s stock: %w", kind, err)
	}
	return stock, nil
}

// SetThreshold updates an item's alert threshold.
// Returns ErrNotFound if the item doesn't exist.
func (t *Tx) SetThreshold(ctx context.Context, kind model.ItemKind, name string, threshold int64) error {
	table, err := itemTable(kind)
	if err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx,
		"UPDATE "+table+" SET threshold = ? WHERE name = ?", threshold, name,
	)
	if err != nil {
		return fmt.Errorf("set %s threshold: %w", kind, err)
	}
	return requireRow(res)
}

// SetPrice updates a product's unit price.
// Returns ErrNotFound if the product doesn't exist.
func (t *Tx) SetPrice(ctx context.Context, name string, price int64) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE products SET price = ? WHERE name = ?
	`, price, name)
	if err != nil {
		return fmt.Errorf("set price: %w", err)
	}
	return requireRow(res)
}

// DeleteItem removes an item and every recipe line mentioning it, in that
// order, inside the caller's transaction. Returns the number of recipe lines
// removed. Returns ErrNotFound if the item doesn't exist.
func (t *Tx) DeleteItem(ctx context.Context, kind model.ItemKind, name string) (int64, error) {
	table, err := itemTable(kind)
	if err != nil {
		return 0, err
	}

	res, err := t.tx.ExecContext(ctx,
		"DELETE FROM recipes WHERE "+recipeColumn(kind)+" = ?", name,
	)
	if err != nil {
		return 0, fmt.Errorf("delete %s recipes: %w", kind, err)
	}
	lines, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s recipes: rows affected: %w", kind, err)
	}

	res, err = t.tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE name = ?", name)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", kind, err)
	}
	if err := requireRow(res); err != nil {
		return 0, err
	}
	return lines, nil
}

// RecipeLines returns the recipe of a product ordered by material name.
// The order is stable so callers iterating lines report shortfalls
// consistently. Returns an empty slice (not nil) for an empty recipe.
func (t *Tx) RecipeLines(ctx context.Context, product string) ([]model.RecipeLine, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT product_name, material_name, quantity
		FROM recipes
		WHERE product_name = ?
		ORDER BY material_name COLLATE BINARY ASC
	`, product)
	if err != nil {
		return nil, fmt.Errorf("query recipe: %w", err)
	}
	defer rows.Close()

	lines := []model.RecipeLine{}
	for rows.Next() {
		var l model.RecipeLine
		if err := rows.Scan(&l.Product, &l.Material, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan recipe line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe: %w", err)
	}
	return lines, nil
}

// SetRecipeLine inserts a recipe line or replaces its quantity.
// Both items must exist (foreign key constraint).
func (t *Tx) SetRecipeLine(ctx context.Context, line model.RecipeLine) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO recipes (product_name, material_name, quantity) VALUES (?, ?, ?)
		ON CONFLICT(product_name, material_name) DO UPDATE SET quantity = excluded.quantity
	`, line.Product, line.Material, line.Quantity)
	if err != nil {
		return fmt.Errorf("set recipe line: %w", err)
	}
	return nil
}

// DeleteRecipeLine removes one recipe line.
// Returns ErrNotFound if the line doesn't exist.
func (t *Tx) DeleteRecipeLine(ctx context.Context, product, material string) error {
	res, err := t.tx.ExecContext(ctx, `
		DELETE FROM recipes WHERE product_name = ? AND material_name = ?
	`, product, material)
	if err != nil {
		return fmt.Errorf("delete recipe line: %w", err)
	}
	return requireRow(res)
}

// requireRow maps "zero rows affected" to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

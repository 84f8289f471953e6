package harness

import (
	"context"
	"fmt"

	"github.com/roach88/craftledger/internal/ledger"
	"github.com/roach88/craftledger/internal/model"
)

// stepArgs are the YAML arguments of one step.
type stepArgs map[string]any

// actionFunc runs one ledger operation. The returned value is normalized to
// a JSON object for the trace; nil means the operation returns nothing.
type actionFunc func(ctx context.Context, l *ledger.Ledger, actor string, args stepArgs) (any, error)

// actions maps scenario action names to ledger operations.
var actions = map[string]actionFunc{
	"register_material": func(ctx context.Context, l *ledger.Ledger, _ string, a stepArgs) (any, error) {
		name, err := a.str("name")
		if err != nil {
			return nil, err
		}
		threshold, err := a.optInt("threshold", 0)
		if err != nil {
			return nil, err
		}
		return l.RegisterMaterial(ctx, name, threshold)
	},
	"register_product": func(ctx context.Context, l *ledger.Ledger, _ string, a stepArgs) (any, error) {
		name, err := a.str("name")
		if err != nil {
			return nil, err
		}
		price, err := a.integer("price")
		if err != nil {
			return nil, err
		}
		threshold, err := a.optInt("threshold", 0)
		if err != nil {
			return nil, err
		}
		return l.RegisterProduct(ctx, name, price, threshold)
	},
	"set_recipe_line": func(ctx context.Context, l *ledger.Ledger, _ string, a stepArgs) (any, error) {
		product, material, err := a.recipeKey()
		if err != nil {
			return nil, err
		}
		qty, err := a.integer("quantity")
		if err != nil {
			return nil, err
		}
		return l.SetRecipeLine(ctx, product, material, qty)
	},
	"remove_recipe_line": func(ctx context.Context, l *ledger.Ledger, _ string, a stepArgs) (any, error) {
		product, material, err := a.recipeKey()
		if err != nil {
			return nil, err
		}
		return nil, l.RemoveRecipeLine(ctx, product, material)
	},
	"delete_material": func(ctx context.Context, l *ledger.Ledger, _ string, a stepArgs) (any, error) {
		return deleteItem(ctx, l.DeleteMaterial, a)
	},
	"delete_product": func(ctx context.Context, l *ledger.Ledger, _ string, a stepArgs) (any, error) {
		return deleteItem(ctx, l.DeleteProduct, a)
	},
	"set_price": func(ctx context.Context, l *ledger.Ledger, _ string, a stepArgs) (any, error) {
		product, err := a.str("product")
		if err != nil {
			return nil, err
		}
		price, err := a.integer("price")
		if err != nil {
			return nil, err
		}
		return nil, l.SetPrice(ctx, product, price)
	},
	"set_threshold": func(ctx context.Context, l *ledger.Ledger, _ string, a stepArgs) (any, error) {
		kind, item, err := a.itemRef()
		if err != nil {
			return nil, err
		}
		threshold, err := a.integer("threshold")
		if err != nil {
			return nil, err
		}
		return nil, l.SetThreshold(ctx, kind, item, threshold)
	},
	"adjust_stock": func(ctx context.Context, l *ledger.Ledger, actor string, a stepArgs) (any, error) {
		kind, item, err := a.itemRef()
		if err != nil {
			return nil, err
		}
		delta, err := a.integer("delta")
		if err != nil {
			return nil, err
		}
		return l.AdjustStock(ctx, ledger.StockAdjustment{Actor: actor, Kind: kind, Item: item, Delta: delta})
	},
	"craft": func(ctx context.Context, l *ledger.Ledger, actor string, a stepArgs) (any, error) {
		product, err := a.str("product")
		if err != nil {
			return nil, err
		}
		qty, err := a.optInt("quantity", 1)
		if err != nil {
			return nil, err
		}
		return l.Craft(ctx, ledger.CraftRequest{Actor: actor, Product: product, Quantity: qty})
	},
	// sell resolves unit_price from the catalog when the step omits it,
	// the way the CLI and HTTP front ends do.
	"sell": func(ctx context.Context, l *ledger.Ledger, actor string, a stepArgs) (any, error) {
		product, err := a.str("product")
		if err != nil {
			return nil, err
		}
		qty, err := a.optInt("quantity", 1)
		if err != nil {
			return nil, err
		}
		var price int64
		if _, ok := a["unit_price"]; ok {
			price, err = a.integer("unit_price")
		} else {
			var p model.Product
			p, err = l.GetProduct(ctx, product)
			price = p.Price
		}
		if err != nil {
			return nil, err
		}
		return l.Sell(ctx, ledger.SellRequest{Actor: actor, Product: product, Quantity: qty, UnitPrice: price})
	},
	"clock_in": func(ctx context.Context, l *ledger.Ledger, actor string, _ stepArgs) (any, error) {
		return l.ClockIn(ctx, actor)
	},
	"clock_out": func(ctx context.Context, l *ledger.Ledger, actor string, _ stepArgs) (any, error) {
		return l.ClockOut(ctx, actor)
	},
	"reset_sales": func(ctx context.Context, l *ledger.Ledger, actor string, a stepArgs) (any, error) {
		target, err := a.str("target")
		if err != nil {
			return nil, err
		}
		return l.ResetSales(ctx, actor, target)
	},
	"reset_all_sales": func(ctx context.Context, l *ledger.Ledger, actor string, _ stepArgs) (any, error) {
		return l.ResetAllSales(ctx, actor)
	},
	"role_change": func(ctx context.Context, l *ledger.Ledger, actor string, a stepArgs) (any, error) {
		target, err := a.str("target")
		if err != nil {
			return nil, err
		}
		role, err := a.str("role")
		if err != nil {
			return nil, err
		}
		granted := true
		if v, ok := a["granted"]; ok {
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("arg %q: want bool, got %T", "granted", v)
			}
			granted = b
		}
		id, err := l.RecordRoleChange(ctx, actor, target, role, granted)
		if err != nil {
			return nil, err
		}
		return map[string]any{"request_id": id}, nil
	},
}

func deleteItem(ctx context.Context, del func(context.Context, string) (int64, error), a stepArgs) (any, error) {
	name, err := a.str("name")
	if err != nil {
		return nil, err
	}
	n, err := del(ctx, name)
	if err != nil {
		return nil, err
	}
	return map[string]any{"recipe_lines": n}, nil
}

// actorFor returns the step's "actor" arg, or fallback when absent.
func (a stepArgs) actorFor(fallback string) (string, error) {
	if _, ok := a["actor"]; !ok {
		return fallback, nil
	}
	return a.str("actor")
}

// str returns a string arg. Empty strings are passed through so the ledger
// can reject them.
func (a stepArgs) str(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", fmt.Errorf("missing arg %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("arg %q: want string, got %T", key, v)
	}
	return s, nil
}

func (a stepArgs) integer(key string) (int64, error) {
	v, ok := a[key]
	if !ok {
		return 0, fmt.Errorf("missing arg %q", key)
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > 1<<63-1 {
			return 0, fmt.Errorf("arg %q: %d overflows int64", key, n)
		}
		return int64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("arg %q: want integer, got %v", key, n)
		}
		return int64(n), nil
	}
	return 0, fmt.Errorf("arg %q: want integer, got %T", key, v)
}

func (a stepArgs) optInt(key string, def int64) (int64, error) {
	if _, ok := a[key]; !ok {
		return def, nil
	}
	return a.integer(key)
}

func (a stepArgs) itemRef() (model.ItemKind, string, error) {
	k, err := a.str("kind")
	if err != nil {
		return "", "", err
	}
	kind, err := model.ParseItemKind(k)
	if err != nil {
		return "", "", err
	}
	item, err := a.str("item")
	if err != nil {
		return "", "", err
	}
	return kind, item, nil
}

func (a stepArgs) recipeKey() (string, string, error) {
	product, err := a.str("product")
	if err != nil {
		return "", "", err
	}
	material, err := a.str("material")
	if err != nil {
		return "", "", err
	}
	return product, material, nil
}

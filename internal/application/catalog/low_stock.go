package catalog

import (
	"context"
	"sort"

	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/inventory"
)

// LowStockItem producto agotado o por debajo del umbral, con la cantidad sugerida a hornear.
type LowStockItem struct {
	Product       *entity.Product
	SuggestedBake int
	Priority      int // 1 = más urgente
}

// LowStock genera la lista de reposición: primero agotados, luego por menor stock relativo al umbral.
func (c *Catalog) LowStock(ctx context.Context) ([]LowStockItem, error) {
	products, err := c.productRepo.ListByStatus(ctx, entity.ProductStatusOutOfStock, entity.ProductStatusLowStock)
	if err != nil {
		return nil, err
	}
	items := make([]LowStockItem, 0, len(products))
	for _, p := range products {
		items = append(items, LowStockItem{
			Product:       p,
			SuggestedBake: inventory.SuggestedBake(p.Stock, p.LowStockThreshold),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Product, items[j].Product
		if a.Stock == 0 || b.Stock == 0 {
			if a.Stock != b.Stock {
				return a.Stock == 0
			}
		}
		// Mayor déficit frente al umbral primero
		defA := a.LowStockThreshold - a.Stock
		defB := b.LowStockThreshold - b.Stock
		if defA != defB {
			return defA > defB
		}
		return a.Name < b.Name
	})
	for i := range items {
		items[i].Priority = i + 1
	}
	return items, nil
}

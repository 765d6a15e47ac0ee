package order

import (
	"context"

	"github.com/jhoicas/bakery-api/internal/application/catalog"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
)

// StockCatalog lo que el servicio de pedidos necesita del catálogo. Lo implementa *catalog.Catalog.
type StockCatalog interface {
	Get(ctx context.Context, productID string) (*entity.Product, error)
	Reserve(ctx context.Context, req catalog.StockRequest) (*catalog.ReservationToken, error)
	Release(ctx context.Context, req catalog.StockRequest) error
	Reclaim(ctx context.Context, req catalog.StockRequest) (*catalog.ReservationToken, error)
}

var _ StockCatalog = (*catalog.Catalog)(nil)

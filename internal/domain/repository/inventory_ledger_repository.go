package repository

import (
	"context"

	"github.com/jhoicas/bakery-api/internal/domain/entity"
)

// InventoryLedgerRepository puerto del libro de inventario. Solo inserción y consulta: no hay update ni delete.
type InventoryLedgerRepository interface {
	Append(ctx context.Context, entry *entity.InventoryLedgerEntry) error
	// ListByProduct devuelve los asientos del producto en orden ascendente (CreatedAt, Seq).
	ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryLedgerEntry, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.InventoryLedgerEntry, error)
}

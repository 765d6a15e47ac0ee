package catalog

import (
	"context"

	"github.com/jhoicas/bakery-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción que serializa las mutaciones de un producto,
// pasando repositorios atados a esa transacción. Si fn devuelve error no se confirma nada:
// ni el cambio de stock ni el asiento del libro.
// En PostgreSQL el bloqueo lo da SELECT FOR UPDATE; en memoria, un mutex por productID.
type TxRunner interface {
	Run(ctx context.Context, productID string, fn func(
		productRepo repository.ProductRepository,
		ledgerRepo repository.InventoryLedgerRepository,
	) error) error
}

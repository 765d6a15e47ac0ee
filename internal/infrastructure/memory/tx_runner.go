package memory

import (
	"context"

	"github.com/jhoicas/bakery-api/internal/application/catalog"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
)

var _ catalog.TxRunner = (*TxRunner)(nil)

// TxRunner transacción por producto sobre el Store: toma el mutex del producto, entrega a fn repos
// que preparan los cambios sin tocar el store y solo los aplica si fn no devuelve error.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// txState cambios preparados dentro de una transacción.
type txState struct {
	created []*entity.Product
	updated map[string]*entity.Product
	deleted map[string]bool
	entries []*entity.InventoryLedgerEntry
}

// Run ejecuta fn con el producto bloqueado. Un error de fn descarta todo lo preparado.
func (r *TxRunner) Run(ctx context.Context, productID string, fn func(
	productRepo repository.ProductRepository,
	ledgerRepo repository.InventoryLedgerRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := r.store.locks.Lock(productID)
	defer unlock()

	tx := &txState{
		updated: make(map[string]*entity.Product),
		deleted: make(map[string]bool),
	}
	if err := fn(&ProductRepository{store: r.store, tx: tx}, &InventoryLedgerRepository{store: r.store, tx: tx}); err != nil {
		return err
	}
	return r.store.commit(tx)
}

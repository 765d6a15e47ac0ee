package memory

import (
	"context"

	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
)

var _ repository.InventoryLedgerRepository = (*InventoryLedgerRepository)(nil)

// InventoryLedgerRepository libro de inventario en memoria (solo inserción).
type InventoryLedgerRepository struct {
	store *Store
	tx    *txState
}

// NewInventoryLedgerRepository repositorio sin transacción.
func NewInventoryLedgerRepository(store *Store) *InventoryLedgerRepository {
	return &InventoryLedgerRepository{store: store}
}

func (r *InventoryLedgerRepository) Append(ctx context.Context, entry *entity.InventoryLedgerEntry) error {
	if r.tx != nil {
		r.tx.entries = append(r.tx.entries, entry)
		return nil
	}
	return r.store.commit(&txState{entries: []*entity.InventoryLedgerEntry{entry}})
}

func (r *InventoryLedgerRepository) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryLedgerEntry, error) {
	return r.filter(func(e *entity.InventoryLedgerEntry) bool { return e.ProductID == productID }), nil
}

func (r *InventoryLedgerRepository) ListByOrder(ctx context.Context, orderID string) ([]*entity.InventoryLedgerEntry, error) {
	if orderID == "" {
		return []*entity.InventoryLedgerEntry{}, nil
	}
	return r.filter(func(e *entity.InventoryLedgerEntry) bool { return e.OrderID == orderID }), nil
}

func (r *InventoryLedgerRepository) filter(keep func(e *entity.InventoryLedgerEntry) bool) []*entity.InventoryLedgerEntry {
	r.store.mu.RLock()
	out := make([]*entity.InventoryLedgerEntry, 0)
	for _, e := range r.store.ledger {
		if keep(e) {
			c := *e
			out = append(out, &c)
		}
	}
	r.store.mu.RUnlock()
	// El slice ya está en orden de Seq (orden de commit bajo el bloqueo del producto).
	return out
}

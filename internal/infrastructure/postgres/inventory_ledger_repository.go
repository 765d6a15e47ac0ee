package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
)

var _ repository.InventoryLedgerRepository = (*InventoryLedgerRepo)(nil)

// InventoryLedgerRepo libro de inventario sobre PostgreSQL. Solo INSERT y SELECT.
type InventoryLedgerRepo struct {
	q Querier
}

// NewInventoryLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryLedgerRepository(q Querier) *InventoryLedgerRepo {
	return &InventoryLedgerRepo{q: q}
}

const ledgerColumns = `id, seq, product_id, previous_stock, new_stock, change, reason, actor_id, order_id, notes, created_at`

// Append inserta el asiento; seq lo asigna la base (bigserial) y se devuelve en la entrada.
func (r *InventoryLedgerRepo) Append(ctx context.Context, e *entity.InventoryLedgerEntry) error {
	query := `
		INSERT INTO inventory_ledger (id, product_id, previous_stock, new_stock, change, reason, actor_id, order_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		e.ID, e.ProductID, e.PreviousStock, e.NewStock, e.Change, string(e.Reason),
		nullString(e.ActorID), nullString(e.OrderID), e.Notes, e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// seq es el orden de commit; created_at no es monótono entre instancias.
const (
	listLedgerByProductSQL = `SELECT ` + ledgerColumns + ` FROM inventory_ledger WHERE product_id = $1 ORDER BY seq`
	listLedgerByOrderSQL   = `SELECT ` + ledgerColumns + ` FROM inventory_ledger WHERE order_id = $1 ORDER BY seq`
)

// ListByProduct asientos del producto en orden de commit.
func (r *InventoryLedgerRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryLedgerEntry, error) {
	if !isUUID(productID) {
		return []*entity.InventoryLedgerEntry{}, nil
	}
	rows, err := r.q.Query(ctx, listLedgerByProductSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("list ledger by product: %w", err)
	}
	return collectEntries(rows)
}

// ListByOrder asientos generados por un pedido.
func (r *InventoryLedgerRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.InventoryLedgerEntry, error) {
	if !isUUID(orderID) {
		return []*entity.InventoryLedgerEntry{}, nil
	}
	rows, err := r.q.Query(ctx, listLedgerByOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("list ledger by order: %w", err)
	}
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]*entity.InventoryLedgerEntry, error) {
	defer rows.Close()
	list := make([]*entity.InventoryLedgerEntry, 0)
	for rows.Next() {
		var e entity.InventoryLedgerEntry
		var reason string
		var actorID, orderID *string
		if err := rows.Scan(&e.ID, &e.Seq, &e.ProductID, &e.PreviousStock, &e.NewStock, &e.Change,
			&reason, &actorID, &orderID, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Reason = entity.LedgerReason(reason)
		e.ActorID = derefString(actorID)
		e.OrderID = derefString(orderID)
		list = append(list, &e)
	}
	return list, rows.Err()
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/bakery-api/internal/application/catalog"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
)

var _ catalog.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// El bloqueo del producto lo toma fn con GetForUpdate; productID solo identifica la operación en los errores.
func (r *TxRunner) Run(ctx context.Context, productID string, fn func(
	productRepo repository.ProductRepository,
	ledgerRepo repository.InventoryLedgerRepository,
) error) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(NewProductRepository(tx), NewInventoryLedgerRepository(tx))
	}, productID)
}

func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error, ref string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction %s: %w", ref, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction %s: %w", ref, err)
	}
	return nil
}

var _ repository.OrderRepository = (*OrderStore)(nil)

// OrderStore OrderRepository sobre el pool que escribe cada pedido (cabecera, líneas, historial)
// y cada cambio de estado en su propia transacción.
type OrderStore struct {
	*OrderRepo
	pool *pgxpool.Pool
}

// NewOrderStore construye el repositorio transaccional de pedidos.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{OrderRepo: NewOrderRepository(pool), pool: pool}
}

// Create inserta el pedido completo o nada.
func (s *OrderStore) Create(ctx context.Context, o *entity.Order) error {
	return withTx(ctx, s.pool, func(tx pgx.Tx) error {
		return NewOrderRepository(tx).Create(ctx, o)
	}, o.ID)
}

// UpdateStatus compare-and-swap del estado más su registro de historial en la misma transacción.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, from entity.OrderStatus, change entity.StatusChange) (bool, error) {
	var swapped bool
	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		ok, err := NewOrderRepository(tx).UpdateStatus(ctx, id, from, change)
		swapped = ok
		return err
	}, id)
	if err != nil {
		return false, err
	}
	return swapped, nil
}

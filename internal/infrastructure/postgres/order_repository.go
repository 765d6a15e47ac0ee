package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bakery-api/internal/domain"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo pedidos sobre PostgreSQL: cabecera en orders, líneas en order_lines, historial en order_status_history.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// metadataJSON forma persistida de entity.OrderMetadata (columna JSONB).
type metadataJSON struct {
	Notes         string     `json:"notes,omitempty"`
	DeliveryDate  *time.Time `json:"delivery_date,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	Source        string     `json:"source,omitempty"`
}

// NextNumber siguiente valor de la secuencia order_number_seq.
func (r *OrderRepo) NextNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return n, nil
}

// Create inserta cabecera, líneas e historial inicial. Sobre un pool cada sentencia es independiente:
// para escribir todo o nada usar OrderStore.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	meta, err := json.Marshal(metadataJSON(o.Metadata))
	if err != nil {
		return fmt.Errorf("marshal order metadata: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO orders (id, order_number, customer_id, total_amount, status, metadata, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.OrderNumber, o.CustomerID, o.TotalAmount, string(o.Status), meta,
		nullString(o.CreatedBy), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	for i, l := range o.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO order_lines (order_id, line_no, product_id, product_name, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			o.ID, i+1, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice, l.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	for _, h := range o.History {
		if err := r.insertHistory(ctx, o.ID, h); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepo) insertHistory(ctx context.Context, orderID string, h entity.StatusChange) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO order_status_history (order_id, from_status, to_status, actor_id, changed_at)
		VALUES ($1, $2, $3, $4, $5)`,
		orderID, nullString(string(h.From)), string(h.To), nullString(h.ActorID), h.At,
	)
	if err != nil {
		return fmt.Errorf("insert order history: %w", err)
	}
	return nil
}

const orderColumns = `id, order_number, customer_id, total_amount, status, metadata, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var status string
	var meta []byte
	var createdBy *string
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.TotalAmount, &status, &meta,
		&createdBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	o.CreatedBy = derefString(createdBy)
	if len(meta) > 0 {
		var m metadataJSON
		if err := json.Unmarshal(meta, &m); err != nil {
			return nil, fmt.Errorf("unmarshal order metadata: %w", err)
		}
		o.Metadata = entity.OrderMetadata(m)
	}
	return &o, nil
}

// GetByID obtiene el pedido completo (líneas e historial).
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	if !isUUID(id) {
		return nil, nil
	}
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadDetails(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) loadDetails(ctx context.Context, o *entity.Order) error {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, product_name, quantity, unit_price, subtotal
		FROM order_lines WHERE order_id = $1 ORDER BY line_no`, o.ID)
	if err != nil {
		return fmt.Errorf("list order lines: %w", err)
	}
	o.Lines = make([]entity.OrderLine, 0)
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			rows.Close()
			return fmt.Errorf("scan order line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list order lines: %w", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT from_status, to_status, actor_id, changed_at
		FROM order_status_history WHERE order_id = $1 ORDER BY changed_at, id`, o.ID)
	if err != nil {
		return fmt.Errorf("list order history: %w", err)
	}
	defer rows.Close()
	o.History = make([]entity.StatusChange, 0)
	for rows.Next() {
		var h entity.StatusChange
		var from, actor *string
		var to string
		if err := rows.Scan(&from, &to, &actor, &h.At); err != nil {
			return fmt.Errorf("scan order history: %w", err)
		}
		h.From = entity.OrderStatus(derefString(from))
		h.To = entity.OrderStatus(to)
		h.ActorID = derefString(actor)
		o.History = append(o.History, h)
	}
	return rows.Err()
}

// List lista pedidos (más recientes primero) con filtros opcionales de estado y cliente.
func (r *OrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, string(filter.Status))
		pos++
	}
	if filter.CustomerID != "" {
		query += fmt.Sprintf(" AND customer_id = $%d", pos)
		args = append(args, filter.CustomerID)
		pos++
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, order_number DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	list := make([]*entity.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for _, o := range list {
		if err := r.loadDetails(ctx, o); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// UpdateStatus compare-and-swap: solo cambia si el estado sigue siendo from.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from entity.OrderStatus, change entity.StatusChange) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, string(from), string(change.To), change.At,
	)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}
	if err := r.insertHistory(ctx, id, change); err != nil {
		return true, err
	}
	return true, nil
}

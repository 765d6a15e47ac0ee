package repository

import (
	"context"

	"github.com/jhoicas/bakery-api/internal/domain/entity"
)

// OrderFilter filtros de listado de pedidos.
type OrderFilter struct {
	Status     entity.OrderStatus
	CustomerID string
	Limit      int
	Offset     int
}

// OrderRepository define el puerto de persistencia para Order.
type OrderRepository interface {
	// NextNumber devuelve el siguiente valor de la secuencia de números de pedido (único aunque haya concurrencia).
	NextNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
	// UpdateStatus aplica change solo si el estado actual sigue siendo from (compare-and-swap).
	// Devuelve false si otro proceso cambió el estado antes.
	UpdateStatus(ctx context.Context, id string, from entity.OrderStatus, change entity.StatusChange) (bool, error)
}

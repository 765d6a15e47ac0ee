package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/bakery-api/internal/domain"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepository)(nil)

// OrderRepository pedidos en memoria.
type OrderRepository struct {
	store *Store
}

// NewOrderRepository construye el repositorio.
func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) NextNumber(ctx context.Context) (int64, error) {
	return r.store.orderSeq.Add(1), nil
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	if o == nil || o.ID == "" {
		return domain.ErrInvalidInput
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.orders[o.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.store.orders {
		if existing.OrderNumber == o.OrderNumber {
			return domain.ErrDuplicate
		}
	}
	r.store.orders[o.ID] = o.Clone()
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.orders[id].Clone(), nil
}

// List devuelve los pedidos más recientes primero.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	r.store.mu.RLock()
	out := make([]*entity.Order, 0)
	for _, o := range r.store.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.CustomerID != "" && o.CustomerID != filter.CustomerID {
			continue
		}
		out = append(out, o.Clone())
	}
	r.store.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].OrderNumber > out[j].OrderNumber
	})
	if filter.Offset >= len(out) {
		return []*entity.Order{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from entity.OrderStatus, change entity.StatusChange) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id]
	if !ok {
		return false, nil
	}
	if o.Status != from {
		return false, nil
	}
	o.Status = change.To
	o.History = append(o.History, change)
	o.UpdatedAt = change.At
	return true, nil
}

package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/bakery-api/internal/domain"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository repositorio de productos en memoria. Con tx != nil las escrituras quedan
// preparadas hasta el commit y las lecturas ven primero lo preparado.
type ProductRepository struct {
	store *Store
	tx    *txState
}

// NewProductRepository repositorio sin transacción: escribe directamente en el store.
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	if p == nil || p.ID == "" {
		return domain.ErrInvalidInput
	}
	if r.tx != nil {
		for _, c := range r.tx.created {
			if c.ID == p.ID || c.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		r.tx.created = append(r.tx.created, cloneProduct(p))
		return nil
	}
	return r.store.commit(&txState{created: []*entity.Product{p}})
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if r.tx != nil {
		if r.tx.deleted[id] {
			return nil, nil
		}
		if p, ok := r.tx.updated[id]; ok {
			return cloneProduct(p), nil
		}
		for _, p := range r.tx.created {
			if p.ID == id {
				return cloneProduct(p), nil
			}
		}
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return cloneProduct(r.store.products[id]), nil
}

func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	r.store.mu.RLock()
	id, ok := r.store.skus[sku]
	r.store.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// GetForUpdate el bloqueo del producto lo tiene el TxRunner mientras dura la transacción.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepository) UpdateStock(ctx context.Context, id string, stock int, status entity.ProductStatus) error {
	return r.update(ctx, id, func(p *entity.Product) {
		p.Stock = stock
		p.Status = status
	})
}

func (r *ProductRepository) UpdateStatus(ctx context.Context, id string, status entity.ProductStatus) error {
	return r.update(ctx, id, func(p *entity.Product) {
		p.Status = status
	})
}

func (r *ProductRepository) update(ctx context.Context, id string, apply func(p *entity.Product)) error {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	apply(p)
	p.UpdatedAt = time.Now().UTC()
	if r.tx != nil {
		r.tx.updated[id] = p
		return nil
	}
	return r.store.commit(&txState{updated: map[string]*entity.Product{id: p}})
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if r.tx != nil {
		delete(r.tx.updated, id)
		r.tx.deleted[id] = true
		return nil
	}
	return r.store.commit(&txState{deleted: map[string]bool{id: true}})
}

func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	all := r.snapshot(nil)
	if offset >= len(all) {
		return []*entity.Product{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *ProductRepository) ListByStatus(ctx context.Context, statuses ...entity.ProductStatus) ([]*entity.Product, error) {
	want := make(map[entity.ProductStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	return r.snapshot(func(p *entity.Product) bool { return want[p.Status] }), nil
}

// snapshot copia los productos que cumplen keep, ordenados por nombre.
func (r *ProductRepository) snapshot(keep func(p *entity.Product) bool) []*entity.Product {
	r.store.mu.RLock()
	out := make([]*entity.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		if keep == nil || keep(p) {
			out = append(out, cloneProduct(p))
		}
	}
	r.store.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

package memory

import (
	"sync"
	"sync/atomic"

	"github.com/jhoicas/bakery-api/internal/domain"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
)

// Store almacenamiento en memoria para desarrollo y tests (STORE_DRIVER=memory).
// Los datos viven en mapas protegidos por mu; las escrituras del catálogo se preparan en una
// transacción por producto (ver TxRunner) y se aplican de una vez en commit.
type Store struct {
	mu        sync.RWMutex
	products  map[string]*entity.Product
	skus      map[string]string // sku -> id
	ledger    []*entity.InventoryLedgerEntry
	ledgerSeq int64
	orders    map[string]*entity.Order

	orderSeq atomic.Int64
	locks    *keyedMutex
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[string]*entity.Product),
		skus:     make(map[string]string),
		orders:   make(map[string]*entity.Order),
		locks:    newKeyedMutex(),
	}
}

// commit aplica de forma atómica los cambios preparados por una transacción.
func (s *Store) commit(tx *txState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range tx.created {
		if _, ok := s.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := s.skus[p.SKU]; ok {
			return domain.ErrDuplicate
		}
	}
	for _, p := range tx.created {
		s.products[p.ID] = cloneProduct(p)
		s.skus[p.SKU] = p.ID
	}
	for id, p := range tx.updated {
		if _, ok := s.products[id]; ok {
			s.products[id] = cloneProduct(p)
		}
	}
	for id := range tx.deleted {
		if p, ok := s.products[id]; ok {
			delete(s.skus, p.SKU)
			delete(s.products, id)
		}
	}
	for _, e := range tx.entries {
		s.ledgerSeq++
		e.Seq = s.ledgerSeq
		c := *e
		s.ledger = append(s.ledger, &c)
	}
	return nil
}

func cloneProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// keyedMutex un mutex por clave creado bajo demanda y liberado cuando nadie lo usa.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock bloquea la clave y devuelve la función que la libera.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

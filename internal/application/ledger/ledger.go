package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bakery-api/internal/domain"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/inventory"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
)

// Append valida y escribe un asiento usando el repositorio recibido (el de la transacción del caller).
// Un fallo del almacenamiento se devuelve como LedgerWriteError para que el caller aborte su transacción.
func Append(ctx context.Context, repo repository.InventoryLedgerRepository, entry *entity.InventoryLedgerEntry) error {
	if entry.ProductID == "" || !entry.Reason.Valid() {
		return domain.ErrInvalidInput
	}
	if entry.NewStock < 0 || entry.NewStock-entry.PreviousStock != entry.Change {
		return fmt.Errorf("asiento %s: change %d no cuadra con %d -> %d: %w",
			entry.Reason, entry.Change, entry.PreviousStock, entry.NewStock, domain.ErrInvalidInput)
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := repo.Append(ctx, entry); err != nil {
		return &domain.LedgerWriteError{ProductID: entry.ProductID, Err: err}
	}
	return nil
}

// Reconciliation resultado de reproducir el libro de un producto.
type Reconciliation struct {
	ProductID  string
	Entries    int
	Replayed   int
	Current    int
	Consistent bool
}

// Ledger consultas sobre el libro de inventario (historial y conciliación).
// La escritura la hace el catálogo dentro de sus transacciones vía Append.
type Ledger struct {
	repo        repository.InventoryLedgerRepository
	productRepo repository.ProductRepository
}

// NewLedger construye el servicio.
func NewLedger(repo repository.InventoryLedgerRepository, productRepo repository.ProductRepository) *Ledger {
	return &Ledger{repo: repo, productRepo: productRepo}
}

// History devuelve los asientos del producto en orden cronológico.
func (l *Ledger) History(ctx context.Context, productID string) ([]*entity.InventoryLedgerEntry, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return l.repo.ListByProduct(ctx, productID)
}

// ByOrder devuelve los asientos generados por un pedido (reservas y devoluciones).
func (l *Ledger) ByOrder(ctx context.Context, orderID string) ([]*entity.InventoryLedgerEntry, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	return l.repo.ListByOrder(ctx, orderID)
}

// Reconcile reproduce el historial y lo compara con el stock actual del producto.
// Devuelve LedgerMismatchError si la cadena está rota; Consistent=false si no reproduce el stock.
func (l *Ledger) Reconcile(ctx context.Context, productID string) (*Reconciliation, error) {
	product, err := l.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &domain.ProductNotFoundError{ProductID: productID}
	}
	entries, err := l.History(ctx, productID)
	if err != nil {
		return nil, err
	}
	replayed, err := inventory.Replay(entries)
	if err != nil {
		return nil, err
	}
	return &Reconciliation{
		ProductID:  productID,
		Entries:    len(entries),
		Replayed:   replayed,
		Current:    product.Stock,
		Consistent: replayed == product.Stock,
	}, nil
}

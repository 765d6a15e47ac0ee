package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bakery-api/internal/application/ledger"
	"github.com/jhoicas/bakery-api/internal/domain"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/inventory"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
	"github.com/jhoicas/bakery-api/pkg/metrics"
)

// Catalog es el único punto que muta el stock de los productos y el único escritor del libro de inventario.
// Cada operación corre en una transacción por producto: chequeo, escritura de stock, recálculo de estado
// y asiento del libro son atómicos entre sí. Productos distintos nunca se bloquean entre ellos.
type Catalog struct {
	tx          TxRunner
	productRepo repository.ProductRepository
	log         zerolog.Logger
	metrics     *metrics.Metrics
}

// NewCatalog construye el catálogo. m puede ser nil.
func NewCatalog(tx TxRunner, productRepo repository.ProductRepository, log zerolog.Logger, m *metrics.Metrics) *Catalog {
	return &Catalog{
		tx:          tx,
		productRepo: productRepo,
		log:         log.With().Str("component", "catalog").Logger(),
		metrics:     m,
	}
}

// StockRequest datos de una reserva o devolución de stock.
type StockRequest struct {
	ProductID string
	Quantity  int
	ActorID   string
	Reason    entity.LedgerReason // por defecto order (Reserve) u order-cancel (Release)
	OrderID   string
	Notes     string
}

// ReservationToken comprobante de una reserva confirmada.
type ReservationToken struct {
	ProductID     string
	ProductName   string
	Quantity      int
	UnitPrice     decimal.Decimal
	PreviousStock int
	NewStock      int
	LedgerEntryID string
}

// Reserve descuenta stock de forma atómica. Falla con ProductNotFoundError, ProductUnavailableError
// (producto inactivo) o InsufficientStockError con lo disponible en el instante del chequeo.
func (c *Catalog) Reserve(ctx context.Context, req StockRequest) (*ReservationToken, error) {
	if req.Reason == "" {
		req.Reason = entity.LedgerReasonOrder
	}
	token, err := c.decrement(ctx, req, false)
	c.metrics.Reservation(reservationResult(err))
	return token, err
}

// Reclaim vuelve a reservar unidades que un pedido ya tenía y acaba de devolver.
// A diferencia de Reserve admite productos inactivos; sigue sin dejar el stock por debajo de cero.
func (c *Catalog) Reclaim(ctx context.Context, req StockRequest) (*ReservationToken, error) {
	if req.Reason == "" {
		req.Reason = entity.LedgerReasonOrder
	}
	return c.decrement(ctx, req, true)
}

// Release devuelve stock reservado antes. Siempre procede para un producto existente
// (también si está inactivo): solo restituye capacidad.
func (c *Catalog) Release(ctx context.Context, req StockRequest) error {
	if req.ProductID == "" || req.Quantity < 1 {
		return domain.ErrInvalidInput
	}
	if req.Reason == "" {
		req.Reason = entity.LedgerReasonOrderCancel
	}
	if !req.Reason.Valid() || req.Reason == entity.LedgerReasonOrder {
		return domain.ErrInvalidInput
	}
	err := c.tx.Run(ctx, req.ProductID, func(productRepo repository.ProductRepository, ledgerRepo repository.InventoryLedgerRepository) error {
		p, err := productRepo.GetForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return &domain.ProductNotFoundError{ProductID: req.ProductID}
		}
		newStock := p.Stock + req.Quantity
		status := inventory.DeriveStatus(newStock, p.LowStockThreshold, p.Status)
		if err := productRepo.UpdateStock(ctx, p.ID, newStock, status); err != nil {
			return err
		}
		return ledger.Append(ctx, ledgerRepo, &entity.InventoryLedgerEntry{
			ProductID:     p.ID,
			PreviousStock: p.Stock,
			NewStock:      newStock,
			Change:        req.Quantity,
			Reason:        req.Reason,
			ActorID:       req.ActorID,
			OrderID:       req.OrderID,
			Notes:         req.Notes,
		})
	})
	if err == nil {
		c.metrics.Released(string(req.Reason), req.Quantity)
	}
	return err
}

func (c *Catalog) decrement(ctx context.Context, req StockRequest, allowInactive bool) (*ReservationToken, error) {
	if req.ProductID == "" || req.Quantity < 1 || !req.Reason.Valid() {
		return nil, domain.ErrInvalidInput
	}
	var token *ReservationToken
	err := c.tx.Run(ctx, req.ProductID, func(productRepo repository.ProductRepository, ledgerRepo repository.InventoryLedgerRepository) error {
		p, err := productRepo.GetForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return &domain.ProductNotFoundError{ProductID: req.ProductID}
		}
		if p.IsInactive() && !allowInactive {
			return &domain.ProductUnavailableError{ProductID: p.ID, ProductName: p.Name}
		}
		if p.Stock < req.Quantity {
			return &domain.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   req.Quantity,
				Available:   p.Stock,
			}
		}
		newStock := p.Stock - req.Quantity
		status := inventory.DeriveStatus(newStock, p.LowStockThreshold, p.Status)
		if err := productRepo.UpdateStock(ctx, p.ID, newStock, status); err != nil {
			return err
		}
		entry := &entity.InventoryLedgerEntry{
			ProductID:     p.ID,
			PreviousStock: p.Stock,
			NewStock:      newStock,
			Change:        -req.Quantity,
			Reason:        req.Reason,
			ActorID:       req.ActorID,
			OrderID:       req.OrderID,
			Notes:         req.Notes,
		}
		if err := ledger.Append(ctx, ledgerRepo, entry); err != nil {
			return err
		}
		token = &ReservationToken{
			ProductID:     p.ID,
			ProductName:   p.Name,
			Quantity:      req.Quantity,
			UnitPrice:     p.Price,
			PreviousStock: p.Stock,
			NewStock:      newStock,
			LedgerEntryID: entry.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

// AdjustInput ajuste manual de inventario desde el panel de administración.
type AdjustInput struct {
	ProductID string
	Delta     int // positivo suma, negativo resta
	ActorID   string
	Reason    entity.LedgerReason // manual, adjustment o bulk
	Notes     string
}

// Adjust aplica un ajuste manual pasando por el mismo camino que las reservas, para que quede en el libro.
// Un ajuste negativo nunca deja el stock por debajo de cero.
func (c *Catalog) Adjust(ctx context.Context, in AdjustInput) (*entity.Product, error) {
	switch in.Reason {
	case entity.LedgerReasonManual, entity.LedgerReasonAdjustment, entity.LedgerReasonBulk:
	case "":
		in.Reason = entity.LedgerReasonManual
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.Delta == 0 {
		return nil, domain.ErrInvalidInput
	}
	req := StockRequest{ProductID: in.ProductID, ActorID: in.ActorID, Reason: in.Reason, Notes: in.Notes}
	if in.Delta > 0 {
		req.Quantity = in.Delta
		if err := c.Release(ctx, req); err != nil {
			return nil, err
		}
	} else {
		req.Quantity = -in.Delta
		if _, err := c.decrement(ctx, req, true); err != nil {
			return nil, err
		}
	}
	c.log.Info().
		Str("product_id", in.ProductID).
		Int("delta", in.Delta).
		Str("reason", string(in.Reason)).
		Str("actor_id", in.ActorID).
		Msg("ajuste manual de inventario")
	return c.Get(ctx, in.ProductID)
}

// RegisterInput alta de un producto en el catálogo.
type RegisterInput struct {
	SKU               string
	Name              string
	Category          string
	Price             decimal.Decimal
	InitialStock      int
	LowStockThreshold int
	ActorID           string
}

// Register da de alta el producto con su estado derivado y un asiento initial (0 -> stock inicial),
// de modo que el libro reproduce el stock desde el primer asiento.
func (c *Catalog) Register(ctx context.Context, in RegisterInput) (*entity.Product, error) {
	if in.SKU == "" || in.Name == "" || in.InitialStock < 0 || in.LowStockThreshold < 0 || in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	existing, err := c.productRepo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:                uuid.New().String(),
		SKU:               in.SKU,
		Name:              in.Name,
		Category:          in.Category,
		Price:             in.Price,
		Stock:             in.InitialStock,
		LowStockThreshold: in.LowStockThreshold,
		Status:            inventory.DeriveStatus(in.InitialStock, in.LowStockThreshold, ""),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err = c.tx.Run(ctx, product.ID, func(productRepo repository.ProductRepository, ledgerRepo repository.InventoryLedgerRepository) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		return ledger.Append(ctx, ledgerRepo, &entity.InventoryLedgerEntry{
			ProductID:     product.ID,
			PreviousStock: 0,
			NewStock:      product.Stock,
			Change:        product.Stock,
			Reason:        entity.LedgerReasonInitial,
			ActorID:       in.ActorID,
			Notes:         "alta de producto",
		})
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// SetAvailability retira (active=false) o devuelve a la venta un producto. Retirado queda inactive
// sin importar el stock; al reactivarlo el estado se recalcula desde el stock.
func (c *Catalog) SetAvailability(ctx context.Context, productID string, active bool, actorID string) (*entity.Product, error) {
	var updated *entity.Product
	err := c.tx.Run(ctx, productID, func(productRepo repository.ProductRepository, _ repository.InventoryLedgerRepository) error {
		p, err := productRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return &domain.ProductNotFoundError{ProductID: productID}
		}
		status := entity.ProductStatusInactive
		if active {
			status = inventory.DeriveStatus(p.Stock, p.LowStockThreshold, "")
		}
		if err := productRepo.UpdateStatus(ctx, p.ID, status); err != nil {
			return err
		}
		p.Status = status
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Info().Str("product_id", productID).Bool("active", active).Str("actor_id", actorID).Msg("disponibilidad de producto actualizada")
	return updated, nil
}

// Remove da de baja el producto: deja un asiento deletion (stock -> 0) y borra la fila en la misma transacción.
// Los pedidos abiertos que lo referencian se pueden seguir cancelando; esa línea se omite.
func (c *Catalog) Remove(ctx context.Context, productID, actorID string) error {
	if productID == "" {
		return domain.ErrInvalidInput
	}
	err := c.tx.Run(ctx, productID, func(productRepo repository.ProductRepository, ledgerRepo repository.InventoryLedgerRepository) error {
		p, err := productRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return &domain.ProductNotFoundError{ProductID: productID}
		}
		if err := ledger.Append(ctx, ledgerRepo, &entity.InventoryLedgerEntry{
			ProductID:     p.ID,
			PreviousStock: p.Stock,
			NewStock:      0,
			Change:        -p.Stock,
			Reason:        entity.LedgerReasonDeletion,
			ActorID:       actorID,
			Notes:         "baja de producto " + p.SKU,
		}); err != nil {
			return err
		}
		return productRepo.Delete(ctx, p.ID)
	})
	if err != nil {
		return err
	}
	c.log.Info().Str("product_id", productID).Str("actor_id", actorID).Msg("producto dado de baja")
	return nil
}

// Get obtiene un producto; ProductNotFoundError si no existe.
func (c *Catalog) Get(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := c.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &domain.ProductNotFoundError{ProductID: productID}
	}
	return p, nil
}

// List lista productos con paginación.
func (c *Catalog) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return c.productRepo.List(ctx, limit, offset)
}

func reservationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient"
	case errors.Is(err, domain.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

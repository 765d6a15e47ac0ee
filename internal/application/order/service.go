package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/bakery-api/internal/application/catalog"
	"github.com/jhoicas/bakery-api/internal/application/notification"
	"github.com/jhoicas/bakery-api/internal/domain"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/orderflow"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
	"github.com/jhoicas/bakery-api/pkg/metrics"
)

// FulfillmentService orquesta la creación de pedidos y su ciclo de vida.
// La creación es todo o nada: cada línea se reserva de forma atómica en el catálogo y, si una falla,
// las ya reservadas se devuelven (acción compensatoria) antes de responder.
type FulfillmentService struct {
	catalog   StockCatalog
	orderRepo repository.OrderRepository
	publisher notification.Publisher
	log       zerolog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewFulfillmentService construye el servicio. m puede ser nil.
func NewFulfillmentService(
	stock StockCatalog,
	orderRepo repository.OrderRepository,
	publisher notification.Publisher,
	log zerolog.Logger,
	m *metrics.Metrics,
) *FulfillmentService {
	return &FulfillmentService{
		catalog:   stock,
		orderRepo: orderRepo,
		publisher: publisher,
		log:       log.With().Str("component", "fulfillment").Logger(),
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// LineInput línea solicitada por el cliente.
type LineInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput datos para crear un pedido.
type CreateOrderInput struct {
	CustomerID string
	ActorID    string
	Lines      []LineInput
	Metadata   entity.OrderMetadata
}

type reservedLine struct {
	index int
	token *catalog.ReservationToken
}

// CreateOrder valida las líneas, reserva stock para todas (todo o nada), persiste el pedido en Pending
// y publica order.created. Los errores por línea llegan envueltos en LineError.
func (s *FulfillmentService) CreateOrder(ctx context.Context, in CreateOrderInput) (*entity.Order, error) {
	if len(in.Lines) == 0 {
		s.metrics.OrderFailed("empty")
		return nil, domain.ErrEmptyOrder
	}
	if in.CustomerID == "" {
		s.metrics.OrderFailed("invalid")
		return nil, domain.ErrInvalidInput
	}
	for i, l := range in.Lines {
		if l.ProductID == "" || l.Quantity < 1 {
			s.metrics.OrderFailed("invalid")
			return nil, &domain.LineError{Index: i, ProductID: l.ProductID, Err: domain.ErrInvalidInput}
		}
	}

	// Productos inexistentes o retirados cancelan el pedido antes de tocar el stock
	for i, l := range in.Lines {
		p, err := s.catalog.Get(ctx, l.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.metrics.OrderFailed("unavailable")
				return nil, &domain.LineError{Index: i, ProductID: l.ProductID, Err: &domain.ProductUnavailableError{ProductID: l.ProductID}}
			}
			return nil, err
		}
		if p.IsInactive() {
			s.metrics.OrderFailed("unavailable")
			return nil, &domain.LineError{Index: i, ProductID: l.ProductID, Err: &domain.ProductUnavailableError{ProductID: p.ID, ProductName: p.Name}}
		}
	}

	orderID := uuid.New().String()
	reserved := make([]reservedLine, 0, len(in.Lines))
	for i, l := range in.Lines {
		token, err := s.catalog.Reserve(ctx, catalog.StockRequest{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			ActorID:   in.ActorID,
			Reason:    entity.LedgerReasonOrder,
			OrderID:   orderID,
		})
		if err != nil {
			s.rollback(ctx, orderID, in.ActorID, reserved)
			s.metrics.OrderFailed(failureReason(err))
			return nil, &domain.LineError{Index: i, ProductID: l.ProductID, Err: err}
		}
		reserved = append(reserved, reservedLine{index: i, token: token})
	}

	seq, err := s.orderRepo.NextNumber(ctx)
	if err != nil {
		s.rollback(ctx, orderID, in.ActorID, reserved)
		s.metrics.OrderFailed("error")
		return nil, fmt.Errorf("número de pedido: %w", err)
	}

	now := s.now()
	o := &entity.Order{
		ID:          orderID,
		OrderNumber: FormatOrderNumber(seq),
		CustomerID:  in.CustomerID,
		Lines:       make([]entity.OrderLine, 0, len(reserved)),
		Status:      entity.OrderStatusPending,
		Metadata:    in.Metadata,
		History:     []entity.StatusChange{{To: entity.OrderStatusPending, ActorID: in.ActorID, At: now}},
		CreatedBy:   in.ActorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, r := range reserved {
		o.Lines = append(o.Lines, entity.OrderLine{
			ProductID:   r.token.ProductID,
			ProductName: r.token.ProductName,
			Quantity:    r.token.Quantity,
			UnitPrice:   r.token.UnitPrice,
		})
	}
	o.ComputeTotal()

	if err := s.orderRepo.Create(ctx, o); err != nil {
		s.rollback(ctx, orderID, in.ActorID, reserved)
		s.metrics.OrderFailed("error")
		return nil, fmt.Errorf("guardar pedido: %w", err)
	}

	s.metrics.OrderCreated()
	s.log.Info().
		Str("order_id", o.ID).
		Str("order_number", o.OrderNumber).
		Str("customer_id", o.CustomerID).
		Int("lines", len(o.Lines)).
		Str("total", o.TotalAmount.StringFixed(2)).
		Msg("pedido creado")
	s.publisher.Publish(notification.NewEvent(notification.EventOrderCreated, o, "", in.ActorID))
	return o, nil
}

// rollback devuelve en orden inverso las reservas ya confirmadas de un pedido que no llegó a crearse.
// Usa un contexto sin cancelación: la compensación debe terminar aunque el request se haya cortado.
func (s *FulfillmentService) rollback(ctx context.Context, orderID, actorID string, reserved []reservedLine) {
	ctx = context.WithoutCancel(ctx)
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		err := s.catalog.Release(ctx, catalog.StockRequest{
			ProductID: r.token.ProductID,
			Quantity:  r.token.Quantity,
			ActorID:   actorID,
			Reason:    entity.LedgerReasonOrderCancel,
			OrderID:   orderID,
			Notes:     "reversión de pedido no confirmado",
		})
		if err != nil {
			s.metrics.ReconcileWarning()
			s.log.Error().Err(err).
				Str("order_id", orderID).
				Str("product_id", r.token.ProductID).
				Int("quantity", r.token.Quantity).
				Msg("no se pudo revertir la reserva; requiere conciliación")
		}
	}
}

// CancelOrder cancela un pedido no final y devuelve al stock cada línea (motivo order-cancel).
func (s *FulfillmentService) CancelOrder(ctx context.Context, orderID, actorID string) (*entity.Order, error) {
	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.Transition(ctx, o.ID, entity.OrderStatusCancelled, actorID)
}

// maxCancelAttempts veces que se reintenta reclamar la cancelación si el pedido avanza entre la lectura y el swap.
const maxCancelAttempts = 3

// cancel reclama la cancelación con compare-and-swap sobre el estado (dos cancelaciones concurrentes
// no pueden devolver el stock dos veces) y luego devuelve cada línea.
// Una línea cuyo producto ya no existe se omite con un aviso de conciliación: un pedido siempre se puede cancelar.
// Si el almacenamiento falla a mitad, se vuelve a reservar lo devuelto y se restaura el estado anterior;
// si eso tampoco es posible el pedido queda cancelado y las líneas pendientes se reportan para conciliación.
func (s *FulfillmentService) cancel(ctx context.Context, o *entity.Order, actorID string) (*entity.Order, error) {
	change, err := s.claimCancel(ctx, o, actorID)
	if err != nil {
		return nil, err
	}

	released := make([]entity.OrderLine, 0, len(o.Lines))
	for i, line := range o.Lines {
		err := s.catalog.Release(ctx, catalog.StockRequest{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			ActorID:   actorID,
			Reason:    entity.LedgerReasonOrderCancel,
			OrderID:   o.ID,
			Notes:     "cancelación de pedido " + o.OrderNumber,
		})
		switch {
		case err == nil:
			released = append(released, line)
		case errors.Is(err, domain.ErrNotFound):
			s.metrics.ReconcileWarning()
			s.log.Warn().
				Str("order_id", o.ID).
				Str("product_id", line.ProductID).
				Int("quantity", line.Quantity).
				Msg("producto inexistente al cancelar; se omite la devolución de stock")
		default:
			if s.revertCancel(ctx, o, change, released) {
				return nil, fmt.Errorf("cancelar pedido %s: %w", o.OrderNumber, err)
			}
			for _, pending := range o.Lines[i:] {
				s.metrics.ReconcileWarning()
				s.log.Error().
					Str("order_id", o.ID).
					Str("product_id", pending.ProductID).
					Int("quantity", pending.Quantity).
					Msg("pedido cancelado con unidades sin devolver; requiere conciliación")
			}
			s.markCancelled(o, change, actorID)
			return nil, fmt.Errorf("cancelar pedido %s: quedó cancelado con devoluciones pendientes: %w", o.OrderNumber, err)
		}
	}

	s.markCancelled(o, change, actorID)
	s.log.Info().Str("order_id", o.ID).Str("from", string(change.From)).Str("actor_id", actorID).Msg("pedido cancelado")
	return o, nil
}

func (s *FulfillmentService) markCancelled(o *entity.Order, change entity.StatusChange, actorID string) {
	o.Status = entity.OrderStatusCancelled
	o.History = append(o.History, change)
	o.UpdatedAt = change.At
	s.metrics.Transition(string(o.Status))
	s.publisher.Publish(notification.NewEvent(notification.EventOrderCancelled, o, change.From, actorID))
}

// claimCancel pasa el pedido a Cancelled con compare-and-swap. Si otro actor lo hizo avanzar
// entre la lectura y el swap, reintenta desde el estado nuevo mientras la cancelación siga permitida.
func (s *FulfillmentService) claimCancel(ctx context.Context, o *entity.Order, actorID string) (entity.StatusChange, error) {
	for attempt := 1; attempt <= maxCancelAttempts; attempt++ {
		change := entity.StatusChange{From: o.Status, To: entity.OrderStatusCancelled, ActorID: actorID, At: s.now()}
		ok, err := s.orderRepo.UpdateStatus(ctx, o.ID, change.From, change)
		if err != nil {
			return entity.StatusChange{}, fmt.Errorf("actualizar estado del pedido: %w", err)
		}
		if ok {
			return change, nil
		}
		fresh, err := s.GetOrder(ctx, o.ID)
		if err != nil {
			return entity.StatusChange{}, err
		}
		if err := orderflow.Validate(o.ID, fresh.Status, entity.OrderStatusCancelled); err != nil {
			return entity.StatusChange{}, err
		}
		s.log.Debug().Str("order_id", o.ID).Str("from", string(o.Status)).Str("now", string(fresh.Status)).
			Msg("el pedido avanzó durante la cancelación; se reintenta")
		o.Status = fresh.Status
		o.History = fresh.History
		o.UpdatedAt = fresh.UpdatedAt
	}
	return entity.StatusChange{}, fmt.Errorf("el pedido %s cambió de estado durante la cancelación: %w", o.OrderNumber, domain.ErrConflict)
}

// revertCancel vuelve a reservar las líneas ya devueltas y restaura el estado previo.
// Devuelve false si no pudo: en ese caso deshace lo que alcanzó a reservar y el pedido sigue cancelado,
// de modo que un reintento nunca devuelve dos veces las mismas unidades.
func (s *FulfillmentService) revertCancel(ctx context.Context, o *entity.Order, change entity.StatusChange, released []entity.OrderLine) bool {
	ctx = context.WithoutCancel(ctx)
	reclaimed := make([]entity.OrderLine, 0, len(released))
	for _, line := range released {
		_, err := s.catalog.Reclaim(ctx, catalog.StockRequest{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			ActorID:   change.ActorID,
			Reason:    entity.LedgerReasonOrder,
			OrderID:   o.ID,
			Notes:     "reversión de cancelación fallida",
		})
		if err != nil {
			s.log.Warn().Err(err).
				Str("order_id", o.ID).
				Str("product_id", line.ProductID).
				Msg("no se pudo volver a reservar tras cancelación fallida; el pedido queda cancelado")
			s.releaseAgain(ctx, o, change.ActorID, reclaimed)
			return false
		}
		reclaimed = append(reclaimed, line)
	}
	back := entity.StatusChange{From: change.To, To: change.From, ActorID: change.ActorID, At: s.now()}
	ok, err := s.orderRepo.UpdateStatus(ctx, o.ID, change.To, back)
	if err != nil || !ok {
		s.log.Error().Err(err).Str("order_id", o.ID).Msg("no se pudo restaurar el estado del pedido; queda cancelado")
		s.releaseAgain(ctx, o, change.ActorID, reclaimed)
		return false
	}
	return true
}

// releaseAgain devuelve las líneas recuperadas por revertCancel cuando el pedido finalmente queda cancelado.
func (s *FulfillmentService) releaseAgain(ctx context.Context, o *entity.Order, actorID string, lines []entity.OrderLine) {
	for _, line := range lines {
		err := s.catalog.Release(ctx, catalog.StockRequest{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			ActorID:   actorID,
			Reason:    entity.LedgerReasonOrderCancel,
			OrderID:   o.ID,
			Notes:     "cancelación de pedido " + o.OrderNumber,
		})
		if err != nil {
			s.metrics.ReconcileWarning()
			s.log.Error().Err(err).
				Str("order_id", o.ID).
				Str("product_id", line.ProductID).
				Int("quantity", line.Quantity).
				Msg("no se pudo devolver el stock recuperado; requiere conciliación")
		}
	}
}

// swapStatus aplica el cambio solo si el pedido sigue en change.From.
func (s *FulfillmentService) swapStatus(ctx context.Context, o *entity.Order, change entity.StatusChange) error {
	ok, err := s.orderRepo.UpdateStatus(ctx, o.ID, change.From, change)
	if err != nil {
		return fmt.Errorf("actualizar estado del pedido: %w", err)
	}
	if ok {
		return nil
	}
	fresh, err := s.GetOrder(ctx, o.ID)
	if err != nil {
		return err
	}
	if isTerminal(fresh.Status) {
		return &domain.AlreadyTerminalError{OrderID: o.ID, Status: string(fresh.Status)}
	}
	return fmt.Errorf("el pedido %s pasó a %s: %w", o.OrderNumber, fresh.Status, domain.ErrConflict)
}

// GetOrder obtiene un pedido por ID.
func (s *FulfillmentService) GetOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("pedido %s: %w", orderID, domain.ErrNotFound)
	}
	return o, nil
}

// ListOrders lista pedidos por estado y/o cliente.
func (s *FulfillmentService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.orderRepo.List(ctx, filter)
}

// FormatOrderNumber número legible a partir del valor de la secuencia.
func FormatOrderNumber(seq int64) string {
	return fmt.Sprintf("ORD-%06d", seq)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrUnavailable), errors.Is(err, domain.ErrNotFound):
		return "unavailable"
	default:
		return "error"
	}
}

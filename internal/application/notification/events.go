package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
)

// EventType tipo de evento de pedido.
type EventType string

// Tipos de evento que consumen el servicio de correo y la analítica.
const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusChanged EventType = "order.status-changed"
	EventOrderCancelled     EventType = "order.cancelled"
)

// Event notificación de un cambio en un pedido. Order es una copia: el consumidor no la comparte con el core.
type Event struct {
	ID             string
	Type           EventType
	Order          *entity.Order
	PreviousStatus entity.OrderStatus // vacío en order.created
	ActorID        string
	OccurredAt     time.Time
}

// NewEvent construye un evento con ID y fecha.
func NewEvent(t EventType, order *entity.Order, previous entity.OrderStatus, actorID string) Event {
	return Event{
		ID:             uuid.New().String(),
		Type:           t,
		Order:          order.Clone(),
		PreviousStatus: previous,
		ActorID:        actorID,
		OccurredAt:     time.Now().UTC(),
	}
}

// Sink colaborador externo que entrega el evento (correo, Kafka, log).
type Sink interface {
	Notify(ctx context.Context, event Event) error
}

// Publisher lo que usa el core: encola y regresa sin esperar la entrega.
type Publisher interface {
	Publish(event Event)
}

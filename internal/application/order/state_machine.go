package order

import (
	"context"

	"github.com/jhoicas/bakery-api/internal/application/notification"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/orderflow"
)

// Transition aplica un cambio de estado según la tabla de orderflow.
// Pasar a Cancelled comparte el camino de CancelOrder (devolución de stock); el resto de transiciones
// solo cambian el estado. Cada transición publica un evento sin esperar su entrega.
func (s *FulfillmentService) Transition(ctx context.Context, orderID string, to entity.OrderStatus, actorID string) (*entity.Order, error) {
	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := orderflow.Validate(o.ID, o.Status, to); err != nil {
		return nil, err
	}
	if to == entity.OrderStatusCancelled {
		return s.cancel(ctx, o, actorID)
	}

	prev := o.Status
	change := entity.StatusChange{From: prev, To: to, ActorID: actorID, At: s.now()}
	if err := s.swapStatus(ctx, o, change); err != nil {
		return nil, err
	}
	o.Status = to
	o.History = append(o.History, change)
	o.UpdatedAt = change.At

	s.metrics.Transition(string(to))
	s.log.Info().Str("order_id", o.ID).Str("from", string(prev)).Str("to", string(to)).Str("actor_id", actorID).Msg("estado de pedido actualizado")
	s.publisher.Publish(notification.NewEvent(notification.EventOrderStatusChanged, o, prev, actorID))
	return o, nil
}

func isTerminal(s entity.OrderStatus) bool {
	return orderflow.IsTerminal(s)
}

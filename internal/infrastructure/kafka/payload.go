package kafka

import (
	"time"

	"github.com/jhoicas/bakery-api/internal/application/notification"
)

// eventPayload contrato JSON del topic de eventos de pedido.
type eventPayload struct {
	ID             string       `json:"id"`
	Type           string       `json:"type"`
	OccurredAt     time.Time    `json:"occurred_at"`
	ActorID        string       `json:"actor_id,omitempty"`
	PreviousStatus string       `json:"previous_status,omitempty"`
	Order          orderPayload `json:"order"`
}

type orderPayload struct {
	ID          string        `json:"id"`
	OrderNumber string        `json:"order_number"`
	CustomerID  string        `json:"customer_id"`
	Status      string        `json:"status"`
	TotalAmount string        `json:"total_amount"`
	Lines       []linePayload `json:"lines"`
	Notes       string        `json:"notes,omitempty"`
	DeliveryAt  *time.Time    `json:"delivery_date,omitempty"`
}

type linePayload struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

func newEventPayload(e notification.Event) eventPayload {
	p := eventPayload{
		ID:             e.ID,
		Type:           string(e.Type),
		OccurredAt:     e.OccurredAt,
		ActorID:        e.ActorID,
		PreviousStatus: string(e.PreviousStatus),
	}
	if e.Order == nil {
		return p
	}
	o := e.Order
	p.Order = orderPayload{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount.StringFixed(2),
		Lines:       make([]linePayload, 0, len(o.Lines)),
		Notes:       o.Metadata.Notes,
		DeliveryAt:  o.Metadata.DeliveryDate,
	}
	for _, l := range o.Lines {
		p.Order.Lines = append(p.Order.Lines, linePayload{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice.StringFixed(2),
		})
	}
	return p
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea solicitada.
type OrderLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest entrada para crear un pedido. Un pedido sin líneas lo rechaza el servicio (EMPTY_ORDER).
type CreateOrderRequest struct {
	CustomerID    string             `json:"customer_id" validate:"required,max=100"`
	Lines         []OrderLineRequest `json:"lines" validate:"dive"`
	Notes         string             `json:"notes" validate:"max=500"`
	DeliveryDate  *time.Time         `json:"delivery_date"`
	PaymentMethod string             `json:"payment_method" validate:"omitempty,oneof=cash card transfer"`
	Source        string             `json:"source" validate:"omitempty,max=40"`
}

// UpdateOrderStatusRequest cambio de estado (Pending, Processing, Ready, Completed, Cancelled).
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderLineResponse línea de un pedido.
type OrderLineResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// StatusChangeResponse entrada del historial de estados.
type StatusChangeResponse struct {
	From    string    `json:"from,omitempty"`
	To      string    `json:"to"`
	ActorID string    `json:"actor_id,omitempty"`
	At      time.Time `json:"at"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID            string                 `json:"id"`
	OrderNumber   string                 `json:"order_number"`
	CustomerID    string                 `json:"customer_id"`
	Status        string                 `json:"status"`
	TotalAmount   decimal.Decimal        `json:"total_amount"`
	Lines         []OrderLineResponse    `json:"lines"`
	Notes         string                 `json:"notes,omitempty"`
	DeliveryDate  *time.Time             `json:"delivery_date,omitempty"`
	PaymentMethod string                 `json:"payment_method,omitempty"`
	Source        string                 `json:"source,omitempty"`
	History       []StatusChangeResponse `json:"history"`
	CreatedBy     string                 `json:"created_by,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

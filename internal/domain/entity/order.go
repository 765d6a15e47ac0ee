package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado del ciclo de vida de un pedido.
type OrderStatus string

// Estados de pedido.
const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusReady      OrderStatus = "Ready"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// OrderLine línea de pedido. UnitPrice se congela al crear el pedido.
type OrderLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// OrderMetadata datos de entrega y pago que no afectan al inventario.
type OrderMetadata struct {
	Notes         string
	DeliveryDate  *time.Time
	PaymentMethod string // cash, card, transfer
	Source        string // mostrador, web, teléfono
}

// StatusChange registro de auditoría de una transición.
type StatusChange struct {
	From    OrderStatus
	To      OrderStatus
	ActorID string
	At      time.Time
}

// Order pedido de un cliente. Las líneas no cambian después de la creación; solo cambia Status.
type Order struct {
	ID          string
	OrderNumber string
	CustomerID  string
	Lines       []OrderLine
	TotalAmount decimal.Decimal
	Status      OrderStatus
	Metadata    OrderMetadata
	History     []StatusChange
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ComputeTotal suma cantidad × precio unitario de cada línea y rellena los subtotales.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		l := &o.Lines[i]
		l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		total = total.Add(l.Subtotal)
	}
	o.TotalAmount = total
	return total
}

// Clone copia profunda para que los stores en memoria no compartan slices con el caller.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Lines = append([]OrderLine(nil), o.Lines...)
	c.History = append([]StatusChange(nil), o.History...)
	if o.Metadata.DeliveryDate != nil {
		d := *o.Metadata.DeliveryDate
		c.Metadata.DeliveryDate = &d
	}
	return &c
}

package dto

import "time"

// AdjustmentRequest ajuste manual de inventario (horneada, merma, conteo físico).
type AdjustmentRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Delta     int    `json:"delta" validate:"ne=0"`
	Reason    string `json:"reason" validate:"omitempty,oneof=manual adjustment bulk"`
	Notes     string `json:"notes" validate:"max=500"`
}

// LedgerEntryResponse asiento del libro de inventario.
type LedgerEntryResponse struct {
	ID            string    `json:"id"`
	Seq           int64     `json:"seq"`
	ProductID     string    `json:"product_id"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	Change        int       `json:"change"`
	Reason        string    `json:"reason"`
	ActorID       string    `json:"actor_id,omitempty"`
	OrderID       string    `json:"order_id,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// LedgerHistoryResponse historial de un producto.
type LedgerHistoryResponse struct {
	ProductID string                `json:"product_id"`
	Items     []LedgerEntryResponse `json:"items"`
}

// OrderLedgerResponse movimientos de stock generados por un pedido.
type OrderLedgerResponse struct {
	OrderID string                `json:"order_id"`
	Items   []LedgerEntryResponse `json:"items"`
}

// ReconciliationResponse resultado de reproducir el libro frente al stock actual.
type ReconciliationResponse struct {
	ProductID  string `json:"product_id"`
	Entries    int    `json:"entries"`
	Replayed   int    `json:"replayed"`
	Current    int    `json:"current"`
	Consistent bool   `json:"consistent"`
}

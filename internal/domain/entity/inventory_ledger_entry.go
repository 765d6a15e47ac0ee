package entity

import "time"

// LedgerReason motivo de un movimiento de stock.
type LedgerReason string

// Motivos de movimiento del libro de inventario.
const (
	LedgerReasonInitial     LedgerReason = "initial"      // alta del producto
	LedgerReasonOrder       LedgerReason = "order"        // reserva por pedido
	LedgerReasonOrderCancel LedgerReason = "order-cancel" // devolución por cancelación
	LedgerReasonManual      LedgerReason = "manual"       // edición manual desde el panel
	LedgerReasonBulk        LedgerReason = "bulk"         // carga masiva (horneada del día)
	LedgerReasonAdjustment  LedgerReason = "adjustment"   // ajuste por conteo físico o merma
	LedgerReasonDeletion    LedgerReason = "deletion"     // baja del producto
)

// Valid indica si el motivo pertenece al catálogo cerrado.
func (r LedgerReason) Valid() bool {
	switch r {
	case LedgerReasonInitial, LedgerReasonOrder, LedgerReasonOrderCancel,
		LedgerReasonManual, LedgerReasonBulk, LedgerReasonAdjustment, LedgerReasonDeletion:
		return true
	}
	return false
}

// InventoryLedgerEntry asiento inmutable del libro de inventario: una fila por cada mutación de stock.
// Change = NewStock - PreviousStock (con signo).
type InventoryLedgerEntry struct {
	ID            string
	Seq           int64 // desempate de orden cuando dos asientos comparten CreatedAt
	ProductID     string
	PreviousStock int
	NewStock      int
	Change        int
	Reason        LedgerReason
	ActorID       string
	OrderID       string // vacío si el movimiento no viene de un pedido
	Notes         string
	CreatedAt     time.Time
}

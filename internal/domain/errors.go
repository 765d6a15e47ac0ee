package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Los errores tipados de abajo envuelven estos centinelas para que funcionen errors.Is y errors.As.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrUnavailable       = errors.New("producto no disponible para la venta")
	ErrEmptyOrder        = errors.New("el pedido no tiene líneas")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrAlreadyTerminal   = errors.New("el pedido ya está en un estado final")
	ErrLedgerWrite       = errors.New("no se pudo escribir en el libro de inventario")
	ErrLedgerMismatch    = errors.New("el libro de inventario no cuadra con el stock")
)

// ProductNotFoundError el producto referenciado no existe.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("producto %s no encontrado", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrNotFound }

// ProductUnavailableError el producto existe pero está inactivo o retirado de la venta.
type ProductUnavailableError struct {
	ProductID   string
	ProductName string
}

func (e *ProductUnavailableError) Error() string {
	if e.ProductName != "" {
		return fmt.Sprintf("%s (%s) no está disponible para la venta", e.ProductName, e.ProductID)
	}
	return fmt.Sprintf("producto %s no está disponible para la venta", e.ProductID)
}

func (e *ProductUnavailableError) Unwrap() error { return ErrUnavailable }

// InsufficientStockError la reserva pidió más unidades de las disponibles en el instante del chequeo.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("solo hay %d unidades de %s disponibles, se solicitaron %d", e.Available, name, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidTransitionError el cambio de estado no está en la tabla de transiciones.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("no se puede pasar de %s a %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// AlreadyTerminalError el pedido ya está Completed o Cancelled.
type AlreadyTerminalError struct {
	OrderID string
	Status  string
}

func (e *AlreadyTerminalError) Error() string {
	return fmt.Sprintf("el pedido %s ya está en estado final %s", e.OrderID, e.Status)
}

func (e *AlreadyTerminalError) Unwrap() error { return ErrAlreadyTerminal }

// LedgerWriteError fallo de almacenamiento al escribir un asiento del libro de inventario.
type LedgerWriteError struct {
	ProductID string
	Err       error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("escribir libro de inventario para %s: %v", e.ProductID, e.Err)
}

// Is permite errors.Is(err, ErrLedgerWrite) sin perder la causa original en Unwrap.
func (e *LedgerWriteError) Is(target error) bool { return target == ErrLedgerWrite }

func (e *LedgerWriteError) Unwrap() error { return e.Err }

// LedgerMismatchError la cadena de asientos de un producto se rompe o no reproduce el stock actual.
type LedgerMismatchError struct {
	ProductID string
	EntryID   string
	Expected  int
	Found     int
}

func (e *LedgerMismatchError) Error() string {
	return fmt.Sprintf("libro de %s descuadrado en %s: esperado %d, encontrado %d", e.ProductID, e.EntryID, e.Expected, e.Found)
}

func (e *LedgerMismatchError) Unwrap() error { return ErrLedgerMismatch }

// LineError identifica la línea del pedido que hizo fallar la creación.
type LineError struct {
	Index     int
	ProductID string
	Err       error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("línea %d (%s): %v", e.Index+1, e.ProductID, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

package orderflow

import (
	"strings"

	"github.com/jhoicas/bakery-api/internal/domain"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
)

// transitions tabla de transiciones permitidas. El flujo solo avanza;
// Cancelled se alcanza desde cualquier estado no final.
var transitions = map[entity.OrderStatus][]entity.OrderStatus{
	entity.OrderStatusPending:    {entity.OrderStatusProcessing, entity.OrderStatusCancelled},
	entity.OrderStatusProcessing: {entity.OrderStatusReady, entity.OrderStatusCancelled},
	entity.OrderStatusReady:      {entity.OrderStatusCompleted, entity.OrderStatusCancelled},
}

// IsTerminal indica si el estado ya no admite transiciones.
func IsTerminal(s entity.OrderStatus) bool {
	return s == entity.OrderStatusCompleted || s == entity.OrderStatusCancelled
}

// CanTransition indica si from -> to está en la tabla.
func CanTransition(from, to entity.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Validate devuelve AlreadyTerminalError si el origen es final o InvalidTransitionError si no está en la tabla.
func Validate(orderID string, from, to entity.OrderStatus) error {
	if IsTerminal(from) {
		return &domain.AlreadyTerminalError{OrderID: orderID, Status: string(from)}
	}
	if !CanTransition(from, to) {
		return &domain.InvalidTransitionError{From: string(from), To: string(to)}
	}
	return nil
}

// ParseStatus acepta el nombre del estado sin distinguir mayúsculas ("ready", "Ready").
func ParseStatus(s string) (entity.OrderStatus, error) {
	for _, st := range []entity.OrderStatus{
		entity.OrderStatusPending, entity.OrderStatusProcessing, entity.OrderStatusReady,
		entity.OrderStatusCompleted, entity.OrderStatusCancelled,
	} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", domain.ErrInvalidInput
}

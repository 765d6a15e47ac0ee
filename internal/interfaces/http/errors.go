package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/bakery-api/internal/application/dto"
	"github.com/jhoicas/bakery-api/internal/domain"
)

// errorStatus traduce un error de dominio a status HTTP y código.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyOrder):
		return fiber.StatusBadRequest, "EMPTY_ORDER"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnavailable):
		return fiber.StatusConflict, "PRODUCT_UNAVAILABLE"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrAlreadyTerminal):
		return fiber.StatusConflict, "ALREADY_TERMINAL"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrLedgerMismatch):
		return fiber.StatusInternalServerError, "LEDGER_MISMATCH"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// errorDetails extrae el contexto de los errores tipados (línea, producto, stock disponible).
func errorDetails(err error) map[string]string {
	details := map[string]string{}
	var lineErr *domain.LineError
	if errors.As(err, &lineErr) {
		details["line"] = strconv.Itoa(lineErr.Index + 1)
		details["product_id"] = lineErr.ProductID
	}
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		details["product_id"] = stockErr.ProductID
		details["available"] = strconv.Itoa(stockErr.Available)
		details["requested"] = strconv.Itoa(stockErr.Requested)
	}
	var unavailable *domain.ProductUnavailableError
	if errors.As(err, &unavailable) {
		details["product_id"] = unavailable.ProductID
	}
	var transition *domain.InvalidTransitionError
	if errors.As(err, &transition) {
		details["from"] = transition.From
		details["to"] = transition.To
	}
	var terminal *domain.AlreadyTerminalError
	if errors.As(err, &terminal) {
		details["status"] = terminal.Status
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// writeError responde con dto.ErrorResponse. Los errores no clasificados se registran y no exponen la causa.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	if code == "INTERNAL" {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error interno atendiendo petición")
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg, Details: errorDetails(err)})
}

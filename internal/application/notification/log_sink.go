package notification

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// LogSink registra cada evento; es el sink por defecto cuando no hay Kafka configurado.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink construye el sink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "notification-log").Logger()}
}

// Notify escribe el evento en el log.
func (s *LogSink) Notify(_ context.Context, e Event) error {
	ev := s.log.Info().Str("event_id", e.ID).Str("type", string(e.Type))
	if e.Order != nil {
		ev = ev.Str("order_id", e.Order.ID).
			Str("order_number", e.Order.OrderNumber).
			Str("customer_id", e.Order.CustomerID).
			Str("status", string(e.Order.Status))
	}
	if e.PreviousStatus != "" {
		ev = ev.Str("previous_status", string(e.PreviousStatus))
	}
	ev.Msg("evento de pedido")
	return nil
}

// MultiSink reparte el evento a varios sinks; un fallo no impide entregar a los demás.
type MultiSink []Sink

// Notify entrega a todos y une los errores.
func (m MultiSink) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

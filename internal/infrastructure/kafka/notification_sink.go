package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/bakery-api/internal/application/notification"
)

// ErrCircuitOpen Kafka no está aceptando mensajes y el breaker corta los envíos.
var ErrCircuitOpen = errors.New("kafka: circuit breaker abierto")

// messageWriter lo que el sink usa de *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config conexión y breaker del sink.
type Config struct {
	Brokers  []string
	Topic    string
	ClientID string

	// Breaker: se abre tras FailureThreshold fallos seguidos y prueba de nuevo pasado OpenTimeout.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// NotificationSink publica los eventos de pedido en un topic de Kafka (clave = ID del pedido,
// así los eventos de un mismo pedido quedan en orden en su partición).
type NotificationSink struct {
	writer   messageWriter
	topic    string
	clientID string
	breaker  *gobreaker.CircuitBreaker
	log      zerolog.Logger
}

var _ notification.Sink = (*NotificationSink)(nil)

// NewNotificationSink construye el sink con un kafka.Writer síncrono.
func NewNotificationSink(cfg Config, log zerolog.Logger) *NotificationSink {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return newNotificationSink(w, cfg, log)
}

func newNotificationSink(w messageWriter, cfg Config, log zerolog.Logger) *NotificationSink {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	l := log.With().Str("component", "notification-kafka").Str("topic", cfg.Topic).Logger()
	return &NotificationSink{
		writer:   w,
		topic:    cfg.Topic,
		clientID: cfg.ClientID,
		log:      l,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "kafka-notifications",
			MaxRequests: 1,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				l.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cambio de estado del circuit breaker")
			},
		}),
	}
}

// Notify serializa el evento y lo escribe en el topic.
func (s *NotificationSink) Notify(ctx context.Context, e notification.Event) error {
	msg, err := s.message(e)
	if err != nil {
		return err
	}
	_, err = s.breaker.Execute(func() (interface{}, error) {
		return nil, s.writer.WriteMessages(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	if err != nil {
		return fmt.Errorf("publicar evento %s en %s: %w", e.Type, s.topic, err)
	}
	return nil
}

func (s *NotificationSink) message(e notification.Event) (kafka.Message, error) {
	payload := newEventPayload(e)
	data, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("serializar evento %s: %w", e.ID, err)
	}
	return kafka.Message{
		Key:   []byte(payload.Order.ID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(e.ID)},
			{Key: "event-type", Value: []byte(e.Type)},
			{Key: "source", Value: []byte(s.clientID)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: e.OccurredAt,
	}, nil
}

// Close cierra el writer (vacía lo pendiente).
func (s *NotificationSink) Close() error {
	return s.writer.Close()
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bakery-api/internal/application/notification"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func sampleEvent() notification.Event {
	o := &entity.Order{
		ID:          "o1",
		OrderNumber: "ORD-000007",
		CustomerID:  "c1",
		Status:      entity.OrderStatusCancelled,
		Lines: []entity.OrderLine{
			{ProductID: "p1", ProductName: "Croissant", Quantity: 5, UnitPrice: decimal.RequireFromString("1.5")},
		},
	}
	o.ComputeTotal()
	return notification.NewEvent(notification.EventOrderCancelled, o, entity.OrderStatusPending, "u1")
}

func TestNotify_EscribeMensajeConClavePorPedido(t *testing.T) {
	w := &fakeWriter{}
	sink := newNotificationSink(w, Config{Topic: "bakery.order-events", ClientID: "bakery-api"}, zerolog.Nop())

	require.NoError(t, sink.Notify(context.Background(), sampleEvent()))
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "o1", string(msg.Key))

	var payload eventPayload
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "order.cancelled", payload.Type)
	assert.Equal(t, "Pending", payload.PreviousStatus)
	assert.Equal(t, "7.50", payload.Order.TotalAmount)
	require.Len(t, payload.Order.Lines, 1)
	assert.Equal(t, "1.50", payload.Order.Lines[0].UnitPrice)
}

func TestNotify_BreakerSeAbreTrasFallosSeguidos(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	sink := newNotificationSink(w, Config{Topic: "t", FailureThreshold: 2, OpenTimeout: time.Minute}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		err := sink.Notify(context.Background(), sampleEvent())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}
	err := sink.Notify(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

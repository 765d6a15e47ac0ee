package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bakery-api/internal/application/notification"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
)

type memorySink struct {
	mu     sync.Mutex
	events []notification.Event
	block  chan struct{}
	err    error
}

func (s *memorySink) Notify(ctx context.Context, e notification.Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *memorySink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func closeWithin(t *testing.T, d *notification.Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func sampleOrder() *entity.Order {
	return &entity.Order{ID: "o1", OrderNumber: "ORD-000001", Status: entity.OrderStatusPending}
}

func TestDispatcher_EntregaTodosLosEventos(t *testing.T) {
	sink := &memorySink{}
	d := notification.NewDispatcher(sink, notification.DispatcherConfig{QueueSize: 16, Workers: 3}, zerolog.Nop(), nil)
	for i := 0; i < 10; i++ {
		d.Publish(notification.NewEvent(notification.EventOrderCreated, sampleOrder(), "", "u1"))
	}
	closeWithin(t, d)
	assert.Equal(t, 10, sink.count())
}

func TestDispatcher_ColaLlenaDescartaSinBloquear(t *testing.T) {
	sink := &memorySink{block: make(chan struct{})}
	d := notification.NewDispatcher(sink, notification.DispatcherConfig{QueueSize: 1, Workers: 1}, zerolog.Nop(), nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			d.Publish(notification.NewEvent(notification.EventOrderCreated, sampleOrder(), "", "u1"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish no debe bloquear con la cola llena")
	}

	close(sink.block)
	closeWithin(t, d)
	assert.Less(t, sink.count(), 20)
	assert.GreaterOrEqual(t, sink.count(), 1)
}

func TestDispatcher_ErrorDelSinkNoSePropaga(t *testing.T) {
	sink := &memorySink{err: errors.New("smtp caído")}
	d := notification.NewDispatcher(sink, notification.DispatcherConfig{}, zerolog.Nop(), nil)
	d.Publish(notification.NewEvent(notification.EventOrderCancelled, sampleOrder(), entity.OrderStatusPending, "u1"))
	closeWithin(t, d)
	assert.Equal(t, 1, sink.count())
}

func TestDispatcher_PublishTrasCloseSeDescarta(t *testing.T) {
	sink := &memorySink{}
	d := notification.NewDispatcher(sink, notification.DispatcherConfig{}, zerolog.Nop(), nil)
	closeWithin(t, d)
	d.Publish(notification.NewEvent(notification.EventOrderCreated, sampleOrder(), "", "u1"))
	assert.Equal(t, 0, sink.count())
}

func TestNewEvent_CopiaElPedido(t *testing.T) {
	o := sampleOrder()
	e := notification.NewEvent(notification.EventOrderStatusChanged, o, entity.OrderStatusPending, "u1")
	o.Status = entity.OrderStatusReady
	assert.Equal(t, entity.OrderStatusPending, e.Order.Status)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, entity.OrderStatusPending, e.PreviousStatus)
}

func TestMultiSink_EntregaATodosAunqueUnoFalle(t *testing.T) {
	ok := &memorySink{}
	bad := &memorySink{err: errors.New("kafka caído")}
	err := notification.MultiSink{bad, ok}.Notify(context.Background(), notification.NewEvent(notification.EventOrderCreated, sampleOrder(), "", "u1"))
	assert.Error(t, err)
	assert.Equal(t, 1, ok.count())
}

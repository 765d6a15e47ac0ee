package notification

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/bakery-api/pkg/metrics"
)

// DispatcherConfig tamaño de la cola, número de workers y timeout por entrega.
type DispatcherConfig struct {
	QueueSize       int
	Workers         int
	DeliveryTimeout time.Duration
}

// Dispatcher entrega eventos a un Sink en segundo plano (fire-and-forget).
// Publish nunca bloquea: si la cola está llena el evento se descarta y se registra.
// Los fallos del Sink se registran y nunca vuelven al ciclo de vida del pedido.
type Dispatcher struct {
	sink    Sink
	queue   chan Event
	timeout time.Duration
	log     zerolog.Logger
	metrics *metrics.Metrics

	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
}

var _ Publisher = (*Dispatcher)(nil)

// NewDispatcher arranca los workers inmediatamente.
func NewDispatcher(sink Sink, cfg DispatcherConfig, log zerolog.Logger, m *metrics.Metrics) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 5 * time.Second
	}
	d := &Dispatcher{
		sink:    sink,
		queue:   make(chan Event, cfg.QueueSize),
		timeout: cfg.DeliveryTimeout,
		log:     log.With().Str("component", "notification").Logger(),
		metrics: m,
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Publish encola el evento sin esperar.
func (d *Dispatcher) Publish(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(event, "dispatcher cerrado")
		return
	}
	select {
	case d.queue <- event:
	default:
		d.drop(event, "cola llena")
	}
}

func (d *Dispatcher) drop(event Event, why string) {
	d.metrics.Notification("dropped")
	d.log.Warn().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Str("order_id", orderID(event)).
		Str("motivo", why).
		Msg("evento de notificación descartado")
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			d.metrics.Notification("failed")
			d.log.Error().Interface("panic", r).Str("event_id", event.ID).Msg("panic en sink de notificación")
		}
	}()
	if err := d.sink.Notify(ctx, event); err != nil {
		d.metrics.Notification("failed")
		d.log.Error().Err(err).
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Str("order_id", orderID(event)).
			Msg("entrega de notificación fallida")
		return
	}
	d.metrics.Notification("sent")
}

// Close deja de aceptar eventos y espera a que los workers vacíen la cola o venza ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func orderID(e Event) string {
	if e.Order == nil {
		return ""
	}
	return e.Order.ID
}

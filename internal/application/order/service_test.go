package order_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bakery-api/internal/application/catalog"
	"github.com/jhoicas/bakery-api/internal/application/ledger"
	"github.com/jhoicas/bakery-api/internal/application/notification"
	"github.com/jhoicas/bakery-api/internal/application/order"
	"github.com/jhoicas/bakery-api/internal/domain"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
	"github.com/jhoicas/bakery-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testActor    = "00000000-0000-0000-0000-0000000000aa"
	testCustomer = "cliente-1"
)

type recorder struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *recorder) Publish(e notification.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []notification.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store   *memory.Store
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
	orders  repository.OrderRepository
	events  *recorder
	svc     *order.FulfillmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	f := &fixture{
		store:   store,
		catalog: catalog.NewCatalog(memory.NewTxRunner(store), products, zerolog.Nop(), nil),
		ledger:  ledger.NewLedger(memory.NewInventoryLedgerRepository(store), products),
		orders:  memory.NewOrderRepository(store),
		events:  &recorder{},
	}
	f.svc = order.NewFulfillmentService(f.catalog, f.orders, f.events, zerolog.Nop(), nil)
	return f
}

func (f *fixture) product(t *testing.T, sku string, stock, threshold int, price string) *entity.Product {
	t.Helper()
	p, err := f.catalog.Register(context.Background(), catalog.RegisterInput{
		SKU:               sku,
		Name:              sku,
		Price:             decimal.RequireFromString(price),
		InitialStock:      stock,
		LowStockThreshold: threshold,
		ActorID:           testActor,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) stockOf(t *testing.T, id string) (int, entity.ProductStatus) {
	t.Helper()
	p, err := f.catalog.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock, p.Status
}

func (f *fixture) entries(t *testing.T, productID string) []*entity.InventoryLedgerEntry {
	t.Helper()
	h, err := f.ledger.History(context.Background(), productID)
	require.NoError(t, err)
	return h
}

func (f *fixture) assertReconciles(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		rec, err := f.ledger.Reconcile(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, rec.Consistent, "libro de %s: %d vs stock %d", id, rec.Replayed, rec.Current)
	}
}

func lines(pairs ...any) []order.LineInput {
	out := make([]order.LineInput, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, order.LineInput{ProductID: pairs[i].(string), Quantity: pairs[i+1].(int)})
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateOrder
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_ReservaYCalculaTotal(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "CRO", 10, 2, "1.20")
	b := f.product(t, "BAG", 10, 2, "0.95")

	o, err := f.svc.CreateOrder(context.Background(), order.CreateOrderInput{
		CustomerID: testCustomer,
		ActorID:    testActor,
		Lines:      lines(a.ID, 3, b.ID, 2),
		Metadata:   entity.OrderMetadata{PaymentMethod: "cash", Source: "mostrador"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, o.Status)
	assert.Equal(t, "ORD-000001", o.OrderNumber)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("5.50")), "total %s", o.TotalAmount)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, "CRO", o.Lines[0].ProductName)
	require.Len(t, o.History, 1)

	stockA, _ := f.stockOf(t, a.ID)
	stockB, _ := f.stockOf(t, b.ID)
	assert.Equal(t, 7, stockA)
	assert.Equal(t, 8, stockB)

	stored, err := f.svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, stored.OrderNumber)
	assert.Equal(t, []notification.EventType{notification.EventOrderCreated}, f.events.types())
	f.assertReconciles(t, a.ID, b.ID)
}

func TestCreateOrder_TodoONada(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 2, 1, "1.00")
	b := f.product(t, "B", 0, 1, "1.00")

	_, err := f.svc.CreateOrder(context.Background(), order.CreateOrderInput{
		CustomerID: testCustomer,
		Lines:      lines(a.ID, 1, b.ID, 1),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var lineErr *domain.LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, 1, lineErr.Index)
	assert.Equal(t, b.ID, lineErr.ProductID)

	stockA, _ := f.stockOf(t, a.ID)
	assert.Equal(t, 2, stockA, "la reserva de A debe revertirse")

	history := f.entries(t, a.ID)
	require.Len(t, history, 3)
	assert.Equal(t, entity.LedgerReasonOrder, history[1].Reason)
	assert.Equal(t, entity.LedgerReasonOrderCancel, history[2].Reason)
	assert.Equal(t, history[1].OrderID, history[2].OrderID)

	list, err := f.svc.ListOrders(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.events.types())
	f.assertReconciles(t, a.ID, b.ID)
}

func TestCreateOrder_SinLineas(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateOrder(context.Background(), order.CreateOrderInput{CustomerID: testCustomer})
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
}

func TestCreateOrder_CantidadInvalida(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 2, 1, "1.00")
	_, err := f.svc.CreateOrder(context.Background(), order.CreateOrderInput{
		CustomerID: testCustomer,
		Lines:      lines(a.ID, 0),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateOrder_ProductoInexistenteOInactivoNoReservaNada(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 5, 1, "1.00")
	b := f.product(t, "B", 5, 1, "1.00")
	_, err := f.catalog.SetAvailability(context.Background(), b.ID, false, testActor)
	require.NoError(t, err)

	for _, missing := range []string{"no-existe", b.ID} {
		_, err := f.svc.CreateOrder(context.Background(), order.CreateOrderInput{
			CustomerID: testCustomer,
			Lines:      lines(a.ID, 1, missing, 1),
		})
		var unavailable *domain.ProductUnavailableError
		require.True(t, errors.As(err, &unavailable), "producto %s", missing)
		assert.Equal(t, missing, unavailable.ProductID)
	}
	assert.Len(t, f.entries(t, a.ID), 1, "no debe haber reservas")
}

type failingOrders struct {
	repository.OrderRepository
	failNumber bool
}

func (f failingOrders) NextNumber(ctx context.Context) (int64, error) {
	if f.failNumber {
		return 0, errors.New("secuencia no disponible")
	}
	return f.OrderRepository.NextNumber(ctx)
}

func (f failingOrders) Create(context.Context, *entity.Order) error {
	return errors.New("tabla bloqueada")
}

func TestCreateOrder_FalloAlPersistirCompensa(t *testing.T) {
	for _, failNumber := range []bool{true, false} {
		t.Run(fmt.Sprintf("failNumber=%v", failNumber), func(t *testing.T) {
			f := newFixture(t)
			a := f.product(t, "A", 4, 1, "1.00")
			svc := order.NewFulfillmentService(f.catalog, failingOrders{OrderRepository: f.orders, failNumber: failNumber}, f.events, zerolog.Nop(), nil)

			_, err := svc.CreateOrder(context.Background(), order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 3)})
			require.Error(t, err)
			stock, _ := f.stockOf(t, a.ID)
			assert.Equal(t, 4, stock)
			f.assertReconciles(t, a.ID)
		})
	}
}

func TestCreateOrder_NumerosUnicosBajoConcurrencia(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 100, 1, "1.00")

	const n = 40
	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := f.svc.CreateOrder(context.Background(), order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 1)})
			if assert.NoError(t, err) {
				numbers <- o.OrderNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for num := range numbers {
		assert.False(t, seen[num], "número repetido %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
	stock, _ := f.stockOf(t, a.ID)
	assert.Equal(t, 100-n, stock)
}

type failingSink struct{}

func (failingSink) Notify(context.Context, notification.Event) error {
	return errors.New("smtp caído")
}

func TestCreateOrder_FalloDeNotificacionNoAfectaAlPedido(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 5, 1, "1.00")
	dispatcher := notification.NewDispatcher(failingSink{}, notification.DispatcherConfig{QueueSize: 4, Workers: 1}, zerolog.Nop(), nil)
	svc := order.NewFulfillmentService(f.catalog, f.orders, dispatcher, zerolog.Nop(), nil)

	o, err := svc.CreateOrder(context.Background(), order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 2)})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, dispatcher.Close(ctx))

	stored, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, stored.Status)
	stock, _ := f.stockOf(t, a.ID)
	assert.Equal(t, 3, stock)
}

// ──────────────────────────────────────────────────────────────────────────────
// CancelOrder
// ──────────────────────────────────────────────────────────────────────────────

func TestCancelOrder_RevierteExactamente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, 2, "1.00")
	b := f.product(t, "B", 10, 2, "1.00")

	o, err := f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 3, b.ID, 2)})
	require.NoError(t, err)
	stockA, _ := f.stockOf(t, a.ID)
	stockB, _ := f.stockOf(t, b.ID)
	assert.Equal(t, 7, stockA)
	assert.Equal(t, 8, stockB)

	cancelled, err := f.svc.CancelOrder(ctx, o.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)
	require.Len(t, cancelled.History, 2)
	assert.Equal(t, entity.OrderStatusPending, cancelled.History[1].From)

	stockA, _ = f.stockOf(t, a.ID)
	stockB, _ = f.stockOf(t, b.ID)
	assert.Equal(t, 10, stockA)
	assert.Equal(t, 10, stockB)

	last := f.entries(t, a.ID)
	assert.Equal(t, entity.LedgerReasonOrderCancel, last[len(last)-1].Reason)
	assert.Equal(t, 3, last[len(last)-1].Change)
	assert.Equal(t, o.ID, last[len(last)-1].OrderID)

	assert.Equal(t, []notification.EventType{notification.EventOrderCreated, notification.EventOrderCancelled}, f.events.types())
	f.assertReconciles(t, a.ID, b.ID)
}

func TestCancelOrder_SegundaVezEsAlreadyTerminalSinAsientos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, 2, "1.00")
	o, err := f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 3)})
	require.NoError(t, err)

	_, err = f.svc.CancelOrder(ctx, o.ID, testActor)
	require.NoError(t, err)
	before := len(f.entries(t, a.ID))

	_, err = f.svc.CancelOrder(ctx, o.ID, testActor)
	var terminal *domain.AlreadyTerminalError
	require.True(t, errors.As(err, &terminal))
	assert.Equal(t, "Cancelled", terminal.Status)
	assert.Len(t, f.entries(t, a.ID), before)
}

func TestCancelOrder_ConcurrenteDevuelveUnaSolaVez(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, 2, "1.00")
	o, err := f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 4)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CancelOrder(ctx, o.ID, testActor)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
	}
	assert.Equal(t, 1, ok)
	stock, _ := f.stockOf(t, a.ID)
	assert.Equal(t, 10, stock)
	f.assertReconciles(t, a.ID)
}

func TestCancelOrder_EscenarioCroissant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	croissant := f.product(t, "CROISSANT", 5, 5, "1.50")
	_, status := f.stockOf(t, croissant.ID)
	assert.Equal(t, entity.ProductStatusLowStock, status)

	o, err := f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: "customer1", Lines: lines(croissant.ID, 5)})
	require.NoError(t, err)
	stock, status := f.stockOf(t, croissant.ID)
	assert.Equal(t, 0, stock)
	assert.Equal(t, entity.ProductStatusOutOfStock, status)
	history := f.entries(t, croissant.ID)
	require.Len(t, history, 2)
	assert.Equal(t, -5, history[1].Change)
	assert.Equal(t, entity.LedgerReasonOrder, history[1].Reason)

	_, err = f.svc.CancelOrder(ctx, o.ID, testActor)
	require.NoError(t, err)
	stock, status = f.stockOf(t, croissant.ID)
	assert.Equal(t, 5, stock)
	assert.Equal(t, entity.ProductStatusLowStock, status)
	history = f.entries(t, croissant.ID)
	require.Len(t, history, 3)
	assert.Equal(t, 5, history[2].Change)
	assert.Equal(t, entity.LedgerReasonOrderCancel, history[2].Reason)
}

func TestCancelOrder_ProductoBorradoSeOmite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, 2, "1.00")
	b := f.product(t, "B", 10, 2, "1.00")
	o, err := f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 3, b.ID, 2)})
	require.NoError(t, err)
	require.NoError(t, f.catalog.Remove(ctx, b.ID, testActor))

	cancelled, err := f.svc.CancelOrder(ctx, o.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)
	stock, _ := f.stockOf(t, a.ID)
	assert.Equal(t, 10, stock)
}

func TestCancelOrder_Inexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CancelOrder(context.Background(), "no-existe", testActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// flakyCatalog falla con un error de infraestructura al devolver stock de un producto concreto.
type flakyCatalog struct {
	*catalog.Catalog
	failOn     string
	beforeFail func()
}

func (c flakyCatalog) Release(ctx context.Context, req catalog.StockRequest) error {
	if req.ProductID == c.failOn {
		if c.beforeFail != nil {
			c.beforeFail()
		}
		return errors.New("conexión reiniciada")
	}
	return c.Catalog.Release(ctx, req)
}

func TestCancelOrder_FalloDeInfraestructuraRestauraEstado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, 2, "1.00")
	b := f.product(t, "B", 10, 2, "1.00")
	o, err := f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 3, b.ID, 2)})
	require.NoError(t, err)

	svc := order.NewFulfillmentService(flakyCatalog{Catalog: f.catalog, failOn: b.ID}, f.orders, f.events, zerolog.Nop(), nil)
	_, err = svc.CancelOrder(ctx, o.ID, testActor)
	require.Error(t, err)

	stored, err := f.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, stored.Status)
	stockA, _ := f.stockOf(t, a.ID)
	stockB, _ := f.stockOf(t, b.ID)
	assert.Equal(t, 7, stockA, "A vuelve a quedar reservado")
	assert.Equal(t, 8, stockB)
	f.assertReconciles(t, a.ID, b.ID)

	// Con el almacenamiento sano la cancelación se puede reintentar
	_, err = f.svc.CancelOrder(ctx, o.ID, testActor)
	require.NoError(t, err)
	stockA, _ = f.stockOf(t, a.ID)
	stockB, _ = f.stockOf(t, b.ID)
	assert.Equal(t, 10, stockA)
	assert.Equal(t, 10, stockB)
}

func TestCancelOrder_FalloConProductoInactivoNoDuplicaStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, 2, "1.00")
	b := f.product(t, "B", 10, 2, "1.00")
	o, err := f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 3, b.ID, 2)})
	require.NoError(t, err)
	_, err = f.catalog.SetAvailability(ctx, a.ID, false, testActor)
	require.NoError(t, err)

	svc := order.NewFulfillmentService(flakyCatalog{Catalog: f.catalog, failOn: b.ID}, f.orders, f.events, zerolog.Nop(), nil)
	_, err = svc.CancelOrder(ctx, o.ID, testActor)
	require.Error(t, err)

	stored, err := f.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, stored.Status)
	stockA, statusA := f.stockOf(t, a.ID)
	assert.Equal(t, 7, stockA, "A se vuelve a reservar aunque esté inactivo")
	assert.Equal(t, entity.ProductStatusInactive, statusA)

	_, err = f.svc.CancelOrder(ctx, o.ID, testActor)
	require.NoError(t, err)
	stockA, _ = f.stockOf(t, a.ID)
	stockB, _ := f.stockOf(t, b.ID)
	assert.Equal(t, 10, stockA, "el reintento no puede crear stock de la nada")
	assert.Equal(t, 10, stockB)
	f.assertReconciles(t, a.ID, b.ID)
}

func TestCancelOrder_SinStockParaRevertirQuedaCancelado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, 2, "1.00")
	b := f.product(t, "B", 10, 2, "1.00")
	o, err := f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 3, b.ID, 2)})
	require.NoError(t, err)

	// Otra venta se lleva todo A justo después de la devolución
	drainA := func() {
		_, err := f.catalog.Adjust(ctx, catalog.AdjustInput{ProductID: a.ID, Delta: -10, ActorID: testActor})
		require.NoError(t, err)
	}
	svc := order.NewFulfillmentService(flakyCatalog{Catalog: f.catalog, failOn: b.ID, beforeFail: drainA},
		f.orders, f.events, zerolog.Nop(), nil)
	_, err = svc.CancelOrder(ctx, o.ID, testActor)
	require.Error(t, err)

	stored, err := f.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, stored.Status)
	stockA, _ := f.stockOf(t, a.ID)
	stockB, _ := f.stockOf(t, b.ID)
	assert.Equal(t, 0, stockA)
	assert.Equal(t, 8, stockB, "B sigue retenido y queda para conciliación")

	var terminal *domain.AlreadyTerminalError
	_, err = f.svc.CancelOrder(ctx, o.ID, testActor)
	require.ErrorAs(t, err, &terminal)
	stockA, _ = f.stockOf(t, a.ID)
	assert.Equal(t, 0, stockA, "un reintento no vuelve a devolver A")
	f.assertReconciles(t, a.ID, b.ID)

	movements, err := f.ledger.ByOrder(ctx, o.ID)
	require.NoError(t, err)
	held := 0
	for _, e := range movements {
		if e.ProductID == b.ID {
			held -= e.Change
		}
	}
	assert.Equal(t, 2, held)
}

// racingOrders hace avanzar el pedido a Processing justo antes del primer intento de cancelarlo.
type racingOrders struct {
	repository.OrderRepository
	once sync.Once
}

func (r *racingOrders) UpdateStatus(ctx context.Context, id string, from entity.OrderStatus, change entity.StatusChange) (bool, error) {
	if change.To == entity.OrderStatusCancelled {
		r.once.Do(func() {
			_, _ = r.OrderRepository.UpdateStatus(ctx, id, entity.OrderStatusPending, entity.StatusChange{
				From: entity.OrderStatusPending, To: entity.OrderStatusProcessing, ActorID: testActor, At: time.Now().UTC(),
			})
		})
	}
	return r.OrderRepository.UpdateStatus(ctx, id, from, change)
}

func TestCancelOrder_ReintentaSiElPedidoAvanzaEntretanto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, 2, "1.00")
	o, err := f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 4)})
	require.NoError(t, err)

	svc := order.NewFulfillmentService(f.catalog, &racingOrders{OrderRepository: f.orders}, f.events, zerolog.Nop(), nil)
	cancelled, err := svc.CancelOrder(ctx, o.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)

	stored, err := f.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, stored.Status)
	last := stored.History[len(stored.History)-1]
	assert.Equal(t, entity.OrderStatusProcessing, last.From)

	stock, _ := f.stockOf(t, a.ID)
	assert.Equal(t, 10, stock)
	f.assertReconciles(t, a.ID)
}

package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bakery-api/internal/application/notification"
	"github.com/jhoicas/bakery-api/internal/application/order"
	"github.com/jhoicas/bakery-api/internal/domain"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
)

func TestTransition_FlujoCompletoNoTocaStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, 2, "1.00")
	o, err := f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 3)})
	require.NoError(t, err)

	for _, to := range []entity.OrderStatus{entity.OrderStatusProcessing, entity.OrderStatusReady, entity.OrderStatusCompleted} {
		got, err := f.svc.Transition(ctx, o.ID, to, testActor)
		require.NoError(t, err, "a %s", to)
		assert.Equal(t, to, got.Status)
	}
	stock, _ := f.stockOf(t, a.ID)
	assert.Equal(t, 7, stock)
	assert.Len(t, f.entries(t, a.ID), 2)

	stored, err := f.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, stored.History, 4)
	assert.Equal(t, entity.OrderStatusReady, stored.History[3].From)
	assert.Equal(t, testActor, stored.History[3].ActorID)

	types := f.events.types()
	require.Len(t, types, 4)
	assert.Equal(t, notification.EventOrderStatusChanged, types[3])
}

func TestTransition_Invalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, 2, "1.00")
	o, err := f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 1)})
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, o.ID, entity.OrderStatusReady, testActor)
	var invalid *domain.InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "Pending", invalid.From)

	_, err = f.svc.Transition(ctx, o.ID, entity.OrderStatusPending, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransition_DesdeCompletedEsFinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, 2, "1.00")
	o, err := f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 1)})
	require.NoError(t, err)
	for _, to := range []entity.OrderStatus{entity.OrderStatusProcessing, entity.OrderStatusReady, entity.OrderStatusCompleted} {
		_, err := f.svc.Transition(ctx, o.ID, to, testActor)
		require.NoError(t, err)
	}

	_, err = f.svc.CancelOrder(ctx, o.ID, testActor)
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
	stock, _ := f.stockOf(t, a.ID)
	assert.Equal(t, 9, stock, "un pedido completado no devuelve stock")
}

func TestTransition_ACancelledDesdeReadyDevuelveStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, 2, "1.00")
	o, err := f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 4)})
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, o.ID, entity.OrderStatusProcessing, testActor)
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, o.ID, entity.OrderStatusReady, testActor)
	require.NoError(t, err)

	got, err := f.svc.Transition(ctx, o.ID, entity.OrderStatusCancelled, testActor)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, got.Status)
	stock, _ := f.stockOf(t, a.ID)
	assert.Equal(t, 10, stock)

	types := f.events.types()
	assert.Equal(t, notification.EventOrderCancelled, types[len(types)-1])
}

func TestListOrders_FiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, 2, "1.00")
	first, err := f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: testCustomer, Lines: lines(a.ID, 1)})
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(ctx, order.CreateOrderInput{CustomerID: "otro", Lines: lines(a.ID, 1)})
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, first.ID, entity.OrderStatusProcessing, testActor)
	require.NoError(t, err)

	processing, err := f.svc.ListOrders(ctx, repository.OrderFilter{Status: entity.OrderStatusProcessing})
	require.NoError(t, err)
	require.Len(t, processing, 1)
	assert.Equal(t, first.ID, processing[0].ID)

	byCustomer, err := f.svc.ListOrders(ctx, repository.OrderFilter{CustomerID: "otro"})
	require.NoError(t, err)
	assert.Len(t, byCustomer, 1)
}

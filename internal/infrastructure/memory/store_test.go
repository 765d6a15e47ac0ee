package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bakery-api/internal/domain"
	"github.com/jhoicas/bakery-api/internal/domain/entity"
	"github.com/jhoicas/bakery-api/internal/domain/repository"
	"github.com/jhoicas/bakery-api/internal/infrastructure/memory"
)

func TestTxRunner_ErrorDescartaCambiosPreparados(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	products := memory.NewProductRepository(store)
	require.NoError(t, products.Create(ctx, &entity.Product{ID: "p1", SKU: "S1", Name: "Pan", Stock: 5}))

	tx := memory.NewTxRunner(store)
	boom := errors.New("boom")
	err := tx.Run(ctx, "p1", func(pr repository.ProductRepository, lr repository.InventoryLedgerRepository) error {
		require.NoError(t, pr.UpdateStock(ctx, "p1", 1, entity.ProductStatusLowStock))
		got, err := pr.GetForUpdate(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 1, got.Stock, "dentro de la transacción se ve lo preparado")
		require.NoError(t, lr.Append(ctx, &entity.InventoryLedgerEntry{ID: "e1", ProductID: "p1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
	entries, err := memory.NewInventoryLedgerRepository(store).ListByProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTxRunner_CommitAsignaSeq(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	tx := memory.NewTxRunner(store)
	for i := 0; i < 3; i++ {
		require.NoError(t, tx.Run(ctx, "p1", func(_ repository.ProductRepository, lr repository.InventoryLedgerRepository) error {
			return lr.Append(ctx, &entity.InventoryLedgerEntry{ProductID: "p1", OrderID: "o1"})
		}))
	}
	entries, err := memory.NewInventoryLedgerRepository(store).ListByOrder(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(1), entries[0].Seq)
	assert.Equal(t, int64(3), entries[2].Seq)
}

func TestProductRepository_CopiasIndependientes(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	products := memory.NewProductRepository(store)
	require.NoError(t, products.Create(ctx, &entity.Product{ID: "p1", SKU: "S1", Name: "Pan", Stock: 5}))

	got, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	got.Stock = 99

	again, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, again.Stock)

	assert.ErrorIs(t, products.Create(ctx, &entity.Product{ID: "p2", SKU: "S1"}), domain.ErrDuplicate)
	missing, err := products.GetBySKU(ctx, "nada")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOrderRepository_CompareAndSwap(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	orders := memory.NewOrderRepository(store)
	now := time.Now().UTC()
	require.NoError(t, orders.Create(ctx, &entity.Order{ID: "o1", OrderNumber: "ORD-000001", Status: entity.OrderStatusPending, CreatedAt: now}))

	ok, err := orders.UpdateStatus(ctx, "o1", entity.OrderStatusPending, entity.StatusChange{From: entity.OrderStatusPending, To: entity.OrderStatusProcessing, At: now})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = orders.UpdateStatus(ctx, "o1", entity.OrderStatusPending, entity.StatusChange{From: entity.OrderStatusPending, To: entity.OrderStatusCancelled, At: now})
	require.NoError(t, err)
	assert.False(t, ok, "el estado ya no es Pending")

	got, err := orders.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusProcessing, got.Status)
	assert.Len(t, got.History, 1)
}

func TestOrderRepository_NextNumberMonotono(t *testing.T) {
	orders := memory.NewOrderRepository(memory.NewStore())
	a, err := orders.NextNumber(context.Background())
	require.NoError(t, err)
	b, err := orders.NextNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a+1, b)
}

func TestOrderRepository_ListMasRecientesPrimero(t *testing.T) {
	orders := memory.NewOrderRepository(memory.NewStore())
	ctx := context.Background()
	base := time.Now().UTC()
	for i, id := range []string{"o1", "o2", "o3"} {
		require.NoError(t, orders.Create(ctx, &entity.Order{
			ID: id, OrderNumber: id, Status: entity.OrderStatusPending, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	list, err := orders.List(ctx, repository.OrderFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "o3", list[0].ID)
	assert.Equal(t, "o2", list[1].ID)

	rest, err := orders.List(ctx, repository.OrderFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "o1", rest[0].ID)
}

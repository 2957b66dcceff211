package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelane/fulfillment/internal/domain/order"
	"github.com/storelane/fulfillment/internal/domain/payment"
	"github.com/storelane/fulfillment/internal/domain/product"
	"github.com/storelane/fulfillment/internal/storage"
)

func TestWithinTxRollback(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	p, err := product.New("p1", "widget", "", decimal.RequireFromString("10.00"), 5)
	require.NoError(t, err)
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.InsertProduct(ctx, p)
	}))

	boom := errors.New("boom")
	o, err := order.New("o1", "c1", []order.Item{
		{ProductID: "p1", Quantity: 2, PriceAtOrder: decimal.RequireFromString("10.00")},
	})
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		require.NoError(t, tx.InsertOrder(ctx, o))
		require.NoError(t, tx.DecrementStock(ctx, "p1", 2))
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Every write inside the failed transaction is gone.
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.Order(ctx, "o1")
		assert.ErrorIs(t, err, order.ErrNotFound)

		got, err := tx.ActiveProduct(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 5, got.Quantity)
		return nil
	}))
}

func TestLatestPaymentByOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	amount := decimal.RequireFromString("20.00")

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		first := payment.New("pay1", "o1", amount, payment.MethodDebitCard)
		first.Status = payment.StatusFailed
		require.NoError(t, tx.InsertPayment(ctx, first))
		require.NoError(t, tx.InsertPayment(ctx, payment.New("pay2", "o1", amount, payment.MethodCreditCard)))
		require.NoError(t, tx.InsertPayment(ctx, payment.New("pay3", "other", amount, payment.MethodCreditCard)))
		return nil
	}))

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		latest, err := tx.LatestPaymentByOrder(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, "pay2", latest.ID)

		_, err = tx.LatestPaymentByOrder(ctx, "unpaid")
		assert.ErrorIs(t, err, payment.ErrNotFound)
		return nil
	}))
}

func TestSoftDeletedProductsAreInvisible(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	p, err := product.New("p1", "widget", "", decimal.RequireFromString("10.00"), 5)
	require.NoError(t, err)

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		require.NoError(t, tx.InsertProduct(ctx, p))
		return tx.SoftDeleteProduct(ctx, "p1")
	}))

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.ActiveProduct(ctx, "p1")
		assert.ErrorIs(t, err, product.ErrNotFound)

		assert.ErrorIs(t, tx.DecrementStock(ctx, "p1", 1), product.ErrNotFound)

		all, err := tx.ActiveProducts(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
		return nil
	}))
}

func TestGuardedDecrement(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	p, err := product.New("p1", "widget", "", decimal.RequireFromString("10.00"), 2)
	require.NoError(t, err)
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.InsertProduct(ctx, p)
	}))

	err = store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.DecrementStock(ctx, "p1", 3)
	})
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		got, err := tx.ActiveProduct(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 2, got.Quantity)
		return nil
	}))
}

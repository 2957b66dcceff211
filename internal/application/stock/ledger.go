// Package stock is the ledger over product quantities. Both operations are
// scoped to a caller-supplied transaction so that a workflow's stock reads
// and writes commit or roll back with the rest of its effects.
package stock

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storelane/fulfillment/internal/domain/product"
)

type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// CheckAndPriceItem reads a non-deleted product inside tx, verifies on-hand
// stock covers the requested quantity, and returns the current unit price.
// The read locks the product row, so a concurrent order cannot pass the same
// check until this transaction finishes. No quantity is changed here:
// decrementing is deferred to confirmation.
func (l *Ledger) CheckAndPriceItem(ctx context.Context, tx product.Repository, productID string, quantity int) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, product.ErrInvalidQuantity
	}

	p, err := tx.ActiveProductForUpdate(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if p.Quantity < quantity {
		return decimal.Zero, product.ErrInsufficientStock
	}
	return p.Price, nil
}

// Decrement reduces the product's on-hand quantity within tx. The underlying
// update is guarded, so even if stock moved since the order-time check the
// quantity cannot go negative; the caller gets ErrInsufficientStock and must
// roll back.
func (l *Ledger) Decrement(ctx context.Context, tx product.Repository, productID string, quantity int) error {
	if quantity <= 0 {
		return product.ErrInvalidQuantity
	}
	return tx.DecrementStock(ctx, productID, quantity)
}

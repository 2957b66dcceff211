// Package storage defines the transactional boundary the workflows run
// against. Each domain package declares its own repository interface; Tx
// composes them because every fulfillment workflow reads and writes across
// entities inside one unit of work.
package storage

import (
	"context"

	"github.com/storelane/fulfillment/internal/domain/customer"
	"github.com/storelane/fulfillment/internal/domain/order"
	"github.com/storelane/fulfillment/internal/domain/payment"
	"github.com/storelane/fulfillment/internal/domain/product"
)

type Tx interface {
	order.Repository
	payment.Repository
	product.Repository
	customer.Repository
}

// Store runs fn inside a single transaction. A non-nil error from fn rolls
// back every intermediate write; otherwise the transaction commits. The
// error from fn is returned as-is so callers can use sentinel errors to
// force a rollback without signalling a storage fault.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrNoItems         = errors.New("order: at least one item is required")
	ErrInvalidQuantity = errors.New("order: item quantity must be greater than zero")
	ErrUnknownStatus   = errors.New("order: unknown status")
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusConfirmed  Status = "Confirmed"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
	StatusReturned   Status = "Returned"
)

// ParseStatus rejects free-form status strings at the boundary so the
// workflows only ever see members of the closed enum.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusReturned:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// ValidateTransition is the single source of truth for direct order status
// changes. StatusConfirmed has no inbound edge here: it is reachable only
// through the confirmation workflow. StatusShipped and StatusReturned are
// part of the vocabulary (payment rules read them) but likewise have no
// inbound edge.
func ValidateTransition(current, next Status) bool {
	switch current {
	case StatusPending:
		return next == StatusProcessing || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusDelivered
	default:
		// Delivered and Cancelled are terminal.
		return false
	}
}

type Order struct {
	ID          string
	CustomerID  string
	TotalAmount decimal.Decimal
	Status      Status
	Items       []Item
	OrderDate   time.Time
}

// Item is a line of an order. PriceAtOrder is the unit price snapshotted when
// the order was created and never recomputed from the catalog afterwards.
type Item struct {
	OrderID      string
	ProductID    string
	Quantity     int
	PriceAtOrder decimal.Decimal
}

// Subtotal is quantity times the snapshotted unit price.
func (i Item) Subtotal() decimal.Decimal {
	return i.PriceAtOrder.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal sums the line subtotals. It runs once, at creation, against
// prices read in the same transaction as the stock check.
func ComputeTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// New builds a pending order over validated, already-priced items and fixes
// its total.
func New(id, customerID string, items []Item) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	owned := make([]Item, len(items))
	copy(owned, items)
	for i := range owned {
		owned[i].OrderID = id
	}

	return &Order{
		ID:          id,
		CustomerID:  customerID,
		TotalAmount: ComputeTotal(owned),
		Status:      StatusPending,
		Items:       owned,
		OrderDate:   time.Now().UTC(),
	}, nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = make([]Item, len(o.Items))
	copy(clone.Items, o.Items)
	return &clone
}

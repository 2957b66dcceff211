package product

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("product: not found")
	ErrInvalidQuantity   = errors.New("product: quantity must be greater than zero")
	ErrInvalidPrice      = errors.New("product: price must be zero or greater")
	ErrInsufficientStock = errors.New("product: insufficient stock")
)

// Product is a catalog row. Deleted products are soft-deleted: the row stays,
// but the repository's Active* lookups never return it, so the fulfillment
// core never sees deletion semantics.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	Deleted     bool
	UpdatedAt   time.Time
}

func New(id, name, description string, price decimal.Decimal, quantity int) (*Product, error) {
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	return &Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
		Quantity:    quantity,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

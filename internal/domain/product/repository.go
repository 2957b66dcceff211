package product

import "context"

type Repository interface {
	InsertProduct(ctx context.Context, p *Product) error
	// ActiveProduct applies the soft-delete visibility filter: deleted rows
	// behave as absent.
	ActiveProduct(ctx context.Context, id string) (*Product, error)
	// ActiveProductForUpdate additionally takes a row-level lock for the
	// remainder of the enclosing transaction.
	ActiveProductForUpdate(ctx context.Context, id string) (*Product, error)
	ActiveProducts(ctx context.Context) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	SoftDeleteProduct(ctx context.Context, id string) error
	// DecrementStock reduces on-hand quantity, guarded so it can never drive
	// the quantity negative; it reports ErrInsufficientStock instead.
	DecrementStock(ctx context.Context, id string, quantity int) error
}

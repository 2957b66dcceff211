package customer

import "context"

type Repository interface {
	InsertCustomer(ctx context.Context, c *Customer) error
	Customer(ctx context.Context, id string) (*Customer, error)
	Customers(ctx context.Context) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error
}

package order

import "context"

type Repository interface {
	InsertOrder(ctx context.Context, o *Order) error
	InsertItem(ctx context.Context, item *Item) error
	Order(ctx context.Context, id string) (*Order, error)
	OrdersByStatus(ctx context.Context, status Status) ([]*Order, error)
	ItemsByOrder(ctx context.Context, orderID string) ([]*Item, error)
	UpdateOrderStatus(ctx context.Context, id string, status Status) error
}

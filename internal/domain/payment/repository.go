package payment

import "context"

type Repository interface {
	InsertPayment(ctx context.Context, p *Payment) error
	Payment(ctx context.Context, id string) (*Payment, error)
	// LatestPaymentByOrder returns the most recent payment for the order by
	// creation time.
	LatestPaymentByOrder(ctx context.Context, orderID string) (*Payment, error)
	UpdatePaymentStatus(ctx context.Context, id string, status Status) error
}

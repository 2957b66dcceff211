package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Gateway is the capability boundary to the payment provider. The outcome is
// a terminal-or-pending payment status, never an error: a declined charge is
// a valid business result, not a fault.
type Gateway interface {
	Charge(ctx context.Context, method string, amount decimal.Decimal) (Status, error)
}

// Package gateway provides the stand-in payment gateway. The mapping from
// method to outcome is deterministic so workflows and tests are repeatable;
// a real provider integration would implement the same payment.Gateway port.
package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storelane/fulfillment/internal/domain/payment"
)

type Simulator struct{}

func NewSimulator() *Simulator {
	return &Simulator{}
}

// Charge resolves cash-on-delivery and credit-card charges immediately and
// declines debit cards. Unknown methods are treated as successful.
func (s *Simulator) Charge(_ context.Context, method string, _ decimal.Decimal) (payment.Status, error) {
	switch method {
	case payment.MethodCashOnDelivery, payment.MethodCreditCard:
		return payment.StatusCompleted, nil
	case payment.MethodDebitCard:
		return payment.StatusFailed, nil
	default:
		return payment.StatusCompleted, nil
	}
}

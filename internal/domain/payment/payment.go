package payment

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storelane/fulfillment/internal/domain/order"
)

var (
	ErrNotFound      = errors.New("payment: not found")
	ErrUnknownStatus = errors.New("payment: unknown status")
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
	StatusCancelled Status = "Cancelled"
	StatusRefund    Status = "Refund"
)

// Well-known payment methods. The gateway treats anything else as a
// successful charge, so these are not a closed set.
const (
	MethodCashOnDelivery = "COD"
	MethodCreditCard     = "CC"
	MethodDebitCard      = "DC"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled, StatusRefund:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// ValidateTransition encodes the payment lifecycle as a closed table. A
// completed payment can only move to Refund, and only while the owning order
// is Returned. Failed, Cancelled and Refund are terminal.
func ValidateTransition(current, next Status, orderStatus order.Status) bool {
	switch current {
	case StatusPending:
		switch next {
		case StatusCompleted, StatusFailed, StatusCancelled:
			return true
		}
		return false
	case StatusCompleted:
		return next == StatusRefund && orderStatus == order.StatusReturned
	default:
		return false
	}
}

type Payment struct {
	ID          string
	OrderID     string
	Amount      decimal.Decimal
	Status      Status
	Method      string
	PaymentDate time.Time
}

// New records a pending payment against an order. The amount must already
// have been checked against the order total by the caller.
func New(id, orderID string, amount decimal.Decimal, method string) *Payment {
	return &Payment{
		ID:          id,
		OrderID:     orderID,
		Amount:      amount,
		Status:      StatusPending,
		Method:      method,
		PaymentDate: time.Now().UTC(),
	}
}

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

package fulfillment

import (
	"github.com/storelane/fulfillment/internal/domain/order"
	"github.com/storelane/fulfillment/internal/domain/payment"
)

// FailureReason classifies expected business outcomes. Workflows report these
// in their results instead of returning errors; only storage faults surface
// as errors.
type FailureReason string

const (
	ReasonNone              FailureReason = ""
	ReasonValidation        FailureReason = "validation_failed"
	ReasonProductNotFound   FailureReason = "product_not_found"
	ReasonInsufficientStock FailureReason = "insufficient_stock"
	ReasonOrderNotFound     FailureReason = "order_not_found"
	ReasonPaymentNotFound   FailureReason = "payment_not_found"
	ReasonNotEligible       FailureReason = "order_not_eligible"
	ReasonAmountMismatch    FailureReason = "amount_mismatch"
	ReasonPaymentIncomplete FailureReason = "payment_incomplete"
	ReasonInvalidTransition FailureReason = "invalid_transition"
)

type CreateOrderResult struct {
	Created bool
	OrderID string
	Status  order.Status
	Reason  FailureReason
	Message string
}

type PaymentResult struct {
	Created   bool
	PaymentID string
	Status    payment.Status
	Reason    FailureReason
	Message   string
}

type ConfirmOrderResult struct {
	Confirmed bool
	OrderID   string
	Status    order.Status
	Reason    FailureReason
	Message   string
}

type OrderStatusResult struct {
	Updated bool
	OrderID string
	Status  order.Status
	Reason  FailureReason
	Message string
}

type PaymentStatusResult struct {
	Updated        bool
	PaymentID      string
	PreviousStatus payment.Status
	Status         payment.Status
	Reason         FailureReason
	Message        string
}

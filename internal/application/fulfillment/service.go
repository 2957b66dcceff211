// Package fulfillment orchestrates the transactional order/payment workflows.
// Every workflow runs as one storage transaction: any failure, business or
// otherwise, rolls back every intermediate write.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/storelane/fulfillment/internal/application/stock"
	"github.com/storelane/fulfillment/internal/domain/order"
	"github.com/storelane/fulfillment/internal/domain/payment"
	"github.com/storelane/fulfillment/internal/domain/product"
	"github.com/storelane/fulfillment/internal/pkg/logging"
	"github.com/storelane/fulfillment/internal/pkg/metrics"
	"github.com/storelane/fulfillment/internal/storage"
)

// errReject aborts the enclosing transaction for an expected business
// failure. The workflow still returns a populated result; the sentinel only
// forces the rollback.
var errReject = errors.New("fulfillment: rejected")

type Service struct {
	store     storage.Store
	ledger    *stock.Ledger
	gateway   payment.Gateway
	ids       IDGenerator
	tracer    trace.Tracer
	workflows *metrics.Workflows
}

func NewService(store storage.Store, ledger *stock.Ledger, gateway payment.Gateway, ids IDGenerator, workflows *metrics.Workflows) *Service {
	return &Service{
		store:     store,
		ledger:    ledger,
		gateway:   gateway,
		ids:       ids,
		tracer:    otel.Tracer("fulfillment"),
		workflows: workflows,
	}
}

type ItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrder validates and prices every line against current stock, then
// inserts the order and its items with the total fixed at creation time.
// Duplicate product lines are validated independently, never merged. Nothing
// is persisted when any line fails.
func (s *Service) CreateOrder(ctx context.Context, customerID string, items []ItemInput) (*CreateOrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "Fulfillment.CreateOrder",
		trace.WithAttributes(
			attribute.String("order.customer_id", customerID),
			attribute.Int("order.line_count", len(items)),
		))
	logger := logging.FromContext(ctx).With(zap.String("workflow", "create_order"))

	var (
		res *CreateOrderResult
		err error
	)
	start := time.Now()
	defer s.finish(span, "create_order", start, &err, func() bool {
		return res != nil && !res.Created
	})

	switch {
	case customerID == "":
		res = rejectCreate(logger, ReasonValidation, "customer id is required")
		return res, nil
	case len(items) == 0:
		res = rejectCreate(logger, ReasonValidation, "order must contain at least one item")
		return res, nil
	}
	for _, in := range items {
		if in.ProductID == "" || in.Quantity <= 0 {
			res = rejectCreate(logger, ReasonValidation,
				fmt.Sprintf("invalid line for product %q: quantity must be greater than zero", in.ProductID))
			return res, nil
		}
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		priced := make([]order.Item, 0, len(items))
		for _, in := range items {
			unitPrice, checkErr := s.ledger.CheckAndPriceItem(ctx, tx, in.ProductID, in.Quantity)
			switch {
			case errors.Is(checkErr, product.ErrNotFound):
				res = rejectCreate(logger, ReasonProductNotFound,
					fmt.Sprintf("product not found for product id %s", in.ProductID))
				return errReject
			case errors.Is(checkErr, product.ErrInsufficientStock):
				res = rejectCreate(logger, ReasonInsufficientStock,
					fmt.Sprintf("insufficient stock for product id %s", in.ProductID))
				return errReject
			case checkErr != nil:
				return checkErr
			}
			priced = append(priced, order.Item{
				ProductID:    in.ProductID,
				Quantity:     in.Quantity,
				PriceAtOrder: unitPrice,
			})
		}

		entity, newErr := order.New(s.ids.NewID(), customerID, priced)
		if newErr != nil {
			return newErr
		}
		if insertErr := tx.InsertOrder(ctx, entity); insertErr != nil {
			return insertErr
		}
		for i := range entity.Items {
			if insertErr := tx.InsertItem(ctx, &entity.Items[i]); insertErr != nil {
				return insertErr
			}
		}

		span.SetAttributes(attribute.String("order.id", entity.ID))
		logger.Info("create_order_success",
			zap.String("order_id", entity.ID),
			zap.String("total_amount", entity.TotalAmount.String()),
		)
		res = &CreateOrderResult{
			Created: true,
			OrderID: entity.ID,
			Status:  entity.Status,
			Message: "order created successfully",
		}
		return nil
	})
	if errors.Is(err, errReject) {
		err = nil
	}
	if err != nil {
		logger.Error("create_order_fault", zap.Error(err))
		return nil, err
	}
	return res, nil
}

// MakePayment records a payment against a pending order and resolves it
// through the gateway within the same transaction. A declined charge commits
// as a Failed payment; it is not a workflow error.
func (s *Service) MakePayment(ctx context.Context, orderID string, amount decimal.Decimal, method string) (*PaymentResult, error) {
	ctx, span := s.tracer.Start(ctx, "Fulfillment.MakePayment",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("payment.method", method),
		))
	logger := logging.FromContext(ctx).With(
		zap.String("workflow", "make_payment"),
		zap.String("order_id", orderID),
	)

	var (
		res *PaymentResult
		err error
	)
	start := time.Now()
	defer s.finish(span, "make_payment", start, &err, func() bool {
		return res != nil && !res.Created
	})

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		o, findErr := tx.Order(ctx, orderID)
		if errors.Is(findErr, order.ErrNotFound) || (findErr == nil && o.Status != order.StatusPending) {
			logger.Info("make_payment_rejected", zap.String("reason", string(ReasonNotEligible)))
			res = &PaymentResult{
				Reason:  ReasonNotEligible,
				Message: "order either does not exist or is not in a pending state",
			}
			return errReject
		}
		if findErr != nil {
			return findErr
		}
		if !amount.Equal(o.TotalAmount) {
			logger.Info("make_payment_rejected", zap.String("reason", string(ReasonAmountMismatch)))
			res = &PaymentResult{
				Reason:  ReasonAmountMismatch,
				Message: "payment amount does not match the order total",
			}
			return errReject
		}

		entity := payment.New(s.ids.NewID(), orderID, amount, method)
		if insertErr := tx.InsertPayment(ctx, entity); insertErr != nil {
			return insertErr
		}

		outcome, chargeErr := s.gateway.Charge(ctx, method, amount)
		if chargeErr != nil {
			return chargeErr
		}
		if updateErr := tx.UpdatePaymentStatus(ctx, entity.ID, outcome); updateErr != nil {
			return updateErr
		}

		span.SetAttributes(
			attribute.String("payment.id", entity.ID),
			attribute.String("payment.status", string(outcome)),
		)
		logger.Info("make_payment_processed",
			zap.String("payment_id", entity.ID),
			zap.String("status", string(outcome)),
		)
		res = &PaymentResult{
			Created:   true,
			PaymentID: entity.ID,
			Status:    outcome,
			Message:   fmt.Sprintf("payment processed with status %s", outcome),
		}
		return nil
	})
	if errors.Is(err, errReject) {
		err = nil
	}
	if err != nil {
		logger.Error("make_payment_fault", zap.Error(err))
		return nil, err
	}
	return res, nil
}

// ConfirmOrder reconciles the latest payment against the order, decrements
// stock for every line exactly once, and advances the order to Confirmed.
// The decrement is guarded, so stock that moved since order time fails the
// confirmation instead of overselling.
func (s *Service) ConfirmOrder(ctx context.Context, orderID string) (*ConfirmOrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "Fulfillment.ConfirmOrder",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	logger := logging.FromContext(ctx).With(
		zap.String("workflow", "confirm_order"),
		zap.String("order_id", orderID),
	)

	var (
		res *ConfirmOrderResult
		err error
	)
	start := time.Now()
	defer s.finish(span, "confirm_order", start, &err, func() bool {
		return res != nil && !res.Confirmed
	})

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		o, findErr := tx.Order(ctx, orderID)
		if errors.Is(findErr, order.ErrNotFound) {
			res = rejectConfirm(logger, orderID, "", ReasonOrderNotFound, "order not found")
			return errReject
		}
		if findErr != nil {
			return findErr
		}
		if o.Status != order.StatusPending {
			res = rejectConfirm(logger, orderID, o.Status, ReasonNotEligible,
				"order is not awaiting confirmation")
			return errReject
		}

		p, payErr := tx.LatestPaymentByOrder(ctx, orderID)
		if errors.Is(payErr, payment.ErrNotFound) {
			res = rejectConfirm(logger, orderID, o.Status, ReasonPaymentIncomplete,
				"cannot confirm order: payment is either incomplete or does not match the order total")
			return errReject
		}
		if payErr != nil {
			return payErr
		}
		if p.Status != payment.StatusCompleted || !p.Amount.Equal(o.TotalAmount) {
			res = rejectConfirm(logger, orderID, o.Status, ReasonPaymentIncomplete,
				"cannot confirm order: payment is either incomplete or does not match the order total")
			return errReject
		}

		items, itemsErr := tx.ItemsByOrder(ctx, orderID)
		if itemsErr != nil {
			return itemsErr
		}
		for _, item := range items {
			decErr := s.ledger.Decrement(ctx, tx, item.ProductID, item.Quantity)
			if errors.Is(decErr, product.ErrInsufficientStock) || errors.Is(decErr, product.ErrNotFound) {
				res = rejectConfirm(logger, orderID, o.Status, ReasonInsufficientStock,
					fmt.Sprintf("insufficient stock for product id %s", item.ProductID))
				return errReject
			}
			if decErr != nil {
				return decErr
			}
		}

		if updateErr := tx.UpdateOrderStatus(ctx, orderID, order.StatusConfirmed); updateErr != nil {
			return updateErr
		}

		logger.Info("confirm_order_success")
		res = &ConfirmOrderResult{
			Confirmed: true,
			OrderID:   orderID,
			Status:    order.StatusConfirmed,
			Message:   "order confirmed successfully",
		}
		return nil
	})
	if errors.Is(err, errReject) {
		err = nil
	}
	if err != nil {
		logger.Error("confirm_order_fault", zap.Error(err))
		return nil, err
	}
	return res, nil
}

// UpdateOrderStatus applies a direct transition from the order lifecycle
// table. Confirmed is unreachable here: the table has no inbound edge for it.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, next order.Status) (*OrderStatusResult, error) {
	ctx, span := s.tracer.Start(ctx, "Fulfillment.UpdateOrderStatus",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("order.next_status", string(next)),
		))
	logger := logging.FromContext(ctx).With(
		zap.String("workflow", "update_order_status"),
		zap.String("order_id", orderID),
	)

	var (
		res *OrderStatusResult
		err error
	)
	start := time.Now()
	defer s.finish(span, "update_order_status", start, &err, func() bool {
		return res != nil && !res.Updated
	})

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		o, findErr := tx.Order(ctx, orderID)
		if errors.Is(findErr, order.ErrNotFound) {
			res = &OrderStatusResult{
				OrderID: orderID,
				Reason:  ReasonOrderNotFound,
				Message: "order not found",
			}
			return errReject
		}
		if findErr != nil {
			return findErr
		}

		if !order.ValidateTransition(o.Status, next) {
			logger.Info("order_status_rejected",
				zap.String("from", string(o.Status)),
				zap.String("to", string(next)),
			)
			res = &OrderStatusResult{
				OrderID: orderID,
				Status:  o.Status,
				Reason:  ReasonInvalidTransition,
				Message: fmt.Sprintf("invalid status transition from %s to %s", o.Status, next),
			}
			return errReject
		}

		if updateErr := tx.UpdateOrderStatus(ctx, orderID, next); updateErr != nil {
			return updateErr
		}

		logger.Info("order_status_updated", zap.String("status", string(next)))
		res = &OrderStatusResult{
			Updated: true,
			OrderID: orderID,
			Status:  next,
			Message: fmt.Sprintf("order status updated to %s", next),
		}
		return nil
	})
	if errors.Is(err, errReject) {
		err = nil
	}
	if err != nil {
		logger.Error("update_order_status_fault", zap.Error(err))
		return nil, err
	}
	return res, nil
}

// UpdatePaymentStatus applies a direct transition from the payment lifecycle
// table, using the owning order's current status as the third input.
func (s *Service) UpdatePaymentStatus(ctx context.Context, paymentID string, next payment.Status) (*PaymentStatusResult, error) {
	ctx, span := s.tracer.Start(ctx, "Fulfillment.UpdatePaymentStatus",
		trace.WithAttributes(
			attribute.String("payment.id", paymentID),
			attribute.String("payment.next_status", string(next)),
		))
	logger := logging.FromContext(ctx).With(
		zap.String("workflow", "update_payment_status"),
		zap.String("payment_id", paymentID),
	)

	var (
		res *PaymentStatusResult
		err error
	)
	start := time.Now()
	defer s.finish(span, "update_payment_status", start, &err, func() bool {
		return res != nil && !res.Updated
	})

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, findErr := tx.Payment(ctx, paymentID)
		if errors.Is(findErr, payment.ErrNotFound) {
			res = &PaymentStatusResult{
				PaymentID: paymentID,
				Reason:    ReasonPaymentNotFound,
				Message:   "payment record not found",
			}
			return errReject
		}
		if findErr != nil {
			return findErr
		}

		o, orderErr := tx.Order(ctx, p.OrderID)
		if orderErr != nil {
			return orderErr
		}

		if !payment.ValidateTransition(p.Status, next, o.Status) {
			logger.Info("payment_status_rejected",
				zap.String("from", string(p.Status)),
				zap.String("to", string(next)),
				zap.String("order_status", string(o.Status)),
			)
			res = &PaymentStatusResult{
				PaymentID:      paymentID,
				PreviousStatus: p.Status,
				Reason:         ReasonInvalidTransition,
				Message: fmt.Sprintf("invalid status transition from %s to %s for order status %s",
					p.Status, next, o.Status),
			}
			return errReject
		}

		if updateErr := tx.UpdatePaymentStatus(ctx, paymentID, next); updateErr != nil {
			return updateErr
		}

		logger.Info("payment_status_updated", zap.String("status", string(next)))
		res = &PaymentStatusResult{
			Updated:        true,
			PaymentID:      paymentID,
			PreviousStatus: p.Status,
			Status:         next,
			Message:        fmt.Sprintf("payment status updated from %s to %s", p.Status, next),
		}
		return nil
	})
	if errors.Is(err, errReject) {
		err = nil
	}
	if err != nil {
		logger.Error("update_payment_status_fault", zap.Error(err))
		return nil, err
	}
	return res, nil
}

// Order returns an order with its items.
func (s *Service) Order(ctx context.Context, id string) (*order.Order, error) {
	var out *order.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		o, err := tx.Order(ctx, id)
		if err != nil {
			return err
		}
		items, err := tx.ItemsByOrder(ctx, id)
		if err != nil {
			return err
		}
		o.Items = make([]order.Item, len(items))
		for i, item := range items {
			o.Items[i] = *item
		}
		out = o
		return nil
	})
	return out, err
}

// OrdersByStatus lists orders currently in the given status.
func (s *Service) OrdersByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	var out []*order.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		orders, err := tx.OrdersByStatus(ctx, status)
		if err != nil {
			return err
		}
		out = orders
		return nil
	})
	return out, err
}

// Payment returns a payment by id.
func (s *Service) Payment(ctx context.Context, id string) (*payment.Payment, error) {
	var out *payment.Payment
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Payment(ctx, id)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// finish records the workflow metrics and closes the span. It reads the
// error through a pointer because it runs deferred, after the workflow has
// settled its return values.
func (s *Service) finish(span trace.Span, workflow string, start time.Time, errp *error, rejected func() bool) {
	outcome := "success"
	if err := *errp; err != nil && !errors.Is(err, errReject) {
		outcome = "fault"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else if rejected() {
		outcome = "rejected"
	}
	s.workflows.Observe(workflow, outcome, time.Since(start).Seconds())
	span.End()
}

func rejectCreate(logger *zap.Logger, reason FailureReason, message string) *CreateOrderResult {
	logger.Info("create_order_rejected",
		zap.String("reason", string(reason)),
		zap.String("message", message),
	)
	return &CreateOrderResult{Reason: reason, Message: message}
}

func rejectConfirm(logger *zap.Logger, orderID string, status order.Status, reason FailureReason, message string) *ConfirmOrderResult {
	logger.Info("confirm_order_rejected",
		zap.String("reason", string(reason)),
		zap.String("message", message),
	)
	return &ConfirmOrderResult{OrderID: orderID, Status: status, Reason: reason, Message: message}
}

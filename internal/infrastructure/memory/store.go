// Package memory is an in-memory implementation of the storage ports with
// real rollback semantics: state is snapshotted when a transaction begins
// and restored if it fails. It backs the unit tests and local demo runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/storelane/fulfillment/internal/domain/customer"
	"github.com/storelane/fulfillment/internal/domain/order"
	"github.com/storelane/fulfillment/internal/domain/payment"
	"github.com/storelane/fulfillment/internal/domain/product"
	"github.com/storelane/fulfillment/internal/storage"
)

type state struct {
	customers map[string]*customer.Customer
	products  map[string]*product.Product
	orders    map[string]*order.Order
	items     map[string][]*order.Item
	payments  map[string]*payment.Payment
	// paymentSeq preserves insertion order so "latest by creation time" is
	// deterministic even when timestamps collide.
	paymentSeq []string
}

func newState() *state {
	return &state{
		customers: make(map[string]*customer.Customer),
		products:  make(map[string]*product.Product),
		orders:    make(map[string]*order.Order),
		items:     make(map[string][]*order.Item),
		payments:  make(map[string]*payment.Payment),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.customers {
		c.customers[k] = v.Clone()
	}
	for k, v := range s.products {
		c.products[k] = v.Clone()
	}
	for k, v := range s.orders {
		c.orders[k] = v.Clone()
	}
	for k, items := range s.items {
		cloned := make([]*order.Item, len(items))
		for i, item := range items {
			copied := *item
			cloned[i] = &copied
		}
		c.items[k] = cloned
	}
	for k, v := range s.payments {
		c.payments[k] = v.Clone()
	}
	c.paymentSeq = append([]string(nil), s.paymentSeq...)
	return c
}

type Store struct {
	mu    sync.Mutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

// WithinTx serializes transactions under one lock; rollback restores the
// pre-transaction snapshot.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(ctx, &tx{state: s.state}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

type tx struct {
	state *state
}

var _ storage.Tx = (*tx)(nil)

func (t *tx) InsertOrder(_ context.Context, o *order.Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("memory: order id is required")
	}
	t.state.orders[o.ID] = o.Clone()
	return nil
}

func (t *tx) InsertItem(_ context.Context, item *order.Item) error {
	if item == nil || item.OrderID == "" {
		return fmt.Errorf("memory: order item requires an order id")
	}
	copied := *item
	t.state.items[item.OrderID] = append(t.state.items[item.OrderID], &copied)
	return nil
}

func (t *tx) Order(_ context.Context, id string) (*order.Order, error) {
	o, ok := t.state.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o.Clone(), nil
}

func (t *tx) OrdersByStatus(_ context.Context, status order.Status) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range t.state.orders {
		if o.Status == status {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

func (t *tx) ItemsByOrder(_ context.Context, orderID string) ([]*order.Item, error) {
	items := t.state.items[orderID]
	out := make([]*order.Item, len(items))
	for i, item := range items {
		copied := *item
		out[i] = &copied
	}
	return out, nil
}

func (t *tx) UpdateOrderStatus(_ context.Context, id string, status order.Status) error {
	o, ok := t.state.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	return nil
}

func (t *tx) InsertPayment(_ context.Context, p *payment.Payment) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("memory: payment id is required")
	}
	t.state.payments[p.ID] = p.Clone()
	t.state.paymentSeq = append(t.state.paymentSeq, p.ID)
	return nil
}

func (t *tx) Payment(_ context.Context, id string) (*payment.Payment, error) {
	p, ok := t.state.payments[id]
	if !ok {
		return nil, payment.ErrNotFound
	}
	return p.Clone(), nil
}

func (t *tx) LatestPaymentByOrder(_ context.Context, orderID string) (*payment.Payment, error) {
	for i := len(t.state.paymentSeq) - 1; i >= 0; i-- {
		p := t.state.payments[t.state.paymentSeq[i]]
		if p != nil && p.OrderID == orderID {
			return p.Clone(), nil
		}
	}
	return nil, payment.ErrNotFound
}

func (t *tx) UpdatePaymentStatus(_ context.Context, id string, status payment.Status) error {
	p, ok := t.state.payments[id]
	if !ok {
		return payment.ErrNotFound
	}
	p.Status = status
	return nil
}

func (t *tx) InsertProduct(_ context.Context, p *product.Product) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("memory: product id is required")
	}
	t.state.products[p.ID] = p.Clone()
	return nil
}

func (t *tx) ActiveProduct(_ context.Context, id string) (*product.Product, error) {
	p, ok := t.state.products[id]
	if !ok || p.Deleted {
		return nil, product.ErrNotFound
	}
	return p.Clone(), nil
}

func (t *tx) ActiveProductForUpdate(ctx context.Context, id string) (*product.Product, error) {
	// Transactions are fully serialized here, so the plain read already has
	// exclusive access.
	return t.ActiveProduct(ctx, id)
}

func (t *tx) ActiveProducts(_ context.Context) ([]*product.Product, error) {
	var out []*product.Product
	for _, p := range t.state.products {
		if !p.Deleted {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (t *tx) UpdateProduct(_ context.Context, p *product.Product) error {
	existing, ok := t.state.products[p.ID]
	if !ok || existing.Deleted {
		return product.ErrNotFound
	}
	t.state.products[p.ID] = p.Clone()
	return nil
}

func (t *tx) SoftDeleteProduct(_ context.Context, id string) error {
	p, ok := t.state.products[id]
	if !ok || p.Deleted {
		return product.ErrNotFound
	}
	p.Deleted = true
	return nil
}

func (t *tx) DecrementStock(_ context.Context, id string, quantity int) error {
	p, ok := t.state.products[id]
	if !ok || p.Deleted {
		return product.ErrNotFound
	}
	if p.Quantity < quantity {
		return product.ErrInsufficientStock
	}
	p.Quantity -= quantity
	return nil
}

func (t *tx) InsertCustomer(_ context.Context, c *customer.Customer) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("memory: customer id is required")
	}
	t.state.customers[c.ID] = c.Clone()
	return nil
}

func (t *tx) Customer(_ context.Context, id string) (*customer.Customer, error) {
	c, ok := t.state.customers[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return c.Clone(), nil
}

func (t *tx) Customers(_ context.Context) ([]*customer.Customer, error) {
	var out []*customer.Customer
	for _, c := range t.state.customers {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (t *tx) UpdateCustomer(_ context.Context, c *customer.Customer) error {
	if _, ok := t.state.customers[c.ID]; !ok {
		return customer.ErrNotFound
	}
	t.state.customers[c.ID] = c.Clone()
	return nil
}

package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/storelane/fulfillment/internal/domain/customer"
	"github.com/storelane/fulfillment/internal/domain/order"
	"github.com/storelane/fulfillment/internal/domain/payment"
	"github.com/storelane/fulfillment/internal/domain/product"
	"github.com/storelane/fulfillment/internal/storage"
)

type tx struct {
	tx *sqlx.Tx
}

var _ storage.Tx = (*tx)(nil)

type orderRow struct {
	ID          string          `db:"order_id"`
	CustomerID  string          `db:"customer_id"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Status      string          `db:"status"`
	OrderDate   time.Time       `db:"order_date"`
}

func (r orderRow) toDomain() *order.Order {
	return &order.Order{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		TotalAmount: r.TotalAmount,
		Status:      order.Status(r.Status),
		OrderDate:   r.OrderDate,
	}
}

type itemRow struct {
	OrderID      string          `db:"order_id"`
	ProductID    string          `db:"product_id"`
	Quantity     int             `db:"quantity"`
	PriceAtOrder decimal.Decimal `db:"price_at_order"`
}

type paymentRow struct {
	ID          string          `db:"payment_id"`
	OrderID     string          `db:"order_id"`
	Amount      decimal.Decimal `db:"amount"`
	Status      string          `db:"status"`
	Method      string          `db:"payment_type"`
	PaymentDate time.Time       `db:"payment_date"`
}

func (r paymentRow) toDomain() *payment.Payment {
	return &payment.Payment{
		ID:          r.ID,
		OrderID:     r.OrderID,
		Amount:      r.Amount,
		Status:      payment.Status(r.Status),
		Method:      r.Method,
		PaymentDate: r.PaymentDate,
	}
}

type productRow struct {
	ID          string          `db:"product_id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Quantity    int             `db:"quantity"`
	Deleted     bool            `db:"is_deleted"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (r productRow) toDomain() *product.Product {
	return &product.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Deleted:     r.Deleted,
		UpdatedAt:   r.UpdatedAt,
	}
}

type customerRow struct {
	ID        string    `db:"customer_id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}

func (r customerRow) toDomain() *customer.Customer {
	return &customer.Customer{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Address:   r.Address,
		CreatedAt: r.CreatedAt,
	}
}

const orderColumns = "order_id, customer_id, total_amount, status, order_date"

func (t *tx) InsertOrder(ctx context.Context, o *order.Order) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO orders (order_id, customer_id, total_amount, status, order_date) VALUES (?, ?, ?, ?, ?)",
		o.ID, o.CustomerID, o.TotalAmount, string(o.Status), o.OrderDate,
	)
	return errors.Wrap(err, "insert order")
}

func (t *tx) InsertItem(ctx context.Context, item *order.Item) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO order_items (order_id, product_id, quantity, price_at_order) VALUES (?, ?, ?, ?)",
		item.OrderID, item.ProductID, item.Quantity, item.PriceAtOrder,
	)
	return errors.Wrap(err, "insert order item")
}

func (t *tx) Order(ctx context.Context, id string) (*order.Order, error) {
	var row orderRow
	err := t.tx.GetContext(ctx, &row,
		"SELECT "+orderColumns+" FROM orders WHERE order_id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select order")
	}
	return row.toDomain(), nil
}

func (t *tx) OrdersByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	var rows []orderRow
	err := t.tx.SelectContext(ctx, &rows,
		"SELECT "+orderColumns+" FROM orders WHERE status = ? ORDER BY order_date", string(status))
	if err != nil {
		return nil, errors.Wrap(err, "select orders by status")
	}
	out := make([]*order.Order, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (t *tx) ItemsByOrder(ctx context.Context, orderID string) ([]*order.Item, error) {
	var rows []itemRow
	err := t.tx.SelectContext(ctx, &rows,
		"SELECT order_id, product_id, quantity, price_at_order FROM order_items WHERE order_id = ? ORDER BY order_item_id",
		orderID)
	if err != nil {
		return nil, errors.Wrap(err, "select order items")
	}
	out := make([]*order.Item, len(rows))
	for i, row := range rows {
		out[i] = &order.Item{
			OrderID:      row.OrderID,
			ProductID:    row.ProductID,
			Quantity:     row.Quantity,
			PriceAtOrder: row.PriceAtOrder,
		}
	}
	return out, nil
}

func (t *tx) UpdateOrderStatus(ctx context.Context, id string, status order.Status) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE orders SET status = ? WHERE order_id = ?", string(status), id)
	if err != nil {
		return errors.Wrap(err, "update order status")
	}
	return noneAffected(res, order.ErrNotFound)
}

const paymentColumns = "payment_id, order_id, amount, status, payment_type, payment_date"

func (t *tx) InsertPayment(ctx context.Context, p *payment.Payment) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO payments (payment_id, order_id, amount, status, payment_type, payment_date) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.OrderID, p.Amount, string(p.Status), p.Method, p.PaymentDate,
	)
	return errors.Wrap(err, "insert payment")
}

func (t *tx) Payment(ctx context.Context, id string) (*payment.Payment, error) {
	var row paymentRow
	err := t.tx.GetContext(ctx, &row,
		"SELECT "+paymentColumns+" FROM payments WHERE payment_id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payment.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select payment")
	}
	return row.toDomain(), nil
}

func (t *tx) LatestPaymentByOrder(ctx context.Context, orderID string) (*payment.Payment, error) {
	var row paymentRow
	// payment_id breaks ties between payments created in the same instant.
	err := t.tx.GetContext(ctx, &row,
		"SELECT "+paymentColumns+" FROM payments WHERE order_id = ? ORDER BY payment_date DESC, payment_id DESC LIMIT 1",
		orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payment.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select latest payment")
	}
	return row.toDomain(), nil
}

func (t *tx) UpdatePaymentStatus(ctx context.Context, id string, status payment.Status) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE payments SET status = ? WHERE payment_id = ?", string(status), id)
	if err != nil {
		return errors.Wrap(err, "update payment status")
	}
	return noneAffected(res, payment.ErrNotFound)
}

const productColumns = "product_id, name, description, price, quantity, is_deleted, updated_at"

func (t *tx) InsertProduct(ctx context.Context, p *product.Product) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO products (product_id, name, description, price, quantity, is_deleted, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Description, p.Price, p.Quantity, p.Deleted, p.UpdatedAt,
	)
	return errors.Wrap(err, "insert product")
}

func (t *tx) ActiveProduct(ctx context.Context, id string) (*product.Product, error) {
	return t.activeProduct(ctx, id, "")
}

func (t *tx) ActiveProductForUpdate(ctx context.Context, id string) (*product.Product, error) {
	return t.activeProduct(ctx, id, " FOR UPDATE")
}

func (t *tx) activeProduct(ctx context.Context, id, locking string) (*product.Product, error) {
	var row productRow
	err := t.tx.GetContext(ctx, &row,
		"SELECT "+productColumns+" FROM products WHERE product_id = ? AND is_deleted = 0"+locking, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, product.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select product")
	}
	return row.toDomain(), nil
}

func (t *tx) ActiveProducts(ctx context.Context) ([]*product.Product, error) {
	var rows []productRow
	err := t.tx.SelectContext(ctx, &rows,
		"SELECT "+productColumns+" FROM products WHERE is_deleted = 0 ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "select products")
	}
	out := make([]*product.Product, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (t *tx) UpdateProduct(ctx context.Context, p *product.Product) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE products SET name = ?, description = ?, price = ?, quantity = ?, updated_at = ? WHERE product_id = ? AND is_deleted = 0",
		p.Name, p.Description, p.Price, p.Quantity, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return errors.Wrap(err, "update product")
	}
	return noneAffected(res, product.ErrNotFound)
}

func (t *tx) SoftDeleteProduct(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE products SET is_deleted = 1 WHERE product_id = ? AND is_deleted = 0", id)
	if err != nil {
		return errors.Wrap(err, "soft delete product")
	}
	return noneAffected(res, product.ErrNotFound)
}

// DecrementStock never drives quantity below zero: the guard in the WHERE
// clause turns a lost race into ErrInsufficientStock instead of an oversell.
// Callers have already established the product exists in this transaction.
func (t *tx) DecrementStock(ctx context.Context, id string, quantity int) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE products SET quantity = quantity - ? WHERE product_id = ? AND is_deleted = 0 AND quantity >= ?",
		quantity, id, quantity,
	)
	if err != nil {
		return errors.Wrap(err, "decrement stock")
	}
	return noneAffected(res, product.ErrInsufficientStock)
}

func (t *tx) InsertCustomer(ctx context.Context, c *customer.Customer) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO customers (customer_id, name, email, address, created_at) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Name, c.Email, c.Address, c.CreatedAt,
	)
	return errors.Wrap(err, "insert customer")
}

const customerColumns = "customer_id, name, email, address, created_at"

func (t *tx) Customer(ctx context.Context, id string) (*customer.Customer, error) {
	var row customerRow
	err := t.tx.GetContext(ctx, &row,
		"SELECT "+customerColumns+" FROM customers WHERE customer_id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customer.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select customer")
	}
	return row.toDomain(), nil
}

func (t *tx) Customers(ctx context.Context) ([]*customer.Customer, error) {
	var rows []customerRow
	err := t.tx.SelectContext(ctx, &rows,
		"SELECT "+customerColumns+" FROM customers ORDER BY created_at")
	if err != nil {
		return nil, errors.Wrap(err, "select customers")
	}
	out := make([]*customer.Customer, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (t *tx) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE customers SET name = ?, email = ?, address = ? WHERE customer_id = ?",
		c.Name, c.Email, c.Address, c.ID,
	)
	if err != nil {
		return errors.Wrap(err, "update customer")
	}
	return noneAffected(res, customer.ErrNotFound)
}

func noneAffected(res sql.Result, sentinel error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return sentinel
	}
	return nil
}

// Package catalog is the product-management collaborator. It has no
// cross-entity invariants; it maintains the rows the stock ledger reads.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storelane/fulfillment/internal/domain/product"
	"github.com/storelane/fulfillment/internal/pkg/logging"
	"github.com/storelane/fulfillment/internal/storage"
)

type IDGenerator interface {
	NewID() string
}

type Service struct {
	store storage.Store
	ids   IDGenerator
}

func NewService(store storage.Store, ids IDGenerator) *Service {
	return &Service{store: store, ids: ids}
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*product.Product, error) {
	entity, err := product.New(s.ids.NewID(), input.Name, input.Description, input.Price, input.Quantity)
	if err != nil {
		return nil, err
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.InsertProduct(ctx, entity)
	})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("product_created",
		zap.String("product_id", entity.ID),
		zap.String("price", entity.Price.String()),
	)
	return entity, nil
}

// Product returns a non-deleted product.
func (s *Service) Product(ctx context.Context, id string) (*product.Product, error) {
	var out *product.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.ActiveProduct(ctx, id)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// Products lists all non-deleted products.
func (s *Service) Products(ctx context.Context) ([]*product.Product, error) {
	var out []*product.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		products, err := tx.ActiveProducts(ctx)
		if err != nil {
			return err
		}
		out = products
		return nil
	})
	return out, err
}

func (s *Service) UpdateProduct(ctx context.Context, id string, input ProductInput) (*product.Product, error) {
	entity, err := product.New(id, input.Name, input.Description, input.Price, input.Quantity)
	if err != nil {
		return nil, err
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if _, err := tx.ActiveProduct(ctx, id); err != nil {
			return err
		}
		return tx.UpdateProduct(ctx, entity)
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// DeleteProduct soft-deletes: the row stays for existing order items, but
// the product disappears from lookups and from new orders.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.SoftDeleteProduct(ctx, id)
	})
}

// Package customer is the customer-management collaborator.
package customer

import (
	"context"

	domain "github.com/storelane/fulfillment/internal/domain/customer"
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

type CustomerInput struct {
	Name    string
	Email   string
	Address string
}

func (s *Service) CreateCustomer(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	entity := domain.New(s.ids.NewID(), input.Name, input.Email, input.Address)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.InsertCustomer(ctx, entity)
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) Customer(ctx context.Context, id string) (*domain.Customer, error) {
	var out *domain.Customer
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		c, err := tx.Customer(ctx, id)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

func (s *Service) Customers(ctx context.Context) ([]*domain.Customer, error) {
	var out []*domain.Customer
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		customers, err := tx.Customers(ctx)
		if err != nil {
			return err
		}
		out = customers
		return nil
	})
	return out, err
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, input CustomerInput) (*domain.Customer, error) {
	var out *domain.Customer
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		existing, err := tx.Customer(ctx, id)
		if err != nil {
			return err
		}
		existing.Name = input.Name
		existing.Email = input.Email
		existing.Address = input.Address
		if err := tx.UpdateCustomer(ctx, existing); err != nil {
			return err
		}
		out = existing
		return nil
	})
	return out, err
}

package customer

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("customer: not found")

type Customer struct {
	ID        string
	Name      string
	Email     string
	Address   string
	CreatedAt time.Time
}

func New(id, name, email, address string) *Customer {
	return &Customer{
		ID:        id,
		Name:      name,
		Email:     email,
		Address:   address,
		CreatedAt: time.Now().UTC(),
	}
}

func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

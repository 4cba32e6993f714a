package customer

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("customer not found")

	ErrDuplicatePhoneNumber = errors.New("phone number already registered")
)

type CustomerRepository interface {
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	Exists(ctx context.Context, customerID int64) (bool, error)
}

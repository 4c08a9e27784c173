package domain

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the contract for the read-only product catalog
type ProductRepository interface {
	FindByID(ctx context.Context, id int) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
}

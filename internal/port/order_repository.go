package port

import (
	"context"

	"github.com/rl1809/workshop-parts/internal/core/domain"
)

type OrderRepository interface {
	// LoadOrders returns all non-draft orders, newest first
	LoadOrders(ctx context.Context) ([]domain.Order, error)

	// SaveOrders upserts orders together with their line items
	SaveOrders(ctx context.Context, orders []domain.Order) error

	// CreateOrder inserts a submitted order; fails if the id already exists
	CreateOrder(ctx context.Context, order domain.Order) error
}

package port

import (
	"context"
	"errors"

	"github.com/rl1809/workshop-parts/internal/core/domain"
)

type InventoryRepository interface {
	// LoadInventoryItems returns every stored item ordered by code
	LoadInventoryItems(ctx context.Context) ([]domain.InventoryItem, error)

	// SaveInventoryItems upserts the given items
	SaveInventoryItems(ctx context.Context, items []domain.InventoryItem) error

	// GetInventoryItem returns nil when the item does not exist
	GetInventoryItem(ctx context.Context, id string) (*domain.InventoryItem, error)

	// CreateInventoryItem inserts a finalised item
	CreateInventoryItem(ctx context.Context, item domain.InventoryItem) error

	// UpdateInventoryItem updates an item with version check for optimistic locking
	UpdateInventoryItem(ctx context.Context, item domain.InventoryItem) error
}

// ErrOptimisticLock is returned by UpdateInventoryItem when the stored version
// no longer matches.
var ErrOptimisticLock = errors.New("optimistic lock conflict")

package port

import (
	"context"

	"github.com/rl1809/workshop-parts/internal/core/domain"
)

type DraftRepository interface {
	// LoadCurrentDraftOrder returns nil when no draft is in progress
	LoadCurrentDraftOrder(ctx context.Context) (*domain.Order, error)

	// SaveCurrentDraftOrder stores the draft; nil clears it
	SaveCurrentDraftOrder(ctx context.Context, order *domain.Order) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency removes a key set by SetIdempotency
	ReleaseIdempotency(ctx context.Context, key string) error
}

package repositories

import (
	"context"

	"scholarship-fund.backend/internal/domain/entities"
)

// RegistryStateRepository stores the singleton registry row.
// Get returns ErrNotFound before the registry has been created.
type RegistryStateRepository interface {
	Get(ctx context.Context) (*entities.RegistryState, error)
	Create(ctx context.Context, state *entities.RegistryState) error
	Update(ctx context.Context, state *entities.RegistryState) error
}

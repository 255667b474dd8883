package port

import (
	"context"

	"roloApp/internal/modules/locations/domain"
)

// LocationRepository is the persistence contract for locations. FindAll
// returns locations newest first.
type LocationRepository interface {
	Create(ctx context.Context, location *domain.Location) error
	FindByID(ctx context.Context, id string) (*domain.Location, error)
	FindAll(ctx context.Context) ([]domain.Location, error)
	Update(ctx context.Context, location *domain.Location) error
	Delete(ctx context.Context, id string) error
}

package port

import (
	"context"

	"roloApp/internal/modules/posts/domain"
)

// PostRepository is the persistence contract for posts. FindAll returns posts
// newest first.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	FindAll(ctx context.Context) ([]domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id string) error
}

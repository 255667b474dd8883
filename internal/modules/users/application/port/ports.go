package port

import (
	"context"

	"roloApp/internal/modules/users/domain"
)

// UserRepository is the persistence contract for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
}

// Identity is what the third-party credential verifier yields for a valid token.
type Identity struct {
	Subject       string
	Email         string
	Name          string
	AvatarURL     string
	EmailVerified bool
}

// CredentialVerifier validates a third-party identity token (Google ID token).
type CredentialVerifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

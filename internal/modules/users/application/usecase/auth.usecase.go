package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"roloApp/internal/modules/users/application/port"
	"roloApp/internal/modules/users/domain"
	"roloApp/internal/shared/apperrors"
	"roloApp/internal/shared/auth"
)

// AuthResult pairs the account with a freshly issued session token.
type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthUseCase covers registration, email/password login and the Google
// sign-in flow, which handles both first sign-in and returning accounts.
type AuthUseCase struct {
	users    port.UserRepository
	verifier port.CredentialVerifier
	tokens   auth.TokenIssuer
	now      func() time.Time
}

func NewAuthUseCase(users port.UserRepository, verifier port.CredentialVerifier, tokens auth.TokenIssuer) *AuthUseCase {
	return &AuthUseCase{users: users, verifier: verifier, tokens: tokens, now: time.Now}
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.Validationf("name, email and password are required")
	}

	if existing, err := uc.users.FindByEmail(ctx, email); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("lookup existing user: %w", err)
	} else if existing != nil {
		return nil, apperrors.Validationf("user already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleRegistered,
		AuthProvider: domain.ProviderEmail,
		CreatedAt:    uc.now().UTC(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return uc.issue(user)
}

func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, apperrors.Validationf("email and password are required")
	}
	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	// Google-only accounts carry no password hash and cannot use this flow.
	if user.PasswordHash == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return uc.issue(user)
}

// GoogleSignIn verifies the Google ID token and either creates an account on
// first sight or attaches the Google subject to an existing email account.
func (uc *AuthUseCase) GoogleSignIn(ctx context.Context, credential string) (*AuthResult, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, apperrors.Validationf("credential not provided")
	}
	identity, err := uc.verifier.Verify(ctx, credential)
	if err != nil {
		slog.Warn("google credential verification failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: google verification failed", apperrors.ErrUnauthenticated)
	}

	user, err := uc.users.FindByEmail(ctx, normalizeEmail(identity.Email))
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		user = &domain.User{
			ID:           uuid.NewString(),
			Name:         identity.Name,
			Email:        normalizeEmail(identity.Email),
			Role:         domain.RoleRegistered,
			Avatar:       identity.AvatarURL,
			AuthProvider: domain.ProviderGoogle,
			GoogleID:     identity.Subject,
			CreatedAt:    uc.now().UTC(),
		}
		if err := uc.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create google user: %w", err)
		}
		slog.Info("google user created", slog.String("userId", user.ID), slog.String("email", user.Email))
	case err != nil:
		return nil, fmt.Errorf("lookup user: %w", err)
	case user.GoogleID == "":
		user.GoogleID = identity.Subject
		if user.AuthProvider == "" {
			user.AuthProvider = domain.ProviderGoogle
		}
		if err := uc.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("attach google id: %w", err)
		}
	}
	return uc.issue(user)
}

func (uc *AuthUseCase) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return user, nil
}

func (uc *AuthUseCase) ListUsers(ctx context.Context) ([]domain.User, error) {
	return uc.users.List(ctx)
}

func (uc *AuthUseCase) issue(user *domain.User) (*AuthResult, error) {
	token, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

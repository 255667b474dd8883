package infrastructure

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"

	"roloApp/internal/modules/users/application/port"
)

// GoogleVerifier validates Google ID tokens against the configured OAuth client id.
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*port.Identity, error) {
	payload, err := v.validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate google id token: %w", err)
	}
	if strings.TrimSpace(payload.Subject) == "" {
		return nil, fmt.Errorf("google id token has no subject")
	}
	return &port.Identity{
		Subject:       payload.Subject,
		Email:         claimString(payload, "email"),
		Name:          claimString(payload, "name"),
		AvatarURL:     claimString(payload, "picture"),
		EmailVerified: claimBool(payload, "email_verified"),
	}, nil
}

func claimString(payload *idtoken.Payload, key string) string {
	if v, ok := payload.Claims[key].(string); ok {
		return v
	}
	return ""
}

func claimBool(payload *idtoken.Payload, key string) bool {
	if v, ok := payload.Claims[key].(bool); ok {
		return v
	}
	return false
}

var _ port.CredentialVerifier = (*GoogleVerifier)(nil)

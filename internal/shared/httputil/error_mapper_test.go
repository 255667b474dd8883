package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"roloApp/internal/shared/apperrors"
	"roloApp/internal/shared/auth"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable},
		{"unauthenticated", apperrors.ErrUnauthenticated, http.StatusUnauthorized},
		{"missing token", auth.ErrMissingToken, http.StatusUnauthorized},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden},
		{"validation", apperrors.Validationf("title is required"), http.StatusBadRequest},
		{"not found", apperrors.NotFoundf("post p1 not found"), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load post: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("mongo: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := MapError(tc.err); got.Status != tc.want {
				t.Errorf("MapError(%v).Status = %d, want %d", tc.err, got.Status, tc.want)
			}
		})
	}
}

func TestMapError_ValidationMessageSurfaces(t *testing.T) {
	t.Parallel()

	info := MapError(apperrors.Validationf("coordinates out of range"))
	if !strings.Contains(info.Message, "coordinates out of range") {
		t.Errorf("validation reason lost: %q", info.Message)
	}
}

func TestMapError_InternalDetailsDoNotLeak(t *testing.T) {
	t.Parallel()

	info := MapError(errors.New("dial tcp 10.0.0.5:27017: i/o timeout"))
	if strings.Contains(info.Message, "27017") {
		t.Errorf("collaborator details leaked: %q", info.Message)
	}
}

package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err      *AppError
		wantHTTP int
		wantGRPC codes.Code
	}{
		{BadRequest("x"), http.StatusBadRequest, codes.InvalidArgument},
		{Unauthorized("x"), http.StatusUnauthorized, codes.Unauthenticated},
		{Forbidden("x"), http.StatusForbidden, codes.PermissionDenied},
		{NotFound("x"), http.StatusNotFound, codes.NotFound},
		{InvalidTransition("x"), http.StatusConflict, codes.FailedPrecondition},
		{Conflict("x"), http.StatusConflict, codes.Aborted},
		{Internal("x"), http.StatusInternalServerError, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Kind()), func(t *testing.T) {
			assert.Equal(t, tt.wantHTTP, tt.err.StatusCode())
			assert.Equal(t, tt.wantGRPC, tt.err.GRPCCode())
		})
	}
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("boom")
	appErr := From(cause)
	assert.Equal(t, KindInternal, appErr.Kind())
	assert.ErrorIs(t, appErr, cause)

	wrapped := fmt.Errorf("outer: %w", NotFound("order not found"))
	assert.Equal(t, KindNotFound, From(wrapped).Kind())
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(cause, KindNotFound))
	assert.Nil(t, From(nil))
}

func TestDetails(t *testing.T) {
	err := InvalidTransition("order cannot be submitted",
		WithDetail("status", "approved"),
		WithDetails(map[string]any{"action": "submit"}),
	)
	assert.Equal(t, map[string]any{"status": "approved", "action": "submit"}, err.Details())
	assert.Equal(t, "order cannot be submitted", err.Error())
}

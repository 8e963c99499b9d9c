package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelprocure/procure/pkg/errorbank"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Kind    string         `json:"kind"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
	Meta map[string]any `json:"meta"`
}

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestBuildSuccess(t *testing.T) {
	c, rec := newContext()
	c.Response().Header().Set(echo.HeaderXRequestID, "req-1")

	require.NoError(t, New(c).WithStatus(http.StatusCreated).WithData(map[string]int{"id": 7}).Build())

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"id":7}`, string(env.Data))
	assert.Equal(t, "req-1", env.Meta["requestId"])
}

func TestCreatedSetsLocation(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, New(c).Created("/api/orders/12", map[string]int{"id": 12}).Build())

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/orders/12", rec.Header().Get(echo.HeaderLocation))
	assert.JSONEq(t, `{"id":12}`, string(decode(t, rec).Data))
}

func TestBuildErrorStatusFromKind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", errorbank.BadRequest("name is required"), http.StatusBadRequest, "bad_request"},
		{"missing", errorbank.NotFound("order not found"), http.StatusNotFound, "not_found"},
		{"transition", errorbank.InvalidTransition("order cannot approve from status draft"), http.StatusConflict, "invalid_transition"},
		{"forbidden", errorbank.Forbidden("access denied"), http.StatusForbidden, "forbidden"},
		{"plain error", errors.New("socket closed"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext()
			require.NoError(t, New(c).WithError(tt.err).Build())

			assert.Equal(t, tt.status, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.kind, env.Error.Kind)
		})
	}
}

func TestInternalCauseIsHidden(t *testing.T) {
	c, rec := newContext()
	cause := errors.New("pq: connection refused")

	require.NoError(t, New(c).WithError(errorbank.Internal("failed to load order", errorbank.WithCause(cause))).Build())

	assert.NotContains(t, rec.Body.String(), "connection refused")
	stored, ok := c.Get(CauseKey).(error)
	require.True(t, ok)
	assert.ErrorIs(t, stored, cause)
}

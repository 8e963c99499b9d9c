package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/internal/presentation/http/identity"
	service "github.com/hotelprocure/procure/internal/service/order"
	"github.com/hotelprocure/procure/pkg/errorbank"
	"github.com/hotelprocure/procure/pkg/money"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Create(ctx context.Context, actorID int64, in service.CreateInput) (*entity.Order, error) {
	args := m.Called(ctx, actorID, in)
	o, _ := args.Get(0).(*entity.Order)
	return o, args.Error(1)
}

func (m *mockService) Get(ctx context.Context, id int64) (*entity.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*entity.Order)
	return o, args.Error(1)
}

func (m *mockService) ListMine(ctx context.Context, actorID int64, status string) ([]*entity.Order, error) {
	args := m.Called(ctx, actorID, status)
	o, _ := args.Get(0).([]*entity.Order)
	return o, args.Error(1)
}

func (m *mockService) Pending(ctx context.Context) ([]*entity.Order, error) {
	args := m.Called(ctx)
	o, _ := args.Get(0).([]*entity.Order)
	return o, args.Error(1)
}

func (m *mockService) Submit(ctx context.Context, actorID, id int64) (*entity.Order, error) {
	args := m.Called(ctx, actorID, id)
	o, _ := args.Get(0).(*entity.Order)
	return o, args.Error(1)
}

func (m *mockService) Approve(ctx context.Context, actorID, id int64) (*entity.Order, error) {
	args := m.Called(ctx, actorID, id)
	o, _ := args.Get(0).(*entity.Order)
	return o, args.Error(1)
}

func (m *mockService) Reject(ctx context.Context, actorID, id int64) (*entity.Order, error) {
	args := m.Called(ctx, actorID, id)
	o, _ := args.Get(0).(*entity.Order)
	return o, args.Error(1)
}

type envelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Error   struct {
		Kind string `json:"kind"`
	} `json:"error"`
}

func newServer(svc Service) *echo.Echo {
	e := echo.New()
	e.Use(identity.Middleware())
	Register(e, NewHandler(svc))
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body, user string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if user != "" {
		req.Header.Set(identity.Header, user)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestCreateOrder(t *testing.T) {
	svc := new(mockService)
	svc.On("Create", mock.Anything, int64(5), service.CreateInput{
		BranchID: 1,
		Priority: "high",
		Items:    []service.ItemInput{{OfferID: 3, Quantity: 2}},
	}).Return(&entity.Order{
		ID: 10, OrderNumber: "OBJ-2026-010", Status: entity.StatusDraft,
		Priority: entity.PriorityHigh, TotalAmount: money.MustParse("240.00"), Currency: "CZK",
	}, nil)

	code, env := do(t, newServer(svc), http.MethodPost, "/api/orders",
		`{"branchId":1,"priority":"high","items":[{"productOfferId":3,"quantity":2}]}`, "5")

	assert.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)
	assert.Equal(t, "OBJ-2026-010", env.Data["orderNumber"])
	assert.Equal(t, "240.00", env.Data["totalAmount"])
	svc.AssertExpectations(t)
}

func TestCreateOrderMalformedBody(t *testing.T) {
	code, env := do(t, newServer(new(mockService)), http.MethodPost, "/api/orders", `{"branchId":`, "5")

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "bad_request", env.Error.Kind)
}

func TestApproveInvalidTransition(t *testing.T) {
	svc := new(mockService)
	svc.On("Approve", mock.Anything, int64(5), int64(9)).
		Return(nil, errorbank.InvalidTransition("order cannot approve from status draft"))

	code, env := do(t, newServer(svc), http.MethodPost, "/api/orders/9/approve", "", "5")

	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid_transition", env.Error.Kind)
}

func TestGetOrderBadID(t *testing.T) {
	code, env := do(t, newServer(new(mockService)), http.MethodGet, "/api/orders/abc", "", "")

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "bad_request", env.Error.Kind)
}

func TestPendingRouteIsNotAnID(t *testing.T) {
	svc := new(mockService)
	svc.On("Pending", mock.Anything).Return([]*entity.Order{{ID: 1, Status: entity.StatusSubmitted}}, nil)

	code, env := do(t, newServer(svc), http.MethodGet, "/api/orders/pending", "", "5")

	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, env.Data["total"])
	svc.AssertExpectations(t)
}

func TestListPassesActorAndStatus(t *testing.T) {
	svc := new(mockService)
	svc.On("ListMine", mock.Anything, int64(0), "submitted").Return(nil, errorbank.Unauthorized("acting user is required"))

	code, env := do(t, newServer(svc), http.MethodGet, "/api/orders?status=submitted", "", "")

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", env.Error.Kind)
}

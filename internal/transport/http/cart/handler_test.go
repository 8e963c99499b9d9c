package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/internal/presentation/http/identity"
	service "github.com/hotelprocure/procure/internal/service/cart"
	"github.com/hotelprocure/procure/pkg/money"
)

type recordingService struct {
	user     int64
	offer    int64
	quantity int
	checkout service.CheckoutInput
}

func (r *recordingService) view() *service.View {
	offer := &entity.ProductOffer{ID: r.offer, Price: money.MustParse("10.50"), Currency: "CZK"}
	return &service.View{
		Items: []service.Item{{Offer: offer, Quantity: r.quantity, UnitPrice: offer.Price, TotalPrice: offer.Price.MulInt(r.quantity)}},
		Total: offer.Price.MulInt(r.quantity),
	}
}

func (r *recordingService) Get(_ context.Context, userID int64) (*service.View, error) {
	r.user = userID
	return &service.View{Total: money.Zero()}, nil
}

func (r *recordingService) Add(_ context.Context, userID, offerID int64, quantity int) (*service.View, error) {
	r.user, r.offer, r.quantity = userID, offerID, quantity
	return r.view(), nil
}

func (r *recordingService) Update(_ context.Context, userID, offerID int64, quantity int) (*service.View, error) {
	r.user, r.offer, r.quantity = userID, offerID, quantity
	return r.view(), nil
}

func (r *recordingService) Remove(_ context.Context, userID, offerID int64) (*service.View, error) {
	r.user, r.offer = userID, offerID
	return &service.View{Total: money.Zero()}, nil
}

func (r *recordingService) Clear(_ context.Context, userID int64) error {
	r.user = userID
	return nil
}

func (r *recordingService) Checkout(_ context.Context, userID int64, in service.CheckoutInput) (*entity.Order, error) {
	r.user, r.checkout = userID, in
	return &entity.Order{ID: 1, OrderNumber: "OBJ-2026-001", Status: entity.StatusDraft, TotalAmount: money.Zero()}, nil
}

func serve(svc Service, method, path, body string) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(identity.Middleware())
	Register(e, NewHandler(svc))

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(identity.Header, "12")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAddDefaultsQuantity(t *testing.T) {
	svc := &recordingService{}

	rec := serve(svc, http.MethodPost, "/api/cart/add", `{"productOfferId":4}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(12), svc.user)
	assert.Equal(t, int64(4), svc.offer)
	assert.Equal(t, 1, svc.quantity)
	assert.Contains(t, rec.Body.String(), `"total":"10.50"`)
}

func TestUpdateKeepsExplicitZero(t *testing.T) {
	svc := &recordingService{}

	rec := serve(svc, http.MethodPut, "/api/cart/update", `{"productOfferId":4,"quantity":0}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, svc.quantity)
}

func TestRemoveAndCheckout(t *testing.T) {
	svc := &recordingService{}

	rec := serve(svc, http.MethodDelete, "/api/cart/remove/9", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(9), svc.offer)

	rec = serve(svc, http.MethodPost, "/api/cart/checkout", `{"branchId":2,"priority":"low"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/orders/1", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, service.CheckoutInput{BranchID: 2, Priority: "low"}, svc.checkout)
}

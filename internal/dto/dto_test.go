package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/pkg/money"
)

func TestOrderResponseJSON(t *testing.T) {
	created := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	o := &entity.Order{
		ID:          3,
		OrderNumber: "OBJ-2026-003",
		Status:      entity.StatusSubmitted,
		Priority:    entity.PriorityHigh,
		TotalAmount: money.MustParse("479.70"),
		Currency:    "CZK",
		CreatedAt:   created,
		Branch:      &entity.Branch{ID: 1, Name: "Hotel Vltava", Organization: &entity.Organization{ID: 1, Name: "Hotely Praha"}},
		CreatedBy:   &entity.User{ID: 2, Name: "Jana"},
		Items: []*entity.OrderItem{{
			ID: 8, ProductOfferID: 5, Quantity: 3,
			UnitPrice:  money.MustParse("159.90"),
			TotalPrice: money.MustParse("479.70"),
			ProductOffer: &entity.ProductOffer{
				ID:       5,
				Product:  &entity.Product{ID: 4, Name: "Hovězí svíčková", Unit: "kg"},
				Supplier: &entity.Supplier{ID: 1, Name: "Makro"},
			},
		}},
	}

	raw, err := json.Marshal(NewOrderResponse(o))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "OBJ-2026-003", decoded["orderNumber"])
	assert.Equal(t, "479.70", decoded["totalAmount"])
	assert.EqualValues(t, 3, decoded["itemCount"])
	assert.Nil(t, decoded["approvedAt"])
	assert.Nil(t, decoded["approvedBy"])

	items := decoded["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "159.90", item["unitPrice"])
	assert.Equal(t, "Makro", item["supplier"].(map[string]any)["name"])
	assert.Equal(t, "Hotely Praha", decoded["branch"].(map[string]any)["organization"].(map[string]any)["name"])
}

func TestProductResponseBestPrice(t *testing.T) {
	p := &entity.Product{
		ID: 1, Name: "Kuřecí prsa", Unit: "kg",
		Offers: []*entity.ProductOffer{
			{ID: 1, Price: money.MustParse("189.00"), Currency: "CZK", IsActive: true},
			{ID: 2, Price: money.MustParse("99.00"), Currency: "CZK", IsActive: false},
			{ID: 3, Price: money.MustParse("175.50"), Currency: "CZK", IsActive: true},
		},
	}

	resp := NewProductResponse(p, "CZK")
	assert.Len(t, resp.Offers, 2)
	require.NotNil(t, resp.BestPrice)
	assert.Equal(t, "175.50", resp.BestPrice.String())

	empty := NewProductResponse(&entity.Product{ID: 2, Name: "Tuňák"}, "CZK")
	assert.Nil(t, empty.BestPrice)
	assert.Equal(t, "CZK", empty.Currency)
	assert.NotNil(t, empty.Offers)
}

func TestCartResponseNil(t *testing.T) {
	resp := NewCartResponse(nil)
	assert.Empty(t, resp.Items)
	assert.Equal(t, "0.00", resp.Total.String())
}

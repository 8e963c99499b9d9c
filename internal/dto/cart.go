package dto

import (
	cartsvc "github.com/hotelprocure/procure/internal/service/cart"
	"github.com/hotelprocure/procure/pkg/money"
)

// CartProduct is the product shown on a cart line.
type CartProduct struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Unit  string `json:"unit"`
	Image string `json:"image,omitempty"`
}

// CartItemResponse is a priced cart line.
type CartItemResponse struct {
	ProductOfferID int64        `json:"productOfferId"`
	Quantity       int          `json:"quantity"`
	UnitPrice      money.Money  `json:"unitPrice"`
	TotalPrice     money.Money  `json:"totalPrice"`
	Currency       string       `json:"currency"`
	Product        *CartProduct `json:"product,omitempty"`
	Supplier       *Ref         `json:"supplier,omitempty"`
}

// CartResponse is the hydrated cart.
type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	Total     money.Money        `json:"total"`
	ItemCount int                `json:"itemCount"`
}

// NewCartResponse maps a hydrated cart.
func NewCartResponse(v *cartsvc.View) CartResponse {
	resp := CartResponse{Items: make([]CartItemResponse, 0), Total: money.Zero()}
	if v == nil {
		return resp
	}
	resp.Total = v.Total
	for _, item := range v.Items {
		line := CartItemResponse{
			ProductOfferID: item.Offer.ID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			TotalPrice:     item.TotalPrice,
			Currency:       item.Offer.Currency,
		}
		if p := item.Offer.Product; p != nil {
			line.Product = &CartProduct{ID: p.ID, Name: p.Name, Unit: p.Unit, Image: p.Image}
		}
		if s := item.Offer.Supplier; s != nil {
			line.Supplier = &Ref{ID: s.ID, Name: s.Name}
		}
		resp.Items = append(resp.Items, line)
	}
	resp.ItemCount = len(resp.Items)
	return resp
}

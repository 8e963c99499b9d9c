package dto

import (
	"github.com/hotelprocure/procure/internal/catalog"
	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/pkg/money"
)

// OfferResponse is one supplier's active price for a product.
type OfferResponse struct {
	ID       int64       `json:"id"`
	Price    money.Money `json:"price"`
	Currency string      `json:"currency"`
	SKU      string      `json:"sku,omitempty"`
	Supplier *Ref        `json:"supplier,omitempty"`
}

// ProductResponse is a product with its active offers and best price.
type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Unit        string          `json:"unit"`
	Image       string          `json:"image,omitempty"`
	Category    *Ref            `json:"category,omitempty"`
	Offers      []OfferResponse `json:"offers"`
	BestPrice   *money.Money    `json:"bestPrice"`
	Currency    string          `json:"currency"`
}

// ProductListResponse wraps a list of products with its size.
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
}

// CategoriesResponse is the category tree.
type CategoriesResponse struct {
	Categories []catalog.Summary `json:"categories"`
}

// NewProductResponse maps p, listing active offers only. currency is used when no offer exists.
func NewProductResponse(p *entity.Product, currency string) ProductResponse {
	active := catalog.ActiveOffers(p.Offers)
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Unit:        p.Unit,
		Image:       p.Image,
		Offers:      make([]OfferResponse, 0, len(active)),
		Currency:    currency,
	}
	if p.Category != nil {
		resp.Category = &Ref{ID: p.Category.ID, Name: p.Category.Name}
	}
	for _, o := range active {
		offer := OfferResponse{ID: o.ID, Price: o.Price, Currency: o.Currency, SKU: o.SKU}
		if o.Supplier != nil {
			offer.Supplier = &Ref{ID: o.Supplier.ID, Name: o.Supplier.Name}
		}
		resp.Offers = append(resp.Offers, offer)
	}
	if best := catalog.BestOffer(active); best != nil {
		price := best.Price
		resp.BestPrice = &price
		resp.Currency = best.Currency
	}
	return resp
}

// NewProductListResponse maps a list of products.
func NewProductListResponse(products []*entity.Product, currency string) ProductListResponse {
	out := ProductListResponse{Products: make([]ProductResponse, 0, len(products)), Total: len(products)}
	for _, p := range products {
		out.Products = append(out.Products, NewProductResponse(p, currency))
	}
	return out
}

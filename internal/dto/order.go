package dto

import (
	"time"

	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/pkg/money"
)

// Ref is a compact reference to a related record.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BranchRef references a branch and its organization.
type BranchRef struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Organization *Ref   `json:"organization,omitempty"`
}

// OrderItemProduct is the product shown on an order line.
type OrderItemProduct struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// OrderItemResponse is one order line.
type OrderItemResponse struct {
	ID             int64             `json:"id"`
	ProductOfferID int64             `json:"productOfferId"`
	Quantity       int               `json:"quantity"`
	UnitPrice      money.Money       `json:"unitPrice"`
	TotalPrice     money.Money       `json:"totalPrice"`
	Product        *OrderItemProduct `json:"product,omitempty"`
	Supplier       *Ref              `json:"supplier,omitempty"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID          int64               `json:"id"`
	OrderNumber string              `json:"orderNumber"`
	Status      string              `json:"status"`
	Priority    string              `json:"priority"`
	TotalAmount money.Money         `json:"totalAmount"`
	Currency    string              `json:"currency"`
	ItemCount   int                 `json:"itemCount"`
	Note        string              `json:"note,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	SubmittedAt *time.Time          `json:"submittedAt"`
	ApprovedAt  *time.Time          `json:"approvedAt"`
	Branch      *BranchRef          `json:"branch,omitempty"`
	CreatedBy   *Ref                `json:"createdBy,omitempty"`
	ApprovedBy  *Ref                `json:"approvedBy,omitempty"`
	Items       []OrderItemResponse `json:"items"`
}

// OrderListResponse wraps a list of orders with its size.
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}

func userRef(u *entity.User) *Ref {
	if u == nil {
		return nil
	}
	return &Ref{ID: u.ID, Name: u.Name}
}

// NewBranchRef references b with its organization when loaded.
func NewBranchRef(b *entity.Branch) *BranchRef {
	if b == nil {
		return nil
	}
	ref := &BranchRef{ID: b.ID, Name: b.Name}
	if b.Organization != nil {
		ref.Organization = &Ref{ID: b.Organization.ID, Name: b.Organization.Name}
	}
	return ref
}

// NewOrderResponse maps an order with whatever relations were loaded.
func NewOrderResponse(o *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		Priority:    string(o.Priority),
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
		ItemCount:   o.ItemCount(),
		Note:        o.Note,
		CreatedAt:   o.CreatedAt,
		SubmittedAt: o.SubmittedAt,
		ApprovedAt:  o.ApprovedAt,
		Branch:      NewBranchRef(o.Branch),
		CreatedBy:   userRef(o.CreatedBy),
		ApprovedBy:  userRef(o.ApprovedBy),
		Items:       make([]OrderItemResponse, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		line := OrderItemResponse{
			ID:             item.ID,
			ProductOfferID: item.ProductOfferID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			TotalPrice:     item.TotalPrice,
		}
		if offer := item.ProductOffer; offer != nil {
			if offer.Product != nil {
				line.Product = &OrderItemProduct{ID: offer.Product.ID, Name: offer.Product.Name, Unit: offer.Product.Unit}
			}
			if offer.Supplier != nil {
				line.Supplier = &Ref{ID: offer.Supplier.ID, Name: offer.Supplier.Name}
			}
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

// NewOrderListResponse maps a list of orders.
func NewOrderListResponse(orders []*entity.Order) OrderListResponse {
	out := OrderListResponse{Orders: make([]OrderResponse, 0, len(orders)), Total: len(orders)}
	for _, o := range orders {
		out.Orders = append(out.Orders, NewOrderResponse(o))
	}
	return out
}

package dto

import (
	"time"

	"github.com/hotelprocure/procure/internal/entity"
	suppliersvc "github.com/hotelprocure/procure/internal/service/supplier"
)

// SupplierResponse is a supplier with its stored counters.
type SupplierResponse struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Category       string     `json:"category,omitempty"`
	ProductCount   int        `json:"productCount"`
	OrdersPerMonth int        `json:"ordersPerMonth"`
	Status         string     `json:"status"`
	LastSyncAt     *time.Time `json:"lastSyncAt"`
	APIEndpoint    string     `json:"apiEndpoint,omitempty"`
}

// SupplierStats summarises supplier health.
type SupplierStats struct {
	Active     int `json:"active"`
	WithErrors int `json:"withErrors"`
	Total      int `json:"total"`
}

// SupplierListResponse lists suppliers with their stats.
type SupplierListResponse struct {
	Suppliers []SupplierResponse `json:"suppliers"`
	Stats     SupplierStats      `json:"stats"`
}

// NewSupplierResponse maps a supplier.
func NewSupplierResponse(s *entity.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:             s.ID,
		Name:           s.Name,
		Category:       s.Category,
		ProductCount:   s.ProductCount,
		OrdersPerMonth: s.OrdersPerMonth,
		Status:         s.Status,
		LastSyncAt:     s.LastSyncAt,
		APIEndpoint:    s.APIEndpoint,
	}
}

// NewSupplierListResponse maps suppliers and their stats.
func NewSupplierListResponse(suppliers []*entity.Supplier, stats suppliersvc.Stats) SupplierListResponse {
	out := SupplierListResponse{
		Suppliers: make([]SupplierResponse, 0, len(suppliers)),
		Stats:     SupplierStats{Active: stats.Active, WithErrors: stats.WithErrors, Total: stats.Total},
	}
	for _, s := range suppliers {
		out.Suppliers = append(out.Suppliers, NewSupplierResponse(s))
	}
	return out
}

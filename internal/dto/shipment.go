package dto

import (
	"time"

	"github.com/hotelprocure/procure/internal/entity"
)

// ShipmentOrder is the order summary shown on a shipment.
type ShipmentOrder struct {
	ID          int64      `json:"id"`
	OrderNumber string     `json:"orderNumber"`
	Status      string     `json:"status"`
	Branch      *BranchRef `json:"branch,omitempty"`
}

// ShipmentResponse is a shipment.
type ShipmentResponse struct {
	ID             int64          `json:"id"`
	OrderNumber    string         `json:"orderNumber"`
	TrackingNumber string         `json:"trackingNumber"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      *time.Time     `json:"updatedAt"`
	DeliveredAt    *time.Time     `json:"deliveredAt"`
	Order          *ShipmentOrder `json:"order,omitempty"`
}

// ShipmentListResponse lists shipments with their count.
type ShipmentListResponse struct {
	Shipments []ShipmentResponse `json:"shipments"`
	Total     int                `json:"total"`
}

// NewShipmentResponse maps a shipment.
func NewShipmentResponse(sh *entity.Shipment) ShipmentResponse {
	resp := ShipmentResponse{
		ID:             sh.ID,
		OrderNumber:    sh.OrderNumber,
		TrackingNumber: sh.TrackingNumber,
		CreatedAt:      sh.CreatedAt,
		UpdatedAt:      sh.UpdatedAt,
		DeliveredAt:    sh.DeliveredAt,
	}
	if o := sh.Order; o != nil {
		resp.Order = &ShipmentOrder{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			Status:      string(o.Status),
			Branch:      NewBranchRef(o.Branch),
		}
	}
	return resp
}

// NewShipmentListResponse maps shipments.
func NewShipmentListResponse(shipments []*entity.Shipment) ShipmentListResponse {
	out := ShipmentListResponse{Shipments: make([]ShipmentResponse, 0, len(shipments)), Total: len(shipments)}
	for _, sh := range shipments {
		out.Shipments = append(out.Shipments, NewShipmentResponse(sh))
	}
	return out
}

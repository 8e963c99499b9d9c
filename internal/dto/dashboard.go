package dto

import (
	"github.com/hotelprocure/procure/internal/entity"
	reportsvc "github.com/hotelprocure/procure/internal/service/report"
	"github.com/hotelprocure/procure/pkg/money"
)

// DashboardStats are the headline dashboard figures.
type DashboardStats struct {
	TotalOrders     int         `json:"totalOrders"`
	TotalAmount     money.Money `json:"totalAmount"`
	PendingApproval int         `json:"pendingApproval"`
	ApprovedToday   int         `json:"approvedToday"`
	UrgentOrders    int         `json:"urgentOrders"`
}

// DashboardResponse is the landing page summary.
type DashboardResponse struct {
	Stats          DashboardStats             `json:"stats"`
	OrdersByStatus map[entity.OrderStatus]int `json:"ordersByStatus"`
	RecentOrders   []OrderResponse            `json:"recentOrders"`
	PendingOrders  []OrderResponse            `json:"pendingOrders"`
}

// NewDashboardResponse maps the dashboard.
func NewDashboardResponse(d *reportsvc.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		Stats: DashboardStats{
			TotalOrders:     d.Stats.TotalOrders,
			TotalAmount:     d.Stats.TotalAmount,
			PendingApproval: d.Stats.PendingApproval,
			ApprovedToday:   d.Stats.ApprovedToday,
			UrgentOrders:    d.Stats.UrgentOrders,
		},
		OrdersByStatus: d.ByStatus,
		RecentOrders:   NewOrderListResponse(d.Recent).Orders,
		PendingOrders:  NewOrderListResponse(d.Pending).Orders,
	}
	if resp.OrdersByStatus == nil {
		resp.OrdersByStatus = map[entity.OrderStatus]int{}
	}
	return resp
}

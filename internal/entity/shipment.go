package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Shipment tracks the delivery of an order.
type Shipment struct {
	bun.BaseModel `bun:"table:shipments,alias:sh"`

	ID             int64      `bun:",pk,autoincrement"`
	OrderNumber    string     `bun:"order_number,nullzero"`
	TrackingNumber string     `bun:"tracking_number,nullzero"`
	OrderID        int64      `bun:"order_id,notnull"`
	Order          *Order     `bun:"rel:belongs-to,join:order_id=id"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt      *time.Time `bun:"updated_at"`
	DeliveredAt    *time.Time `bun:"delivered_at"`
}

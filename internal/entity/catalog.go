package entity

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/hotelprocure/procure/pkg/money"
)

// Supplier statuses.
const (
	SupplierActive  = "active"
	SupplierError   = "error"
	SupplierSyncing = "syncing"
)

// Category is a node of the product category tree. Root categories have no parent.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID       int64  `bun:",pk,autoincrement"`
	Name     string `bun:"name,notnull"`
	Icon     string `bun:"icon,nullzero"`
	ParentID *int64 `bun:"parent_id"`
}

// Product is a purchasable item; suppliers price it through offers.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          int64           `bun:",pk,autoincrement"`
	Name        string          `bun:"name,notnull"`
	Description string          `bun:"description,nullzero"`
	Unit        string          `bun:"unit,notnull"`
	Image       string          `bun:"image,nullzero"`
	CategoryID  int64           `bun:"category_id,notnull"`
	Category    *Category       `bun:"rel:belongs-to,join:category_id=id"`
	Offers      []*ProductOffer `bun:"rel:has-many,join:id=product_id"`
}

// ProductOffer is one supplier's price for one product.
type ProductOffer struct {
	bun.BaseModel `bun:"table:product_offers,alias:po"`

	ID         int64       `bun:",pk,autoincrement"`
	ProductID  int64       `bun:"product_id,notnull"`
	Product    *Product    `bun:"rel:belongs-to,join:product_id=id"`
	SupplierID int64       `bun:"supplier_id,notnull"`
	Supplier   *Supplier   `bun:"rel:belongs-to,join:supplier_id=id"`
	Price      money.Money `bun:"price,type:numeric(12,2),notnull"`
	Currency   string      `bun:"currency,notnull"`
	SKU        string      `bun:"sku,nullzero"`
	IsActive   bool        `bun:"is_active,notnull"`
}

// Supplier delivers products. ProductCount and OrdersPerMonth are stored counters,
// refreshed by the supplier stats worker and on sync.
type Supplier struct {
	bun.BaseModel `bun:"table:suppliers,alias:s"`

	ID             int64      `bun:",pk,autoincrement"`
	Name           string     `bun:"name,notnull"`
	Category       string     `bun:"category,nullzero"`
	ProductCount   int        `bun:"product_count,notnull"`
	OrdersPerMonth int        `bun:"orders_per_month,notnull"`
	Status         string     `bun:"status,notnull"`
	LastSyncAt     *time.Time `bun:"last_sync_at"`
	APIEndpoint    string     `bun:"api_endpoint,nullzero"`
}

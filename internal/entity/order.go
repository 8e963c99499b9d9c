package entity

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/uptrace/bun"

	"github.com/hotelprocure/procure/pkg/money"
)

// OrderStatus is a lifecycle state of an order.
type OrderStatus string

// Order statuses. Draft is the initial state.
const (
	StatusDraft     OrderStatus = "draft"
	StatusSubmitted OrderStatus = "submitted"
	StatusApproved  OrderStatus = "approved"
	StatusRejected  OrderStatus = "rejected"
	StatusOrdered   OrderStatus = "ordered"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected,
		StatusOrdered, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Priority is an advisory urgency tag; it never affects transitions.
type Priority string

// Priorities. Medium is the default.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority maps an empty value to medium and rejects unknown values.
func ParsePriority(v string) (Priority, error) {
	switch Priority(v) {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(v), nil
	default:
		return "", fmt.Errorf("unknown priority %q", v)
	}
}

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// Lifecycle actions.
const (
	ActionSubmit  = "submit"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionOrder   = "order"
	ActionDeliver = "deliver"
)

// ErrInvalidTransition is matched by every TransitionError.
var ErrInvalidTransition = errors.New("invalid order status transition")

// TransitionError describes a rejected lifecycle action.
type TransitionError struct {
	Action string
	From   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order cannot %s from status %s", e.Action, e.From)
}

// Is lets errors.Is match ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Order is a purchase order placed by a user for a branch.
// TotalAmount is derived from Items and is only changed through RecalculateTotal.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID           int64        `bun:",pk,autoincrement"`
	OrderNumber  string       `bun:"order_number,notnull,unique"`
	BranchID     int64        `bun:"branch_id,notnull"`
	Branch       *Branch      `bun:"rel:belongs-to,join:branch_id=id"`
	CreatedByID  int64        `bun:"created_by_id,notnull"`
	CreatedBy    *User        `bun:"rel:belongs-to,join:created_by_id=id"`
	Status       OrderStatus  `bun:"status,notnull"`
	Priority     Priority     `bun:"priority,notnull"`
	TotalAmount  money.Money  `bun:"total_amount,type:numeric(12,2),notnull"`
	Currency     string       `bun:"currency,notnull"`
	Note         string       `bun:"note,nullzero"`
	Items        []*OrderItem `bun:"rel:has-many,join:id=order_id"`
	CreatedAt    time.Time    `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	SubmittedAt  *time.Time   `bun:"submitted_at"`
	ApprovedAt   *time.Time   `bun:"approved_at"`
	ApprovedByID *int64       `bun:"approved_by_id"`
	ApprovedBy   *User        `bun:"rel:belongs-to,join:approved_by_id=id"`
}

// NewOrder returns an empty draft order.
func NewOrder(branch *Branch, creator *User, priority Priority, currency string, now time.Time) *Order {
	if currency == "" {
		currency = money.DefaultCurrency
	}
	if priority == "" {
		priority = PriorityMedium
	}
	o := &Order{
		Status:      StatusDraft,
		Priority:    priority,
		TotalAmount: money.Zero(),
		Currency:    currency,
		CreatedAt:   now,
	}
	if branch != nil {
		o.Branch = branch
		o.BranchID = branch.ID
	}
	if creator != nil {
		o.CreatedBy = creator
		o.CreatedByID = creator.ID
	}
	return o
}

// AddItem attaches an offer with the offer's current price as the snapshot unit price.
func (o *Order) AddItem(offer *ProductOffer, quantity int) *OrderItem {
	item := &OrderItem{
		ProductOfferID: offer.ID,
		ProductOffer:   offer,
	}
	item.SetUnitPrice(offer.Price)
	item.SetQuantity(quantity)
	o.Items = append(o.Items, item)
	o.RecalculateTotal()
	return item
}

// SetItemQuantity changes the quantity of the item at index i.
func (o *Order) SetItemQuantity(i, quantity int) {
	o.Items[i].SetQuantity(quantity)
	o.RecalculateTotal()
}

// RemoveItem drops the item at index i.
func (o *Order) RemoveItem(i int) {
	o.Items = append(o.Items[:i], o.Items[i+1:]...)
	o.RecalculateTotal()
}

// RecalculateTotal sets TotalAmount to the sum of the item totals.
func (o *Order) RecalculateTotal() {
	total := money.Zero()
	for _, item := range o.Items {
		total = money.Add(total, item.TotalPrice)
	}
	o.TotalAmount = total
}

// ItemCount is the number of line items.
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// SupplierIDs lists the distinct suppliers of loaded item offers in first-seen order.
func (o *Order) SupplierIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.Items))
	ids := make([]int64, 0, len(o.Items))
	for _, item := range o.Items {
		if item.ProductOffer == nil {
			continue
		}
		id := item.ProductOffer.SupplierID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// Submit moves a draft order to submitted.
func (o *Order) Submit(now time.Time) error {
	if o.Status != StatusDraft {
		return &TransitionError{Action: ActionSubmit, From: o.Status}
	}
	o.Status = StatusSubmitted
	o.SubmittedAt = &now
	return nil
}

// Approve moves a submitted order to approved and records the approver.
func (o *Order) Approve(approver *User, now time.Time) error {
	if o.Status != StatusSubmitted {
		return &TransitionError{Action: ActionApprove, From: o.Status}
	}
	if approver == nil {
		return errors.New("approver is required")
	}
	id := approver.ID
	o.Status = StatusApproved
	o.ApprovedAt = &now
	o.ApprovedByID = &id
	o.ApprovedBy = approver
	return nil
}

// Reject moves a submitted order to rejected.
func (o *Order) Reject() error {
	if o.Status != StatusSubmitted {
		return &TransitionError{Action: ActionReject, From: o.Status}
	}
	o.Status = StatusRejected
	return nil
}

// MarkOrdered records that an approved order was dispatched to its suppliers.
// It is a no-op for orders already marked ordered.
func (o *Order) MarkOrdered() error {
	switch o.Status {
	case StatusOrdered:
		return nil
	case StatusApproved:
		o.Status = StatusOrdered
		return nil
	default:
		return &TransitionError{Action: ActionOrder, From: o.Status}
	}
}

// MarkDelivered records delivery of an approved or ordered order.
func (o *Order) MarkDelivered() error {
	switch o.Status {
	case StatusApproved, StatusOrdered:
		o.Status = StatusDelivered
		return nil
	default:
		return &TransitionError{Action: ActionDeliver, From: o.Status}
	}
}

// SortPendingApproval orders by priority (high first), then by submission time, oldest first.
func SortPendingApproval(orders []*Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if ra, rb := a.Priority.rank(), b.Priority.rank(); ra != rb {
			return ra > rb
		}
		switch {
		case a.SubmittedAt == nil && b.SubmittedAt == nil:
		case a.SubmittedAt == nil:
			return false
		case b.SubmittedAt == nil:
			return true
		case !a.SubmittedAt.Equal(*b.SubmittedAt):
			return a.SubmittedAt.Before(*b.SubmittedAt)
		}
		return a.ID < b.ID
	})
}

// OrderItem is one line of an order. UnitPrice is a snapshot of the offer price
// taken when the item was attached; TotalPrice is always UnitPrice × Quantity.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID             int64         `bun:",pk,autoincrement"`
	OrderID        int64         `bun:"order_id,notnull"`
	ProductOfferID int64         `bun:"product_offer_id,notnull"`
	ProductOffer   *ProductOffer `bun:"rel:belongs-to,join:product_offer_id=id"`
	Quantity       int           `bun:"quantity,notnull"`
	UnitPrice      money.Money   `bun:"unit_price,type:numeric(12,2),notnull"`
	TotalPrice     money.Money   `bun:"total_price,type:numeric(12,2),notnull"`
	CreatedAt      time.Time     `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// SetQuantity updates the quantity and the line total.
func (i *OrderItem) SetQuantity(quantity int) {
	i.Quantity = quantity
	i.recalculate()
}

// SetUnitPrice updates the snapshot price and the line total.
func (i *OrderItem) SetUnitPrice(price money.Money) {
	i.UnitPrice = price
	i.recalculate()
}

func (i *OrderItem) recalculate() {
	i.TotalPrice = i.UnitPrice.MulInt(i.Quantity)
}

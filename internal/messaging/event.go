package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HeaderEventType carries the event type so consumers can route without decoding.
const HeaderEventType = "event-type"

// Order lifecycle event types.
const (
	EventOrderCreated      = "order.created"
	EventOrderSubmitted    = "order.submitted"
	EventOrderApproved     = "order.approved"
	EventOrderRejected     = "order.rejected"
	EventOrderOrdered      = "order.ordered"
	EventShipmentDelivered = "shipment.delivered"
)

// OrderEvent describes a change in an order's lifecycle.
type OrderEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	OrderID     int64     `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Status      string    `json:"status"`
	BranchID    int64     `json:"branchId"`
	SupplierIDs []int64   `json:"supplierIds"`
	TotalAmount string    `json:"totalAmount"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// NewOrderEvent stamps a fresh event id.
func NewOrderEvent(eventType string, occurredAt time.Time) OrderEvent {
	return OrderEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: occurredAt.UTC(),
	}
}

// Encode builds the bus message, keyed by order so one order's events stay ordered.
func (e OrderEvent) Encode() (Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	return Message{
		Key:     []byte(fmt.Sprintf("order-%d", e.OrderID)),
		Value:   payload,
		Headers: map[string]string{HeaderEventType: e.Type},
	}, nil
}

// DecodeOrderEvent parses a consumed message.
func DecodeOrderEvent(msg Message) (OrderEvent, error) {
	var e OrderEvent
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return OrderEvent{}, fmt.Errorf("decode order event: %w", err)
	}
	if e.Type == "" {
		e.Type = msg.Headers[HeaderEventType]
	}
	return e, nil
}

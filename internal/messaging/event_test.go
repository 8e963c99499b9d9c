package messaging

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderEventEncodeDecode(t *testing.T) {
	e := NewOrderEvent(EventOrderApproved, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))
	e.OrderID = 7
	e.OrderNumber = "OBJ-2026-007"
	e.SupplierIDs = []int64{3, 4}

	_, err := uuid.Parse(e.ID)
	require.NoError(t, err)

	msg, err := e.Encode()
	require.NoError(t, err)
	assert.Equal(t, "order-7", string(msg.Key))
	assert.Equal(t, EventOrderApproved, msg.Headers[HeaderEventType])

	decoded, err := DecodeOrderEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, []int64{3, 4}, decoded.SupplierIDs)
	assert.True(t, decoded.OccurredAt.Equal(e.OccurredAt))
}

func TestDecodeOrderEventFallsBackToHeader(t *testing.T) {
	decoded, err := DecodeOrderEvent(Message{
		Value:   []byte(`{"orderId":1}`),
		Headers: map[string]string{HeaderEventType: EventOrderCreated},
	})
	require.NoError(t, err)
	assert.Equal(t, EventOrderCreated, decoded.Type)

	_, err = DecodeOrderEvent(Message{Value: []byte(`{`)})
	assert.Error(t, err)
}

func TestKafkaHeaderConversion(t *testing.T) {
	assert.Nil(t, toKafkaHeaders(nil))
	assert.Nil(t, fromKafkaHeaders(nil))

	in := map[string]string{HeaderEventType: EventOrderSubmitted, "traceparent": "00-abc-def-01"}
	assert.Equal(t, in, fromKafkaHeaders(toKafkaHeaders(in)))
}

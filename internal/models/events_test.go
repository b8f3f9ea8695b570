package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderEvent(t *testing.T) {
	original := OrderEvent{
		EventID:   "ev-1",
		EventType: EventTypeOrderCreated,
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Order: Order{
			ID:          "o-1",
			UserID:      "u1",
			Username:    "alice",
			TotalAmount: 18.0,
			Status:      OrderStatusReceived,
			Items: []LineItem{
				{ProductID: "p1", Quantity: 2, Price: 9.0, Name: "Keyboard"},
			},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	parsed, err := ParseOrderEvent(data)
	require.NoError(t, err)
	assert.Equal(t, original.EventType, parsed.EventType)
	assert.Equal(t, "o-1", parsed.Order.ID)
	assert.Equal(t, 18.0, parsed.Order.TotalAmount)
	require.Len(t, parsed.Order.Items, 1)
	assert.Equal(t, "Keyboard", parsed.Order.Items[0].Name)
}

func TestParseOrderEventToleratesUnknownFields(t *testing.T) {
	payload := []byte(`{
		"event_type": "order_status_updated",
		"timestamp": "2024-03-01T12:00:00Z",
		"order": {"id": "o-2", "status": "confirmed"},
		"schema_version": 3,
		"producer": "some-future-service"
	}`)

	parsed, err := ParseOrderEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, EventTypeOrderStatusUpdated, parsed.EventType)
	assert.Equal(t, "confirmed", parsed.Order.Status)
}

func TestParseOrderEventRejectsMalformed(t *testing.T) {
	cases := map[string][]byte{
		"not json":     []byte(`{{{`),
		"missing type": []byte(`{"order": {"id": "o-3"}}`),
		"unknown type": []byte(`{"event_type": "order_exploded", "order": {"id": "o-3"}}`),
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOrderEvent(payload)
			assert.Error(t, err)
		})
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, status := range []string{
		OrderStatusReceived, OrderStatusConfirmed, OrderStatusCompleted, OrderStatusDenied,
	} {
		assert.True(t, ValidOrderStatus(status), status)
	}

	assert.False(t, ValidOrderStatus("shipped"))
	assert.False(t, ValidOrderStatus(""))
	assert.False(t, ValidOrderStatus("RECEIVED"))
}

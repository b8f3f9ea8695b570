package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	EventTypeOrderCreated       = "order_created"
	EventTypeOrderStatusUpdated = "order_status_updated"
)

// OrderEvent is the envelope published to the order-events topic. The order
// snapshot is embedded by value as of emission time; envelopes are never
// mutated after construction. Consumers ignore unknown extra fields.
type OrderEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Order     Order     `json:"order"`
}

// ParseOrderEvent decodes an envelope from its wire form. Unknown fields are
// tolerated; a missing or unrecognized event type is an error so malformed
// messages can be skipped by consumers.
func ParseOrderEvent(data []byte) (*OrderEvent, error) {
	var event OrderEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order event: %w", err)
	}

	switch event.EventType {
	case EventTypeOrderCreated, EventTypeOrderStatusUpdated:
		return &event, nil
	case "":
		return nil, fmt.Errorf("order event missing event_type")
	default:
		return nil, fmt.Errorf("unknown order event type: %s", event.EventType)
	}
}

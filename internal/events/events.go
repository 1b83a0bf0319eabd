package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated = "OrderCreated"
	EventOrderUpdated = "OrderUpdated"
	EventOrderDeleted = "OrderDeleted"

	EventProductCreated  = "ProductCreated"
	EventProductUpdated  = "ProductUpdated"
	EventProductDeleted  = "ProductDeleted"
	EventCategoryCreated = "CategoryCreated"
)

const (
	TopicOrders   = "catalog.orders"
	TopicProducts = "catalog.products"
)

// Envelope is the wire frame shared by every change event.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// PartitionKey keeps all events of one aggregate on one partition so their
// relative order survives fan-out.
func PartitionKey(id string) []byte { return []byte(id) }

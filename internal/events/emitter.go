package events

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-catalog-api/internal/kafka"
	"github.com/ariefcatur/go-catalog-api/internal/orders"
)

// Emitter wraps an async producer and stamps envelopes. Emit returns before
// the broker acknowledges anything; the producer logs delivery failures.
type Emitter struct {
	Producer *kafkax.Producer
	Service  string
}

func (e *Emitter) Emit(eventType, correlationID string, payload any) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.Service,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	e.Producer.Publish(PartitionKey(correlationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// OrderPayload carries the post-state record for create/update events.
type OrderPayload struct {
	Order orders.Order `json:"order"`
}

// OrderDeletedPayload carries the id plus the pre-delete snapshot.
type OrderDeletedPayload struct {
	OrderID string       `json:"order_id"`
	Prior   orders.Order `json:"prior"`
}

// OrderNotifier adapts the Emitter to the orders.Notifier boundary.
type OrderNotifier struct {
	Emitter *Emitter
}

func (n *OrderNotifier) OrderCreated(o orders.Order) {
	n.Emitter.Emit(EventOrderCreated, o.ID, OrderPayload{Order: o})
}

func (n *OrderNotifier) OrderUpdated(o orders.Order) {
	n.Emitter.Emit(EventOrderUpdated, o.ID, OrderPayload{Order: o})
}

func (n *OrderNotifier) OrderDeleted(id string, prior orders.Order) {
	n.Emitter.Emit(EventOrderDeleted, id, OrderDeletedPayload{OrderID: id, Prior: prior})
}

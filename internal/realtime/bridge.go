package realtime

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-catalog-api/internal/events"
)

var pushEvents = map[string]string{
	events.EventOrderCreated:   "order:created",
	events.EventOrderUpdated:   "order:updated",
	events.EventOrderDeleted:   "order:deleted",
	events.EventProductCreated: "product:created",
	events.EventProductUpdated: "product:updated",
	events.EventProductDeleted: "product:deleted",

	events.EventCategoryCreated: "category:created",
}

// Bridge consumes change events from Kafka and fans them out over the hub.
// Unknown event types are acknowledged and dropped.
type Bridge struct {
	Hub *Hub
}

func (b *Bridge) Handle(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// poison message, commit and move on
		log.Warn().Err(err).Msg("undecodable event, skipping")
		return nil
	}
	name, ok := pushEvents[env.EventType]
	if !ok {
		return nil
	}
	b.Hub.Broadcast(name, json.RawMessage(env.Payload))
	return nil
}

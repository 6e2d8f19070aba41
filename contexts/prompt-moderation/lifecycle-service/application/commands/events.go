package commands

import (
	"encoding/json"
	"time"

	"pojat/contexts/prompt-moderation/lifecycle-service/ports"
)

func newLifecycleEnvelope(
	eventID string,
	eventType string,
	promptID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Lifecycle events are partitioned by prompt so prompt-scoped consumers
	// observe transitions in commit order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "lifecycle-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "prompt_id",
		PartitionKey:     promptID,
		Data:             payload,
	}, nil
}

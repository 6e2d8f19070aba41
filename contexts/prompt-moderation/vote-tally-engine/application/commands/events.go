package commands

import (
	"encoding/json"
	"time"

	"pojat/contexts/prompt-moderation/vote-tally-engine/ports"
)

func newTallyEnvelope(
	eventID string,
	eventType string,
	promptID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Tally events are partitioned by prompt for stable ordering on
	// prompt-scoped consumers.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "vote-tally-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "prompt_id",
		PartitionKey:     promptID,
		Data:             payload,
	}, nil
}

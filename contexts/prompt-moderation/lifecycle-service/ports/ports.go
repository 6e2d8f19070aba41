package ports

import (
	"context"
	"time"

	"pojat/contexts/prompt-moderation/lifecycle-service/domain/entities"
	contractsv1 "pojat/contracts/gen/events/v1"
)

// PromptRepository is the lifecycle write/read surface over the prompt store.
// UpdatePromptStatus must be an atomic read-modify-write per prompt: concurrent
// transition requests serialize on the row and the last committed write wins.
type PromptRepository interface {
	CreatePrompt(ctx context.Context, prompt entities.Prompt) error
	GetPrompt(ctx context.Context, promptID string) (entities.Prompt, error)
	UpdatePromptStatus(ctx context.Context, promptID string, status entities.PromptStatus, modifiedAt time.Time) (entities.Prompt, error)
	ListPromptsByStatus(ctx context.Context, status entities.PromptStatus) ([]entities.Prompt, error)
	ListPromptsByCreator(ctx context.Context, creatorID string) ([]entities.Prompt, error)
	SearchActivePrompts(ctx context.Context, keyword string) ([]entities.Prompt, error)
	// ListModerationQueue returns prompts in {pending, needs_review, recall,
	// deletion_requested}, ordered deletion_requested > recall > pending >
	// needs_review, then oldest first.
	ListModerationQueue(ctx context.Context) ([]entities.Prompt, error)
}

// MaintenanceRunner triggers the external prompt-state sweep. The job has no
// specified contract; adapters invoke it best-effort.
type MaintenanceRunner interface {
	VerifyPromptStates(ctx context.Context) error
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// OutboxWriter persists an event for asynchronous relay. A nil writer in
// module wiring is treated as no-op by the application layer.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventPublisher hands relayed envelopes to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

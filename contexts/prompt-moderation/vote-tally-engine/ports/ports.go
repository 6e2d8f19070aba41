package ports

import (
	"context"
	"time"

	"pojat/contexts/prompt-moderation/vote-tally-engine/domain/entities"
	contractsv1 "pojat/contracts/gen/events/v1"
)

// PromptProjection is the slice of prompt state the tally engine reads. The
// prompt row itself is owned by the lifecycle service; both talk to the same
// store.
type PromptProjection struct {
	PromptID       string
	CreatorID      string
	CreatorGroupID *string
	Status         string
	LastModifiedAt time.Time
}

// VoteRepository is the tally engine's storage surface.
//
// CastVote must execute the whole read-tally-and-maybe-activate sequence as a
// single atomic unit scoped to the prompt (row lock or equivalent): the
// eligibility checks, the vote insert, the weighted recomputation, and the
// conditional activation either all commit or none do. Concurrent calls on
// one prompt must not double-insert a voter's vote, compute stale totals, or
// activate twice.
type VoteRepository interface {
	CastVote(ctx context.Context, vote entities.Vote, now time.Time) (entities.TallyResult, error)
	// ActivateIfEligible force-activates a recalled prompt whose tally already
	// meets the threshold. An already-active prompt is a no-op success that
	// leaves LastModifiedAt untouched.
	ActivateIfEligible(ctx context.Context, promptID string, now time.Time) (entities.TallyResult, error)
	GetPromptProjection(ctx context.Context, promptID string) (PromptProjection, error)
	// TallyPrompt recomputes the weighted point total without writing.
	TallyPrompt(ctx context.Context, promptID string) (int, error)
	ListVotesByPrompt(ctx context.Context, promptID string) ([]entities.Vote, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// OutboxWriter persists an event for asynchronous relay; nil wiring is a
// no-op in the application layer.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "pojat/contexts/prompt-moderation/vote-tally-engine/application"
	"pojat/contexts/prompt-moderation/vote-tally-engine/domain/entities"
	domainerrors "pojat/contexts/prompt-moderation/vote-tally-engine/domain/errors"
	"pojat/contexts/prompt-moderation/vote-tally-engine/ports"
	"pojat/internal/shared/identity"
)

// CastVoteCommand records one reinstatement vote for a recalled prompt.
type CastVoteCommand struct {
	Actor    identity.Identity
	PromptID string
}

// ForceActivateCommand is the admin mirror of the auto-activation branch.
type ForceActivateCommand struct {
	Actor    identity.Identity
	PromptID string
}

// TallyUseCase orchestrates tally writes. The storage adapter owns the
// per-prompt atomic unit; this layer validates input, generates ids, and
// emits events.
type TallyUseCase struct {
	Votes  ports.VoteRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// CastVote records a vote for a prompt in recall. Preconditions fail in
// order: unknown prompt, prompt not in recall, self-vote, duplicate vote.
// When the weighted total reaches the threshold the prompt activates in the
// same atomic unit as the insert.
func (uc TallyUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.TallyResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.Actor.UserID)
	promptID := strings.TrimSpace(cmd.PromptID)
	if voterID == "" || promptID == "" {
		logger.Warn("vote cast validation failed",
			"event", "tally_vote_cast_validation_failed",
			"module", "prompt-moderation/vote-tally-engine",
			"layer", "application",
			"voter_id", voterID,
			"prompt_id", promptID,
		)
		return entities.TallyResult{}, domainerrors.ErrInvalidVoteInput
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.TallyResult{}, err
	}
	now := uc.now()
	result, err := uc.Votes.CastVote(ctx, entities.Vote{
		VoteID:    voteID,
		VoterID:   voterID,
		PromptID:  promptID,
		CreatedAt: now,
	}, now)
	if err != nil {
		return entities.TallyResult{}, err
	}

	if err := uc.appendEvent(ctx, "vote.cast", promptID, now, map[string]any{
		"vote_id":      result.VoteID,
		"voter_id":     voterID,
		"total_points": result.TotalPoints,
	}); err != nil {
		return entities.TallyResult{}, err
	}
	if result.Activated {
		if err := uc.appendEvent(ctx, "prompt.activated", promptID, now, map[string]any{
			"total_points": result.TotalPoints,
			"trigger":      "vote_threshold",
		}); err != nil {
			return entities.TallyResult{}, err
		}
	}

	logger.Info("vote cast",
		"event", "tally_vote_cast",
		"module", "prompt-moderation/vote-tally-engine",
		"layer", "application",
		"vote_id", result.VoteID,
		"prompt_id", promptID,
		"voter_id", voterID,
		"total_points", result.TotalPoints,
		"activated", result.Activated,
	)
	return result, nil
}

// ForceActivate activates a recalled prompt whose tally already meets the
// threshold, without casting a vote. Activating an already-active prompt is
// a no-op success.
func (uc TallyUseCase) ForceActivate(ctx context.Context, cmd ForceActivateCommand) (entities.TallyResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !cmd.Actor.IsAdmin() {
		return entities.TallyResult{}, domainerrors.ErrAdminOnly
	}
	promptID := strings.TrimSpace(cmd.PromptID)
	if promptID == "" {
		return entities.TallyResult{}, domainerrors.ErrInvalidVoteInput
	}

	now := uc.now()
	result, err := uc.Votes.ActivateIfEligible(ctx, promptID, now)
	if err != nil {
		return result, err
	}
	if result.Activated {
		if err := uc.appendEvent(ctx, "prompt.activated", promptID, now, map[string]any{
			"total_points": result.TotalPoints,
			"trigger":      "admin_force",
			"actor_id":     cmd.Actor.UserID,
		}); err != nil {
			return entities.TallyResult{}, err
		}
	}
	logger.Info("force activation evaluated",
		"event", "tally_force_activate",
		"module", "prompt-moderation/vote-tally-engine",
		"layer", "application",
		"prompt_id", promptID,
		"actor_id", cmd.Actor.UserID,
		"total_points", result.TotalPoints,
		"activated", result.Activated,
		"already_active", result.AlreadyActive,
	)
	return result, nil
}

func (uc TallyUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc TallyUseCase) appendEvent(
	ctx context.Context,
	eventType string,
	promptID string,
	occurredAt time.Time,
	data map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"prompt_id":   promptID,
		"occurred_at": occurredAt.Format(time.RFC3339),
	}
	for key, value := range data {
		payload[key] = value
	}
	envelope, err := newTallyEnvelope(eventID, eventType, promptID, occurredAt, payload)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

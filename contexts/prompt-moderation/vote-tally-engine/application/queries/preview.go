package queries

import (
	"context"
	"strings"

	"pojat/contexts/prompt-moderation/vote-tally-engine/domain/entities"
	domainerrors "pojat/contexts/prompt-moderation/vote-tally-engine/domain/errors"
	domainservices "pojat/contexts/prompt-moderation/vote-tally-engine/domain/services"
	"pojat/contexts/prompt-moderation/vote-tally-engine/ports"
	"pojat/internal/shared/identity"
)

// PreviewUseCase serves admin-only tally reads without casting votes.
type PreviewUseCase struct {
	Votes ports.VoteRepository
}

// TallyPreview is the activation-eligibility snapshot for one prompt.
type TallyPreview struct {
	PromptID     string
	PromptStatus string
	TotalPoints  int
	Eligible     bool
	PointsNeeded int
}

// PreviewActivationEligibility recomputes the weighted total for a prompt in
// recall (or already active) without writing. Admin only.
func (uc PreviewUseCase) PreviewActivationEligibility(
	ctx context.Context,
	actor identity.Identity,
	promptID string,
) (TallyPreview, error) {
	if !actor.IsAdmin() {
		return TallyPreview{}, domainerrors.ErrAdminOnly
	}
	promptID = strings.TrimSpace(promptID)
	projection, err := uc.Votes.GetPromptProjection(ctx, promptID)
	if err != nil {
		return TallyPreview{}, err
	}
	switch projection.Status {
	case "recall", "active":
	default:
		return TallyPreview{}, domainerrors.ErrPromptNotOpenForVoting
	}

	total, err := uc.Votes.TallyPrompt(ctx, promptID)
	if err != nil {
		return TallyPreview{}, err
	}
	return TallyPreview{
		PromptID:     projection.PromptID,
		PromptStatus: projection.Status,
		TotalPoints:  total,
		Eligible:     domainservices.Eligible(total),
		PointsNeeded: domainservices.PointsNeeded(total),
	}, nil
}

// ListVotes returns the recorded votes for a prompt, oldest first.
func (uc PreviewUseCase) ListVotes(ctx context.Context, actor identity.Identity, promptID string) ([]entities.Vote, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.ErrAdminOnly
	}
	return uc.Votes.ListVotesByPrompt(ctx, strings.TrimSpace(promptID))
}

package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"pojat/contexts/prompt-moderation/vote-tally-engine/application/commands"
	"pojat/contexts/prompt-moderation/vote-tally-engine/application/queries"
	"pojat/contexts/prompt-moderation/vote-tally-engine/domain/entities"
	httptransport "pojat/contexts/prompt-moderation/vote-tally-engine/transport/http"
	"pojat/internal/shared/identity"
)

type Handler struct {
	Tally   commands.TallyUseCase
	Preview queries.PreviewUseCase
	Logger  *slog.Logger
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	actor identity.Identity,
	promptID string,
) (httptransport.VoteResponse, error) {
	result, err := h.Tally.CastVote(ctx, commands.CastVoteCommand{
		Actor:    actor,
		PromptID: promptID,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		VoteID:       result.VoteID,
		PromptID:     result.PromptID,
		TotalPoints:  result.TotalPoints,
		Activated:    result.Activated,
		PointsNeeded: result.PointsNeeded,
		PromptStatus: result.PromptStatus,
	}, nil
}

func (h Handler) PreviewHandler(
	ctx context.Context,
	actor identity.Identity,
	promptID string,
) (httptransport.TallyPreviewResponse, error) {
	preview, err := h.Preview.PreviewActivationEligibility(ctx, actor, promptID)
	if err != nil {
		return httptransport.TallyPreviewResponse{}, err
	}
	return httptransport.TallyPreviewResponse{
		PromptID:     preview.PromptID,
		PromptStatus: preview.PromptStatus,
		TotalPoints:  preview.TotalPoints,
		Eligible:     preview.Eligible,
		PointsNeeded: preview.PointsNeeded,
	}, nil
}

func (h Handler) ForceActivateHandler(
	ctx context.Context,
	actor identity.Identity,
	promptID string,
) (httptransport.ForceActivateResponse, error) {
	result, err := h.Tally.ForceActivate(ctx, commands.ForceActivateCommand{
		Actor:    actor,
		PromptID: promptID,
	})
	if err != nil {
		return httptransport.ForceActivateResponse{}, err
	}
	return httptransport.ForceActivateResponse{
		PromptID:      result.PromptID,
		PromptStatus:  result.PromptStatus,
		TotalPoints:   result.TotalPoints,
		Activated:     result.Activated,
		AlreadyActive: result.AlreadyActive,
	}, nil
}

func (h Handler) ListVotesHandler(
	ctx context.Context,
	actor identity.Identity,
	promptID string,
) (httptransport.VoteListResponse, error) {
	votes, err := h.Preview.ListVotes(ctx, actor, promptID)
	if err != nil {
		return httptransport.VoteListResponse{}, err
	}
	return httptransport.VoteListResponse{Items: mapVotes(votes)}, nil
}

func mapVotes(votes []entities.Vote) []httptransport.VoteRecord {
	items := make([]httptransport.VoteRecord, 0, len(votes))
	for _, vote := range votes {
		items = append(items, httptransport.VoteRecord{
			VoteID:    vote.VoteID,
			VoterID:   vote.VoterID,
			PromptID:  vote.PromptID,
			CreatedAt: vote.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items
}

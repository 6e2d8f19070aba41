package httpadapter

import (
	"context"
	"log/slog"

	"pojat/contexts/prompt-moderation/notation-service/application"
	httptransport "pojat/contexts/prompt-moderation/notation-service/transport/http"
)

type Handler struct {
	Notation application.Service
	Logger   *slog.Logger
}

func (h Handler) GetNotationHandler(ctx context.Context, promptID string) (httptransport.NotationResponse, error) {
	notation, err := h.Notation.ComputeNotation(ctx, promptID)
	if err != nil {
		return httptransport.NotationResponse{}, err
	}
	return httptransport.NotationResponse{
		PromptID:      notation.PromptID,
		WeightedScore: notation.WeightedScore,
		Count:         notation.Count,
	}, nil
}

package application

import (
	"context"
	"log/slog"
	"strings"

	"pojat/contexts/prompt-moderation/notation-service/domain/entities"
	domainerrors "pojat/contexts/prompt-moderation/notation-service/domain/errors"
	domainservices "pojat/contexts/prompt-moderation/notation-service/domain/services"
	"pojat/contexts/prompt-moderation/notation-service/ports"
)

// Service computes the aggregate notation for active prompts. Read-only.
type Service struct {
	Notes  ports.NoteRepository
	Logger *slog.Logger
}

// ComputeNotation returns the weighted rating figure for an active prompt.
// Zero notes yield {0, 0}, not an error.
func (s Service) ComputeNotation(ctx context.Context, promptID string) (entities.Notation, error) {
	logger := resolveLogger(s.Logger)
	promptID = strings.TrimSpace(promptID)
	if promptID == "" {
		return entities.Notation{}, domainerrors.ErrInvalidInput
	}

	projection, err := s.Notes.GetPromptProjection(ctx, promptID)
	if err != nil {
		return entities.Notation{}, err
	}
	if projection.Status != "active" {
		return entities.Notation{}, domainerrors.ErrPromptNotActive
	}

	notes, err := s.Notes.ListNotesByPrompt(ctx, promptID)
	if err != nil {
		return entities.Notation{}, err
	}

	notation := entities.Notation{PromptID: promptID, Count: len(notes)}
	if len(notes) == 0 {
		return notation, nil
	}
	sum := 0.0
	for _, note := range notes {
		sum += note.Value * domainservices.NoteWeight(note.RaterGroupID, projection.CreatorGroupID)
	}
	// Divided by the raw count, not the weight sum. Kept as defined.
	notation.WeightedScore = sum / float64(len(notes))

	logger.Debug("notation computed",
		"event", "notation_computed",
		"module", "prompt-moderation/notation-service",
		"layer", "application",
		"prompt_id", promptID,
		"count", notation.Count,
		"weighted_score", notation.WeightedScore,
	)
	return notation, nil
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

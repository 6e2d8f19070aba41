package postgresadapter

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "pojat/contexts/prompt-moderation/notation-service/domain/errors"
	"pojat/contexts/prompt-moderation/notation-service/ports"

	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetPromptProjection(ctx context.Context, promptID string) (ports.PromptProjection, error) {
	var row promptProjectionModel
	err := r.db.WithContext(ctx).
		Table("prompts AS p").
		Select("p.id, p.status, u.group_id AS creator_group_id").
		Joins("LEFT JOIN users u ON u.id = p.creator_id").
		Where("p.id = ?", strings.TrimSpace(promptID)).
		Scan(&row).
		Error
	if err != nil {
		return ports.PromptProjection{}, r.logError("notation_repo_get_projection_failed", err,
			"prompt_id", strings.TrimSpace(promptID),
		)
	}
	if row.ID == "" {
		return ports.PromptProjection{}, domainerrors.ErrPromptNotFound
	}
	return ports.PromptProjection{
		PromptID:       row.ID,
		CreatorGroupID: row.CreatorGroupID,
		Status:         row.Status,
	}, nil
}

func (r *Repository) ListNotesByPrompt(ctx context.Context, promptID string) ([]ports.RatedNote, error) {
	var rows []ratedNoteModel
	err := r.db.WithContext(ctx).
		Table("notes AS n").
		Select("n.id, n.value, u.group_id AS rater_group_id").
		Joins("LEFT JOIN users u ON u.id = n.rater_id").
		Where("n.prompt_id = ?", strings.TrimSpace(promptID)).
		Order("n.id ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("notation_repo_list_notes_failed", err,
			"prompt_id", strings.TrimSpace(promptID),
		)
	}
	items := make([]ports.RatedNote, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.RatedNote{
			NoteID:       row.ID,
			Value:        row.Value,
			RaterGroupID: row.RaterGroupID,
		})
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "prompt-moderation/notation-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("notation repository operation failed", fields...)
	return err
}

type promptProjectionModel struct {
	ID             string  `gorm:"column:id"`
	Status         string  `gorm:"column:status"`
	CreatorGroupID *string `gorm:"column:creator_group_id"`
}

type ratedNoteModel struct {
	ID           string  `gorm:"column:id"`
	Value        float64 `gorm:"column:value"`
	RaterGroupID *string `gorm:"column:rater_group_id"`
}

var _ ports.NoteRepository = (*Repository)(nil)

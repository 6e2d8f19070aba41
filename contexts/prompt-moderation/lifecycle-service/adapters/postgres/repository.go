package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"pojat/contexts/prompt-moderation/lifecycle-service/domain/entities"
	domainerrors "pojat/contexts/prompt-moderation/lifecycle-service/domain/errors"
	"pojat/contexts/prompt-moderation/lifecycle-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
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

func (r *Repository) CreatePrompt(ctx context.Context, prompt entities.Prompt) error {
	row := promptModelFromEntity(prompt)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidInput
		}
		return r.logError("lifecycle_repo_create_prompt_failed", err,
			"prompt_id", strings.TrimSpace(prompt.PromptID),
		)
	}
	return nil
}

func (r *Repository) GetPrompt(ctx context.Context, promptID string) (entities.Prompt, error) {
	var row promptModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(promptID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Prompt{}, domainerrors.ErrPromptNotFound
		}
		return entities.Prompt{}, r.logError("lifecycle_repo_get_prompt_failed", err,
			"prompt_id", strings.TrimSpace(promptID),
		)
	}
	return row.toEntity(), nil
}

// UpdatePromptStatus serializes concurrent transitions on the prompt row via
// SELECT ... FOR UPDATE; the last committed write wins.
func (r *Repository) UpdatePromptStatus(
	ctx context.Context,
	promptID string,
	status entities.PromptStatus,
	modifiedAt time.Time,
) (entities.Prompt, error) {
	var updated entities.Prompt
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row promptModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", strings.TrimSpace(promptID)).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrPromptNotFound
			}
			return err
		}
		row.Status = string(status)
		row.LastModifiedAt = modifiedAt.UTC()
		if err := tx.Model(&promptModel{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{
				"status":           row.Status,
				"last_modified_at": row.LastModifiedAt,
			}).Error; err != nil {
			return err
		}
		updated = row.toEntity()
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPromptNotFound) {
			return entities.Prompt{}, err
		}
		return entities.Prompt{}, r.logError("lifecycle_repo_update_status_failed", err,
			"prompt_id", strings.TrimSpace(promptID),
			"target_status", string(status),
		)
	}
	return updated, nil
}

func (r *Repository) ListPromptsByStatus(ctx context.Context, status entities.PromptStatus) ([]entities.Prompt, error) {
	var rows []promptModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_by_status_failed", err,
			"status", string(status),
		)
	}
	return toPromptEntities(rows), nil
}

func (r *Repository) ListPromptsByCreator(ctx context.Context, creatorID string) ([]entities.Prompt, error) {
	var rows []promptModel
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", strings.TrimSpace(creatorID)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_by_creator_failed", err,
			"creator_id", strings.TrimSpace(creatorID),
		)
	}
	return toPromptEntities(rows), nil
}

func (r *Repository) SearchActivePrompts(ctx context.Context, keyword string) ([]entities.Prompt, error) {
	var rows []promptModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.StatusActive)).
		Where("description ILIKE ?", "%"+strings.TrimSpace(keyword)+"%").
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_search_failed", err)
	}
	return toPromptEntities(rows), nil
}

func (r *Repository) ListModerationQueue(ctx context.Context) ([]entities.Prompt, error) {
	var rows []promptModel
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{
			string(entities.StatusDeletionRequested),
			string(entities.StatusRecall),
			string(entities.StatusPending),
			string(entities.StatusNeedsReview),
		}).
		Order(`CASE status
			WHEN 'deletion_requested' THEN 1
			WHEN 'recall' THEN 2
			WHEN 'pending' THEN 3
			WHEN 'needs_review' THEN 4
		END, created_at ASC`).
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("lifecycle_repo_moderation_queue_failed", err)
	}
	return toPromptEntities(rows), nil
}

// VerifyPromptStates invokes the server-side sweep procedure. The procedure's
// behavior is owned outside this service; a missing procedure is reported as
// an error to the admin caller.
func (r *Repository) VerifyPromptStates(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Exec("SELECT verify_prompt_states()").Error; err != nil {
		return r.logError("lifecycle_repo_state_sweep_failed", err)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("lifecycle_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("lifecycle_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_pending_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   row.Payload,
			CreatedAt: row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		}).Error; err != nil {
		return r.logError("lifecycle_repo_mark_outbox_published_failed", err,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "prompt-moderation/lifecycle-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("lifecycle repository operation failed", fields...)
	return err
}

// SystemClock is the production Clock adapter.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator is the production IDGenerator adapter.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type promptModel struct {
	ID             string          `gorm:"column:id;primaryKey"`
	Description    string          `gorm:"column:description"`
	Price          decimal.Decimal `gorm:"column:price"`
	Status         string          `gorm:"column:status"`
	CreatorID      string          `gorm:"column:creator_id"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	LastModifiedAt time.Time       `gorm:"column:last_modified_at"`
}

func (promptModel) TableName() string { return "prompts" }

func (m promptModel) toEntity() entities.Prompt {
	return entities.Prompt{
		PromptID:       m.ID,
		Description:    m.Description,
		Price:          m.Price,
		Status:         entities.PromptStatus(m.Status),
		CreatorID:      m.CreatorID,
		CreatedAt:      m.CreatedAt.UTC(),
		LastModifiedAt: m.LastModifiedAt.UTC(),
	}
}

func promptModelFromEntity(prompt entities.Prompt) promptModel {
	return promptModel{
		ID:             strings.TrimSpace(prompt.PromptID),
		Description:    prompt.Description,
		Price:          prompt.Price,
		Status:         string(prompt.Status),
		CreatorID:      strings.TrimSpace(prompt.CreatorID),
		CreatedAt:      prompt.CreatedAt.UTC(),
		LastModifiedAt: prompt.LastModifiedAt.UTC(),
	}
}

func toPromptEntities(rows []promptModel) []entities.Prompt {
	items := make([]entities.Prompt, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "outbox" }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.PromptRepository = (*Repository)(nil)
var _ ports.MaintenanceRunner = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)

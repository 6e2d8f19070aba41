package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"pojat/contexts/prompt-moderation/vote-tally-engine/domain/entities"
	domainerrors "pojat/contexts/prompt-moderation/vote-tally-engine/domain/errors"
	domainservices "pojat/contexts/prompt-moderation/vote-tally-engine/domain/services"
	"pojat/contexts/prompt-moderation/vote-tally-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

// CastVote runs the insert-tally-activate sequence in one transaction with
// the prompt row locked, so concurrent votes on the same prompt serialize.
// The unique (voter_id, prompt_id) index backs the duplicate check even if a
// racing transaction slips between lock acquisitions.
func (r *Repository) CastVote(ctx context.Context, vote entities.Vote, now time.Time) (entities.TallyResult, error) {
	var result entities.TallyResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prompt, err := lockPrompt(tx, vote.PromptID)
		if err != nil {
			return err
		}
		if prompt.Status != "recall" {
			return domainerrors.ErrPromptNotOpenForVoting
		}
		if prompt.CreatorID == strings.TrimSpace(vote.VoterID) {
			return domainerrors.ErrSelfVoteForbidden
		}

		row := voteModelFromEntity(vote)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyVoted
			}
			return err
		}

		total, err := tallyPromptTx(tx, prompt)
		if err != nil {
			return err
		}
		result = entities.TallyResult{
			VoteID:       vote.VoteID,
			PromptID:     prompt.ID,
			TotalPoints:  total,
			PointsNeeded: domainservices.PointsNeeded(total),
			PromptStatus: prompt.Status,
		}
		if domainservices.Eligible(total) {
			if err := activatePromptTx(tx, prompt.ID, now); err != nil {
				return err
			}
			result.Activated = true
			result.PromptStatus = "active"
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return entities.TallyResult{}, err
		}
		return entities.TallyResult{}, r.logError("tally_repo_cast_vote_failed", err,
			"vote_id", strings.TrimSpace(vote.VoteID),
			"prompt_id", strings.TrimSpace(vote.PromptID),
			"voter_id", strings.TrimSpace(vote.VoterID),
		)
	}
	return result, nil
}

// ActivateIfEligible mirrors the auto-activation branch under the same row
// lock. Already-active prompts short-circuit without touching the row.
func (r *Repository) ActivateIfEligible(ctx context.Context, promptID string, now time.Time) (entities.TallyResult, error) {
	var result entities.TallyResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prompt, err := lockPrompt(tx, promptID)
		if err != nil {
			return err
		}
		total, err := tallyPromptTx(tx, prompt)
		if err != nil {
			return err
		}
		result = entities.TallyResult{
			PromptID:     prompt.ID,
			TotalPoints:  total,
			PointsNeeded: domainservices.PointsNeeded(total),
			PromptStatus: prompt.Status,
		}
		if prompt.Status == "active" {
			result.AlreadyActive = true
			return nil
		}
		if prompt.Status != "recall" {
			return domainerrors.ErrPromptNotOpenForVoting
		}
		if !domainservices.Eligible(total) {
			return domainerrors.ErrThresholdNotMet
		}
		if err := activatePromptTx(tx, prompt.ID, now); err != nil {
			return err
		}
		result.Activated = true
		result.PromptStatus = "active"
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return result, err
		}
		return entities.TallyResult{}, r.logError("tally_repo_force_activate_failed", err,
			"prompt_id", strings.TrimSpace(promptID),
		)
	}
	return result, nil
}

func (r *Repository) GetPromptProjection(ctx context.Context, promptID string) (ports.PromptProjection, error) {
	var row promptProjectionModel
	err := r.db.WithContext(ctx).
		Table("prompts AS p").
		Select("p.id, p.creator_id, p.status, p.last_modified_at, u.group_id AS creator_group_id").
		Joins("LEFT JOIN users u ON u.id = p.creator_id").
		Where("p.id = ?", strings.TrimSpace(promptID)).
		Scan(&row).
		Error
	if err != nil {
		return ports.PromptProjection{}, r.logError("tally_repo_get_projection_failed", err,
			"prompt_id", strings.TrimSpace(promptID),
		)
	}
	if row.ID == "" {
		return ports.PromptProjection{}, domainerrors.ErrPromptNotFound
	}
	return ports.PromptProjection{
		PromptID:       row.ID,
		CreatorID:      row.CreatorID,
		CreatorGroupID: row.CreatorGroupID,
		Status:         row.Status,
		LastModifiedAt: row.LastModifiedAt.UTC(),
	}, nil
}

func (r *Repository) TallyPrompt(ctx context.Context, promptID string) (int, error) {
	prompt, err := lockFreePrompt(r.db.WithContext(ctx), promptID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrPromptNotFound) {
			return 0, err
		}
		return 0, r.logError("tally_repo_tally_failed", err,
			"prompt_id", strings.TrimSpace(promptID),
		)
	}
	total, err := tallyPromptTx(r.db.WithContext(ctx), prompt)
	if err != nil {
		return 0, r.logError("tally_repo_tally_failed", err,
			"prompt_id", strings.TrimSpace(promptID),
		)
	}
	return total, nil
}

func (r *Repository) ListVotesByPrompt(ctx context.Context, promptID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("prompt_id = ?", strings.TrimSpace(promptID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("tally_repo_list_votes_failed", err,
			"prompt_id", strings.TrimSpace(promptID),
		)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// AppendOutbox stores the envelope for the relay worker. Duplicate event ids
// are ignored so retried use cases stay idempotent.
func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("tally_repo_outbox_encode_failed", err, "outbox_id", envelope.EventID)
	}
	row := outboxModel{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       "pending",
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "outbox_id"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
	if err != nil {
		return r.logError("tally_repo_outbox_append_failed", err, "outbox_id", envelope.EventID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "prompt-moderation/vote-tally-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("tally repository operation failed", fields...)
	return err
}

// lockPrompt loads the prompt row FOR UPDATE together with the creator's
// group, pinning the tally sequence to one writer per prompt.
func lockPrompt(tx *gorm.DB, promptID string) (lockedPrompt, error) {
	var row lockedPrompt
	err := tx.Table("prompts").
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "prompts"}}).
		Select("id, creator_id, status").
		Where("id = ?", strings.TrimSpace(promptID)).
		Scan(&row).
		Error
	if err != nil {
		return lockedPrompt{}, err
	}
	if row.ID == "" {
		return lockedPrompt{}, domainerrors.ErrPromptNotFound
	}
	var group *string
	if err := tx.Table("users").
		Select("group_id").
		Where("id = ?", row.CreatorID).
		Scan(&group).
		Error; err != nil {
		return lockedPrompt{}, err
	}
	row.CreatorGroupID = group
	return row, nil
}

func lockFreePrompt(tx *gorm.DB, promptID string) (lockedPrompt, error) {
	var row lockedPrompt
	err := tx.Table("prompts").
		Select("id, creator_id, status").
		Where("id = ?", strings.TrimSpace(promptID)).
		Scan(&row).
		Error
	if err != nil {
		return lockedPrompt{}, err
	}
	if row.ID == "" {
		return lockedPrompt{}, domainerrors.ErrPromptNotFound
	}
	var group *string
	if err := tx.Table("users").
		Select("group_id").
		Where("id = ?", row.CreatorID).
		Scan(&group).
		Error; err != nil {
		return lockedPrompt{}, err
	}
	row.CreatorGroupID = group
	return row, nil
}

// tallyPromptTx recomputes the weighted total in Go with the pure weighting
// function; storage only supplies the voter group rows.
func tallyPromptTx(tx *gorm.DB, prompt lockedPrompt) (int, error) {
	var groups []*string
	err := tx.Table("votes AS v").
		Select("u.group_id").
		Joins("LEFT JOIN users u ON u.id = v.voter_id").
		Where("v.prompt_id = ?", prompt.ID).
		Scan(&groups).
		Error
	if err != nil {
		return 0, err
	}
	total := 0
	for _, voterGroup := range groups {
		total += domainservices.VotePoints(voterGroup, prompt.CreatorGroupID)
	}
	return total, nil
}

func activatePromptTx(tx *gorm.DB, promptID string, now time.Time) error {
	return tx.Table("prompts").
		Where("id = ?", promptID).
		Updates(map[string]any{
			"status":           "active",
			"last_modified_at": now.UTC(),
		}).Error
}

func isDomainError(err error) bool {
	return errors.Is(err, domainerrors.ErrPromptNotFound) ||
		errors.Is(err, domainerrors.ErrPromptNotOpenForVoting) ||
		errors.Is(err, domainerrors.ErrSelfVoteForbidden) ||
		errors.Is(err, domainerrors.ErrAlreadyVoted) ||
		errors.Is(err, domainerrors.ErrThresholdNotMet)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type lockedPrompt struct {
	ID             string  `gorm:"column:id"`
	CreatorID      string  `gorm:"column:creator_id"`
	Status         string  `gorm:"column:status"`
	CreatorGroupID *string `gorm:"-"`
}

type promptProjectionModel struct {
	ID             string    `gorm:"column:id"`
	CreatorID      string    `gorm:"column:creator_id"`
	Status         string    `gorm:"column:status"`
	LastModifiedAt time.Time `gorm:"column:last_modified_at"`
	CreatorGroupID *string   `gorm:"column:creator_group_id"`
}

type voteModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	VoterID   string    `gorm:"column:voter_id"`
	PromptID  string    `gorm:"column:prompt_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string { return "votes" }

type outboxModel struct {
	OutboxID     string    `gorm:"column:outbox_id;primaryKey"`
	EventType    string    `gorm:"column:event_type"`
	PartitionKey string    `gorm:"column:partition_key"`
	Payload      []byte    `gorm:"column:payload"`
	Status       string    `gorm:"column:status"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (outboxModel) TableName() string { return "outbox" }

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:    m.ID,
		VoterID:   m.VoterID,
		PromptID:  m.PromptID,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	return voteModel{
		ID:        strings.TrimSpace(vote.VoteID),
		VoterID:   strings.TrimSpace(vote.VoterID),
		PromptID:  strings.TrimSpace(vote.PromptID),
		CreatedAt: vote.CreatedAt.UTC(),
	}
}

// SystemClock backs production wiring with wall-clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator issues uuid-v4 identifiers for votes and events.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.Clock = SystemClock{}
var _ ports.IDGenerator = UUIDGenerator{}

package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "pojat/contexts/prompt-moderation/lifecycle-service/application"
	"pojat/contexts/prompt-moderation/lifecycle-service/domain/entities"
	domainerrors "pojat/contexts/prompt-moderation/lifecycle-service/domain/errors"
	domainservices "pojat/contexts/prompt-moderation/lifecycle-service/domain/services"
	"pojat/contexts/prompt-moderation/lifecycle-service/ports"
	"pojat/internal/shared/identity"
)

// CreatePromptCommand is the write-model input for prompt submission.
type CreatePromptCommand struct {
	Actor       identity.Identity
	Description string
}

// TransitionCommand requests a role-gated status change.
type TransitionCommand struct {
	Actor        identity.Identity
	PromptID     string
	TargetStatus string
}

// LifecycleUseCase owns every prompt status write. All mutation of a prompt's
// lifecycle goes through here or through the vote tally engine's activation.
type LifecycleUseCase struct {
	Prompts     ports.PromptRepository
	Maintenance ports.MaintenanceRunner
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// CreatePrompt stores a new prompt in pending status for any authenticated
// caller.
func (uc LifecycleUseCase) CreatePrompt(ctx context.Context, cmd CreatePromptCommand) (entities.Prompt, error) {
	logger := application.ResolveLogger(uc.Logger)
	description := strings.TrimSpace(cmd.Description)
	if strings.TrimSpace(cmd.Actor.UserID) == "" || description == "" {
		logger.Warn("prompt create validation failed",
			"event", "lifecycle_prompt_create_validation_failed",
			"module", "prompt-moderation/lifecycle-service",
			"layer", "application",
			"creator_id", strings.TrimSpace(cmd.Actor.UserID),
		)
		return entities.Prompt{}, domainerrors.ErrInvalidInput
	}

	promptID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Prompt{}, err
	}
	now := uc.now()
	prompt := entities.Prompt{
		PromptID:       promptID,
		Description:    description,
		Status:         entities.StatusPending,
		CreatorID:      strings.TrimSpace(cmd.Actor.UserID),
		CreatedAt:      now,
		LastModifiedAt: now,
	}
	if err := uc.Prompts.CreatePrompt(ctx, prompt); err != nil {
		return entities.Prompt{}, err
	}
	if err := uc.appendEvent(ctx, "prompt.created", prompt, now, nil); err != nil {
		return entities.Prompt{}, err
	}
	logger.Info("prompt created",
		"event", "lifecycle_prompt_created",
		"module", "prompt-moderation/lifecycle-service",
		"layer", "application",
		"prompt_id", prompt.PromptID,
		"creator_id", prompt.CreatorID,
	)
	return prompt, nil
}

// RequestTransition validates the target against the closed enum, applies the
// transition policy, and persists the new status with a fresh LastModifiedAt.
// Admin no-op transitions are allowed and still stamp the timestamp.
func (uc LifecycleUseCase) RequestTransition(ctx context.Context, cmd TransitionCommand) (entities.Prompt, error) {
	logger := application.ResolveLogger(uc.Logger)
	promptID := strings.TrimSpace(cmd.PromptID)
	if promptID == "" || strings.TrimSpace(cmd.Actor.UserID) == "" {
		return entities.Prompt{}, domainerrors.ErrInvalidInput
	}
	target, ok := entities.ParseStatus(cmd.TargetStatus)
	if !ok {
		logger.Warn("prompt transition rejected: unknown status",
			"event", "lifecycle_transition_invalid_status",
			"module", "prompt-moderation/lifecycle-service",
			"layer", "application",
			"prompt_id", promptID,
			"target_status", strings.TrimSpace(cmd.TargetStatus),
		)
		return entities.Prompt{}, domainerrors.ErrInvalidStatus
	}

	prompt, err := uc.Prompts.GetPrompt(ctx, promptID)
	if err != nil {
		return entities.Prompt{}, err
	}
	if err := domainservices.AuthorizeTransition(cmd.Actor, prompt, target); err != nil {
		logger.Warn("prompt transition denied",
			"event", "lifecycle_transition_denied",
			"module", "prompt-moderation/lifecycle-service",
			"layer", "application",
			"prompt_id", promptID,
			"actor_id", cmd.Actor.UserID,
			"actor_role", string(cmd.Actor.Role),
			"target_status", string(target),
		)
		return entities.Prompt{}, err
	}

	now := uc.now()
	previous := prompt.Status
	updated, err := uc.Prompts.UpdatePromptStatus(ctx, promptID, target, now)
	if err != nil {
		return entities.Prompt{}, err
	}
	if err := uc.appendEvent(ctx, "prompt.status_changed", updated, now, map[string]any{
		"previous_status": string(previous),
		"actor_id":        cmd.Actor.UserID,
		"actor_role":      string(cmd.Actor.Role),
	}); err != nil {
		return entities.Prompt{}, err
	}
	logger.Info("prompt status changed",
		"event", "lifecycle_status_changed",
		"module", "prompt-moderation/lifecycle-service",
		"layer", "application",
		"prompt_id", updated.PromptID,
		"previous_status", string(previous),
		"status", string(updated.Status),
		"actor_id", cmd.Actor.UserID,
	)
	return updated, nil
}

// RunStateSweep triggers the external prompt-state verification job. The job's
// contract is unspecified, so the call is best-effort and admin-gated.
func (uc LifecycleUseCase) RunStateSweep(ctx context.Context, actor identity.Identity) error {
	logger := application.ResolveLogger(uc.Logger)
	if !actor.IsAdmin() {
		return domainerrors.ErrAdminOnly
	}
	if uc.Maintenance == nil {
		return nil
	}
	if err := uc.Maintenance.VerifyPromptStates(ctx); err != nil {
		logger.Error("prompt state sweep failed",
			"event", "lifecycle_state_sweep_failed",
			"module", "prompt-moderation/lifecycle-service",
			"layer", "application",
			"actor_id", actor.UserID,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("prompt state sweep completed",
		"event", "lifecycle_state_sweep_completed",
		"module", "prompt-moderation/lifecycle-service",
		"layer", "application",
		"actor_id", actor.UserID,
	)
	return nil
}

func (uc LifecycleUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc LifecycleUseCase) appendEvent(
	ctx context.Context,
	eventType string,
	prompt entities.Prompt,
	occurredAt time.Time,
	metadata map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"prompt_id":        prompt.PromptID,
		"status":           string(prompt.Status),
		"creator_id":       prompt.CreatorID,
		"last_modified_at": prompt.LastModifiedAt.Format(time.RFC3339),
	}
	for key, value := range metadata {
		data[key] = value
	}
	envelope, err := newLifecycleEnvelope(eventID, eventType, prompt.PromptID, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

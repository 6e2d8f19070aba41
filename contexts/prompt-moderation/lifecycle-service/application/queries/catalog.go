package queries

import (
	"context"
	"strings"

	"pojat/contexts/prompt-moderation/lifecycle-service/domain/entities"
	domainerrors "pojat/contexts/prompt-moderation/lifecycle-service/domain/errors"
	domainservices "pojat/contexts/prompt-moderation/lifecycle-service/domain/services"
	"pojat/contexts/prompt-moderation/lifecycle-service/ports"
	"pojat/internal/shared/identity"
)

// CatalogUseCase serves the read-only prompt surfaces. It performs no writes.
type CatalogUseCase struct {
	Prompts ports.PromptRepository
}

// GetPromptDetail returns the prompt when the actor may see it. Non-active
// prompts are visible only to admins and the creator.
func (uc CatalogUseCase) GetPromptDetail(ctx context.Context, actor identity.Identity, promptID string) (entities.Prompt, error) {
	prompt, err := uc.Prompts.GetPrompt(ctx, strings.TrimSpace(promptID))
	if err != nil {
		return entities.Prompt{}, err
	}
	if !domainservices.CanReadPrompt(actor, prompt) {
		return entities.Prompt{}, domainerrors.ErrUnauthorized
	}
	return prompt, nil
}

// ListPrompts lists prompts by status. Non-admin callers always get the
// active catalog regardless of the requested status.
func (uc CatalogUseCase) ListPrompts(ctx context.Context, actor identity.Identity, status string) ([]entities.Prompt, error) {
	requested := entities.StatusActive
	if actor.IsAdmin() {
		if strings.TrimSpace(status) != "" {
			parsed, ok := entities.ParseStatus(status)
			if !ok {
				return nil, domainerrors.ErrInvalidStatus
			}
			requested = parsed
		}
	}
	return uc.Prompts.ListPromptsByStatus(ctx, requested)
}

// SearchPrompts searches active prompt descriptions by keyword.
func (uc CatalogUseCase) SearchPrompts(ctx context.Context, keyword string) ([]entities.Prompt, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return uc.Prompts.SearchActivePrompts(ctx, keyword)
}

// ListMyPrompts returns the actor's own prompts, newest first.
func (uc CatalogUseCase) ListMyPrompts(ctx context.Context, actor identity.Identity) ([]entities.Prompt, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return uc.Prompts.ListPromptsByCreator(ctx, actor.UserID)
}

// ModerationQueue returns the admin work queue in moderation priority order.
func (uc CatalogUseCase) ModerationQueue(ctx context.Context, actor identity.Identity) ([]entities.Prompt, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.ErrAdminOnly
	}
	return uc.Prompts.ListModerationQueue(ctx)
}

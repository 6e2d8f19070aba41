package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"pojat/contexts/prompt-moderation/lifecycle-service/application/commands"
	"pojat/contexts/prompt-moderation/lifecycle-service/application/queries"
	"pojat/contexts/prompt-moderation/lifecycle-service/domain/entities"
	httptransport "pojat/contexts/prompt-moderation/lifecycle-service/transport/http"
	"pojat/internal/shared/identity"
)

type Handler struct {
	Lifecycle commands.LifecycleUseCase
	Catalog   queries.CatalogUseCase
	Logger    *slog.Logger
}

// CreatePromptHandler godoc
// @Summary Create a prompt
// @Description Creates a prompt in pending status owned by the caller.
// @Tags prompt-lifecycle
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller id"
// @Param request body httptransport.CreatePromptRequest true "Prompt payload"
// @Success 201 {object} httptransport.PromptResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Router /api/moderation/v1/prompts [post]
func (h Handler) CreatePromptHandler(
	ctx context.Context,
	actor identity.Identity,
	req httptransport.CreatePromptRequest,
) (httptransport.PromptResponse, error) {
	prompt, err := h.Lifecycle.CreatePrompt(ctx, commands.CreatePromptCommand{
		Actor:       actor,
		Description: req.Description,
	})
	if err != nil {
		return httptransport.PromptResponse{}, err
	}
	return mapPrompt(prompt), nil
}

// TransitionHandler godoc
// @Summary Request a status transition
// @Description Applies a role-gated status change to one prompt.
// @Tags prompt-lifecycle
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller id"
// @Param X-User-Role header string false "Caller role: admin or user"
// @Param prompt_id path string true "Prompt id"
// @Param request body httptransport.TransitionRequest true "Target status"
// @Success 200 {object} httptransport.PromptResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/moderation/v1/prompts/{prompt_id}/status [post]
func (h Handler) TransitionHandler(
	ctx context.Context,
	actor identity.Identity,
	promptID string,
	req httptransport.TransitionRequest,
) (httptransport.PromptResponse, error) {
	prompt, err := h.Lifecycle.RequestTransition(ctx, commands.TransitionCommand{
		Actor:        actor,
		PromptID:     promptID,
		TargetStatus: req.Status,
	})
	if err != nil {
		return httptransport.PromptResponse{}, err
	}
	return mapPrompt(prompt), nil
}

// GetPromptHandler godoc
// @Summary Get prompt detail
// @Description Returns one prompt; non-active prompts are visible to admins and the creator only.
// @Tags prompt-lifecycle
// @Produce json
// @Param X-User-Id header string true "Caller id"
// @Param prompt_id path string true "Prompt id"
// @Success 200 {object} httptransport.PromptResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/moderation/v1/prompts/{prompt_id} [get]
func (h Handler) GetPromptHandler(
	ctx context.Context,
	actor identity.Identity,
	promptID string,
) (httptransport.PromptResponse, error) {
	prompt, err := h.Catalog.GetPromptDetail(ctx, actor, promptID)
	if err != nil {
		return httptransport.PromptResponse{}, err
	}
	return mapPrompt(prompt), nil
}

func (h Handler) ListPromptsHandler(
	ctx context.Context,
	actor identity.Identity,
	status string,
) (httptransport.PromptListResponse, error) {
	prompts, err := h.Catalog.ListPrompts(ctx, actor, status)
	if err != nil {
		return httptransport.PromptListResponse{}, err
	}
	return httptransport.PromptListResponse{Items: mapPrompts(prompts)}, nil
}

func (h Handler) SearchPromptsHandler(ctx context.Context, keyword string) (httptransport.PromptListResponse, error) {
	prompts, err := h.Catalog.SearchPrompts(ctx, keyword)
	if err != nil {
		return httptransport.PromptListResponse{}, err
	}
	return httptransport.PromptListResponse{Items: mapPrompts(prompts)}, nil
}

func (h Handler) MyPromptsHandler(ctx context.Context, actor identity.Identity) (httptransport.PromptListResponse, error) {
	prompts, err := h.Catalog.ListMyPrompts(ctx, actor)
	if err != nil {
		return httptransport.PromptListResponse{}, err
	}
	return httptransport.PromptListResponse{Items: mapPrompts(prompts)}, nil
}

// ModerationQueueHandler godoc
// @Summary List the moderation queue
// @Description Returns prompts awaiting moderation, most urgent first. Admin only.
// @Tags prompt-lifecycle
// @Produce json
// @Param X-User-Id header string true "Caller id"
// @Param X-User-Role header string true "Caller role, must be admin"
// @Success 200 {object} httptransport.PromptListResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /api/moderation/v1/moderation/queue [get]
func (h Handler) ModerationQueueHandler(ctx context.Context, actor identity.Identity) (httptransport.PromptListResponse, error) {
	prompts, err := h.Catalog.ModerationQueue(ctx, actor)
	if err != nil {
		return httptransport.PromptListResponse{}, err
	}
	return httptransport.PromptListResponse{Items: mapPrompts(prompts)}, nil
}

func (h Handler) StateSweepHandler(ctx context.Context, actor identity.Identity) (httptransport.SweepResponse, error) {
	if err := h.Lifecycle.RunStateSweep(ctx, actor); err != nil {
		return httptransport.SweepResponse{}, err
	}
	return httptransport.SweepResponse{Triggered: true}, nil
}

func mapPrompt(prompt entities.Prompt) httptransport.PromptResponse {
	return httptransport.PromptResponse{
		PromptID:       prompt.PromptID,
		Description:    prompt.Description,
		Price:          prompt.Price.String(),
		Status:         string(prompt.Status),
		CreatorID:      prompt.CreatorID,
		CreatedAt:      prompt.CreatedAt.UTC().Format(time.RFC3339),
		LastModifiedAt: prompt.LastModifiedAt.UTC().Format(time.RFC3339),
	}
}

func mapPrompts(prompts []entities.Prompt) []httptransport.PromptResponse {
	items := make([]httptransport.PromptResponse, 0, len(prompts))
	for _, prompt := range prompts {
		items = append(items, mapPrompt(prompt))
	}
	return items
}

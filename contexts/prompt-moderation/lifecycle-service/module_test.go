package lifecycleservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"pojat/contexts/prompt-moderation/lifecycle-service/domain/entities"
	domainerrors "pojat/contexts/prompt-moderation/lifecycle-service/domain/errors"
	httptransport "pojat/contexts/prompt-moderation/lifecycle-service/transport/http"
	"pojat/internal/shared/identity"
)

var (
	adminActor   = identity.Identity{UserID: "admin-1", Role: identity.RoleAdmin}
	creatorActor = identity.Identity{UserID: "creator-1", Role: identity.RoleUser}
	otherActor   = identity.Identity{UserID: "user-9", Role: identity.RoleUser}
)

func seedPrompt(id string, status entities.PromptStatus, createdAt time.Time) entities.Prompt {
	return entities.Prompt{
		PromptID:       id,
		Description:    "prompt " + id,
		Status:         status,
		CreatorID:      "creator-1",
		CreatedAt:      createdAt,
		LastModifiedAt: createdAt,
	}
}

func TestCreatePromptStartsPending(t *testing.T) {
	module := NewInMemoryModule(nil, nil)

	resp, err := module.Handler.CreatePromptHandler(
		context.Background(),
		creatorActor,
		httptransport.CreatePromptRequest{Description: "a fresh prompt"},
	)
	if err != nil {
		t.Fatalf("create prompt failed: %v", err)
	}
	if resp.Status != string(entities.StatusPending) {
		t.Fatalf("new prompt status = %s, want pending", resp.Status)
	}
	if resp.CreatorID != creatorActor.UserID {
		t.Fatalf("creator = %s, want %s", resp.CreatorID, creatorActor.UserID)
	}
}

func TestCreatePromptRejectsBlankDescription(t *testing.T) {
	module := NewInMemoryModule(nil, nil)

	_, err := module.Handler.CreatePromptHandler(
		context.Background(),
		creatorActor,
		httptransport.CreatePromptRequest{Description: "   "},
	)
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestTransitionRoleGating(t *testing.T) {
	now := time.Now().UTC()
	module := NewInMemoryModule([]entities.Prompt{seedPrompt("prompt-1", entities.StatusPending, now)}, nil)

	// Non-admin, non-creator is rejected before any policy lookup.
	_, err := module.Handler.TransitionHandler(
		context.Background(),
		otherActor,
		"prompt-1",
		httptransport.TransitionRequest{Status: "active"},
	)
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("stranger transition: expected unauthorized, got %v", err)
	}

	// Creator may only request deletion.
	_, err = module.Handler.TransitionHandler(
		context.Background(),
		creatorActor,
		"prompt-1",
		httptransport.TransitionRequest{Status: "active"},
	)
	if !errors.Is(err, domainerrors.ErrForbiddenTransition) {
		t.Fatalf("creator activation: expected forbidden, got %v", err)
	}

	resp, err := module.Handler.TransitionHandler(
		context.Background(),
		creatorActor,
		"prompt-1",
		httptransport.TransitionRequest{Status: "deletion_requested"},
	)
	if err != nil {
		t.Fatalf("creator deletion request failed: %v", err)
	}
	if resp.Status != string(entities.StatusDeletionRequested) {
		t.Fatalf("status = %s, want deletion_requested", resp.Status)
	}

	// Admin can take it anywhere, including back to the same status.
	resp, err = module.Handler.TransitionHandler(
		context.Background(),
		adminActor,
		"prompt-1",
		httptransport.TransitionRequest{Status: "recall"},
	)
	if err != nil {
		t.Fatalf("admin recall failed: %v", err)
	}
	if resp.Status != string(entities.StatusRecall) {
		t.Fatalf("status = %s, want recall", resp.Status)
	}
}

func TestAdminNoOpTransitionStampsLastModified(t *testing.T) {
	created := time.Now().UTC().Add(-time.Hour)
	module := NewInMemoryModule([]entities.Prompt{seedPrompt("prompt-1", entities.StatusPending, created)}, nil)

	resp, err := module.Handler.TransitionHandler(
		context.Background(),
		adminActor,
		"prompt-1",
		httptransport.TransitionRequest{Status: "pending"},
	)
	if err != nil {
		t.Fatalf("admin no-op transition failed: %v", err)
	}
	stamped, err := time.Parse(time.RFC3339, resp.LastModifiedAt)
	if err != nil {
		t.Fatalf("parse last_modified_at: %v", err)
	}
	if !stamped.After(created) {
		t.Fatalf("no-op transition must refresh last_modified_at: %s", resp.LastModifiedAt)
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	module := NewInMemoryModule([]entities.Prompt{seedPrompt("prompt-1", entities.StatusPending, time.Now().UTC())}, nil)

	_, err := module.Handler.TransitionHandler(
		context.Background(),
		adminActor,
		"prompt-1",
		httptransport.TransitionRequest{Status: "archived"},
	)
	if !errors.Is(err, domainerrors.ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestTransitionUnknownPrompt(t *testing.T) {
	module := NewInMemoryModule(nil, nil)

	_, err := module.Handler.TransitionHandler(
		context.Background(),
		adminActor,
		"missing",
		httptransport.TransitionRequest{Status: "active"},
	)
	if !errors.Is(err, domainerrors.ErrPromptNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetPromptDetailVisibility(t *testing.T) {
	now := time.Now().UTC()
	module := NewInMemoryModule([]entities.Prompt{
		seedPrompt("active-1", entities.StatusActive, now),
		seedPrompt("pending-1", entities.StatusPending, now),
	}, nil)

	if _, err := module.Handler.GetPromptHandler(context.Background(), otherActor, "active-1"); err != nil {
		t.Fatalf("active prompt must be public: %v", err)
	}
	if _, err := module.Handler.GetPromptHandler(context.Background(), creatorActor, "pending-1"); err != nil {
		t.Fatalf("creator reads own pending prompt: %v", err)
	}
	if _, err := module.Handler.GetPromptHandler(context.Background(), adminActor, "pending-1"); err != nil {
		t.Fatalf("admin reads pending prompt: %v", err)
	}
	_, err := module.Handler.GetPromptHandler(context.Background(), otherActor, "pending-1")
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("stranger on pending prompt: expected unauthorized, got %v", err)
	}
}

func TestListPromptsForcesActiveForNonAdmins(t *testing.T) {
	now := time.Now().UTC()
	module := NewInMemoryModule([]entities.Prompt{
		seedPrompt("active-1", entities.StatusActive, now),
		seedPrompt("pending-1", entities.StatusPending, now),
	}, nil)

	resp, err := module.Handler.ListPromptsHandler(context.Background(), otherActor, "pending")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, item := range resp.Items {
		if item.Status != string(entities.StatusActive) {
			t.Fatalf("non-admin listing leaked status %s", item.Status)
		}
	}

	adminResp, err := module.Handler.ListPromptsHandler(context.Background(), adminActor, "pending")
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(adminResp.Items) != 1 || adminResp.Items[0].PromptID != "pending-1" {
		t.Fatalf("admin pending listing = %+v", adminResp.Items)
	}
}

func TestModerationQueueOrdering(t *testing.T) {
	base := time.Now().UTC().Add(-24 * time.Hour)
	module := NewInMemoryModule([]entities.Prompt{
		seedPrompt("needs-old", entities.StatusNeedsReview, base),
		seedPrompt("pending-old", entities.StatusPending, base.Add(time.Minute)),
		seedPrompt("recall-old", entities.StatusRecall, base.Add(2*time.Minute)),
		seedPrompt("deletion-new", entities.StatusDeletionRequested, base.Add(3*time.Minute)),
		seedPrompt("deletion-old", entities.StatusDeletionRequested, base.Add(time.Second)),
		seedPrompt("active-1", entities.StatusActive, base),
	}, nil)

	resp, err := module.Handler.ModerationQueueHandler(context.Background(), adminActor)
	if err != nil {
		t.Fatalf("moderation queue failed: %v", err)
	}
	want := []string{"deletion-old", "deletion-new", "recall-old", "pending-old", "needs-old"}
	if len(resp.Items) != len(want) {
		t.Fatalf("queue length = %d, want %d", len(resp.Items), len(want))
	}
	for i, id := range want {
		if resp.Items[i].PromptID != id {
			t.Fatalf("queue[%d] = %s, want %s", i, resp.Items[i].PromptID, id)
		}
	}

	if _, err := module.Handler.ModerationQueueHandler(context.Background(), otherActor); !errors.Is(err, domainerrors.ErrAdminOnly) {
		t.Fatalf("queue must be admin only, got %v", err)
	}
}

func TestMyPromptsIncludesAllOwnStatuses(t *testing.T) {
	now := time.Now().UTC()
	module := NewInMemoryModule([]entities.Prompt{
		seedPrompt("active-1", entities.StatusActive, now),
		seedPrompt("pending-1", entities.StatusPending, now.Add(time.Second)),
	}, nil)

	resp, err := module.Handler.MyPromptsHandler(context.Background(), creatorActor)
	if err != nil {
		t.Fatalf("my prompts failed: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("creator sees %d prompts, want 2", len(resp.Items))
	}
}

func TestSearchOnlyMatchesActive(t *testing.T) {
	now := time.Now().UTC()
	module := NewInMemoryModule([]entities.Prompt{
		seedPrompt("active-1", entities.StatusActive, now),
		seedPrompt("pending-1", entities.StatusPending, now),
	}, nil)

	resp, err := module.Handler.SearchPromptsHandler(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].PromptID != "active-1" {
		t.Fatalf("search results = %+v", resp.Items)
	}
}

func TestStateSweepAdminGate(t *testing.T) {
	module := NewInMemoryModule(nil, nil)

	if _, err := module.Handler.StateSweepHandler(context.Background(), otherActor); !errors.Is(err, domainerrors.ErrAdminOnly) {
		t.Fatalf("sweep must be admin only, got %v", err)
	}
	if _, err := module.Handler.StateSweepHandler(context.Background(), adminActor); err != nil {
		t.Fatalf("admin sweep failed: %v", err)
	}
	if module.Store.SweepRuns() != 1 {
		t.Fatalf("sweep runs = %d, want 1", module.Store.SweepRuns())
	}
}

package services

import (
	"errors"
	"testing"

	"pojat/contexts/prompt-moderation/lifecycle-service/domain/entities"
	domainerrors "pojat/contexts/prompt-moderation/lifecycle-service/domain/errors"
	"pojat/internal/shared/identity"
)

func TestAuthorizeTransitionPolicy(t *testing.T) {
	prompt := entities.Prompt{
		PromptID:  "prompt-1",
		Status:    entities.StatusPending,
		CreatorID: "creator-1",
	}
	admin := identity.Identity{UserID: "admin-1", Role: identity.RoleAdmin}
	creator := identity.Identity{UserID: "creator-1", Role: identity.RoleUser}
	stranger := identity.Identity{UserID: "user-9", Role: identity.RoleUser}

	cases := []struct {
		name    string
		actor   identity.Identity
		target  entities.PromptStatus
		wantErr error
	}{
		{"admin activates", admin, entities.StatusActive, nil},
		{"admin recalls", admin, entities.StatusRecall, nil},
		{"admin no-op to same status", admin, entities.StatusPending, nil},
		{"admin requests deletion", admin, entities.StatusDeletionRequested, nil},
		{"creator requests deletion", creator, entities.StatusDeletionRequested, nil},
		{"creator activates own prompt", creator, entities.StatusActive, domainerrors.ErrForbiddenTransition},
		{"creator recalls own prompt", creator, entities.StatusRecall, domainerrors.ErrForbiddenTransition},
		{"stranger requests deletion", stranger, entities.StatusDeletionRequested, domainerrors.ErrUnauthorized},
		{"stranger activates", stranger, entities.StatusActive, domainerrors.ErrUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := AuthorizeTransition(tc.actor, prompt, tc.target)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected allow, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCanReadPromptGatesNonActive(t *testing.T) {
	pending := entities.Prompt{PromptID: "p", Status: entities.StatusPending, CreatorID: "creator-1"}
	active := entities.Prompt{PromptID: "p", Status: entities.StatusActive, CreatorID: "creator-1"}

	admin := identity.Identity{UserID: "admin-1", Role: identity.RoleAdmin}
	creator := identity.Identity{UserID: "creator-1", Role: identity.RoleUser}
	stranger := identity.Identity{UserID: "user-9", Role: identity.RoleUser}

	if !CanReadPrompt(stranger, active) {
		t.Fatal("active prompts are public")
	}
	if !CanReadPrompt(admin, pending) || !CanReadPrompt(creator, pending) {
		t.Fatal("admin and creator read non-active prompts")
	}
	if CanReadPrompt(stranger, pending) {
		t.Fatal("stranger must not read non-active prompts")
	}
}

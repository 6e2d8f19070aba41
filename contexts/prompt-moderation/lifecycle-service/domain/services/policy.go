package services

import (
	"pojat/contexts/prompt-moderation/lifecycle-service/domain/entities"
	domainerrors "pojat/contexts/prompt-moderation/lifecycle-service/domain/errors"
	"pojat/internal/shared/identity"
)

// actorClass collapses (role, authorship) into the dimension the transition
// policy is keyed on.
type actorClass int

const (
	actorAdmin actorClass = iota
	actorCreator
	actorStranger
)

// transitionPolicy is the allow table for status transitions. A nil set means
// every target is allowed; an absent class means none is. Current status is
// intentionally not part of the key: admins may apply no-op transitions (they
// still bump LastModifiedAt) and creators may request deletion from any state.
var transitionPolicy = map[actorClass]map[entities.PromptStatus]bool{
	actorAdmin: nil,
	actorCreator: {
		entities.StatusDeletionRequested: true,
	},
}

func classify(actor identity.Identity, prompt entities.Prompt) actorClass {
	switch {
	case actor.IsAdmin():
		return actorAdmin
	case actor.UserID == prompt.CreatorID:
		return actorCreator
	default:
		return actorStranger
	}
}

// AuthorizeTransition applies the role-gated transition rules and returns the
// matching sentinel when the actor lacks the capability.
func AuthorizeTransition(actor identity.Identity, prompt entities.Prompt, target entities.PromptStatus) error {
	allowed, known := transitionPolicy[classify(actor, prompt)]
	if !known {
		return domainerrors.ErrUnauthorized
	}
	if allowed == nil || allowed[target] {
		return nil
	}
	return domainerrors.ErrForbiddenTransition
}

// CanReadPrompt gates detail reads: non-active prompts are visible only to
// admins and the creator.
func CanReadPrompt(actor identity.Identity, prompt entities.Prompt) bool {
	if prompt.Status == entities.StatusActive {
		return true
	}
	return actor.IsAdmin() || (actor.UserID != "" && actor.UserID == prompt.CreatorID)
}

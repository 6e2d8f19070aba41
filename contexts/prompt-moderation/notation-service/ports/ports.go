// Package ports declares the driven-side interfaces of the notation service.
package ports

import "context"

// PromptProjection is the slice of prompt state notation needs.
type PromptProjection struct {
	PromptID       string
	CreatorGroupID *string
	Status         string
}

// RatedNote is one rating joined with its rater's group affinity.
type RatedNote struct {
	NoteID       string
	Value        float64
	RaterGroupID *string
}

// NoteRepository reads prompts and their ratings. The service never writes;
// note creation belongs to another context.
type NoteRepository interface {
	GetPromptProjection(ctx context.Context, promptID string) (PromptProjection, error)
	ListNotesByPrompt(ctx context.Context, promptID string) ([]RatedNote, error)
}

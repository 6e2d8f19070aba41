package application

import (
	"context"
	"errors"
	"math"
	"testing"

	"pojat/contexts/prompt-moderation/notation-service/adapters/memory"
	domainerrors "pojat/contexts/prompt-moderation/notation-service/domain/errors"
	"pojat/contexts/prompt-moderation/notation-service/ports"
)

func groupPtr(s string) *string { return &s }

func newService(store *memory.Store) Service {
	return Service{Notes: store}
}

func TestComputeNotationMixedGroups(t *testing.T) {
	store := memory.NewStore()
	store.SetPrompt(ports.PromptProjection{
		PromptID:       "prompt-1",
		CreatorGroupID: groupPtr("g1"),
		Status:         "active",
	})
	store.AddNote("prompt-1", ports.RatedNote{NoteID: "n1", Value: 5, RaterGroupID: groupPtr("g1")})
	store.AddNote("prompt-1", ports.RatedNote{NoteID: "n2", Value: 10, RaterGroupID: groupPtr("g2")})

	notation, err := newService(store).ComputeNotation(context.Background(), "prompt-1")
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	// (5*0.6 + 10*0.4) / 2 = 3.5 — divided by the raw count, not the weight sum.
	if math.Abs(notation.WeightedScore-3.5) > 1e-9 {
		t.Fatalf("weighted score = %f, want 3.5", notation.WeightedScore)
	}
	if notation.Count != 2 {
		t.Fatalf("count = %d, want 2", notation.Count)
	}
}

func TestComputeNotationZeroNotes(t *testing.T) {
	store := memory.NewStore()
	store.SetPrompt(ports.PromptProjection{PromptID: "prompt-1", Status: "active"})

	notation, err := newService(store).ComputeNotation(context.Background(), "prompt-1")
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if notation.WeightedScore != 0 || notation.Count != 0 {
		t.Fatalf("empty notation = %+v, want zeros", notation)
	}
}

func TestComputeNotationNullGroupsUseLowWeight(t *testing.T) {
	store := memory.NewStore()
	store.SetPrompt(ports.PromptProjection{PromptID: "prompt-1", Status: "active"})
	store.AddNote("prompt-1", ports.RatedNote{NoteID: "n1", Value: 10, RaterGroupID: nil})

	notation, err := newService(store).ComputeNotation(context.Background(), "prompt-1")
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if math.Abs(notation.WeightedScore-4.0) > 1e-9 {
		t.Fatalf("weighted score = %f, want 4.0", notation.WeightedScore)
	}
}

func TestComputeNotationOnlyDefinedForActive(t *testing.T) {
	store := memory.NewStore()
	store.SetPrompt(ports.PromptProjection{PromptID: "prompt-1", Status: "recall"})

	_, err := newService(store).ComputeNotation(context.Background(), "prompt-1")
	if !errors.Is(err, domainerrors.ErrPromptNotActive) {
		t.Fatalf("expected not-active error, got %v", err)
	}

	_, err = newService(store).ComputeNotation(context.Background(), "missing")
	if !errors.Is(err, domainerrors.ErrPromptNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = newService(store).ComputeNotation(context.Background(), "  ")
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

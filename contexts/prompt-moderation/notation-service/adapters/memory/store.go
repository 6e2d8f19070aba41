package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainerrors "pojat/contexts/prompt-moderation/notation-service/domain/errors"
	"pojat/contexts/prompt-moderation/notation-service/ports"
)

// Store is the in-memory note adapter used by tests and local wiring.
type Store struct {
	mu sync.RWMutex

	prompts map[string]ports.PromptProjection
	notes   map[string][]ports.RatedNote
}

func NewStore() *Store {
	return &Store{
		prompts: make(map[string]ports.PromptProjection),
		notes:   make(map[string][]ports.RatedNote),
	}
}

// SetPrompt seeds the prompt projection notation reads against.
func (s *Store) SetPrompt(projection ports.PromptProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[strings.TrimSpace(projection.PromptID)] = projection
}

// AddNote appends one rated note for a prompt.
func (s *Store) AddNote(promptID string, note ports.RatedNote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(promptID)
	s.notes[key] = append(s.notes[key], note)
}

func (s *Store) GetPromptProjection(_ context.Context, promptID string) (ports.PromptProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	projection, ok := s.prompts[strings.TrimSpace(promptID)]
	if !ok {
		return ports.PromptProjection{}, domainerrors.ErrPromptNotFound
	}
	return projection, nil
}

func (s *Store) ListNotesByPrompt(_ context.Context, promptID string) ([]ports.RatedNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := append([]ports.RatedNote(nil), s.notes[strings.TrimSpace(promptID)]...)
	sort.Slice(items, func(i, j int) bool { return items[i].NoteID < items[j].NoteID })
	return items, nil
}

var _ ports.NoteRepository = (*Store)(nil)

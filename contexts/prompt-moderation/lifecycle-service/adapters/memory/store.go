package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"pojat/contexts/prompt-moderation/lifecycle-service/domain/entities"
	domainerrors "pojat/contexts/prompt-moderation/lifecycle-service/domain/errors"
	"pojat/contexts/prompt-moderation/lifecycle-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory lifecycle adapter used by tests and local wiring.
// Every write takes the store lock, which serializes per-prompt mutations.
type Store struct {
	mu sync.RWMutex

	prompts map[string]entities.Prompt
	outbox  map[string]outboxRecord
	swept   int
}

func NewStore(seed []entities.Prompt) *Store {
	prompts := make(map[string]entities.Prompt, len(seed))
	for _, prompt := range seed {
		prompts[prompt.PromptID] = prompt
	}
	return &Store{
		prompts: prompts,
		outbox:  make(map[string]outboxRecord),
	}
}

// SetPrompt seeds or overwrites a prompt row.
func (s *Store) SetPrompt(prompt entities.Prompt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[strings.TrimSpace(prompt.PromptID)] = prompt
}

// SweepRuns reports how many times the maintenance job ran.
func (s *Store) SweepRuns() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.swept
}

func (s *Store) CreatePrompt(_ context.Context, prompt entities.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[strings.TrimSpace(prompt.PromptID)] = prompt
	return nil
}

func (s *Store) GetPrompt(_ context.Context, promptID string) (entities.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prompt, ok := s.prompts[strings.TrimSpace(promptID)]
	if !ok {
		return entities.Prompt{}, domainerrors.ErrPromptNotFound
	}
	return prompt, nil
}

func (s *Store) UpdatePromptStatus(
	_ context.Context,
	promptID string,
	status entities.PromptStatus,
	modifiedAt time.Time,
) (entities.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prompt, ok := s.prompts[strings.TrimSpace(promptID)]
	if !ok {
		return entities.Prompt{}, domainerrors.ErrPromptNotFound
	}
	prompt.Status = status
	prompt.LastModifiedAt = modifiedAt.UTC()
	s.prompts[prompt.PromptID] = prompt
	return prompt, nil
}

func (s *Store) ListPromptsByStatus(_ context.Context, status entities.PromptStatus) ([]entities.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []entities.Prompt
	for _, prompt := range s.prompts {
		if prompt.Status == status {
			items = append(items, prompt)
		}
	}
	sortNewestFirst(items)
	return items, nil
}

func (s *Store) ListPromptsByCreator(_ context.Context, creatorID string) ([]entities.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []entities.Prompt
	for _, prompt := range s.prompts {
		if prompt.CreatorID == strings.TrimSpace(creatorID) {
			items = append(items, prompt)
		}
	}
	sortNewestFirst(items)
	return items, nil
}

func (s *Store) SearchActivePrompts(_ context.Context, keyword string) ([]entities.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(keyword))
	var items []entities.Prompt
	for _, prompt := range s.prompts {
		if prompt.Status != entities.StatusActive {
			continue
		}
		if strings.Contains(strings.ToLower(prompt.Description), needle) {
			items = append(items, prompt)
		}
	}
	sortNewestFirst(items)
	return items, nil
}

func (s *Store) ListModerationQueue(_ context.Context) ([]entities.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []entities.Prompt
	for _, prompt := range s.prompts {
		if prompt.InModeration() {
			items = append(items, prompt)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		left, right := items[i].ModerationPriority(), items[j].ModerationPriority()
		if left == right {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return left < right
	})
	return items, nil
}

func (s *Store) VerifyPromptStates(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swept++
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(envelope.EventID)
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := s.outbox[id]; exists {
		return nil
	}
	s.outbox[id] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:  id,
			EventType: envelope.EventType,
			Payload:   payload,
			CreatedAt: envelope.OccurredAt.UTC(),
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	var items []ports.OutboxMessage
	for _, record := range s.outbox {
		if !record.published {
			items = append(items, record.message)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return nil
	}
	record.published = true
	s.outbox[strings.TrimSpace(outboxID)] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func sortNewestFirst(items []entities.Prompt) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].PromptID < items[j].PromptID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

var _ ports.PromptRepository = (*Store)(nil)
var _ ports.MaintenanceRunner = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)

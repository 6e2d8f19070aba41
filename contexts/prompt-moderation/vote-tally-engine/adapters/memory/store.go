package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pojat/contexts/prompt-moderation/vote-tally-engine/domain/entities"
	domainerrors "pojat/contexts/prompt-moderation/vote-tally-engine/domain/errors"
	domainservices "pojat/contexts/prompt-moderation/vote-tally-engine/domain/services"
	"pojat/contexts/prompt-moderation/vote-tally-engine/ports"

	"github.com/google/uuid"
)

// Store is the in-memory tally adapter. The store mutex serializes every
// tally write, which yields the per-prompt atomicity the port demands.
type Store struct {
	mu sync.RWMutex

	prompts     map[string]ports.PromptProjection
	voterGroups map[string]*string
	votes       map[string]entities.Vote
	byIdentity  map[string]string // voterID|promptID -> voteID
	outbox      []ports.EventEnvelope
}

func NewStore(seed []entities.Vote) *Store {
	votes := make(map[string]entities.Vote, len(seed))
	byIdentity := make(map[string]string, len(seed))
	for _, vote := range seed {
		votes[vote.VoteID] = vote
		byIdentity[identityKey(vote.VoterID, vote.PromptID)] = vote.VoteID
	}
	return &Store{
		prompts:     make(map[string]ports.PromptProjection),
		voterGroups: make(map[string]*string),
		votes:       votes,
		byIdentity:  byIdentity,
	}
}

// SetPrompt seeds the prompt projection the engine votes against.
func (s *Store) SetPrompt(projection ports.PromptProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[strings.TrimSpace(projection.PromptID)] = projection
}

// SetVoterGroup seeds a voter's group affinity; nil means no group.
func (s *Store) SetVoterGroup(voterID string, groupID *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voterGroups[strings.TrimSpace(voterID)] = groupID
}

func (s *Store) CastVote(_ context.Context, vote entities.Vote, now time.Time) (entities.TallyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompt, ok := s.prompts[strings.TrimSpace(vote.PromptID)]
	if !ok {
		return entities.TallyResult{}, domainerrors.ErrPromptNotFound
	}
	if prompt.Status != "recall" {
		return entities.TallyResult{}, domainerrors.ErrPromptNotOpenForVoting
	}
	if prompt.CreatorID == strings.TrimSpace(vote.VoterID) {
		return entities.TallyResult{}, domainerrors.ErrSelfVoteForbidden
	}
	if _, voted := s.byIdentity[identityKey(vote.VoterID, vote.PromptID)]; voted {
		return entities.TallyResult{}, domainerrors.ErrAlreadyVoted
	}

	s.votes[vote.VoteID] = vote
	s.byIdentity[identityKey(vote.VoterID, vote.PromptID)] = vote.VoteID

	total := s.tallyLocked(prompt)
	result := entities.TallyResult{
		VoteID:       vote.VoteID,
		PromptID:     prompt.PromptID,
		TotalPoints:  total,
		PointsNeeded: domainservices.PointsNeeded(total),
		PromptStatus: prompt.Status,
	}
	if domainservices.Eligible(total) {
		prompt.Status = "active"
		prompt.LastModifiedAt = now.UTC()
		s.prompts[prompt.PromptID] = prompt
		result.Activated = true
		result.PromptStatus = prompt.Status
	}
	return result, nil
}

func (s *Store) ActivateIfEligible(_ context.Context, promptID string, now time.Time) (entities.TallyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompt, ok := s.prompts[strings.TrimSpace(promptID)]
	if !ok {
		return entities.TallyResult{}, domainerrors.ErrPromptNotFound
	}
	total := s.tallyLocked(prompt)
	result := entities.TallyResult{
		PromptID:     prompt.PromptID,
		TotalPoints:  total,
		PointsNeeded: domainservices.PointsNeeded(total),
		PromptStatus: prompt.Status,
	}
	if prompt.Status == "active" {
		result.AlreadyActive = true
		return result, nil
	}
	if prompt.Status != "recall" {
		return result, domainerrors.ErrPromptNotOpenForVoting
	}
	if !domainservices.Eligible(total) {
		return result, domainerrors.ErrThresholdNotMet
	}
	prompt.Status = "active"
	prompt.LastModifiedAt = now.UTC()
	s.prompts[prompt.PromptID] = prompt
	result.Activated = true
	result.PromptStatus = prompt.Status
	return result, nil
}

func (s *Store) GetPromptProjection(_ context.Context, promptID string) (ports.PromptProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prompt, ok := s.prompts[strings.TrimSpace(promptID)]
	if !ok {
		return ports.PromptProjection{}, domainerrors.ErrPromptNotFound
	}
	return prompt, nil
}

func (s *Store) TallyPrompt(_ context.Context, promptID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prompt, ok := s.prompts[strings.TrimSpace(promptID)]
	if !ok {
		return 0, domainerrors.ErrPromptNotFound
	}
	return s.tallyLocked(prompt), nil
}

func (s *Store) ListVotesByPrompt(_ context.Context, promptID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []entities.Vote
	for _, vote := range s.votes {
		if vote.PromptID == strings.TrimSpace(promptID) {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].VoteID < items[j].VoteID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

// tallyLocked sums per-vote weights for the prompt. Callers hold the lock.
func (s *Store) tallyLocked(prompt ports.PromptProjection) int {
	total := 0
	for _, vote := range s.votes {
		if vote.PromptID != prompt.PromptID {
			continue
		}
		total += domainservices.VotePoints(s.voterGroups[vote.VoterID], prompt.CreatorGroupID)
	}
	return total
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, envelope)
	return nil
}

// Outbox returns the appended envelopes in order, for assertions.
func (s *Store) Outbox() []ports.EventEnvelope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.EventEnvelope(nil), s.outbox...)
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func identityKey(voterID, promptID string) string {
	return strings.TrimSpace(voterID) + "|" + strings.TrimSpace(promptID)
}

var _ ports.VoteRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)

package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PromptStatus is the closed lifecycle enum. Deletion is a terminal status,
// never a row removal.
type PromptStatus string

const (
	StatusPending           PromptStatus = "pending"
	StatusActive            PromptStatus = "active"
	StatusNeedsReview       PromptStatus = "needs_review"
	StatusRecall            PromptStatus = "recall"
	StatusDeletionRequested PromptStatus = "deletion_requested"
)

// ParseStatus maps a caller-supplied status string onto the closed enum.
func ParseStatus(raw string) (PromptStatus, bool) {
	switch PromptStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, true
	case StatusActive:
		return StatusActive, true
	case StatusNeedsReview:
		return StatusNeedsReview, true
	case StatusRecall:
		return StatusRecall, true
	case StatusDeletionRequested:
		return StatusDeletionRequested, true
	default:
		return "", false
	}
}

type Prompt struct {
	PromptID       string
	Description    string
	Price          decimal.Decimal
	Status         PromptStatus
	CreatorID      string
	CreatedAt      time.Time
	LastModifiedAt time.Time
}

// ModerationPriority orders the admin queue: deletion requests first, then
// recalls open for voting, then fresh submissions, then reviews.
func (p Prompt) ModerationPriority() int {
	switch p.Status {
	case StatusDeletionRequested:
		return 1
	case StatusRecall:
		return 2
	case StatusPending:
		return 3
	case StatusNeedsReview:
		return 4
	default:
		return 5
	}
}

// InModeration reports whether the prompt sits in a status the admin queue
// surfaces.
func (p Prompt) InModeration() bool {
	switch p.Status {
	case StatusPending, StatusNeedsReview, StatusRecall, StatusDeletionRequested:
		return true
	default:
		return false
	}
}

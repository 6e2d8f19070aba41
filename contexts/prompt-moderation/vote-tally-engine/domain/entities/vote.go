package entities

import "time"

// Vote is one reinstatement vote. Votes are append-only evidence: never
// updated or deleted once recorded, unique per (voter, prompt).
type Vote struct {
	VoteID    string
	VoterID   string
	PromptID  string
	CreatedAt time.Time
}

// TallyResult is the outcome of a tally-affecting operation. TotalPoints is
// the group-weighted sum over all recorded votes for the prompt.
type TallyResult struct {
	VoteID        string
	PromptID      string
	TotalPoints   int
	Activated     bool
	AlreadyActive bool
	PointsNeeded  int
	PromptStatus  string
}

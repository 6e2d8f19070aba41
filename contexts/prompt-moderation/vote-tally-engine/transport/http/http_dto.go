// Package httptransport holds the HTTP wire contracts of the vote tally
// engine. Handlers and the platform server share these types; application
// and domain code never import them.
package httptransport

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// VoteResponse is the tally snapshot returned after casting a vote.
type VoteResponse struct {
	VoteID       string `json:"vote_id"`
	PromptID     string `json:"prompt_id"`
	TotalPoints  int    `json:"total_points"`
	Activated    bool   `json:"activated"`
	PointsNeeded int    `json:"points_needed"`
	PromptStatus string `json:"prompt_status"`
}

// TallyPreviewResponse reports activation eligibility without writing.
type TallyPreviewResponse struct {
	PromptID     string `json:"prompt_id"`
	PromptStatus string `json:"prompt_status"`
	TotalPoints  int    `json:"total_points"`
	Eligible     bool   `json:"eligible"`
	PointsNeeded int    `json:"points_needed"`
}

// ForceActivateResponse is the outcome of an admin activation request.
type ForceActivateResponse struct {
	PromptID      string `json:"prompt_id"`
	PromptStatus  string `json:"prompt_status"`
	TotalPoints   int    `json:"total_points"`
	Activated     bool   `json:"activated"`
	AlreadyActive bool   `json:"already_active"`
}

// VoteRecord is one recorded vote in an admin listing.
type VoteRecord struct {
	VoteID    string `json:"vote_id"`
	VoterID   string `json:"voter_id"`
	PromptID  string `json:"prompt_id"`
	CreatedAt string `json:"created_at"`
}

// VoteListResponse wraps admin vote listings.
type VoteListResponse struct {
	Items []VoteRecord `json:"items"`
}

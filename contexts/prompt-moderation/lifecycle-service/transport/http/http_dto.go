package httptransport

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePromptRequest struct {
	Description string `json:"description"`
}

type TransitionRequest struct {
	Status string `json:"status"`
}

type PromptResponse struct {
	PromptID       string    `json:"prompt_id"`
	Description    string    `json:"description"`
	Price          string    `json:"price"`
	Status         string    `json:"status"`
	CreatorID      string    `json:"creator_id"`
	CreatedAt      string    `json:"created_at"`
	LastModifiedAt string    `json:"last_modified_at"`
	Notation       *Notation `json:"notation,omitempty"`
}

// Notation is the weighted rating figure embedded on active prompt detail.
type Notation struct {
	WeightedScore float64 `json:"weighted_score"`
	Count         int     `json:"note_count"`
}

type PromptListResponse struct {
	Items []PromptResponse `json:"items"`
}

type SweepResponse struct {
	Triggered bool `json:"triggered"`
}

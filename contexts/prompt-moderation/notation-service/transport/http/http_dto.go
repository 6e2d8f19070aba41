// Package httptransport holds the HTTP wire contracts of the notation
// service.
package httptransport

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NotationResponse is the aggregate rating figure for an active prompt.
type NotationResponse struct {
	PromptID      string  `json:"prompt_id"`
	WeightedScore float64 `json:"weighted_score"`
	Count         int     `json:"count"`
}

package errors

import "errors"

var (
	ErrInvalidVoteInput       = errors.New("invalid vote input")
	ErrPromptNotFound         = errors.New("prompt not found")
	ErrPromptNotOpenForVoting = errors.New("prompt is not open for voting")
	ErrSelfVoteForbidden      = errors.New("cannot vote for own prompt")
	ErrAlreadyVoted           = errors.New("voter already voted for this prompt")
	ErrThresholdNotMet        = errors.New("activation threshold not met")
	ErrAdminOnly              = errors.New("operation requires admin role")
)

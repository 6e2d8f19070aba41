package httpserver

import (
	"errors"
	"net/http"

	voteerrors "pojat/contexts/prompt-moderation/vote-tally-engine/domain/errors"
	votehttp "pojat/contexts/prompt-moderation/vote-tally-engine/transport/http"
)

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveIdentity(r)
	if !ok {
		writeVoteError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.votes.Handler.CastVoteHandler(r.Context(), actor, r.PathValue("prompt_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleTallyPreview(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveIdentity(r)
	if !ok {
		writeVoteError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.votes.Handler.PreviewHandler(r.Context(), actor, r.PathValue("prompt_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleForceActivate(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveIdentity(r)
	if !ok {
		writeVoteError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.votes.Handler.ForceActivateHandler(r.Context(), actor, r.PathValue("prompt_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListVotes(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveIdentity(r)
	if !ok {
		writeVoteError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.votes.Handler.ListVotesHandler(r.Context(), actor, r.PathValue("prompt_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeVoteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voteerrors.ErrPromptNotFound):
		writeVoteError(w, http.StatusNotFound, "prompt_not_found", err.Error())
	case errors.Is(err, voteerrors.ErrPromptNotOpenForVoting):
		writeVoteError(w, http.StatusUnprocessableEntity, "invalid_state", err.Error())
	case errors.Is(err, voteerrors.ErrSelfVoteForbidden):
		writeVoteError(w, http.StatusForbidden, "self_vote_forbidden", err.Error())
	case errors.Is(err, voteerrors.ErrAlreadyVoted):
		writeVoteError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, voteerrors.ErrThresholdNotMet):
		writeVoteError(w, http.StatusUnprocessableEntity, "threshold_not_met", err.Error())
	case errors.Is(err, voteerrors.ErrAdminOnly):
		writeVoteError(w, http.StatusForbidden, "admin_only", err.Error())
	case errors.Is(err, voteerrors.ErrInvalidVoteInput):
		writeVoteError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		writeVoteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeVoteError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, votehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	lifecycleerrors "pojat/contexts/prompt-moderation/lifecycle-service/domain/errors"
	lifecyclehttp "pojat/contexts/prompt-moderation/lifecycle-service/transport/http"
)

func (s *Server) handleCreatePrompt(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveIdentity(r)
	if !ok {
		writeLifecycleError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req lifecyclehttp.CreatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.lifecycle.Handler.CreatePromptHandler(r.Context(), actor, req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveIdentity(r)
	if !ok {
		writeLifecycleError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req lifecyclehttp.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.lifecycle.Handler.TransitionHandler(r.Context(), actor, r.PathValue("prompt_id"), req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveIdentity(r)
	if !ok {
		writeLifecycleError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.lifecycle.Handler.GetPromptHandler(r.Context(), actor, r.PathValue("prompt_id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	if resp.Status == "active" {
		// Notation failures degrade the detail view, they never fail it.
		if notation, err := s.notation.Handler.GetNotationHandler(r.Context(), resp.PromptID); err == nil {
			resp.Notation = &lifecyclehttp.Notation{
				WeightedScore: notation.WeightedScore,
				Count:         notation.Count,
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveIdentity(r)
	if !ok {
		writeLifecycleError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.lifecycle.Handler.ListPromptsHandler(r.Context(), actor, r.URL.Query().Get("status"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearchPrompts(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.SearchPromptsHandler(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMyPrompts(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveIdentity(r)
	if !ok {
		writeLifecycleError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.lifecycle.Handler.MyPromptsHandler(r.Context(), actor)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleModerationQueue(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveIdentity(r)
	if !ok {
		writeLifecycleError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.lifecycle.Handler.ModerationQueueHandler(r.Context(), actor)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStateSweep(w http.ResponseWriter, r *http.Request) {
	actor, ok := resolveIdentity(r)
	if !ok {
		writeLifecycleError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.lifecycle.Handler.StateSweepHandler(r.Context(), actor)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func writeLifecycleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycleerrors.ErrPromptNotFound):
		writeLifecycleError(w, http.StatusNotFound, "prompt_not_found", err.Error())
	case errors.Is(err, lifecycleerrors.ErrUnauthorized):
		writeLifecycleError(w, http.StatusForbidden, "access_denied", err.Error())
	case errors.Is(err, lifecycleerrors.ErrForbiddenTransition):
		writeLifecycleError(w, http.StatusForbidden, "forbidden_transition", err.Error())
	case errors.Is(err, lifecycleerrors.ErrAdminOnly):
		writeLifecycleError(w, http.StatusForbidden, "admin_only", err.Error())
	case errors.Is(err, lifecycleerrors.ErrInvalidStatus):
		writeLifecycleError(w, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, lifecycleerrors.ErrInvalidInput):
		writeLifecycleError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		writeLifecycleError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLifecycleError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, lifecyclehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

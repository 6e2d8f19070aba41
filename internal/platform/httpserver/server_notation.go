package httpserver

import (
	"errors"
	"net/http"

	notationerrors "pojat/contexts/prompt-moderation/notation-service/domain/errors"
	notationhttp "pojat/contexts/prompt-moderation/notation-service/transport/http"
)

func (s *Server) handleGetNotation(w http.ResponseWriter, r *http.Request) {
	resp, err := s.notation.Handler.GetNotationHandler(r.Context(), r.PathValue("prompt_id"))
	if err != nil {
		writeNotationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeNotationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notationerrors.ErrPromptNotFound):
		writeNotationError(w, http.StatusNotFound, "prompt_not_found", err.Error())
	case errors.Is(err, notationerrors.ErrPromptNotActive):
		writeNotationError(w, http.StatusUnprocessableEntity, "prompt_not_active", err.Error())
	case errors.Is(err, notationerrors.ErrInvalidInput):
		writeNotationError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		writeNotationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeNotationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, notationhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"podcast-studio/pkg/aiclient"
	"podcast-studio/pkg/content"
	"podcast-studio/pkg/extraction"
	"podcast-studio/pkg/review"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps workflow errors onto HTTP statuses. Endpoint errors keep
// the server-provided message verbatim so the reviewer sees exactly what the
// endpoint said.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, extraction.ErrNoContentProvided),
		errors.Is(err, content.ErrContentTooLong),
		errors.Is(err, content.ErrUnsupportedFileType):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, aiclient.ErrAuthenticationRequired):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, review.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, review.ErrUnknownLanguage), errors.Is(err, review.ErrUnknownField):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, review.ErrNotApplicable), errors.Is(err, review.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, review.ErrNoExtraction):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		if apiErr, ok := aiclient.IsAPIError(err); ok {
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: apiErr.Message})
			return
		}
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

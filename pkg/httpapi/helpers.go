package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	gerrors "github.com/jllopis/gremio/pkg/errors"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "INVALID_INPUT", "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		}
		return v, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeEngineError maps a domain error to its status code. Internal details
// stay in the logs; the body carries a stable code and a generic message.
func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	ge := gerrors.AsGremioError(err)
	s.logger.WarnContext(r.Context(), "httpapi.engine.error",
		"code", string(ge.Code), "error", err)

	status := ge.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	message := "request failed"
	switch ge.Code {
	case gerrors.CodeIncompleteResults:
		message = "assessment results are still incomplete"
	case gerrors.CodeSessionState:
		message = "session is not in a valid state for this request"
	case gerrors.CodeInvalidInput:
		message = "invalid request"
	case gerrors.CodeNotFound:
		message = "not found"
	case gerrors.CodeConfig:
		message = "service configuration error"
	}
	writeError(w, status, string(ge.Code), message)
}

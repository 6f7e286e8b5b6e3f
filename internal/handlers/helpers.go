package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}

// WriteRawJSON writes an already-encoded JSON document.
func WriteRawJSON(w http.ResponseWriter, statusCode int, payload json.RawMessage) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_, err := w.Write(payload)
	return err
}

// WriteSuccess writes the mutation acknowledgement {"status":"success"}.
func WriteSuccess(w http.ResponseWriter) error {
	return WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// WriteError writes {"error": message}.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{"error": message})
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidFormat), errors.Is(err, common.ErrUnsupportedCode):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrDataUnavailable):
		return http.StatusNotFound
	case errors.Is(err, common.ErrProviderTimeout), errors.Is(err, common.ErrGeneratorTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, common.ErrProviderFailure), errors.Is(err, common.ErrGeneratorFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError logs err and writes it as {"error": message} with the mapped status.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger arbor.ILogger, err error) {
	status := StatusFor(err)
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.
		Str("trace_id", common.TraceID(r.Context())).
		Str("path", r.URL.Path).
		Int("status", status).
		Err(err).
		Msg("Request failed")
	WriteError(w, status, common.ErrorMessage(err))
}

// extractIDFromPath returns the path segment after prefix, e.g. the code in /api/holders/600519
func extractIDFromPath(path, prefix string) string {
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	id := strings.TrimPrefix(path, prefix)
	return strings.Trim(id, "/")
}

// queryBool parses a boolean query parameter; anything unparseable is false.
func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

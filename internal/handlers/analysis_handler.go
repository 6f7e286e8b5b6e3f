package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/interfaces"
	"github.com/ternarybob/stockdash/internal/models"
)

// AnalysisHandler serves the three LLM analysis tracks.
type AnalysisHandler struct {
	analysis interfaces.AnalysisService
	logger   arbor.ILogger
}

func NewAnalysisHandler(analysis interfaces.AnalysisService, logger arbor.ILogger) *AnalysisHandler {
	return &AnalysisHandler{
		analysis: analysis,
		logger:   logger,
	}
}

// TrackHandler returns the handler for GET {prefix}{code}?force_refresh=true.
// The body is the parsed analysis object, or the error envelope when the
// generator reply could not be parsed. Both are 200 responses.
func (h *AnalysisHandler) TrackHandler(track models.Track, prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !RequireMethod(w, r, http.MethodGet) {
			return
		}

		code := extractIDFromPath(r.URL.Path, prefix)
		result, err := h.analysis.Analyze(r.Context(), track, code, queryBool(r, "force_refresh"))
		if err != nil {
			WriteServiceError(w, r, h.logger, err)
			return
		}

		if result.FromCache {
			w.Header().Set("X-Cache", "HIT")
		} else {
			w.Header().Set("X-Cache", "MISS")
		}
		WriteRawJSON(w, http.StatusOK, result.Payload)
	}
}

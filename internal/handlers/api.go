package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/services/scheduler"
)

// JobStatusSource reports scheduled job state for the health endpoint.
type JobStatusSource interface {
	GetAllJobStatuses() map[string]*scheduler.JobStatus
}

type APIHandler struct {
	jobs   JobStatusSource
	logger arbor.ILogger
}

// NewAPIHandler creates the system handler. jobs may be nil when the scheduler is disabled.
func NewAPIHandler(jobs JobStatusSource, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		jobs:   jobs,
		logger: logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}

// HealthHandler returns health check status
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	resp := map[string]interface{}{"status": "ok"}
	if h.jobs != nil {
		resp["jobs"] = h.jobs.GetAllJobStatuses()
	}
	WriteJSON(w, http.StatusOK, resp)
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "Not Found: "+r.URL.Path)
}

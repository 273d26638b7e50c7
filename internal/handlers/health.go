package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"comic-gallery/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Ready    bool   `json:"ready"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`

	// Catalog summary
	Items      int    `json:"items"`
	Groups     int    `json:"groups"`
	LastLoaded string `json:"lastLoaded,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// databaseStatus pings the history database, if there is one.
func (h *Handlers) databaseStatus(ctx context.Context) string {
	if h.history == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.history.Ping(ctx); err != nil {
		return "unavailable"
	}
	return "ok"
}

// HealthCheck returns the health status of the service. An unreachable
// history database marks it degraded; the status code stays 200.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()

	response := HealthResponse{
		Status:       statusHealthy,
		Ready:        true,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Database:     h.databaseStatus(r.Context()),
		Items:        len(snap.Items),
		Groups:       len(snap.Groups),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}
	if !snap.LoadedAt.IsZero() {
		response.LastLoaded = snap.LoadedAt.Format(time.RFC3339)
	}
	if response.Database == "unavailable" {
		response.Status = statusDegraded
	}

	writeJSONResponse(w, http.StatusOK, response)
}

// LivenessCheck always answers 200 while the server is running
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 once the images directory is usable.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if !dirExists(h.imagesDir) {
		writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
		})
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dilma-lab/dilma/internal/service/views"
)

// dbPinger is the optional results warehouse.
type dbPinger interface {
	Ping(ctx context.Context) error
}

type statsSource interface {
	Stats() views.Stats
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	stats   statsSource
	db      dbPinger
	version string
}

// NewHealthHandler creates a HealthHandler. db may be nil when no warehouse
// is configured.
func NewHealthHandler(stats statsSource, db dbPinger, version string) *HealthHandler {
	return &HealthHandler{stats: stats, db: db, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string       `json:"status"`
	Latency string       `json:"latency,omitempty"`
	Stats   *views.Stats `json:"stats,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready returns 200 once a dataset with at least one dilemma is loaded.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.stats.Stats().Dilemmas == 0 {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "loading", Timestamp: time.Now()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Health reports the dataset and, when configured, the warehouse.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]CompStatus)
	overall := "ok"

	st := h.stats.Stats()
	if st.Dilemmas == 0 {
		components["dataset"] = CompStatus{Status: "empty", Stats: &st}
		overall = "degraded"
	} else {
		components["dataset"] = CompStatus{Status: "ok", Stats: &st}
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		start := time.Now()
		if err := h.db.Ping(ctx); err != nil {
			components["database"] = CompStatus{Status: "down"}
			overall = "down"
		} else {
			components["database"] = CompStatus{Status: "ok", Latency: time.Since(start).String()}
		}
	}

	status := http.StatusOK
	if overall == "down" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:     overall,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Package handler implements the read-only HTTP API consumed by the
// dashboard.
package handler

import (
	"database/sql"
	"net/http"

	"github.com/ladiossato/k2-inventory/internal/events"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db         *sql.DB
	natsClient *events.Client
	natsWanted bool
}

// NewHealthHandler creates a new health handler. natsWanted marks NATS
// as a readiness dependency; when eventing is disabled it is ignored.
func NewHealthHandler(db *sql.DB, natsClient *events.Client, natsWanted bool) *HealthHandler {
	return &HealthHandler{
		db:         db,
		natsClient: natsClient,
		natsWanted: natsWanted,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "database unreachable",
		})
		return
	}

	if h.natsWanted && !h.natsClient.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

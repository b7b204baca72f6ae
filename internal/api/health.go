package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Vijaykv5/Intereractive-GD/internal/api/respond"
)

// ServiceHealth reports aggregate and per-component health.
type ServiceHealth interface {
	IsHealthy() bool
	Components() map[string]bool
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	health ServiceHealth
}

func NewHealthHandler(h ServiceHealth) *HealthHandler { return &HealthHandler{health: h} }

func (h *HealthHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/health", h.CheckHealth).Methods(http.MethodGet)
}

// CheckHealth handles GET /api/health
// Always returns 200; body reports healthy/unhealthy. 500 indicates handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if h.health.IsHealthy() {
		status = "healthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"components": h.health.Components(),
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/AlexZinkM/yieldgate/internal/model"
)

// Pinger reports whether the session store is reachable.
type Pinger interface {
	Ping() error
}

// Health handles GET /healthz
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  model.HealthResponse
// @Failure      503  {object}  model.HealthResponse
// @Router       /healthz [get]
func Health(store Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			writeJSON(w, http.StatusOK, model.HealthResponse{Status: "ok", Store: "memory"})
			return
		}
		if err := store.Ping(); err != nil {
			logger.Error("store ping failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, model.HealthResponse{Status: "degraded", Store: "unreachable"})
			return
		}
		writeJSON(w, http.StatusOK, model.HealthResponse{Status: "ok", Store: "ok"})
	}
}

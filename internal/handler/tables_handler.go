package handlers

import (
	"net/http"
)

type HealthResponse struct {
	Status      string `json:"status"`
	CountTables int    `json:"countTables"`
	Error       string `json:"error,omitempty"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.TablesService.CountTables(r.Context())
	if err != nil {
		h.Log.Warn(r.Context(), "health check failed", "error", err)
		writeSuccess(w, HealthResponse{Status: "unavailable", CountTables: count, Error: err.Error()}, http.StatusServiceUnavailable)
		return
	}

	writeSuccess(w, HealthResponse{Status: "ok", CountTables: count}, http.StatusOK)
}

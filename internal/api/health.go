package api

import (
	"context"
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  healthServices `json:"services"`
}

type healthServices struct {
	Database    string `json:"database"`
	PriceSource string `json:"priceSource"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := "ok"

	dbStatus := "connected"
	if err := s.pool.Ping(ctx); err != nil {
		dbStatus = "disconnected"
		status = "degraded"
	}

	sourceStatus := "reachable"
	if err := s.coingecko.Ping(ctx); err != nil {
		sourceStatus = "unreachable"
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  healthServices{Database: dbStatus, PriceSource: sourceStatus},
	})
}

package http

import (
	"net/http"
	"time"
)

// handleHealth reports liveness only; it never touches the store.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady pings the store within the store timeout.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withStoreTimeout(r.Context())
	defer cancel()

	status, code, store := "ready", http.StatusOK, "ok"
	if err := s.ledger.Ping(ctx); err != nil {
		status, code, store = "not_ready", http.StatusServiceUnavailable, "failed: "+err.Error()
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"checks":    map[string]string{"store": store},
	})
}

package api

import (
	"net/http"
	"time"
)

func healthHandler(env, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().Format(time.RFC3339),
			Version:   version,
			Env:       env,
		})
	}
}

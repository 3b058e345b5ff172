package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/clinicbook/availability/internal/availability"
)

type RouterConfig struct {
	Service *availability.Service
	Logger  zerolog.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg.Env, cfg.Version))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/motives", listMotivesHandler())

		r.Get("/availabilities", searchAvailabilitiesHandler(cfg.Service))
		r.Get("/availabilities/{slotID}", getSlotHandler(cfg.Service))
		r.Post("/availabilities/{slotID}/reserve", reserveSlotHandler(cfg.Service))
		r.Post("/availabilities/{slotID}/release", releaseSlotHandler(cfg.Service))
		r.Post("/availabilities/{slotID}/book", bookSlotHandler(cfg.Service))
	})

	return r
}

package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/engage", func(r chi.Router) {
			// Ingestion
			r.Post("/fetch", h.FetchTimelines)
			r.Post("/import", h.ImportTweets)

			// Suggestion engine
			r.Post("/suggestions", h.GenerateSuggestions)

			// Posting boundary
			r.Get("/reply", h.ReplyStatus)
			r.Post("/reply", h.PostReply)

			// Review queue
			r.Get("/queue", h.GetQueue)
			r.Post("/queue/items", h.AddQueueItems)
			r.Patch("/queue/items/{id}", h.UpdateQueueItem)
			r.Delete("/queue/completed", h.ClearCompleted)

			// Monitored accounts
			r.Get("/accounts", h.GetAccounts)
			r.Put("/accounts", h.SetAccounts)
		})
	})

	return r
}

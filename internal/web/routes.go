package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/style-genie/internal/web/handlers"
	"github.com/kozaktomas/style-genie/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	analyzeHandler := handlers.NewAnalyzeHandler(s.deps.Recommender, s.deps.Sessions)
	hairstylesHandler := handlers.NewHairstylesHandler(s.deps.Catalog)
	overlayHandler := handlers.NewOverlayHandler(s.deps.Catalog, s.deps.Loader, s.deps.Sessions, s.config.Storage.AssetURLPrefix())
	sessionsHandler := handlers.NewSessionsHandler(s.deps.Sessions)

	limiter := middleware.NewRateLimiter(s.config.Web.RateLimitRPS, s.config.Web.RateLimitBurst)

	// Health check (not rate limited)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/adjustments", overlayHandler.Adjustments)

		// Catalog
		r.Get("/hairstyles", hairstylesHandler.List)
		r.Get("/hairstyles/{id}", hairstylesHandler.Get)

		// Sessions
		r.Get("/sessions/{id}", sessionsHandler.Get)
		r.Delete("/sessions/{id}", sessionsHandler.Delete)

		// Photo processing is expensive; limit it per client
		r.Group(func(r chi.Router) {
			r.Use(limiter.Handler)
			r.Post("/analyze", analyzeHandler.Analyze)
			r.Post("/overlay", overlayHandler.Render)
		})
	})
}

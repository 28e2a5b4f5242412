package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes registers the public discovery routes and the protected write
// routes.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, rateLimit func(http.Handler) http.Handler) {
	r.Get("/health", handlers.healthHandler.getHealth())
	r.Handle("/metrics", promhttp.Handler())

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(rateLimit)

		r.Get("/tags", handlers.tagHandler.getPopularTags())
		r.Get("/tags/related", handlers.tagHandler.getRelatedTags())
		r.Get("/tags/{slug}", handlers.tagHandler.searchByTag())
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Put("/novels/{novelID}/tags", handlers.novelHandler.setNovelTags())
		r.Post("/novels/{novelID}/hot-score", handlers.novelHandler.refreshHotScore())
	})
}

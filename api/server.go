package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leozhansino-design/butternovel-mobile-sub002/config"
	"github.com/leozhansino-design/butternovel-mobile-sub002/database"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(database database.Database, cfg config.Config) (Server, error) {
	address := fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()

	router := newRouter(database, withConfig(cfg), withStartupTime(startupTime))

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,  // Timeout for reading the entire request
		WriteTimeout: cfg.Server.WriteTimeout, // Timeout for writing the response
		IdleTimeout:  cfg.Server.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      config.Config
	startupTime time.Time
}

func withConfig(c config.Config) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(database database.Database, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(metricsMiddleware)

	handlers := initializeHandlers(database, router.config, router.startupTime)
	authMiddleware := newAuthMiddleware(router.config.Auth.JWTSecret)

	acceptedOrigins := router.config.Server.AcceptedOrigins
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	rateLimit := rateLimitMiddleware(router.config.RateLimit.Requests, router.config.RateLimit.Window)
	setupRoutes(chiRouter, handlers, authMiddleware, rateLimit)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}

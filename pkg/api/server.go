// Package api serves the ghost codec and archive over HTTP.
//
// Every route under /api/v1 requires an X-API-Key header. Prometheus
// metrics are exposed unauthenticated at /metrics.
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StartServer starts the HTTP server with all routes configured
func StartServer(archive GhostArchive, config ServerConfig) error {
	metrics := NewMetrics(prometheus.DefaultRegisterer)
	server := NewServer(archive, config, metrics)

	if ids, err := archive.List(); err == nil {
		metrics.SetGhostsArchived(len(ids))
	}

	r := NewRouter(server, promhttp.Handler())

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	log.Printf("Starting rkgkit REST API server on %s", addr)
	log.Printf("Metrics available at: http://%s/metrics", addr)
	return http.ListenAndServe(addr, r)
}

// NewRouter wires the API routes for server. metricsHandler is mounted
// at /metrics.
func NewRouter(server *Server, metricsHandler http.Handler) chi.Router {
	metrics := server.metrics
	config := server.config

	r := chi.NewRouter()

	if config.Debug {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Ghost-Truncated"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Ghost archive
		r.Post("/ghosts", metrics.InstrumentHandler("POST", "/api/v1/ghosts", server.handleCreateGhost))
		r.Get("/ghosts", metrics.InstrumentHandler("GET", "/api/v1/ghosts", server.handleListGhosts))
		r.Get("/ghosts/{id}", metrics.InstrumentHandler("GET", "/api/v1/ghosts/{id}", server.handleGetGhost))
		r.Get("/ghosts/{id}/frames", metrics.InstrumentHandler("GET", "/api/v1/ghosts/{id}/frames", server.handleGetGhostFrames))
		r.Delete("/ghosts/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/ghosts/{id}", server.handleDeleteGhost))

		// Stateless codec
		r.Post("/decode", metrics.InstrumentHandler("POST", "/api/v1/decode", server.handleDecode))
	})

	return r
}

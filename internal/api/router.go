package api

import (
	"context"
	"departure-optimizer-service/internal/api/handlers"
	"departure-optimizer-service/internal/ports"
	"departure-optimizer-service/internal/services"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies of the HTTP API.
type Deps struct {
	Airports ports.AirportDirectory
	Store    ports.PositionStore
	Options  services.SearchOptions

	// Optional readiness probe, typically a database ping.
	HealthCheck func(ctx context.Context) error
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Check: deps.HealthCheck}
	optimizeHandler := &handlers.OptimizeHandler{
		Airports: deps.Airports,
		Store:    deps.Store,
		Options:  deps.Options,
	}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/optimize", optimizeHandler.Optimize)
	mux.Handle("/metrics", promhttp.Handler())

	// Request ids are attached before logging so every log line carries one.
	return requestIDMiddleware(loggingMiddleware(mux))
}

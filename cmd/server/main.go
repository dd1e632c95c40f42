package main

import (
	"context"
	"database/sql"
	"departure-optimizer-service/internal/adapters/airports"
	"departure-optimizer-service/internal/adapters/cache"
	"departure-optimizer-service/internal/adapters/positions"
	"departure-optimizer-service/internal/adapters/repositories"
	"departure-optimizer-service/internal/api"
	"departure-optimizer-service/internal/config"
	"departure-optimizer-service/internal/platform/db"
	"departure-optimizer-service/internal/platform/obs"
	"departure-optimizer-service/internal/ports"
	"departure-optimizer-service/internal/services"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const airportCacheSize = 4096

// main is the application composition root.
// It wires concrete adapters (snapshot or SQL store, airport directory and
// caches) behind ports and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, logCloser, err := obs.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store       ports.PositionStore
		chain       airports.Chain
		healthCheck func(context.Context) error
	)

	if cfg.AirportsCSV != "" {
		dir, err := airports.LoadCSVDirectory(cfg.AirportsCSV)
		switch {
		case err == nil:
			slog.Info("airports loaded", "path", cfg.AirportsCSV, "count", dir.Len())
			chain = append(chain, dir)
		case errors.Is(err, os.ErrNotExist):
			slog.Warn("airports file not found, resolving from flight data only", "path", cfg.AirportsCSV)
		default:
			return err
		}
	}

	if cfg.SnapshotPath != "" {
		snap, err := positions.LoadSnapshotFile(cfg.SnapshotPath)
		if err != nil {
			return err
		}
		slog.Info("snapshot loaded", "path", cfg.SnapshotPath, "positions", snap.Len())
		store = snap
	} else {
		conn, dialect, err := db.OpenDriver(cfg.DBDriver, cfg.DSN())
		if err != nil {
			return err
		}
		defer conn.Close()

		// Local SQLite runs get their schema and demo data on startup.
		if dialect == db.SQLite {
			if err := initAndSeed(ctx, conn, dialect, cfg.SeedPath); err != nil {
				return err
			}
		}

		store = positions.NewSQLPositionStore(conn, dialect)
		chain = append(chain, airports.NewSQLDirectory(conn, dialect))
		healthCheck = conn.PingContext
	}

	if len(chain) == 0 {
		return errors.New("no airport source: set AIRPORTS_CSV or use a database store")
	}

	directory, err := airportDirectory(ctx, cfg, chain)
	if err != nil {
		return err
	}

	opts := services.DefaultSearchOptions()
	opts.Timeout = cfg.OptimizeTimeout
	opts.CandidateConcurrency = cfg.SearchConcurrency

	router := api.NewRouter(api.Deps{
		Airports:    directory,
		Store:       store,
		Options:     opts,
		HealthCheck: healthCheck,
	})

	// The write timeout leaves room for a search that runs to its deadline.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.OptimizeTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// airportDirectory layers the in-process cache over Redis (when configured)
// over the directory chain.
func airportDirectory(ctx context.Context, cfg config.Config, chain airports.Chain) (ports.AirportDirectory, error) {
	var next ports.AirportDirectory = chain

	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, airport cache is process-local", "err", err)
		} else {
			redisCache, err := cache.NewRedisAirportCache(client, next, cfg.AirportCacheTTL)
			if err != nil {
				return nil, err
			}
			next = redisCache
		}
	}

	mem, err := cache.NewMemoryAirportCache(next, airportCacheSize, cfg.AirportCacheTTL)
	if err != nil {
		return nil, err
	}
	return mem, nil
}

func initAndSeed(ctx context.Context, conn *sql.DB, dialect db.Dialect, seedPath string) error {
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		slog.Info("no seed file, skipping seeding", "path", seedPath)
		return nil
	}

	n, err := repositories.SeedFromJSON(ctx, conn, dialect, seedPath)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	slog.Info("flight nodes seeded", "path", seedPath, "rows", n)
	return nil
}

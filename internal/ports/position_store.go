package ports

import (
	"context"
	"departure-optimizer-service/internal/domain"
	"time"
)

// Contract for querying recorded positions of other flights.
//
// Implementations must return every position within radiusKm of point whose
// timestamp lies in [at-window, at+window]. They may return extra positions;
// callers enforce the exact limits.
type PositionStore interface {
	// Return positions near point in space and time.
	QueryNear(ctx context.Context, point domain.Coordinates, radiusKm float64, at time.Time, window time.Duration) ([]domain.FlightPosition, error)
}

// Optional extension of PositionStore that can return a full flight track.
type FlightPathProvider interface {
	PositionStore
	// Return all recorded positions of one flight ordered by time.
	FlightPath(ctx context.Context, flightID string) ([]domain.FlightPosition, error)
}

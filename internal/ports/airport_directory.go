package ports

import (
	"context"
	"departure-optimizer-service/internal/domain"
)

// Port: a boundary for resolving airport codes to positions.
type AirportDirectory interface {
	// Resolve an airport code. Fails with *domain.UnknownAirportError when
	// the code is not known.
	Resolve(ctx context.Context, code string) (domain.Coordinates, error)
}

package airports

import (
	"context"
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/ports"
	"errors"
	"strings"
)

// Chain tries each directory in order and returns the first resolution.
// Only unknown-airport failures fall through to the next directory.
type Chain []ports.AirportDirectory

func (c Chain) Resolve(ctx context.Context, code string) (domain.Coordinates, error) {
	for _, d := range c {
		if d == nil {
			continue
		}
		coords, err := d.Resolve(ctx, code)
		if err == nil {
			return coords, nil
		}
		var unknown *domain.UnknownAirportError
		if !errors.As(err, &unknown) {
			return domain.Coordinates{}, err
		}
	}
	return domain.Coordinates{}, &domain.UnknownAirportError{Code: strings.ToUpper(strings.TrimSpace(code))}
}

package services

import (
	"context"
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/platform/obs"
	"departure-optimizer-service/internal/ports"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

// Accepted layouts for the scheduled departure. Layouts without a zone are
// read as UTC.
var scheduledLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

type OptimizeFlightRequest struct {
	Origin          string
	Destination     string
	Scheduled       string
	DurationMinutes *float64
	DistanceKm      *float64
	Options         SearchOptions
}

// ParseScheduled parses a scheduled departure in any accepted layout.
func ParseScheduled(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &domain.ValidationError{Field: "scheduled", Reason: "is required"}
	}
	for _, layout := range scheduledLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &domain.ValidationError{
		Field:  "scheduled",
		Reason: fmt.Sprintf("%q is not a valid timestamp (want YYYY-MM-DD HH:MM[:SS] or RFC 3339)", s),
	}
}

// NormalizeAirportCode upper-cases and validates an airport code.
func NormalizeAirportCode(field, code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		return "", &domain.ValidationError{Field: field, Reason: "is required"}
	}
	if len(c) < 3 || len(c) > 4 {
		return "", &domain.ValidationError{Field: field, Reason: fmt.Sprintf("%q must be 3 or 4 characters", code)}
	}
	for _, r := range c {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", &domain.ValidationError{Field: field, Reason: fmt.Sprintf("%q must be alphanumeric", code)}
		}
	}
	return c, nil
}

func validateOptional(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return &domain.ValidationError{Field: field, Reason: "must be a finite number"}
	}
	if *v < 0 {
		return &domain.ValidationError{Field: field, Reason: "must not be negative"}
	}
	return nil
}

// OptimizeFlight validates a request, resolves its airports, searches for
// the best departure and assembles the report.
//
// No store query is issued unless the request, airports and route are all
// valid. When the store can return full tracks, partner paths are attached;
// failing to fetch them only logs a warning.
func OptimizeFlight(
	ctx context.Context,
	req OptimizeFlightRequest,
	airports ports.AirportDirectory,
	store ports.PositionStore,
) (report *domain.OptimizationReport, err error) {
	defer obs.Time(ctx, "optimize flight")(&err)

	if airports == nil || store == nil {
		return nil, errors.New("optimize flight: airports and store must be non-nil")
	}

	origin, err := NormalizeAirportCode("origin", req.Origin)
	if err != nil {
		return nil, err
	}
	dest, err := NormalizeAirportCode("destination", req.Destination)
	if err != nil {
		return nil, err
	}
	scheduled, err := ParseScheduled(req.Scheduled)
	if err != nil {
		return nil, err
	}
	if err := validateOptional("duration_minutes", req.DurationMinutes); err != nil {
		return nil, err
	}
	if err := validateOptional("distance_km", req.DistanceKm); err != nil {
		return nil, err
	}

	originPos, err := airports.Resolve(ctx, origin)
	if err != nil {
		return nil, fmt.Errorf("optimize flight: resolve origin %q: %w", origin, err)
	}
	destPos, err := airports.Resolve(ctx, dest)
	if err != nil {
		return nil, fmt.Errorf("optimize flight: resolve destination %q: %w", dest, err)
	}

	route := domain.Route{
		OriginCode:      origin,
		DestinationCode: dest,
		Origin:          &originPos,
		Destination:     &destPos,
		DurationMinutes: req.DurationMinutes,
		DistanceKm:      req.DistanceKm,
	}
	if _, err := RouteDuration(route); err != nil {
		return nil, fmt.Errorf("optimize flight: %s -> %s: %w", origin, dest, err)
	}

	result, err := SearchDepartureTime(ctx, route, scheduled, store, req.Options)
	if err != nil {
		return nil, fmt.Errorf("optimize flight: %w", err)
	}

	partnerPaths := fetchPartnerPaths(ctx, store, ConnectionPartnerIDs(result.Chosen))

	report, err = AssembleReport(route, result, req.Options, partnerPaths)
	if err != nil {
		return nil, fmt.Errorf("optimize flight: %w", err)
	}
	return report, nil
}

func fetchPartnerPaths(ctx context.Context, store ports.PositionStore, ids []string) map[string][]domain.FlightPosition {
	provider, ok := store.(ports.FlightPathProvider)
	if !ok || len(ids) == 0 {
		return nil
	}

	out := make(map[string][]domain.FlightPosition, len(ids))
	for _, id := range ids {
		track, err := provider.FlightPath(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "fetch partner flight path failed",
				"req_id", obs.RequestID(ctx), "flight_id", id, "err", err)
			continue
		}
		out[id] = track
	}
	return out
}

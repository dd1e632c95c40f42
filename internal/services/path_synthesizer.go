package services

import (
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/geo"
	"fmt"
	"math"
	"time"
)

const (
	// Fixed spacing between synthesized waypoints.
	SynthesisStep = 5 * time.Minute

	// Assumed cruise speed when only a distance is known.
	CruiseSpeedKmh = 800.0

	// Longest flight the synthesizer accepts.
	maxFlightMinutes = 48 * 60
)

// RouteDuration resolves the flight duration in minutes: the provided
// duration, else the provided distance at cruise speed, else the
// great-circle route length at cruise speed.
//
// It also validates the route, so callers can fail fast before any store
// access.
func RouteDuration(route domain.Route) (float64, error) {
	if route.Origin == nil || route.Destination == nil {
		return 0, &domain.InvalidRouteError{Reason: "origin and destination coordinates are required"}
	}
	if err := geo.Validate(*route.Origin); err != nil {
		return 0, err
	}
	if err := geo.Validate(*route.Destination); err != nil {
		return 0, err
	}
	if *route.Origin == *route.Destination {
		return 0, &domain.InvalidRouteError{Reason: "origin and destination are identical"}
	}

	var minutes float64
	switch {
	case route.DurationMinutes != nil:
		minutes = *route.DurationMinutes
	case route.DistanceKm != nil:
		minutes = *route.DistanceKm / CruiseSpeedKmh * 60
	default:
		km, err := geo.Distance(*route.Origin, *route.Destination)
		if err != nil {
			return 0, err
		}
		minutes = km / CruiseSpeedKmh * 60
	}

	if math.IsNaN(minutes) || minutes <= 0 {
		return 0, &domain.InvalidRouteError{Reason: fmt.Sprintf("duration resolves to %v minutes", minutes)}
	}
	if minutes > maxFlightMinutes {
		return 0, &domain.InvalidRouteError{Reason: fmt.Sprintf("duration of %.0f minutes exceeds %d", minutes, maxFlightMinutes)}
	}
	return minutes, nil
}

// SynthesizePath builds the ordered waypoints of a great-circle flight along
// route departing at departAt. Identical inputs always yield identical
// output.
func SynthesizePath(route domain.Route, departAt time.Time) ([]domain.Waypoint, error) {
	minutes, err := RouteDuration(route)
	if err != nil {
		return nil, fmt.Errorf("synthesize path: %w", err)
	}

	stepMinutes := SynthesisStep.Minutes()
	count := int(math.Ceil(minutes/stepMinutes)) + 1
	if count < 2 {
		count = 2
	}

	waypoints := make([]domain.Waypoint, 0, count)
	for i := 0; i < count; i++ {
		fraction := math.Min(1, float64(i)*stepMinutes/minutes)

		pos, err := geo.Interpolate(*route.Origin, *route.Destination, fraction)
		if err != nil {
			return nil, fmt.Errorf("synthesize path: waypoint %d: %w", i, err)
		}

		wp := domain.Waypoint{
			Lat:       pos.Lat,
			Lon:       pos.Lon,
			Timestamp: departAt.Add(time.Duration(i) * SynthesisStep),
			TimeIndex: i,
		}
		if i > 0 {
			prev := waypoints[i-1]
			d, err := geo.Distance(prev.Coordinates(), pos)
			if err != nil {
				return nil, fmt.Errorf("synthesize path: segment %d: %w", i, err)
			}
			wp.SegmentDistanceKm = d
		}

		waypoints = append(waypoints, wp)
	}

	return waypoints, nil
}

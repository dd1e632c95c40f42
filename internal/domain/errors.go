package domain

import (
	"fmt"
	"time"
)

// ValidationError reports malformed caller input. It is raised before any
// path synthesis or store access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// UnknownAirportError reports an airport code the directory cannot resolve.
type UnknownAirportError struct {
	Code string
}

func (e *UnknownAirportError) Error() string {
	return fmt.Sprintf("unknown airport %q", e.Code)
}

// InvalidRouteError reports resolved route data that cannot be flown:
// missing or identical endpoints, or a non-positive duration.
type InvalidRouteError struct {
	Reason string
}

func (e *InvalidRouteError) Error() string {
	return "invalid route: " + e.Reason
}

// InvalidCoordinateError reports a latitude/longitude outside its range.
type InvalidCoordinateError struct {
	Lat float64
	Lon float64
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate lat=%v lon=%v", e.Lat, e.Lon)
}

// ExternalStoreError reports a flight position store query that could not
// complete. It aborts the whole optimization run.
//
// WaypointIndex is -1 when the failure is not tied to a waypoint.
type ExternalStoreError struct {
	Departure     time.Time
	OffsetMinutes int
	WaypointIndex int
	WaypointTime  time.Time
	Err           error
}

func (e *ExternalStoreError) Error() string {
	if e.Departure.IsZero() {
		return fmt.Sprintf("flight position store: waypoint %d at %s: %v",
			e.WaypointIndex, e.WaypointTime.Format(time.RFC3339), e.Err)
	}
	return fmt.Sprintf("flight position store: candidate %s (offset %+d min) waypoint %d at %s: %v",
		e.Departure.Format(time.RFC3339), e.OffsetMinutes, e.WaypointIndex,
		e.WaypointTime.Format(time.RFC3339), e.Err)
}

func (e *ExternalStoreError) Unwrap() error { return e.Err }

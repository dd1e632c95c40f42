package services

import (
	"context"
	"departure-optimizer-service/internal/domain"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

var (
	jfk   = domain.Coordinates{Lat: 40.6413, Lon: -73.7781}
	lax   = domain.Coordinates{Lat: 33.9425, Lon: -118.4081}
	sched = time.Date(2013, 1, 1, 8, 0, 0, 0, time.UTC)
)

func ptr(v float64) *float64 { return &v }

func jfkLax(durationMinutes *float64) domain.Route {
	o, d := jfk, lax
	return domain.Route{
		OriginCode:      "JFK",
		DestinationCode: "LAX",
		Origin:          &o,
		Destination:     &d,
		DurationMinutes: durationMinutes,
	}
}

// storeFunc adapts a function to ports.PositionStore and counts calls.
type storeFunc struct {
	calls atomic.Int64
	fn    func(ctx context.Context, point domain.Coordinates, at time.Time) ([]domain.FlightPosition, error)
}

func (s *storeFunc) QueryNear(ctx context.Context, point domain.Coordinates, _ float64, at time.Time, _ time.Duration) ([]domain.FlightPosition, error) {
	s.calls.Add(1)
	if s.fn == nil {
		return nil, nil
	}
	return s.fn(ctx, point, at)
}

// formationTraffic places one partner position exactly on each waypoint of
// the path departing at sched. Partners run lead behind the path, jittered
// by -20..+20 minutes in one-minute steps, so a departure delayed by exactly
// lead connects every segment and connectivity falls off on either side.
func formationTraffic(t *testing.T, route domain.Route, lead time.Duration) []domain.FlightPosition {
	t.Helper()

	wps, err := SynthesizePath(route, sched)
	if err != nil {
		t.Fatalf("synthesize reference path: %v", err)
	}

	var out []domain.FlightPosition
	for k := 1; k < len(wps); k++ {
		jitter := time.Duration((k-1)%41-20) * time.Minute
		out = append(out, domain.FlightPosition{
			FlightID:  fmt.Sprintf("FX%d", k%7),
			Lat:       wps[k].Lat,
			Lon:       wps[k].Lon,
			Timestamp: wps[k].Timestamp.Add(lead).Add(jitter),
		})
	}
	return out
}

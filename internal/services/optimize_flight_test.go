package services

import (
	"bytes"
	"context"
	"departure-optimizer-service/internal/adapters/airports"
	"departure-optimizer-service/internal/adapters/positions"
	"departure-optimizer-service/internal/domain"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const testAirports = `IATA,latitude,longitude
JFK,40.6413,-73.7781
LAX,33.9425,-118.4081
`

type countingDirectory struct {
	calls atomic.Int64
	next  *airports.CSVDirectory
}

func (d *countingDirectory) Resolve(ctx context.Context, code string) (domain.Coordinates, error) {
	d.calls.Add(1)
	return d.next.Resolve(ctx, code)
}

func newDirectory(t *testing.T) *countingDirectory {
	t.Helper()
	csv, err := airports.NewCSVDirectory(strings.NewReader(testAirports))
	if err != nil {
		t.Fatalf("airports: %v", err)
	}
	return &countingDirectory{next: csv}
}

// failingPaths serves positions but cannot return full tracks.
type failingPaths struct {
	*positions.SnapshotStore
}

func (failingPaths) FlightPath(context.Context, string) ([]domain.FlightPosition, error) {
	return nil, errors.New("tracks unavailable")
}

func TestOptimizeFlightFormation(t *testing.T) {
	traffic := formationTraffic(t, jfkLax(ptr(300)), 15*time.Minute)
	store := positions.NewSnapshotStore(traffic)

	req := OptimizeFlightRequest{
		Origin:          "jfk",
		Destination:     "LAX",
		Scheduled:       "2013-01-01 08:00:00",
		DurationMinutes: ptr(300),
	}

	report, err := OptimizeFlight(context.Background(), req, newDirectory(t), store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Route.Origin != "JFK" || report.Route.TimeOffsetMinutes != 15 {
		t.Fatalf("route = %+v", report.Route)
	}
	if report.CostAnalysis.TotalCost >= report.CostAnalysis.SoloCost {
		t.Fatalf("total cost %v not below solo %v", report.CostAnalysis.TotalCost, report.CostAnalysis.SoloCost)
	}
	if len(report.Connections.PartnerFlightPaths) != 7 {
		t.Fatalf("partner paths = %d flights, want 7", len(report.Connections.PartnerFlightPaths))
	}
}

func TestOptimizeFlightIsDeterministic(t *testing.T) {
	store := positions.NewSnapshotStore(formationTraffic(t, jfkLax(ptr(300)), 17*time.Minute))
	req := OptimizeFlightRequest{
		Origin:          "JFK",
		Destination:     "LAX",
		Scheduled:       "2013-01-01T08:00:00Z",
		DurationMinutes: ptr(300),
		Options:         SearchOptions{CandidateConcurrency: 8, WaypointConcurrency: 16},
	}

	var outputs [][]byte
	for i := 0; i < 3; i++ {
		report, err := OptimizeFlight(context.Background(), req, newDirectory(t), store)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		b, err := json.Marshal(report)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		outputs = append(outputs, b)
	}

	for i := 1; i < len(outputs); i++ {
		if !bytes.Equal(outputs[0], outputs[i]) {
			t.Fatalf("run %d produced different output", i)
		}
	}
}

func TestOptimizeFlightPartnerPathFailureIsNotFatal(t *testing.T) {
	store := failingPaths{positions.NewSnapshotStore(formationTraffic(t, jfkLax(ptr(300)), 15*time.Minute))}
	req := OptimizeFlightRequest{Origin: "JFK", Destination: "LAX", Scheduled: "2013-01-01 08:00", DurationMinutes: ptr(300)}

	report, err := OptimizeFlight(context.Background(), req, newDirectory(t), store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Connections.PartnerFlightPaths != nil {
		t.Fatalf("partner paths = %v, want none", report.Connections.PartnerFlightPaths)
	}
	if report.Connections.TotalConnections == 0 {
		t.Fatal("expected connections")
	}
}

func TestOptimizeFlightErrors(t *testing.T) {
	tests := []struct {
		name         string
		req          OptimizeFlightRequest
		check        func(error) bool
		wantResolves int64
	}{
		{
			name:         "unknown airport",
			req:          OptimizeFlightRequest{Origin: "ZZZ", Destination: "LAX", Scheduled: "2013-01-01 08:00:00"},
			check:        func(err error) bool { var e *domain.UnknownAirportError; return errors.As(err, &e) && e.Code == "ZZZ" },
			wantResolves: 1,
		},
		{
			name:  "malformed scheduled time",
			req:   OptimizeFlightRequest{Origin: "JFK", Destination: "LAX", Scheduled: "not-a-date"},
			check: func(err error) bool { var e *domain.ValidationError; return errors.As(err, &e) && e.Field == "scheduled" },
		},
		{
			name:  "missing origin",
			req:   OptimizeFlightRequest{Destination: "LAX", Scheduled: "2013-01-01 08:00:00"},
			check: func(err error) bool { var e *domain.ValidationError; return errors.As(err, &e) && e.Field == "origin" },
		},
		{
			name:  "malformed destination",
			req:   OptimizeFlightRequest{Origin: "JFK", Destination: "L-X", Scheduled: "2013-01-01 08:00:00"},
			check: func(err error) bool { var e *domain.ValidationError; return errors.As(err, &e) && e.Field == "destination" },
		},
		{
			name:  "negative duration",
			req:   OptimizeFlightRequest{Origin: "JFK", Destination: "LAX", Scheduled: "2013-01-01 08:00:00", DurationMinutes: ptr(-10)},
			check: func(err error) bool { var e *domain.ValidationError; return errors.As(err, &e) && e.Field == "duration_minutes" },
		},
		{
			name:         "zero duration and distance",
			req:          OptimizeFlightRequest{Origin: "JFK", Destination: "LAX", Scheduled: "2013-01-01 08:00:00", DurationMinutes: ptr(0), DistanceKm: ptr(0)},
			check:        func(err error) bool { var e *domain.InvalidRouteError; return errors.As(err, &e) },
			wantResolves: 2,
		},
		{
			name:         "same origin and destination",
			req:          OptimizeFlightRequest{Origin: "JFK", Destination: "JFK", Scheduled: "2013-01-01 08:00:00"},
			check:        func(err error) bool { var e *domain.InvalidRouteError; return errors.As(err, &e) },
			wantResolves: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newDirectory(t)
			store := &storeFunc{}

			_, err := OptimizeFlight(context.Background(), tt.req, dir, store)
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := store.calls.Load(); got != 0 {
				t.Fatalf("store queried %d times before failing", got)
			}
			if got := dir.calls.Load(); got != tt.wantResolves {
				t.Fatalf("airport lookups = %d, want %d", got, tt.wantResolves)
			}
		})
	}
}

func TestParseScheduled(t *testing.T) {
	want := time.Date(2013, 1, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2013-01-01 08:00:00", want: want},
		{in: "2013-01-01 08:00", want: want},
		{in: "2013-01-01T08:00:00", want: want},
		{in: "2013-01-01T08:00:00Z", want: want},
		{in: "2013-01-01T09:00:00+01:00", want: want},
		{in: " 2013-01-01 08:00:00 ", want: want},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScheduled(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("ParseScheduled(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "not-a-date", "2013-13-01 08:00:00", "01/01/2013 08:00"} {
		if _, err := ParseScheduled(bad); err == nil {
			t.Errorf("ParseScheduled(%q) succeeded, want error", bad)
		}
	}
}

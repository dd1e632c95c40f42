package services

import (
	"context"
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/geo"
	"departure-optimizer-service/internal/platform/obs"
	"departure-optimizer-service/internal/ports"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	MaxFormationDistanceKm = 50.0
	MaxTimeDifference      = 20 * time.Minute
	MaxOverlapCandidates   = 20
)

// FindOverlaps returns the flights close enough to wp to fly in formation
// with it, nearest first.
//
// The store result is re-checked against the exact distance and time limits.
// Each partner flight appears once, at its closest qualifying position.
func FindOverlaps(ctx context.Context, wp domain.Waypoint, store ports.PositionStore) ([]domain.OverlapCandidate, error) {
	start := time.Now()
	positions, err := store.QueryNear(ctx, wp.Coordinates(), MaxFormationDistanceKm, wp.Timestamp, MaxTimeDifference)
	obs.StoreQueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		obs.StoreQueryErrors.Inc()
		return nil, &domain.ExternalStoreError{
			WaypointIndex: wp.TimeIndex,
			WaypointTime:  wp.Timestamp,
			Err:           err,
		}
	}

	byFlight := make(map[string]domain.OverlapCandidate)
	for _, p := range positions {
		d, err := geo.Distance(wp.Coordinates(), p.Coordinates())
		if err != nil {
			// Corrupt store rows never qualify.
			continue
		}
		dt := p.Timestamp.Sub(wp.Timestamp)
		if d > MaxFormationDistanceKm || absDuration(dt) > MaxTimeDifference {
			continue
		}

		c := domain.OverlapCandidate{
			PartnerFlightID:  p.FlightID,
			PartnerTimestamp: p.Timestamp,
			PartnerLat:       p.Lat,
			PartnerLon:       p.Lon,
			DistanceKm:       d,
			TimeDelta:        dt,
		}
		if prev, ok := byFlight[p.FlightID]; !ok || lessOverlap(c, prev) {
			byFlight[p.FlightID] = c
		}
	}

	out := make([]domain.OverlapCandidate, 0, len(byFlight))
	for _, c := range byFlight {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return lessOverlap(out[i], out[j]) })

	if len(out) > MaxOverlapCandidates {
		out = out[:MaxOverlapCandidates]
	}
	return out, nil
}

// Orders by distance, then absolute time difference. Flight id and partner
// time only break exact ties so the order is total.
func lessOverlap(a, b domain.OverlapCandidate) bool {
	if a.DistanceKm != b.DistanceKm {
		return a.DistanceKm < b.DistanceKm
	}
	if da, db := absDuration(a.TimeDelta), absDuration(b.TimeDelta); da != db {
		return da < db
	}
	if a.PartnerFlightID != b.PartnerFlightID {
		return a.PartnerFlightID < b.PartnerFlightID
	}
	return a.PartnerTimestamp.Before(b.PartnerTimestamp)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// DetectPathOverlaps runs FindOverlaps for every waypoint that ends a
// segment, with at most concurrency queries in flight. The result is indexed
// by waypoint; index 0 is always nil since no segment ends there.
//
// The first failing query cancels the rest and its error is returned.
func DetectPathOverlaps(
	ctx context.Context,
	waypoints []domain.Waypoint,
	store ports.PositionStore,
	concurrency int,
) ([][]domain.OverlapCandidate, error) {
	out := make([][]domain.OverlapCandidate, len(waypoints))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i := 1; i < len(waypoints); i++ {
		i := i
		wp := waypoints[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			overlaps, err := FindOverlaps(gctx, wp, store)
			if err != nil {
				return err
			}
			out[i] = overlaps
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

package positions

import (
	"context"
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/geo"
	"math"
	"sort"
	"time"
)

// Grid cell of one degree of latitude and longitude.
type cell struct {
	lat int
	lon int
}

func cellOf(lat, lon float64) cell {
	return cell{lat: int(math.Floor(lat)), lon: int(math.Floor(lon))}
}

// SnapshotStore is a read-only, in-memory position store over a frozen set
// of flight positions, indexed on a one degree grid. It is safe for
// concurrent use.
type SnapshotStore struct {
	cells    map[cell][]domain.FlightPosition
	byFlight map[string][]domain.FlightPosition
	count    int
}

// NewSnapshotStore indexes positions. Positions with invalid coordinates are
// skipped.
func NewSnapshotStore(positions []domain.FlightPosition) *SnapshotStore {
	s := &SnapshotStore{
		cells:    make(map[cell][]domain.FlightPosition),
		byFlight: make(map[string][]domain.FlightPosition),
	}

	for _, p := range positions {
		if geo.Validate(p.Coordinates()) != nil {
			continue
		}
		c := cellOf(p.Lat, p.Lon)
		s.cells[c] = append(s.cells[c], p)
		s.byFlight[p.FlightID] = append(s.byFlight[p.FlightID], p)
		s.count++
	}

	for _, ps := range s.cells {
		sortPositions(ps)
	}
	for _, ps := range s.byFlight {
		sortPositions(ps)
	}
	return s
}

func sortPositions(ps []domain.FlightPosition) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].FlightID != ps[j].FlightID {
			return ps[i].FlightID < ps[j].FlightID
		}
		return ps[i].Timestamp.Before(ps[j].Timestamp)
	})
}

// Len returns the number of indexed positions.
func (s *SnapshotStore) Len() int { return s.count }

func (s *SnapshotStore) QueryNear(
	ctx context.Context,
	point domain.Coordinates,
	radiusKm float64,
	at time.Time,
	window time.Duration,
) ([]domain.FlightPosition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := geo.Validate(point); err != nil {
		return nil, err
	}

	box := geo.BoundingBox(point, radiusKm)
	from, to := at.Add(-window), at.Add(window)

	minLat, maxLat := int(math.Floor(box.MinLat)), int(math.Floor(box.MaxLat))
	minLon, maxLon := int(math.Floor(box.MinLon)), int(math.Floor(box.MaxLon))
	if box.WrapsLon {
		minLon, maxLon = -180, 180
	}

	var out []domain.FlightPosition
	for lat := minLat; lat <= maxLat; lat++ {
		for lon := minLon; lon <= maxLon; lon++ {
			for _, p := range s.cells[cell{lat: lat, lon: lon}] {
				if p.Timestamp.Before(from) || p.Timestamp.After(to) {
					continue
				}
				if d, _ := geo.Distance(point, p.Coordinates()); d > radiusKm {
					continue
				}
				out = append(out, p)
			}
		}
	}

	sortPositions(out)
	return out, nil
}

func (s *SnapshotStore) FlightPath(ctx context.Context, flightID string) ([]domain.FlightPosition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	track := s.byFlight[flightID]
	out := make([]domain.FlightPosition, len(track))
	copy(out, track)
	return out, nil
}

// All returns every indexed position ordered by flight and time.
func (s *SnapshotStore) All() []domain.FlightPosition {
	ids := make([]string, 0, len(s.byFlight))
	for id := range s.byFlight {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.FlightPosition, 0, s.count)
	for _, id := range ids {
		out = append(out, s.byFlight[id]...)
	}
	return out
}

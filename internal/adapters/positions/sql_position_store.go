package positions

import (
	"context"
	"database/sql"
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/geo"
	"departure-optimizer-service/internal/platform/db"
	"departure-optimizer-service/internal/platform/obs"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLPositionStore serves flight positions from the flight_nodes table.
// It implements ports.PositionStore and ports.FlightPathProvider.
type SQLPositionStore struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLPositionStore(conn *sql.DB, dialect db.Dialect) *SQLPositionStore {
	return &SQLPositionStore{DB: conn, Dialect: dialect}
}

// QueryNear prefilters on a lat/lon box and the time window in SQL, then
// keeps only positions within radiusKm.
func (s *SQLPositionStore) QueryNear(
	ctx context.Context,
	point domain.Coordinates,
	radiusKm float64,
	at time.Time,
	window time.Duration,
) ([]domain.FlightPosition, error) {
	if s.DB == nil {
		return nil, errors.New("sql position store: DB is nil")
	}

	box := geo.BoundingBox(point, radiusKm)

	var q strings.Builder
	q.WriteString(`
	SELECT flight_id, ts_unix, lat, lon, origin, dest
	FROM flight_nodes
	WHERE ts_unix BETWEEN ? AND ?
		AND lat BETWEEN ? AND ?`)
	args := []any{at.Add(-window).Unix(), at.Add(window).Unix(), box.MinLat, box.MaxLat}
	if !box.WrapsLon {
		q.WriteString(`
		AND lon BETWEEN ? AND ?`)
		args = append(args, box.MinLon, box.MaxLon)
	}
	q.WriteString(`
	ORDER BY flight_id, ts_unix;`)

	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(q.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("query near: query flight_nodes table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.FlightPosition, 0, 16)
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("query near: %w", err)
		}

		d, err := geo.Distance(point, p.Coordinates())
		if err != nil || d > radiusKm {
			continue
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query near: row iteration: %w", err)
	}

	return out, nil
}

// Return every recorded position of one flight ordered by time.
func (s *SQLPositionStore) FlightPath(ctx context.Context, flightID string) (_ []domain.FlightPosition, err error) {
	defer obs.Time(ctx, "positions.sql.FlightPath")(&err)

	if s.DB == nil {
		return nil, errors.New("sql position store: DB is nil")
	}

	q := s.Dialect.Rebind(`
	SELECT flight_id, ts_unix, lat, lon, origin, dest
	FROM flight_nodes
	WHERE flight_id = ?
	ORDER BY ts_unix;
	`)
	return s.queryPositions(ctx, "flight path", q, flightID)
}

// Return every stored position ordered by flight and time.
func (s *SQLPositionStore) All(ctx context.Context) (_ []domain.FlightPosition, err error) {
	defer obs.Time(ctx, "positions.sql.All")(&err)

	if s.DB == nil {
		return nil, errors.New("sql position store: DB is nil")
	}

	q := `
	SELECT flight_id, ts_unix, lat, lon, origin, dest
	FROM flight_nodes
	ORDER BY flight_id, ts_unix;
	`
	return s.queryPositions(ctx, "all positions", q)
}

func (s *SQLPositionStore) queryPositions(ctx context.Context, op, q string, args ...any) ([]domain.FlightPosition, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query flight_nodes table: %w", op, err)
	}
	defer rows.Close()

	out := make([]domain.FlightPosition, 0, 64)
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}

	return out, nil
}

func scanPosition(rows *sql.Rows) (domain.FlightPosition, error) {
	var p domain.FlightPosition
	var ts int64
	if err := rows.Scan(&p.FlightID, &ts, &p.Lat, &p.Lon, &p.Origin, &p.Dest); err != nil {
		return domain.FlightPosition{}, fmt.Errorf("scan row: %w", err)
	}
	p.Timestamp = time.Unix(ts, 0).UTC()
	return p, nil
}

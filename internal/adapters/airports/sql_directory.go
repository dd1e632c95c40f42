package airports

import (
	"context"
	"database/sql"
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/platform/db"
	"departure-optimizer-service/internal/platform/obs"
	"errors"
	"fmt"
	"strings"
)

// SQLDirectory approximates airport positions from flight_nodes: the first
// node of a flight departing the airport, else the last node of a flight
// arriving there.
type SQLDirectory struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLDirectory(conn *sql.DB, dialect db.Dialect) *SQLDirectory {
	return &SQLDirectory{DB: conn, Dialect: dialect}
}

func (d *SQLDirectory) Resolve(ctx context.Context, code string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "airports.sql.Resolve")(&err)

	if d.DB == nil {
		return domain.Coordinates{}, errors.New("sql airport directory: DB is nil")
	}
	code = strings.ToUpper(strings.TrimSpace(code))

	departing := d.Dialect.Rebind(`
	SELECT lat, lon
	FROM flight_nodes
	WHERE origin = ?
	ORDER BY time_index ASC, ts_unix ASC, flight_id ASC
	LIMIT 1;
	`)
	arriving := d.Dialect.Rebind(`
	SELECT lat, lon
	FROM flight_nodes
	WHERE dest = ?
	ORDER BY time_index DESC, ts_unix DESC, flight_id ASC
	LIMIT 1;
	`)

	for _, q := range []string{departing, arriving} {
		var c domain.Coordinates
		err := d.DB.QueryRowContext(ctx, q, code).Scan(&c.Lat, &c.Lon)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("resolve airport %q: query flight_nodes table: %w", code, err)
		}
		return c, nil
	}

	return domain.Coordinates{}, &domain.UnknownAirportError{Code: code}
}

package repositories

import (
	"context"
	"database/sql"
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/platform/db"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Initialize the flight_nodes schema. The DDL is valid for both Postgres
// and SQLite.
func InitSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createFlightNodesQuery := `
	CREATE TABLE IF NOT EXISTS flight_nodes (
		flight_id TEXT NOT NULL,
		ts_unix BIGINT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		time_index INTEGER NOT NULL DEFAULT 0,
		origin TEXT NOT NULL DEFAULT '',
		dest TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (flight_id, ts_unix)
	);
	`

	createTimeIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_flight_nodes_ts_lat
	ON flight_nodes(ts_unix, lat);
	`

	createOriginIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_flight_nodes_origin
	ON flight_nodes(origin, time_index);
	`

	createDestIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_flight_nodes_dest
	ON flight_nodes(dest, time_index);
	`

	statements := []string{
		createFlightNodesQuery,
		createTimeIndexQuery,
		createOriginIndexQuery,
		createDestIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type FlightNodeSeed struct {
	FlightID  string  `json:"flight_id"`
	Timestamp string  `json:"timestamp"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	TimeIndex int     `json:"time_index"`
	Origin    string  `json:"origin"`
	Dest      string  `json:"dest"`
}

// Populate flight_nodes from a JSON array of FlightNodeSeed.
func SeedFromJSON(ctx context.Context, conn *sql.DB, dialect db.Dialect, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed flight nodes: read %q: %w", jsonPath, err)
	}

	var data []FlightNodeSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed flight nodes: parse json: %w", err)
	}

	rows := make([]FlightNode, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.FlightID)
		if id == "" {
			return 0, fmt.Errorf("seed flight nodes: item at index %d: flight_id cannot be empty", i+1)
		}

		ts, err := time.Parse(time.RFC3339, item.Timestamp)
		if err != nil {
			return 0, fmt.Errorf("seed flight nodes: item at index %d: timestamp: %w", i+1, err)
		}

		if item.Lat < -90 || item.Lat > 90 || item.Lon < -180 || item.Lon > 180 {
			return 0, fmt.Errorf("seed flight nodes: item at index %d: %w", i+1,
				&domain.InvalidCoordinateError{Lat: item.Lat, Lon: item.Lon})
		}

		rows = append(rows, FlightNode{
			Position: domain.FlightPosition{
				FlightID:  id,
				Lat:       item.Lat,
				Lon:       item.Lon,
				Timestamp: ts,
				Origin:    strings.ToUpper(strings.TrimSpace(item.Origin)),
				Dest:      strings.ToUpper(strings.TrimSpace(item.Dest)),
			},
			TimeIndex: item.TimeIndex,
		})
	}

	if err := InsertFlightNodes(ctx, conn, dialect, rows); err != nil {
		return 0, fmt.Errorf("seed flight nodes: %w", err)
	}
	return len(rows), nil
}

// A flight position together with its index along the flight.
type FlightNode struct {
	Position  domain.FlightPosition
	TimeIndex int
}

// Upsert flight nodes keyed by flight id and timestamp.
func InsertFlightNodes(ctx context.Context, conn *sql.DB, dialect db.Dialect, nodes []FlightNode) error {
	if conn == nil {
		return errors.New("insert flight nodes: DB is nil")
	}
	if len(nodes) == 0 {
		return nil
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert flight nodes: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := dialect.Rebind(`
	INSERT INTO flight_nodes (
		flight_id,
		ts_unix,
		lat,
		lon,
		time_index,
		origin,
		dest
	)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (flight_id, ts_unix) DO UPDATE
	SET lat = excluded.lat,
		lon = excluded.lon,
		time_index = excluded.time_index,
		origin = excluded.origin,
		dest = excluded.dest;
	`)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("insert flight nodes: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range nodes {
		p := n.Position
		if _, err := stmt.ExecContext(ctx, p.FlightID, p.Timestamp.Unix(), p.Lat, p.Lon, n.TimeIndex, p.Origin, p.Dest); err != nil {
			return fmt.Errorf("insert flight nodes: flight_id=%q ts=%s: %w", p.FlightID, p.Timestamp.Format(time.RFC3339), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert flight nodes: commit tx: %w", err)
	}

	return nil
}

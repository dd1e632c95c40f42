package repositories

import (
	"context"
	"departure-optimizer-service/internal/platform/db"
	"os"
	"path/filepath"
	"testing"
)

func TestInitSchemaAndSeed(t *testing.T) {
	ctx := context.Background()

	conn, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer conn.Close()

	if err := InitSchema(ctx, conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	// Idempotent.
	if err := InitSchema(ctx, conn); err != nil {
		t.Fatalf("init schema twice: %v", err)
	}

	seed := `[
		{"flight_id": "AA1", "timestamp": "2013-01-01T08:00:00Z", "lat": 40.6, "lon": -73.8, "time_index": 0, "origin": "jfk", "dest": "LAX"},
		{"flight_id": "AA1", "timestamp": "2013-01-01T08:05:00Z", "lat": 40.5, "lon": -74.5, "time_index": 1, "origin": "JFK", "dest": "LAX"},
		{"flight_id": "AA1", "timestamp": "2013-01-01T08:05:00Z", "lat": 40.4, "lon": -74.6, "time_index": 1, "origin": "JFK", "dest": "LAX"}
	]`
	path := filepath.Join(t.TempDir(), "flight_nodes.json")
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	n, err := SeedFromJSON(ctx, conn, db.SQLite, path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 3 {
		t.Fatalf("seeded = %d, want 3", n)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM flight_nodes`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("rows = %d, want 2 (duplicate key upserted)", count)
	}

	var lat float64
	var origin string
	if err := conn.QueryRow(`SELECT lat, origin FROM flight_nodes WHERE time_index = 1`).Scan(&lat, &origin); err != nil {
		t.Fatalf("select: %v", err)
	}
	if lat != 40.4 {
		t.Fatalf("lat = %v, want 40.4 from the last upsert", lat)
	}

	var first string
	if err := conn.QueryRow(`SELECT origin FROM flight_nodes WHERE time_index = 0`).Scan(&first); err != nil {
		t.Fatalf("select: %v", err)
	}
	if first != "JFK" {
		t.Fatalf("origin = %q, want upper-cased JFK", first)
	}
}

func TestSeedFromJSONRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty flight id", body: `[{"flight_id": " ", "timestamp": "2013-01-01T08:00:00Z", "lat": 1, "lon": 1}]`},
		{name: "bad timestamp", body: `[{"flight_id": "X", "timestamp": "yesterday", "lat": 1, "lon": 1}]`},
		{name: "bad latitude", body: `[{"flight_id": "X", "timestamp": "2013-01-01T08:00:00Z", "lat": 95, "lon": 1}]`},
		{name: "not json", body: `{`},
	}

	conn, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer conn.Close()
	if err := InitSchema(context.Background(), conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "seed.json")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatalf("write seed: %v", err)
			}
			if _, err := SeedFromJSON(context.Background(), conn, db.SQLite, path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

package positions

import (
	"context"
	"database/sql"
	"departure-optimizer-service/internal/adapters/repositories"
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/platform/db"
	"testing"
	"time"
)

func newSQLiteStore(t *testing.T) (*SQLPositionStore, *sql.DB) {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	ctx := context.Background()
	if err := repositories.InitSchema(ctx, conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	var nodes []repositories.FlightNode
	for i, p := range fixturePositions() {
		if p.FlightID == "BAD" {
			continue
		}
		nodes = append(nodes, repositories.FlightNode{Position: p, TimeIndex: i})
	}
	if err := repositories.InsertFlightNodes(ctx, conn, db.SQLite, nodes); err != nil {
		t.Fatalf("insert: %v", err)
	}

	return NewSQLPositionStore(conn, db.SQLite), conn
}

func TestSQLPositionStoreQueryNear(t *testing.T) {
	store, _ := newSQLiteStore(t)

	got, err := store.QueryNear(context.Background(), domain.Coordinates{Lat: 40.0, Lon: -74.0}, 50, t0, 20*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d positions, want 2: %+v", len(got), got)
	}
	if got[0].FlightID != "B64" || got[1].FlightID != "UA1" {
		t.Fatalf("flights = [%s %s], want [B64 UA1]", got[0].FlightID, got[1].FlightID)
	}
	if !got[1].Timestamp.Equal(t0.Add(5 * time.Minute)) {
		t.Fatalf("timestamp = %v, want %v", got[1].Timestamp, t0.Add(5*time.Minute))
	}
}

func TestSQLPositionStoreFlightPathAndAll(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ctx := context.Background()

	track, err := store.FlightPath(ctx, "UA1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(track) != 2 || track[0].Origin != "EWR" || track[1].Dest != "SFO" {
		t.Fatalf("unexpected track: %+v", track)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("all = %d positions, want 5", len(all))
	}
}

func TestSQLPositionStoreQueryFailure(t *testing.T) {
	store, conn := newSQLiteStore(t)
	_ = conn.Close()

	if _, err := store.QueryNear(context.Background(), domain.Coordinates{Lat: 40, Lon: -74}, 50, t0, time.Minute); err == nil {
		t.Fatal("expected error from closed database")
	}
}

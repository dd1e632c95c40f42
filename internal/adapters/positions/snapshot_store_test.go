package positions

import (
	"bytes"
	"context"
	"departure-optimizer-service/internal/domain"
	"path/filepath"
	"testing"
	"time"
)

var t0 = time.Date(2013, 1, 1, 8, 0, 0, 0, time.UTC)

func fixturePositions() []domain.FlightPosition {
	return []domain.FlightPosition{
		// ~11 km north of the query point, in the window.
		{FlightID: "UA1", Lat: 40.10, Lon: -74.00, Timestamp: t0.Add(5 * time.Minute), Origin: "EWR", Dest: "SFO"},
		{FlightID: "UA1", Lat: 40.60, Lon: -75.00, Timestamp: t0.Add(10 * time.Minute), Origin: "EWR", Dest: "SFO"},
		// In range but outside the time window.
		{FlightID: "DL2", Lat: 40.05, Lon: -74.05, Timestamp: t0.Add(45 * time.Minute)},
		// In the window but ~111 km away.
		{FlightID: "AA3", Lat: 41.00, Lon: -74.00, Timestamp: t0},
		// Across a grid cell boundary, ~9 km away.
		{FlightID: "B64", Lat: 39.95, Lon: -73.91, Timestamp: t0.Add(-15 * time.Minute)},
		// Invalid, never indexed.
		{FlightID: "BAD", Lat: 120, Lon: 0, Timestamp: t0},
	}
}

func TestSnapshotStoreQueryNear(t *testing.T) {
	store := NewSnapshotStore(fixturePositions())

	if store.Len() != 5 {
		t.Fatalf("Len = %d, want 5", store.Len())
	}

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
}

func TestSnapshotStoreQueryNearHonorsContext(t *testing.T) {
	store := NewSnapshotStore(fixturePositions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.QueryNear(ctx, domain.Coordinates{Lat: 40, Lon: -74}, 50, t0, time.Minute); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestSnapshotStoreFlightPath(t *testing.T) {
	store := NewSnapshotStore(fixturePositions())

	track, err := store.FlightPath(context.Background(), "UA1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(track) != 2 {
		t.Fatalf("track length = %d, want 2", len(track))
	}
	if !track[0].Timestamp.Before(track[1].Timestamp) {
		t.Fatalf("track not ordered by time: %v then %v", track[0].Timestamp, track[1].Timestamp)
	}

	missing, err := store.FlightPath(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("unknown flight returned %d positions", len(missing))
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	store := NewSnapshotStore(fixturePositions())

	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, store.All()); err != nil {
		t.Fatalf("write: %v", err)
	}

	path := filepath.Join(t.TempDir(), "positions.msgpack.zst")
	if err := WriteSnapshotFile(path, store.All()); err != nil {
		t.Fatalf("write file: %v", err)
	}

	loaded, err := LoadSnapshotFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != store.Len() {
		t.Fatalf("loaded %d positions, want %d", loaded.Len(), store.Len())
	}

	track, _ := loaded.FlightPath(context.Background(), "UA1")
	if len(track) != 2 || !track[0].Timestamp.Equal(t0.Add(5*time.Minute)) || track[0].Origin != "EWR" {
		t.Fatalf("unexpected track after reload: %+v", track)
	}

	if _, err := ReadSnapshot(bytes.NewReader([]byte("not a snapshot"))); err == nil {
		t.Fatal("expected error decoding garbage")
	}
}

package config

import (
	"testing"
	"time"
)

func TestGetFallsBack(t *testing.T) {
	t.Setenv("OPTIMIZER_TEST_KEY", "  ")
	if got := Get("OPTIMIZER_TEST_KEY", "x"); got != "x" {
		t.Fatalf("Get = %q, want x", got)
	}

	t.Setenv("OPTIMIZER_TEST_KEY", "y")
	if got := Get("OPTIMIZER_TEST_KEY", "x"); got != "y" {
		t.Fatalf("Get = %q, want y", got)
	}
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		value   string
		want    time.Duration
		wantErr bool
	}{
		{value: "", want: time.Minute},
		{value: "45", want: 45 * time.Second},
		{value: "1m30s", want: 90 * time.Second},
		{value: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("OPTIMIZER_TEST_DURATION", tt.value)
			got, err := GetDuration("OPTIMIZER_TEST_DURATION", time.Minute)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("GetDuration = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("OPTIMIZER_TEST_INT", "8")
	if n, err := GetInt("OPTIMIZER_TEST_INT", 1); err != nil || n != 8 {
		t.Fatalf("GetInt = %d, %v, want 8", n, err)
	}

	t.Setenv("OPTIMIZER_TEST_INT", "eight")
	if _, err := GetInt("OPTIMIZER_TEST_INT", 1); err == nil {
		t.Fatalf("expected error for non-integer")
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/flights.db")
	t.Setenv("OPTIMIZE_TIMEOUT", "10s")
	t.Setenv("SEARCH_CONCURRENCY", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DSN() != "/tmp/flights.db" {
		t.Fatalf("DSN = %q, want /tmp/flights.db", cfg.DSN())
	}
	if cfg.OptimizeTimeout != 10*time.Second || cfg.SearchConcurrency != 2 {
		t.Fatalf("cfg = %+v", cfg)
	}

	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SNAPSHOT_PATH", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for pgx without DATABASE_URL")
	}

	t.Setenv("DB_DRIVER", "mongo")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

package db

import "testing"

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE x = ? AND y BETWEEN ? AND ?"

	if got := SQLite.Rebind(q); got != q {
		t.Fatalf("sqlite rebind = %q, want unchanged", got)
	}

	want := "SELECT a FROM t WHERE x = $1 AND y BETWEEN $2 AND $3"
	if got := Postgres.Rebind(q); got != want {
		t.Fatalf("postgres rebind = %q, want %q", got, want)
	}
}

func TestOpenSQLiteInMemory(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE t (x INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO t (x) VALUES (1)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestOpenDriverRejectsUnknown(t *testing.T) {
	if _, _, err := OpenDriver("oracle", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

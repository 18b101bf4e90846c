package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"climate-server/internal/migrate"

	_ "github.com/mattn/go-sqlite3"
)

// ObservationRow is a measurement fixture row. A nil Prcp is stored as NULL.
type ObservationRow struct {
	Station string
	Date    string
	Prcp    *float64
	Tobs    float64
}

type StationRow struct {
	Station string
	Name    string
}

// Float returns a pointer to v, for nullable fixture columns.
func Float(v float64) *float64 {
	return &v
}

// NewClimateDB returns an in-memory SQLite database with the measurement and
// station schema applied and the given rows inserted in order.
// The pool is pinned to one connection so every query sees the same database.
func NewClimateDB(t *testing.T, observations []ObservationRow, stations []StationRow) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close db: %v", closeErr)
		}
	})

	if err := seed(context.Background(), db, observations, stations); err != nil {
		t.Fatal(err)
	}
	return db
}

// WriteClimateDB creates a SQLite file at path holding the schema and rows,
// for code under test that opens the database itself.
func WriteClimateDB(t *testing.T, path string, observations []ObservationRow, stations []StationRow) {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open db %s: %v", path, err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close db: %v", closeErr)
		}
	}()

	if err := seed(context.Background(), db, observations, stations); err != nil {
		t.Fatal(err)
	}
}

func seed(ctx context.Context, db *sql.DB, observations []ObservationRow, stations []StationRow) error {
	if err := migrate.Run(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	for _, s := range stations {
		if _, err := db.ExecContext(ctx, `INSERT INTO station (station, name) VALUES (?, ?)`, s.Station, s.Name); err != nil {
			return fmt.Errorf("insert station %q: %w", s.Station, err)
		}
	}
	for _, o := range observations {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`,
			o.Station, o.Date, o.Prcp, o.Tobs,
		); err != nil {
			return fmt.Errorf("insert observation %s/%s: %w", o.Station, o.Date, err)
		}
	}
	return nil
}

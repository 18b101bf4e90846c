package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"climate-server/internal/modules/climate/types"
)

//go:embed sql/get-observations-in-range.sql
var getObservationsInRangeSQL string

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-observation-counts.sql
var getObservationCountsSQL string

//go:embed sql/get-temperature-aggregates.sql
var getTemperatureAggregatesSQL string

//go:embed sql/get-latest-observation-date.sql
var getLatestObservationDateSQL string

//go:embed sql/count-required-tables.sql
var countRequiredTablesSQL string

const requiredTables = 2

// ClimateRepository is read-only access to the measurement and station tables.
// Dates are YYYY-MM-DD strings; a nil stationID means "all stations".
type ClimateRepository interface {
	GetObservationsInRange(ctx context.Context, stationID *string, from string, to *string) ([]types.Observation, error)
	GetStations(ctx context.Context) ([]types.Station, error)
	GetObservationCountsByStation(ctx context.Context) ([]types.StationCount, error)
	GetTemperatureAggregates(ctx context.Context, from string, to string, stationID *string) (types.TemperatureAggregates, error)
	GetLatestObservationDate(ctx context.Context, stationID *string) (string, error)
	VerifySchema(ctx context.Context) error
	Ping(ctx context.Context) error
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) GetObservationsInRange(ctx context.Context, stationID *string, from string, to *string) ([]types.Observation, error) {
	rows, err := r.db.QueryContext(ctx, getObservationsInRangeSQL,
		sql.Named("from", from),
		sql.Named("to", to),
		sql.Named("station", stationID),
	)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close observations rows", "error", err)
		}
	}()

	var out []types.Observation
	for rows.Next() {
		var o types.Observation
		if err := rows.Scan(&o.StationID, &o.Date, &o.Precipitation, &o.Temperature); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetStations(ctx context.Context) ([]types.Station, error) {
	rows, err := r.db.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close stations rows", "error", err)
		}
	}()

	var out []types.Station
	for rows.Next() {
		var s types.Station
		if err := rows.Scan(&s.StationID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetObservationCountsByStation(ctx context.Context) ([]types.StationCount, error) {
	rows, err := r.db.QueryContext(ctx, getObservationCountsSQL)
	if err != nil {
		return nil, fmt.Errorf("query observation counts: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close observation counts rows", "error", err)
		}
	}()

	var out []types.StationCount
	for rows.Next() {
		var c types.StationCount
		if err := rows.Scan(&c.StationID, &c.Count); err != nil {
			return nil, fmt.Errorf("scan observation count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetTemperatureAggregates returns types.ErrNoMatchingRows together with
// all-nil aggregates when nothing falls inside [from, to].
func (r *repositoryImpl) GetTemperatureAggregates(ctx context.Context, from string, to string, stationID *string) (types.TemperatureAggregates, error) {
	var (
		minT, avgT, maxT sql.NullFloat64
		n                int
	)
	err := r.db.QueryRowContext(ctx, getTemperatureAggregatesSQL,
		sql.Named("from", from),
		sql.Named("to", to),
		sql.Named("station", stationID),
	).Scan(&minT, &avgT, &maxT, &n)
	if err != nil {
		return types.TemperatureAggregates{}, fmt.Errorf("query temperature aggregates: %w", err)
	}
	if n == 0 {
		return types.TemperatureAggregates{}, types.ErrNoMatchingRows
	}
	return types.TemperatureAggregates{
		Min: nullFloat(minT),
		Avg: nullFloat(avgT),
		Max: nullFloat(maxT),
	}, nil
}

func (r *repositoryImpl) GetLatestObservationDate(ctx context.Context, stationID *string) (string, error) {
	var latest sql.NullString
	err := r.db.QueryRowContext(ctx, getLatestObservationDateSQL, sql.Named("station", stationID)).Scan(&latest)
	if err != nil {
		return "", fmt.Errorf("query latest observation date: %w", err)
	}
	if !latest.Valid {
		return "", types.ErrEmptyDataset
	}
	return latest.String, nil
}

// VerifySchema fails when the measurement or station table is missing, which
// usually means SQLITE_PATH points at the wrong file.
func (r *repositoryImpl) VerifySchema(ctx context.Context) error {
	var n int
	if err := r.db.QueryRowContext(ctx, countRequiredTablesSQL).Scan(&n); err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}
	if n != requiredTables {
		return errors.New("database is missing the measurement or station table")
	}
	return nil
}

func (r *repositoryImpl) Ping(ctx context.Context) error {
	var ok int
	if err := r.db.QueryRowContext(ctx, `SELECT 1`).Scan(&ok); err != nil {
		return err
	}
	if ok != 1 {
		return errors.New("database connection failed")
	}
	return nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

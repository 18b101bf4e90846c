package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"

	"climate-server/internal/modules/climate/types"
	"climate-server/internal/testutils"
)

func strPtr(s string) *string { return &s }

var sampleObservations = []testutils.ObservationRow{
	{Station: "USC1", Date: "2017-08-20", Prcp: testutils.Float(0.2), Tobs: 77},
	{Station: "USC1", Date: "2017-08-21", Prcp: nil, Tobs: 78},
	{Station: "USC1", Date: "2017-08-22", Prcp: testutils.Float(0.0), Tobs: 80},
	{Station: "USC1", Date: "2017-08-23", Prcp: testutils.Float(0.1), Tobs: 79},
	{Station: "USC2", Date: "2017-08-21", Prcp: testutils.Float(1.5), Tobs: 70},
	{Station: "USC2", Date: "2017-08-22", Prcp: testutils.Float(0.7), Tobs: 72},
}

var sampleStations = []testutils.StationRow{
	{Station: "USC1", Name: "WAIKIKI 717.2, HI US"},
	{Station: "USC2", Name: "KANEOHE 838.1, HI US"},
	{Station: "USC3", Name: "KUALOA RANCH HEADQUARTERS 886.9, HI US"},
}

func newSampleRepo(t *testing.T) ClimateRepository {
	t.Helper()
	return NewRepository(testutils.NewClimateDB(t, sampleObservations, sampleStations))
}

func dates(obs []types.Observation) []string {
	out := make([]string, 0, len(obs))
	for _, o := range obs {
		out = append(out, o.Date)
	}
	sort.Strings(out)
	return out
}

func TestNewRepository(t *testing.T) {
	repo := NewRepository(&sql.DB{})
	if repo == nil {
		t.Fatal("NewRepository returned nil")
	}
}

func TestGetObservationsInRange(t *testing.T) {
	repo := newSampleRepo(t)
	ctx := context.Background()

	t.Run("open-ended range includes from date", func(t *testing.T) {
		obs, err := repo.GetObservationsInRange(ctx, nil, "2017-08-22", nil)
		if err != nil {
			t.Fatalf("GetObservationsInRange: %v", err)
		}
		got := dates(obs)
		want := []string{"2017-08-22", "2017-08-22", "2017-08-23"}
		if len(got) != len(want) {
			t.Fatalf("dates = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("dates = %v, want %v", got, want)
				break
			}
		}
	})

	t.Run("bounded range is inclusive on both ends", func(t *testing.T) {
		to := "2017-08-21"
		obs, err := repo.GetObservationsInRange(ctx, nil, "2017-08-20", &to)
		if err != nil {
			t.Fatalf("GetObservationsInRange: %v", err)
		}
		if len(obs) != 3 {
			t.Fatalf("got %d observations, want 3", len(obs))
		}
	})

	t.Run("station filter", func(t *testing.T) {
		obs, err := repo.GetObservationsInRange(ctx, strPtr("USC2"), "2000-01-01", nil)
		if err != nil {
			t.Fatalf("GetObservationsInRange: %v", err)
		}
		if len(obs) != 2 {
			t.Fatalf("got %d observations, want 2", len(obs))
		}
		for _, o := range obs {
			if o.StationID != "USC2" {
				t.Errorf("StationID = %q, want USC2", o.StationID)
			}
		}
	})

	t.Run("null precipitation scans as nil", func(t *testing.T) {
		to := "2017-08-21"
		obs, err := repo.GetObservationsInRange(ctx, strPtr("USC1"), "2017-08-21", &to)
		if err != nil {
			t.Fatalf("GetObservationsInRange: %v", err)
		}
		if len(obs) != 1 {
			t.Fatalf("got %d observations, want 1", len(obs))
		}
		if obs[0].Precipitation != nil {
			t.Errorf("Precipitation = %v, want nil", *obs[0].Precipitation)
		}
		if obs[0].Temperature != 78 {
			t.Errorf("Temperature = %v, want 78", obs[0].Temperature)
		}
	})

	t.Run("rows come back in table order", func(t *testing.T) {
		obs, err := repo.GetObservationsInRange(ctx, nil, "2017-08-21", nil)
		if err != nil {
			t.Fatalf("GetObservationsInRange: %v", err)
		}
		if len(obs) != 5 {
			t.Fatalf("got %d observations, want 5", len(obs))
		}
		if obs[len(obs)-1].StationID != "USC2" || obs[len(obs)-1].Date != "2017-08-22" {
			t.Errorf("last row = %+v, want USC2 2017-08-22", obs[len(obs)-1])
		}
	})

	t.Run("empty result", func(t *testing.T) {
		obs, err := repo.GetObservationsInRange(ctx, nil, "2030-01-01", nil)
		if err != nil {
			t.Fatalf("GetObservationsInRange: %v", err)
		}
		if len(obs) != 0 {
			t.Fatalf("got %d observations, want 0", len(obs))
		}
	})
}

func TestGetStations(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		repo := NewRepository(testutils.NewClimateDB(t, nil, nil))
		stations, err := repo.GetStations(context.Background())
		if err != nil {
			t.Fatalf("GetStations: %v", err)
		}
		if len(stations) != 0 {
			t.Fatalf("got %d stations, want 0", len(stations))
		}
	})

	t.Run("all stations in table order, including ones without observations", func(t *testing.T) {
		repo := newSampleRepo(t)
		stations, err := repo.GetStations(context.Background())
		if err != nil {
			t.Fatalf("GetStations: %v", err)
		}
		if len(stations) != len(sampleStations) {
			t.Fatalf("got %d stations, want %d", len(stations), len(sampleStations))
		}
		for i, s := range sampleStations {
			if stations[i].StationID != s.Station || stations[i].Name != s.Name {
				t.Errorf("stations[%d] = %+v, want %s %q", i, stations[i], s.Station, s.Name)
			}
		}
	})
}

func TestGetObservationCountsByStation(t *testing.T) {
	repo := newSampleRepo(t)

	counts, err := repo.GetObservationCountsByStation(context.Background())
	if err != nil {
		t.Fatalf("GetObservationCountsByStation: %v", err)
	}
	want := []types.StationCount{{StationID: "USC1", Count: 4}, {StationID: "USC2", Count: 2}}
	if len(counts) != len(want) {
		t.Fatalf("counts = %+v, want %+v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %+v, want %+v", i, counts[i], want[i])
		}
	}
}

func TestGetTemperatureAggregates(t *testing.T) {
	repo := newSampleRepo(t)
	ctx := context.Background()

	t.Run("all stations", func(t *testing.T) {
		agg, err := repo.GetTemperatureAggregates(ctx, "2017-08-22", "2017-08-23", nil)
		if err != nil {
			t.Fatalf("GetTemperatureAggregates: %v", err)
		}
		if agg.Min == nil || agg.Avg == nil || agg.Max == nil {
			t.Fatalf("aggregates = %+v, want all set", agg)
		}
		if *agg.Min != 72 || *agg.Max != 80 || *agg.Avg != 77 {
			t.Errorf("min/avg/max = %v/%v/%v, want 72/77/80", *agg.Min, *agg.Avg, *agg.Max)
		}
	})

	t.Run("station filter", func(t *testing.T) {
		agg, err := repo.GetTemperatureAggregates(ctx, "2017-08-22", "2017-08-23", strPtr("USC1"))
		if err != nil {
			t.Fatalf("GetTemperatureAggregates: %v", err)
		}
		if *agg.Min != 79 || *agg.Avg != 79.5 || *agg.Max != 80 {
			t.Errorf("min/avg/max = %v/%v/%v, want 79/79.5/80", *agg.Min, *agg.Avg, *agg.Max)
		}
	})

	t.Run("no matching rows", func(t *testing.T) {
		agg, err := repo.GetTemperatureAggregates(ctx, "2020-01-01", "2019-01-01", nil)
		if !errors.Is(err, types.ErrNoMatchingRows) {
			t.Fatalf("err = %v, want ErrNoMatchingRows", err)
		}
		if agg.Min != nil || agg.Avg != nil || agg.Max != nil {
			t.Errorf("aggregates = %+v, want all nil", agg)
		}
	})
}

func TestGetLatestObservationDate(t *testing.T) {
	ctx := context.Background()

	t.Run("global latest", func(t *testing.T) {
		repo := newSampleRepo(t)
		got, err := repo.GetLatestObservationDate(ctx, nil)
		if err != nil {
			t.Fatalf("GetLatestObservationDate: %v", err)
		}
		if got != "2017-08-23" {
			t.Errorf("latest = %q, want 2017-08-23", got)
		}
	})

	t.Run("station latest", func(t *testing.T) {
		repo := newSampleRepo(t)
		got, err := repo.GetLatestObservationDate(ctx, strPtr("USC2"))
		if err != nil {
			t.Fatalf("GetLatestObservationDate: %v", err)
		}
		if got != "2017-08-22" {
			t.Errorf("latest = %q, want 2017-08-22", got)
		}
	})

	t.Run("empty dataset", func(t *testing.T) {
		repo := NewRepository(testutils.NewClimateDB(t, nil, nil))
		_, err := repo.GetLatestObservationDate(ctx, nil)
		if !errors.Is(err, types.ErrEmptyDataset) {
			t.Fatalf("err = %v, want ErrEmptyDataset", err)
		}
	})

	t.Run("unknown station", func(t *testing.T) {
		repo := newSampleRepo(t)
		_, err := repo.GetLatestObservationDate(ctx, strPtr("NOPE"))
		if !errors.Is(err, types.ErrEmptyDataset) {
			t.Fatalf("err = %v, want ErrEmptyDataset", err)
		}
	})
}

func TestVerifySchema(t *testing.T) {
	ctx := context.Background()

	t.Run("schema present", func(t *testing.T) {
		repo := newSampleRepo(t)
		if err := repo.VerifySchema(ctx); err != nil {
			t.Fatalf("VerifySchema: %v", err)
		}
	})

	t.Run("schema missing", func(t *testing.T) {
		db, err := sql.Open("sqlite3", ":memory:")
		if err != nil {
			t.Fatalf("open db: %v", err)
		}
		defer func() { _ = db.Close() }()

		if err := NewRepository(db).VerifySchema(ctx); err == nil {
			t.Fatal("VerifySchema error = nil, want non-nil")
		}
	})
}

func TestPing(t *testing.T) {
	repo := newSampleRepo(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

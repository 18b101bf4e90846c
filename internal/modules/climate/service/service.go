package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/temporal"
	"climate-server/internal/modules/climate/types"
)

type ClimateService interface {
	PrecipitationByDate(ctx context.Context) (map[string]*float64, error)
	Stations(ctx context.Context) ([]types.Station, error)
	MostActiveTemperatures(ctx context.Context) ([]types.TemperatureObservation, error)
	TemperatureStats(ctx context.Context, start string, end *string) (types.TemperatureStats, error)
}

type serviceImpl struct {
	repository repository.ClimateRepository
	resolver   *temporal.Resolver
	logger     *slog.Logger
}

func NewService(repo repository.ClimateRepository, logger *slog.Logger) ClimateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &serviceImpl{
		repository: repo,
		resolver:   temporal.NewResolver(repo),
		logger:     logger,
	}
}

// PrecipitationByDate maps each date in the last year of data to its
// precipitation. When several stations report the same date, the last row
// storage returns for that date wins.
func (s *serviceImpl) PrecipitationByDate(ctx context.Context) (map[string]*float64, error) {
	latest, err := s.resolver.LatestObservationDate(ctx, nil)
	if err != nil {
		return nil, err
	}
	from := temporal.FormatDate(temporal.OneYearBefore(latest))

	rows, err := s.repository.GetObservationsInRange(ctx, nil, from, nil)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*float64, len(rows))
	for _, o := range rows {
		out[o.Date] = o.Precipitation
	}
	s.logger.Debug("precipitation by date", "from", from, "rows", len(rows), "dates", len(out))
	return out, nil
}

func (s *serviceImpl) Stations(ctx context.Context) ([]types.Station, error) {
	stations, err := s.repository.GetStations(ctx)
	if err != nil {
		return nil, err
	}
	if stations == nil {
		stations = []types.Station{}
	}
	return stations, nil
}

// MostActiveTemperatures returns the last year of temperatures for the station
// with the most observations. The year is measured back from that station's
// own latest observation, not the dataset-wide one.
func (s *serviceImpl) MostActiveTemperatures(ctx context.Context) ([]types.TemperatureObservation, error) {
	counts, err := s.repository.GetObservationCountsByStation(ctx)
	if err != nil {
		return nil, err
	}
	active, ok := mostActiveStation(counts)
	if !ok {
		return nil, types.ErrEmptyDataset
	}

	latest, err := s.resolver.LatestObservationDate(ctx, &active.StationID)
	if err != nil {
		return nil, err
	}
	from := temporal.FormatDate(temporal.OneYearBefore(latest))

	rows, err := s.repository.GetObservationsInRange(ctx, &active.StationID, from, nil)
	if err != nil {
		return nil, err
	}

	out := make([]types.TemperatureObservation, 0, len(rows))
	for _, o := range rows {
		out = append(out, types.TemperatureObservation{Date: o.Date, Temperature: o.Temperature})
	}
	s.logger.Debug("most active station temperatures",
		"station", active.StationID,
		"count", active.Count,
		"from", from,
		"rows", len(out),
	)
	return out, nil
}

// TemperatureStats aggregates temperatures over [start, end]. A missing end
// defaults to the latest observation date across all stations. A window with
// no observations (including start after end) yields null aggregates.
func (s *serviceImpl) TemperatureStats(ctx context.Context, start string, end *string) (types.TemperatureStats, error) {
	startDate, err := temporal.ParseDate(start)
	if err != nil {
		return types.TemperatureStats{}, err
	}

	var endDate time.Time
	if end != nil {
		endDate, err = temporal.ParseDate(*end)
	} else {
		endDate, err = s.resolver.LatestObservationDate(ctx, nil)
	}
	if err != nil {
		return types.TemperatureStats{}, err
	}

	stats := types.TemperatureStats{
		StartDate: temporal.FormatDate(startDate),
		EndDate:   temporal.FormatDate(endDate),
	}
	agg, err := s.repository.GetTemperatureAggregates(ctx, stats.StartDate, stats.EndDate, nil)
	switch {
	case errors.Is(err, types.ErrNoMatchingRows):
		return stats, nil
	case err != nil:
		return types.TemperatureStats{}, err
	}
	stats.Min, stats.Avg, stats.Max = agg.Min, agg.Avg, agg.Max
	return stats, nil
}

// mostActiveStation picks the highest count; ties go to the earliest entry.
func mostActiveStation(counts []types.StationCount) (types.StationCount, bool) {
	if len(counts) == 0 {
		return types.StationCount{}, false
	}
	best := counts[0]
	for _, c := range counts[1:] {
		if c.Count > best.Count {
			best = c
		}
	}
	return best, true
}

// Package temporal derives the date windows used by the climate queries:
// the most recent observation date, the date one year before it, and
// validated user-supplied dates.
package temporal

import (
	"context"
	"fmt"
	"time"

	"climate-server/internal/modules/climate/types"
)

// DateLayout is the only accepted date format, both on the wire and in storage.
const DateLayout = "2006-01-02"

// yearOffsetDays is a fixed offset; leap years are deliberately not accounted for.
const yearOffsetDays = 365

type latestDateSource interface {
	GetLatestObservationDate(ctx context.Context, stationID *string) (string, error)
}

type Resolver struct {
	source latestDateSource
}

func NewResolver(source latestDateSource) *Resolver {
	return &Resolver{source: source}
}

// LatestObservationDate returns the most recent observation date, across all
// stations when stationID is nil. It fails with types.ErrEmptyDataset when
// there is nothing to look at.
func (r *Resolver) LatestObservationDate(ctx context.Context, stationID *string) (time.Time, error) {
	raw, err := r.source.GetLatestObservationDate(ctx, stationID)
	if err != nil {
		return time.Time{}, err
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("stored date %q: %w", raw, err)
	}
	return d, nil
}

func OneYearBefore(d time.Time) time.Time {
	return d.AddDate(0, 0, -yearOffsetDays)
}

// ParseDate accepts exactly YYYY-MM-DD and returns *types.InvalidDateError otherwise.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &types.InvalidDateError{Input: s, Err: err}
	}
	return d, nil
}

func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

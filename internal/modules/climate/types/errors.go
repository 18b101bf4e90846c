package types

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when a latest-date lookup finds no observations.
	ErrEmptyDataset = errors.New("dataset contains no observations")

	// ErrNoMatchingRows is returned by aggregate queries whose filter matched nothing.
	ErrNoMatchingRows = errors.New("no observations match the filter")
)

// InvalidDateError reports a date string that is not in YYYY-MM-DD form.
type InvalidDateError struct {
	Input string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q (expected YYYY-MM-DD)", e.Input)
}

func (e *InvalidDateError) Unwrap() error {
	return e.Err
}

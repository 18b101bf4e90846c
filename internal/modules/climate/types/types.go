package types

// Observation is one row of the measurement table.
type Observation struct {
	StationID     string   `json:"station"`
	Date          string   `json:"date"`
	Precipitation *float64 `json:"prcp"`
	Temperature   float64  `json:"tobs"`
}

type Station struct {
	StationID string `json:"station"`
	Name      string `json:"name"`
}

// StationCount is the number of observations recorded by one station.
type StationCount struct {
	StationID string
	Count     int
}

// TemperatureAggregates holds MIN/AVG/MAX over the temperature column.
// Fields are nil when no observation matched.
type TemperatureAggregates struct {
	Min *float64
	Avg *float64
	Max *float64
}

type TemperatureObservation struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"tobs"`
}

type TemperatureStats struct {
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Min       *float64 `json:"min_temperature"`
	Avg       *float64 `json:"avg_temperature"`
	Max       *float64 `json:"max_temperature"`
}

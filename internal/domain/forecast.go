package domain

import "time"

// Forecast is a multi-day weather outlook for a location.
type Forecast struct {
	Location string
	Country  string
	Days     []ForecastDay
}

// ForecastDay summarizes the weather of one day.
type ForecastDay struct {
	Date         time.Time
	MaxTempC     float64
	MinTempC     float64
	AvgTempC     float64
	ChanceOfRain int
	Condition    string
	IconURL      string
}

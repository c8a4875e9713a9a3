// Package models defines the core domain types shared across the service.
package models

import "time"

// Weather categories present in the historical data.
const (
	WeatherSunny  = "sunny"
	WeatherCloudy = "cloudy"
	WeatherRainy  = "rainy"
	WeatherStormy = "stormy"
)

// Weathers lists all known weather categories in canonical order.
var Weathers = []string{WeatherSunny, WeatherCloudy, WeatherRainy, WeatherStormy}

// HistoricalRecord is one hourly row of the synthetic training dataset.
// DayOfWeek follows the Monday=0..Sunday=6 convention used throughout
// the dataset and model.
type HistoricalRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	DayOfWeek     int       `json:"day_of_week"`
	Month         int       `json:"month"`
	Hour          int       `json:"hour"`
	Weather       string    `json:"weather"`
	IsWeekend     int       `json:"is_weekend"`
	IsHoliday     int       `json:"is_holiday"`
	IsFestivalDay int       `json:"is_festival_day"`
	PilgrimCount  int       `json:"pilgrim_count"`
}

// FeatureVector is the fixed-schema input consumed by the regression model.
// Column set and order must match what the pipeline was fitted on.
type FeatureVector struct {
	DayOfWeek     int    `json:"day_of_week"`
	Month         int    `json:"month"`
	Hour          int    `json:"hour"`
	Weather       string `json:"weather"`
	IsWeekend     int    `json:"is_weekend"`
	IsHoliday     int    `json:"is_holiday"`
	IsFestivalDay int    `json:"is_festival_day"`
}

// LiveMetrics is a snapshot of the realtime operational metrics feed.
// Snapshots are immutable once published; the simulator swaps in a fresh
// snapshot each iteration.
type LiveMetrics struct {
	ActivePilgrims     int `json:"active_pilgrims"`
	QueueWaitTimeMin   int `json:"queue_wait_time_min"`
	TodaysOfferingsINR int `json:"todays_offerings_inr"`
	EventsToday        int `json:"events_today"`
}

// ForecastPoint is one hourly point of a multi-horizon forecast.
type ForecastPoint struct {
	Timestamp         time.Time `json:"timestamp"`
	PredictedPilgrims int       `json:"predicted_pilgrims"`
}

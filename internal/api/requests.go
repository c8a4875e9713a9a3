package api

import (
	"fmt"
	"time"

	"github.com/yourusername/temple-crowd/internal/features"
)

// PredictRequest is the body of POST /api/predict-crowd. Every field is
// optional; omitted fields take the encoder defaults.
type PredictRequest struct {
	Timestamp     *string `json:"timestamp"`
	IsHoliday     *int    `json:"is_holiday"`
	IsFestivalDay *int    `json:"is_festival_day"`
	Weather       string  `json:"weather"`
}

// Inputs converts the request into encoder inputs, parsing the timestamp.
func (r *PredictRequest) Inputs() (features.Inputs, error) {
	in := features.Inputs{
		IsHoliday:     r.IsHoliday,
		IsFestivalDay: r.IsFestivalDay,
		Weather:       r.Weather,
	}
	if r.Timestamp != nil && *r.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, *r.Timestamp)
		if err != nil {
			return in, fmt.Errorf("invalid timestamp: %w", err)
		}
		in.Timestamp = &ts
	}
	return in, nil
}

// SimplePredictRequest is the body of POST /api/predict, the legacy-model
// surface. Festival is the festival name; nil or empty means none.
type SimplePredictRequest struct {
	Day      string  `json:"day" binding:"required"`
	Festival *string `json:"festival"`
	Weather  string  `json:"weather" binding:"required"`
}

// FestivalName returns the festival with the legacy "No"-means-none default
// applied.
func (r *SimplePredictRequest) FestivalName() string {
	if r.Festival == nil || *r.Festival == "" {
		return "No"
	}
	return *r.Festival
}

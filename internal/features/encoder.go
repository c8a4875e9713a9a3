// Package features maps raw calendar and weather inputs to the fixed feature
// vector consumed by the regression model.
package features

import (
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/temple-crowd/internal/dataset"
	"github.com/yourusername/temple-crowd/internal/models"
)

// ErrInvalidFlag indicates a boolean flag outside {0,1} was supplied.
var ErrInvalidFlag = errors.New("flag must be 0 or 1")

// Inputs are the raw request-level inputs to feature encoding. Nil pointers
// take their documented defaults; IsWeekend is always derived and never
// accepted from callers.
type Inputs struct {
	Timestamp     *time.Time
	IsHoliday     *int
	IsFestivalDay *int
	Weather       string
}

// Encode produces a FeatureVector from raw inputs. Timestamp defaults to the
// current UTC time, weather to "sunny", and both flags to 0. Encoding has no
// side effects and is deterministic for a fixed timestamp.
func Encode(in Inputs) (models.FeatureVector, error) {
	var v models.FeatureVector

	isHoliday, err := validateFlag("is_holiday", in.IsHoliday)
	if err != nil {
		return v, err
	}
	isFestival, err := validateFlag("is_festival_day", in.IsFestivalDay)
	if err != nil {
		return v, err
	}

	ts := time.Now().UTC()
	if in.Timestamp != nil {
		ts = in.Timestamp.UTC()
	}

	weather := in.Weather
	if weather == "" {
		weather = models.WeatherSunny
	}

	v = models.FeatureVector{
		DayOfWeek:     dataset.DayOfWeek(ts),
		Month:         int(ts.Month()),
		Hour:          ts.Hour(),
		Weather:       weather,
		IsHoliday:     isHoliday,
		IsFestivalDay: isFestival,
	}
	if v.DayOfWeek == 5 || v.DayOfWeek == 6 {
		v.IsWeekend = 1
	}

	return v, nil
}

func validateFlag(name string, value *int) (int, error) {
	if value == nil {
		return 0, nil
	}
	if *value != 0 && *value != 1 {
		return 0, fmt.Errorf("%w: %s=%d", ErrInvalidFlag, name, *value)
	}
	return *value, nil
}

// Package dataset generates and persists the synthetic historical crowd dataset.
package dataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/temple-crowd/internal/models"
)

// monthDay identifies a calendar day independent of year. Public holidays and
// festivals are keyed this way, so a drawn holiday applies to every year in
// the generated range.
type monthDay struct {
	Month int
	Day   int
}

// Festivals is the fixed festival calendar. Festival days are always holidays.
var Festivals = map[monthDay]string{
	{1, 14}:  "Makar Sankranti",
	{3, 8}:   "Mahashivratri",
	{8, 19}:  "Raksha Bandhan",
	{10, 31}: "Diwali",
}

// Weather category probabilities: monsoon months (June-September) skew rainy.
var (
	weatherProbs        = []float64{0.55, 0.25, 0.18, 0.02}
	weatherProbsMonsoon = []float64{0.3, 0.25, 0.4, 0.05}
)

// Signal construction constants. The legacy heuristic fallback tracks these,
// so changes here must be mirrored there.
const (
	baseDemand     = 2000.0
	weekendBoost   = 1200.0
	holidayBoost   = 1700.0
	festivalBoost  = 3500.0
	hourEffect     = 800.0
	rainyPenalty   = -600.0
	stormyPenalty  = -1200.0
	noiseSigma     = 200.0
	minPilgrims    = 50.0
	holidaysPerMon = 2
)

// GeneratorConfig configures a synthetic dataset generation run
type GeneratorConfig struct {
	Start time.Time
	End   time.Time
	Seed  int64
}

// DefaultGeneratorConfig returns a config covering the trailing window of
// historyYears years, ending now, with the given seed.
func DefaultGeneratorConfig(historyYears int, seed int64) GeneratorConfig {
	end := time.Now().UTC()
	return GeneratorConfig{
		Start: end.AddDate(-historyYears, 0, 0),
		End:   end,
		Seed:  seed,
	}
}

// Generate produces one HistoricalRecord per hour over [Start, End].
// Generation is fully deterministic for a given config: the same seed and
// range always yield the same rows.
func Generate(cfg GeneratorConfig) []models.HistoricalRecord {
	src := rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed))
	rng := rand.New(src)
	noise := distuv.Normal{Mu: 0, Sigma: noiseSigma, Src: src}

	holidays := drawPublicHolidays(rng, cfg.Start, cfg.End)

	start := cfg.Start.UTC().Truncate(time.Hour)
	end := cfg.End.UTC().Truncate(time.Hour)

	records := make([]models.HistoricalRecord, 0, int(end.Sub(start)/time.Hour)+1)
	for ts := start; !ts.After(end); ts = ts.Add(time.Hour) {
		rec := models.HistoricalRecord{
			Timestamp: ts,
			DayOfWeek: DayOfWeek(ts),
			Month:     int(ts.Month()),
			Hour:      ts.Hour(),
		}
		if rec.DayOfWeek == 5 || rec.DayOfWeek == 6 {
			rec.IsWeekend = 1
		}

		md := monthDay{rec.Month, ts.Day()}
		if _, ok := Festivals[md]; ok {
			rec.IsFestivalDay = 1
			rec.IsHoliday = 1
		} else if _, ok := holidays[md]; ok {
			rec.IsHoliday = 1
		}

		rec.Weather = drawWeather(rng, rec.Month)

		demand := baseDemand +
			weekendBoost*float64(rec.IsWeekend) +
			holidayBoost*float64(rec.IsHoliday) +
			festivalBoost*float64(rec.IsFestivalDay) +
			hourEffect*HourFactor(rec.Hour) +
			weatherPenalty(rec.Weather) +
			noise.Rand()
		if demand < minPilgrims {
			demand = minPilgrims
		}
		rec.PilgrimCount = int(math.Round(demand))

		records = append(records, rec)
	}

	return records
}

// DayOfWeek converts a timestamp to the Monday=0..Sunday=6 convention used by
// the dataset and the model.
func DayOfWeek(ts time.Time) int {
	return (int(ts.Weekday()) + 6) % 7
}

// HourFactor is the base demand curve by hour, peaking in the morning and
// evening darshan windows.
func HourFactor(hour int) float64 {
	switch {
	case hour < 5:
		return 0.3
	case hour < 8:
		return 0.7
	case hour < 11:
		return 1.0
	case hour < 16:
		return 0.6
	case hour < 20:
		return 1.1
	default:
		return 0.5
	}
}

func weatherPenalty(weather string) float64 {
	switch weather {
	case models.WeatherRainy:
		return rainyPenalty
	case models.WeatherStormy:
		return stormyPenalty
	default:
		return 0
	}
}

// drawPublicHolidays draws ~2 random public holidays per month in the range.
// Draws are keyed by (month, day) only, so they may collide with festival
// dates or repeat within a month; duplicates are not removed.
func drawPublicHolidays(rng *rand.Rand, start, end time.Time) map[monthDay]struct{} {
	holidays := make(map[monthDay]struct{})
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		for i := 0; i < holidaysPerMon; i++ {
			day := 1 + rng.IntN(27)
			holidays[monthDay{int(cur.Month()), day}] = struct{}{}
		}
	}
	return holidays
}

// drawWeather draws a weather category from the month-dependent distribution.
func drawWeather(rng *rand.Rand, month int) string {
	probs := weatherProbs
	if month >= 6 && month <= 9 {
		probs = weatherProbsMonsoon
	}
	u := rng.Float64()
	cum := 0.0
	for i, p := range probs {
		cum += p
		if u < cum {
			return models.Weathers[i]
		}
	}
	return models.Weathers[len(models.Weathers)-1]
}

package legacy

import "strings"

// Heuristic fallback constants, matching the historical service behavior so
// answers stay comparable when the model bundle is unavailable.
const (
	heuristicBase       = 2000
	weekendBonus        = 1200
	festivalBonus       = 3500
	peakHourBonus       = 800
	rainyPenalty        = 600
	stormyPenalty       = 1200
	cloudyPenalty       = 100
	heuristicFloorCount = 50
)

// Estimate is the deterministic rule-based fallback used when the legacy
// model cannot answer. festival is the festival name, "No" meaning none.
// Inputs are trimmed, and weather matches case-insensitively.
func Estimate(day, festival, weather string) int {
	day = strings.TrimSpace(day)
	festival = strings.TrimSpace(festival)
	weather = strings.ToLower(strings.TrimSpace(weather))

	estimate := heuristicBase

	if day == "Saturday" || day == "Sunday" {
		estimate += weekendBonus
	}
	if festival != "" && festival != "No" {
		estimate += festivalBonus
	}
	estimate += peakHourBonus

	switch weather {
	case "rainy":
		estimate -= rainyPenalty
	case "stormy":
		estimate -= stormyPenalty
	case "cloudy":
		estimate -= cloudyPenalty
	}

	if estimate < heuristicFloorCount {
		estimate = heuristicFloorCount
	}
	return estimate
}

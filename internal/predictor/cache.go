package predictor

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/temple-crowd/internal/metrics"
	"github.com/yourusername/temple-crowd/internal/models"
)

// predictionCache memoizes point predictions keyed by the full feature
// vector. The model is deterministic, so entries never go stale; the TTL
// only bounds memory.
type predictionCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int

	mu     sync.Mutex
	hits   uint64
	misses uint64
}

func newPredictionCache(ttl time.Duration, maxSize int) *predictionCache {
	return &predictionCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

func cacheKey(v models.FeatureVector) string {
	return fmt.Sprintf("%d:%d:%d:%s:%d:%d:%d",
		v.DayOfWeek, v.Month, v.Hour, v.Weather,
		v.IsWeekend, v.IsHoliday, v.IsFestivalDay)
}

// Get returns the cached prediction for the vector, if present.
func (pc *predictionCache) Get(v models.FeatureVector) (int, bool) {
	value, found := pc.cache.Get(cacheKey(v))

	pc.mu.Lock()
	if found {
		pc.hits++
	} else {
		pc.misses++
	}
	total := pc.hits + pc.misses
	ratio := float64(pc.hits) / float64(total)
	pc.mu.Unlock()

	metrics.PredictionCacheHitRatio.Set(ratio)

	if !found {
		return 0, false
	}
	return value.(int), true
}

// Set stores a prediction, evicting expired entries when the size cap is hit.
func (pc *predictionCache) Set(v models.FeatureVector, prediction int) {
	if pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.DeleteExpired()
	}
	pc.cache.Set(cacheKey(v), prediction, pc.ttl)
}

func forecastKey(start time.Time, hours int) string {
	return fmt.Sprintf("forecast:%d:%d", start.Unix(), hours)
}

// GetForecast returns a cached forecast for the given start hour and horizon.
func (pc *predictionCache) GetForecast(start time.Time, hours int) ([]models.ForecastPoint, bool) {
	value, found := pc.cache.Get(forecastKey(start, hours))
	if !found {
		return nil, false
	}
	return value.([]models.ForecastPoint), true
}

// SetForecast stores a forecast. Entries keyed by a past start hour expire
// via the TTL.
func (pc *predictionCache) SetForecast(start time.Time, hours int, points []models.ForecastPoint) {
	if pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.DeleteExpired()
	}
	pc.cache.Set(forecastKey(start, hours), points, pc.ttl)
}

// Stats returns cache hit statistics.
func (pc *predictionCache) Stats() (hits, misses uint64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.hits, pc.misses
}

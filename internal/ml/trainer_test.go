package ml

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/temple-crowd/internal/logger"
	"github.com/yourusername/temple-crowd/internal/models"
)

func trainerRecords() []models.HistoricalRecord {
	weathers := []string{models.WeatherSunny, models.WeatherRainy, models.WeatherCloudy}
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var records []models.HistoricalRecord
	for i := 0; i < 500; i++ {
		day := i % 7
		hour := i % 24
		weekend := 0
		if day >= 5 {
			weekend = 1
		}
		records = append(records, models.HistoricalRecord{
			Timestamp:    ts.Add(time.Duration(i) * time.Hour),
			DayOfWeek:    day,
			Month:        1 + i%12,
			Hour:         hour,
			IsWeekend:    weekend,
			Weather:      weathers[i%len(weathers)],
			PilgrimCount: 2000 + 1200*weekend + 40*hour,
		})
	}
	return records
}

func testGBTConfig() GBTConfig {
	cfg := DefaultGBTConfig()
	cfg.NumTrees = 40
	return cfg
}

func TestTrainProducesScoredArtifact(t *testing.T) {
	log := logger.NewLogger("error", "development")

	artifact, err := Train(trainerRecords(), testGBTConfig(), log)
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, artifact.SchemaVersion)
	assert.NotZero(t, artifact.ID)
	assert.False(t, artifact.TrainedAt.IsZero())
	assert.Greater(t, artifact.FitScore, 0.8)
	assert.LessOrEqual(t, artifact.FitScore, 1.0)
	require.NotNil(t, artifact.Pipeline)
}

func TestTrainIsDeterministic(t *testing.T) {
	log := logger.NewLogger("error", "development")
	records := trainerRecords()

	a, err := Train(records, testGBTConfig(), log)
	require.NoError(t, err)
	b, err := Train(records, testGBTConfig(), log)
	require.NoError(t, err)

	assert.Equal(t, a.FitScore, b.FitScore)
}

func TestTrainNoData(t *testing.T) {
	log := logger.NewLogger("error", "development")

	_, err := Train(nil, testGBTConfig(), log)
	assert.ErrorIs(t, err, ErrNoTrainingData)
}

func TestArtifactSaveLoadRoundTrip(t *testing.T) {
	log := logger.NewLogger("error", "development")
	artifact, err := Train(trainerRecords(), testGBTConfig(), log)
	require.NoError(t, err)

	store := NewArtifactStore(filepath.Join(t.TempDir(), "model.gob"))
	require.NoError(t, store.Save(artifact))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, artifact.ID, loaded.ID)
	assert.Equal(t, artifact.FitScore, loaded.FitScore)

	v := models.FeatureVector{DayOfWeek: 5, Month: 1, Hour: 10, Weather: models.WeatherSunny, IsWeekend: 1}
	want, _, err := artifact.Pipeline.Predict(v)
	require.NoError(t, err)
	got, _, err := loaded.Pipeline.Predict(v)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestArtifactLoadMissing(t *testing.T) {
	store := NewArtifactStore(filepath.Join(t.TempDir(), "absent.gob"))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrArtifactMissing)
}

func TestArtifactLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a gob artifact"), 0o644))

	_, err := NewArtifactStore(path).Load()
	assert.ErrorIs(t, err, ErrArtifactCorrupt)
}

package legacy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/temple-crowd/internal/config"
	"github.com/yourusername/temple-crowd/internal/logger"
)

func testLegacyConfig(dir string) config.LegacyConfig {
	return config.LegacyConfig{
		CacheDir:            dir,
		FetchTimeoutSeconds: 5,
		FetchRetryAttempts:  1,
	}
}

// writeBundle drops a minimal, valid bundle into dir. The regressor is
// intercept 1000 with coefficient 100 on each encoded feature, which makes
// expected outputs easy to compute by hand.
func writeBundle(t *testing.T, dir string) {
	t.Helper()
	write := func(name string, v any) {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	write("model.json", LinearRegressor{Intercept: 1000, Coefficients: []float64{100, 100, 100}})
	write("day_encoder.json", LabelEncoder{Classes: []string{"Friday", "Monday", "Saturday", "Sunday"}})
	write("festival_encoder.json", LabelEncoder{Classes: []string{"Diwali", "No"}})
	write("weather_encoder.json", LabelEncoder{Classes: []string{"cloudy", "rainy", "sunny"}})
}

func TestLabelEncoderUnknownBucket(t *testing.T) {
	enc := LabelEncoder{Classes: []string{"cloudy", "rainy", "sunny"}}

	assert.Equal(t, 0, enc.Transform("cloudy"))
	assert.Equal(t, 2, enc.Transform("sunny"))
	assert.Equal(t, 3, enc.Transform("hailstorm"))
	assert.False(t, enc.Known("hailstorm"))
}

func TestHeuristicEstimate(t *testing.T) {
	tests := []struct {
		day, festival, weather string
		want                   int
	}{
		{"Saturday", "No", "sunny", 4000},
		{"Monday", "Diwali", "stormy", 5100},
		{"Monday", "No", "sunny", 2800},
		{"Sunday", "No", "rainy", 3400},
		{"Tuesday", "No", "cloudy", 2700},
		{"Monday", "Diwali", "Stormy", 5100},
		{"Monday", "Diwali", " stormy ", 5100},
		{" Saturday ", " No ", "RAINY", 3400},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Estimate(tt.day, tt.festival, tt.weather),
			"Estimate(%q, %q, %q)", tt.day, tt.festival, tt.weather)
	}
}

func TestFetcherLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir)

	fetcher := NewFetcher(testLegacyConfig(dir), logger.NewLogger("error", "development"))
	bundle, err := fetcher.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, bundle.Model.Coefficients, 3)
	assert.Equal(t, []string{"Diwali", "No"}, bundle.FestivalEncoder.Classes)
}

func TestFetcherAcceptsDownloadVariantNames(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir)
	require.NoError(t, os.Rename(
		filepath.Join(dir, "model.json"),
		filepath.Join(dir, "model (1).json"),
	))

	fetcher := NewFetcher(testLegacyConfig(dir), logger.NewLogger("error", "development"))
	_, err := fetcher.Load(context.Background())
	assert.NoError(t, err)
}

func TestFetcherDownloadsMissingArtifacts(t *testing.T) {
	source := t.TempDir()
	writeBundle(t, source)

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.ServeFile(w, r, filepath.Join(source, filepath.Base(r.URL.Path)))
	}))
	defer server.Close()

	cfg := testLegacyConfig(t.TempDir())
	cfg.ModelURL = server.URL + "/model.json"
	cfg.DayEncoderURL = server.URL + "/day_encoder.json"
	cfg.FestivalEncoderURL = server.URL + "/festival_encoder.json"
	cfg.WeatherEncoderURL = server.URL + "/weather_encoder.json"

	fetcher := NewFetcher(cfg, logger.NewLogger("error", "development"))
	_, err := fetcher.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, requests)

	// Second load finds everything on disk.
	_, err = fetcher.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, requests)
}

func TestFetcherMissingWithoutURL(t *testing.T) {
	fetcher := NewFetcher(testLegacyConfig(t.TempDir()), logger.NewLogger("error", "development"))

	_, err := fetcher.Load(context.Background())
	assert.ErrorIs(t, err, ErrBundleUnavailable)
}

func TestFetcherMalformedBundle(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.json"), []byte("{not json"), 0o644))

	fetcher := NewFetcher(testLegacyConfig(dir), logger.NewLogger("error", "development"))
	_, err := fetcher.Load(context.Background())
	assert.ErrorIs(t, err, ErrBundleMalformed)
}

func TestPredictorPredict(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir)
	p := NewPredictor(testLegacyConfig(dir), logger.NewLogger("error", "development"))

	// day=Saturday(2), festival=nil->No(1), weather=sunny(2):
	// 1000 + 100*2 + 100*1 + 100*2 = 1500.
	got, err := p.Predict(context.Background(), "Saturday", nil, "sunny")
	require.NoError(t, err)
	assert.Equal(t, 1500, got)
	assert.True(t, p.Available())

	// Unknown day encodes to the out-of-vocabulary bucket len(classes)=4.
	got, err = p.Predict(context.Background(), "Someday", nil, "sunny")
	require.NoError(t, err)
	assert.Equal(t, 1000+100*4+100*1+100*2, got)
}

func TestPredictorBundleUnavailable(t *testing.T) {
	p := NewPredictor(testLegacyConfig(t.TempDir()), logger.NewLogger("error", "development"))

	_, err := p.Predict(context.Background(), "Monday", nil, "sunny")
	assert.ErrorIs(t, err, ErrBundleUnavailable)
	assert.False(t, p.Available())

	// The failure is cached; subsequent calls fail fast the same way.
	_, err = p.Predict(context.Background(), "Monday", nil, "sunny")
	assert.ErrorIs(t, err, ErrBundleUnavailable)
}

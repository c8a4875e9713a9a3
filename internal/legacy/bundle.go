package legacy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/temple-crowd/internal/config"
)

// Canonical bundle file names. The browser-download variants ("model (1).json")
// are accepted on disk because operators tend to drop artifacts in by hand.
const (
	modelFile           = "model.json"
	dayEncoderFile      = "day_encoder.json"
	festivalEncoderFile = "festival_encoder.json"
	weatherEncoderFile  = "weather_encoder.json"
)

// Bundle is the fully decoded legacy artifact set.
type Bundle struct {
	Model           *LinearRegressor
	DayEncoder      *LabelEncoder
	FestivalEncoder *LabelEncoder
	WeatherEncoder  *LabelEncoder
}

// Fetcher materializes the legacy bundle in the local cache directory,
// downloading any missing artifact from its configured URL.
type Fetcher struct {
	cfg    config.LegacyConfig
	client *retryablehttp.Client
	logger *logrus.Logger
}

// NewFetcher creates a bundle fetcher from the legacy configuration.
func NewFetcher(cfg config.LegacyConfig, logger *logrus.Logger) *Fetcher {
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	client.RetryMax = cfg.FetchRetryAttempts
	client.Logger = nil

	return &Fetcher{cfg: cfg, client: client, logger: logger}
}

// Load returns the decoded bundle, fetching missing artifacts first when
// URLs are configured. Loading is idempotent: artifacts already on disk are
// never re-downloaded.
func (f *Fetcher) Load(ctx context.Context) (*Bundle, error) {
	files := []struct {
		name string
		url  string
	}{
		{modelFile, f.cfg.ModelURL},
		{dayEncoderFile, f.cfg.DayEncoderURL},
		{festivalEncoderFile, f.cfg.FestivalEncoderURL},
		{weatherEncoderFile, f.cfg.WeatherEncoderURL},
	}

	paths := make(map[string]string, len(files))
	for _, file := range files {
		path, err := f.ensureArtifact(ctx, file.name, file.url)
		if err != nil {
			return nil, err
		}
		paths[file.name] = path
	}

	bundle := &Bundle{
		Model:           &LinearRegressor{},
		DayEncoder:      &LabelEncoder{},
		FestivalEncoder: &LabelEncoder{},
		WeatherEncoder:  &LabelEncoder{},
	}
	if err := decodeJSONFile(paths[modelFile], bundle.Model); err != nil {
		return nil, err
	}
	for name, enc := range map[string]*LabelEncoder{
		dayEncoderFile:      bundle.DayEncoder,
		festivalEncoderFile: bundle.FestivalEncoder,
		weatherEncoderFile:  bundle.WeatherEncoder,
	} {
		if err := decodeJSONFile(paths[name], enc); err != nil {
			return nil, err
		}
		if len(enc.Classes) == 0 {
			return nil, fmt.Errorf("%w: %s has no classes", ErrBundleMalformed, name)
		}
	}
	if len(bundle.Model.Coefficients) == 0 {
		return nil, fmt.Errorf("%w: model has no coefficients", ErrBundleMalformed)
	}

	return bundle, nil
}

// ensureArtifact returns the on-disk path of the named artifact, downloading
// it when absent and a URL is configured.
func (f *Fetcher) ensureArtifact(ctx context.Context, name, url string) (string, error) {
	if path, ok := f.findLocal(name); ok {
		return path, nil
	}
	if url == "" {
		return "", fmt.Errorf("%w: %s missing from %s and no URL configured",
			ErrBundleUnavailable, name, f.cfg.CacheDir)
	}

	path := filepath.Join(f.cfg.CacheDir, name)
	if err := f.download(ctx, url, path); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrBundleUnavailable, name, err)
	}
	f.logger.WithFields(logrus.Fields{"artifact": name, "url": url}).
		Info("Legacy artifact downloaded")
	return path, nil
}

// findLocal checks the cache dir for the artifact under its canonical name or
// its browser-download variant.
func (f *Fetcher) findLocal(name string) (string, bool) {
	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	for _, candidate := range []string{name, stem + " (1)" + ext} {
		path := filepath.Join(f.cfg.CacheDir, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

func (f *Fetcher) download(ctx context.Context, url, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	rreq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(rreq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".legacy-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func decodeJSONFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBundleUnavailable, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBundleMalformed, filepath.Base(path), err)
	}
	return nil
}

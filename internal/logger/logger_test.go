package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerParsesLevel(t *testing.T) {
	log := NewLogger("debug", "development")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := NewLogger("nope", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestProductionEntriesCarryServiceFields(t *testing.T) {
	log := NewLogger("info", "production")

	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.Info("model loaded")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "temple-crowd", line["service"])
	assert.Equal(t, "production", line["env"])
	assert.Equal(t, "model loaded", line["msg"])
}

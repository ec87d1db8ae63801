package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/planforge/internal/errors"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Level:  level,
		Format: format,
		Output: NewOutput(buf),
	})
	return logger, buf
}

func TestJSONOutput(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.Info("plan generated", "phases", 4)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "plan generated", entry["msg"])
	assert.Equal(t, float64(4), entry["phases"])
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatText)

	logger.Debug("should not appear")
	logger.Info("should not appear either")
	assert.Empty(t, buf.String())

	logger.Warn("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestWithErrorAddsCode(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	err := errors.New(errors.ErrCodeEnhanceNoJSON, "no JSON object in response")
	logger.WithError(err).Error("enhancement failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ENHANCE-002", entry["error_code"])
}

func TestEnabled(t *testing.T) {
	logger, _ := newBufferLogger(LevelWarn, FormatJSON)
	ctx := context.Background()

	assert.False(t, logger.Enabled(ctx, LevelDebug))
	assert.True(t, logger.Enabled(ctx, LevelError))
}

func TestParseLevelAndFormat(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" Warning "))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, FormatText, ParseFormat("console"))
	assert.Equal(t, FormatJSON, ParseFormat(""))
}

func TestLevelNames(t *testing.T) {
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestDefaultLoggerFollowsSetDefaultLogger(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)
	SetDefaultLogger(logger)
	t.Cleanup(func() { SetDefaultLogger(Default()) })

	DefaultLogger().Info("routed")
	assert.Contains(t, buf.String(), "routed")
}

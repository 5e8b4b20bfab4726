package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger := newLogger()

	assert.NotNil(t, logger)
	formatter, ok := logger.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.Equal(t, time.RFC3339Nano, formatter.TimestampFormat)
	assert.True(t, formatter.FullTimestamp)
}

func TestGetLogger_FallsBackToGlobal(t *testing.T) {
	ctx := context.Background()

	retrieved := G(ctx)

	assert.NotNil(t, retrieved)
	assert.Equal(t, L.Logger, retrieved.Logger)
}

func TestWithLogger_RoundTrip(t *testing.T) {
	ctx := context.Background()
	custom := logrus.NewEntry(logrus.New()).WithField("run_id", "abc123")

	ctx = WithLogger(ctx, custom)
	retrieved := G(ctx)

	assert.Equal(t, "abc123", retrieved.Data["run_id"])
}

func TestWithSkill(t *testing.T) {
	ctx := WithSkill(context.Background(), "meeting-notes")

	retrieved := G(ctx)

	assert.Equal(t, "meeting-notes", retrieved.Data["skill"])
}

func TestWithSkill_PreservesExistingFields(t *testing.T) {
	base := logrus.NewEntry(logrus.New()).WithField("request_id", "42")
	ctx := WithLogger(context.Background(), base)

	ctx = WithSkill(ctx, "tf-digest")
	retrieved := G(ctx)

	assert.Equal(t, "42", retrieved.Data["request_id"])
	assert.Equal(t, "tf-digest", retrieved.Data["skill"])
}

func TestJSONFormat_FieldNames(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	setLoggerFormat(logger, "json")

	ctx := WithLogger(context.Background(), logrus.NewEntry(logger))
	G(ctx).Info("run complete")

	var entry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &entry)
	require.NoError(t, err)

	assert.Contains(t, entry, "timestamp")
	assert.Equal(t, "info", entry["logLevel"])
	assert.Equal(t, "run complete", entry["message"])
}

func TestSetLogLevel(t *testing.T) {
	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	require.NoError(t, SetLogLevel("info"))
	assert.Equal(t, logrus.InfoLevel, L.Logger.GetLevel())

	assert.Error(t, SetLogLevel("shouting"))
}

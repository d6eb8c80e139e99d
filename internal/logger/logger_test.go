package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONWithTimestamp(t *testing.T) {
	var buf bytes.Buffer
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	l := New(&buf, loc)
	l.Info("listing_created", slog.String("component", "service"), slog.String("listing_id", "abc"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "listing_created", entry["msg"])
	assert.Equal(t, "service", entry["component"])
	assert.Equal(t, "abc", entry["listing_id"])

	ts, ok := entry["ts"].(string)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	require.NoError(t, err)
	_, offset := parsed.Zone()
	assert.Equal(t, 5*3600+1800, offset)
	assert.NotContains(t, entry, "time")
}

func TestNew_DropsDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)
	l.Debug("noise")
	assert.Zero(t, buf.Len())
}

func TestSetupDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	SetupDefault(&buf, time.UTC)
	slog.Warn("hello")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

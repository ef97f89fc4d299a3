package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogWithRequestID(t *testing.T) {
	buf := new(bytes.Buffer)
	SetOutput(buf)
	SetLevel("debug")
	defer SetLevel("info")

	ctx := WithRequestID(context.Background(), "req-123")
	InfoLog(ctx, "exported %d rows", 10)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "exported 10 rows", entry["message"])
	assert.Equal(t, "req-123", entry["request_id"])
}

func TestLogLevels(t *testing.T) {
	buf := new(bytes.Buffer)
	SetOutput(buf)
	SetLevel("warn")
	defer SetLevel("info")

	ctx := context.Background()
	DebugLog(ctx, "hidden")
	InfoLog(ctx, "hidden")
	assert.Equal(t, 0, buf.Len())

	WarnLog(ctx, "shown")
	ErrorLog(ctx, "shown too")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestSetLevelFallback(t *testing.T) {
	SetLevel("nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	SetLevel("")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestInitLoggingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, InitLogging(path))
	SetLevel("info")

	InfoLog(context.Background(), "to file")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestRequestIDMissing(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
}

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("info", "json", zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("scenario finished", zap.String("scenario", "alert popup"), zap.Bool("passed", true))
	require.NoError(t, logger.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1, "debug entry should be filtered at info level")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "scenario finished", entry["msg"])
	assert.Equal(t, "alert popup", entry["scenario"])
	assert.Equal(t, true, entry["passed"])
	assert.Contains(t, entry, "ts")
}

func TestNewWithWriterRejectsBadInput(t *testing.T) {
	_, err := NewWithWriter("loud", "json", zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)

	_, err = NewWithWriter("info", "xml", zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)
}

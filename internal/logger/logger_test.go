package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	require.NoError(t, Init(Config{ConfigDir: configDir}))

	_, err := os.Stat(filepath.Join(configDir, "logs"))
	assert.NoError(t, err, "log directory was not created")
	require.NotNil(t, Logger)

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestInitLogDirOverride(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "elsewhere")

	require.NoError(t, Init(Config{ConfigDir: "/unused", LogDir: logDir}))

	_, err := os.Stat(logDir)
	assert.NoError(t, err)
}

func TestInitWithWriter(t *testing.T) {
	var buf bytes.Buffer

	InitWithWriter(&buf, false)
	Debug("hidden")
	Info("plan generated", "sessions", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "plan generated")
	assert.Contains(t, out, "sessions=3")
	assert.Equal(t, io.Writer(&buf), Writer())

	buf.Reset()
	InitWithWriter(&buf, true)
	Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// Must not panic
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

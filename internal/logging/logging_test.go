package logging_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PixPMusic/ampswitcher/internal/logging"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer

	logging.New(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	logging.New(&buf, true).Debug("shown", "port", "Amp")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "port=Amp")
	assert.Contains(t, buf.String(), "source=")
}

func TestSetupWritesLogFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	dir := t.TempDir()

	closer := logging.Setup(dir, false)
	slog.Info("hello from test", "op", "setup")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, logging.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
	assert.Contains(t, string(data), "op=setup")
}

func TestSetupWithoutDir(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	closer := logging.Setup("", true)
	assert.NoError(t, closer.Close())
}

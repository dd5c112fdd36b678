package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/PixPMusic/ampswitcher/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogs routes slog output into a buffer for the duration of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLoadMissingUsesDefaults(t *testing.T) {
	logs := captureLogs(t)
	store := config.NewStore(filepath.Join(t.TempDir(), "nested"))

	s := store.Load()

	assert.Equal(t, "", s.PortName)
	assert.Equal(t, 0, s.Channel)
	assert.Equal(t, "default.json", s.Profile)
	assert.Equal(t, "icon.icns", s.Icon)
	assert.Equal(t, config.Default(), s)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "settings file not found")
}

func TestLoadCorruptUsesDefaults(t *testing.T) {
	logs := captureLogs(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("{not json"), 0644))

	s := config.NewStore(dir).Load()

	assert.Equal(t, config.Default(), s)
	assert.Contains(t, logs.String(), "level=ERROR")
}

func TestLoadPartialFillsLayoutDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `{"port_name": "USB MIDI", "channel": 2, "profile": "gig.json", "icon": "icon.icns"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0644))

	s := config.NewStore(dir).Load()

	assert.Equal(t, &config.Settings{
		PortName:      "USB MIDI",
		Channel:       2,
		Profile:       "gig.json",
		Icon:          "icon.icns",
		Font:          "Arial",
		Size:          12,
		ButtonsPerRow: 4,
	}, s)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	store := config.NewStore(dir)

	want := &config.Settings{
		PortName:      "IAC Bus 1",
		Channel:       5,
		Profile:       "live.json",
		Icon:          "amp.png",
		Font:          "Helvetica",
		Size:          18,
		ButtonsPerRow: 3,
	}
	require.NoError(t, store.Save(want))

	assert.Equal(t, want, store.Load())

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"port_name\": \"IAC Bus 1\"")
}

func TestSaveFailureIsReturned(t *testing.T) {
	logs := captureLogs(t)
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := config.NewStore(blocker).Save(config.Default())

	assert.ErrorIs(t, err, config.ErrIO)
	assert.Contains(t, logs.String(), "error saving settings")
}

func TestParseOutOfRangeChannelUsesDefault(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"too high", `{"channel": 99}`, 0},
		{"negative", `{"channel": -1}`, 0},
		{"upper bound", `{"channel": 16}`, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)
			s, err := config.Parse([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Channel)
			if tt.want != 16 {
				assert.Contains(t, logs.String(), "settings channel out of range")
			}
		})
	}
}

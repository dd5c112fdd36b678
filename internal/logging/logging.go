package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file written inside the data directory.
const FileName = "ampswitcher.log"

// Setup installs the process-wide slog logger. Lines go to stderr and, when
// dir is not empty, to a rotating log file in dir. The returned closer
// flushes and closes the file.
func Setup(dir string, debug bool) io.Closer {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if dir != "" {
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(dir, FileName),
			MaxSize:    5, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w = io.MultiWriter(os.Stderr, rotator)
		closer = rotator
	}

	slog.SetDefault(New(w, debug))
	return closer
}

// New returns a text logger writing to w.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

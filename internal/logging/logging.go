package logging

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Config controls where log lines go and when the file rolls over.
type Config struct {
	// Level is the lowest level that gets written (debug, info, warn, error).
	Level string
	// FilePath is the path to the log file. Empty means the default path.
	FilePath string
	// MaxSizeMB is the rollover threshold in megabytes (default: 10).
	MaxSizeMB int
	// MaxFiles is how many rolled files to keep (default: 3).
	MaxFiles int
}

// normalized fills zero values with the package defaults.
func (c Config) normalized() Config {
	if c.FilePath == "" {
		c.FilePath = DefaultLogPath()
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = 3
	}
	return c
}

// DefaultConfig returns the standard file logging settings.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		FilePath:  DefaultLogPath(),
		MaxSizeMB: 10,
		MaxFiles:  3,
	}
}

// DebugConfig is DefaultConfig with the level dropped to debug.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// Setup opens the rotating log file and returns a logger bound to it plus
// a cleanup function that flushes and closes the file. Nothing reaches
// stdout or stderr. The logger carries a fresh run_id attribute so one
// invocation's lines can be fished out of the shared file.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	cfg = cfg.normalized()

	sink, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{Level: LevelFromString(cfg.Level)}
	logger := slog.New(slog.NewJSONHandler(sink, opts)).With("run_id", uuid.NewString())

	teardown := func() {
		_ = sink.Sync()
		_ = sink.Close()
	}
	return logger, teardown, nil
}

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// LevelFromString maps a level name onto slog.Level. Unknown names fall
// back to info.
func LevelFromString(level string) slog.Level {
	if lv, ok := levelNames[strings.ToLower(level)]; ok {
		return lv
	}
	return slog.LevelInfo
}

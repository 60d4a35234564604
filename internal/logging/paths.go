package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName  = ".cosim"
	logDirName  = "logs"
	logFileName = "cosim.log"
)

// DefaultLogDir returns ~/.cosim/logs, or a temp-dir equivalent when the
// home directory cannot be resolved.
func DefaultLogDir() string {
	base, err := os.UserHomeDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, appDirName, logDirName)
}

// DefaultLogPath returns the full path of the shared log file.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), logFileName)
}

// EnsureLogDir creates the default log directory if it is missing.
func EnsureLogDir() error {
	return os.MkdirAll(DefaultLogDir(), 0o755)
}

// FindLogFile resolves the log file to view. An explicit path wins when
// given; otherwise the default location is tried.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("log file not found: %s", explicit)
		}
		return explicit, nil
	}

	fallback := DefaultLogPath()
	if _, err := os.Stat(fallback); err != nil {
		return "", fmt.Errorf("no log file found. Run with --debug first.\nExpected at: %s", fallback)
	}
	return fallback, nil
}

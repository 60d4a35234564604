package embed

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockFileName sits inside the data directory; the file itself carries
// no content, only the advisory lock.
const lockFileName = ".download.lock"

// FileLock serializes model downloads across processes. Two concurrent
// `cosim setup` runs would otherwise race Ollama into pulling the same
// model twice. Backed by gofrs/flock, so it behaves the same on Unix
// and Windows.
type FileLock struct {
	path string
	fl   *flock.Flock
	held bool
}

// NewFileLock returns a lock rooted in dir. Nothing is created until
// Lock or TryLock runs.
func NewFileLock(dir string) *FileLock {
	p := filepath.Join(dir, lockFileName)
	return &FileLock{path: p, fl: flock.New(p)}
}

// ensureDir creates the lock's parent directory so the flock call has
// somewhere to put the file.
func (l *FileLock) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	return nil
}

// Lock blocks until the exclusive lock is acquired.
func (l *FileLock) Lock() error {
	if err := l.ensureDir(); err != nil {
		return err
	}
	if err := l.fl.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	l.held = true
	return nil
}

// TryLock attempts the lock without blocking. The bool reports whether
// this process now holds it.
func (l *FileLock) TryLock() (bool, error) {
	if err := l.ensureDir(); err != nil {
		return false, err
	}
	ok, err := l.fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	l.held = ok
	return ok, nil
}

// Unlock releases the lock. Calling it on an unheld lock is a no-op,
// which keeps deferred unlocks safe on every exit path.
func (l *FileLock) Unlock() error {
	if !l.held {
		return nil
	}
	l.held = false
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the lock file location, mainly for messages that tell
// the user which file another process is holding.
func (l *FileLock) Path() string {
	return l.path
}

// IsLocked reports whether this FileLock currently holds the lock.
func (l *FileLock) IsLocked() bool {
	return l.held
}

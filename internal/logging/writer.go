package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotatingWriter is an io.Writer that rolls the target file over once it
// grows past a size limit. Rolled files carry numeric suffixes, so with a
// keep count of 3 the on-disk set is cosim.log plus .1, .2 and .3.
type RotatingWriter struct {
	dest  string
	limit int64
	keep  int

	mu            sync.Mutex
	f             *os.File
	size          int64
	syncEachWrite bool
}

// NewRotatingWriter opens (or creates) the log file at path. maxSizeMB is
// the rollover threshold and maxFiles the number of rolled files to keep.
// Per-write sync starts enabled so `cosim logs -f` sees lines as they land.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &RotatingWriter{
		dest:          path,
		limit:         int64(maxSizeMB) * 1024 * 1024,
		keep:          maxFiles,
		syncEachWrite: true,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// SetImmediateSync toggles the per-write fsync.
func (w *RotatingWriter) SetImmediateSync(enabled bool) {
	w.mu.Lock()
	w.syncEachWrite = enabled
	w.mu.Unlock()
}

// Write appends p, rolling the file over first when it would grow past
// the limit.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size+int64(len(p)) > w.limit {
		if err := w.roll(); err != nil {
			// Keep logging into the oversized file rather than drop lines.
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}

	n, err := w.f.Write(p)
	w.size += int64(n)
	if err == nil && w.syncEachWrite {
		_ = w.f.Sync()
	}
	return n, err
}

// Sync flushes buffered data to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	return w.f.Sync()
}

// Close closes the current file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	return w.f.Close()
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.dest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	w.f = f
	w.size = st.Size()
	return nil
}

// roll shifts the numbered files up by one, dropping the one at the keep
// limit, then moves the live file to .1 and reopens a fresh one.
func (w *RotatingWriter) roll() error {
	if w.f != nil {
		if err := w.f.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		w.f = nil
	}

	for i := w.keep; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", w.dest, i)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if i == w.keep {
			_ = os.Remove(src)
			continue
		}
		_ = os.Rename(src, fmt.Sprintf("%s.%d", w.dest, i+1))
	}

	if _, err := os.Stat(w.dest); err == nil {
		if err := os.Rename(w.dest, w.dest+".1"); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	w.size = 0
	return w.open()
}

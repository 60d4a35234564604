package embed

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLock_LockCreatesFile(t *testing.T) {
	// Given: a lock in an empty directory
	lock := NewFileLock(t.TempDir())

	// When: acquiring and releasing it
	require.NoError(t, lock.Lock())

	// Then: the lock file exists on disk
	_, err := os.Stat(lock.Path())
	assert.NoError(t, err)

	require.NoError(t, lock.Unlock())
}

func TestFileLock_UnlockIsIdempotent(t *testing.T) {
	lock := NewFileLock(t.TempDir())

	// Unlock before any Lock
	assert.NoError(t, lock.Unlock())

	// Lock once, unlock twice
	require.NoError(t, lock.Lock())
	assert.NoError(t, lock.Unlock())
	assert.NoError(t, lock.Unlock())
}

func TestFileLock_TryLockWhenFree(t *testing.T) {
	lock := NewFileLock(t.TempDir())

	ok, err := lock.TryLock()

	require.NoError(t, err)
	assert.True(t, ok, "free lock should be acquirable")
	require.NoError(t, lock.Unlock())
}

func TestFileLock_TryLockWhenHeld(t *testing.T) {
	// Given: another FileLock already holding the same path
	dir := t.TempDir()
	holder := NewFileLock(dir)
	require.NoError(t, holder.Lock())
	defer func() { _ = holder.Unlock() }()

	// When: a second FileLock tries without blocking
	contender := NewFileLock(dir)
	ok, err := contender.TryLock()

	// Then: it reports the lock as taken, without error
	require.NoError(t, err)
	assert.False(t, ok, "held lock must not be acquirable")
	assert.False(t, contender.IsLocked(), "losing TryLock must not mark the lock held")
}

func TestFileLock_PathLayout(t *testing.T) {
	lock := NewFileLock("/data/cosim")

	assert.Equal(t, filepath.Join("/data/cosim", ".download.lock"), lock.Path())
}

func TestFileLock_SerializesGoroutines(t *testing.T) {
	// Given: ten goroutines competing for one lock path
	dir := t.TempDir()

	const workers = 10
	var (
		mu      sync.Mutex
		entered int
		wg      sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			lock := NewFileLock(dir)
			if !assert.NoError(t, lock.Lock()) {
				return
			}
			defer func() { _ = lock.Unlock() }()

			mu.Lock()
			entered++
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)
		}()
	}
	wg.Wait()

	// Then: every worker eventually got through the critical section
	assert.Equal(t, workers, entered)
}

func TestFileLock_CreatesMissingDirectories(t *testing.T) {
	// Given: a lock rooted in a directory that does not exist yet
	nested := filepath.Join(t.TempDir(), "models", "pull")
	lock := NewFileLock(nested)

	// When: locking
	require.NoError(t, lock.Lock())
	defer func() { _ = lock.Unlock() }()

	// Then: the directory chain was created for the lock file
	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileLock_HeldStateTracksLifecycle(t *testing.T) {
	lock := NewFileLock(t.TempDir())

	assert.False(t, lock.IsLocked(), "fresh lock starts unheld")

	require.NoError(t, lock.Lock())
	assert.True(t, lock.IsLocked())

	require.NoError(t, lock.Unlock())
	assert.False(t, lock.IsLocked())
}

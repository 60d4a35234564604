package preflight

import (
	"fmt"
	"syscall"
)

// MinDiskSpaceBytes is the free-space floor for the data directory (100MB).
const MinDiskSpaceBytes = 100 * 1024 * 1024

// freeBytes reports the free disk space of the filesystem holding path.
func freeBytes(path string) (uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// CheckDiskSpace checks free disk space at the given path.
func (c *Checker) CheckDiskSpace(path string) CheckResult {
	result := CheckResult{Name: "disk_space", Required: true}

	free, err := freeBytes(path)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("failed to check disk space: %v", err)
		return result
	}

	result.Status = StatusPass
	if free < MinDiskSpaceBytes {
		result.Status = StatusFail
	}
	result.Message = fmt.Sprintf("%s free (minimum: 100 MB)", formatBytes(free))
	return result
}

// formatBytes renders n with one decimal in the largest binary unit up
// to TB, or as a raw byte count below 1 KB.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d bytes", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit && exp < 3; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

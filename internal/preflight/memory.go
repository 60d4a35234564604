package preflight

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// MinMemoryBytes is how much free memory scoring comfortably needs (1GB).
const MinMemoryBytes = 1 * 1024 * 1024 * 1024

// CheckMemory checks that the system has memory headroom for embedding.
func (c *Checker) CheckMemory() CheckResult {
	result := CheckResult{
		Name:     "memory",
		Required: true,
	}

	available := availableMemory()

	if available < MinMemoryBytes {
		result.Status = StatusFail
	} else {
		result.Status = StatusPass
	}
	result.Message = fmt.Sprintf("%s available (minimum: 1 GB)", formatBytes(available))
	return result
}

// availableMemory reads MemAvailable on Linux. Other platforms get an
// optimistic estimate; a machine that runs the Go binary has memory, and
// the embedding work itself happens inside Ollama.
func availableMemory() uint64 {
	if runtime.GOOS == "linux" {
		if avail, ok := readMemAvailable("/proc/meminfo"); ok {
			return avail
		}
	}
	return 4 * 1024 * 1024 * 1024
}

// readMemAvailable parses the MemAvailable line of a meminfo file.
// The kernel reports the value in kB.
func readMemAvailable(path string) (uint64, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemAvailable:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, false
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, false
		}
		return kb * 1024, true
	}
	return 0, false
}

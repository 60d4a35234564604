package preflight

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStatus_String(t *testing.T) {
	assert.Equal(t, "PASS", StatusPass.String())
	assert.Equal(t, "WARN", StatusWarn.String())
	assert.Equal(t, "FAIL", StatusFail.String())
	assert.Equal(t, "UNKNOWN", CheckStatus(99).String())
	assert.Equal(t, "UNKNOWN", CheckStatus(-1).String())
}

func TestCheckResult_IsCritical(t *testing.T) {
	assert.True(t, CheckResult{Status: StatusFail, Required: true}.IsCritical())
	assert.False(t, CheckResult{Status: StatusPass, Required: true}.IsCritical())
	assert.False(t, CheckResult{Status: StatusWarn, Required: true}.IsCritical())
	assert.False(t, CheckResult{Status: StatusFail, Required: false}.IsCritical())
}

func TestChecker_SummaryStatus(t *testing.T) {
	c := New()

	tests := []struct {
		name    string
		results []CheckResult
		want    string
	}{
		{"all pass", []CheckResult{{Status: StatusPass, Required: true}, {Status: StatusPass}}, "ready"},
		{"warning present", []CheckResult{{Status: StatusPass, Required: true}, {Status: StatusWarn}}, "ready_with_warnings"},
		{"optional failure counts as warning", []CheckResult{{Status: StatusPass, Required: true}, {Status: StatusFail}}, "ready_with_warnings"},
		{"critical failure wins over warnings", []CheckResult{{Status: StatusWarn}, {Status: StatusFail, Required: true}}, "failed"},
		{"no results", nil, "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.SummaryStatus(tt.results))
		})
	}
}

func TestChecker_HasCriticalFailures(t *testing.T) {
	c := New()

	assert.False(t, c.HasCriticalFailures(nil))
	assert.False(t, c.HasCriticalFailures([]CheckResult{
		{Status: StatusPass, Required: true},
		{Status: StatusFail, Required: false},
	}))
	assert.True(t, c.HasCriticalFailures([]CheckResult{
		{Status: StatusFail, Required: true},
	}))
}

func TestChecker_PrintResults(t *testing.T) {
	var buf bytes.Buffer
	c := New(WithOutput(&buf))

	c.PrintResults([]CheckResult{
		{Name: "disk_space", Status: StatusPass, Message: "12.0 GB free", Required: true},
		{Name: "embedder_backend", Status: StatusWarn, Message: "Ollama not reachable"},
		{Name: "memory", Status: StatusFail, Message: "512.0 MB available", Required: true},
	})

	output := buf.String()
	assert.Contains(t, output, "cosim System Check")
	assert.Contains(t, output, "[PASS] disk_space: 12.0 GB free")
	assert.Contains(t, output, "[WARN] embedder_backend: Ollama not reachable")
	assert.Contains(t, output, "[FAIL] memory: 512.0 MB available")
	assert.Contains(t, output, "Status: FAILED")
	assert.Contains(t, output, "1 error(s):")
	assert.Contains(t, output, "  - memory: 512.0 MB available")
	assert.Contains(t, output, "1 warning(s):")
}

func TestChecker_PrintResults_DetailLines(t *testing.T) {
	warn := []CheckResult{
		{Name: "embedder_model", Status: StatusWarn, Message: "model missing", Details: "Run 'cosim setup' to pull it"},
	}

	t.Run("verbose shows details", func(t *testing.T) {
		var buf bytes.Buffer
		New(WithOutput(&buf), WithVerbose(true)).PrintResults(warn)

		assert.Contains(t, buf.String(), "Run 'cosim setup' to pull it")
	})

	t.Run("quiet hides details", func(t *testing.T) {
		var buf bytes.Buffer
		New(WithOutput(&buf)).PrintResults(warn)

		assert.NotContains(t, buf.String(), "Run 'cosim setup' to pull it")
	})
}

func TestCheckWritePermissions_Writable(t *testing.T) {
	result := New().CheckWritePermissions(t.TempDir())

	assert.Equal(t, StatusPass, result.Status)
	assert.True(t, result.Required)
}

func TestCheckWritePermissions_ReadOnly(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not bind as root")
	}

	dir := filepath.Join(t.TempDir(), "readonly")
	require.NoError(t, os.Mkdir(dir, 0o555))

	result := New().CheckWritePermissions(dir)

	assert.Equal(t, StatusFail, result.Status)
	assert.Contains(t, result.Message, "permission denied")
}

func TestCheckWritePermissions_LeavesNoProbeBehind(t *testing.T) {
	dir := t.TempDir()

	New().CheckWritePermissions(dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCheckDiskSpace(t *testing.T) {
	result := New().CheckDiskSpace(t.TempDir())

	assert.Equal(t, "disk_space", result.Name)
	assert.Contains(t, result.Message, "free (minimum: 100 MB)")
}

func TestCheckDiskSpace_BadPath(t *testing.T) {
	result := New().CheckDiskSpace("/no/such/path/anywhere")

	assert.Equal(t, StatusFail, result.Status)
	assert.Contains(t, result.Message, "failed to check disk space")
}

func TestCheckMemory(t *testing.T) {
	result := New().CheckMemory()

	assert.Equal(t, "memory", result.Name)
	assert.True(t, result.Required)
	assert.Contains(t, result.Message, "available (minimum: 1 GB)")
}

func TestReadMemAvailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meminfo")
	content := "MemTotal:       16384256 kB\n" +
		"MemFree:         8192128 kB\n" +
		"MemAvailable:   12288192 kB\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	avail, ok := readMemAvailable(path)

	require.True(t, ok)
	assert.Equal(t, uint64(12288192)*1024, avail)
}

func TestReadMemAvailable_MissingLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meminfo")
	require.NoError(t, os.WriteFile(path, []byte("MemTotal: 1 kB\n"), 0o644))

	_, ok := readMemAvailable(path)

	assert.False(t, ok)
}

func TestReadMemAvailable_NoFile(t *testing.T) {
	_, ok := readMemAvailable("/no/such/meminfo")

	assert.False(t, ok)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0 bytes"},
		{500, "500 bytes"},
		{2048, "2.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
		{2 * 1024 * 1024 * 1024 * 1024, "2.0 TB"},
		{5000 * 1024 * 1024 * 1024 * 1024, "5000.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatBytes(tt.n))
		})
	}
}

func TestRunAll_ReturnsAllChecksInOrder(t *testing.T) {
	t.Setenv("COSIM_OLLAMA_HOST", "")
	var buf bytes.Buffer
	c := New(WithOutput(&buf), WithHost("http://localhost:1"))

	results := c.RunAll(context.Background(), t.TempDir())

	require.Len(t, results, 6)
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	assert.Equal(t, []string{
		"disk_space",
		"memory",
		"write_permissions",
		"embedder_backend",
		"embedder_model",
		"model_disk_space",
	}, names)
}

func TestNew_Options(t *testing.T) {
	var buf bytes.Buffer

	c := New(WithHost("http://example:1234"), WithModel("custom-model"), WithVerbose(true), WithOutput(&buf))

	assert.Equal(t, "http://example:1234", c.host)
	assert.Equal(t, "custom-model", c.model)
	assert.True(t, c.verbose)
}

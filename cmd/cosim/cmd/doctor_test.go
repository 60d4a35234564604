package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metehan777/cosine-similarity-aio/internal/preflight"
)

// runDoctorCmd executes the doctor command against a dead Ollama port so
// the backend probes resolve fast and deterministically.
func runDoctorCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolateEnv(t)
	t.Setenv("COSIM_OLLAMA_HOST", "http://localhost:1")

	cmd := newDoctorCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestDoctorCmd_TextOutput(t *testing.T) {
	// Given: a machine without Ollama running

	// When: running doctor
	out, err := runDoctorCmd(t)

	// Then: the report prints every check; the dead backend is a warning,
	// so any returned error can only be a local critical failure
	if err != nil {
		assert.EqualError(t, err, "system check failed")
	}
	assert.Contains(t, out, "cosim System Check")
	assert.Contains(t, out, "disk_space")
	assert.Contains(t, out, "memory")
	assert.Contains(t, out, "write_permissions")
	assert.Contains(t, out, "[WARN] embedder_backend")
	assert.Contains(t, out, "Status:")
}

func TestDoctorCmd_VerboseShowsDetails(t *testing.T) {
	out, _ := runDoctorCmd(t, "--verbose")

	// The unreachable-backend warning carries a remediation hint that only
	// verbose mode prints
	assert.Contains(t, out, "COSIM_EMBEDDER=static")
}

func TestDoctorCmd_JSONOutput(t *testing.T) {
	// Given: a machine without Ollama running

	// When: running doctor --json
	out, err := runDoctorCmd(t, "--json")

	// Then: the output parses and covers all six checks
	if err != nil {
		assert.EqualError(t, err, "system check failed")
	}

	var report JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &report), "Output should be valid JSON")

	assert.NotEmpty(t, report.Status)
	require.Len(t, report.Checks, 6)
	assert.Equal(t, "disk_space", report.Checks[0].Name)
	assert.Equal(t, "embedder_backend", report.Checks[3].Name)
	assert.Equal(t, "warn", report.Checks[3].Status)
	assert.NotEmpty(t, report.Warnings)
}

func TestStatusToString(t *testing.T) {
	tests := []struct {
		status preflight.CheckStatus
		want   string
	}{
		{preflight.StatusPass, "pass"},
		{preflight.StatusWarn, "warn"},
		{preflight.StatusFail, "fail"},
		{preflight.CheckStatus(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, statusToString(tt.status))
		})
	}
}

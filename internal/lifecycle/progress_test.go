package lifecycle

import (
	"bytes"
	"strings"
	"testing"
)

// ============================================================================
// ProgressBar Tests
// ============================================================================

func TestProgressBar_Update(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(&out, 20)

	bar.Update(50, "testing")
	output := out.String()

	if !strings.Contains(output, "50%") {
		t.Errorf("expected output to contain 50%%, got: %s", output)
	}
	if !strings.Contains(output, "█") {
		t.Errorf("expected output to contain filled bar, got: %s", output)
	}
	if !strings.Contains(output, "░") {
		t.Errorf("expected output to contain unfilled bar, got: %s", output)
	}
}

func TestProgressBar_FullDoesNotOverflow(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(&out, 10)

	bar.Update(150, "overshoot")

	if strings.Contains(out.String(), "░") {
		t.Error("expected a full bar with no unfilled cells")
	}
	if strings.Count(out.String(), "█") != 10 {
		t.Errorf("expected exactly 10 filled cells, got: %s", out.String())
	}
}

func TestProgressBar_DefaultWidth(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(&out, 0)

	bar.Update(100, "done")
	if bar.width != 40 {
		t.Errorf("expected default width 40, got %d", bar.width)
	}
}

func TestProgressBar_Finish(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(&out, 20)

	bar.Update(100, "done")
	bar.Finish()

	if !strings.HasSuffix(out.String(), "\n") {
		t.Error("expected output to end with newline after Finish()")
	}
}

// ============================================================================
// FormatBytes Tests
// ============================================================================

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1572864, "1.5 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatBytes(tt.bytes)
			if result != tt.expected {
				t.Errorf("FormatBytes(%d) = %s, want %s", tt.bytes, result, tt.expected)
			}
		})
	}
}

// ============================================================================
// CreatePullProgressFunc Tests
// ============================================================================

func TestCreatePullProgressFunc(t *testing.T) {
	var out bytes.Buffer
	progressFunc := CreatePullProgressFunc(&out)

	progressFunc(PullProgress{
		Status:    "downloading",
		Total:     1024 * 1024,
		Completed: 512 * 1024,
		Percent:   50,
	})

	output := out.String()
	if !strings.Contains(output, "50%") {
		t.Errorf("expected progress output to contain 50%%, got: %s", output)
	}
	if !strings.Contains(output, "512.0 KB/1.0 MB") {
		t.Errorf("expected byte counts in output, got: %s", output)
	}
}

func TestCreatePullProgressFunc_StatusOnly(t *testing.T) {
	var out bytes.Buffer
	progressFunc := CreatePullProgressFunc(&out)

	progressFunc(PullProgress{
		Status: "pulling manifest",
		Total:  0,
	})

	output := out.String()
	if !strings.Contains(output, "pulling manifest") {
		t.Errorf("expected output to contain status, got: %s", output)
	}
}

func TestCreatePullProgressFunc_RepeatedStatusPrintsOnce(t *testing.T) {
	var out bytes.Buffer
	progressFunc := CreatePullProgressFunc(&out)

	progressFunc(PullProgress{Status: "verifying"})
	progressFunc(PullProgress{Status: "verifying"})

	if strings.Count(out.String(), "verifying") != 1 {
		t.Errorf("expected repeated status to print once, got: %s", out.String())
	}
}

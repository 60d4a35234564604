package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/metehan777/cosine-similarity-aio/internal/lifecycle"
)

// CheckStatus is the outcome of one check.
type CheckStatus int

const (
	// StatusPass means the check succeeded.
	StatusPass CheckStatus = iota
	// StatusWarn flags a problem the tool can work around.
	StatusWarn
	// StatusFail means the check found a blocking problem.
	StatusFail
)

var statusNames = [...]string{"PASS", "WARN", "FAIL"}

// String renders the status as the doctor output tag.
func (s CheckStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "UNKNOWN"
	}
	return statusNames[s]
}

// CheckResult is the outcome of a single check, JSON-ready for
// doctor --json.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical reports whether a required check failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Checker performs the doctor checks.
type Checker struct {
	host    string
	model   string
	verbose bool
	output  io.Writer
}

// Option customizes a Checker.
type Option func(*Checker)

// WithHost points the backend checks at a specific Ollama host.
func WithHost(host string) Option {
	return func(c *Checker) {
		c.host = host
	}
}

// WithModel sets the embedding model the checks look for.
func WithModel(model string) Option {
	return func(c *Checker) {
		c.model = model
	}
}

// WithVerbose enables detail lines in PrintResults.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput redirects PrintResults, mainly for tests.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// New builds a Checker aimed at the default Ollama host and model
// unless options say otherwise.
func New(opts ...Option) *Checker {
	c := &Checker{host: lifecycle.DefaultHost, model: lifecycle.DefaultModel, output: os.Stdout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs every check concurrently and returns the results in a fixed
// order. The local checks are quick; running them alongside the network
// probes keeps doctor at roughly the latency of the slowest probe.
func (c *Checker) RunAll(ctx context.Context, dataDir string) []CheckResult {
	g, ctx := errgroup.WithContext(ctx)

	checks := []func() CheckResult{
		func() CheckResult { return c.CheckDiskSpace(dataDir) },
		func() CheckResult { return c.CheckMemory() },
		func() CheckResult { return c.CheckWritePermissions(dataDir) },
		func() CheckResult { return c.CheckEmbedderBackend(ctx) },
		func() CheckResult { return c.CheckEmbedderModel(ctx) },
		func() CheckResult { return c.CheckModelDiskSpace() },
	}

	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		i, check := i, check
		g.Go(func() error {
			results[i] = check()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// HasCriticalFailures reports whether any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	return slices.ContainsFunc(results, CheckResult.IsCritical)
}

// SummaryStatus reduces the results to "ready", "ready_with_warnings", or
// "failed".
func (c *Checker) SummaryStatus(results []CheckResult) string {
	if c.HasCriticalFailures(results) {
		return "failed"
	}
	for _, r := range results {
		if r.Status == StatusWarn || (r.Status == StatusFail && !r.Required) {
			return "ready_with_warnings"
		}
	}
	return "ready"
}

// PrintResults renders the human-readable doctor report.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintln(c.output, "cosim System Check")
	_, _ = fmt.Fprintln(c.output, "==================")
	_, _ = fmt.Fprintln(c.output)

	for _, r := range results {
		_, _ = fmt.Fprintf(c.output, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(c.output, "      %s\n", r.Details)
		}
	}

	_, _ = fmt.Fprintln(c.output)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(c.SummaryStatus(results)))

	errors, warnings := splitIssues(results)
	c.printIssueBlock("error", errors)
	c.printIssueBlock("warning", warnings)
}

// splitIssues gathers the problem lines for the summary, critical
// failures apart from warnings.
func splitIssues(results []CheckResult) (errors, warnings []string) {
	for _, r := range results {
		switch {
		case r.IsCritical():
			errors = append(errors, r.Name+": "+r.Message)
		case r.Status == StatusWarn:
			warnings = append(warnings, r.Name+": "+r.Message)
		}
	}
	return errors, warnings
}

func (c *Checker) printIssueBlock(kind string, issues []string) {
	if len(issues) == 0 {
		return
	}
	_, _ = fmt.Fprintln(c.output)
	_, _ = fmt.Fprintf(c.output, "%d %s(s):\n", len(issues), kind)
	for _, issue := range issues {
		_, _ = fmt.Fprintf(c.output, "  - %s\n", issue)
	}
}

// CheckWritePermissions checks that the data directory accepts writes.
func (c *Checker) CheckWritePermissions(path string) CheckResult {
	probe, err := os.CreateTemp(path, ".cosim-preflight-*")
	if err != nil {
		return CheckResult{
			Name:     "write_permissions",
			Status:   StatusFail,
			Message:  fmt.Sprintf("permission denied: %v", err),
			Required: true,
		}
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	return CheckResult{
		Name:     "write_permissions",
		Status:   StatusPass,
		Message:  "OK",
		Required: true,
	}
}

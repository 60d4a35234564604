// Package lifecycle manages the Ollama backend behind cosim setup: install
// detection, startup, readiness polling, and model pulling. Scoring runs
// never reach into this package; they only consume a backend that setup has
// already prepared.
package lifecycle

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	// DefaultHost is the default Ollama API endpoint.
	DefaultHost = "http://localhost:11434"

	// DefaultModel is the multilingual embedding model cosim scores with.
	DefaultModel = "paraphrase-multilingual"

	// StartupTimeout is how long to wait for Ollama to come up.
	StartupTimeout = 30 * time.Second

	// ReadyPollInterval is the initial polling interval for WaitForReady.
	ReadyPollInterval = 100 * time.Millisecond

	// MaxReadyPollInterval caps the poll backoff.
	MaxReadyPollInterval = 2 * time.Second

	// PullTimeout bounds a model pull. The multilingual model is around
	// 500 MB, so slow links need headroom.
	PullTimeout = 10 * time.Minute
)

// OllamaManager drives Ollama lifecycle operations against one host.
type OllamaManager struct {
	host   string
	client *http.Client

	// Swappable for tests.
	runCmd  func(name string, args ...string) *exec.Cmd
	findExe func(file string) (string, error)
	statOK  func(path string) bool
}

// OllamaStatus is a snapshot of the backend state.
type OllamaStatus struct {
	Installed     bool
	InstalledPath string
	Running       bool
	Models        []string
	HasModel      bool
	TargetModel   string
}

// PullProgress is one update from a streaming model pull.
type PullProgress struct {
	Status    string
	Digest    string
	Total     int64
	Completed int64
	Percent   float64
}

// EnsureOpts configures EnsureReady.
type EnsureOpts struct {
	// AutoStart launches Ollama when it is installed but not running.
	AutoStart bool
	// AutoPull downloads the target model when it is missing.
	AutoPull bool
	// ProgressFunc receives pull updates. Nil gets a progress bar on Stdout.
	ProgressFunc func(PullProgress)
	// Stdout receives status lines. Nil defaults to os.Stdout.
	Stdout io.Writer
}

// DefaultEnsureOpts enables both automatic steps.
func DefaultEnsureOpts() EnsureOpts {
	return EnsureOpts{
		AutoStart: true,
		AutoPull:  true,
		Stdout:    os.Stdout,
	}
}

// NewOllamaManager creates a manager for the default host.
func NewOllamaManager() *OllamaManager {
	return NewOllamaManagerWithHost(DefaultHost)
}

// NewOllamaManagerWithHost creates a manager for the given host.
// COSIM_OLLAMA_HOST overrides both the argument and the default.
func NewOllamaManagerWithHost(host string) *OllamaManager {
	if env := os.Getenv("COSIM_OLLAMA_HOST"); env != "" {
		host = env
	}
	if host == "" {
		host = DefaultHost
	}

	return &OllamaManager{
		host: host,
		// Health checks only; pulls bring their own client.
		client:  &http.Client{Timeout: 5 * time.Second},
		runCmd:  exec.Command,
		findExe: exec.LookPath,
		statOK:  pathExists,
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Host returns the configured Ollama host.
func (m *OllamaManager) Host() string {
	return m.host
}

// IsRemoteHost reports whether the host points somewhere other than the
// local machine. Start and install checks only make sense locally.
func (m *OllamaManager) IsRemoteHost() bool {
	return !strings.Contains(m.host, "localhost") && !strings.Contains(m.host, "127.0.0.1")
}

// IsInstalled checks for an Ollama installation and returns its path.
func (m *OllamaManager) IsInstalled() (bool, string, error) {
	if path, err := m.findExe("ollama"); err == nil {
		return true, path, nil
	}

	for _, candidate := range installCandidates() {
		if m.statOK(candidate) {
			return true, candidate, nil
		}
	}
	return false, "", nil
}

// installCandidates lists where an install lands without a PATH entry.
func installCandidates() []string {
	home := os.Getenv("HOME")
	switch runtime.GOOS {
	case "darwin":
		// The app bundle registers no CLI until first launch.
		return []string{
			"/Applications/Ollama.app",
			filepath.Join(home, "Applications", "Ollama.app"),
		}
	case "linux":
		return []string{
			"/usr/local/bin/ollama",
			"/usr/bin/ollama",
			filepath.Join(home, ".local", "bin", "ollama"),
		}
	default:
		return nil
	}
}

// newAPIRequest builds a request against the manager's host.
func (m *OllamaManager) newAPIRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, m.host+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return req, nil
}

// IsRunning checks whether the Ollama API answers. Connection failures
// mean not running rather than an error.
func (m *OllamaManager) IsRunning() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := m.newAPIRequest(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return false, err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		// A refused connection just means the server is not up.
		return false, nil
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// getJSON performs req and decodes a 200 response body into dst.
func (m *OllamaManager) getJSON(req *http.Request, dst any) error {
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ListModels returns the model names the backend reports.
func (m *OllamaManager) ListModels(ctx context.Context) ([]string, error) {
	req, err := m.newAPIRequest(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, err
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := m.getJSON(req, &tags); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(tags.Models))
	for _, entry := range tags.Models {
		names = append(names, entry.Name)
	}
	return names, nil
}

// baseName lowercases a model reference and strips its tag.
func baseName(model string) string {
	lower := strings.ToLower(model)
	if i := strings.IndexByte(lower, ':'); i >= 0 {
		return lower[:i]
	}
	return lower
}

// HasModel checks whether a model is present, accepting either an exact
// name or a tagless match.
func (m *OllamaManager) HasModel(ctx context.Context, model string) (bool, error) {
	models, err := m.ListModels(ctx)
	if err != nil {
		return false, err
	}

	want := strings.ToLower(model)
	for _, have := range models {
		if strings.ToLower(have) == want || baseName(have) == baseName(model) {
			return true, nil
		}
	}
	return false, nil
}

// Status gathers the full backend state for the given target model.
func (m *OllamaManager) Status(ctx context.Context, targetModel string) (*OllamaStatus, error) {
	status := &OllamaStatus{TargetModel: targetModel}

	var err error
	status.Installed, status.InstalledPath, err = m.IsInstalled()
	if err != nil {
		return nil, fmt.Errorf("failed to check installation: %w", err)
	}

	status.Running, err = m.IsRunning()
	if err != nil {
		return nil, fmt.Errorf("failed to check if running: %w", err)
	}
	if !status.Running {
		return status, nil
	}

	status.Models, err = m.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	status.HasModel, err = m.HasModel(ctx, targetModel)
	if err != nil {
		return nil, fmt.Errorf("failed to check model: %w", err)
	}
	return status, nil
}

// Start launches Ollama in the platform's preferred way.
func (m *OllamaManager) Start() error {
	installed, path, err := m.IsInstalled()
	switch {
	case err != nil:
		return fmt.Errorf("failed to check installation: %w", err)
	case !installed:
		return &NotInstalledError{}
	}

	if running, _ := m.IsRunning(); running {
		return nil
	}

	slog.Debug("ollama_start_attempt", "path", path, "goos", runtime.GOOS)

	switch runtime.GOOS {
	case "darwin":
		return m.launchDarwin(path)
	case "linux":
		return m.launchLinux(path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// launchDarwin prefers the app bundle, which owns the daemon on macOS.
func (m *OllamaManager) launchDarwin(path string) error {
	if strings.HasSuffix(path, ".app") || m.statOK("/Applications/Ollama.app") {
		if err := m.runCmd("open", "-a", "Ollama").Start(); err != nil {
			return fmt.Errorf("failed to open Ollama.app: %w", err)
		}
		return nil
	}
	return m.serveDetached(path)
}

// launchLinux lets an active systemd unit keep owning the process and
// falls back to a plain serve otherwise.
func (m *OllamaManager) launchLinux(path string) error {
	if err := m.runCmd("systemctl", "is-active", "--quiet", "ollama").Run(); err != nil {
		return m.serveDetached(path)
	}
	if err := m.runCmd("systemctl", "start", "ollama").Run(); err != nil {
		if err := m.runCmd("systemctl", "--user", "start", "ollama").Run(); err != nil {
			return m.serveDetached(path)
		}
	}
	return nil
}

// serveDetached runs "ollama serve" in the background.
func (m *OllamaManager) serveDetached(path string) error {
	cmd := m.runCmd(path, "serve")
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ollama serve: %w", err)
	}

	// Reap in the background so the child never zombies.
	go func() { _ = cmd.Wait() }()
	return nil
}

// WaitForReady polls the API until it answers or the timeout passes.
func (m *OllamaManager) WaitForReady(ctx context.Context, timeout time.Duration) error {
	if timeout == 0 {
		timeout = StartupTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	interval := ReadyPollInterval
	for {
		if running, _ := m.IsRunning(); running {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for Ollama to start: %w", ctx.Err())
		case <-time.After(interval):
			interval = min(interval*2, MaxReadyPollInterval)
		}
	}
}

// pullRequest is the /api/pull request body.
type pullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// pullEvent is one line of the streaming pull response.
type pullEvent struct {
	Status    string `json:"status"`
	Digest    string `json:"digest"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
}

// PullModel downloads a model, streaming progress to progressFunc. A
// model that is already present is a no-op.
func (m *OllamaManager) PullModel(ctx context.Context, model string, progressFunc func(PullProgress)) error {
	present, err := m.HasModel(ctx, model)
	if err != nil {
		return fmt.Errorf("failed to check model: %w", err)
	}
	if present {
		return nil
	}

	slog.Debug("model_pull_started", "model", model, "host", m.host)

	body, err := json.Marshal(pullRequest{Name: model, Stream: true})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := m.newAPIRequest(ctx, http.MethodPost, "/api/pull", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	// The health-check client's timeout would cut the stream short.
	streamClient := &http.Client{}
	resp, err := streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to start pull: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pull failed with status %d: %s", resp.StatusCode, string(msg))
	}

	if err := streamPull(ctx, resp.Body, progressFunc); err != nil {
		return err
	}

	slog.Debug("model_pull_finished", "model", model)
	return nil
}

// streamPull decodes newline-delimited progress events and forwards them.
func streamPull(ctx context.Context, body io.Reader, progressFunc func(PullProgress)) error {
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		var event pullEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue // tolerate malformed lines
		}
		if progressFunc == nil {
			continue
		}

		update := PullProgress{
			Status:    event.Status,
			Digest:    event.Digest,
			Total:     event.Total,
			Completed: event.Completed,
		}
		if event.Total > 0 {
			update.Percent = float64(event.Completed) / float64(event.Total) * 100
		}
		progressFunc(update)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading pull response: %w", err)
	}
	return nil
}

// EnsureReady takes the backend from whatever state it is in to running
// with the target model present, within what opts allows.
func (m *OllamaManager) EnsureReady(ctx context.Context, model string, opts EnsureOpts) error {
	if model == "" {
		model = DefaultModel
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	installed, _, err := m.IsInstalled()
	switch {
	case err != nil:
		return fmt.Errorf("failed to check installation: %w", err)
	case !installed:
		return &NotInstalledError{}
	}

	if err := m.ensureRunning(ctx, opts); err != nil {
		return err
	}
	return m.ensureModel(ctx, model, opts)
}

// ensureRunning starts the backend when allowed and waits for the API.
func (m *OllamaManager) ensureRunning(ctx context.Context, opts EnsureOpts) error {
	running, err := m.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check if running: %w", err)
	}
	if running {
		return nil
	}
	if !opts.AutoStart {
		return &NotRunningError{}
	}

	fmt.Fprintln(opts.Stdout, "Ollama is installed but not running. Starting...")
	if err := m.Start(); err != nil {
		return fmt.Errorf("failed to start Ollama: %w", err)
	}

	fmt.Fprintln(opts.Stdout, "Waiting for Ollama to be ready...")
	if err := m.WaitForReady(ctx, StartupTimeout); err != nil {
		return fmt.Errorf("ollama failed to start: %w", err)
	}
	fmt.Fprintln(opts.Stdout, "Ollama started successfully.")
	return nil
}

// ensureModel pulls the target model when allowed.
func (m *OllamaManager) ensureModel(ctx context.Context, model string, opts EnsureOpts) error {
	present, err := m.HasModel(ctx, model)
	if err != nil {
		return fmt.Errorf("failed to check model: %w", err)
	}
	if present {
		return nil
	}
	if !opts.AutoPull {
		return &ModelNotFoundError{Model: model}
	}

	fmt.Fprintf(opts.Stdout, "Pulling embedding model %s...\n", model)

	progressFunc := opts.ProgressFunc
	if progressFunc == nil {
		progressFunc = CreatePullProgressFunc(opts.Stdout)
	}
	if err := m.PullModel(ctx, model, progressFunc); err != nil {
		return fmt.Errorf("failed to pull model: %w", err)
	}

	fmt.Fprintln(opts.Stdout)
	fmt.Fprintf(opts.Stdout, "Model %s ready.\n", model)
	return nil
}

// NotInstalledError indicates Ollama is not installed.
type NotInstalledError struct{}

func (e *NotInstalledError) Error() string {
	return "ollama is not installed"
}

// NotRunningError indicates Ollama is installed but not running.
type NotRunningError struct{}

func (e *NotRunningError) Error() string {
	return "ollama is not running"
}

// ModelNotFoundError indicates the target model is not available.
type ModelNotFoundError struct {
	Model string
}

func (e *ModelNotFoundError) Error() string {
	return "model " + e.Model + " not found"
}

// InstallInstructions returns platform-specific install guidance.
func InstallInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return `Ollama is required for similarity scoring.

Install options:
  1. Download from: https://ollama.com/download
  2. Or via Homebrew: brew install ollama

After installation, run: cosim setup`
	case "linux":
		return `Ollama is required for similarity scoring.

Install:
  curl -fsSL https://ollama.com/install.sh | sh

After installation, run: cosim setup`
	default:
		return `Ollama is required for similarity scoring.

Download from: https://ollama.com/download

After installation, run: cosim setup`
	}
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/metehan777/cosine-similarity-aio/internal/config"
	"github.com/metehan777/cosine-similarity-aio/internal/embed"
	"github.com/metehan777/cosine-similarity-aio/internal/lifecycle"
	"github.com/metehan777/cosine-similarity-aio/internal/output"
)

func newSetupCmd() *cobra.Command {
	var (
		check   bool
		auto    bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Set up the cosim embedding backend",
		Long: `Set up cosim by checking and configuring the embedding backend.

This command will:
1. Check if Ollama is installed and running
2. Start Ollama if installed but not running
3. Pull the embedding model if needed
4. Validate the setup is working

Use --auto for non-interactive mode (e.g., provisioning scripts).
Scoring without Ollama is possible with COSIM_EMBEDDER=static.`,
		Example: `  # Interactive setup (starts Ollama, pulls model if needed)
  cosim setup

  # Check status only
  cosim setup --check

  # Non-interactive setup (for scripts)
  cosim setup --auto`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSetup(ctx, cmd, check, auto, verbose)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Only check status, don't start or pull")
	cmd.Flags().BoolVar(&auto, "auto", false, "Non-interactive mode (auto-start, auto-pull)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	return cmd
}

func runSetup(ctx context.Context, cmd *cobra.Command, checkOnly, auto, verbose bool) error {
	out := output.New(cmd.OutOrStdout())

	out.Status("🔧", "cosim Setup")
	out.Newline()

	cfg, err := config.Load(configRoot())
	if err != nil {
		return err
	}
	manager := lifecycle.NewOllamaManagerWithHost(cfg.Embedder.OllamaHost)

	out.Status("🔍", "Checking Ollama status...")
	status, err := manager.Status(ctx, lifecycle.DefaultModel)
	if err != nil && verbose {
		out.Warningf("Status check warning: %v", err)
	}

	out.Newline()
	printEmbedderStatus(out, status)
	out.Newline()

	// Check-only mode
	if checkOnly {
		if status != nil && status.Running && status.HasModel {
			out.Success("Embedder is ready!")
		} else {
			out.Warning("Embedder not fully configured")
			out.Status("💡", "Run 'cosim setup' to configure")
		}
		return nil
	}

	// Not installed and not answering: nothing to start or pull. A server
	// that responds without a local binary (containerized Ollama) is fine.
	if status != nil && !status.Installed && !status.Running && !manager.IsRemoteHost() {
		return setupNotInstalled(cmd, out, auto)
	}

	if auto {
		return runSetupAuto(ctx, cmd, out, manager, cfg)
	}

	// Installed but not running - start it
	if status != nil && !status.Running {
		if manager.IsRemoteHost() {
			out.Warningf("Ollama is not reachable at %s", manager.Host())
			out.Status("💡", "A remote Ollama must be started on its own machine")
			return fmt.Errorf("ollama not reachable at %s", manager.Host())
		}

		out.Status("🔄", "Starting Ollama...")
		if err := manager.Start(); err != nil {
			out.Warningf("Failed to start Ollama: %v", err)
			return err
		}

		out.Status("⏳", "Waiting for Ollama to be ready...")
		if err := manager.WaitForReady(ctx, lifecycle.StartupTimeout); err != nil {
			out.Warningf("Ollama failed to start: %v", err)
			return err
		}

		out.Success("Ollama started")
		out.Newline()

		status, _ = manager.Status(ctx, lifecycle.DefaultModel)
	}

	// Running but model missing - pull it
	if status != nil && status.Running && !status.HasModel {
		if lifecycle.IsTTY() {
			pull, err := lifecycle.PromptModelNotFound(cmd.OutOrStdout(), cmd.InOrStdin(), lifecycle.DefaultModel)
			if err != nil || !pull {
				out.Plain("Setup cancelled.")
				return nil
			}
		}

		if err := pullModel(ctx, cmd, out, manager, cfg); err != nil {
			return err
		}
	}

	return verifySetup(ctx, out, cfg)
}

// runSetupAuto maps --auto onto the manager's non-interactive EnsureReady
// flow: start if needed, pull if needed, streamed progress. Re-running it
// after a transient pull failure is safe, so the whole flow sits inside
// the download retry.
func runSetupAuto(ctx context.Context, cmd *cobra.Command, out *output.Writer, manager *lifecycle.OllamaManager, cfg *config.Config) error {
	lock := acquireModelLock(out)
	if lock != nil {
		defer func() { _ = lock.Unlock() }()
	}

	pullCtx, cancel := context.WithTimeout(ctx, cfg.Embedder.ModelDownloadTimeout)
	defer cancel()

	err := embed.DownloadWithRetry(pullCtx, embed.DefaultRetryConfig(), func() error {
		return manager.EnsureReady(pullCtx, lifecycle.DefaultModel, lifecycle.EnsureOpts{
			AutoStart: !manager.IsRemoteHost(),
			AutoPull:  true,
			Stdout:    cmd.OutOrStdout(),
		})
	})
	if err != nil {
		out.Warningf("Setup failed: %v", err)
		return err
	}

	return verifySetup(ctx, out, cfg)
}

// setupNotInstalled handles the no-Ollama case: instructions in auto mode,
// a choice menu on a terminal.
func setupNotInstalled(cmd *cobra.Command, out *output.Writer, auto bool) error {
	out.Warning("Ollama is not installed")
	out.Newline()

	if auto || !lifecycle.IsTTY() {
		out.Status("", lifecycle.InstallInstructions())
		return fmt.Errorf("ollama not installed (auto mode cannot install)")
	}

	choice, err := lifecycle.PromptNoEmbedder(cmd.OutOrStdout(), cmd.InOrStdin())
	if err != nil {
		out.Plain("Setup cancelled.")
		return nil
	}

	switch choice {
	case lifecycle.ChoiceShowInstall:
		lifecycle.ShowInstallInstructions(cmd.OutOrStdout())
		out.Newline()
		out.Status("💡", "After installing, run 'cosim setup' again")
	case lifecycle.ChoiceStaticMode:
		out.Success("Static embeddings selected")
		out.Status("", "  Score offline with: COSIM_EMBEDDER=static cosim ...")
		out.Status("", "  Or set 'embedder.provider: static' in ~/.config/cosim/config.yaml")
	default:
		out.Plain("Setup cancelled.")
	}
	return nil
}

// pullModel downloads the embedding model with progress, a cross-process
// lock, and retry with backoff.
func pullModel(ctx context.Context, cmd *cobra.Command, out *output.Writer, manager *lifecycle.OllamaManager, cfg *config.Config) error {
	out.Statusf("📥", "Pulling model %s...", lifecycle.DefaultModel)
	out.Newline()

	lock := acquireModelLock(out)
	if lock != nil {
		defer func() { _ = lock.Unlock() }()
	}

	pullCtx, cancel := context.WithTimeout(ctx, cfg.Embedder.ModelDownloadTimeout)
	defer cancel()

	progressFunc := lifecycle.CreatePullProgressFunc(cmd.OutOrStdout())
	err := embed.DownloadWithRetry(pullCtx, embed.DefaultRetryConfig(), func() error {
		return manager.PullModel(pullCtx, lifecycle.DefaultModel, progressFunc)
	})
	if err != nil {
		out.Newline()
		out.Warningf("Failed to pull model: %v", err)
		out.Statusf("💡", "Try manually: ollama pull %s", lifecycle.DefaultModel)
		return err
	}

	out.Newline()
	out.Successf("Model %s installed", lifecycle.DefaultModel)
	out.Newline()
	return nil
}

// acquireModelLock serializes model pulls across cosim processes. Lock
// failures are logged and ignored; a racing pull is wasteful, not unsafe.
func acquireModelLock(out *output.Writer) *embed.FileLock {
	lock := embed.NewFileLock(cosimDataDir())

	acquired, err := lock.TryLock()
	if err != nil {
		slog.Warn("model_pull_lock_failed", "error", err)
		return nil
	}
	if acquired {
		return lock
	}

	out.Status("⏳", "Another cosim process is downloading the model, waiting...")
	if err := lock.Lock(); err != nil {
		slog.Warn("model_pull_lock_failed", "error", err)
		return nil
	}
	return lock
}

// verifySetup proves the backend answers by constructing the same embedder
// the scoring path uses and probing it.
func verifySetup(ctx context.Context, out *output.Writer, cfg *config.Config) error {
	out.Status("🔍", "Verifying setup...")

	embed.SetOllamaOverrides(embed.OllamaOverrides{
		Host:    cfg.Embedder.OllamaHost,
		Timeout: time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
	})

	embedder, err := embed.NewEmbedder(ctx, embed.ProviderOllama)
	if err != nil {
		out.Warningf("Embedder verification failed: %v", err)
		return err
	}
	defer func() { _ = embedder.Close() }()

	info := embed.GetInfo(ctx, embedder)
	if !info.Available {
		out.Warning("Embedder is not responding")
		out.Status("💡", "Check the Ollama server and run 'cosim doctor'")
		return fmt.Errorf("embedder not available")
	}

	out.Newline()
	out.Success("Setup complete!")
	out.Newline()
	out.Status("📊", "Configuration:")
	out.Status("", fmt.Sprintf("  Provider:   %s", info.Provider))
	out.Status("", fmt.Sprintf("  Model:      %s", info.Model))
	out.Status("", fmt.Sprintf("  Dimensions: %d", info.Dimensions))
	out.Newline()
	out.Status("🚀", "Ready! Try: cosim --query \"hello\" --text \"world\"")

	return nil
}

// printEmbedderStatus renders the install/running/model summary block.
func printEmbedderStatus(out *output.Writer, status *lifecycle.OllamaStatus) {
	out.Status("📊", "Embedder Status:")
	if status == nil {
		out.Status("", "  Unable to determine status")
		return
	}

	installedStr := "❌ Not installed"
	if status.Installed {
		installedStr = fmt.Sprintf("✅ Installed (%s)", status.InstalledPath)
	}
	out.Status("", fmt.Sprintf("  Ollama:     %s", installedStr))

	runningStr := "❌ Not running"
	if status.Running {
		runningStr = "✅ Running"
	}
	out.Status("", fmt.Sprintf("  Status:     %s", runningStr))

	modelStr := fmt.Sprintf("❌ Not installed (%s)", lifecycle.DefaultModel)
	if status.HasModel {
		modelStr = fmt.Sprintf("✅ Available (%s)", lifecycle.DefaultModel)
	}
	out.Status("", fmt.Sprintf("  Model:      %s", modelStr))
}

// cosimDataDir returns ~/.cosim, the directory for run artifacts like the
// download lock and logs.
func cosimDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".cosim")
	}
	return filepath.Join(home, ".cosim")
}

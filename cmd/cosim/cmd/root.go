// Package cmd provides the CLI commands for cosim.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/metehan777/cosine-similarity-aio/internal/config"
	"github.com/metehan777/cosine-similarity-aio/internal/embed"
	cosimerrors "github.com/metehan777/cosine-similarity-aio/internal/errors"
	"github.com/metehan777/cosine-similarity-aio/internal/input"
	"github.com/metehan777/cosine-similarity-aio/internal/logging"
	"github.com/metehan777/cosine-similarity-aio/internal/output"
	"github.com/metehan777/cosine-similarity-aio/internal/score"
	"github.com/metehan777/cosine-similarity-aio/pkg/version"
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// scoreOptions holds the root command's flag values.
type scoreOptions struct {
	query      string
	textFile   string
	text       string
	selectFile bool
}

// NewRootCmd creates the root command for the cosim CLI.
func NewRootCmd() *cobra.Command {
	var opts scoreOptions

	cmd := &cobra.Command{
		Use:   "cosim",
		Short: "Score semantic similarity between a query and a text",
		Long: `cosim embeds a query and a comparison text with a multilingual model
and prints their cosine similarity with an interpretation.

The comparison text comes from exactly one source per run: --text_file,
--text, or an interactive file picker with a manual-paste fallback. With
no flags at all, cosim prompts for the query and opens the picker.

Scoring needs a local Ollama server with the embedding model pulled; run
'cosim setup' once to get there, or set COSIM_EMBEDDER=static to score
offline with reduced quality.`,
		Example: `  # Inline text
  cosim --query "machine learning" --text "deep neural networks"

  # Text from a file
  cosim --query "machine learning" --text_file notes.txt

  # Pick the file interactively
  cosim --query "machine learning" --select_file`,
		Version: version.Version,
		Args:    cobra.NoArgs,
		// Diagnostics are printed by main through the coded-error
		// formatter so every message lands on stdout in the documented
		// wording. Cobra stays quiet.
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := runScore(cmd, opts); err != nil {
				attrs := make([]any, 0, 8)
				for k, v := range cosimerrors.FormatForLog(err) {
					attrs = append(attrs, k, v)
				}
				slog.Error("run_failed", attrs...)
				return err
			}
			return nil
		},
	}

	cmd.SetVersionTemplate("cosim version {{.Version}}\n")

	// Underscore names are canonical; dashed spellings normalize to them,
	// so --text-file and --text_file are the same flag.
	cmd.SetGlobalNormalizationFunc(normalizeFlagName)

	cmd.Flags().StringVar(&opts.query, "query", "", "Target query to compare against")
	cmd.Flags().StringVar(&opts.textFile, "text_file", "", "Path to a file containing the comparison text")
	cmd.Flags().StringVar(&opts.text, "text", "", "Comparison text given inline")
	cmd.Flags().BoolVar(&opts.selectFile, "select_file", false, "Pick the comparison text file interactively")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.cosim/logs/")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newSetupCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())

	return cmd
}

// normalizeFlagName maps dashed flag spellings onto the canonical
// underscore names.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "-", "_"))
}

// startLogging wires the file logger before any command runs. Logs never
// touch stdout or stderr, so an unwritable log directory degrades to a
// discard logger unless --debug asked for logging explicitly.
func startLogging(_ *cobra.Command, _ []string) error {
	lcfg := logging.DefaultConfig()
	if cfg, err := config.Load(configRoot()); err == nil {
		lcfg.Level = cfg.Logging.Level
		if cfg.Logging.File != "" {
			lcfg.FilePath = cfg.Logging.File
		}
		lcfg.MaxSizeMB = cfg.Logging.MaxSizeMB
		lcfg.MaxFiles = cfg.Logging.MaxFiles
	}
	if debugMode {
		lcfg.Level = "debug"
	}

	logger, cleanup, err := logging.Setup(lcfg)
	if err != nil {
		if debugMode {
			return fmt.Errorf("failed to set up debug logging: %w", err)
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nil
	}

	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Debug("logging_started",
		slog.String("log_file", lcfg.FilePath),
		slog.String("version", version.Version))
	return nil
}

// stopLogging flushes and closes the log file.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		slog.Debug("logging_stopped")
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// runScore runs the scoring pipeline: resolve inputs, embed both strings,
// print the score and its interpretation.
func runScore(cmd *cobra.Command, opts scoreOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configRoot())
	if err != nil {
		return err
	}

	embed.SetOllamaOverrides(embed.OllamaOverrides{
		Host:    cfg.Embedder.OllamaHost,
		Timeout: time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
	})

	out := output.New(cmd.OutOrStdout())
	prompter := input.NewPrompter(cmd.InOrStdin(), out)

	// The terminal picker only makes sense on a real terminal; without one
	// it stays nil and the picker stage reads as cancelled.
	var picker input.FilePicker
	if prompter.Interactive() {
		picker = input.NewTUIFilePicker(input.PickerConfig{
			StartDir:     cfg.Picker.StartDir,
			AllowedTypes: cfg.Picker.AllowedTypes,
			ShowHidden:   cfg.Picker.ShowHidden,
			Height:       cfg.Picker.Height,
		})
	}
	resolver := input.NewResolver(out, prompter, picker)

	req := input.Request{
		Query:       opts.query,
		TextFile:    opts.textFile,
		TextFileSet: cmd.Flags().Changed("text_file"),
		Text:        opts.text,
		TextSet:     cmd.Flags().Changed("text"),
		SelectFile:  opts.selectFile,
	}

	query, err := resolver.ResolveQuery(req)
	if err != nil {
		return err
	}

	text, err := resolver.ResolveText(ctx, req)
	if err != nil {
		if errors.Is(err, input.ErrDeclined) {
			// Declining the manual-entry offer ends the run cleanly.
			slog.Info("manual_entry_declined")
			return nil
		}
		return err
	}

	out.Plain("Calculating similarity (this might take a moment)...")

	provider := embed.ParseProvider(cfg.Embedder.Provider)
	scorer := score.NewScorer(func(ctx context.Context) (embed.Embedder, error) {
		return embed.NewEmbedder(ctx, provider)
	}, out)

	similarity := scorer.Score(ctx, query, text)
	scorer.Present(similarity)

	slog.Info("similarity_scored",
		slog.Float64("score", similarity),
		slog.Int("query_len", len(query)),
		slog.Int("text_len", len(text)))
	return nil
}

// configRoot returns the directory the layered config loads from.
func configRoot() string {
	root, err := config.FindProjectRoot(".")
	if err != nil {
		root, _ = os.Getwd()
	}
	return root
}

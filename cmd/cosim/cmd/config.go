package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/metehan777/cosine-similarity-aio/configs"
	"github.com/metehan777/cosine-similarity-aio/internal/config"
	"github.com/metehan777/cosine-similarity-aio/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage user configuration",
		Long: `Manage the user/global configuration file.

User configuration contains machine-specific settings that apply wherever
cosim runs on this machine, such as:
  - Ollama host and embedding timeout
  - Embedding provider (ollama or static)
  - Log level and rotation

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/cosim/config.yaml)
  3. Project config (.cosim.yaml)
  4. Environment variables (COSIM_*)`,
		Example: `  # Create user config from template
  cosim config init

  # Show effective configuration (merged from all sources)
  cosim config show

  # Print user config file path
  cosim config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force   bool
		project bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create configuration file from template",
		Long: `Create a configuration file from a template.

By default, creates the user/global configuration at
~/.config/cosim/config.yaml (or $XDG_CONFIG_HOME/cosim/config.yaml if
XDG_CONFIG_HOME is set).

With --project, creates a .cosim.yaml in the current directory instead.
Project configuration overrides user configuration for texts compared
in that directory tree.`,
		Example: `  # Create user config
  cosim config init

  # Upgrade an existing user config with new defaults
  cosim config init --force

  # Create .cosim.yaml in the current directory
  cosim config init --project`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if project {
				return runProjectConfigInit(cmd, force)
			}
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Upgrade existing configuration in place")
	cmd.Flags().BoolVar(&project, "project", false, "Create project config (.cosim.yaml) in the current directory")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the effective configuration after merging all sources.

By default, shows the merged configuration from:
  1. Hardcoded defaults
  2. User config (~/.config/cosim/config.yaml)
  3. Project config (.cosim.yaml)
  4. Environment variables`,
		Example: `  # Show merged configuration
  cosim config show

  # Show as JSON
  cosim config show --json

  # Show only user config
  cosim config show --source user`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		Long:  `Print the path to the user configuration file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return nil
		},
	}
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())

	configPath := config.GetUserConfigPath()
	configDir := config.GetUserConfigDir()

	if config.UserConfigExists() {
		if !force {
			out.Warning("User configuration already exists")
			out.Statusf("📁", "Location: %s", configPath)
			out.Newline()
			out.Status("💡", "Use --force to upgrade with new defaults (preserves your settings)")
			return nil
		}

		// Force mode: backup, merge new defaults, write
		return runConfigUpgrade(out, configPath)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}

	if err := os.WriteFile(configPath, []byte(configs.UserConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created user configuration")
	out.Statusf("📁", "Location: %s", configPath)
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Edit the file to customize settings")
	out.Status("", "  2. Set 'embedder.provider: static' to score offline")
	out.Status("", "  3. Run 'cosim config show' to verify")

	return nil
}

// runProjectConfigInit writes .cosim.yaml into the working directory.
func runProjectConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}
	yamlPath := filepath.Join(wd, ".cosim.yaml")

	if !force {
		// Don't overwrite user customizations.
		if _, err := os.Stat(yamlPath); err == nil {
			out.Warning("Project configuration already exists")
			out.Statusf("📁", "Location: %s", yamlPath)
			out.Status("💡", "Use --force to replace it with the template")
			return nil
		}

		// Both extensions are valid, user preference.
		ymlPath := filepath.Join(wd, ".cosim.yml")
		if _, err := os.Stat(ymlPath); err == nil {
			out.Status("ℹ️ ", "Existing .cosim.yml found, skipping template")
			return nil
		}
	}

	if err := os.WriteFile(yamlPath, []byte(configs.ProjectConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write .cosim.yaml: %w", err)
	}

	out.Success("Created project configuration")
	out.Statusf("📁", "Location: %s", yamlPath)
	out.Newline()
	out.Status("💡", "Settings here override the user config for this directory tree")

	return nil
}

// runConfigUpgrade performs backup + merge for an existing config.
func runConfigUpgrade(out *output.Writer, configPath string) error {
	backupPath, err := config.BackupUserConfig()
	if err != nil {
		return fmt.Errorf("failed to backup config: %w", err)
	}

	existingCfg, err := config.LoadUserConfig()
	if err != nil {
		return fmt.Errorf("failed to load existing config: %w", err)
	}
	if existingCfg == nil {
		return fmt.Errorf("config file disappeared during upgrade")
	}

	newFields := existingCfg.MergeNewDefaults()

	if err := existingCfg.WriteYAML(configPath); err != nil {
		return fmt.Errorf("failed to write upgraded config: %w", err)
	}

	out.Success("Configuration upgraded")
	out.Statusf("📁", "Location: %s", configPath)
	out.Statusf("💾", "Backup: %s", backupPath)
	out.Newline()

	if len(newFields) > 0 {
		out.Status("✨", "New options added with defaults:")
		for _, field := range newFields {
			out.Statusf("", "  - %s", field)
		}
	} else {
		out.Status("✓", "Your configuration is already up to date")
	}

	out.Newline()
	out.Status("💡", "Your existing settings have been preserved")

	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool, source string) error {
	out := output.New(cmd.OutOrStdout())

	var cfg *config.Config
	var sourceDesc string

	switch source {
	case "merged":
		cfg2, err := config.Load(configRoot())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = cfg2
		sourceDesc = "merged (defaults + user + project + env)"

	case "user":
		configPath := config.GetUserConfigPath()
		if !config.UserConfigExists() {
			out.Warning("No user configuration file found")
			out.Statusf("📁", "Expected at: %s", configPath)
			out.Status("💡", "Run 'cosim config init' to create one")
			return nil
		}

		cfg2, err := readConfigFile(configPath)
		if err != nil {
			return err
		}
		cfg = cfg2
		sourceDesc = fmt.Sprintf("user (%s)", configPath)

	case "project":
		root := configRoot()

		yamlPath := filepath.Join(root, ".cosim.yaml")
		ymlPath := filepath.Join(root, ".cosim.yml")

		var configPath string
		if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else if _, err := os.Stat(ymlPath); err == nil {
			configPath = ymlPath
		} else {
			out.Warning("No project configuration file found")
			out.Statusf("📁", "Expected at: %s", yamlPath)
			return nil
		}

		cfg2, err := readConfigFile(configPath)
		if err != nil {
			return err
		}
		cfg = cfg2
		sourceDesc = fmt.Sprintf("project (%s)", configPath)

	case "defaults":
		cfg = config.NewConfig()
		sourceDesc = "defaults (hardcoded)"

	default:
		return fmt.Errorf("invalid source: %s (use: merged, user, project, defaults)", source)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out.Statusf("📋", "Configuration source: %s", sourceDesc)
	out.Newline()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	return nil
}

// readConfigFile parses a single config file without the layered merge.
func readConfigFile(path string) (*config.Config, error) {
	cfg := config.NewConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

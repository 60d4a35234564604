package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete cosim configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	Embedder EmbedderConfig `yaml:"embedder" json:"embedder"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Picker   PickerConfig   `yaml:"picker" json:"picker"`
}

// EmbedderConfig configures the embedding backend.
// The model itself is fixed; only the backend and its endpoint are tunable:
//  1. User config (~/.config/cosim/config.yaml) - personal defaults
//  2. Project config (.cosim.yaml) - per-directory tuning
//  3. Env vars (COSIM_EMBEDDER, COSIM_OLLAMA_HOST) - highest priority
type EmbedderConfig struct {
	// Provider selects the embedding backend.
	// Options: "ollama" (default), "static" (offline fallback).
	// Empty selects the default provider (ollama).
	Provider string `yaml:"provider" json:"provider"`

	// OllamaHost is the Ollama API endpoint (default: http://localhost:11434).
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`

	// TimeoutSecs is the per-request embedding timeout in seconds.
	TimeoutSecs int `yaml:"timeout_secs" json:"timeout_secs"`

	// ModelDownloadTimeout bounds model pulls during setup.
	ModelDownloadTimeout time.Duration `yaml:"model_download_timeout" json:"model_download_timeout"`
}

// merge copies the set fields of other over e.
func (e *EmbedderConfig) merge(other EmbedderConfig) {
	if other.Provider != "" {
		e.Provider = other.Provider
	}
	if other.OllamaHost != "" {
		e.OllamaHost = other.OllamaHost
	}
	if other.TimeoutSecs != 0 {
		e.TimeoutSecs = other.TimeoutSecs
	}
	if other.ModelDownloadTimeout != 0 {
		e.ModelDownloadTimeout = other.ModelDownloadTimeout
	}
}

// LoggingConfig configures the diagnostic log file.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" json:"level"`
	// File is the log file path. Empty means ~/.cosim/logs/cosim.log.
	File string `yaml:"file" json:"file"`
	// MaxSizeMB is the maximum log size in MB before rotation.
	MaxSizeMB int `yaml:"max_size_mb" json:"max_size_mb"`
	// MaxFiles is the number of rotated log files to keep.
	MaxFiles int `yaml:"max_files" json:"max_files"`
}

func (l *LoggingConfig) merge(other LoggingConfig) {
	if other.Level != "" {
		l.Level = other.Level
	}
	if other.File != "" {
		l.File = other.File
	}
	if other.MaxSizeMB != 0 {
		l.MaxSizeMB = other.MaxSizeMB
	}
	if other.MaxFiles != 0 {
		l.MaxFiles = other.MaxFiles
	}
}

// PickerConfig configures the interactive file picker.
type PickerConfig struct {
	// StartDir is the directory the picker opens in. Empty means the
	// current working directory.
	StartDir string `yaml:"start_dir" json:"start_dir"`
	// ShowHidden includes dotfiles in the listing (default: false).
	ShowHidden bool `yaml:"show_hidden" json:"show_hidden"`
	// Height is the number of visible rows (default: 15).
	Height int `yaml:"height" json:"height"`
	// AllowedTypes restricts selectable extensions (e.g. [".txt", ".md"]).
	// Empty allows any file.
	AllowedTypes []string `yaml:"allowed_types" json:"allowed_types"`
}

func (p *PickerConfig) merge(other PickerConfig) {
	if other.StartDir != "" {
		p.StartDir = other.StartDir
	}
	// A false here is indistinguishable from unset, so only true carries.
	if other.ShowHidden {
		p.ShowHidden = true
	}
	if other.Height != 0 {
		p.Height = other.Height
	}
	if len(other.AllowedTypes) > 0 {
		p.AllowedTypes = other.AllowedTypes
	}
}

// NewConfig returns a Config populated with the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Embedder: EmbedderConfig{
			TimeoutSecs: 60,
			// Multilingual models take time on slow networks.
			ModelDownloadTimeout: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
		Picker: PickerConfig{
			Height: 15,
		},
	}
}

// GetUserConfigPath returns the path of the user/global configuration
// file, following the XDG base directory convention:
//   - $XDG_CONFIG_HOME/cosim/config.yaml when XDG_CONFIG_HOME is set
//   - ~/.config/cosim/config.yaml otherwise
func GetUserConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "cosim", "config.yaml")
}

// GetUserConfigDir returns the directory the user configuration lives in.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether a user configuration file is present.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig reads the user configuration when present. A missing
// file yields nil, nil.
func loadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", path, err)
	}
	return cfg, nil
}

// LoadUserConfig reads the user configuration file. A missing file is
// not an error; it returns nil, nil.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}

// Load assembles the configuration for dir, layering sources in order of
// increasing precedence: built-in defaults, the user config, the project
// config (.cosim.yaml in dir), and finally COSIM_* environment variables.
func Load(dir string) (*Config, error) {
	// Pick up a local .env before reading COSIM_* overrides.
	_ = godotenv.Load()

	cfg := NewConfig()

	userCfg, err := loadUserConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromFile reads the project config in dir, if there is one. The
// .yaml spelling wins when both extensions are present.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".cosim.yaml", ".cosim.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return c.loadYAML(path)
		}
	}
	return nil
}

// loadYAML parses one YAML file and merges its set fields into c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith layers the set fields of other over c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	c.Embedder.merge(other.Embedder)
	c.Logging.merge(other.Logging)
	c.Picker.merge(other.Picker)
}

// overrideString writes the last non-empty value among keys into dst.
func overrideString(dst *string, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
}

// applyEnvOverrides layers COSIM_* environment variables on top.
func (c *Config) applyEnvOverrides() {
	// COSIM_EMBEDDINGS_PROVIDER is the long-form alias of COSIM_EMBEDDER.
	overrideString(&c.Embedder.Provider, "COSIM_EMBEDDER", "COSIM_EMBEDDINGS_PROVIDER")
	overrideString(&c.Embedder.OllamaHost, "COSIM_OLLAMA_HOST")
	overrideString(&c.Logging.Level, "COSIM_LOG_LEVEL")
	overrideString(&c.Logging.File, "COSIM_LOG_FILE")
	overrideString(&c.Picker.StartDir, "COSIM_PICKER_START_DIR")

	if raw := os.Getenv("COSIM_EMBED_TIMEOUT_SECS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			c.Embedder.TimeoutSecs = secs
		}
	}
}

// FindProjectRoot walks up from startDir looking for a project marker (a
// .git directory or a .cosim.yaml/.yml file) and returns the directory
// that carries one. Without a marker it returns startDir itself.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for dir := absDir; ; {
		if hasProjectMarker(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return absDir, nil
		}
		dir = parent
	}
}

func hasProjectMarker(dir string) bool {
	if dirExists(filepath.Join(dir, ".git")) {
		return true
	}
	return fileExists(filepath.Join(dir, ".cosim.yaml")) ||
		fileExists(filepath.Join(dir, ".cosim.yml"))
}

// fileExists reports whether path is an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// dirExists reports whether path is an existing directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// oneOf reports whether value matches any option, ignoring case.
func oneOf(value string, options ...string) bool {
	for _, opt := range options {
		if strings.EqualFold(value, opt) {
			return true
		}
	}
	return false
}

// Validate checks the assembled configuration for nonsense values.
func (c *Config) Validate() error {
	// An empty provider selects the default backend.
	if c.Embedder.Provider != "" && !oneOf(c.Embedder.Provider, "ollama", "static") {
		return fmt.Errorf("embedder.provider must be 'ollama', 'static', or empty, got %s", c.Embedder.Provider)
	}
	if c.Embedder.TimeoutSecs < 0 {
		return fmt.Errorf("embedder.timeout_secs must be non-negative, got %d", c.Embedder.TimeoutSecs)
	}

	if !oneOf(c.Logging.Level, "debug", "info", "warn", "error") {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 {
		return fmt.Errorf("logging.max_size_mb must be non-negative, got %d", c.Logging.MaxSizeMB)
	}
	if c.Logging.MaxFiles < 0 {
		return fmt.Errorf("logging.max_files must be non-negative, got %d", c.Logging.MaxFiles)
	}

	if c.Picker.Height < 0 {
		return fmt.Errorf("picker.height must be non-negative, got %d", c.Picker.Height)
	}
	return nil
}

// WriteYAML serializes the configuration to path as YAML.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MergeNewDefaults fills fields an older config file predates with their
// defaults and reports which ones it added.
func (c *Config) MergeNewDefaults() []string {
	defaults := NewConfig()
	var added []string

	fill := func(name string, dst *int, fallback int) {
		if *dst == 0 {
			*dst = fallback
			added = append(added, name)
		}
	}

	fill("embedder.timeout_secs", &c.Embedder.TimeoutSecs, defaults.Embedder.TimeoutSecs)
	if c.Embedder.ModelDownloadTimeout == 0 {
		c.Embedder.ModelDownloadTimeout = defaults.Embedder.ModelDownloadTimeout
		added = append(added, "embedder.model_download_timeout")
	}

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
		added = append(added, "logging.level")
	}
	fill("logging.max_size_mb", &c.Logging.MaxSizeMB, defaults.Logging.MaxSizeMB)
	fill("logging.max_files", &c.Logging.MaxFiles, defaults.Logging.MaxFiles)

	fill("picker.height", &c.Picker.Height, defaults.Picker.Height)
	// ShowHidden stays untouched: false and unset are the same value.

	return added
}

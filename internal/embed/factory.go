package embed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"
)

// ProviderType names an embedding backend.
type ProviderType string

const (
	// ProviderOllama embeds through an Ollama server. The default.
	ProviderOllama ProviderType = "ollama"

	// ProviderStatic embeds by hashing, fully offline. Lower quality,
	// zero dependencies.
	ProviderStatic ProviderType = "static"
)

// NewEmbedder builds the embedder for the given provider. The
// COSIM_EMBEDDER environment variable ("ollama" or "static") overrides
// the argument when set to a recognized value.
//
// There is no silent fallback between providers. When Ollama is chosen
// and unreachable, the error spells out the fix instead of quietly
// degrading the score with hash embeddings.
//
// Unless COSIM_EMBED_CACHE disables it, the result is wrapped in an
// in-process LRU so repeated inputs skip the server.
func NewEmbedder(ctx context.Context, provider ProviderType) (Embedder, error) {
	choice := provider
	switch strings.ToLower(os.Getenv("COSIM_EMBEDDER")) {
	case "ollama":
		choice = ProviderOllama
	case "static":
		choice = ProviderStatic
	}

	var embedder Embedder
	if choice == ProviderStatic {
		embedder = NewStaticEmbedder()
	} else {
		ollama, err := newOllamaEmbedder(ctx)
		if err != nil {
			return nil, err
		}
		embedder = ollama
	}

	if isCacheDisabled() {
		return embedder, nil
	}
	return NewCachedEmbedderWithDefaults(embedder), nil
}

// isCacheDisabled honors the usual spellings of "off".
func isCacheDisabled() bool {
	switch strings.ToLower(os.Getenv("COSIM_EMBED_CACHE")) {
	case "false", "0", "off", "disabled":
		return true
	}
	return false
}

// buildOllamaConfig layers the Ollama settings: hardcoded defaults,
// then the config file (via SetOllamaOverrides), then environment
// variables on top.
func buildOllamaConfig() OllamaConfig {
	cfg := DefaultOllamaConfig()

	if globalOllamaOverrides.Host != "" {
		cfg.Host = globalOllamaOverrides.Host
	}
	if globalOllamaOverrides.Timeout > 0 {
		cfg.Timeout = globalOllamaOverrides.Timeout
	}

	if host := os.Getenv("COSIM_OLLAMA_HOST"); host != "" {
		cfg.Host = host
	}
	if raw := os.Getenv("COSIM_OLLAMA_TIMEOUT"); raw != "" {
		// Duration syntax, e.g. "120s" or "2m". Bad values are ignored.
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.Timeout = d
		}
	}

	return cfg
}

func newOllamaEmbedder(ctx context.Context) (Embedder, error) {
	embedder, err := NewOllamaEmbedder(ctx, buildOllamaConfig())
	if err != nil {
		return nil, fmt.Errorf("ollama unavailable: %w\n\nTo fix:\n  1. Start Ollama: ollama serve\n  2. Pull the model: cosim setup\n  3. Or use offline hash embeddings: COSIM_EMBEDDER=static", err)
	}
	return embedder, nil
}

// OllamaOverrides carries the Ollama settings read from the config file.
type OllamaOverrides struct {
	Host    string
	Timeout time.Duration
}

// globalOllamaOverrides is written once at startup, before any embedder
// is constructed. Environment variables still rank above it.
var globalOllamaOverrides OllamaOverrides

// SetOllamaOverrides installs config-file settings for later embedder
// construction. Call it before NewEmbedder.
func SetOllamaOverrides(cfg OllamaOverrides) {
	globalOllamaOverrides = cfg
	if cfg.Host != "" || cfg.Timeout > 0 {
		slog.Debug("ollama_overrides_set",
			slog.String("host", cfg.Host),
			slog.Duration("timeout", cfg.Timeout))
	}
}

// ParseProvider reads a provider name leniently; anything but "static"
// means Ollama.
func ParseProvider(s string) ProviderType {
	if strings.ToLower(s) == "static" {
		return ProviderStatic
	}
	return ProviderOllama
}

// String returns the provider name.
func (p ProviderType) String() string {
	return string(p)
}

// ValidProviders lists the accepted provider names.
func ValidProviders() []string {
	return []string{string(ProviderOllama), string(ProviderStatic)}
}

// IsValidProvider reports whether s names a known provider.
func IsValidProvider(s string) bool {
	return slices.Contains(ValidProviders(), strings.ToLower(s))
}

// EmbedderInfo is the summary shown by setup and doctor.
type EmbedderInfo struct {
	Provider   ProviderType
	Model      string
	Dimensions int
	Available  bool
}

// GetInfo inspects an embedder, looking through the cache wrapper to
// find the real provider underneath.
func GetInfo(ctx context.Context, embedder Embedder) EmbedderInfo {
	inner := embedder
	if cached, ok := embedder.(*CachedEmbedder); ok {
		inner = cached.Inner()
	}

	provider := ProviderStatic
	if _, ok := inner.(*OllamaEmbedder); ok {
		provider = ProviderOllama
	}

	return EmbedderInfo{
		Provider:   provider,
		Model:      embedder.ModelName(),
		Dimensions: embedder.Dimensions(),
		Available:  embedder.Available(ctx),
	}
}

// MustNewEmbedder is NewEmbedder for init paths where failure is fatal.
func MustNewEmbedder(ctx context.Context, provider ProviderType) Embedder {
	embedder, err := NewEmbedder(ctx, provider)
	if err != nil {
		panic(fmt.Sprintf("failed to create embedder: %v", err))
	}
	return embedder
}

package preflight

import (
	"context"
	"fmt"
	"os"

	"github.com/metehan777/cosine-similarity-aio/internal/lifecycle"
)

// MinModelDiskSpaceBytes is the headroom needed to pull the embedding
// model (~560 MB image plus unpacking room).
const MinModelDiskSpaceBytes = 600 * 1024 * 1024

// CheckEmbedderBackend checks whether the Ollama API answers. Non-critical;
// scoring can fall back to static hash embeddings.
func (c *Checker) CheckEmbedderBackend(ctx context.Context) CheckResult {
	manager := lifecycle.NewOllamaManagerWithHost(c.host)

	running, err := manager.IsRunning()
	switch {
	case err != nil:
		return CheckResult{
			Name:    "embedder_backend",
			Status:  StatusWarn,
			Message: fmt.Sprintf("cannot probe Ollama: %v", err),
		}
	case !running:
		return CheckResult{
			Name:    "embedder_backend",
			Status:  StatusWarn,
			Message: fmt.Sprintf("Ollama not reachable at %s", manager.Host()),
			Details: "Run 'cosim setup', or score offline with COSIM_EMBEDDER=static",
		}
	}

	return CheckResult{
		Name:    "embedder_backend",
		Status:  StatusPass,
		Message: fmt.Sprintf("Ollama responding at %s", manager.Host()),
	}
}

// CheckEmbedderModel checks whether the embedding model is installed.
// Non-critical for the same reason as the backend check.
func (c *Checker) CheckEmbedderModel(ctx context.Context) CheckResult {
	manager := lifecycle.NewOllamaManagerWithHost(c.host)

	if running, err := manager.IsRunning(); err != nil || !running {
		return CheckResult{
			Name:    "embedder_model",
			Status:  StatusWarn,
			Message: "cannot check model: Ollama not reachable",
		}
	}

	installed, err := manager.HasModel(ctx, c.model)
	switch {
	case err != nil:
		return CheckResult{
			Name:    "embedder_model",
			Status:  StatusWarn,
			Message: fmt.Sprintf("cannot list models: %v", err),
		}
	case !installed:
		return CheckResult{
			Name:    "embedder_model",
			Status:  StatusWarn,
			Message: fmt.Sprintf("model %s not installed", c.model),
			Details: "Run 'cosim setup' to pull it",
		}
	}

	return CheckResult{
		Name:    "embedder_model",
		Status:  StatusPass,
		Message: fmt.Sprintf("model %s installed", c.model),
	}
}

// CheckModelDiskSpace checks for download headroom in the home directory,
// where Ollama keeps its model store.
func (c *Checker) CheckModelDiskSpace() CheckResult {
	home, err := os.UserHomeDir()
	if err != nil {
		return CheckResult{
			Name:    "model_disk_space",
			Status:  StatusWarn,
			Message: fmt.Sprintf("cannot determine home directory: %v", err),
		}
	}

	free, err := freeBytes(home)
	if err != nil {
		return CheckResult{
			Name:    "model_disk_space",
			Status:  StatusWarn,
			Message: fmt.Sprintf("cannot check disk space: %v", err),
		}
	}

	if free < MinModelDiskSpaceBytes {
		return CheckResult{
			Name:    "model_disk_space",
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s available (model pull needs ~600 MB)", formatBytes(free)),
			Details: "Free up disk space, or score offline with COSIM_EMBEDDER=static",
		}
	}

	return CheckResult{
		Name:    "model_disk_space",
		Status:  StatusPass,
		Message: fmt.Sprintf("%s available for model download", formatBytes(free)),
	}
}

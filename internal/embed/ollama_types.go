package embed

import "time"

const (
	// DefaultOllamaHost is the default Ollama server address.
	DefaultOllamaHost = "http://localhost:11434"

	// DefaultOllamaModel is the multilingual sentence embedding model cosim
	// scores with. Pulled via `cosim setup`.
	DefaultOllamaModel = "paraphrase-multilingual"

	// OllamaConnectTimeout is the timeout for establishing a connection.
	OllamaConnectTimeout = 5 * time.Second

	// OllamaPoolSize is the connection pool size. A scoring run embeds the
	// query and the text, one request each.
	OllamaPoolSize = 2
)

// OllamaConfig holds configuration for the Ollama embedder.
type OllamaConfig struct {
	// Host is the Ollama server URL (default: http://localhost:11434).
	Host string

	// Model is the embedding model name.
	Model string

	// Dimensions is the expected embedding size (0 = auto-detect).
	Dimensions int

	// BatchSize is the number of texts per batch request.
	BatchSize int

	// Timeout is the per-request timeout for embedding calls.
	Timeout time.Duration

	// ConnectTimeout is the timeout for health checks and model listing.
	ConnectTimeout time.Duration

	// PoolSize is the HTTP connection pool size.
	PoolSize int

	// SkipHealthCheck skips the initial server and model verification.
	SkipHealthCheck bool
}

// DefaultOllamaConfig returns the default Ollama configuration.
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		Host:           DefaultOllamaHost,
		Model:          DefaultOllamaModel,
		Dimensions:     0, // auto-detect
		BatchSize:      DefaultBatchSize,
		Timeout:        DefaultTimeout,
		ConnectTimeout: OllamaConnectTimeout,
		PoolSize:       OllamaPoolSize,
	}
}

// OllamaEmbedRequest is the request body for the /api/embed endpoint.
type OllamaEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"` // string or []string
}

// OllamaEmbedResponse is the response body from the /api/embed endpoint.
type OllamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
}

// OllamaModelListResponse is the response from the /api/tags endpoint.
type OllamaModelListResponse struct {
	Models []OllamaModelInfo `json:"models"`
}

// OllamaModelInfo describes a model known to the Ollama server.
type OllamaModelInfo struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at"`
}

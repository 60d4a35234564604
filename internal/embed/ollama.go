package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// OllamaEmbedder talks to a local or remote Ollama server over its HTTP
// API. Vectors come back L2-normalized so cosine similarity reduces to
// a dot product.
type OllamaEmbedder struct {
	client    *http.Client
	transport *http.Transport
	config    OllamaConfig
	modelName string
	dims      int

	mu     sync.RWMutex
	closed bool
}

var _ Embedder = (*OllamaEmbedder)(nil)

// newOllamaTransport builds the pooled transport. Idle connections die
// after 10s rather than the usual 90s: a scoring run lives for seconds,
// and lingering sockets only delay process exit after Ctrl+C.
func newOllamaTransport(poolSize int, disableKeepAlives bool) *http.Transport {
	return &http.Transport{
		MaxIdleConns:        poolSize,
		MaxIdleConnsPerHost: poolSize,
		MaxConnsPerHost:     poolSize * 2,
		IdleConnTimeout:     10 * time.Second,
		DisableKeepAlives:   disableKeepAlives,
	}
}

// positiveOr returns v when it is positive, otherwise fallback.
func positiveOr[T int | time.Duration](v, fallback T) T {
	if v > 0 {
		return v
	}
	return fallback
}

// NewOllamaEmbedder connects to the configured server, resolves the
// model name against the installed models and probes the embedding
// dimension. With cfg.SkipHealthCheck both steps are skipped and the
// configured (or default) values are trusted as-is.
func NewOllamaEmbedder(ctx context.Context, cfg OllamaConfig) (*OllamaEmbedder, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	cfg.BatchSize = positiveOr(cfg.BatchSize, DefaultBatchSize)
	cfg.Timeout = positiveOr(cfg.Timeout, DefaultTimeout)
	cfg.ConnectTimeout = positiveOr(cfg.ConnectTimeout, OllamaConnectTimeout)
	cfg.PoolSize = positiveOr(cfg.PoolSize, OllamaPoolSize)

	transport := newOllamaTransport(cfg.PoolSize, false)

	// The client carries no Timeout of its own. A client timeout would
	// override per-request contexts, and Embed sets those explicitly.
	e := &OllamaEmbedder{
		client:    &http.Client{Transport: transport},
		transport: transport,
		config:    cfg,
		modelName: cfg.Model,
		dims:      cfg.Dimensions,
	}

	if !cfg.SkipHealthCheck {
		// The probe gets the full request timeout, not ConnectTimeout:
		// a cold model load can take a while on first contact.
		checkCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()

		if err := e.connect(checkCtx); err != nil {
			transport.CloseIdleConnections()
			return nil, err
		}
	}

	if e.dims == 0 {
		e.dims = DefaultDimensions
	}
	return e, nil
}

// connect verifies the server is reachable, pins the model name the
// server knows and fills in the dimension when none was configured.
func (e *OllamaEmbedder) connect(ctx context.Context) error {
	resolved, err := e.resolveModel(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to Ollama or find model: %w", err)
	}
	e.modelName = resolved

	if e.dims == 0 {
		dims, err := e.probeDimensions(ctx)
		if err != nil {
			return fmt.Errorf("failed to detect embedding dimensions: %w", err)
		}
		e.dims = dims
	}
	return nil
}

// apiRequest builds a request against the configured host. A non-nil
// body is assumed to be JSON.
func (e *OllamaEmbedder) apiRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, e.config.Host+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// statusError renders a non-200 response, body text included.
func statusError(what string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s %d: %s", what, resp.StatusCode, string(body))
}

// installedModels fetches the server's model list via /api/tags.
func (e *OllamaEmbedder) installedModels(ctx context.Context) ([]OllamaModelInfo, error) {
	req, err := e.apiRequest(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("unexpected status", resp)
	}

	var list OllamaModelListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return list.Models, nil
}

// matchInstalled returns the installed model whose full or base name
// equals want (already lowercased). Full-name matches win over base
// matches; among base matches the first installed model wins.
func matchInstalled(models []OllamaModelInfo, want string) (string, bool) {
	for _, m := range models {
		if strings.ToLower(m.Name) == want {
			return m.Name, true
		}
	}
	for _, m := range models {
		base := strings.Split(strings.ToLower(m.Name), ":")[0]
		if base == want {
			return m.Name, true
		}
	}
	return "", false
}

// resolveModel maps the configured model to an installed one, so
// "paraphrase-multilingual" finds "paraphrase-multilingual:latest" and
// vice versa. Returns the name as the server knows it.
func (e *OllamaEmbedder) resolveModel(ctx context.Context) (string, error) {
	models, err := e.installedModels(ctx)
	if err != nil {
		return "", err
	}

	want := strings.ToLower(e.config.Model)
	if actual, ok := matchInstalled(models, want); ok {
		return actual, nil
	}
	if actual, ok := matchInstalled(models, strings.Split(want, ":")[0]); ok {
		return actual, nil
	}
	return "", fmt.Errorf("model %q is not installed (run 'cosim setup' to pull it)", e.config.Model)
}

// newEmbedRequest marshals an /api/embed call for the resolved model.
func (e *OllamaEmbedder) newEmbedRequest(ctx context.Context, input any) (*http.Request, error) {
	payload, err := json.Marshal(OllamaEmbedRequest{Model: e.modelName, Input: input})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return e.apiRequest(ctx, http.MethodPost, "/api/embed", bytes.NewReader(payload))
}

// embedCall performs a prepared /api/embed request and decodes the
// response. Transport errors pass through unwrapped so callers can
// inspect them.
func (e *OllamaEmbedder) embedCall(req *http.Request) (*OllamaEmbedResponse, error) {
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("embedding failed with status", resp)
	}

	var parsed OllamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &parsed, nil
}

// probeDimensions embeds a short probe string and measures the result.
func (e *OllamaEmbedder) probeDimensions(ctx context.Context) (int, error) {
	req, err := e.newEmbedRequest(ctx, "dimension detection")
	if err != nil {
		return 0, err
	}

	parsed, err := e.embedCall(req)
	if err != nil {
		return 0, err
	}
	if len(parsed.Embeddings) == 0 || len(parsed.Embeddings[0]) == 0 {
		return 0, fmt.Errorf("empty embedding returned")
	}
	return len(parsed.Embeddings[0]), nil
}

// Embed returns the normalized embedding for one text. Whitespace-only
// input short-circuits to a zero vector without touching the server.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.guardOpen(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return make([]float32, e.dims), nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	vecs, err := e.requestEmbeddings(reqCtx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vecs[0], nil
}

// EmbedBatch embeds many texts through Ollama's array input, splitting
// into BatchSize chunks. Blank texts become zero vectors locally and
// never reach the server; result order follows input order.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.guardOpen(); err != nil {
		return nil, err
	}

	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))

	// Positions of texts that actually need the server.
	var sendIdx []int
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			results[i] = make([]float32, e.dims)
		} else {
			sendIdx = append(sendIdx, i)
		}
	}
	if len(sendIdx) == 0 {
		return results, nil
	}

	for start := 0; start < len(sendIdx); start += e.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + e.config.BatchSize
		if end > len(sendIdx) {
			end = len(sendIdx)
		}
		chunk := sendIdx[start:end]

		chunkTexts := make([]string, len(chunk))
		for j, i := range chunk {
			chunkTexts[j] = texts[i]
		}

		reqCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
		vecs, err := e.requestEmbeddings(reqCtx, chunkTexts)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch: %w", err)
		}

		for j, vec := range vecs {
			results[chunk[j]] = vec
		}
	}
	return results, nil
}

// guardOpen fails fast once Close has run.
func (e *OllamaEmbedder) guardOpen() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return fmt.Errorf("embedder is closed")
	}
	return nil
}

// embedOutcome carries a finished request across the watcher channel.
type embedOutcome struct {
	vecs [][]float32
	err  error
}

// requestEmbeddings posts one /api/embed call. The HTTP exchange runs
// in a goroutine while this function watches the context, so a Ctrl+C
// tears down the connection instead of waiting out a slow server.
func (e *OllamaEmbedder) requestEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	// Single text goes up as a plain string, several as an array. The
	// response shape is the same either way.
	var input any = texts
	if len(texts) == 1 {
		input = texts[0]
	}

	req, err := e.newEmbedRequest(ctx, input)
	if err != nil {
		return nil, err
	}

	slog.Debug("embedding_request",
		slog.String("model", e.modelName),
		slog.Int("texts_count", len(texts)))

	done := make(chan embedOutcome, 1)
	go func() {
		done <- e.exchange(req)
	}()

	select {
	case <-ctx.Done():
		// Force-close so the in-flight read fails and the goroutine can
		// finish; give it a moment, then leave regardless.
		e.ForceCloseConnections()
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
		return nil, ctx.Err()
	case out := <-done:
		return out.vecs, out.err
	}
}

// exchange runs the prepared request and converts the response into
// normalized float32 vectors.
func (e *OllamaEmbedder) exchange(req *http.Request) embedOutcome {
	parsed, err := e.embedCall(req)
	if err != nil {
		return embedOutcome{err: err}
	}

	vecs := make([][]float32, len(parsed.Embeddings))
	for i, raw := range parsed.Embeddings {
		vec := make([]float32, len(raw))
		for j, v := range raw {
			vec[j] = float32(v)
		}
		vecs[i] = normalizeVector(vec)
	}
	return embedOutcome{vecs: vecs}
}

// Dimensions returns the embedding dimension.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dims
}

// ModelName returns the resolved model name.
func (e *OllamaEmbedder) ModelName() string {
	return e.modelName
}

// Available reports whether the server answers and still lists a model
// compatible with ours. Matching is loose on purpose: either name may
// carry a tag the other lacks.
func (e *OllamaEmbedder) Available(ctx context.Context) bool {
	if e.guardOpen() != nil {
		return false
	}

	models, err := e.installedModels(ctx)
	if err != nil {
		return false
	}

	mine := strings.ToLower(e.modelName)
	for _, m := range models {
		theirs := strings.ToLower(m.Name)
		if strings.Contains(theirs, mine) || strings.Contains(mine, theirs) {
			return true
		}
	}
	return false
}

// Close marks the embedder unusable and drops idle connections.
func (e *OllamaEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.closed {
		e.closed = true
		if t := e.transport; t != nil {
			t.CloseIdleConnections()
		}
	}
	return nil
}

// ForceCloseConnections kills active connections too, not just idle
// ones. Swapping the transport makes pending reads fail immediately,
// which is what lets cancellation interrupt an in-flight embed.
func (e *OllamaEmbedder) ForceCloseConnections() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.transport == nil {
		return
	}
	e.transport.CloseIdleConnections()
	e.transport = newOllamaTransport(e.config.PoolSize, true)
	e.client.Transport = e.transport
}

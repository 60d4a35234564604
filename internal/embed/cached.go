package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultEmbeddingCacheSize bounds the in-process memo. A full cache of
// 768-dim float32 vectors costs about 3MB.
const DefaultEmbeddingCacheSize = 1000

// CachedEmbedder memoizes another Embedder behind an LRU. A run that
// embeds the same string twice (identical query and text, or repeated
// scoring in one process) pays the server round trip once.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner with an LRU holding up to size entries.
// Non-positive sizes fall back to DefaultEmbeddingCacheSize.
func NewCachedEmbedder(inner Embedder, size int) *CachedEmbedder {
	if size <= 0 {
		size = DefaultEmbeddingCacheSize
	}
	// lru.New only fails on size <= 0, which is handled above.
	cache, _ := lru.New[string, []float32](size)
	return &CachedEmbedder{inner: inner, cache: cache}
}

// NewCachedEmbedderWithDefaults wraps inner with the default cache size.
func NewCachedEmbedderWithDefaults(inner Embedder) *CachedEmbedder {
	return NewCachedEmbedder(inner, DefaultEmbeddingCacheSize)
}

// hashKey derives the cache key from the model name and the text. The
// model name is mixed in so switching providers mid-process can never
// serve a vector from the wrong model.
func (c *CachedEmbedder) hashKey(text string) string {
	sum := sha256.Sum256([]byte(c.inner.ModelName() + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Embed serves from the cache when possible, otherwise delegates to the
// inner embedder and stores the result.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.hashKey(text)
	if hit, ok := c.cache.Get(key); ok {
		return hit, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, vec)
	return vec, nil
}

// EmbedBatch fills cache hits first and sends only the misses to the
// inner embedder in a single batch, keeping input order in the result.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, len(texts))
	var missAt []int
	var missTexts []string
	for i, text := range texts {
		if hit, ok := c.cache.Get(c.hashKey(text)); ok {
			out[i] = hit
			continue
		}
		missAt = append(missAt, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, i := range missAt {
		out[i] = fresh[j]
		c.cache.Add(c.hashKey(texts[i]), fresh[j])
	}
	return out, nil
}

// Dimensions reports the inner embedder's dimension.
func (c *CachedEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}

// ModelName reports the inner embedder's model identifier.
func (c *CachedEmbedder) ModelName() string {
	return c.inner.ModelName()
}

// Available reports whether the inner embedder is ready.
func (c *CachedEmbedder) Available(ctx context.Context) bool {
	return c.inner.Available(ctx)
}

// Close closes the inner embedder. Cached vectors are dropped with the
// process; there is nothing else to release.
func (c *CachedEmbedder) Close() error {
	return c.inner.Close()
}

// Inner exposes the wrapped embedder for callers that need
// provider-specific state, like the setup summary.
func (c *CachedEmbedder) Inner() Embedder {
	return c.inner
}

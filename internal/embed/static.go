package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"sync"
	"unicode"
)

// StaticEmbedder hashes text into a fixed-size vector. No network, no
// model files, no startup cost. Scores from it are rougher than real
// model embeddings but stable across runs, which makes it the offline
// fallback and the workhorse for tests.
type StaticEmbedder struct {
	mu     sync.RWMutex
	closed bool
}

var _ Embedder = (*StaticEmbedder)(nil)

// StaticDimensions matches the default model dimension so switching
// providers keeps the vector shape.
const StaticDimensions = DefaultDimensions

// Feature weights. Whole tokens carry most of the signal; character
// trigrams smooth over inflection and typos.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// wordPattern matches letter and digit runs in any script.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// englishStopWords are dropped before hashing. Tokens from other
// languages pass through unfiltered.
var englishStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true,
	"or": true, "but": true, "of": true, "to": true,
	"in": true, "on": true, "at": true, "for": true,
	"with": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "it": true, "this": true,
	"that": true, "as": true, "by": true, "from": true,
}

// NewStaticEmbedder returns a ready-to-use hash embedder.
func NewStaticEmbedder() *StaticEmbedder {
	return &StaticEmbedder{}
}

// Embed turns text into a unit-length StaticDimensions vector.
// Whitespace-only input embeds to the zero vector.
func (e *StaticEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, StaticDimensions), nil
	}

	return normalizeVector(e.accumulate(trimmed)), nil
}

// EmbedBatch embeds texts one by one. There is no batching win to be
// had locally; this exists to satisfy the Embedder contract.
func (e *StaticEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

// checkOpen rejects calls after Close.
func (e *StaticEmbedder) checkOpen() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return fmt.Errorf("embedder is closed")
	}
	return nil
}

// accumulate builds the raw (unnormalized) feature vector: each token
// and each character trigram bumps one hashed slot by its weight.
func (e *StaticEmbedder) accumulate(text string) []float32 {
	vec := make([]float32, StaticDimensions)

	for _, token := range contentTokens(text) {
		vec[slotFor(token)] += tokenWeight
	}
	for _, gram := range charNgrams(squash(text), ngramSize) {
		vec[slotFor(gram)] += ngramWeight
	}

	return vec
}

// contentTokens lowercases, splits on non-word runes and drops English
// stop words.
func contentTokens(text string) []string {
	var tokens []string
	for _, word := range wordPattern.FindAllString(text, -1) {
		lower := strings.ToLower(word)
		if lower == "" || englishStopWords[lower] {
			continue
		}
		tokens = append(tokens, lower)
	}
	return tokens
}

// squash lowercases and strips everything but letters and digits, the
// shape trigram extraction expects.
func squash(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// charNgrams slides an n-rune window over text. Runes, not bytes, so
// multi-byte scripts produce stable grams.
func charNgrams(text string, n int) []string {
	runes := []rune(text)
	if len(runes) < n {
		return []string{}
	}

	grams := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}

// slotFor maps a feature to a vector index via FNV-64.
func slotFor(s string) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(StaticDimensions))
}

// Dimensions reports the fixed vector width.
func (e *StaticEmbedder) Dimensions() int {
	return StaticDimensions
}

// ModelName returns the provider identifier used in cache keys and logs.
func (e *StaticEmbedder) ModelName() string {
	return "static"
}

// Available is true until Close; nothing external can go missing.
func (e *StaticEmbedder) Available(_ context.Context) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.closed
}

// Close marks the embedder unusable.
func (e *StaticEmbedder) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

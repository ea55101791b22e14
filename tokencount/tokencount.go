// Package tokencount implements the tokenizer adapter (spec §4.2): a
// pluggable token counter with a byte-length fallback and a real
// BPE-backed counter for the "o200k_base" and "cl100k_base" encodings
// named in spec §4.2 and §6, memoized per encoding name and backed by
// an LRU (or optional Redis-shared) cache for small fragments.
//
// Adapted from the teacher's tokenizer package: the rank-map BPE merge
// loop and pooled scratch buffers (bpe.go), the lazy download-and-cache
// vocab loader (loader.go), and its boundary segmenter, all generalized
// from one hardcoded encoding to the two spec names and trimmed to a
// counting-only API — nothing here ever decodes a token back to bytes.
package tokencount

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// smallFragmentLimit bounds what gets cached: the cache exists for the
// trained variant's cost model, which repeatedly counts short literal
// and dictionary-entry fragments, not whole payloads.
const smallFragmentLimit = 512

// Counter counts tokens for one or more named encodings, lazily
// building and memoizing a BPE engine per encoding the first time it is
// requested.
type Counter struct {
	mu      sync.RWMutex
	engines map[string]*coreBPE
	cache   cache
	log     *slog.Logger
}

// Option configures a Counter.
type Option func(*Counter)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Counter) { c.log = l }
}

// WithRedisCache makes key-prefixed Redis the shared fragment cache
// backend instead of the default in-process LRU, for deployments that
// train/serve the same trained.Config across multiple replicas.
func WithRedisCache(client *redis.Client, keyPrefix string) Option {
	return func(c *Counter) { c.cache = newRedisCache(client, keyPrefix, 0) }
}

// NewCounter builds a Counter with an in-process LRU fragment cache by
// default; see WithRedisCache for a shared backend.
func NewCounter(opts ...Option) *Counter {
	c := &Counter{
		engines: make(map[string]*coreBPE),
		cache:   newLRUCache(4096),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	defaultCounterMu sync.RWMutex
	defaultCounter   = NewCounter()
)

// SetDefaultCounter replaces the package-level Counter used by Count,
// e.g. to point every unqualified Count call at a shared Redis fragment
// cache (see agonconfig.Config.Counter).
func SetDefaultCounter(c *Counter) {
	defaultCounterMu.Lock()
	defer defaultCounterMu.Unlock()
	defaultCounter = c
}

// Count returns the number of tokens text encodes to under encoding, or
// len(text) (bytes) when encoding is empty — the "proxy cost" spec §4.6
// uses for candidates when no tokenizer is configured. Using the
// package-level default counter; see Counter.Count for a caller-owned
// instance with its own cache backend.
func Count(text string, encoding string) (int, error) {
	defaultCounterMu.RLock()
	c := defaultCounter
	defaultCounterMu.RUnlock()
	return c.Count(text, encoding)
}

// Count returns the number of tokens text encodes to under encoding, or
// len(text) (bytes) when encoding is empty (spec §4.2, §4.6).
func (c *Counter) Count(text string, encoding string) (int, error) {
	if encoding == "" {
		return len(text), nil
	}
	engine, err := c.engine(encoding)
	if err != nil {
		return 0, err
	}

	ctx := context.Background()
	cacheable := len(text) <= smallFragmentLimit
	key := encoding + "\x1f" + text
	if cacheable {
		if n, ok := c.cache.Get(ctx, key); ok {
			return n, nil
		}
	}
	n := engine.Count(text)
	if cacheable {
		c.cache.Set(ctx, key, n)
	}
	return n, nil
}

func (c *Counter) engine(encoding string) (*coreBPE, error) {
	c.mu.RLock()
	e, ok := c.engines[encoding]
	c.mu.RUnlock()
	if ok {
		return e, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.engines[encoding]; ok {
		return e, nil
	}
	if _, known := vocabFile[encoding]; !known {
		return nil, fmt.Errorf("%w: %q", ErrEncodingUnavailable, encoding)
	}
	pairs, err := loadVocab(encoding)
	if err != nil {
		c.log.Warn("tokencount: failed to load encoding", "encoding", encoding, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrEncodingUnavailable, encoding, err)
	}
	built := newCoreBPE(pairs, newSegmenter())
	c.engines[encoding] = built
	return built, nil
}

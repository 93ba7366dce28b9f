package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"institution-site-backend/pkg/metrics"
)

// Source runs a query against the remote content repository
type Source interface {
	Query(ctx context.Context, query string, params map[string]any) (json.RawMessage, error)
}

// Cache keeps successful query results, indexed by invalidation tag
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, tags []string, ttl time.Duration) error
	InvalidateTags(ctx context.Context, tags ...string) (int, error)
}

// FetchError adds the query and its parameters to a failed read
type FetchError struct {
	Query  string
	Params map[string]any
	Err    error
}

func (e *FetchError) Error() string {
	params, _ := json.Marshal(e.Params)
	return fmt.Sprintf("content fetch failed (query=%q params=%s): %v", e.Query, params, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Guard wraps reads against the content repository
type Guard struct {
	source  Source
	cache   Cache
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.ContentMetrics
}

// GuardOption customizes a Guard
type GuardOption func(*Guard)

// WithCache enables the response cache with a default entry lifetime
func WithCache(cache Cache, ttl time.Duration) GuardOption {
	return func(g *Guard) {
		g.cache = cache
		g.ttl = ttl
	}
}

// WithMetrics records how each read was served
func WithMetrics(m *metrics.ContentMetrics) GuardOption {
	return func(g *Guard) {
		g.metrics = m
	}
}

// NewGuard creates a guard over source
func NewGuard(source Source, logger *slog.Logger, opts ...GuardOption) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Guard{source: source, logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type fetchOptions struct {
	tags []string
	ttl  time.Duration
}

// FetchOption customizes a single read
type FetchOption func(*fetchOptions)

// WithTags sets the invalidation tags the page layer uses to know when to re-query
func WithTags(tags ...string) FetchOption {
	return func(o *fetchOptions) {
		o.tags = append(o.tags, tags...)
	}
}

// WithTTL overrides how long a live result may be served from cache
func WithTTL(ttl time.Duration) FetchOption {
	return func(o *fetchOptions) {
		o.ttl = ttl
	}
}

// Fetch runs query and decodes its result into T.
// Failures are returned wrapped in a *FetchError; use it where missing content is fatal.
func Fetch[T any](ctx context.Context, g *Guard, query string, params map[string]any, opts ...FetchOption) (T, error) {
	var zero T
	if g == nil || g.source == nil {
		return zero, &FetchError{Query: query, Params: params, Err: errors.New("content source not configured")}
	}
	out, err := fetch[T](ctx, g, query, params, opts)
	if err != nil {
		g.metrics.ObserveFetch("error")
		return zero, &FetchError{Query: query, Params: params, Err: err}
	}
	return out, nil
}

// FetchWithFallback runs query and returns fallback, unchanged, on any failure.
// It never returns an error and never panics; live and fallback values are never mixed.
func FetchWithFallback[T any](ctx context.Context, g *Guard, query string, params map[string]any, fallback T, opts ...FetchOption) (result T) {
	defer func() {
		if r := recover(); r != nil {
			if g != nil {
				g.logger.Warn("content fetch panicked, serving fallback", "query", query, "panic", r)
				g.metrics.ObserveFetch("fallback")
			}
			result = fallback
		}
	}()

	if g == nil || g.source == nil {
		return fallback
	}
	out, err := fetch[T](ctx, g, query, params, opts)
	if err != nil {
		g.logger.Warn("content fetch failed, serving fallback",
			"error", (&FetchError{Query: query, Params: params, Err: err}).Error(),
		)
		g.metrics.ObserveFetch("fallback")
		return fallback
	}
	return out
}

// InvalidateTags drops every cached result fetched with one of tags
func (g *Guard) InvalidateTags(ctx context.Context, tags ...string) (int, error) {
	if g == nil || g.cache == nil || len(tags) == 0 {
		return 0, nil
	}
	n, err := g.cache.InvalidateTags(ctx, tags...)
	if err != nil {
		return n, fmt.Errorf("invalidate content tags: %w", err)
	}
	g.logger.Info("content cache invalidated", "tags", tags, "entries", n)
	return n, nil
}

func fetch[T any](ctx context.Context, g *Guard, query string, params map[string]any, opts []FetchOption) (T, error) {
	var out T
	o := fetchOptions{ttl: g.ttl}
	for _, opt := range opts {
		opt(&o)
	}

	key := ""
	if g.cache != nil {
		key = cacheKey(query, params)
		cached, ok, err := g.cache.Get(ctx, key)
		if err != nil {
			// A broken cache must not turn into a failed read
			g.logger.Warn("content cache read failed", "error", err)
		} else if ok {
			if err := json.Unmarshal(cached, &out); err == nil {
				g.metrics.ObserveFetch("cache")
				return out, nil
			}
			g.logger.Warn("content cache entry undecodable, refetching", "query", query)
		}
	}

	raw, err := g.source.Query(ctx, query, params)
	if err != nil {
		var zero T
		return zero, err
	}
	// Start from a clean value in case a cached entry was partially decoded
	var live T
	if err := json.Unmarshal(raw, &live); err != nil {
		return live, fmt.Errorf("decode result: %w", err)
	}
	out = live
	g.metrics.ObserveFetch("live")

	if g.cache != nil && o.ttl > 0 {
		if err := g.cache.Set(ctx, key, raw, o.tags, o.ttl); err != nil {
			g.logger.Warn("content cache write failed", "error", err)
		}
	}
	return out, nil
}

func cacheKey(query string, params map[string]any) string {
	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	// encoding/json sorts map keys, so equal params hash equally
	if encoded, err := json.Marshal(params); err == nil {
		h.Write(encoded)
	}
	return hex.EncodeToString(h.Sum(nil))
}

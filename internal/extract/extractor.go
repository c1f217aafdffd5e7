package extract

import (
	"encoding/json"

	"github.com/biketag/biketag-go/internal/cache"
	"github.com/biketag/biketag-go/internal/pattern"
)

// Extractor recovers typed tag fields from free-form post text. Every method
// is a pure function of its input and fallback; the optional cache only
// changes how often patterns run, never what is returned.
//
// An Extractor is safe for concurrent use when its cache is.
type Extractor struct {
	patterns *pattern.Registry
	cache    cache.Cache
}

// New returns an extractor over the given registry and cache. A nil registry
// uses pattern.Default(); a nil cache disables memoization.
func New(patterns *pattern.Registry, c cache.Cache) *Extractor {
	if patterns == nil {
		patterns = pattern.Default()
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &Extractor{patterns: patterns, cache: c}
}

// WithCache returns a copy of e that memoizes into c for one pass.
func (e *Extractor) WithCache(c cache.Cache) *Extractor {
	if c == nil {
		c = cache.Noop{}
	}
	return &Extractor{patterns: e.patterns, cache: c}
}

// lookup decodes a memoized result. Entries that no longer decode are treated
// as misses and recomputed.
func lookup[T any](c cache.Cache, key string) (T, bool) {
	var v T
	raw, ok := c.Get(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false
	}
	return v, true
}

func store[T any](c cache.Cache, key string, v T) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Put(key, b)
}

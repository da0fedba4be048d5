// Package lexicon provides cached "raw phrase → candidate entries" lookup
// against external gazetteer and knowledge-base services. Lookups are
// memoized for the life of the cache, including empty results, so a failing
// phrase is never re-queried until Clear is called.
package lexicon

import (
	"context"
	"log"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/value"
)

// DefaultCacheSize bounds the per-lexicon phrase cache. Entries are evicted
// least-recently-used once the cache fills.
const DefaultCacheSize = 256

// Entry is one candidate produced by a lookup.
type Entry struct {
	// Tag is the NER category of the candidate, e.g. "LOCATION" or
	// "GENERIC_ENTITY_sportradar:mlb_team".
	Tag string
	// Value is the typed value the candidate resolves to.
	Value value.Value
	// Canonical is the normalized canonical phrase of the candidate,
	// used by disambiguation for token-overlap scoring.
	Canonical string
}

// Equal is value equality over all three fields.
func (e Entry) Equal(o Entry) bool {
	return e.Tag == o.Tag && e.Canonical == o.Canonical && e.Value.Equal(o.Value)
}

// Source performs the underlying retrieval for a cache miss. A Source must
// be safe for concurrent use. Errors are recovered by the Lexicon and
// converted to an empty result.
type Source interface {
	Lookup(ctx context.Context, rawPhrase string) ([]Entry, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, rawPhrase string) ([]Entry, error)

func (f SourceFunc) Lookup(ctx context.Context, rawPhrase string) ([]Entry, error) {
	return f(ctx, rawPhrase)
}

// Lexicon memoizes Source lookups. Concurrent lookups for the same uncached
// phrase may race and issue duplicate retrievals; retrievals are idempotent
// so the last write wins harmlessly.
type Lexicon struct {
	source Source
	cache  *lru.Cache[string, []Entry]
}

// New creates a Lexicon over the given source. cacheSize <= 0 selects
// DefaultCacheSize.
func New(source Source, cacheSize int) *Lexicon {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, []Entry](cacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &Lexicon{source: source, cache: cache}
}

// Lookup returns the candidates for rawPhrase, performing at most one
// underlying retrieval per distinct phrase per cache generation. Retrieval
// failures yield an empty result, which is cached too (negative caching).
// Callers must not modify the returned slice.
func (l *Lexicon) Lookup(ctx context.Context, rawPhrase string) []Entry {
	if cached, ok := l.cache.Get(rawPhrase); ok {
		return cached
	}
	entries, err := l.source.Lookup(ctx, rawPhrase)
	if err != nil {
		log.Printf("lexicon: lookup %q failed: %v", rawPhrase, err)
		entries = nil
	}
	l.cache.Add(rawPhrase, entries)
	return entries
}

// Clear drops all cached entries, including negative ones.
func (l *Lexicon) Clear() {
	l.cache.Purge()
}

// Registry hands out one Lexicon per language tag, created lazily from the
// factory and then reused. It replaces the hidden per-class singleton maps
// of older designs: owners construct a Registry and inject it.
type Registry struct {
	mu        sync.Mutex
	factory   func(languageTag string) *Lexicon
	instances map[string]*Lexicon
}

// NewRegistry creates a registry over the given per-language factory.
func NewRegistry(factory func(languageTag string) *Lexicon) *Registry {
	return &Registry{
		factory:   factory,
		instances: make(map[string]*Lexicon),
	}
}

// ForLanguage returns the Lexicon for a language tag, creating it on first use.
func (r *Registry) ForLanguage(tag string) *Lexicon {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.instances[tag]; ok {
		return l
	}
	l := r.factory(tag)
	r.instances[tag] = l
	return l
}

// ClearAll drops the caches of every instantiated lexicon.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.instances {
		l.Clear()
	}
}

// Package engine chooses between the two translation strategies, caches
// their outcomes and keeps the performance counters.
//
// An Engine is not safe for concurrent use; callers serialize access.
package engine

import (
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/rubiojr/pys/cache"
	"github.com/rubiojr/pys/lexical"
	"github.com/rubiojr/pys/mapping"
	"github.com/rubiojr/pys/rewrite"
)

const (
	// DefaultLineCacheSize bounds the per-line translation cache.
	DefaultLineCacheSize    = 10000
	// DefaultTreeCacheSize bounds the cache of parsed rewrite results.
	DefaultTreeCacheSize    = 1000
	// DefaultComplexThreshold is the trimmed length a complex line must
	// exceed before the tree rewriter is tried.
	DefaultComplexThreshold = 20
)

// complexChars mark a line as worth a tree rewrite.
const complexChars = "()[]."

// Stats is a snapshot of the engine counters.
type Stats struct {
	CacheHits     uint64
	CacheMisses   uint64
	Translations  uint64
	TreeRewrites  uint64
	TreeFallbacks uint64
	HitRate       float64 // percent of line requests served from cache
	CacheSize     int     // line cache occupancy
	TreeCacheSize int
}

// Result is a translated block of text.
type Result struct {
	Text    string
	Imports []string
}

// Fallback describes a tree rewrite that failed and was replaced by
// lexical substitution.
type Fallback struct {
	Text string
	Err  error
}

type lineEntry struct {
	raw  string
	text string
}

type treeEntry struct {
	raw string
	res *rewrite.Result
	err error
}

// Engine translates lines and blocks of localized source.
type Engine struct {
	table    *mapping.Table
	lexical  *lexical.Substituter
	rewriter *rewrite.Rewriter

	lines *cache.Cache[uint64, lineEntry]
	trees *cache.Cache[uint64, treeEntry]

	log        zerolog.Logger
	threshold  int
	lineSize   int
	treeSize   int
	onFallback func(Fallback)
	now        func() time.Time

	stats Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger fallbacks are reported on.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithLineCacheSize bounds the line cache to n entries.
func WithLineCacheSize(n int) Option {
	return func(e *Engine) { e.lineSize = n }
}

// WithTreeCacheSize bounds the rewrite result cache to n entries.
func WithTreeCacheSize(n int) Option {
	return func(e *Engine) { e.treeSize = n }
}

// WithComplexThreshold sets the trimmed length a complex line must exceed
// before the tree rewriter is tried.
func WithComplexThreshold(n int) Option {
	return func(e *Engine) { e.threshold = n }
}

// WithOnFallback registers a hook called for every tree rewrite failure.
func WithOnFallback(fn func(Fallback)) Option {
	return func(e *Engine) { e.onFallback = fn }
}

// WithClock sets the time source used for cache access stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an Engine translating through table.
func New(table *mapping.Table, opts ...Option) *Engine {
	e := &Engine{
		table:     table,
		lexical:   lexical.New(table),
		rewriter:  rewrite.New(table),
		log:       zerolog.Nop(),
		threshold: DefaultComplexThreshold,
		lineSize:  DefaultLineCacheSize,
		treeSize:  DefaultTreeCacheSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.lines = cache.New(e.lineSize, cache.WithClock[uint64, lineEntry](e.now))
	e.trees = cache.New(e.treeSize, cache.WithClock[uint64, treeEntry](e.now))
	return e
}

// Table returns the mapping table the engine translates with.
func (e *Engine) Table() *mapping.Table { return e.table }

// TranslateLine translates a single line. Blank and comment-only lines are
// returned unchanged and do not touch the cache or the counters.
func (e *Engine) TranslateLine(line string) string {
	if lexical.Skippable(line) {
		return line
	}
	key := xxhash.Sum64String(line)
	if hit, ok := e.lines.Get(key); ok && hit.raw == line {
		e.stats.CacheHits++
		return hit.text
	}
	e.stats.CacheMisses++
	e.stats.Translations++

	var text string
	if e.isComplex(line) {
		if res, err := e.rewrite(line); err == nil {
			e.stats.TreeRewrites++
			text = res.Text
		} else {
			e.fallback(line, err)
			text = e.lexical.Substitute(line)
		}
	} else {
		text = e.lexical.Substitute(line)
	}
	e.lines.Set(key, lineEntry{raw: line, text: text})
	return text
}

// TranslateBlock translates text line by line, then gives the tree rewriter
// one pass over the whole result to collect the imports it needs. When that
// pass fails the line translation is returned without imports.
func (e *Engine) TranslateBlock(text string) Result {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = e.TranslateLine(line)
	}
	joined := strings.Join(lines, "\n")

	res, err := e.rewrite(joined)
	if err != nil {
		e.fallback(joined, err)
		return Result{Text: joined, Imports: []string{}}
	}
	return Result{Text: res.Text, Imports: slices.Clone(res.Imports)}
}

// Stats returns a snapshot of the counters.
func (e *Engine) Stats() Stats {
	s := e.stats
	if total := s.CacheHits + s.CacheMisses; total > 0 {
		s.HitRate = float64(s.CacheHits) / float64(total) * 100
	}
	s.CacheSize = e.lines.Len()
	s.TreeCacheSize = e.trees.Len()
	return s
}

// ClearLineCache empties the line cache.
func (e *Engine) ClearLineCache() { e.lines.Clear() }

// ClearTreeCache empties the rewrite result cache.
func (e *Engine) ClearTreeCache() { e.trees.Clear() }

// ClearCaches empties every cache. Counters are kept.
func (e *Engine) ClearCaches() {
	e.ClearLineCache()
	e.ClearTreeCache()
}

func (e *Engine) isComplex(line string) bool {
	return strings.ContainsAny(line, complexChars) &&
		len([]rune(strings.TrimSpace(line))) > e.threshold
}

// rewrite runs the tree rewriter through the tree cache. Failures are
// cached as well so a line that does not parse is only parsed once.
func (e *Engine) rewrite(text string) (*rewrite.Result, error) {
	key := xxhash.Sum64String(text)
	if hit, ok := e.trees.Get(key); ok && hit.raw == text {
		return hit.res, hit.err
	}
	res, err := e.rewriter.Rewrite("<input>", text)
	e.trees.Set(key, treeEntry{raw: text, res: res, err: err})
	return res, err
}

func (e *Engine) fallback(text string, err error) {
	e.stats.TreeFallbacks++
	e.log.Debug().Err(err).Str("text", text).Msg("tree rewrite failed, using lexical substitution")
	if e.onFallback != nil {
		e.onFallback(Fallback{Text: text, Err: err})
	}
}

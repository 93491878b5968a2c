// Package loader turns source identifiers into executable units: it reads
// localized source, translates it once and keeps the result for reuse.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"go.trai.ch/zerr"

	"github.com/rubiojr/pys/cache"
	"github.com/rubiojr/pys/engine"
)

// DefaultModuleCacheSize bounds the number of translated units kept.
const DefaultModuleCacheSize = 100

var (
	// ErrModuleNotFound is returned when a source cannot be read.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrModuleLoad is returned when executing a loaded unit fails. The
	// executor's error is kept in the chain.
	ErrModuleLoad = zerr.New("failed to run module")
)

// Source provides raw source text by identifier.
//
//go:generate mockgen -source=loader.go -destination=mocks/mock_loader.go -package=mocks
type Source interface {
	ReadSource(id string) (string, error)
}

// Resolver is implemented by sources that know where an identifier lives.
// The resolved origin is recorded on the unit.
type Resolver interface {
	Resolve(id string) string
}

// Translator turns localized source into target-language text.
type Translator interface {
	TranslateBlock(text string) engine.Result
}

// Executor runs a translated unit.
type Executor interface {
	Execute(ctx context.Context, unit *Unit) error
}

// Unit is a translated module ready for execution.
type Unit struct {
	Name    string   // base name without extension
	Source  string   // translated text, imports first
	Origin  string   // where the source was read from
	Imports []string // imports prepended to Source
}

// Loader loads and caches units.
type Loader struct {
	source     Source
	translator Translator
	log        zerolog.Logger
	cacheSize  int

	loaded  map[string]*Unit
	modules *cache.Cache[string, *Unit]
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger load progress is reported on.
func WithLogger(l zerolog.Logger) Option {
	return func(ld *Loader) { ld.log = l }
}

// WithModuleCacheSize bounds the cache of translated modules to n entries.
func WithModuleCacheSize(n int) Option {
	return func(ld *Loader) { ld.cacheSize = n }
}

// New returns a Loader reading from source and translating with tr.
func New(source Source, tr Translator, opts ...Option) *Loader {
	ld := &Loader{
		source:     source,
		translator: tr,
		log:        zerolog.Nop(),
		cacheSize:  DefaultModuleCacheSize,
		loaded:     make(map[string]*Unit),
	}
	for _, opt := range opts {
		opt(ld)
	}
	ld.modules = cache.New[string, *Unit](ld.cacheSize)
	return ld
}

// Load returns the unit for id, translating it on first use.
func (ld *Loader) Load(id string) (*Unit, error) {
	if u, ok := ld.loaded[id]; ok {
		return u, nil
	}
	if u, ok := ld.modules.Get(id); ok {
		ld.loaded[id] = u
		return u, nil
	}

	text, err := ld.source.ReadSource(id)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %s: %w", ErrModuleNotFound, id, err), "module", id)
	}

	res := ld.translator.TranslateBlock(text)
	u := &Unit{
		Name:    unitName(id),
		Source:  withImports(res.Text, res.Imports),
		Origin:  id,
		Imports: res.Imports,
	}
	if r, ok := ld.source.(Resolver); ok {
		u.Origin = r.Resolve(id)
	}
	ld.log.Debug().Str("module", id).Strs("imports", res.Imports).Msg("module translated")

	ld.loaded[id] = u
	ld.modules.Set(id, u)
	return u, nil
}

// Run loads id and hands the unit to exec.
func (ld *Loader) Run(ctx context.Context, id string, exec Executor) error {
	u, err := ld.Load(id)
	if err != nil {
		return err
	}
	if err := exec.Execute(ctx, u); err != nil {
		return zerr.With(fmt.Errorf("%w %s: %w", ErrModuleLoad, u.Name, err), "module", u.Name)
	}
	return nil
}

// Invalidate forgets the unit for id so the next Load reads it again.
func (ld *Loader) Invalidate(id string) {
	delete(ld.loaded, id)
	ld.modules.Delete(id)
}

// Clear forgets every unit.
func (ld *Loader) Clear() {
	clear(ld.loaded)
	ld.modules.Clear()
}

// Cached reports the number of units held by the module cache.
func (ld *Loader) Cached() int { return ld.modules.Len() }

func withImports(text string, imports []string) string {
	if len(imports) == 0 {
		return text
	}
	return strings.Join(imports, "\n") + "\n\n" + text
}

func unitName(id string) string {
	base := filepath.Base(id)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

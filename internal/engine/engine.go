package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"groovylsp/internal/compiler"
	"groovylsp/internal/diag"
	"groovylsp/internal/source"
)

// Engine ties the compiler facade, the compilation cache, and the dependency
// graph together behind one compile entry point.
type Engine struct {
	facade *compiler.Facade
	cache  *Cache
	graph  *DependencyGraph
	group  singleflight.Group
	log    *zap.Logger
}

// Options bounds the engine's cache.
type Options struct {
	MaxCacheSize int
	CacheTTL     time.Duration
}

// New constructs an engine around the given facade.
func New(facade *compiler.Facade, opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		facade: facade,
		cache:  NewCache(opts.MaxCacheSize, opts.CacheTTL, log),
		graph:  NewDependencyGraph(),
		log:    log.Named("engine"),
	}
}

// Compile turns text into a phase-indexed tree, consulting the cache first.
// Error-bearing trees are never cached; only clean compiles update the
// dependency graph. Concurrent compiles of identical input collapse into a
// single frontend invocation.
func (e *Engine) Compile(id source.ID, text string, phase compiler.Phase) Result {
	hash := source.HashContent(text)
	if tree, ok := e.cache.Get(id, hash, phase.Coerce()); ok {
		return Result{Status: StatusSuccess, Tree: tree}
	}

	key := fmt.Sprintf("%s|%s|%d", id, hash, phase.Coerce())
	v, _, _ := e.group.Do(key, func() (any, error) {
		return e.compileUncached(id, text, hash, phase), nil
	})
	return v.(Result)
}

func (e *Engine) compileUncached(id source.ID, text string, hash source.ContentHash, phase compiler.Phase) Result {
	tree, errs, warns := e.facade.CompileTo(text, id, phase)

	issues := make([]diag.Diagnostic, 0, len(errs)+len(warns))
	for _, d := range errs {
		issues = append(issues, diag.Refine(d, text))
	}
	for _, d := range warns {
		issues = append(issues, diag.Refine(d, text))
	}

	if tree == nil {
		e.log.Debug("compile failed",
			zap.String("source", string(id)),
			zap.Int("issues", len(issues)))
		return Result{Status: StatusFailure, Issues: issues}
	}

	if len(errs) > 0 {
		// Trees with errors are usable for queries but never cached.
		return Result{Status: StatusPartial, Tree: tree, Issues: issues}
	}

	e.cache.Put(id, CacheEntry{
		ContentHash: hash,
		Tree:        tree,
		Phase:       phase.Coerce(),
	})
	e.graph.Update(id, ExtractDependencies(tree))

	if len(issues) > 0 {
		return Result{Status: StatusPartial, Tree: tree, Issues: issues}
	}
	return Result{Status: StatusSuccess, Tree: tree}
}

// AffectedBy returns the sources that transitively depend on the changed
// source, for recompilation scheduling.
func (e *Engine) AffectedBy(id source.ID) []source.ID {
	return e.graph.Affected(id)
}

// Invalidate drops the cached tree for id.
func (e *Engine) Invalidate(id source.ID) {
	e.cache.Invalidate(id)
}

// InvalidateAll drops every cached tree.
func (e *Engine) InvalidateAll() {
	e.cache.InvalidateAll()
}

// Remove forgets a deleted source entirely.
func (e *Engine) Remove(id source.ID) {
	e.cache.Invalidate(id)
	e.graph.Remove(id)
}

// Graph exposes the dependency graph for read-side queries.
func (e *Engine) Graph() *DependencyGraph {
	return e.graph
}

// Cache exposes the compilation cache.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Package nav resolves go-to-definition and find-references queries over a
// program tree, consulting the workspace symbol index when local resolution
// comes up empty. The index is a capability injected at construction; index
// failures degrade to local results.
package nav

import (
	"context"

	"go.uber.org/zap"

	"groovylsp/internal/ast"
	"groovylsp/internal/index"
	"groovylsp/internal/source"
)

// Resolver answers navigation queries.
type Resolver struct {
	symbols index.SymbolIndex
	log     *zap.Logger
}

// NewResolver builds a resolver over the given symbol index.
func NewResolver(symbols index.SymbolIndex, log *zap.Logger) *Resolver {
	if symbols == nil {
		symbols = index.Empty{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{symbols: symbols, log: log.Named("nav")}
}

func (r *Resolver) search(ctx context.Context, name string) []index.SymbolInfo {
	found, err := r.symbols.SearchSymbols(ctx, name)
	if err != nil {
		r.log.Warn("symbol index query failed", zap.String("name", name), zap.Error(err))
		return nil
	}
	return found
}

// declarationRange picks the most precise range of a declaration node.
func declarationRange(n ast.Node) source.Range {
	switch d := n.(type) {
	case *ast.Parameter:
		return d.NameRng
	case *ast.Field:
		return d.NameRng
	case *ast.Property:
		return d.NameRng
	case *ast.DeclStmt:
		return d.NameRng
	case *ast.Method:
		return d.NameRng
	case *ast.Class:
		return d.NameRng
	}
	return n.Range()
}

func dedupe(locations []source.Location) []source.Location {
	seen := make(map[source.Location]bool, len(locations))
	out := locations[:0]
	for _, loc := range locations {
		if seen[loc] {
			continue
		}
		seen[loc] = true
		out = append(out, loc)
	}
	return out
}

func localLocation(m *ast.Module, rng source.Range) source.Location {
	return source.Location{Source: m.Source, Range: rng}
}

// declarationName returns the name a declaration node introduces.
func declarationName(n ast.Node) string {
	switch d := n.(type) {
	case *ast.Parameter:
		return d.Name
	case *ast.Field:
		return d.Name
	case *ast.Property:
		return d.Name
	case *ast.DeclStmt:
		return d.Name
	case *ast.Method:
		return d.Name
	case *ast.Class:
		return d.Name
	}
	return ""
}

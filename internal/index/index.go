// Package index defines the workspace symbol index capability consumed by
// the navigation resolver, plus a concrete file-backed implementation that
// scans a workspace, persists with msgpack, and refreshes on file events.
package index

import (
	"context"

	"groovylsp/internal/source"
)

// SymbolKind classifies an indexed symbol.
type SymbolKind uint8

const (
	SymbolClass SymbolKind = iota
	SymbolInterface
	SymbolEnum
	SymbolMethod
	SymbolField
	SymbolProperty
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolClass:
		return "class"
	case SymbolInterface:
		return "interface"
	case SymbolEnum:
		return "enum"
	case SymbolMethod:
		return "method"
	case SymbolField:
		return "field"
	case SymbolProperty:
		return "property"
	}
	return "unknown"
}

// IsClassLike reports whether the kind declares a type.
func (k SymbolKind) IsClassLike() bool {
	return k == SymbolClass || k == SymbolInterface || k == SymbolEnum
}

// SymbolInfo is one indexed declaration. Line and Column are 1-based.
type SymbolInfo struct {
	Name   string
	Kind   SymbolKind
	Path   string
	Line   uint32
	Column uint32
}

// Location converts the symbol to a navigation location.
func (s SymbolInfo) Location() source.Location {
	pos := source.Position{Line: s.Line, Col: s.Column}
	end := pos
	if n := len(s.Name); n > 0 {
		end.Col += uint32(n) - 1
	}
	return source.Location{
		Source: source.ID(source.PathToURI(s.Path)),
		Range:  source.Range{Start: pos, End: end},
	}
}

// SymbolIndex answers symbol-name lookups across the workspace. The search
// may fail; callers degrade to local results.
type SymbolIndex interface {
	SearchSymbols(ctx context.Context, name string) ([]SymbolInfo, error)
}

// Empty is a SymbolIndex with no symbols.
type Empty struct{}

// SearchSymbols implements SymbolIndex.
func (Empty) SearchSymbols(context.Context, string) ([]SymbolInfo, error) {
	return nil, nil
}

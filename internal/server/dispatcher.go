package server

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"groovylsp/internal/ast"
	"groovylsp/internal/compiler"
	"groovylsp/internal/engine"
	"groovylsp/internal/infer"
	"groovylsp/internal/nav"
	"groovylsp/internal/source"
)

// Dispatcher composes the engine, the navigation resolver, and type
// inference behind the coarse-grained request methods. Every method returns
// a domain value or an empty result; failures never escape as errors.
type Dispatcher struct {
	docs     DocumentStore
	engine   *engine.Engine
	resolver *nav.Resolver
	pipeline *Pipeline
	log      *zap.Logger
}

// NewDispatcher wires the query surface.
func NewDispatcher(docs DocumentStore, eng *engine.Engine, resolver *nav.Resolver, pipeline *Pipeline, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		docs:     docs,
		engine:   eng,
		resolver: resolver,
		pipeline: pipeline,
		log:      log.Named("dispatch"),
	}
}

// moduleAt compiles the document and converts the wire position.
func (d *Dispatcher) moduleAt(uri string, pos source.ProtocolPosition) (*ast.Module, source.Position) {
	text, ok := d.docs.GetContent(uri)
	if !ok || text == "" {
		return nil, source.Position{}
	}
	result := d.engine.Compile(source.ID(uri), text, compiler.PhaseSemantic)
	if !result.OK() {
		return nil, source.Position{}
	}
	return result.Tree, source.FromProtocol(pos)
}

// Definition implements textDocument/definition.
func (d *Dispatcher) Definition(ctx context.Context, uri string, pos source.ProtocolPosition) []Location {
	module, internal := d.moduleAt(uri, pos)
	if module == nil {
		return []Location{}
	}
	return toWireLocations(d.resolver.Definition(ctx, module, internal))
}

// References implements textDocument/references.
func (d *Dispatcher) References(ctx context.Context, uri string, pos source.ProtocolPosition, includeDeclaration bool) []Location {
	module, internal := d.moduleAt(uri, pos)
	if module == nil {
		return []Location{}
	}
	return toWireLocations(d.resolver.References(ctx, module, internal, includeDeclaration))
}

// Hover implements textDocument/hover.
func (d *Dispatcher) Hover(ctx context.Context, uri string, pos source.ProtocolPosition) *Hover {
	module, internal := d.moduleAt(uri, pos)
	if module == nil {
		return nil
	}
	node := ast.NodeAt(module, internal)
	if node == nil {
		return nil
	}

	var lines []string
	var rng source.Range

	appendSignature := func(decl ast.Node) {
		if sig := infer.Describe(decl, module); sig != "" {
			lines = append(lines, "```groovy\n"+sig+"\n```")
			start := decl.Range().Start
			lines = append(lines, fmt.Sprintf("Defined in %s:%d", displayPath(module.Source), start.Line))
		}
	}

	switch n := node.(type) {
	case *ast.Parameter, *ast.Field, *ast.Property, *ast.DeclStmt, *ast.Method, *ast.Class:
		appendSignature(node)
		rng = node.Range()
	case *ast.VarExpr:
		if n.Decl != nil {
			appendSignature(n.Decl)
		}
		if len(lines) == 0 {
			lines = append(lines, "Type: `"+infer.Type(n, module)+"`")
		}
		rng = n.Rng
	default:
		if expr, ok := node.(ast.Expression); ok {
			lines = append(lines, "Type: `"+infer.Type(expr, module)+"`")
			rng = expr.Range()
		}
	}

	if len(lines) == 0 {
		return nil
	}
	wireRange := source.RangeToProtocol(rng)
	return &Hover{
		Contents: markupContent{Kind: "markdown", Value: strings.Join(lines, "\n")},
		Range:    &wireRange,
	}
}

// DiagnosticsImmediate publishes diagnostics for uri now.
func (d *Dispatcher) DiagnosticsImmediate(uri string) {
	d.pipeline.Immediate(uri)
}

// DiagnosticsDebounced schedules a debounced publication for uri.
func (d *Dispatcher) DiagnosticsDebounced(uri string) {
	d.pipeline.Debounced(uri)
}

// ClearDiagnostics publishes an empty set and cancels pending work.
func (d *Dispatcher) ClearDiagnostics(uri string) {
	d.pipeline.Clear(uri)
}

func toWireLocations(locations []source.Location) []Location {
	out := make([]Location, 0, len(locations))
	for _, loc := range locations {
		out = append(out, Location{
			URI:   string(loc.Source),
			Range: source.RangeToProtocol(loc.Range),
		})
	}
	return out
}

func displayPath(id source.ID) string {
	if path := source.URIToPath(string(id)); path != "" {
		return path
	}
	return string(id)
}

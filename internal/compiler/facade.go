package compiler

import (
	"fmt"

	"go.uber.org/zap"

	"groovylsp/internal/ast"
	"groovylsp/internal/diag"
	"groovylsp/internal/source"
)

// ErrorCollector aggregates diagnostics emitted during one compile
// invocation, split by wire severity.
type ErrorCollector struct {
	errors   []diag.Diagnostic
	warnings []diag.Diagnostic
}

// Report records one diagnostic.
func (c *ErrorCollector) Report(d diag.Diagnostic) {
	if d.Kind.Severity() == diag.SevError {
		c.errors = append(c.errors, d)
		return
	}
	c.warnings = append(c.warnings, d)
}

// Errors returns the collected error diagnostics.
func (c *ErrorCollector) Errors() []diag.Diagnostic { return c.errors }

// Warnings returns the collected warning diagnostics.
func (c *ErrorCollector) Warnings() []diag.Diagnostic { return c.warnings }

// Empty reports whether nothing was collected.
func (c *ErrorCollector) Empty() bool {
	return len(c.errors) == 0 && len(c.warnings) == 0
}

// Frontend is the opaque parser/compiler contract. Implementations carry
// mutable state and must not be shared across invocations.
type Frontend interface {
	// Compile parses and analyzes text up to the requested phase, reporting
	// problems to the collector. A nil module means no usable tree.
	Compile(text string, id source.ID, phase Phase, sink *ErrorCollector) *ast.Module
}

// FrontendFactory constructs a fresh frontend per invocation.
type FrontendFactory func(Config) Frontend

// Facade turns the raw frontend into a never-throwing, phase-coerced
// compile entry point.
type Facade struct {
	config      Config
	newFrontend FrontendFactory
	log         *zap.Logger
}

// NewFacade builds a facade over the given frontend factory.
func NewFacade(config Config, factory FrontendFactory, log *zap.Logger) *Facade {
	if log == nil {
		log = zap.NewNop()
	}
	return &Facade{config: config, newFrontend: factory, log: log.Named("facade")}
}

// Config returns the facade's compiler configuration.
func (f *Facade) Config() Config { return f.config }

// CompileTo compiles text up to the coerced phase. It never panics: frontend
// panics surface as a single synthesized syntax diagnostic at 1:1 when the
// collector holds no structured error.
func (f *Facade) CompileTo(text string, id source.ID, phase Phase) (tree *ast.Module, errs, warns []diag.Diagnostic) {
	coerced := phase.Coerce()
	sink := &ErrorCollector{}

	func() {
		defer func() {
			if r := recover(); r != nil {
				f.log.Debug("frontend panic recovered",
					zap.String("source", string(id)),
					zap.String("panic", fmt.Sprint(r)))
				tree = nil
			}
		}()
		frontend := f.newFrontend(f.config)
		tree = frontend.Compile(text, id, coerced, sink)
	}()

	errs = sink.Errors()
	warns = sink.Warnings()
	if tree == nil && len(errs) == 0 {
		errs = append(errs, diag.Diagnostic{
			Message: "unexpected end of file: compilation produced no result",
			Line:    1,
			Col:     1,
			Source:  id,
			Kind:    diag.KindSyntax,
			Code:    diag.CodeFor(diag.KindSyntax, "unexpected end of file"),
		})
	}
	return tree, errs, warns
}

package frontend

import (
	"groovylsp/internal/ast"
	"groovylsp/internal/compiler"
	"groovylsp/internal/diag"
	"groovylsp/internal/source"
)

// errorSink adapts the facade's collector for the lexer and parser.
type errorSink struct {
	collector *compiler.ErrorCollector
}

func (s *errorSink) report(d diag.Diagnostic) {
	if s == nil || s.collector == nil {
		return
	}
	s.collector.Report(d)
}

// Groovy is the built-in Groovy-subset frontend. A fresh value is
// constructed per compile invocation; it holds per-run state only.
type Groovy struct {
	config compiler.Config
}

// New constructs a frontend for one invocation.
func New(config compiler.Config) compiler.Frontend {
	return &Groovy{config: config}
}

// Compile implements compiler.Frontend.
func (g *Groovy) Compile(text string, id source.ID, phase compiler.Phase, sink *compiler.ErrorCollector) *ast.Module {
	es := &errorSink{collector: sink}
	tokens := lex(text, id, es)
	p := &parser{tokens: tokens, id: id, sink: es}
	module := p.parseModule()
	if module == nil {
		return nil
	}
	if phase >= compiler.PhaseSemantic {
		bind(module)
	}
	return module
}

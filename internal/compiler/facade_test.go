package compiler

import (
	"testing"

	"groovylsp/internal/ast"
	"groovylsp/internal/diag"
	"groovylsp/internal/source"
)

type frontendFunc func(text string, id source.ID, phase Phase, sink *ErrorCollector) *ast.Module

func (f frontendFunc) Compile(text string, id source.ID, phase Phase, sink *ErrorCollector) *ast.Module {
	return f(text, id, phase, sink)
}

func factoryOf(f frontendFunc) FrontendFactory {
	return func(Config) Frontend { return f }
}

func TestPhaseCoercion(t *testing.T) {
	cases := map[Phase]Phase{
		PhaseInit:     PhaseConvert,
		PhaseParsing:  PhaseConvert,
		PhaseConvert:  PhaseConvert,
		PhaseSemantic: PhaseSemantic,
		PhaseClassGen: PhaseClassGen,
	}
	for requested, want := range cases {
		if got := requested.Coerce(); got != want {
			t.Fatalf("Coerce(%s) = %s, want %s", requested, got, want)
		}
	}
}

func TestFacadePassesCoercedPhase(t *testing.T) {
	var seen Phase
	facade := NewFacade(DefaultConfig(), factoryOf(func(_ string, _ source.ID, phase Phase, _ *ErrorCollector) *ast.Module {
		seen = phase
		return &ast.Module{}
	}), nil)
	facade.CompileTo("x", "file:///a.groovy", PhaseParsing)
	if seen != PhaseConvert {
		t.Fatalf("frontend saw phase %s, want conversion", seen)
	}
}

func TestFacadeRecoversPanic(t *testing.T) {
	facade := NewFacade(DefaultConfig(), factoryOf(func(string, source.ID, Phase, *ErrorCollector) *ast.Module {
		panic("parser exploded")
	}), nil)
	tree, errs, _ := facade.CompileTo("garbage", "file:///a.groovy", PhaseConvert)
	if tree != nil {
		t.Fatalf("expected nil tree after panic")
	}
	if len(errs) != 1 {
		t.Fatalf("expected one synthesized diagnostic, got %d", len(errs))
	}
	if errs[0].Line != 1 || errs[0].Col != 1 {
		t.Fatalf("synthesized diagnostic not at 1:1: %+v", errs[0])
	}
	if errs[0].Kind != diag.KindSyntax {
		t.Fatalf("synthesized diagnostic kind %s", errs[0].Kind)
	}
}

func TestFacadeKeepsStructuredErrors(t *testing.T) {
	facade := NewFacade(DefaultConfig(), factoryOf(func(_ string, id source.ID, _ Phase, sink *ErrorCollector) *ast.Module {
		sink.Report(diag.Diagnostic{
			Message: "unexpected token: {",
			Line:    1, Col: 12,
			Source: id,
			Kind:   diag.KindSyntax,
		})
		panic("and then it died")
	}), nil)
	tree, errs, _ := facade.CompileTo("def hello( {", "file:///a.groovy", PhaseConvert)
	if tree != nil {
		t.Fatalf("expected nil tree")
	}
	if len(errs) != 1 || errs[0].Message != "unexpected token: {" {
		t.Fatalf("structured error lost: %+v", errs)
	}
}

func TestFacadeSplitsWarnings(t *testing.T) {
	facade := NewFacade(DefaultConfig(), factoryOf(func(_ string, id source.ID, _ Phase, sink *ErrorCollector) *ast.Module {
		sink.Report(diag.Diagnostic{Message: "variable 'y' is never used", Line: 2, Col: 1, Source: id, Kind: diag.KindWarning})
		return &ast.Module{Source: id}
	}), nil)
	tree, errs, warns := facade.CompileTo("def y = 1", "file:///a.groovy", PhaseSemantic)
	if tree == nil {
		t.Fatalf("expected tree")
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if len(warns) != 1 {
		t.Fatalf("expected one warning, got %d", len(warns))
	}
}

func TestWithClasspathCopies(t *testing.T) {
	base := DefaultConfig()
	extended := base.WithClasspath("/lib/a.jar")
	if len(base.Classpath) != 0 {
		t.Fatalf("base config mutated: %v", base.Classpath)
	}
	if len(extended.Classpath) != 1 || extended.Classpath[0] != "/lib/a.jar" {
		t.Fatalf("unexpected classpath: %v", extended.Classpath)
	}
}

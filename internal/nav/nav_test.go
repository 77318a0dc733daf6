package nav

import (
	"context"
	"testing"

	"groovylsp/internal/ast"
	"groovylsp/internal/compiler"
	"groovylsp/internal/frontend"
	"groovylsp/internal/index"
	"groovylsp/internal/source"
)

func moduleOf(t *testing.T, text string) *ast.Module {
	t.Helper()
	sink := &compiler.ErrorCollector{}
	m := frontend.New(compiler.DefaultConfig()).Compile(text, "file:///t.groovy", compiler.PhaseSemantic, sink)
	if m == nil {
		t.Fatalf("no module: %v", sink.Errors())
	}
	return m
}

type tableIndex map[string][]index.SymbolInfo

func (t tableIndex) SearchSymbols(_ context.Context, name string) ([]index.SymbolInfo, error) {
	return t[name], nil
}

func TestDefinitionPropertyOnReceiver(t *testing.T) {
	text := `class Person {
    String name
}
def p = new Person()
println p.name
`
	m := moduleOf(t, text)
	r := NewResolver(nil, nil)

	// Position of "name" in "p.name" (line 5, after "println p.").
	got := r.Definition(context.Background(), m, source.Position{Line: 5, Col: 12})
	if len(got) != 1 {
		t.Fatalf("expected one location, got %v", got)
	}
	if got[0].Range.Start != (source.Position{Line: 2, Col: 12}) {
		t.Fatalf("definition at %s", got[0].Range.Start)
	}
}

func TestDefinitionLocalMethod(t *testing.T) {
	text := `class Calc {
    int twice(int n) { return n + n }
    int run() { return twice(2) }
}
`
	m := moduleOf(t, text)
	r := NewResolver(nil, nil)

	// Cursor on the call to twice inside run.
	got := r.Definition(context.Background(), m, source.Position{Line: 3, Col: 25})
	if len(got) != 1 {
		t.Fatalf("expected one location, got %v", got)
	}
	if got[0].Range.Start.Line != 2 {
		t.Fatalf("definition at %s", got[0].Range.Start)
	}
}

func TestDefinitionClassViaIndex(t *testing.T) {
	m := moduleOf(t, "def h = new Helper()\n")
	symbols := tableIndex{"Helper": {{Name: "Helper", Kind: index.SymbolClass, Path: "Helper.groovy", Line: 1, Column: 7}}}
	r := NewResolver(symbols, nil)

	// Cursor on the constructor's type name.
	got := r.Definition(context.Background(), m, source.Position{Line: 1, Col: 14})
	if len(got) != 1 {
		t.Fatalf("expected one location, got %v", got)
	}
	if got[0].Range.Start != (source.Position{Line: 1, Col: 7}) {
		t.Fatalf("definition at %s", got[0].Range.Start)
	}
}

func TestDefinitionIndexKindFilter(t *testing.T) {
	m := moduleOf(t, "def h = new Helper()\n")
	symbols := tableIndex{"Helper": {{Name: "Helper", Kind: index.SymbolMethod, Path: "x.groovy", Line: 3, Column: 1}}}
	r := NewResolver(symbols, nil)

	got := r.Definition(context.Background(), m, source.Position{Line: 1, Col: 14})
	if len(got) != 0 {
		t.Fatalf("method symbol must not satisfy a class lookup: %v", got)
	}
}

func TestReferencesMethodCalls(t *testing.T) {
	text := `class Calc {
    int twice(int n) { return n + n }
    int a() { return twice(1) }
    int b() { return twice(2) }
}
`
	m := moduleOf(t, text)
	r := NewResolver(nil, nil)

	// Cursor on the declaration of twice.
	got := r.References(context.Background(), m, source.Position{Line: 2, Col: 10}, true)
	if len(got) != 3 {
		t.Fatalf("expected declaration plus two calls, got %d: %v", len(got), got)
	}
}

func TestReferencesMergesIndexResults(t *testing.T) {
	text := `class Calc {
    int twice(int n) { return n }
}
`
	m := moduleOf(t, text)
	symbols := tableIndex{"twice": {
		{Name: "twice", Kind: index.SymbolMethod, Path: "Other.groovy", Line: 8, Column: 9},
		{Name: "twice", Kind: index.SymbolProperty, Path: "Other.groovy", Line: 2, Column: 1},
	}}
	r := NewResolver(symbols, nil)

	got := r.References(context.Background(), m, source.Position{Line: 2, Col: 10}, false)
	// Local call walk finds nothing; the index contributes the method entry only.
	if len(got) != 1 {
		t.Fatalf("expected one merged reference, got %v", got)
	}
	if got[0].Range.Start.Line != 8 {
		t.Fatalf("unexpected location %s", got[0].Range.Start)
	}
}

func TestUnresolvablePositionYieldsEmpty(t *testing.T) {
	m := moduleOf(t, "def x = 1\n")
	r := NewResolver(nil, nil)
	if got := r.Definition(context.Background(), m, source.Position{Line: 40, Col: 1}); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
	if got := r.References(context.Background(), m, source.Position{Line: 40, Col: 1}, true); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

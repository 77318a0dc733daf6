package engine

import (
	"sort"
	"testing"

	"groovylsp/internal/ast"
	"groovylsp/internal/source"
)

func TestExtractDependencies(t *testing.T) {
	m := &ast.Module{
		Imports: []*ast.Import{
			{Name: "java.util.concurrent.Callable"},
		},
		StarImports: []*ast.StarImport{
			{Package: "groovy.transform"},
		},
		Classes: []*ast.Class{
			{
				Name:       "Person",
				SuperClass: ast.TypeRef{Name: "Base"},
				Interfaces: []ast.TypeRef{{Name: "Callable"}},
				Fields: []*ast.Field{
					{Name: "count", Type: ast.TypeRef{Name: "int"}},
					{Name: "helper", Type: ast.TypeRef{Name: "com.acme.Helper"}},
				},
				Methods: []*ast.Method{
					{
						Name:       "run",
						ReturnType: ast.TypeRef{Name: "Result"},
						Params:     []*ast.Parameter{{Name: "in", Type: ast.TypeRef{Name: "Input"}}},
					},
				},
				Annotations: []*ast.Annotation{{Name: "Immutable"}},
			},
		},
	}

	deps := ExtractDependencies(m)
	got := make(map[string]DependencyKind, len(deps))
	for _, d := range deps {
		got[d.Name] = d.Kind
	}

	want := map[string]DependencyKind{
		"Callable":           DepImport, // import wins over implements
		"groovy.transform.*": DepImport,
		"Base":               DepExtends,
		"Helper":             DepFieldType,
		"Result":             DepMethodType,
		"Input":              DepMethodType,
		"Immutable":          DepAnnotation,
	}
	for name, kind := range want {
		gotKind, ok := got[name]
		if !ok {
			t.Fatalf("missing dependency %q (have %v)", name, got)
		}
		if gotKind != kind {
			t.Fatalf("dependency %q kind %s, want %s", name, gotKind, kind)
		}
	}
	if _, ok := got["int"]; ok {
		t.Fatalf("primitive leaked into dependencies")
	}
}

func TestExtractSkipsJavaLangObject(t *testing.T) {
	m := &ast.Module{
		Classes: []*ast.Class{
			{Name: "Plain", SuperClass: ast.TypeRef{Name: "java.lang.Object"}},
		},
	}
	if deps := ExtractDependencies(m); len(deps) != 0 {
		t.Fatalf("expected no dependencies, got %v", deps)
	}
}

func graphOf(t *testing.T, edges map[source.ID][]string) *DependencyGraph {
	t.Helper()
	g := NewDependencyGraph()
	for id, names := range edges {
		deps := make([]Dependency, 0, len(names))
		for _, n := range names {
			deps = append(deps, Dependency{Name: n, Kind: DepImport})
		}
		g.Update(id, deps)
	}
	return g
}

func TestAffectedDirect(t *testing.T) {
	g := graphOf(t, map[source.ID][]string{
		"file:///a/Consumer.groovy": {"Utils"},
		"file:///a/Other.groovy":    {"Unrelated"},
	})
	got := g.Affected("file:///lib/Utils.groovy")
	if len(got) != 1 || got[0] != "file:///a/Consumer.groovy" {
		t.Fatalf("affected = %v", got)
	}
}

func TestAffectedTransitive(t *testing.T) {
	g := graphOf(t, map[source.ID][]string{
		"file:///B.groovy": {"A"},
		"file:///C.groovy": {"B"},
		"file:///D.groovy": {"C"},
	})
	got := g.Affected("file:///A.groovy")
	names := make([]string, 0, len(got))
	for _, id := range got {
		names = append(names, string(id))
	}
	sort.Strings(names)
	want := []string{"file:///B.groovy", "file:///C.groovy", "file:///D.groovy"}
	if len(names) != len(want) {
		t.Fatalf("affected = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("affected = %v, want %v", names, want)
		}
	}
}

func TestAffectedExcludesSelfAndDuplicates(t *testing.T) {
	g := graphOf(t, map[source.ID][]string{
		"file:///A.groovy": {"A"}, // self edge is ignored
		"file:///B.groovy": {"A", "A"},
	})
	got := g.Affected("file:///A.groovy")
	if len(got) != 1 || got[0] != "file:///B.groovy" {
		t.Fatalf("affected = %v", got)
	}
}

func TestUpdateReplacesEdges(t *testing.T) {
	g := NewDependencyGraph()
	g.Update("file:///B.groovy", []Dependency{{Name: "A", Kind: DepImport}})
	g.Update("file:///B.groovy", []Dependency{{Name: "C", Kind: DepImport}})
	if got := g.Affected("file:///A.groovy"); len(got) != 0 {
		t.Fatalf("stale edges survived update: %v", got)
	}
	if got := g.Affected("file:///C.groovy"); len(got) != 1 {
		t.Fatalf("new edges missing: %v", got)
	}
}

func TestStarImportKeptVerbatim(t *testing.T) {
	m := &ast.Module{StarImports: []*ast.StarImport{{Package: "com.acme.util"}}}
	deps := ExtractDependencies(m)
	if len(deps) != 1 || deps[0].Name != "com.acme.util.*" {
		t.Fatalf("star import mangled: %v", deps)
	}
}

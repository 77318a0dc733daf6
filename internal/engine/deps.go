package engine

import (
	"strings"
	"sync"

	"groovylsp/internal/ast"
	"groovylsp/internal/source"
)

// DependencyKind records why a module references an external name.
type DependencyKind uint8

const (
	DepImport DependencyKind = iota
	DepExtends
	DepImplements
	DepFieldType
	DepMethodType
	DepAnnotation
)

func (k DependencyKind) String() string {
	switch k {
	case DepImport:
		return "import"
	case DepExtends:
		return "extends"
	case DepImplements:
		return "implements"
	case DepFieldType:
		return "field-type"
	case DepMethodType:
		return "method-type"
	case DepAnnotation:
		return "annotation"
	}
	return "unknown"
}

// Dependency is one external name a module references.
type Dependency struct {
	Name string
	Kind DependencyKind
}

// ExtractDependencies collects the external names a module references.
// Names are normalized to simple class names so package-less references
// still match; star imports keep their `pkg.*` form verbatim. The first
// kind recorded for a name wins.
func ExtractDependencies(m *ast.Module) []Dependency {
	if m == nil {
		return nil
	}
	seen := make(map[string]bool)
	var deps []Dependency
	add := func(name string, kind DependencyKind) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		deps = append(deps, Dependency{Name: name, Kind: kind})
	}
	addType := func(t ast.TypeRef, kind DependencyKind) {
		if t.Name == "" || t.IsPrimitive() {
			return
		}
		add(simpleName(strings.TrimSuffix(t.Name, "[]")), kind)
	}

	for _, imp := range m.Imports {
		add(imp.Simple(), DepImport)
	}
	for _, star := range m.StarImports {
		add(star.Package+".*", DepImport)
	}
	for _, cls := range m.Classes {
		if cls.SuperClass.Name != "" && cls.SuperClass.Name != "java.lang.Object" && cls.SuperClass.Name != "Object" {
			addType(cls.SuperClass, DepExtends)
		}
		for _, iface := range cls.Interfaces {
			addType(iface, DepImplements)
		}
		for _, f := range cls.Fields {
			addType(f.Type, DepFieldType)
		}
		for _, prop := range cls.Properties {
			addType(prop.Type, DepFieldType)
		}
		for _, method := range cls.Methods {
			addType(method.ReturnType, DepMethodType)
			for _, param := range method.Params {
				addType(param.Type, DepMethodType)
			}
		}
		for _, ann := range cls.Annotations {
			add(simpleName(ann.Name), DepAnnotation)
		}
		for _, method := range cls.Methods {
			for _, ann := range method.Annotations {
				add(simpleName(ann.Name), DepAnnotation)
			}
		}
		for _, f := range cls.Fields {
			for _, ann := range f.Annotations {
				add(simpleName(ann.Name), DepAnnotation)
			}
		}
		for _, prop := range cls.Properties {
			for _, ann := range prop.Annotations {
				add(simpleName(ann.Name), DepAnnotation)
			}
		}
	}
	return deps
}

func simpleName(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// DependencyGraph maps each source to the set of external names it
// references and answers reverse-closure queries. Multiple readers may
// enumerate concurrently; updates are exclusive.
type DependencyGraph struct {
	mu    sync.RWMutex
	edges map[source.ID]map[string]bool
}

// NewDependencyGraph builds an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{edges: make(map[source.ID]map[string]bool)}
}

// Update atomically replaces the edge set for id.
func (g *DependencyGraph) Update(id source.ID, deps []Dependency) {
	names := make(map[string]bool, len(deps))
	for _, dep := range deps {
		names[dep.Name] = true
	}
	g.mu.Lock()
	g.edges[id] = names
	g.mu.Unlock()
}

// Remove drops the source and its edges.
func (g *DependencyGraph) Remove(id source.ID) {
	g.mu.Lock()
	delete(g.edges, id)
	g.mu.Unlock()
}

// DependenciesOf returns the recorded names for id, sorted-free.
func (g *DependencyGraph) DependenciesOf(id source.ID) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.edges[id]))
	for name := range g.edges[id] {
		names = append(names, name)
	}
	return names
}

// Affected returns every source transitively depending on the changed
// source's class name, by reverse BFS. The changed source itself is
// excluded; each source appears at most once.
func (g *DependencyGraph) Affected(changed source.ID) []source.ID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[source.ID]bool{changed: true}
	var out []source.ID
	frontier := []source.ID{changed}

	for len(frontier) > 0 {
		next := frontier[:0:0]
		for _, target := range frontier {
			stem := source.Stem(target)
			for id, names := range g.edges {
				if visited[id] {
					continue
				}
				if names[stem] || names[simpleName(stem)] {
					visited[id] = true
					out = append(out, id)
					next = append(next, id)
				}
			}
		}
		frontier = next
	}
	return out
}

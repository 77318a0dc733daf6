package nav

import (
	"context"

	"groovylsp/internal/ast"
	"groovylsp/internal/index"
	"groovylsp/internal/source"
)

// References finds usages of the declaration at pos. When
// includeDeclaration is set, the declaration's own location joins the list.
func (r *Resolver) References(ctx context.Context, m *ast.Module, pos source.Position, includeDeclaration bool) []source.Location {
	if m == nil {
		return nil
	}
	node := ast.NodeAt(m, pos)
	if node == nil {
		return nil
	}

	decl, name := r.declarationFor(m, node)
	if name == "" {
		return nil
	}

	locations := collectUsages(m, decl, name, node)

	// The workspace index widens the search; kind filtering keeps only
	// entries matching what the cursor denotes.
	wantKinds := kindsFor(decl, node)
	for _, sym := range r.search(ctx, name) {
		if wantKinds[sym.Kind] {
			locations = append(locations, sym.Location())
		}
	}

	if includeDeclaration && decl != nil {
		locations = append(locations, localLocation(m, declarationRange(decl)))
	}
	return dedupe(locations)
}

// declarationFor identifies the declaration the cursor denotes, directly or
// through a bound usage.
func (r *Resolver) declarationFor(m *ast.Module, node ast.Node) (ast.Node, string) {
	switch n := node.(type) {
	case *ast.Parameter, *ast.Field, *ast.Property, *ast.DeclStmt, *ast.Method, *ast.Class:
		return node, declarationName(node)
	case *ast.VarExpr:
		if n.Decl != nil {
			return n.Decl, n.Name
		}
		if decl := findDeclarationByName(m, n.Name); decl != nil {
			return decl, n.Name
		}
		return nil, n.Name
	case *ast.MethodCallExpr:
		for _, cls := range m.Classes {
			for _, method := range cls.Methods {
				if method.Name == n.Name {
					return method, n.Name
				}
			}
		}
		for _, fn := range m.Methods {
			if fn.Name == n.Name {
				return fn, n.Name
			}
		}
		return nil, n.Name
	case *ast.PropertyExpr:
		if cls := receiverClass(m, n.Obj); cls != nil {
			for _, p := range cls.Properties {
				if p.Name == n.Name {
					return p, n.Name
				}
			}
			for _, f := range cls.Fields {
				if f.Name == n.Name {
					return f, n.Name
				}
			}
		}
		return nil, n.Name
	case *ast.ClassExpr:
		return classNamed(m, n.Name), n.Name
	case *ast.ConstructorCallExpr:
		return classNamed(m, n.Type.Simple()), n.Type.Simple()
	}
	return nil, ""
}

// collectUsages walks the module applying the variant-specific matcher.
func collectUsages(m *ast.Module, decl ast.Node, name string, origin ast.Node) []source.Location {
	var locations []source.Location
	add := func(rng source.Range) {
		locations = append(locations, localLocation(m, rng))
	}

	switch origin.(type) {
	case *ast.Method, *ast.MethodCallExpr:
		ast.Walk(m, func(n ast.Node) bool {
			if call, ok := n.(*ast.MethodCallExpr); ok && call.Name == name {
				add(call.NameRng)
			}
			return true
		})
	case *ast.Class, *ast.ClassExpr, *ast.ConstructorCallExpr:
		ast.Walk(m, func(n ast.Node) bool {
			switch u := n.(type) {
			case *ast.ClassExpr:
				if u.Name == name {
					add(u.Rng)
				}
			case *ast.ConstructorCallExpr:
				if u.Type.Simple() == name {
					add(u.Type.Rng)
				}
			}
			return true
		})
	case *ast.PropertyExpr, *ast.Field, *ast.Property:
		ast.Walk(m, func(n ast.Node) bool {
			switch u := n.(type) {
			case *ast.PropertyExpr:
				if u.Name == name {
					add(u.NameRng)
				}
			case *ast.VarExpr:
				if u.Name == name && u.Decl != nil && u.Decl == decl {
					add(u.Rng)
				}
			}
			return true
		})
	default:
		// Variables: name equality against the same declaration when bound,
		// bare name equality otherwise.
		ast.Walk(m, func(n ast.Node) bool {
			if u, ok := n.(*ast.VarExpr); ok && u.Name == name {
				if decl == nil || u.Decl == decl || u.Decl == nil {
					add(u.Rng)
				}
			}
			return true
		})
	}
	return locations
}

// kindsFor chooses which index entries can be references of the cursor's
// symbol.
func kindsFor(decl ast.Node, origin ast.Node) map[index.SymbolKind]bool {
	kinds := make(map[index.SymbolKind]bool)
	switch origin.(type) {
	case *ast.Method, *ast.MethodCallExpr:
		kinds[index.SymbolMethod] = true
	case *ast.Class, *ast.ClassExpr, *ast.ConstructorCallExpr:
		kinds[index.SymbolClass] = true
		kinds[index.SymbolInterface] = true
		kinds[index.SymbolEnum] = true
	case *ast.PropertyExpr:
		kinds[index.SymbolProperty] = true
		kinds[index.SymbolField] = true
	default:
		switch decl.(type) {
		case *ast.Field:
			kinds[index.SymbolField] = true
		case *ast.Property:
			kinds[index.SymbolProperty] = true
		case *ast.Method:
			kinds[index.SymbolMethod] = true
		}
	}
	return kinds
}

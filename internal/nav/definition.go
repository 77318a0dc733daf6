package nav

import (
	"context"

	"groovylsp/internal/ast"
	"groovylsp/internal/index"
	"groovylsp/internal/source"
)

// Definition resolves the declaration locations for the node at pos.
func (r *Resolver) Definition(ctx context.Context, m *ast.Module, pos source.Position) []source.Location {
	if m == nil {
		return nil
	}
	node := ast.NodeAt(m, pos)
	if node == nil {
		return nil
	}

	var locations []source.Location
	switch n := node.(type) {
	case *ast.VarExpr:
		locations = r.variableDefinition(m, n)
	case *ast.MethodCallExpr:
		locations = r.methodDefinition(ctx, m, n, pos)
	case *ast.PropertyExpr:
		locations = r.propertyDefinition(ctx, m, n)
	case *ast.ClassExpr:
		locations = r.classDefinition(ctx, m, n.Name)
	case *ast.ConstructorCallExpr:
		locations = r.classDefinition(ctx, m, n.Type.Simple())
	case *ast.Parameter, *ast.Field, *ast.Property, *ast.DeclStmt, *ast.Method, *ast.Class:
		// The cursor already sits on a declaration.
		locations = []source.Location{localLocation(m, declarationRange(node))}
	}
	return dedupe(locations)
}

func (r *Resolver) variableDefinition(m *ast.Module, v *ast.VarExpr) []source.Location {
	if v.Decl != nil {
		return []source.Location{localLocation(m, declarationRange(v.Decl))}
	}
	if decl := findDeclarationByName(m, v.Name); decl != nil {
		return []source.Location{localLocation(m, declarationRange(decl))}
	}
	return nil
}

// findDeclarationByName scans class contents, catch parameters, for-loop
// parameters, and top-level declarations for a matching name.
func findDeclarationByName(m *ast.Module, name string) ast.Node {
	var found ast.Node
	ast.Walk(m, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		switch d := n.(type) {
		case *ast.Field:
			if d.Name == name {
				found = d
			}
		case *ast.Property:
			if d.Name == name {
				found = d
			}
		case *ast.Parameter:
			if d.Name == name {
				found = d
			}
		case *ast.DeclStmt:
			if d.Name == name {
				found = d
			}
		}
		return true
	})
	return found
}

func (r *Resolver) methodDefinition(ctx context.Context, m *ast.Module, call *ast.MethodCallExpr, pos source.Position) []source.Location {
	var locations []source.Location

	// Enclosing class first, then every declared class and script function.
	if cls := ast.EnclosingClass(m, pos); cls != nil {
		for _, method := range cls.Methods {
			if method.Name == call.Name {
				locations = append(locations, localLocation(m, method.NameRng))
			}
		}
	}
	if len(locations) == 0 {
		for _, cls := range m.Classes {
			for _, method := range cls.Methods {
				if method.Name == call.Name {
					locations = append(locations, localLocation(m, method.NameRng))
				}
			}
		}
		for _, fn := range m.Methods {
			if fn.Name == call.Name {
				locations = append(locations, localLocation(m, fn.NameRng))
			}
		}
	}
	if len(locations) > 0 {
		return locations
	}

	for _, sym := range r.search(ctx, call.Name) {
		if sym.Kind == index.SymbolMethod {
			locations = append(locations, sym.Location())
		}
	}
	return locations
}

func (r *Resolver) propertyDefinition(ctx context.Context, m *ast.Module, prop *ast.PropertyExpr) []source.Location {
	if cls := receiverClass(m, prop.Obj); cls != nil {
		for _, p := range cls.Properties {
			if p.Name == prop.Name {
				return []source.Location{localLocation(m, p.NameRng)}
			}
		}
		for _, f := range cls.Fields {
			if f.Name == prop.Name {
				return []source.Location{localLocation(m, f.NameRng)}
			}
		}
	}
	var locations []source.Location
	for _, sym := range r.search(ctx, prop.Name) {
		if sym.Kind == index.SymbolProperty || sym.Kind == index.SymbolField {
			locations = append(locations, sym.Location())
		}
	}
	return locations
}

func (r *Resolver) classDefinition(ctx context.Context, m *ast.Module, name string) []source.Location {
	for _, cls := range m.Classes {
		if cls.Name == name {
			return []source.Location{localLocation(m, cls.NameRng)}
		}
	}
	var locations []source.Location
	for _, sym := range r.search(ctx, name) {
		if sym.Kind.IsClassLike() {
			locations = append(locations, sym.Location())
		}
	}
	return locations
}

// receiverClass resolves the local class a property access receiver denotes.
func receiverClass(m *ast.Module, obj ast.Expression) *ast.Class {
	switch o := obj.(type) {
	case *ast.ClassExpr:
		return classNamed(m, o.Name)
	case *ast.VarExpr:
		if o.Name == "this" {
			return ast.EnclosingClass(m, o.Rng.Start)
		}
		if o.Decl != nil {
			switch d := o.Decl.(type) {
			case *ast.DeclStmt:
				return classFromTypeOrInit(m, d.Type, d.Init)
			case *ast.Parameter:
				return classNamed(m, d.Type.Simple())
			case *ast.Field:
				return classFromTypeOrInit(m, d.Type, d.Init)
			case *ast.Property:
				return classFromTypeOrInit(m, d.Type, d.Init)
			}
		}
	case *ast.ConstructorCallExpr:
		return classNamed(m, o.Type.Simple())
	}
	return nil
}

func classFromTypeOrInit(m *ast.Module, t ast.TypeRef, init ast.Expression) *ast.Class {
	if !t.IsDynamic() {
		return classNamed(m, t.Simple())
	}
	if ctor, ok := init.(*ast.ConstructorCallExpr); ok {
		return classNamed(m, ctor.Type.Simple())
	}
	return nil
}

func classNamed(m *ast.Module, name string) *ast.Class {
	for _, cls := range m.Classes {
		if cls.Name == name {
			return cls
		}
	}
	return nil
}

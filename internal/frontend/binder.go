package frontend

import (
	"groovylsp/internal/ast"
)

// binder resolves variable references to their declarations and rewrites
// unresolved call/property receivers that name a class into class
// references. It runs only at the semantic phase and above.
type binder struct {
	module *ast.Module
	scopes []map[string]ast.Node
	// classNames covers locally declared classes and imported simple names.
	classNames map[string]bool
}

func bind(m *ast.Module) {
	b := &binder{module: m, classNames: make(map[string]bool)}
	for _, cls := range m.Classes {
		cls.Module = m
		b.classNames[cls.Name] = true
	}
	for _, imp := range m.Imports {
		b.classNames[imp.Simple()] = true
	}

	// Script scope: top-level declarations become visible in order.
	b.push()
	for _, fn := range m.Methods {
		b.bindMethod(fn)
	}
	for _, stmt := range m.Statements {
		b.bindStmt(stmt)
	}
	b.pop()

	for _, cls := range m.Classes {
		b.bindClass(cls)
	}
}

func (b *binder) push() {
	b.scopes = append(b.scopes, make(map[string]ast.Node))
}

func (b *binder) pop() {
	b.scopes = b.scopes[:len(b.scopes)-1]
}

func (b *binder) define(name string, decl ast.Node) {
	if name == "" {
		return
	}
	b.scopes[len(b.scopes)-1][name] = decl
}

func (b *binder) lookup(name string) ast.Node {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if decl, ok := b.scopes[i][name]; ok {
			return decl
		}
	}
	return nil
}

func (b *binder) bindClass(cls *ast.Class) {
	b.push()
	for _, f := range cls.Fields {
		b.define(f.Name, f)
	}
	for _, prop := range cls.Properties {
		b.define(prop.Name, prop)
	}
	for _, f := range cls.Fields {
		b.bindExpr(f.Init)
	}
	for _, prop := range cls.Properties {
		b.bindExpr(prop.Init)
	}
	for _, m := range cls.Methods {
		b.bindMethod(m)
	}
	b.pop()
}

func (b *binder) bindMethod(m *ast.Method) {
	b.push()
	for _, param := range m.Params {
		b.define(param.Name, param)
	}
	for _, stmt := range m.Body {
		b.bindStmt(stmt)
	}
	b.pop()
}

func (b *binder) bindStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case nil:
	case *ast.BlockStmt:
		if s == nil {
			return
		}
		b.push()
		for _, inner := range s.Stmts {
			b.bindStmt(inner)
		}
		b.pop()
	case *ast.ExprStmt:
		b.bindExpr(s.X)
	case *ast.DeclStmt:
		b.bindExpr(s.Init)
		b.define(s.Name, s)
	case *ast.ForStmt:
		b.bindExpr(s.Iterable)
		b.push()
		if s.Param != nil {
			b.define(s.Param.Name, s.Param)
		}
		if s.Body != nil {
			for _, inner := range s.Body.Stmts {
				b.bindStmt(inner)
			}
		}
		b.pop()
	case *ast.TryStmt:
		b.bindStmt(s.Body)
		for _, clause := range s.Catches {
			b.push()
			if clause.Param != nil {
				b.define(clause.Param.Name, clause.Param)
			}
			b.bindStmt(clause.Body)
			b.pop()
		}
		b.bindStmt(s.Finally)
	case *ast.IfStmt:
		b.bindExpr(s.Cond)
		b.bindStmt(s.Then)
		b.bindStmt(s.Else)
	case *ast.WhileStmt:
		b.bindExpr(s.Cond)
		b.bindStmt(s.Body)
	case *ast.ReturnStmt:
		b.bindExpr(s.X)
	}
}

func (b *binder) bindExpr(expr ast.Expression) {
	switch e := expr.(type) {
	case nil:
	case *ast.VarExpr:
		if e == nil || e.Name == "this" {
			return
		}
		e.Decl = b.lookup(e.Name)
	case *ast.PropertyExpr:
		b.bindExpr(e.Obj)
		e.Obj = b.rewriteClassRef(e.Obj)
	case *ast.MethodCallExpr:
		b.bindExpr(e.Obj)
		e.Obj = b.rewriteClassRef(e.Obj)
		for _, arg := range e.Args {
			b.bindExpr(arg)
		}
	case *ast.BinaryExpr:
		b.bindExpr(e.Left)
		b.bindExpr(e.Right)
	case *ast.UnaryExpr:
		b.bindExpr(e.X)
	case *ast.ListExpr:
		for _, elem := range e.Elems {
			b.bindExpr(elem)
		}
	case *ast.MapExpr:
		for _, entry := range e.Entries {
			// Bare map keys are names, not variable references.
			if _, bare := entry.Key.(*ast.VarExpr); !bare {
				b.bindExpr(entry.Key)
			}
			b.bindExpr(entry.Value)
		}
	case *ast.ConstructorCallExpr:
		for _, arg := range e.Args {
			b.bindExpr(arg)
		}
	case *ast.ClosureExpr:
		b.push()
		if len(e.Params) == 0 {
			// The implicit closure parameter.
			b.scopes[len(b.scopes)-1]["it"] = nil
		}
		for _, param := range e.Params {
			b.define(param.Name, param)
		}
		for _, stmt := range e.Body {
			b.bindStmt(stmt)
		}
		b.pop()
	case *ast.ConstExpr, *ast.ClassExpr:
	}
}

// rewriteClassRef turns an unresolved receiver that names a known or
// capitalized class into an explicit class reference.
func (b *binder) rewriteClassRef(obj ast.Expression) ast.Expression {
	v, ok := obj.(*ast.VarExpr)
	if !ok || v == nil || v.Decl != nil || v.Name == "this" {
		return obj
	}
	if b.classNames[v.Name] || startsUpper(v.Name) {
		return &ast.ClassExpr{Name: v.Name, Rng: v.Rng}
	}
	return obj
}

func startsUpper(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

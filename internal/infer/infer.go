// Package infer computes expression types over a semantic-phase tree. The
// contract is total: every expression gets a type, with java.lang.Object as
// the final fallback.
package infer

import (
	"strings"

	"groovylsp/internal/ast"
)

const (
	TypeObject  = "java.lang.Object"
	TypeString  = "java.lang.String"
	TypeInt     = "int"
	TypeLong    = "long"
	TypeDouble  = "double"
	TypeBoolean = "boolean"
	TypeList    = "java.util.List"
	TypeMap     = "java.util.Map"
	TypeClass   = "java.lang.Class"
	TypeClosure = "groovy.lang.Closure"
)

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"===": true, "!==": true, "instanceof": true, "in": true, "&&": true, "||": true,
}

// Type resolves the static type of an expression within its module. It never
// returns the empty string.
func Type(expr ast.Expression, m *ast.Module) string {
	ty := typeOf(expr, m, 0)
	if ty == "" {
		return TypeObject
	}
	return ty
}

const maxDepth = 32

func typeOf(expr ast.Expression, m *ast.Module, depth int) string {
	if expr == nil || depth > maxDepth {
		return TypeObject
	}
	switch e := expr.(type) {
	case *ast.VarExpr:
		return varType(e, m, depth)
	case *ast.ConstExpr:
		return constType(e)
	case *ast.PropertyExpr:
		return propertyType(e, m, depth)
	case *ast.MethodCallExpr:
		return callType(e, m, depth)
	case *ast.BinaryExpr:
		if comparisonOps[e.Op] {
			return TypeBoolean
		}
		return typeOf(e.Left, m, depth+1)
	case *ast.UnaryExpr:
		if e.Op == "!" {
			return TypeBoolean
		}
		return typeOf(e.X, m, depth+1)
	case *ast.ListExpr:
		return TypeList
	case *ast.MapExpr:
		return TypeMap
	case *ast.ClassExpr:
		return TypeClass
	case *ast.ConstructorCallExpr:
		if e.Type.Name != "" {
			return e.Type.Name
		}
		return TypeObject
	case *ast.ClosureExpr:
		return TypeClosure
	default:
		return TypeObject
	}
}

func declaredType(t ast.TypeRef) string {
	if t.IsDynamic() {
		return ""
	}
	return t.Name
}

func varType(e *ast.VarExpr, m *ast.Module, depth int) string {
	if e.Name == "this" {
		if cls := ast.EnclosingClass(m, e.Rng.Start); cls != nil {
			return cls.Name
		}
		return TypeObject
	}
	if decl := e.Decl; decl != nil {
		if ty := declTypeOf(decl, m, depth); ty != "" {
			return ty
		}
		return TypeObject
	}
	// Unresolved: search class contents and top-level declarations by name.
	if decl := scopeSearch(m, e.Name); decl != nil {
		if ty := declTypeOf(decl, m, depth); ty != "" {
			return ty
		}
	}
	return TypeObject
}

// declTypeOf resolves a declaration's type, following a dynamic
// declaration's initializer.
func declTypeOf(decl ast.Node, m *ast.Module, depth int) string {
	switch d := decl.(type) {
	case *ast.Parameter:
		return declaredType(d.Type)
	case *ast.Field:
		if ty := declaredType(d.Type); ty != "" {
			return ty
		}
		return typeOf(d.Init, m, depth+1)
	case *ast.Property:
		if ty := declaredType(d.Type); ty != "" {
			return ty
		}
		return typeOf(d.Init, m, depth+1)
	case *ast.DeclStmt:
		if ty := declaredType(d.Type); ty != "" {
			return ty
		}
		return typeOf(d.Init, m, depth+1)
	}
	return ""
}

// scopeSearch visits each class's contents and the top-level declaration
// statements for a declaration with the given name.
func scopeSearch(m *ast.Module, name string) ast.Node {
	if m == nil {
		return nil
	}
	for _, cls := range m.Classes {
		for _, f := range cls.Fields {
			if f.Name == name {
				return f
			}
		}
		for _, prop := range cls.Properties {
			if prop.Name == name {
				return prop
			}
		}
	}
	for _, stmt := range m.Statements {
		if decl, ok := stmt.(*ast.DeclStmt); ok && decl.Name == name {
			return decl
		}
	}
	return nil
}

func constType(e *ast.ConstExpr) string {
	switch v := e.Value.(type) {
	case string:
		return TypeString
	case int64:
		if v > 1<<31-1 || v < -(1<<31) {
			return TypeLong
		}
		return TypeInt
	case float64:
		return TypeDouble
	case bool:
		return TypeBoolean
	case nil:
		return TypeObject
	default:
		return TypeObject
	}
}

func propertyType(e *ast.PropertyExpr, m *ast.Module, depth int) string {
	ownerType := typeOf(e.Obj, m, depth+1)
	if cls := classByName(m, receiverClassName(e.Obj, ownerType)); cls != nil {
		if ty := memberType(cls, e.Name, m, depth); ty != "" {
			return ty
		}
	}
	return TypeObject
}

func callType(e *ast.MethodCallExpr, m *ast.Module, depth int) string {
	var cls *ast.Class
	if e.Obj == nil {
		cls = ast.EnclosingClass(m, e.Rng.Start)
	} else {
		ownerType := typeOf(e.Obj, m, depth+1)
		cls = classByName(m, receiverClassName(e.Obj, ownerType))
	}
	if cls != nil {
		for _, method := range cls.Methods {
			if method.Name == e.Name {
				if ty := declaredType(method.ReturnType); ty != "" {
					return ty
				}
				return TypeObject
			}
		}
		// Synthesized getter lookup: name() falls back to the property it reads.
		if prop := getterTarget(cls, e.Name); prop != "" {
			if ty := memberType(cls, prop, m, depth); ty != "" {
				return ty
			}
		}
	}
	// Script-level functions.
	if e.Obj == nil && m != nil {
		for _, fn := range m.Methods {
			if fn.Name == e.Name {
				if ty := declaredType(fn.ReturnType); ty != "" {
					return ty
				}
				return TypeObject
			}
		}
	}
	return TypeObject
}

// receiverClassName picks the class to resolve members on: a class
// reference names itself, anything else uses its inferred type.
func receiverClassName(obj ast.Expression, inferred string) string {
	if ref, ok := obj.(*ast.ClassExpr); ok {
		return ref.Name
	}
	return inferred
}

func classByName(m *ast.Module, name string) *ast.Class {
	if m == nil || name == "" {
		return nil
	}
	simple := name
	if idx := strings.LastIndexByte(simple, '.'); idx >= 0 {
		simple = simple[idx+1:]
	}
	for _, cls := range m.Classes {
		if cls.Name == name || cls.Name == simple {
			return cls
		}
	}
	return nil
}

// memberType resolves a name on a class: property first, then field, then
// getter-method return type.
func memberType(cls *ast.Class, name string, m *ast.Module, depth int) string {
	for _, prop := range cls.Properties {
		if prop.Name == name {
			if ty := declaredType(prop.Type); ty != "" {
				return ty
			}
			return typeOf(prop.Init, m, depth+1)
		}
	}
	for _, f := range cls.Fields {
		if f.Name == name {
			if ty := declaredType(f.Type); ty != "" {
				return ty
			}
			return typeOf(f.Init, m, depth+1)
		}
	}
	getter := "get" + capitalize(name)
	for _, method := range cls.Methods {
		if method.Name == getter {
			return declaredType(method.ReturnType)
		}
	}
	return ""
}

// getterTarget maps a getter call name to the property it reads.
func getterTarget(cls *ast.Class, callName string) string {
	if !strings.HasPrefix(callName, "get") || len(callName) < 4 {
		return ""
	}
	prop := strings.ToLower(callName[3:4]) + callName[4:]
	for _, p := range cls.Properties {
		if p.Name == prop {
			return prop
		}
	}
	for _, f := range cls.Fields {
		if f.Name == prop {
			return prop
		}
	}
	return ""
}

func capitalize(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Describe renders a short declaration signature for hover content.
func Describe(n ast.Node, m *ast.Module) string {
	switch d := n.(type) {
	case *ast.Parameter:
		return typeLabel(d.Type) + " " + d.Name
	case *ast.Field:
		return memberLabel(d.Type, d.Init, d.Name, m)
	case *ast.Property:
		return memberLabel(d.Type, d.Init, d.Name, m)
	case *ast.DeclStmt:
		return memberLabel(d.Type, d.Init, d.Name, m)
	case *ast.Method:
		var params []string
		for _, p := range d.Params {
			params = append(params, typeLabel(p.Type)+" "+p.Name)
		}
		return typeLabel(d.ReturnType) + " " + d.Name + "(" + strings.Join(params, ", ") + ")"
	case *ast.Class:
		label := d.Kind.String() + " " + d.Name
		if d.SuperClass.Name != "" {
			label += " extends " + d.SuperClass.Name
		}
		return label
	}
	return ""
}

func memberLabel(t ast.TypeRef, init ast.Expression, name string, m *ast.Module) string {
	if !t.IsDynamic() {
		return t.Name + " " + name
	}
	if init != nil {
		if ty := typeOf(init, m, 0); ty != "" && ty != TypeObject {
			return ty + " " + name
		}
	}
	return "def " + name
}

func typeLabel(t ast.TypeRef) string {
	if t.IsDynamic() {
		return "def"
	}
	return t.Name
}

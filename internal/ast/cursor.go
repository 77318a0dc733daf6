package ast

import "groovylsp/internal/source"

// matchable reports whether a node kind participates in position lookup.
// Containers whose ranges span the whole document (module) never match;
// declarations and expressions do.
func matchable(n Node) bool {
	switch n.(type) {
	case *Class, *Method, *Field, *Property, *Parameter:
		return true
	case *BlockStmt, *ExprStmt, *DeclStmt, *ForStmt, *TryStmt, *IfStmt, *WhileStmt, *ReturnStmt:
		return true
	case *VarExpr, *ConstExpr, *PropertyExpr, *MethodCallExpr, *BinaryExpr, *UnaryExpr,
		*ListExpr, *MapExpr, *ClassExpr, *ConstructorCallExpr, *ClosureExpr:
		return true
	}
	return false
}

// NodeAt returns the innermost node whose range contains the position.
// The walk is pre-order; among equally containing nodes the last visited
// wins, which selects the deepest node since children follow parents.
func NodeAt(m *Module, pos source.Position) Node {
	if m == nil {
		return nil
	}
	var found Node
	Walk(m, func(n Node) bool {
		if !matchable(n) {
			return true
		}
		if n.Range().Contains(pos) {
			found = n
		}
		return true
	})
	return found
}

// EnclosingClass returns the class whose range contains the position, if any.
func EnclosingClass(m *Module, pos source.Position) *Class {
	if m == nil {
		return nil
	}
	for _, cls := range m.Classes {
		if cls.Rng.Contains(pos) {
			return cls
		}
	}
	return nil
}

// EnclosingMethod returns the method of cls whose range contains pos.
func EnclosingMethod(cls *Class, pos source.Position) *Method {
	if cls == nil {
		return nil
	}
	for _, m := range cls.Methods {
		if m.Rng.Contains(pos) {
			return m
		}
	}
	return nil
}

package ast

import "groovylsp/internal/source"

// Expression is the expression variant of the tree.
type Expression interface {
	Node
	exprNode()
}

// VarExpr references a variable by name. Decl is the bound declaration:
// a *Parameter, *Field, *Property, or *DeclStmt, or nil when unbound.
type VarExpr struct {
	Name string
	Decl Node
	Rng  source.Range
}

// ConstExpr is a literal constant. Value holds the decoded Go value:
// string, int64, float64, bool, or nil.
type ConstExpr struct {
	Value any
	Raw   string
	Rng   source.Range
}

// PropertyExpr is a property access obj.Name.
type PropertyExpr struct {
	Obj     Expression
	Name    string
	NameRng source.Range
	Rng     source.Range
}

// MethodCallExpr is a call obj.Name(args); Obj is nil for implicit-this
// calls like println(x).
type MethodCallExpr struct {
	Obj     Expression
	Name    string
	NameRng source.Range
	Args    []Expression
	Rng     source.Range
}

// BinaryExpr is a binary operation, including assignment.
type BinaryExpr struct {
	Left  Expression
	Op    string
	Right Expression
	Rng   source.Range
}

// ListExpr is a list literal [a, b, c].
type ListExpr struct {
	Elems []Expression
	Rng   source.Range
}

// MapEntry is a key-value pair of a map literal.
type MapEntry struct {
	Key   Expression
	Value Expression
}

// MapExpr is a map literal [k: v].
type MapExpr struct {
	Entries []MapEntry
	Rng     source.Range
}

// ClassExpr references a class by name in expression position.
type ClassExpr struct {
	Name string
	Rng  source.Range
}

// ConstructorCallExpr is new Type(args).
type ConstructorCallExpr struct {
	Type TypeRef
	Args []Expression
	Rng  source.Range
}

// ClosureExpr is a Groovy closure literal { params -> stmts }.
type ClosureExpr struct {
	Params []*Parameter
	Body   []Statement
	Rng    source.Range
}

// UnaryExpr is a prefix operation such as !x or -x.
type UnaryExpr struct {
	Op  string
	X   Expression
	Rng source.Range
}

func (e *VarExpr) Range() source.Range             { return e.Rng }
func (e *ConstExpr) Range() source.Range           { return e.Rng }
func (e *PropertyExpr) Range() source.Range        { return e.Rng }
func (e *MethodCallExpr) Range() source.Range      { return e.Rng }
func (e *BinaryExpr) Range() source.Range          { return e.Rng }
func (e *ListExpr) Range() source.Range            { return e.Rng }
func (e *MapExpr) Range() source.Range             { return e.Rng }
func (e *ClassExpr) Range() source.Range           { return e.Rng }
func (e *ConstructorCallExpr) Range() source.Range { return e.Rng }
func (e *ClosureExpr) Range() source.Range         { return e.Rng }
func (e *UnaryExpr) Range() source.Range           { return e.Rng }

func (*VarExpr) exprNode()             {}
func (*ConstExpr) exprNode()           {}
func (*PropertyExpr) exprNode()        {}
func (*MethodCallExpr) exprNode()      {}
func (*BinaryExpr) exprNode()          {}
func (*ListExpr) exprNode()            {}
func (*MapExpr) exprNode()             {}
func (*ClassExpr) exprNode()           {}
func (*ConstructorCallExpr) exprNode() {}
func (*ClosureExpr) exprNode()         {}
func (*UnaryExpr) exprNode()           {}

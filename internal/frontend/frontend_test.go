package frontend

import (
	"testing"

	"groovylsp/internal/ast"
	"groovylsp/internal/compiler"
	"groovylsp/internal/source"
)

func compileOK(t *testing.T, text string) *ast.Module {
	t.Helper()
	sink := &compiler.ErrorCollector{}
	m := New(compiler.DefaultConfig()).Compile(text, "file:///test.groovy", compiler.PhaseSemantic, sink)
	if m == nil {
		t.Fatalf("no module produced")
	}
	if len(sink.Errors()) != 0 {
		t.Fatalf("unexpected errors: %+v", sink.Errors())
	}
	return m
}

func TestScriptDeclarationAndUse(t *testing.T) {
	m := compileOK(t, "def x = 10\nprintln x\n")
	if len(m.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(m.Statements))
	}
	decl, ok := m.Statements[0].(*ast.DeclStmt)
	if !ok {
		t.Fatalf("expected declaration, got %T", m.Statements[0])
	}
	if decl.Name != "x" {
		t.Fatalf("unexpected name %q", decl.Name)
	}
	if decl.NameRng.Start != (source.Position{Line: 1, Col: 5}) {
		t.Fatalf("declaration name at %s", decl.NameRng.Start)
	}
	stmt, ok := m.Statements[1].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected expression statement, got %T", m.Statements[1])
	}
	call, ok := stmt.X.(*ast.MethodCallExpr)
	if !ok {
		t.Fatalf("expected call, got %T", stmt.X)
	}
	if call.Name != "println" || len(call.Args) != 1 {
		t.Fatalf("unexpected call %+v", call)
	}
	use, ok := call.Args[0].(*ast.VarExpr)
	if !ok {
		t.Fatalf("expected variable argument, got %T", call.Args[0])
	}
	if use.Decl != decl {
		t.Fatalf("variable not bound to its declaration: %v", use.Decl)
	}
	if use.Rng.Start != (source.Position{Line: 2, Col: 9}) {
		t.Fatalf("use at %s", use.Rng.Start)
	}
}

func TestPrintlnWithParensBindsArgument(t *testing.T) {
	// `println(x)` parses as an implicit-this call with one argument.
	m := compileOK(t, "def x = 1\nprintln(x)\n")
	stmt := m.Statements[1].(*ast.ExprStmt)
	call := stmt.X.(*ast.MethodCallExpr)
	if call.Obj != nil {
		t.Fatalf("expected implicit receiver")
	}
	if _, ok := call.Args[0].(*ast.VarExpr); !ok {
		t.Fatalf("expected variable argument, got %T", call.Args[0])
	}
}

func TestForInLoop(t *testing.T) {
	m := compileOK(t, "for (String item in ['a','b']) {\n  println item\n}\n")
	loop, ok := m.Statements[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("expected for statement, got %T", m.Statements[0])
	}
	if loop.Param == nil || loop.Param.Name != "item" {
		t.Fatalf("unexpected loop parameter %+v", loop.Param)
	}
	if loop.Param.Type.Name != "String" {
		t.Fatalf("unexpected loop parameter type %q", loop.Param.Type.Name)
	}
	if loop.Param.NameRng.Start.Line != 1 {
		t.Fatalf("loop parameter not on line 1: %s", loop.Param.NameRng.Start)
	}
	if _, ok := loop.Iterable.(*ast.ListExpr); !ok {
		t.Fatalf("expected list iterable, got %T", loop.Iterable)
	}
	use := loop.Body.Stmts[0].(*ast.ExprStmt).X.(*ast.MethodCallExpr).Args[0].(*ast.VarExpr)
	if use.Decl != loop.Param {
		t.Fatalf("loop variable not bound to parameter")
	}
}

func TestClassMembers(t *testing.T) {
	text := `package demo

import java.util.concurrent.Callable
import groovy.transform.*

class Person extends Base implements Callable {
    private String secret
    String name
    int age

    String describe(String prefix) {
        return prefix + name
    }
}
`
	m := compileOK(t, text)
	if m.Package != "demo" {
		t.Fatalf("package %q", m.Package)
	}
	if len(m.Imports) != 1 || m.Imports[0].Name != "java.util.concurrent.Callable" {
		t.Fatalf("imports: %+v", m.Imports)
	}
	if len(m.StarImports) != 1 || m.StarImports[0].Package != "groovy.transform" {
		t.Fatalf("star imports: %+v", m.StarImports)
	}
	if len(m.Classes) != 1 {
		t.Fatalf("expected one class, got %d", len(m.Classes))
	}
	cls := m.Classes[0]
	if cls.Name != "Person" || cls.SuperClass.Name != "Base" {
		t.Fatalf("class %q extends %q", cls.Name, cls.SuperClass.Name)
	}
	if len(cls.Interfaces) != 1 || cls.Interfaces[0].Name != "Callable" {
		t.Fatalf("interfaces: %+v", cls.Interfaces)
	}
	if len(cls.Fields) != 1 || cls.Fields[0].Name != "secret" {
		t.Fatalf("fields: %+v", cls.Fields)
	}
	if len(cls.Properties) != 2 {
		t.Fatalf("properties: %+v", cls.Properties)
	}
	if len(cls.Methods) != 1 || cls.Methods[0].Name != "describe" {
		t.Fatalf("methods: %+v", cls.Methods)
	}
	method := cls.Methods[0]
	if method.ReturnType.Name != "String" || len(method.Params) != 1 {
		t.Fatalf("method signature: %+v", method)
	}
	if cls.Module != m {
		t.Fatalf("class not linked to module")
	}
}

func TestMethodCallOnClassReceiver(t *testing.T) {
	m := compileOK(t, "Utils.doSomething()\n")
	call := m.Statements[0].(*ast.ExprStmt).X.(*ast.MethodCallExpr)
	if call.Name != "doSomething" {
		t.Fatalf("call name %q", call.Name)
	}
	if _, ok := call.Obj.(*ast.ClassExpr); !ok {
		t.Fatalf("expected class receiver, got %T", call.Obj)
	}
}

func TestTryCatchBindsParameter(t *testing.T) {
	text := "try {\n  run()\n} catch (Exception e) {\n  println e\n}\n"
	m := compileOK(t, text)
	try := m.Statements[0].(*ast.TryStmt)
	if len(try.Catches) != 1 {
		t.Fatalf("catches: %+v", try.Catches)
	}
	param := try.Catches[0].Param
	if param == nil || param.Name != "e" || param.Type.Name != "Exception" {
		t.Fatalf("catch parameter: %+v", param)
	}
	use := try.Catches[0].Body.Stmts[0].(*ast.ExprStmt).X.(*ast.MethodCallExpr).Args[0].(*ast.VarExpr)
	if use.Decl != param {
		t.Fatalf("catch variable not bound")
	}
}

func TestSyntaxErrorStrayBrace(t *testing.T) {
	sink := &compiler.ErrorCollector{}
	m := New(compiler.DefaultConfig()).Compile("def hello( { return 'Hello' }", "file:///broken.groovy", compiler.PhaseSemantic, sink)
	if m == nil {
		t.Fatalf("expected a partial tree")
	}
	errs := sink.Errors()
	if len(errs) == 0 {
		t.Fatalf("expected a syntax error")
	}
	first := errs[0]
	if first.Line != 1 || first.Col != 12 {
		t.Fatalf("error at %d:%d, want 1:12", first.Line, first.Col)
	}
	if first.Kind.Severity() != 1 {
		t.Fatalf("expected error severity")
	}
}

func TestUnterminatedString(t *testing.T) {
	sink := &compiler.ErrorCollector{}
	New(compiler.DefaultConfig()).Compile("def s = 'oops\n", "file:///broken.groovy", compiler.PhaseSemantic, sink)
	found := false
	for _, d := range sink.Errors() {
		if d.Message == "unterminated string literal" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unterminated string diagnostic, got %+v", sink.Errors())
	}
}

func TestConvertPhaseSkipsBinding(t *testing.T) {
	sink := &compiler.ErrorCollector{}
	m := New(compiler.DefaultConfig()).Compile("def x = 1\nprintln x\n", "file:///t.groovy", compiler.PhaseConvert, sink)
	use := m.Statements[1].(*ast.ExprStmt).X.(*ast.MethodCallExpr).Args[0].(*ast.VarExpr)
	if use.Decl != nil {
		t.Fatalf("binding should not run at conversion phase")
	}
}

func TestMapAndListLiterals(t *testing.T) {
	m := compileOK(t, "def l = [1, 2, 3]\ndef mp = [name: 'x', age: 3]\ndef empty = [:]\n")
	if _, ok := m.Statements[0].(*ast.DeclStmt).Init.(*ast.ListExpr); !ok {
		t.Fatalf("expected list literal")
	}
	mp, ok := m.Statements[1].(*ast.DeclStmt).Init.(*ast.MapExpr)
	if !ok || len(mp.Entries) != 2 {
		t.Fatalf("expected map literal with 2 entries")
	}
	if _, ok := m.Statements[2].(*ast.DeclStmt).Init.(*ast.MapExpr); !ok {
		t.Fatalf("expected empty map literal")
	}
}

func TestConstructorCall(t *testing.T) {
	m := compileOK(t, "def p = new Person('ada')\n")
	ctor, ok := m.Statements[0].(*ast.DeclStmt).Init.(*ast.ConstructorCallExpr)
	if !ok {
		t.Fatalf("expected constructor call")
	}
	if ctor.Type.Name != "Person" || len(ctor.Args) != 1 {
		t.Fatalf("unexpected constructor %+v", ctor)
	}
}

func TestScriptMethodDeclaration(t *testing.T) {
	m := compileOK(t, "def greet(String name) {\n  return 'hi ' + name\n}\ngreet('x')\n")
	if len(m.Methods) != 1 || m.Methods[0].Name != "greet" {
		t.Fatalf("script methods: %+v", m.Methods)
	}
	if len(m.Methods[0].Params) != 1 {
		t.Fatalf("params: %+v", m.Methods[0].Params)
	}
}

package frontend

import (
	"strings"

	"groovylsp/internal/ast"
	"groovylsp/internal/source"
)

func (p *parser) parseStatement() ast.Statement {
	p.skipSeparators()
	t := p.cur()
	switch {
	case t.Kind == tokEOF:
		return nil
	case t.is("{"):
		return p.parseBlock()
	case t.isKeyword("for"):
		return p.parseFor()
	case t.isKeyword("try"):
		return p.parseTry()
	case t.isKeyword("if"):
		return p.parseIf()
	case t.isKeyword("while"):
		return p.parseWhile()
	case t.isKeyword("return"):
		return p.parseReturn()
	case t.isKeyword("def"):
		return p.parseDecl()
	case t.Kind == tokIdent && !t.isAnyKeyword() && p.atTypedDecl():
		return p.parseDecl()
	default:
		return p.parseExprStatement()
	}
}

// atTypedDecl reports whether the cursor sits on `Type name [= ...]`.
func (p *parser) atTypedDecl() bool {
	save := p.pos
	defer func() { p.pos = save }()
	typ := p.parseTypeSilent()
	if typ.Name == "" {
		return false
	}
	// `println x` is a command call, not a declaration: the leading name
	// must plausibly be a type.
	looksLikeType := typ.IsPrimitive() || startsUpper(typ.Simple()) || strings.Contains(typ.Name, ".")
	if !looksLikeType {
		return false
	}
	if p.cur().Kind != tokIdent || p.cur().isAnyKeyword() {
		return false
	}
	after := p.tokens[p.pos+1]
	return after.is("=") || after.Kind == tokNewline || after.is(";") || after.Kind == tokEOF
}

// parseTypeSilent parses a type without reporting diagnostics; used for
// statement disambiguation lookahead.
func (p *parser) parseTypeSilent() ast.TypeRef {
	saved := p.sink
	p.sink = nil
	defer func() { p.sink = saved }()
	if p.cur().Kind != tokIdent || p.cur().isAnyKeyword() {
		return ast.TypeRef{}
	}
	return p.parseType()
}

func (p *parser) parseDecl() ast.Statement {
	start := p.cur().Start
	var typ ast.TypeRef
	if p.cur().isKeyword("def") {
		t := p.advance()
		typ = ast.TypeRef{Name: "def", Rng: t.rng()}
	} else {
		typ = p.parseType()
	}
	if p.cur().Kind != tokIdent || p.cur().isAnyKeyword() {
		p.errorUnexpected(p.cur())
		p.syncTo()
		return nil
	}
	name := p.advance()
	decl := &ast.DeclStmt{
		Name:    name.Text,
		NameRng: name.rng(),
		Type:    typ,
	}
	if p.accept("=") {
		decl.Init = p.parseExpr()
	}
	decl.Rng = source.Range{Start: start, End: p.prevEnd()}
	return decl
}

func (p *parser) parseBlock() *ast.BlockStmt {
	start, ok := p.expect("{", "block")
	if !ok {
		return nil
	}
	block := &ast.BlockStmt{}
	for {
		p.skipSeparators()
		t := p.cur()
		if t.is("}") {
			p.advance()
			break
		}
		if t.Kind == tokEOF {
			p.errorUnexpected(t)
			break
		}
		before := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		if p.pos == before {
			p.errorUnexpected(p.cur())
			p.advance()
		}
	}
	block.Rng = source.Range{Start: start.Start, End: p.prevEnd()}
	return block
}

func (p *parser) parseFor() ast.Statement {
	start := p.advance().Start // for
	if _, ok := p.expect("(", "for statement"); !ok {
		p.syncTo()
		return nil
	}
	p.skipNewlines()

	var param *ast.Parameter
	if p.cur().isKeyword("def") {
		defTok := p.advance()
		if p.cur().Kind == tokIdent && !p.cur().isAnyKeyword() {
			name := p.advance()
			param = &ast.Parameter{
				Name:    name.Text,
				NameRng: name.rng(),
				Type:    ast.TypeRef{Name: "def", Rng: defTok.rng()},
				Rng:     source.Range{Start: defTok.Start, End: name.End},
			}
		}
	} else if p.cur().Kind == tokIdent && !p.cur().isAnyKeyword() {
		param = p.parseParam()
	}
	if param == nil {
		p.errorUnexpected(p.cur())
		p.syncTo(")")
		p.accept(")")
		return nil
	}

	if !p.cur().isKeyword("in") {
		p.expect("in", "for statement")
		p.syncTo(")")
		p.accept(")")
		return nil
	}
	p.advance() // in
	iterable := p.parseExpr()
	p.expect(")", "for statement")
	p.skipNewlines()

	body := p.parseLoopBody()
	return &ast.ForStmt{
		Param:    param,
		Iterable: iterable,
		Body:     body,
		Rng:      source.Range{Start: start, End: p.prevEnd()},
	}
}

// parseLoopBody wraps a single statement in a block when braces are omitted.
func (p *parser) parseLoopBody() *ast.BlockStmt {
	if p.cur().is("{") {
		return p.parseBlock()
	}
	stmt := p.parseStatement()
	if stmt == nil {
		return &ast.BlockStmt{}
	}
	return &ast.BlockStmt{Stmts: []ast.Statement{stmt}, Rng: stmt.Range()}
}

func (p *parser) parseTry() ast.Statement {
	start := p.advance().Start // try
	p.skipNewlines()
	body := p.parseBlock()
	try := &ast.TryStmt{Body: body}
	for {
		p.skipNewlines()
		if !p.cur().isKeyword("catch") {
			break
		}
		p.advance()
		if _, ok := p.expect("(", "catch clause"); !ok {
			break
		}
		p.skipNewlines()
		var param *ast.Parameter
		if p.cur().Kind == tokIdent {
			param = p.parseParam()
		} else {
			p.errorUnexpected(p.cur())
		}
		p.expect(")", "catch clause")
		p.skipNewlines()
		catchBody := p.parseBlock()
		clause := &ast.CatchClause{Param: param, Body: catchBody}
		end := p.prevEnd()
		if param != nil {
			clause.Rng = source.Range{Start: param.Rng.Start, End: end}
		} else {
			clause.Rng = source.Range{Start: start, End: end}
		}
		try.Catches = append(try.Catches, clause)
	}
	p.skipNewlines()
	if p.cur().isKeyword("finally") {
		p.advance()
		p.skipNewlines()
		try.Finally = p.parseBlock()
	}
	try.Rng = source.Range{Start: start, End: p.prevEnd()}
	return try
}

func (p *parser) parseIf() ast.Statement {
	start := p.advance().Start // if
	if _, ok := p.expect("(", "if statement"); !ok {
		p.syncTo()
		return nil
	}
	cond := p.parseExpr()
	p.expect(")", "if statement")
	p.skipNewlines()
	then := p.parseStatement()
	stmt := &ast.IfStmt{Cond: cond, Then: then}
	p.skipNewlines()
	if p.cur().isKeyword("else") {
		p.advance()
		p.skipNewlines()
		stmt.Else = p.parseStatement()
	}
	stmt.Rng = source.Range{Start: start, End: p.prevEnd()}
	return stmt
}

func (p *parser) parseWhile() ast.Statement {
	start := p.advance().Start // while
	if _, ok := p.expect("(", "while statement"); !ok {
		p.syncTo()
		return nil
	}
	cond := p.parseExpr()
	p.expect(")", "while statement")
	p.skipNewlines()
	body := p.parseStatement()
	return &ast.WhileStmt{Cond: cond, Body: body, Rng: source.Range{Start: start, End: p.prevEnd()}}
}

func (p *parser) parseReturn() ast.Statement {
	start := p.advance() // return
	stmt := &ast.ReturnStmt{}
	if p.cur().Kind != tokNewline && !p.cur().is(";") && !p.cur().is("}") && p.cur().Kind != tokEOF {
		stmt.X = p.parseExpr()
	}
	stmt.Rng = source.Range{Start: start.Start, End: p.prevEnd()}
	return stmt
}

func (p *parser) parseExprStatement() ast.Statement {
	before := p.pos
	x := p.parseExpr()
	if x == nil {
		if p.pos == before {
			p.errorUnexpected(p.cur())
			p.advance()
		}
		return nil
	}
	// Command syntax: `println x` is a parenthesis-free call.
	if v, ok := x.(*ast.VarExpr); ok && p.atCommandArgument() {
		args := []ast.Expression{p.parseExpr()}
		for p.accept(",") {
			p.skipNewlines()
			arg := p.parseExpr()
			if arg == nil {
				break
			}
			args = append(args, arg)
		}
		x = &ast.MethodCallExpr{
			Name:    v.Name,
			NameRng: v.Rng,
			Args:    args,
			Rng:     source.Range{Start: v.Rng.Start, End: p.prevEnd()},
		}
	}
	return &ast.ExprStmt{X: x, Rng: x.Range()}
}

// atCommandArgument reports whether the cursor could begin the argument of a
// parenthesis-free call.
func (p *parser) atCommandArgument() bool {
	t := p.cur()
	switch t.Kind {
	case tokNumber, tokString:
		return true
	case tokIdent:
		if !t.isAnyKeyword() {
			return true
		}
		return t.isKeyword("true") || t.isKeyword("false") || t.isKeyword("null") ||
			t.isKeyword("new") || t.isKeyword("this")
	case tokOp:
		return t.is("[")
	}
	return false
}

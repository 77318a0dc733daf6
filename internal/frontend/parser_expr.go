package frontend

import (
	"strconv"
	"strings"

	"groovylsp/internal/ast"
	"groovylsp/internal/source"
)

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
}

func (p *parser) parseExpr() ast.Expression {
	return p.parseAssign()
}

func (p *parser) parseAssign() ast.Expression {
	left := p.parseOr()
	if left == nil {
		return nil
	}
	if p.cur().Kind == tokOp && assignOps[p.cur().Text] {
		op := p.advance().Text
		right := p.parseAssign()
		return p.binary(left, op, right)
	}
	return left
}

func (p *parser) parseOr() ast.Expression {
	left := p.parseAnd()
	for left != nil && p.cur().is("||") {
		op := p.advance().Text
		left = p.binary(left, op, p.parseAnd())
	}
	return left
}

func (p *parser) parseAnd() ast.Expression {
	left := p.parseEquality()
	for left != nil && p.cur().is("&&") {
		op := p.advance().Text
		left = p.binary(left, op, p.parseEquality())
	}
	return left
}

func (p *parser) parseEquality() ast.Expression {
	left := p.parseRelational()
	for left != nil && (p.cur().is("==") || p.cur().is("!=") || p.cur().is("=~")) {
		op := p.advance().Text
		left = p.binary(left, op, p.parseRelational())
	}
	return left
}

func (p *parser) parseRelational() ast.Expression {
	left := p.parseRange()
	for left != nil {
		t := p.cur()
		switch {
		case t.is("<") || t.is(">") || t.is("<=") || t.is(">=") || t.is("<=>"):
			op := p.advance().Text
			left = p.binary(left, op, p.parseRange())
		case t.isKeyword("instanceof") || t.isKeyword("in"):
			op := p.advance().Text
			left = p.binary(left, op, p.parseRange())
		default:
			return left
		}
	}
	return left
}

func (p *parser) parseRange() ast.Expression {
	left := p.parseAdditive()
	for left != nil && (p.cur().is("..") || p.cur().is("..<")) {
		op := p.advance().Text
		left = p.binary(left, op, p.parseAdditive())
	}
	return left
}

func (p *parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for left != nil && (p.cur().is("+") || p.cur().is("-")) {
		op := p.advance().Text
		left = p.binary(left, op, p.parseMultiplicative())
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expression {
	left := p.parseUnary()
	for left != nil && (p.cur().is("*") || p.cur().is("/") || p.cur().is("%")) {
		op := p.advance().Text
		left = p.binary(left, op, p.parseUnary())
	}
	return left
}

func (p *parser) binary(left ast.Expression, op string, right ast.Expression) ast.Expression {
	rng := left.Range()
	if right != nil {
		rng = rng.Cover(right.Range())
	} else {
		rng.End = p.prevEnd()
	}
	return &ast.BinaryExpr{Left: left, Op: op, Right: right, Rng: rng}
}

func (p *parser) parseUnary() ast.Expression {
	t := p.cur()
	if t.is("!") || t.is("-") || t.is("+") {
		op := p.advance()
		x := p.parseUnary()
		rng := op.rng()
		if x != nil {
			rng = rng.Cover(x.Range())
		}
		return &ast.UnaryExpr{Op: op.Text, X: x, Rng: rng}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() ast.Expression {
	x := p.parsePrimary()
	for x != nil {
		t := p.cur()
		switch {
		case t.is(".") || t.is("?."):
			p.advance()
			if p.cur().Kind != tokIdent {
				p.errorUnexpected(p.cur())
				return x
			}
			name := p.advance()
			if p.cur().is("(") && p.tokens[p.pos].is("(") {
				args := p.parseCallArgs()
				x = &ast.MethodCallExpr{
					Obj:     x,
					Name:    name.Text,
					NameRng: name.rng(),
					Args:    args,
					Rng:     source.Range{Start: x.Range().Start, End: p.prevEnd()},
				}
				continue
			}
			x = &ast.PropertyExpr{
				Obj:     x,
				Name:    name.Text,
				NameRng: name.rng(),
				Rng:     source.Range{Start: x.Range().Start, End: name.End},
			}
		case t.is("("):
			v, ok := x.(*ast.VarExpr)
			if !ok {
				return x
			}
			args := p.parseCallArgs()
			x = &ast.MethodCallExpr{
				Name:    v.Name,
				NameRng: v.Rng,
				Args:    args,
				Rng:     source.Range{Start: v.Rng.Start, End: p.prevEnd()},
			}
		case t.is("++") || t.is("--"):
			op := p.advance()
			x = &ast.UnaryExpr{Op: op.Text, X: x, Rng: source.Range{Start: x.Range().Start, End: op.End}}
		default:
			return x
		}
	}
	return x
}

func (p *parser) parseCallArgs() []ast.Expression {
	p.advance() // (
	var args []ast.Expression
	p.skipNewlines()
	if p.accept(")") {
		return args
	}
	for {
		p.skipNewlines()
		arg := p.parseExpr()
		if arg == nil {
			p.syncTo(")", ",")
			if p.accept(",") {
				continue
			}
			break
		}
		args = append(args, arg)
		p.skipNewlines()
		if p.accept(",") {
			continue
		}
		break
	}
	p.expect(")", "argument list")
	return args
}

func (p *parser) parsePrimary() ast.Expression {
	t := p.cur()
	switch {
	case t.Kind == tokNumber:
		p.advance()
		return numberConst(t)
	case t.Kind == tokString:
		p.advance()
		return &ast.ConstExpr{Value: t.Text, Raw: t.Text, Rng: t.rng()}
	case t.isKeyword("true"), t.isKeyword("false"):
		p.advance()
		return &ast.ConstExpr{Value: t.Text == "true", Raw: t.Text, Rng: t.rng()}
	case t.isKeyword("null"):
		p.advance()
		return &ast.ConstExpr{Value: nil, Raw: "null", Rng: t.rng()}
	case t.isKeyword("this"):
		p.advance()
		return &ast.VarExpr{Name: "this", Rng: t.rng()}
	case t.isKeyword("new"):
		return p.parseConstructorCall()
	case t.is("("):
		p.advance()
		x := p.parseExpr()
		p.expect(")", "parenthesized expression")
		return x
	case t.is("["):
		return p.parseListOrMap()
	case t.is("{"):
		return p.parseClosure()
	case t.Kind == tokIdent && !t.isAnyKeyword():
		p.advance()
		return &ast.VarExpr{Name: t.Text, Rng: t.rng()}
	default:
		p.errorUnexpected(t)
		return nil
	}
}

func numberConst(t token) *ast.ConstExpr {
	raw := t.Text
	trimmed := strings.TrimRight(raw, "lLgGiIdDfF")
	if strings.ContainsAny(trimmed, ".eE") && !strings.HasPrefix(trimmed, "0x") {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return &ast.ConstExpr{Value: f, Raw: raw, Rng: t.rng()}
		}
	}
	if n, err := strconv.ParseInt(trimmed, 0, 64); err == nil {
		return &ast.ConstExpr{Value: n, Raw: raw, Rng: t.rng()}
	}
	return &ast.ConstExpr{Value: raw, Raw: raw, Rng: t.rng()}
}

func (p *parser) parseConstructorCall() ast.Expression {
	start := p.advance().Start // new
	typ := p.parseType()
	call := &ast.ConstructorCallExpr{Type: typ}
	if p.cur().is("(") {
		call.Args = p.parseCallArgs()
	}
	call.Rng = source.Range{Start: start, End: p.prevEnd()}
	return call
}

func (p *parser) parseListOrMap() ast.Expression {
	start := p.advance() // [
	p.skipNewlines()

	// Empty map [:]
	if p.cur().is(":") && p.peek(1).is("]") {
		p.advance()
		p.advance()
		return &ast.MapExpr{Rng: source.Range{Start: start.Start, End: p.prevEnd()}}
	}
	// Empty list []
	if p.accept("]") {
		return &ast.ListExpr{Rng: source.Range{Start: start.Start, End: p.prevEnd()}}
	}

	first := p.parseExpr()
	p.skipNewlines()
	if p.accept(":") {
		m := &ast.MapExpr{}
		value := p.parseExpr()
		m.Entries = append(m.Entries, ast.MapEntry{Key: first, Value: value})
		for {
			p.skipNewlines()
			if !p.accept(",") {
				break
			}
			p.skipNewlines()
			key := p.parseExpr()
			if _, ok := p.expect(":", "map literal"); !ok {
				break
			}
			val := p.parseExpr()
			m.Entries = append(m.Entries, ast.MapEntry{Key: key, Value: val})
		}
		p.expect("]", "map literal")
		m.Rng = source.Range{Start: start.Start, End: p.prevEnd()}
		return m
	}

	list := &ast.ListExpr{}
	if first != nil {
		list.Elems = append(list.Elems, first)
	}
	for {
		p.skipNewlines()
		if !p.accept(",") {
			break
		}
		p.skipNewlines()
		elem := p.parseExpr()
		if elem == nil {
			break
		}
		list.Elems = append(list.Elems, elem)
	}
	p.expect("]", "list literal")
	list.Rng = source.Range{Start: start.Start, End: p.prevEnd()}
	return list
}

// parseClosure parses { [params ->] statements }.
func (p *parser) parseClosure() ast.Expression {
	start := p.advance() // {
	closure := &ast.ClosureExpr{}

	// Speculative parameter list: identifiers (optionally typed) up to '->'.
	save := p.pos
	var params []*ast.Parameter
	ok := false
	for {
		p.skipNewlines()
		if p.cur().is("->") {
			p.advance()
			ok = true
			break
		}
		if p.cur().Kind != tokIdent || p.cur().isAnyKeyword() {
			break
		}
		params = append(params, p.parseParam())
		p.skipNewlines()
		if p.accept(",") {
			continue
		}
		if p.cur().is("->") {
			p.advance()
			ok = true
		}
		break
	}
	if ok {
		closure.Params = params
	} else {
		p.pos = save
	}

	for {
		p.skipSeparators()
		if p.cur().is("}") {
			p.advance()
			break
		}
		if p.cur().Kind == tokEOF {
			p.errorUnexpected(p.cur())
			break
		}
		before := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			closure.Body = append(closure.Body, stmt)
		}
		if p.pos == before {
			p.errorUnexpected(p.cur())
			p.advance()
		}
	}
	closure.Rng = source.Range{Start: start.Start, End: p.prevEnd()}
	return closure
}

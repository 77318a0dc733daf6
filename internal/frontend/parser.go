package frontend

import (
	"fmt"
	"strings"

	"groovylsp/internal/ast"
	"groovylsp/internal/diag"
	"groovylsp/internal/source"
)

type parser struct {
	tokens []token
	pos    int
	id     source.ID
	sink   *errorSink
}

func (p *parser) cur() token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *parser) peek(ahead int) token {
	idx := p.pos + ahead
	for idx < len(p.tokens) && p.tokens[idx].Kind == tokNewline {
		idx++
	}
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *parser) advance() token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) prevEnd() source.Position {
	for i := p.pos - 1; i >= 0; i-- {
		if p.tokens[i].Kind != tokNewline {
			return p.tokens[i].End
		}
	}
	return source.Position{Line: 1, Col: 1}
}

func (p *parser) skipNewlines() {
	for p.cur().Kind == tokNewline {
		p.advance()
	}
}

func (p *parser) skipSeparators() {
	for p.cur().Kind == tokNewline || p.cur().is(";") {
		p.advance()
	}
}

func (p *parser) accept(text string) bool {
	if p.cur().is(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) errorUnexpected(t token) {
	if t.Kind == tokEOF {
		p.sink.report(diag.Diagnostic{
			Message: "unexpected end of file",
			Line:    t.Start.Line,
			Col:     t.Start.Col,
			Source:  p.id,
			Kind:    diag.KindSyntax,
		})
		return
	}
	p.sink.report(diag.Diagnostic{
		Message: fmt.Sprintf("unexpected token: %s", t.Text),
		Line:    t.Start.Line,
		Col:     t.Start.Col,
		Source:  p.id,
		Kind:    diag.KindSyntax,
	})
}

func (p *parser) expect(text, context string) (token, bool) {
	if p.cur().is(text) {
		return p.advance(), true
	}
	t := p.cur()
	if t.Kind == tokEOF {
		p.errorUnexpected(t)
	} else {
		p.sink.report(diag.Diagnostic{
			Message: fmt.Sprintf("expecting '%s' in %s but found '%s'", text, context, t.Text),
			Line:    t.Start.Line,
			Col:     t.Start.Col,
			Source:  p.id,
			Kind:    diag.KindSyntax,
		})
	}
	return t, false
}

// syncTo skips tokens until one of the stop texts, a newline, or EOF.
func (p *parser) syncTo(stops ...string) {
	for {
		t := p.cur()
		if t.Kind == tokEOF || t.Kind == tokNewline {
			return
		}
		for _, s := range stops {
			if t.is(s) {
				return
			}
		}
		p.advance()
	}
}

// ---- module ----

func (p *parser) parseModule() *ast.Module {
	m := &ast.Module{Source: p.id}

	p.skipSeparators()
	if p.cur().isKeyword("package") {
		p.advance()
		name, _ := p.parseQName()
		m.Package = name
		p.skipSeparators()
	}

	for p.cur().isKeyword("import") {
		p.parseImport(m)
		p.skipSeparators()
	}

	for p.cur().Kind != tokEOF {
		p.skipSeparators()
		if p.cur().Kind == tokEOF {
			break
		}
		if p.atClassDecl() {
			if cls := p.parseClass(m); cls != nil {
				m.Classes = append(m.Classes, cls)
			}
			continue
		}
		if p.atScriptMethod() {
			def := p.advance()
			if fn := p.parseMethodRest(ast.TypeRef{Name: "def", Rng: def.rng()}, nil, false); fn != nil {
				m.Methods = append(m.Methods, fn)
			}
			continue
		}
		before := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			m.Statements = append(m.Statements, stmt)
		}
		if p.pos == before {
			p.errorUnexpected(p.cur())
			p.advance()
		}
	}

	m.Rng = source.Range{Start: source.Position{Line: 1, Col: 1}, End: p.prevEnd()}
	return m
}

func (p *parser) parseQName() (string, source.Range) {
	start := p.cur().Start
	var parts []string
	if p.cur().Kind != tokIdent {
		p.errorUnexpected(p.cur())
		return "", source.Range{Start: start, End: start}
	}
	parts = append(parts, p.advance().Text)
	for p.cur().is(".") && p.tokens[p.pos+1].Kind == tokIdent {
		p.advance()
		parts = append(parts, p.advance().Text)
	}
	return strings.Join(parts, "."), source.Range{Start: start, End: p.prevEnd()}
}

func (p *parser) parseImport(m *ast.Module) {
	start := p.advance().Start // import keyword
	if p.cur().Kind != tokIdent {
		p.errorUnexpected(p.cur())
		p.syncTo()
		return
	}
	var parts []string
	parts = append(parts, p.advance().Text)
	star := false
	for p.cur().is(".") {
		p.advance()
		if p.cur().is("*") {
			p.advance()
			star = true
			break
		}
		if p.cur().Kind != tokIdent {
			p.sink.report(diag.Diagnostic{
				Message: fmt.Sprintf("invalid import: expected identifier, found '%s'", p.cur().Text),
				Line:    p.cur().Start.Line,
				Col:     p.cur().Start.Col,
				Source:  p.id,
				Kind:    diag.KindSemantic,
			})
			p.syncTo()
			return
		}
		parts = append(parts, p.advance().Text)
	}
	rng := source.Range{Start: start, End: p.prevEnd()}
	if star {
		m.StarImports = append(m.StarImports, &ast.StarImport{
			Package: strings.Join(parts, "."),
			Rng:     rng,
		})
		return
	}
	imp := &ast.Import{Name: strings.Join(parts, "."), Rng: rng}
	if p.cur().isKeyword("as") {
		p.advance()
		if p.cur().Kind == tokIdent {
			imp.Alias = p.advance().Text
			imp.Rng.End = p.prevEnd()
		}
	}
	m.Imports = append(m.Imports, imp)
}

// ---- classes ----

func (p *parser) atClassDecl() bool {
	save := p.pos
	defer func() { p.pos = save }()
	for p.cur().is("@") {
		p.advance()
		if p.cur().Kind == tokIdent {
			p.advance()
		}
		p.skipAnnotationArgs()
		p.skipNewlines()
	}
	for p.cur().Kind == tokIdent && (visibilityModifiers[p.cur().Text] || plainModifiers[p.cur().Text]) {
		p.advance()
	}
	t := p.cur()
	return t.isKeyword("class") || t.isKeyword("interface") || t.isKeyword("enum")
}

func (p *parser) atScriptMethod() bool {
	return p.cur().isKeyword("def") &&
		p.peek(1).Kind == tokIdent && !p.peek(1).isAnyKeyword() &&
		p.peek(2).is("(")
}

func (p *parser) skipAnnotationArgs() {
	if !p.cur().is("(") {
		return
	}
	depth := 0
	for p.cur().Kind != tokEOF {
		if p.cur().is("(") {
			depth++
		}
		if p.cur().is(")") {
			depth--
			p.advance()
			if depth == 0 {
				return
			}
			continue
		}
		p.advance()
	}
}

func (p *parser) parseAnnotations() []*ast.Annotation {
	var anns []*ast.Annotation
	for p.cur().is("@") {
		start := p.advance().Start
		if p.cur().Kind != tokIdent {
			p.errorUnexpected(p.cur())
			break
		}
		name := p.advance()
		anns = append(anns, &ast.Annotation{
			Name: name.Text,
			Rng:  source.Range{Start: start, End: name.End},
		})
		p.skipAnnotationArgs()
		p.skipNewlines()
	}
	return anns
}

type modifiers struct {
	visibility string
	static     bool
}

func (p *parser) parseModifiers() modifiers {
	var mods modifiers
	for p.cur().Kind == tokIdent {
		text := p.cur().Text
		if visibilityModifiers[text] {
			mods.visibility = text
			p.advance()
			continue
		}
		if plainModifiers[text] {
			if text == "static" {
				mods.static = true
			}
			p.advance()
			continue
		}
		break
	}
	return mods
}

func (p *parser) parseClass(m *ast.Module) *ast.Class {
	anns := p.parseAnnotations()
	start := p.cur().Start
	if len(anns) > 0 {
		start = anns[0].Rng.Start
	}
	p.parseModifiers()

	kind := ast.ClassOrdinary
	switch {
	case p.cur().isKeyword("interface"):
		kind = ast.ClassInterface
	case p.cur().isKeyword("enum"):
		kind = ast.ClassEnum
	}
	p.advance() // class/interface/enum keyword

	if p.cur().Kind != tokIdent {
		p.errorUnexpected(p.cur())
		p.syncTo("{")
	}
	cls := &ast.Class{Kind: kind, Annotations: anns, Module: m}
	if p.cur().Kind == tokIdent {
		name := p.advance()
		cls.Name = name.Text
		cls.NameRng = name.rng()
	}

	if p.cur().isKeyword("extends") {
		p.advance()
		cls.SuperClass = p.parseType()
	}
	if p.cur().isKeyword("implements") {
		p.advance()
		for {
			cls.Interfaces = append(cls.Interfaces, p.parseType())
			if !p.accept(",") {
				break
			}
		}
	}

	p.skipNewlines()
	if _, ok := p.expect("{", "class body"); !ok {
		p.syncTo("{")
		if !p.accept("{") {
			cls.Rng = source.Range{Start: start, End: p.prevEnd()}
			return cls
		}
	}
	p.parseClassBody(cls)
	cls.Rng = source.Range{Start: start, End: p.prevEnd()}
	return cls
}

func (p *parser) parseClassBody(cls *ast.Class) {
	for {
		p.skipSeparators()
		t := p.cur()
		if t.Kind == tokEOF {
			p.errorUnexpected(t)
			return
		}
		if t.is("}") {
			p.advance()
			return
		}
		before := p.pos
		p.parseMember(cls)
		if p.pos == before {
			p.errorUnexpected(p.cur())
			p.advance()
		}
	}
}

func (p *parser) parseMember(cls *ast.Class) {
	anns := p.parseAnnotations()
	mods := p.parseModifiers()

	// Enum constants: a bare identifier list.
	if cls.Kind == ast.ClassEnum && p.cur().Kind == tokIdent && !p.cur().isAnyKeyword() {
		next := p.peek(1)
		if next.is(",") || next.Kind == tokNewline || next.is("}") || next.is(";") || p.tokens[p.pos+1].Kind == tokNewline {
			for p.cur().Kind == tokIdent {
				name := p.advance()
				cls.Properties = append(cls.Properties, &ast.Property{
					Name:    name.Text,
					NameRng: name.rng(),
					Type:    ast.TypeRef{Name: cls.Name},
					Static:  true,
					Rng:     name.rng(),
				})
				if !p.accept(",") {
					break
				}
				p.skipNewlines()
			}
			return
		}
	}

	// Constructor: the class name immediately followed by '('.
	if p.cur().Kind == tokIdent && p.cur().Text == cls.Name && p.peek(1).is("(") && p.tokens[p.pos+1].is("(") {
		retType := ast.TypeRef{Name: cls.Name}
		if fn := p.parseMethodRest(retType, anns, mods.static); fn != nil {
			cls.Methods = append(cls.Methods, fn)
		}
		return
	}

	var declType ast.TypeRef
	dynamic := false
	if p.cur().isKeyword("def") {
		t := p.advance()
		declType = ast.TypeRef{Name: "def", Rng: t.rng()}
		dynamic = true
	} else {
		declType = p.parseType()
		if declType.Name == "" {
			return
		}
	}

	if p.cur().Kind != tokIdent || p.cur().isAnyKeyword() {
		p.errorUnexpected(p.cur())
		p.syncTo("}")
		return
	}
	name := p.cur()

	if p.tokens[p.pos+1].is("(") {
		if fn := p.parseMethodRest(declType, anns, mods.static); fn != nil {
			cls.Methods = append(cls.Methods, fn)
		}
		return
	}

	p.advance() // member name
	var init ast.Expression
	if p.accept("=") {
		init = p.parseExpr()
	}
	rng := source.Range{Start: declType.Rng.Start, End: p.prevEnd()}
	if dynamic || declType.Rng.Empty() {
		rng.Start = name.Start
	}
	if len(anns) > 0 {
		rng.Start = anns[0].Rng.Start
	}
	if mods.visibility != "" {
		cls.Fields = append(cls.Fields, &ast.Field{
			Name:        name.Text,
			NameRng:     name.rng(),
			Type:        declType,
			Annotations: anns,
			Init:        init,
			Static:      mods.static,
			Rng:         rng,
		})
		return
	}
	cls.Properties = append(cls.Properties, &ast.Property{
		Name:        name.Text,
		NameRng:     name.rng(),
		Type:        declType,
		Annotations: anns,
		Init:        init,
		Static:      mods.static,
		Rng:         rng,
	})
}

// parseMethodRest parses `name(params) [body]` with the return type already
// consumed. The current token must be the method name.
func (p *parser) parseMethodRest(retType ast.TypeRef, anns []*ast.Annotation, static bool) *ast.Method {
	name := p.advance()
	start := name.Start
	if !retType.Rng.Empty() {
		start = retType.Rng.Start
	}
	if len(anns) > 0 {
		start = anns[0].Rng.Start
	}
	fn := &ast.Method{
		Name:        name.Text,
		NameRng:     name.rng(),
		ReturnType:  retType,
		Annotations: anns,
		Static:      static,
	}
	if _, ok := p.expect("(", "method declaration"); ok {
		fn.Params = p.parseParams()
	}
	p.skipNewlines()
	if p.cur().is("{") {
		body := p.parseBlock()
		if body != nil {
			fn.Body = body.Stmts
		}
	}
	fn.Rng = source.Range{Start: start, End: p.prevEnd()}
	return fn
}

func (p *parser) parseParams() []*ast.Parameter {
	var params []*ast.Parameter
	p.skipNewlines()
	if p.accept(")") {
		return params
	}
	for {
		p.skipNewlines()
		if p.cur().Kind != tokIdent || p.cur().isAnyKeyword() {
			p.errorUnexpected(p.cur())
			p.syncTo(")", "{")
			p.accept(")")
			return params
		}
		param := p.parseParam()
		params = append(params, param)
		// Default values are accepted and ignored by the analysis core.
		if p.accept("=") {
			p.parseExpr()
		}
		if p.accept(",") {
			continue
		}
		break
	}
	p.expect(")", "parameter list")
	return params
}

func (p *parser) parseParam() *ast.Parameter {
	first := p.cur()
	next := p.tokens[p.pos+1]
	typed := (next.Kind == tokIdent && !next.isAnyKeyword()) || next.is("<") || next.is(".")
	if typed {
		typ := p.parseType()
		if p.cur().Kind == tokIdent && !p.cur().isAnyKeyword() {
			name := p.advance()
			return &ast.Parameter{
				Name:    name.Text,
				NameRng: name.rng(),
				Type:    typ,
				Rng:     source.Range{Start: first.Start, End: name.End},
			}
		}
		// The "type" was actually the bare parameter name.
		return &ast.Parameter{
			Name:    typ.Name,
			NameRng: typ.Rng,
			Type:    ast.TypeRef{Name: "def"},
			Rng:     typ.Rng,
		}
	}
	name := p.advance()
	return &ast.Parameter{
		Name:    name.Text,
		NameRng: name.rng(),
		Type:    ast.TypeRef{Name: "def"},
		Rng:     name.rng(),
	}
}

// parseType parses a possibly qualified, possibly generic type reference.
// Generic arguments are consumed but not modeled.
func (p *parser) parseType() ast.TypeRef {
	if p.cur().Kind != tokIdent {
		p.errorUnexpected(p.cur())
		return ast.TypeRef{}
	}
	name, rng := p.parseQName()
	if p.cur().is("<") {
		depth := 0
		for p.cur().Kind != tokEOF {
			if p.cur().is("<") {
				depth++
			}
			if p.cur().is(">") {
				depth--
				p.advance()
				if depth == 0 {
					break
				}
				continue
			}
			if p.cur().is(">>") {
				depth -= 2
				p.advance()
				if depth <= 0 {
					break
				}
				continue
			}
			p.advance()
		}
		rng.End = p.prevEnd()
	}
	for p.cur().is("[") && p.peek(1).is("]") {
		p.advance()
		p.advance()
		name += "[]"
		rng.End = p.prevEnd()
	}
	return ast.TypeRef{Name: name, Rng: rng}
}

// Package frontend implements the Groovy-subset parser behind the compiler
// facade. It covers the declarations, statements, and expressions the
// analysis core queries: packages, imports, classes with members, local
// declarations, for-in loops, try/catch, calls, property access, binary
// operators, literals, lists, maps, constructor calls, and closures.
//
// It is intentionally a subset: unsupported constructs surface as syntax
// diagnostics through the error collector, never as panics.
package frontend

import "groovylsp/internal/source"

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNewline
	tokIdent
	tokNumber
	tokString
	tokOp // operators and punctuation, identified by Text
)

type token struct {
	Kind tokenKind
	Text string
	// Start and End are 1-based; End is inclusive of the last character.
	Start source.Position
	End   source.Position
}

func (t token) rng() source.Range {
	return source.Range{Start: t.Start, End: t.End}
}

func (t token) is(text string) bool {
	return t.Kind == tokOp && t.Text == text
}

var keywords = map[string]bool{
	"package": true, "import": true, "as": true,
	"class": true, "interface": true, "enum": true,
	"extends": true, "implements": true,
	"def": true, "in": true, "new": true,
	"for": true, "while": true, "if": true, "else": true,
	"try": true, "catch": true, "finally": true,
	"return": true, "this": true,
	"true": true, "false": true, "null": true,
	"instanceof": true,
	"public": true, "private": true, "protected": true,
	"static": true, "final": true, "abstract": true,
}

func (t token) isKeyword(kw string) bool {
	return t.Kind == tokIdent && t.Text == kw && keywords[kw]
}

func (t token) isAnyKeyword() bool {
	return t.Kind == tokIdent && keywords[t.Text]
}

var visibilityModifiers = map[string]bool{
	"public": true, "private": true, "protected": true,
}

var plainModifiers = map[string]bool{
	"static": true, "final": true, "abstract": true,
}

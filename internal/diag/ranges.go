package diag

import (
	"regexp"
	"strings"

	"groovylsp/internal/source"
)

var (
	tokenRefPattern = regexp.MustCompile(`(?i)unexpected token:?\s*'?([^'\s,]+)'?`)
	identPattern    = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	quotedPattern   = regexp.MustCompile(`'([^']+)'|"([^"]+)"`)
)

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isOperatorByte(b byte) bool {
	switch b {
	case '+', '-', '*', '/', '%', '=', '<', '>', '!', '&', '|', '^', '?', ':', '~', '.':
		return true
	}
	return false
}

// RangeFor computes the protocol range a diagnostic should highlight, from
// the compiler-reported 1-based position and the document text. Heuristics
// widen the single reported position to the offending token's extent.
func RangeFor(message string, line, col uint32, text string) source.ProtocolRange {
	extLine := int(line) - 1
	if extLine < 0 {
		extLine = 0
	}
	extCol := int(col) - 1
	if extCol < 0 {
		extCol = 0
	}

	lineText := lineAt(text, extLine)
	lineLen := len(lineText)

	if extCol > lineLen {
		extCol = lineLen
	}

	start := source.ProtocolPosition{Line: extLine, Character: extCol}
	collapse := source.ProtocolRange{Start: start, End: start}

	lower := strings.ToLower(message)
	if strings.Contains(lower, "end of file") || strings.Contains(lower, "eof") {
		return collapse
	}

	// Skip leading whitespace under the reported column.
	for extCol < lineLen && (lineText[extCol] == ' ' || lineText[extCol] == '\t') {
		extCol++
	}
	start.Character = extCol
	if extCol >= lineLen {
		return source.ProtocolRange{
			Start: source.ProtocolPosition{Line: extLine, Character: lineLen},
			End:   source.ProtocolPosition{Line: extLine, Character: lineLen},
		}
	}

	// A message naming the offending token gets its literal extent.
	if m := tokenRefPattern.FindStringSubmatch(message); m != nil {
		token := m[1]
		end := extCol + len(token)
		if idx := strings.Index(lineText[extCol:], token); idx >= 0 {
			start.Character = extCol + idx
			end = start.Character + len(token)
		}
		if end > lineLen {
			end = lineLen
		}
		return source.ProtocolRange{Start: start, End: source.ProtocolPosition{Line: extLine, Character: end}}
	}

	// A message quoting an identifier highlights the identifier run.
	if m := quotedPattern.FindStringSubmatch(message); m != nil {
		quoted := m[1]
		if quoted == "" {
			quoted = m[2]
		}
		if identPattern.MatchString(quoted) {
			if loc := identPattern.FindStringIndex(lineText[extCol:]); loc != nil && loc[0] == 0 {
				return source.ProtocolRange{
					Start: start,
					End:   source.ProtocolPosition{Line: extLine, Character: extCol + loc[1]},
				}
			}
		}
	}

	// Operators: match a short run of operator characters.
	if isOperatorByte(lineText[extCol]) {
		end := extCol
		for end < lineLen && end-extCol < 3 && isOperatorByte(lineText[end]) {
			end++
		}
		return source.ProtocolRange{Start: start, End: source.ProtocolPosition{Line: extLine, Character: end}}
	}

	// Default: the word under the column.
	end := extCol
	for end < lineLen && isIdentByte(lineText[end]) {
		end++
	}
	if end == extCol {
		// Not an identifier character; highlight the single character.
		end = extCol + 1
		if end > lineLen {
			end = lineLen
		}
	}
	return source.ProtocolRange{Start: start, End: source.ProtocolPosition{Line: extLine, Character: end}}
}

// lineAt returns the 0-based line of text without its terminator, or "" when
// the line does not exist.
func lineAt(text string, line int) string {
	start := 0
	for i := 0; i < line; i++ {
		idx := strings.IndexByte(text[start:], '\n')
		if idx < 0 {
			return ""
		}
		start += idx + 1
	}
	end := strings.IndexByte(text[start:], '\n')
	if end < 0 {
		return strings.TrimSuffix(text[start:], "\r")
	}
	return strings.TrimSuffix(text[start:start+end], "\r")
}

// Refine fills in the diagnostic's code and range from its message and the
// document text.
func Refine(d Diagnostic, text string) Diagnostic {
	if d.Code == "" {
		d.Code = CodeFor(d.Kind, d.Message)
	}
	if d.Range == (source.ProtocolRange{}) {
		d.Range = RangeFor(d.Message, d.Line, d.Col, text)
	}
	return d
}

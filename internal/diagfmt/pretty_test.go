package diagfmt

import (
	"strings"
	"testing"

	"groovylsp/internal/diag"
	"groovylsp/internal/source"
)

func TestPrettyRendersHeaderAndCaret(t *testing.T) {
	text := "def hello( { return 'Hello' }\n"
	bag := diag.NewBag(10)
	bag.Add(diag.Refine(diag.Diagnostic{
		Message: "unexpected token: {",
		Line:    1,
		Col:     12,
		Source:  source.ID("broken.groovy"),
		Kind:    diag.KindSyntax,
	}, text))

	var out strings.Builder
	Pretty(&out, bag, text, PrettyOpts{})
	rendered := out.String()

	if !strings.Contains(rendered, "broken.groovy:1:12: ERROR groovy-1001: unexpected token: {") {
		t.Fatalf("header missing:\n%s", rendered)
	}
	if !strings.Contains(rendered, "def hello( { return 'Hello' }") {
		t.Fatalf("context line missing:\n%s", rendered)
	}
	if !strings.Contains(rendered, "^") {
		t.Fatalf("caret missing:\n%s", rendered)
	}
	caretLine := ""
	for _, line := range strings.Split(rendered, "\n") {
		if strings.Contains(line, "^") {
			caretLine = line
		}
	}
	if !strings.Contains(caretLine, strings.Repeat(" ", 11)+"^") {
		t.Fatalf("caret not under the stray brace:\n%s", rendered)
	}
}

func TestVisualWidthTabs(t *testing.T) {
	if got := visualWidthUpTo("\tx", 1, 4); got != 4 {
		t.Fatalf("tab width = %d", got)
	}
	if got := visualWidthUpTo("ab", 1, 4); got != 1 {
		t.Fatalf("ascii width = %d", got)
	}
}

func TestSummaryCounts(t *testing.T) {
	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{Message: "boom", Kind: diag.KindSyntax})
	bag.Add(diag.Diagnostic{Message: "meh", Kind: diag.KindWarning})

	var out strings.Builder
	Summary(&out, bag, 2)
	rendered := out.String()
	if !strings.Contains(rendered, "1 error(s)") || !strings.Contains(rendered, "1 warning(s)") {
		t.Fatalf("summary %q", rendered)
	}
}

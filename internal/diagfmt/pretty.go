// Package diagfmt renders diagnostics for terminal output: a header line
// per diagnostic, the offending source line with a caret underline, and a
// styled summary.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"groovylsp/internal/diag"
)

// PrettyOpts controls rendering.
type PrettyOpts struct {
	Color    bool
	TabWidth int
}

// visualWidthUpTo computes the visual width of a line prefix up to the given
// 0-based byte column, accounting for tabs and wide runes.
func visualWidthUpTo(s string, byteCol, tabWidth int) int {
	if byteCol <= 0 {
		return 0
	}
	bytePos := 0
	visualPos := 0
	for _, r := range s {
		if bytePos >= byteCol {
			break
		}
		if r == '\t' {
			visualPos = (visualPos + tabWidth) / tabWidth * tabWidth
		} else {
			visualPos += runewidth.RuneWidth(r)
		}
		bytePos += len(string(r))
	}
	return visualPos
}

// Pretty formats diagnostics for one document. The bag is expected to be
// sorted; text supplies the source lines for context rendering.
func Pretty(w io.Writer, bag *diag.Bag, text string, opts PrettyOpts) {
	var (
		errorColor     = color.New(color.FgRed, color.Bold)
		warningColor   = color.New(color.FgYellow, color.Bold)
		pathColor      = color.New(color.FgWhite, color.Bold)
		codeColor      = color.New(color.FgMagenta)
		lineNumColor   = color.New(color.FgBlue)
		underlineColor = color.New(color.FgRed, color.Bold)
	)

	prev := color.NoColor
	defer func() { color.NoColor = prev }()
	color.NoColor = !opts.Color

	tabWidth := opts.TabWidth
	if tabWidth <= 0 {
		tabWidth = 4
	}

	lines := strings.Split(text, "\n")

	for idx, d := range bag.Items() {
		if idx > 0 {
			fmt.Fprintln(w)
		}

		sevStr := d.Kind.Severity().String()
		sevColored := sevStr
		switch d.Kind.Severity() {
		case diag.SevError:
			sevColored = errorColor.Sprint(sevStr)
		case diag.SevWarning:
			sevColored = warningColor.Sprint(sevStr)
		}

		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			pathColor.Sprint(string(d.Source)),
			d.Line,
			d.Col,
			sevColored,
			codeColor.Sprint(d.Code),
			d.Message,
		)

		lineIdx := int(d.Line) - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			continue
		}
		lineText := strings.TrimSuffix(lines[lineIdx], "\r")
		fmt.Fprintf(w, "  %s %s\n", lineNumColor.Sprintf("%4d |", d.Line), expandTabs(lineText, tabWidth))

		startCol := d.Range.Start.Character
		endCol := d.Range.End.Character
		if endCol <= startCol {
			endCol = startCol + 1
		}
		if startCol > len(lineText) {
			startCol = len(lineText)
		}
		if endCol > len(lineText)+1 {
			endCol = len(lineText) + 1
		}
		pad := visualWidthUpTo(lineText, startCol, tabWidth)
		width := visualWidthUpTo(lineText, endCol, tabWidth) - pad
		if width < 1 {
			width = 1
		}
		underline := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, "  %s %s%s\n",
			lineNumColor.Sprint("     |"),
			strings.Repeat(" ", pad),
			underlineColor.Sprint(underline),
		)
	}
}

func expandTabs(s string, tabWidth int) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			next := (col + tabWidth) / tabWidth * tabWidth
			b.WriteString(strings.Repeat(" ", next-col))
			col = next
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}

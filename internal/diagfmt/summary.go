package diagfmt

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"groovylsp/internal/diag"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

// Summary renders a one-line total after the per-diagnostic output.
func Summary(w io.Writer, bag *diag.Bag, files int) {
	errs := len(bag.Errors())
	warns := len(bag.Warnings())
	filesLabel := countStyle.Render(fmt.Sprintf("%d file(s)", files))
	switch {
	case errs == 0 && warns == 0:
		fmt.Fprintf(w, "%s: %s\n", filesLabel, okStyle.Render("no problems"))
	case errs == 0:
		fmt.Fprintf(w, "%s: %s\n", filesLabel, warnStyle.Render(fmt.Sprintf("%d warning(s)", warns)))
	default:
		fmt.Fprintf(w, "%s: %s, %s\n",
			filesLabel,
			errStyle.Render(fmt.Sprintf("%d error(s)", errs)),
			warnStyle.Render(fmt.Sprintf("%d warning(s)", warns)),
		)
	}
}

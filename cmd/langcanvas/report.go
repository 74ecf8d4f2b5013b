package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rendis/langcanvas/pkg/schema"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// writeReport prints a validation result, one issue per block, with node ids
// replaced by node labels.
func writeReport(w io.Writer, title string, nodes []schema.Node, res *schema.ValidationResult) {
	fmt.Fprintln(w, titleStyle.Render(title))

	if len(res.Issues) == 0 {
		fmt.Fprintf(w, "  %s no issues\n", okStyle.Render("OK"))
		return
	}

	idx := schema.NodeByID(nodes)
	for _, is := range res.Issues {
		sev := warnStyle.Render("WARN ")
		if is.Severity == schema.SeverityError {
			sev = errorStyle.Render("ERROR")
		}
		fmt.Fprintf(w, "  %s %s %s\n", sev, dimStyle.Render(fmt.Sprintf("[%s/%s]", is.Category, is.Code)), is.Message)

		if len(is.NodeIDs) > 0 {
			names := make([]string, len(is.NodeIDs))
			for i, id := range is.NodeIDs {
				names[i] = id
				if n, ok := idx[id]; ok {
					names[i] = n.DisplayName()
				}
			}
			fmt.Fprintf(w, "        %s %s\n", dimStyle.Render("nodes:"), strings.Join(names, ", "))
		}
		if len(is.EdgeIDs) > 0 {
			fmt.Fprintf(w, "        %s %s\n", dimStyle.Render("edges:"), strings.Join(is.EdgeIDs, ", "))
		}
	}

	fmt.Fprintln(w)
	style := okStyle
	switch {
	case res.ErrorCount > 0:
		style = errorStyle
	case res.WarningCount > 0:
		style = warnStyle
	}
	fmt.Fprintln(w, style.Render(summary(res)))
}

// summary renders "N errors, M warnings" with singular forms.
func summary(res *schema.ValidationResult) string {
	return fmt.Sprintf("%s, %s", plural(res.ErrorCount, "error"), plural(res.WarningCount, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

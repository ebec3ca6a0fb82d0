package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Styles.
var (
	reportTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	reportIndexStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	reportErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	macroNameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	macroMatchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	macroAliasStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	macroDocStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// writeReport prints every error found while processing subject, one per
// line, in the order given.
func writeReport(w io.Writer, subject string, errs []error) {
	if len(errs) == 0 {
		return
	}

	noun := "errors"
	if len(errs) == 1 {
		noun = "error"
	}

	fmt.Fprintln(w, reportTitleStyle.Render(
		fmt.Sprintf("%s: %d %s", subject, len(errs), noun)))

	width := len(strconv.Itoa(len(errs)))

	for i, err := range errs {
		fmt.Fprintf(w, "  %s %s\n",
			reportIndexStyle.Render(fmt.Sprintf("%*d.", width, i+1)),
			reportErrorStyle.Render(err.Error()),
		)
	}
}

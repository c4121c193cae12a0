package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	isatty "github.com/mattn/go-isatty"
)

var (
	styleErrLbl  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red
	styleCommand = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)  // bright white
	styleDesc    = lipgloss.NewStyle().Faint(true)                                  // dim
	styleWarnLbl = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true) // yellow
	styleWarnTxt = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))            // yellow
	styleNote    = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Faint(true) // teal dim
	colorEnabled = true
)

// InitConsole configures color for diagnostics based on noColor and whether
// stderr is a terminal. Records on stdout are never styled.
func InitConsole(noColor bool) {
	tty := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	colorEnabled = tty && !noColor
}

func r(st lipgloss.Style, s string) string {
	if !colorEnabled {
		return s
	}
	return st.Render(s)
}

// FailureReport describes a failed batch: which one, the command it ran, and
// whatever the command wrote to stderr.
func FailureReport(batch, total int, command string, reason string, stderr []byte) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s batch %d/%d failed: %s\n", r(styleErrLbl, "Error:"), batch, total, reason))
	b.WriteString(fmt.Sprintf("  command: %s\n", r(styleCommand, command)))
	if s := strings.TrimRight(string(stderr), "\n"); s != "" {
		b.WriteString(r(styleDesc, "  stderr:"))
		b.WriteByte('\n')
		for _, ln := range strings.Split(s, "\n") {
			b.WriteString(r(styleDesc, "    "+ln))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Warnf returns a single-line colored warning string with a standard prefix.
func Warnf(format string, a ...interface{}) string {
	msg := fmt.Sprintf(format, a...)
	return r(styleWarnLbl, "Warning:") + " " + r(styleWarnTxt, msg)
}

// Notef returns a faint informational line.
func Notef(format string, a ...interface{}) string {
	return r(styleNote, fmt.Sprintf(format, a...))
}

// ShortError condenses a multi-line error into its last meaningful line.
func ShortError(err error) string {
	if err == nil {
		return ""
	}
	var candidate string
	for _, ln := range strings.Split(err.Error(), "\n") {
		if t := strings.TrimSpace(ln); t != "" {
			candidate = t
		}
	}
	return candidate
}

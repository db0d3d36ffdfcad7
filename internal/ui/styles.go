// Package ui renders demo narration and the stress progress view.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles bundles the lipgloss styles used by the demo narration.
type Styles struct {
	Header lipgloss.Style
	Step   lipgloss.Style
	OK     lipgloss.Style
	Fault  lipgloss.Style
	Count  lipgloss.Style
	plain  bool
}

// NewStyles builds the style set. With color=false every style renders as
// plain text, for non-TTY output.
func NewStyles(color bool) Styles {
	if !color {
		return Styles{plain: true}
	}
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")),
		Step:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		OK:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Fault:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Count:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// Headerf writes a bold section header.
func (s Styles) Headerf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, s.Header.Render(fmt.Sprintf(format, args...)))
}

// Stepf writes one narration step.
func (s Styles) Stepf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+s.Step.Render(fmt.Sprintf(format, args...)))
}

// OKf writes a success line.
func (s Styles) OKf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+s.OK.Render(fmt.Sprintf(format, args...)))
}

// Faultf writes a fault line. Demo faults are usually the point of the
// demonstration, not a failure of it.
func (s Styles) Faultf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+s.Fault.Render(fmt.Sprintf(format, args...)))
}

// Countf writes a reference-count badge line.
func (s Styles) Countf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+s.Count.Render(fmt.Sprintf(format, args...)))
}

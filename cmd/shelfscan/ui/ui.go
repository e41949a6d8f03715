// Package ui renders CLI output: spinners, coloured status lines and tables.
package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Init applies the --no-color flag
func Init(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

// Spinner wraps a spinner instance for indeterminate progress display.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a new spinner with the given message.
func NewSpinner(w io.Writer, message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	return &Spinner{spinner: s}
}

// Follow starts the spinner while processing is true and stops it otherwise
func (s *Spinner) Follow(processing bool) {
	if processing {
		s.spinner.Start()
		return
	}
	s.spinner.Stop()
}

// Success displays a success message.
func Success(w io.Writer, format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Warning displays a warning message.
func Warning(w io.Writer, format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(w, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Error displays an error message.
func Error(w io.Writer, format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(w, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Table displays data in a formatted table.
func Table(w io.Writer, headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	bold := color.New(color.Bold).SprintFunc()
	styled := make([]string, len(headers))
	separator := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = bold(h)
		separator[i] = strings.Repeat("-", len(h))
	}

	fmt.Fprintln(tw, strings.Join(styled, "\t"))
	fmt.Fprintln(tw, strings.Join(separator, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	_ = tw.Flush()
}

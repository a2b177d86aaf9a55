// Package cliui provides reusable terminal UI helpers (styles, step
// indicators, structured output) for remotes CLI commands.
package cliui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Render.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	HashStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	NameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	KeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	ValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	DimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Formats returns the output formats Render understands.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatYAML}
}

// Render writes v to w in the requested format. Text output is delegated to
// text so each command keeps control of its own layout.
func Render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case "", FormatText:
		return text(w)

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	return fmt.Errorf("unknown output format %q (available: text, json, yaml)", format)
}

// Step runs fn and prints a ✓ or ✗ checkmark with the elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	fmt.Fprintf(w, "  %s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(elapsed))),
	)

	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

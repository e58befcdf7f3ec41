// Package ui holds the lipgloss styles for console output. lipgloss
// downgrades to plain text when the output is not a terminal, so piping the
// loop into tee or a file stays clean.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	Timestamp = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	Assistant = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	Tool      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	System    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	Banner    = lipgloss.NewStyle().Bold(true)
	Warning   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	Success   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

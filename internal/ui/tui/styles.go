package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the dashboard and the one-shot renderer.
const (
	hexOK      = "#22c55e"
	hexFailed  = "#ef4444"
	hexPending = "#eab308"
	hexAccent  = "#3b82f6"
	hexMuted   = "#6b7280"
	hexText    = "#f9fafb"
)

func fg(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

var (
	titleStyle   = fg(hexText).Bold(true)
	activeStyle  = fg(hexText).Bold(true)
	sectionStyle = fg(hexAccent).Bold(true).MarginTop(1)
	footerStyle  = fg(hexMuted).MarginTop(1)

	readyStyle   = fg(hexOK)
	failedStyle  = fg(hexFailed)
	warningStyle = fg(hexPending)
	dimStyle     = fg(hexMuted)

	progressBarFull  = fg(hexOK)
	progressBarEmpty = fg(hexMuted)
)

// Status markers stay ASCII so plain terminals and logs render them.
const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	spinner   = "[..]"
	warnMark  = "[??]"
)

var spinnerFrames = []string{"[.  ]", "[.. ]", "[...]", "[ ..]", "[  .]"}

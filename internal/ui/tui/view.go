package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/monitor"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

// sf wraps a lipgloss.Style into a styleFunc.
func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)

	if m.Fetched {
		if m.Cluster.Status.IsInProgress() {
			renderProgressBar(&b, m)
		}
		renderDetails(&b, m)
		renderNodeGroups(&b, m)
		renderHealth(&b, m)
	}

	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	title := fmt.Sprintf("magnum-capi: %s", m.ClusterID)
	if m.Cluster.Name != "" {
		title += fmt.Sprintf(" (%s)", m.Cluster.Name)
	}
	b.WriteString(titleStyle.Render(title))

	status := " "
	switch {
	case m.Err != nil:
		status += failedStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	case !m.Fetched:
		status += activeStyle.Render(currentSpinner(m.SpinnerFrame)) + dimStyle.Render(" loading")
	default:
		icon, style := statusIcon(m.Cluster.Status)
		if m.Cluster.Status.IsInProgress() {
			icon = currentSpinner(m.SpinnerFrame)
		}
		status += style(icon + " " + string(m.Cluster.Status))
	}
	b.WriteString(status)
	b.WriteString("\n")
}

func renderProgressBar(b *strings.Builder, m Model) {
	const width = 30
	progress := calculateProgress(m)
	filled := int(progress * width)
	if filled > width {
		filled = width
	}
	b.WriteString("\n  ")
	b.WriteString(progressBarFull.Render(strings.Repeat("█", filled)))
	b.WriteString(progressBarEmpty.Render(strings.Repeat("░", width-filled)))
	fmt.Fprintf(b, " %3.0f%%\n", progress*100)
}

func renderDetails(b *strings.Builder, m Model) {
	c := m.Cluster
	if c.StatusReason != "" {
		fmt.Fprintf(b, "  %s %s\n", dimStyle.Render("reason:"), c.StatusReason)
	}
	if c.APIAddress != "" {
		fmt.Fprintf(b, "  %s %s\n", dimStyle.Render("api:   "), c.APIAddress)
	}
	if c.COEVersion != "" {
		fmt.Fprintf(b, "  %s %s\n", dimStyle.Render("version:"), c.COEVersion)
	}
}

func renderNodeGroups(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Node groups"))
	b.WriteString("\n")

	for _, ng := range m.Cluster.NodeGroups {
		icon, style := statusIcon(ng.Status)
		fmt.Fprintf(b, "    %s %-20s %-7s %3d  %s\n",
			style(icon), ng.Name, ng.Role, ng.NodeCount, style(string(ng.Status)))
		if ng.StatusReason != "" {
			fmt.Fprintf(b, "      %s\n", dimStyle.Render(ng.StatusReason))
		}
	}
}

func renderHealth(b *strings.Builder, m Model) {
	switch {
	case m.Health != nil:
		icon, style := healthIcon(m.Health.Status)
		b.WriteString(sectionStyle.Render("  Health"))
		fmt.Fprintf(b, " %s\n", style(icon+" "+string(m.Health.Status)))

		names := make([]string, 0, len(m.Health.Reasons))
		for name := range m.Health.Reasons {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(b, "    %-20s %s\n", name, dimStyle.Render(m.Health.Reasons[name]))
		}
	case m.HealthErr != "":
		b.WriteString(sectionStyle.Render("  Health"))
		fmt.Fprintf(b, " %s\n", failedStyle.Render("unavailable: "+m.HealthErr))
	}
}

func renderFooter(b *strings.Builder, m Model) {
	parts := []string{fmt.Sprintf("elapsed: %s", formatDuration(time.Since(m.StartTime)))}
	if m.Fetched && m.Cluster.Status.IsInProgress() {
		parts = append(parts, currentSpinner(m.SpinnerFrame)+" waiting for the management cluster")
	}
	b.WriteString(footerStyle.Render(fmt.Sprintf("  %s  |  q: quit", strings.Join(parts, "  |  "))))
	b.WriteString("\n")
}

// Helper functions

func statusIcon(s v1alpha1.Status) (string, styleFunc) {
	switch s.Outcome() {
	case v1alpha1.OutcomeComplete:
		return checkMark, sf(readyStyle)
	case v1alpha1.OutcomeFailed:
		return crossMark, sf(failedStyle)
	default:
		return spinner, sf(warningStyle)
	}
}

func healthIcon(h monitor.HealthStatus) (string, styleFunc) {
	switch h {
	case monitor.Healthy:
		return checkMark, sf(readyStyle)
	case monitor.Unhealthy:
		return crossMark, sf(failedStyle)
	default:
		return warnMark, sf(warningStyle)
	}
}

func currentSpinner(frame int) string {
	if len(spinnerFrames) == 0 {
		return spinner
	}
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

// calculateProgress is the share of node groups whose current action completed.
func calculateProgress(m Model) float64 {
	if m.Done || m.Cluster.Status.IsComplete() {
		return 1.0
	}
	if len(m.Cluster.NodeGroups) == 0 {
		return 0
	}

	done := 0
	for _, ng := range m.Cluster.NodeGroups {
		if ng.Status.IsComplete() {
			done++
		}
	}
	return float64(done) / float64(len(m.Cluster.NodeGroups))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

package handlers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/imamik/magnum-capi/internal/ui/tui"
)

// renderStatus renders the status command output as plain text.
func renderStatus(view statusView) string {
	c := view.Cluster
	var b strings.Builder

	title := c.Name
	if title == "" {
		title = c.ID
	}
	b.WriteString("\n")
	b.WriteString("  magnum-capi cluster: " + title + "\n")
	b.WriteString("  " + strings.Repeat("=", 30) + "\n")

	fmt.Fprintf(&b, "    ID:          %s\n", c.ID)
	fmt.Fprintf(&b, "    Status:      %s\n", c.Status)
	if c.StatusReason != "" {
		fmt.Fprintf(&b, "    Reason:      %s\n", c.StatusReason)
	}
	if c.APIAddress != "" {
		fmt.Fprintf(&b, "    API address: %s\n", c.APIAddress)
	}
	if c.COEVersion != "" {
		fmt.Fprintf(&b, "    Version:     %s\n", c.COEVersion)
	}

	b.WriteString("\n  Node groups\n")
	b.WriteString("  " + strings.Repeat("-", 35) + "\n")
	for _, ng := range c.NodeGroups {
		fmt.Fprintf(&b, "    %-20s %-7s %3d  %s\n", ng.Name, ng.Role, ng.NodeCount, ng.Status)
		if ng.StatusReason != "" {
			b.WriteString("      " + ng.StatusReason + "\n")
		}
	}

	switch {
	case view.Health != nil:
		fmt.Fprintf(&b, "\n  Health: %s\n", view.Health.Status)

		names := make([]string, 0, len(view.Health.Reasons))
		for name := range view.Health.Reasons {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "    %-20s %s\n", name, view.Health.Reasons[name])
		}
	case view.HealthError != "":
		fmt.Fprintf(&b, "\n  Health unavailable: %s\n", view.HealthError)
	}

	return b.String()
}

// statusMsg converts a status view into a dashboard update.
func statusMsg(view statusView) tui.StatusMsg {
	return tui.StatusMsg{
		Cluster:   view.Cluster,
		Health:    view.Health,
		HealthErr: view.HealthError,
	}
}

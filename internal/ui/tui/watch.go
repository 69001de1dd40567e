package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Fetcher loads the current state of the watched cluster.
type Fetcher func(ctx context.Context) StatusMsg

// RunWatch shows the dashboard and refreshes it every interval until the
// record reaches a terminal status or the user quits.
func RunWatch(ctx context.Context, clusterID string, fetch Fetcher, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewWatchModel(clusterID)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		p.Send(fetch(ctx))

		for {
			select {
			case <-ctx.Done():
				p.Send(ErrMsg{Err: ctx.Err()})
				return
			case <-ticker.C:
				p.Send(fetch(ctx))
			}
		}
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	if fm.Err != nil {
		return fm.Err
	}

	// The alternate screen is gone once the program exits; keep the last frame.
	if fm.Fetched {
		fmt.Print(renderView(fm))
	}
	return nil
}

// RenderOnce renders the dashboard once, without the interactive program.
func RenderOnce(msg StatusMsg) string {
	m := NewWatchModel(msg.Cluster.ID)
	m.updateStatus(msg)
	m.Done = msg.Cluster.Status.IsTerminal()
	return renderView(m)
}

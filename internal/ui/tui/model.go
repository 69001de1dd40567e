package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/magnum-capi/api/v1alpha1"
	"github.com/imamik/magnum-capi/internal/monitor"
)

// Model is the Bubble Tea model of the status dashboard.
type Model struct {
	ClusterID string

	// Latest fetched state
	Cluster   v1alpha1.Cluster
	Health    *monitor.Report
	HealthErr string
	Fetched   bool

	StartTime time.Time

	// Animation
	SpinnerFrame int

	// UI state
	Width  int
	Height int
	Err    error
	Done   bool
}

// NewWatchModel creates a model watching the given cluster.
func NewWatchModel(clusterID string) Model {
	return Model{
		ClusterID: clusterID,
		StartTime: time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case StatusMsg:
		if msg.FetchErr != "" {
			m.Err = errors.New(msg.FetchErr)
			return m, tea.Quit
		}
		m.updateStatus(msg)
		if m.Cluster.Status.IsTerminal() {
			m.Done = true
			return m, tea.Quit
		}

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) updateStatus(msg StatusMsg) {
	m.Cluster = msg.Cluster
	m.Health = msg.Health
	m.HealthErr = msg.HealthErr
	m.Fetched = true
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mwhitford/abacus/internal/config"
	"github.com/mwhitford/abacus/internal/graph"
	"github.com/mwhitford/abacus/internal/issue"
)

const chromeRows = 4 // header, status line, footer, divider

// snapshotMsg carries the result of a repository load.
type snapshotMsg struct {
	view *graph.View
	err  error
}

// fileChangedMsg signals a settled change in the issues directories.
type fileChangedMsg struct{}

// Model is the dashboard's bubbletea model.
type Model struct {
	repo    graph.Repository
	cfg     *config.Config
	graph   *Graph
	spinner spinner.Model
	changes <-chan struct{}

	loading  bool
	loaded   bool
	errorMsg string
	width    int
	height   int
}

// NewModel creates the dashboard model. changes may be nil when no watcher
// is running.
func NewModel(repo graph.Repository, cfg *config.Config, changes <-chan struct{}) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return Model{
		repo:    repo,
		cfg:     cfg,
		graph:   NewGraph(&cfg.Graph),
		spinner: sp,
		changes: changes,
		loading: true,
		width:   80,
		height:  24,
	}
}

// Init starts the first snapshot load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCmd(), m.spinner.Tick}
	if cmd := m.waitForChangeCmd(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// loadCmd rebuilds the snapshot off the update loop.
func (m Model) loadCmd() tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		v, err := graph.Load(repo)
		return snapshotMsg{view: v, err: err}
	}
}

// waitForChangeCmd blocks on the watcher channel and converts its
// notification into a message. Re-armed after every delivery.
func (m Model) waitForChangeCmd() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.graph.SetViewport(msg.Width, msg.Height-chromeRows)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		m.loading = false
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.errorMsg = ""
		m.loaded = true
		m.graph.Rebuild(msg.view)
		return m, nil

	case fileChangedMsg:
		cmds := []tea.Cmd{}
		if cmd := m.waitForChangeCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.cfg.Graph.RefreshOnChange {
			m.loading = true
			cmds = append(cmds, m.loadCmd(), m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.loading = true
		return m, tea.Batch(m.loadCmd(), m.spinner.Tick)
	case "left", "h":
		m.graph.SelectPrev()
	case "right", "l":
		m.graph.SelectNext()
	case "up", "k":
		m.graph.SelectUp()
	case "down", "j":
		m.graph.SelectDown()
	case "d":
		m.graph.CycleDensity()
	case "f":
		if id := m.graph.Selected(); id != 0 {
			m.graph.SetFocus(id)
		}
	case "esc":
		m.graph.SetFocus(0)
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.Header.Render("abacus"))
	b.WriteString(" ")
	b.WriteString(styles.Counts.Render(fmt.Sprintf("%d open issues", m.graph.NodeCount())))
	if focus := m.graph.Focus(); focus != 0 {
		b.WriteString(" ")
		b.WriteString(styles.Focus.Render(fmt.Sprintf("[focus %s]", issue.Ref(focus))))
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	graphHeight := m.height - chromeRows
	if graphHeight < 1 {
		graphHeight = 1
	}
	b.WriteString(m.graph.Render(m.width, graphHeight))
	b.WriteString("\n")

	help := "q quit · r refresh · arrows move · d density · f focus · esc unfocus"
	b.WriteString(styles.Footer.Render(truncate(help, m.width)))

	return b.String()
}

// statusLine renders the loading, error, or cycle warning line.
func (m Model) statusLine() string {
	switch {
	case m.errorMsg != "":
		return styles.Error.Render(truncate("error: "+m.errorMsg, m.width))
	case m.loading && !m.loaded:
		return m.spinner.View() + " loading issues"
	case len(m.graph.Cycles()) > 0:
		return styles.InCycle.Render(fmt.Sprintf("%d dependency cycle(s) detected", len(m.graph.Cycles())))
	default:
		if summary := m.graph.SelectedSummary(); summary != "" {
			return styles.Selected.Render(truncate(summary, m.width))
		}
		return ""
	}
}

// Run starts the dashboard program.
func Run(repo graph.Repository, cfg *config.Config, changes <-chan struct{}) error {
	p := tea.NewProgram(NewModel(repo, cfg, changes), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tidepool/internal/levels"
	"github.com/vovakirdan/tidepool/internal/storage"
)

// maxRuns is how many runs the table loads per level.
const maxRuns = 100

// RunsModel is the Bubble Tea model for the best runs of each level.
type RunsModel struct {
	env      *Env
	levels   []levels.Level
	cursor   int
	runs     []storage.Run
	err      error
	table    table.Model
	help     help.Model
	keys     ListKeyMap
	width    int
	height   int
	quitting bool
	back     bool
}

// NewRunsModel opens the runs table on the level with the given ID.
func NewRunsModel(env *Env, levelID string) RunsModel {
	m := RunsModel{
		env:    env,
		keys:   DefaultListKeyMap(),
		help:   help.New(),
		width:  env.Config.ScreenW,
		height: env.Config.ScreenH,
	}
	if env.Loader != nil {
		m.levels, m.err = env.Loader.LoadAll()
	}
	for i, lvl := range m.levels {
		if lvl.ID == levelID {
			m.cursor = i
		}
	}
	m.table = m.createTable()
	m.loadRuns()
	return m
}

// createTable creates a new table sized to the window.
func (m *RunsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Moves", Width: 7},
		{Title: "Solved", Width: 7},
		{Title: "Player", Width: 12},
		{Title: "Date", Width: 14},
	}
	if extra := m.width - 4 - 52; extra > 0 {
		columns[3].Width += min(extra, 12)
	}

	height := m.height - 8
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// loadRuns loads the runs of the level under the cursor.
func (m *RunsModel) loadRuns() {
	m.runs = nil
	if m.env.Store != nil && len(m.levels) > 0 {
		runs, err := m.env.Store.BestRuns(m.levels[m.cursor].ID, maxRuns)
		if err != nil {
			m.env.logger().Warn("could not load runs", "error", err)
		}
		m.runs = runs
	}

	rows := make([]table.Row, len(m.runs))
	for i, r := range m.runs {
		solved := "no"
		if r.Solved {
			solved = "yes"
		}
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			fmt.Sprintf("%d", r.MoveCount),
			solved,
			r.Player,
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the runs table.
func (m RunsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the runs table.
func (m RunsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.back = true
			return m, nil

		case key.Matches(msg, m.keys.Next):
			if len(m.levels) > 0 {
				m.cursor = (m.cursor + 1) % len(m.levels)
				m.loadRuns()
			}
			return m, nil

		case key.Matches(msg, m.keys.Prev):
			if len(m.levels) > 0 {
				m.cursor = (m.cursor + len(m.levels) - 1) % len(m.levels)
				m.loadRuns()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table = m.createTable()
		m.loadRuns()
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the runs table.
func (m RunsModel) View() string {
	if m.quitting || m.back {
		return ""
	}

	var b strings.Builder
	title := "BEST RUNS"
	if len(m.levels) > 0 {
		title = fmt.Sprintf("< BEST RUNS - %s >", m.levels[m.cursor].Name)
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var content string
	switch {
	case m.err != nil:
		content = deadStyle.Render(m.err.Error())
	case len(m.runs) == 0:
		content = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4).
			Render("No runs recorded yet.\nSolve the level to set a record!")
	default:
		content = m.table.View()
	}
	b.WriteString(boxStyle.Render(content))

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// Runs returns the runs shown for the current level.
func (m RunsModel) Runs() []storage.Run {
	return m.runs
}

// IsGoingBack returns true if the user wants to go back to the picker.
func (m RunsModel) IsGoingBack() bool {
	return m.back
}

// IsQuitting returns true if the user wants to quit entirely.
func (m RunsModel) IsQuitting() bool {
	return m.quitting
}

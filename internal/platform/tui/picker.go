package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tidepool/internal/levels"
)

// PickerModel is the Bubble Tea model for choosing a level.
type PickerModel struct {
	env      *Env
	levels   []levels.Level
	best     map[string]int
	cursor   int
	width    int
	keys     ListKeyMap
	help     help.Model
	err      error
	quitting bool
	selected *levels.Level
	runs     bool // user asked for the runs table of the level under the cursor
}

// NewPickerModel lists every level the loader can read.
func NewPickerModel(env *Env) PickerModel {
	m := PickerModel{
		env:   env,
		best:  map[string]int{},
		width: env.Config.ScreenW,
		keys:  DefaultListKeyMap(),
		help:  help.New(),
	}
	if env.Loader == nil {
		return m
	}
	m.levels, m.err = env.Loader.LoadAll()
	for _, lvl := range m.levels {
		m.best[lvl.ID] = env.best(lvl.ID)
	}
	return m
}

// WithCursor moves the cursor to the level with the given ID, if present.
func (m PickerModel) WithCursor(id string) PickerModel {
	for i, lvl := range m.levels {
		if lvl.ID == id {
			m.cursor = i
		}
	}
	return m
}

// Init initializes the picker.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the picker.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m PickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Prev):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.Next):
		if m.cursor < len(m.levels)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Select):
		if len(m.levels) > 0 {
			lvl := m.levels[m.cursor]
			m.selected = &lvl
		}

	case key.Matches(msg, m.keys.Runs):
		if len(m.levels) > 0 {
			m.runs = true
		}
	}
	return m, nil
}

// View renders the level list.
func (m PickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(centerText("  T I D E P O O L  ", m.width)))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(deadStyle.Render(m.err.Error()))
		b.WriteString("\n")
	case len(m.levels) == 0:
		b.WriteString(centerText("No levels found.", m.width))
		b.WriteString("\n")
	}

	for i, lvl := range m.levels {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		line := fmt.Sprintf("%s%-16s %-24s %s", cursor, lvl.ID, lvl.Name, m.score(lvl))
		b.WriteString(style.Render(centerText(line, m.width)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// score describes the best solution against par.
func (m PickerModel) score(lvl levels.Level) string {
	best := m.best[lvl.ID]
	switch {
	case best == 0 && lvl.Par > 0:
		return fmt.Sprintf("par %d", lvl.Par)
	case best == 0:
		return ""
	case lvl.Par > 0 && best <= lvl.Par:
		return solvedStyle.Render(fmt.Sprintf("best %d / par %d", best, lvl.Par))
	case lvl.Par > 0:
		return fmt.Sprintf("best %d / par %d", best, lvl.Par)
	default:
		return fmt.Sprintf("best %d", best)
	}
}

// Selected returns the chosen level, or nil.
func (m PickerModel) Selected() *levels.Level {
	return m.selected
}

// Current returns the level under the cursor, or nil when the list is empty.
func (m PickerModel) Current() *levels.Level {
	if len(m.levels) == 0 {
		return nil
	}
	lvl := m.levels[m.cursor]
	return &lvl
}

// WantsRuns returns true if the user asked for the runs table.
func (m PickerModel) WantsRuns() bool {
	return m.runs
}

// IsQuitting returns true if the user asked to quit.
func (m PickerModel) IsQuitting() bool {
	return m.quitting
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	if lipgloss.Width(text) >= width {
		return text
	}
	padding := (width - lipgloss.Width(text)) / 2
	return strings.Repeat(" ", padding) + text
}

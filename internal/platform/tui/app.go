package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type appScreen int

const (
	screenPicker appScreen = iota
	screenPlay
	screenRuns
)

// AppModel manages the full flow: picker -> level -> picker, and
// picker -> runs -> picker. It backs both local play and SSH sessions.
type AppModel struct {
	env      *Env
	screen   appScreen
	picker   PickerModel
	play     Model
	runs     RunsModel
	flash    string
	quitting bool
}

// NewAppModel starts on the level picker.
func NewAppModel(env *Env) AppModel {
	return AppModel{
		env:    env,
		picker: NewPickerModel(env),
	}
}

// Init initializes the current screen.
func (m AppModel) Init() tea.Cmd {
	return m.picker.Init()
}

// Update routes messages to the current screen and switches screens when
// the current one is done.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.env.Config.ScreenW = wsm.Width
		m.env.Config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenPlay:
		return m.updatePlay(msg)
	case screenRuns:
		return m.updateRuns(msg)
	default:
		return m.updatePicker(msg)
	}
}

func (m AppModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.picker.Update(msg)
	if p, ok := next.(PickerModel); ok {
		m.picker = p
	}

	if m.picker.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if lvl := m.picker.Selected(); lvl != nil {
		play, err := NewModel(m.env, *lvl)
		if err != nil {
			m.env.logger().Warn("could not start level", "level", lvl.ID, "error", err)
			m.flash = err.Error()
			m.picker = NewPickerModel(m.env).WithCursor(lvl.ID)
			return m, nil
		}
		m.flash = ""
		m.play = play
		m.screen = screenPlay
		return m, m.play.Init()
	}

	if m.picker.WantsRuns() {
		m.runs = NewRunsModel(m.env, m.picker.Current().ID)
		m.screen = screenRuns
		return m, m.runs.Init()
	}

	return m, cmd
}

func (m AppModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.play.Update(msg)
	if p, ok := next.(Model); ok {
		m.play = p
	}

	if m.play.IsQuitting() {
		m.play.Close()
		m.quitting = true
		return m, tea.Quit
	}

	if m.play.BackToMenu() {
		m.play.Close()
		id := m.play.level.ID
		m.play = Model{}
		m.picker = NewPickerModel(m.env).WithCursor(id)
		m.screen = screenPicker
		return m, m.picker.Init()
	}

	return m, cmd
}

func (m AppModel) updateRuns(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.runs.Update(msg)
	if r, ok := next.(RunsModel); ok {
		m.runs = r
	}

	if m.runs.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.runs.IsGoingBack() {
		m.picker = NewPickerModel(m.env).WithCursor(m.picker.Current().ID)
		m.screen = screenPicker
		return m, m.picker.Init()
	}

	return m, cmd
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenPlay:
		return m.play.View()
	case screenRuns:
		return m.runs.View()
	}
	if m.flash != "" {
		return m.picker.View() + "\n" + deadStyle.Render(m.flash)
	}
	return m.picker.View()
}

// Screen reports which screen is showing, for tests.
func (m AppModel) Screen() string {
	switch m.screen {
	case screenPlay:
		return "play"
	case screenRuns:
		return "runs"
	default:
		return "picker"
	}
}

// RunApp runs the picker-driven flow in the local terminal.
func RunApp(env *Env) error {
	p := tea.NewProgram(NewAppModel(env), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tidepool/internal/core"
	"github.com/vovakirdan/tidepool/internal/game"
	"github.com/vovakirdan/tidepool/internal/levels"
	"github.com/vovakirdan/tidepool/internal/sim"
	"github.com/vovakirdan/tidepool/internal/watch"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	solvedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	deadStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// fileChangedMsg reports a changed level, catalog or script file.
type fileChangedMsg string

// watchErrMsg reports a file watcher failure.
type watchErrMsg struct{ err error }

// waitForChange blocks on the watcher until something changes. It returns nil
// once the watcher is closed.
func waitForChange(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case p, ok := <-w.Events:
			if !ok {
				return nil
			}
			return fileChangedMsg(p)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

// Model is the Bubble Tea model for playing one level.
type Model struct {
	env      *Env
	level    levels.Level
	session  *game.Session
	screen   *core.Screen
	watcher  *watch.Watcher
	keys     KeyMap
	help     help.Model
	status   game.Status
	best     int
	recorded bool // the current attempt has been saved
	flash    string
	flashID  int
	cues     []sim.Cue // cues behind the current flash, if any
	quitting bool
	back     bool

	quitOnBack bool // standalone play has no menu to return to
}

// NewModel builds a session for lvl and wraps it in a play model.
func NewModel(env *Env, lvl levels.Level) (Model, error) {
	s, err := env.NewSession(lvl)
	if err != nil {
		return Model{}, err
	}
	h := help.New()
	h.Width = env.Config.ScreenW
	return Model{
		env:     env,
		level:   lvl,
		session: s,
		screen:  core.NewScreen(0, 0),
		keys:    DefaultKeyMap(),
		help:    h,
		status:  s.Status(),
		best:    env.best(lvl.ID),
	}, nil
}

// WithWatcher reloads the level whenever w reports a change.
func (m Model) WithWatcher(w *watch.Watcher) Model {
	m.watcher = w
	return m
}

// Init starts listening for file changes when watching.
func (m Model) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return waitForChange(m.watcher)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case fileChangedMsg:
		var cmd tea.Cmd
		m, cmd = m.reload(string(msg))
		return m, tea.Batch(cmd, waitForChange(m.watcher))

	case watchErrMsg:
		var cmd tea.Cmd
		m, cmd = m.setFlash("watch: " + msg.err.Error())
		return m, tea.Batch(cmd, waitForChange(m.watcher))

	case flashExpiredMsg:
		if msg.id == m.flashID {
			m.flash = ""
			m.cues = nil
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input. Every movement key is one turn.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		return m.saveScreenshot()
	}
	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	action := m.keys.Action(msg)
	switch action {
	case core.ActionQuit:
		m.finish()
		m.quitting = true
		return m, tea.Quit

	case core.ActionBack:
		m.finish()
		m.back = true
		if m.quitOnBack {
			return m, tea.Quit
		}
		return m, nil

	case core.ActionRestart:
		m.finish()
		if err := m.session.Reset(); err != nil {
			return m.setFlash(err.Error())
		}
		m.status = m.session.Status()
		m.recorded = false
		return m, nil

	case core.ActionUndo:
		// Undoing a recorded attempt starts a new one.
		if err := m.session.Undo(); err != nil {
			return m.setFlash(err.Error())
		}
		m.status = m.session.Status()
		m.recorded = false
		return m, nil
	}

	dir, ok := action.Direction()
	if !ok || m.status.Over() {
		return m, nil
	}
	m.status = m.session.Step(dir)

	var cmd tea.Cmd
	if cues := m.session.Cues(); len(cues) > 0 {
		m, cmd = m.setFlash(cueText(cues))
		m.cues = cues
	}
	if m.status.Over() {
		m.finish()
		if m.status.Solved {
			m.best = m.env.best(m.level.ID)
		}
	}
	return m, cmd
}

// finish records the current attempt once if any move was made.
func (m *Model) finish() {
	if m.recorded || m.status.Moves == 0 {
		return
	}
	m.env.record(m.level, m.session)
	m.recorded = true
}

// reload rebuilds the session from disk, keeping the old one on failure.
func (m Model) reload(changed string) (Model, tea.Cmd) {
	lvl, err := m.env.reload(m.level)
	if err != nil {
		return m.setFlash("reload failed: " + err.Error())
	}
	s, err := m.env.NewSession(lvl)
	if err != nil {
		return m.setFlash("reload failed: " + err.Error())
	}
	m.finish()
	m.session.Close()
	m.session = s
	m.level = lvl
	m.status = s.Status()
	m.recorded = false
	return m.setFlash("reloaded " + filepath.Base(changed))
}

func (m Model) setFlash(text string) (Model, tea.Cmd) {
	m.flashID++
	m.flash = text
	m.cues = nil
	return m, expireFlash(m.flashID, flashDuration)
}

// saveScreenshot writes the current room as plain text.
func (m Model) saveScreenshot() (tea.Model, tea.Cmd) {
	dir := m.env.ScreenshotDir
	if dir == "" {
		return m.setFlash("screenshots are disabled")
	}
	m.render()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return m.setFlash(err.Error())
	}
	name := fmt.Sprintf("%s_%s.txt", m.level.ID, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		return m.setFlash(err.Error())
	}
	return m.setFlash("saved " + path)
}

// render sizes the screen to the current room and draws it.
func (m Model) render() {
	room := m.session.World().CurrentRoom()
	if m.screen.Width() != room.Width() || m.screen.Height() != room.Height() {
		m.screen.Resize(room.Width(), room.Height())
	}
	m.session.Render(m.screen)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting || m.back {
		return ""
	}

	m.render()

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.level.Name))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(m.statusLine()))
	b.WriteString("\n\n")
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n\n")

	switch {
	case m.status.Solved:
		b.WriteString(solvedStyle.Render(fmt.Sprintf("Solved in %d moves!", m.status.Moves)))
		b.WriteString("  ")
		b.WriteString(infoStyle.Render("r to replay, esc for levels"))
	case m.status.Dead:
		b.WriteString(deadStyle.Render("You drowned."))
		b.WriteString("  ")
		b.WriteString(infoStyle.Render("u to undo, r to restart"))
	case len(m.cues) > 0:
		b.WriteString(renderCues(m.cues))
	default:
		b.WriteString(infoStyle.Render(m.flash))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) statusLine() string {
	parts := []string{fmt.Sprintf("moves %d", m.status.Moves)}
	if m.level.Par > 0 {
		parts = append(parts, fmt.Sprintf("par %d", m.level.Par))
	}
	if m.best > 0 {
		parts = append(parts, fmt.Sprintf("best %d", m.best))
	}
	if m.watcher != nil {
		parts = append(parts, "watching")
	}
	return strings.Join(parts, "  ·  ")
}

// Status returns the session status after the last key.
func (m Model) Status() game.Status { return m.status }

// Session returns the session being played.
func (m Model) Session() *game.Session { return m.session }

// BackToMenu returns true if the player left the level.
func (m Model) BackToMenu() bool { return m.back }

// IsQuitting returns true if the player asked to quit entirely.
func (m Model) IsQuitting() bool { return m.quitting }

// Close releases the session.
func (m Model) Close() {
	m.session.Close()
}

// Run plays one level in the terminal until the player quits or backs out.
func Run(env *Env, lvl levels.Level, w *watch.Watcher) error {
	model, err := NewModel(env, lvl)
	if err != nil {
		return err
	}
	if w != nil {
		model = model.WithWatcher(w)
	}
	model.quitOnBack = true

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.Close()
	}
	return err
}

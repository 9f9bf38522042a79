// Package tui provides the Bubble Tea front end: a level picker, the play
// screen, the runs table and an SSH server that serves all three.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// flashDuration is how long a status message stays on screen.
const flashDuration = 2 * time.Second

// flashExpiredMsg clears the status message with the matching id.
type flashExpiredMsg struct{ id int }

// expireFlash returns a command that expires flash id after d.
func expireFlash(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return flashExpiredMsg{id: id}
	})
}

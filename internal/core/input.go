package core

// Action represents a semantic input action, abstracted from physical key presses.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // W, K, Up arrow
	ActionRight          // D, L, Right arrow
	ActionDown           // S, J, Down arrow
	ActionLeft           // A, H, Left arrow
	ActionWait           // Space, '.' - pass a turn without moving
	ActionUndo           // U, Z - take back the last move
	ActionRestart        // R - reset the level
	ActionBack           // Esc - leave the current screen
	ActionQuit           // Q, Ctrl+C
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionRight:
		return "Right"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionWait:
		return "Wait"
	case ActionUndo:
		return "Undo"
	case ActionRestart:
		return "Restart"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Direction maps a movement action to its grid direction.
// Returns false for actions that do not advance the simulation.
// ActionWait advances a turn with DirNone.
func (a Action) Direction() (Direction, bool) {
	switch a {
	case ActionUp:
		return DirUp, true
	case ActionRight:
		return DirRight, true
	case ActionDown:
		return DirDown, true
	case ActionLeft:
		return DirLeft, true
	case ActionWait:
		return DirNone, true
	default:
		return DirNone, false
	}
}

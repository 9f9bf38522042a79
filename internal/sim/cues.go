package sim

import (
	"fmt"

	"github.com/vovakirdan/tidepool/internal/core"
)

// CueKind separates sound hooks from animation hooks.
type CueKind string

const (
	CueSound     CueKind = "sound"
	CueAnimation CueKind = "animation"
)

// Cue is a fire-and-forget presentation hook. The world queues cues during a
// step and front ends drain them afterwards; nothing in the simulation waits on them.
type Cue struct {
	Kind     CueKind
	Name     string
	Entity   EntityID
	Position core.Point
}

func (c Cue) String() string {
	return fmt.Sprintf("%s:%s %v@%v", c.Kind, c.Name, c.Entity, c.Position)
}

package behavior

import (
	"github.com/vovakirdan/tidepool/internal/sim"
)

// State keys shared by channel-driven behaviors.
const (
	KeyChannel    = "channel"
	KeyIsPressed  = "is_pressed"
	KeyIsOpen     = "is_open"
	KeyIsRisen    = "is_risen"
	KeyIsInverted = "is_inverted"
)

// channelPressed reports whether every button on self's channel in self's room
// is pressed. A channel with no buttons is not pressed.
func channelPressed(w *sim.World, self *sim.Entity) bool {
	ch, ok := self.State.GetInt(KeyChannel)
	if !ok {
		return false
	}
	buttons := w.ChannelMembers(self.Position, ch, sim.TagButton)
	if len(buttons) == 0 {
		return false
	}
	for _, b := range buttons {
		if !b.State.GetBoolOrFallback(KeyIsPressed, false) {
			return false
		}
	}
	return true
}

// receives reports whether a signal or world-start trigger concerns self.
func receives(self *sim.Entity, t sim.Trigger) bool {
	ch, ok := self.State.GetInt(KeyChannel)
	if !ok {
		return false
	}
	if sig, isSignal := t.(sim.SignalTrigger); isSignal {
		return sig.Channel == ch
	}
	return true
}

// wanted applies the is_inverted flag.
func wanted(w *sim.World, self *sim.Entity) bool {
	return channelPressed(w, self) != self.State.GetBoolOrFallback(KeyIsInverted, false)
}

package behavior

import (
	"github.com/vovakirdan/tidepool/internal/sim"
)

func init() {
	Register(Definition{
		Name:    "door",
		Title:   "Opens while every button on its channel is pressed",
		Applies: tagged(sim.TagDoor),
		Attach: func(_ *Binder, _ *sim.World, e *sim.Entity) error {
			e.On(sim.OnSignalChange, recomputeDoor)
			e.On(sim.OnWorldStart, recomputeDoor)
			return nil
		},
	})
}

func recomputeDoor(w *sim.World, self *sim.Entity, t sim.Trigger) {
	if !receives(self, t) {
		return
	}
	open := wanted(w, self)
	old, known := self.State.GetBool(KeyIsOpen)
	if known && old == open {
		return
	}
	self.State.SetBool(KeyIsOpen, open)
	if !known {
		return
	}
	name := "door_close"
	if open {
		name = "door_open"
	}
	w.Emit(sim.Cue{Kind: sim.CueSound, Name: name, Entity: self.ID, Position: self.Position})
	w.Logger().Debug("door toggled", "door", self, "open", open)
}

package behavior

import (
	"github.com/vovakirdan/tidepool/internal/sim"
)

func init() {
	Register(Definition{
		Name:    "button",
		Title:   "Pressure plate that signals its channel when pressed or released",
		Applies: tagged(sim.TagButton),
		Attach: func(_ *Binder, _ *sim.World, e *sim.Entity) error {
			e.On(sim.OnEntityMoved, recomputeButton)
			e.On(sim.OnWorldStart, recomputeButton)
			return nil
		},
	})
}

// recomputeButton signals the channel only when the pressed state flips, so
// repeated moves while something rests on the plate stay quiet.
func recomputeButton(w *sim.World, self *sim.Entity, _ sim.Trigger) {
	pressed := false
	for _, other := range w.EntitiesAt(self.Position, false) {
		if other != self && other.Tags.Has(sim.TagPressesButtons) {
			pressed = true
			break
		}
	}
	if self.State.GetBoolOrFallback(KeyIsPressed, false) == pressed {
		return
	}
	self.State.SetBool(KeyIsPressed, pressed)

	name := "button_up"
	if pressed {
		name = "button_down"
	}
	w.Emit(sim.Cue{Kind: sim.CueSound, Name: name, Entity: self.ID, Position: self.Position})

	if ch, ok := self.State.GetInt(KeyChannel); ok {
		w.DispatchToChannel(self, ch)
	}
}

package behavior

import (
	"github.com/vovakirdan/tidepool/internal/sim"
)

func init() {
	Register(Definition{
		Name:    "nudge",
		Title:   "Plays a nudge animation when a pushable is shoved",
		Applies: tagged(sim.TagPushable),
		Attach: func(_ *Binder, _ *sim.World, e *sim.Entity) error {
			e.On(sim.OnEntityMoved, nudge)
			return nil
		},
	})
}

func nudge(w *sim.World, self *sim.Entity, t sim.Trigger) {
	if t.(sim.EntityTrigger).Entity != self.ID {
		return
	}
	data, status, ok := w.CurrentMove()
	if !ok || data.IsWarp() || !status.WasSuccessful {
		return
	}
	w.Emit(sim.Cue{Kind: sim.CueAnimation, Name: "nudge", Entity: self.ID, Position: self.Position})
}

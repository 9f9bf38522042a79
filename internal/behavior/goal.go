package behavior

import (
	"github.com/vovakirdan/tidepool/internal/sim"
)

// KeyReached is set to true once a player stands on a goal.
const KeyReached = "reached"

func init() {
	Register(Definition{
		Name:    "goal",
		Title:   "Marks the level solved when a player arrives",
		Applies: tagged(sim.TagGoal),
		Attach: func(_ *Binder, _ *sim.World, e *sim.Entity) error {
			e.On(sim.OnTouch, reachGoal)
			e.On(sim.OnReset, func(_ *sim.World, self *sim.Entity, _ sim.Trigger) {
				self.State.SetBool(KeyReached, false)
			})
			return nil
		},
	})
}

func reachGoal(w *sim.World, self *sim.Entity, t sim.Trigger) {
	mover := w.Entity(t.(sim.EntityTrigger).Entity)
	if mover == nil || !mover.Tags.Has(sim.TagPlayer) || mover.Position != self.Position {
		return
	}
	if self.State.GetBoolOrFallback(KeyReached, false) {
		return
	}
	self.State.SetBool(KeyReached, true)
	w.Emit(sim.Cue{Kind: sim.CueSound, Name: "goal", Entity: self.ID, Position: self.Position})
}

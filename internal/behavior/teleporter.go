package behavior

import (
	"github.com/vovakirdan/tidepool/internal/core"
	"github.com/vovakirdan/tidepool/internal/sim"
)

const (
	KeyTargetX = "target_x"
	KeyTargetY = "target_y"
)

func init() {
	Register(Definition{
		Name:    "teleporter",
		Title:   "Warps whatever steps onto it to target_x, target_y",
		Applies: tagged(sim.TagTeleporter),
		Attach: func(_ *Binder, _ *sim.World, e *sim.Entity) error {
			e.On(sim.OnTouch, teleport)
			return nil
		},
	})
}

// teleport only reacts to directional arrivals. Arrivals by warp are ignored
// so two linked pads never bounce an entity back and forth.
func teleport(w *sim.World, self *sim.Entity, t sim.Trigger) {
	data, status, ok := w.CurrentMove()
	if !ok || data.IsWarp() || !status.WasSuccessful {
		return
	}
	mover := w.Entity(t.(sim.EntityTrigger).Entity)
	if mover == nil || w.IsDestroyed(mover) || mover.Position != self.Position {
		return
	}
	x, okX := self.State.GetInt(KeyTargetX)
	y, okY := self.State.GetInt(KeyTargetY)
	if !okX || !okY {
		return
	}
	w.Emit(sim.Cue{Kind: sim.CueAnimation, Name: "teleport", Entity: mover.ID, Position: self.Position})
	w.Rules().WarpToPosition(mover, core.Pt(x, y))
}

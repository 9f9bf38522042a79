package behavior

import (
	"github.com/vovakirdan/tidepool/internal/sim"
)

// KeySubmergedTemplate names the template spawned under a lowered bridge.
const KeySubmergedTemplate = "submerged_template"

// DefaultSubmergedTemplate is used when a bridge does not name one.
const DefaultSubmergedTemplate = "bridge_submerged"

func init() {
	Register(Definition{
		Name:    "bridge",
		Title:   "Rises while its channel is pressed and floods its tile otherwise",
		Applies: tagged(sim.TagBridge),
		Attach: func(_ *Binder, _ *sim.World, e *sim.Entity) error {
			b := &bridge{}
			e.On(sim.OnSignalChange, b.recompute)
			e.On(sim.OnWorldStart, b.recompute)
			return nil
		},
	})
}

// bridge tracks the water double spawned while lowered. A lowered bridge is
// inactive so the double alone decides what can cross.
type bridge struct {
	double *sim.Entity
}

func (b *bridge) recompute(w *sim.World, self *sim.Entity, t sim.Trigger) {
	if !receives(self, t) {
		return
	}
	risen := wanted(w, self)
	if old, known := self.State.GetBool(KeyIsRisen); !known || old != risen {
		self.State.SetBool(KeyIsRisen, risen)
	}

	switch {
	case risen && !self.Active:
		b.raise(w, self)
	case !risen && self.Active:
		b.lower(w, self)
	}
}

func (b *bridge) raise(w *sim.World, self *sim.Entity) {
	if b.double != nil && !w.IsDestroyed(b.double) {
		w.Destroy(b.double)
	}
	b.double = nil
	self.Active = true
	w.Emit(sim.Cue{Kind: sim.CueSound, Name: "bridge_rise", Entity: self.ID, Position: self.Position})
	w.Logger().Debug("bridge risen", "bridge", self)
}

func (b *bridge) lower(w *sim.World, self *sim.Entity) {
	self.Active = false
	name := self.State.GetStringOrFallback(KeySubmergedTemplate, DefaultSubmergedTemplate)
	double, err := w.Spawn(name, self.Position, nil)
	if err != nil {
		double = sim.NewEntity(self.Position, sim.TagWater)
		w.AddEntity(double)
	}
	b.double = double
	w.Emit(sim.Cue{Kind: sim.CueSound, Name: "bridge_sink", Entity: self.ID, Position: self.Position})
	w.Logger().Debug("bridge lowered", "bridge", self, "double", double)
}

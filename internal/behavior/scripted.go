package behavior

import (
	"github.com/samber/oops"

	"github.com/vovakirdan/tidepool/internal/script"
	"github.com/vovakirdan/tidepool/internal/sim"
)

func init() {
	Register(Definition{
		Name:    "scripted",
		Title:   "Runs Lua handlers from the entity's script state",
		Applies: hasState(script.StateKey),
		Attach:  attachScript,
	})
}

func attachScript(b *Binder, w *sim.World, e *sim.Entity) error {
	ref := e.State.GetStringOrFallback(script.StateKey, "")
	if b.scripts == nil {
		return oops.Code(script.CodeScriptError).In("behavior").
			With("entity", e.String()).
			Errorf("scripted entity but scripting is disabled")
	}
	return b.scripts.Attach(w, e, ref)
}

package behavior

import (
	"github.com/vovakirdan/tidepool/internal/sim"
)

// Frame swap state keys. frame_key names a boolean state key; when it changes
// the appearance flips between the on and off frame and glyph.
const (
	KeyFrameKey = "frame_key"
	KeyFrameOn  = "frame_on"
	KeyFrameOff = "frame_off"
	KeyGlyphOn  = "glyph_on"
	KeyGlyphOff = "glyph_off"
)

func init() {
	Register(Definition{
		Name:    "frameswap",
		Title:   "Swaps sprite frame and glyph when a boolean state key changes",
		Applies: hasState(KeyFrameKey),
		Attach: func(_ *Binder, _ *sim.World, e *sim.Entity) error {
			e.On(sim.OnStateChanged, swapFrame)
			e.On(sim.OnWorldStart, swapFrame)
			return nil
		},
	})
}

func swapFrame(_ *sim.World, self *sim.Entity, t sim.Trigger) {
	if self.Appearance == nil {
		return
	}
	key := self.State.GetStringOrFallback(KeyFrameKey, "")
	if st, ok := t.(sim.StateTrigger); ok && st.Key != key {
		return
	}
	on := self.State.GetBoolOrFallback(key, false)

	frameKey, glyphKey := KeyFrameOff, KeyGlyphOff
	if on {
		frameKey, glyphKey = KeyFrameOn, KeyGlyphOn
	}
	if f, ok := self.State.GetInt(frameKey); ok {
		self.Appearance.Frame = f
	}
	if g, ok := self.State.GetString(glyphKey); ok && g != "" {
		self.Appearance.Glyph = []rune(g)[0]
	}
}

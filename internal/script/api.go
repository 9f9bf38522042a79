package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/tidepool/internal/core"
	"github.com/vovakirdan/tidepool/internal/sim"
)

// selfTable builds the host API bound to one entity. Functions work with both
// self.get("k") and self:get("k").
func (en *Engine) selfTable(L *lua.LState, w *sim.World, ent *sim.Entity) *lua.LTable {
	self := L.NewTable()
	// base is the stack index of the first real argument.
	base := func(L *lua.LState) int {
		if L.Get(1) == self {
			return 2
		}
		return 1
	}

	fns := map[string]lua.LGFunction{
		"id": func(L *lua.LState) int {
			L.Push(lua.LNumber(ent.ID))
			return 1
		},
		"get": func(L *lua.LState) int {
			v, ok := ent.State.GetString(L.CheckString(base(L)))
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LString(v))
			return 1
		},
		"set": func(L *lua.LState) int {
			b := base(L)
			ent.State.Set(L.CheckString(b), L.CheckAny(b+1).String())
			return 0
		},
		"has_tag": func(L *lua.LState) int {
			L.Push(lua.LBool(ent.Tags.Has(L.CheckString(base(L)))))
			return 1
		},
		"add_tag": func(L *lua.LState) int {
			ent.Tags.Add(L.CheckString(base(L)))
			return 0
		},
		"remove_tag": func(L *lua.LState) int {
			ent.Tags.Remove(L.CheckString(base(L)))
			return 0
		},
		"x": func(L *lua.LState) int {
			L.Push(lua.LNumber(ent.Position.X))
			return 1
		},
		"y": func(L *lua.LState) int {
			L.Push(lua.LNumber(ent.Position.Y))
			return 1
		},
		"emit": func(L *lua.LState) int {
			b := base(L)
			kind := sim.CueKind(L.CheckString(b))
			if kind != sim.CueSound && kind != sim.CueAnimation {
				L.ArgError(b, "cue kind must be sound or animation")
				return 0
			}
			w.Emit(sim.Cue{Kind: kind, Name: L.CheckString(b + 1), Entity: ent.ID, Position: ent.Position})
			return 0
		},
		"log": func(L *lua.LState) int {
			en.logger.Info(L.CheckString(base(L)), "entity", ent)
			return 0
		},
		"signal": func(L *lua.LState) int {
			w.DispatchToChannel(ent, L.CheckInt(base(L)))
			return 0
		},
		"move": func(L *lua.LState) int {
			b := base(L)
			s := L.CheckString(b)
			var dir core.Direction
			ok := false
			if s != "" {
				dir, ok = core.ParseDirection([]rune(s)[0])
			}
			if !ok || dir == core.DirNone {
				L.ArgError(b, "direction must be one of U, R, D, L")
				return 0
			}
			status := w.Rules().AttemptMoveInDirection(ent, dir)
			L.Push(lua.LBool(status.WasSuccessful))
			return 1
		},
		"destroy": func(L *lua.LState) int {
			w.Destroy(ent)
			return 0
		},
	}
	for name, fn := range fns {
		L.SetField(self, name, L.NewFunction(fn))
	}
	return self
}

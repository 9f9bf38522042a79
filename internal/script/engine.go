package script

import (
	"context"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/tidepool/internal/sim"
)

// Error codes returned by Attach.
const (
	CodeScriptNotFound = "SCRIPT_NOT_FOUND"
	CodeScriptError    = "SCRIPT_ERROR"
)

// DefaultTimeout bounds one script load or handler call.
const DefaultTimeout = 250 * time.Millisecond

// StateKey is the entity state key holding inline Lua or a .lua file name.
const StateKey = "script"

// handlerNames maps trigger kinds to the global Lua functions that receive them.
var handlerNames = map[sim.TriggerKind]string{
	sim.OnTouch:        "on_touch",
	sim.OnEnter:        "on_enter",
	sim.OnEntityMoved:  "on_entity_moved",
	sim.OnStateChanged: "on_state_changed",
	sim.OnSignalChange: "on_signal_change",
	sim.OnTurn:         "on_turn",
	sim.OnWorldStart:   "on_world_start",
	sim.OnSteppedOff:   "on_stepped_off",
	sim.OnExit:         "on_exit",
	sim.OnReset:        "on_reset",
}

// HandlerName returns the Lua function name for kind.
func HandlerName(kind sim.TriggerKind) (string, bool) {
	name, ok := handlerNames[kind]
	return name, ok
}

// Option configures an Engine.
type Option func(*Engine)

// WithFS sets where .lua file references are read from.
func WithFS(fsys fs.FS) Option {
	return func(e *Engine) { e.fsys = fsys }
}

// WithLogger sets the logger used for script log() calls and handler failures.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTimeout bounds every script load and handler call. Non-positive values
// keep DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// Engine owns one sandboxed Lua state per scripted entity. States are closed
// when their entity leaves the world or when the engine is closed.
type Engine struct {
	fsys    fs.FS
	logger  *log.Logger
	timeout time.Duration
	states map[*sim.Entity]*lua.LState
	worlds map[*sim.World]struct{}
}

// NewEngine creates an engine with no scripts loaded.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:  log.New(io.Discard),
		timeout: DefaultTimeout,
		states:  make(map[*sim.Entity]*lua.LState),
		worlds:  make(map[*sim.World]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Source resolves a script reference. Values ending in .lua are read from the
// engine's filesystem; anything else is inline source.
func (en *Engine) Source(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasSuffix(ref, ".lua") {
		return ref, nil
	}
	if en.fsys == nil {
		return "", oops.Code(CodeScriptNotFound).In("script").With("path", ref).
			Errorf("no script directory configured")
	}
	data, err := fs.ReadFile(en.fsys, ref)
	if err != nil {
		return "", oops.Code(CodeScriptNotFound).In("script").With("path", ref).Wrap(err)
	}
	return string(data), nil
}

// Attach compiles ent's script and subscribes every handler it defines.
// Handler runtime errors are logged and never stop the simulation.
func (en *Engine) Attach(w *sim.World, ent *sim.Entity, ref string) error {
	src, err := en.Source(ref)
	if err != nil {
		return err
	}
	L, err := newSandbox()
	if err != nil {
		return oops.Code(CodeScriptError).In("script").With("entity", ent.String()).Wrap(err)
	}
	self := en.selfTable(L, w, ent)
	L.SetGlobal("self", self)
	done := en.bound(L)
	err = L.DoString(src)
	done()
	if err != nil {
		L.Close()
		return oops.Code(CodeScriptError).In("script").
			With("entity", ent.String()).
			Hint("syntax or top-level runtime error").
			Wrap(err)
	}

	bound := 0
	for _, kind := range sim.TriggerKinds {
		name := handlerNames[kind]
		fn := L.GetGlobal(name)
		if fn.Type() != lua.LTFunction {
			continue
		}
		ent.On(kind, en.handler(L, self, fn, name))
		bound++
	}

	if old, ok := en.states[ent]; ok {
		old.Close()
	}
	en.states[ent] = L
	if _, ok := en.worlds[w]; !ok {
		en.worlds[w] = struct{}{}
		w.AddRemoveListener(en.release)
	}
	en.logger.Debug("script attached", "entity", ent, "handlers", bound)
	return nil
}

func (en *Engine) handler(L *lua.LState, self lua.LValue, fn lua.LValue, name string) sim.Behavior {
	return func(_ *sim.World, ent *sim.Entity, t sim.Trigger) {
		done := en.bound(L)
		defer done()
		if err := L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, self, triggerTable(L, t)); err != nil {
			en.logger.Warn("script handler failed", "entity", ent, "handler", name, "err", err)
		}
	}
}

// bound sets a deadline on L until the returned func is called. Nested calls
// on the same state share the outermost deadline.
func (en *Engine) bound(L *lua.LState) func() {
	if L.Context() != nil {
		return func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), en.timeout)
	L.SetContext(ctx)
	return func() {
		L.RemoveContext()
		cancel()
	}
}

func (en *Engine) release(ent *sim.Entity) {
	if L, ok := en.states[ent]; ok {
		L.Close()
		delete(en.states, ent)
	}
}

// Loaded returns the number of live script states.
func (en *Engine) Loaded() int {
	return len(en.states)
}

// Close releases every Lua state.
func (en *Engine) Close() {
	for ent, L := range en.states {
		L.Close()
		delete(en.states, ent)
	}
}

func triggerTable(L *lua.LState, t sim.Trigger) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "kind", lua.LString(t.Kind()))
	switch p := t.(type) {
	case sim.EntityTrigger:
		L.SetField(tbl, "entity", lua.LNumber(p.Entity))
	case sim.StateTrigger:
		L.SetField(tbl, "key", lua.LString(p.Key))
		L.SetField(tbl, "value", lua.LString(p.Value))
	case sim.SignalTrigger:
		L.SetField(tbl, "source", lua.LNumber(p.Source))
		L.SetField(tbl, "channel", lua.LNumber(p.Channel))
	}
	return tbl
}

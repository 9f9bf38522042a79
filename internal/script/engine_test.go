package script_test

import (
	"strconv"
	"testing"
	"testing/fstest"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tidepool/internal/core"
	"github.com/vovakirdan/tidepool/internal/script"
	"github.com/vovakirdan/tidepool/internal/sim"
)

func setup(t *testing.T, src string, tags ...string) (*sim.World, *sim.Entity, *script.Engine) {
	t.Helper()
	w := sim.NewWorld(core.Pt(10, 10))
	e := sim.NewEntity(core.Pt(2, 1), tags...)
	w.AddEntity(e)
	en := script.NewEngine()
	t.Cleanup(en.Close)
	require.NoError(t, en.Attach(w, e, src))
	return w, e, en
}

func errCode(t *testing.T, err error) any {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	return oopsErr.Code()
}

func TestTouchHandlerSeesMover(t *testing.T) {
	w, e, _ := setup(t, `
function on_touch(self, t)
  self.set("by", tostring(t.entity))
  self.set("kind", t.kind)
end
`)
	p := sim.NewEntity(core.Pt(1, 1), sim.TagSolid, sim.TagPusher)
	w.AddEntity(p)

	w.Rules().AttemptMoveInDirection(p, core.DirRight)

	assert.Equal(t, strconv.FormatUint(uint64(p.ID), 10), e.State.GetStringOrFallback("by", ""))
	assert.Equal(t, string(sim.OnTouch), e.State.GetStringOrFallback("kind", ""))
}

func TestSelfAPI(t *testing.T) {
	w, e, _ := setup(t, `
function on_world_start(self)
  self:add_tag("Solid")
  self.remove_tag("Water")
  self.set("pos", self.x() .. "," .. self:y())
  self.set("had_water", self.has_tag("Water"))
  self.set("missing", self.get("nope") == nil)
  self:emit("sound", "hum")
end
`, sim.TagWater)

	w.Start()

	assert.True(t, e.Tags.Has(sim.TagSolid))
	assert.False(t, e.Tags.Has(sim.TagWater))
	assert.Equal(t, "2,1", e.State.GetStringOrFallback("pos", ""))
	assert.Equal(t, "false", e.State.GetStringOrFallback("had_water", ""))
	assert.Equal(t, "true", e.State.GetStringOrFallback("missing", ""))
	cues := w.DrainCues()
	require.Len(t, cues, 1)
	assert.Equal(t, sim.Cue{Kind: sim.CueSound, Name: "hum", Entity: e.ID, Position: e.Position}, cues[0])
}

func TestStateChangedHandler(t *testing.T) {
	_, e, _ := setup(t, `
count = 0
function on_state_changed(self, t)
  if t.key == "lever" then
    count = count + 1
    self.set("seen", t.value .. ":" .. count)
  end
end
`)

	e.State.Set("lever", "on")
	assert.Equal(t, "on:1", e.State.GetStringOrFallback("seen", ""))
	e.State.Set("lever", "on")
	assert.Equal(t, "on:2", e.State.GetStringOrFallback("seen", ""))
}

func TestScriptedMover(t *testing.T) {
	w, e, _ := setup(t, `
function on_turn(self)
  self.set("moved", self.move("R"))
end
`, sim.TagSolid)
	wall := sim.NewEntity(core.Pt(4, 1), sim.TagSolid)
	w.AddEntity(wall)

	w.Turn()
	assert.Equal(t, core.Pt(3, 1), e.Position)
	assert.Equal(t, "true", e.State.GetStringOrFallback("moved", ""))

	w.Turn()
	assert.Equal(t, core.Pt(3, 1), e.Position)
	assert.Equal(t, "false", e.State.GetStringOrFallback("moved", ""))
}

func TestSignalFromScript(t *testing.T) {
	w, _, _ := setup(t, `
function on_enter(self) self.signal(4) end
`)
	door := sim.NewEntity(core.Pt(5, 5), sim.TagDoor)
	door.State.SetInt("channel", 4)
	w.AddEntity(door)
	got := 0
	door.On(sim.OnSignalChange, func(*sim.World, *sim.Entity, sim.Trigger) { got++ })

	w.SetCurrentRoom(w.GetRoomAt(core.Pt(20, 20)))
	w.SetCurrentRoom(w.GetRoomAt(core.Pt(1, 1)))

	assert.Equal(t, 1, got)
}

func TestSandbox(t *testing.T) {
	_, e, _ := setup(t, `
assert(os == nil, "os")
assert(io == nil, "io")
assert(debug == nil, "debug")
assert(dofile == nil and loadfile == nil and load == nil and loadstring == nil, "loaders")
assert(require == nil, "require")
assert(string.upper("a") == "A")
assert(math.floor(1.5) == 1)
function on_turn(self) os.exit(1) end
function on_reset(self) self.set("after", "ok") end
`)
	w := e.World()

	assert.NotPanics(t, func() { w.Turn() }, "runtime errors are logged")
	w.Reset()
	assert.Equal(t, "ok", e.State.GetStringOrFallback("after", ""))
}

func TestAttachErrors(t *testing.T) {
	w := sim.NewWorld(core.Pt(10, 10))
	e := sim.NewEntity(core.Pt(0, 0))
	w.AddEntity(e)

	en := script.NewEngine(script.WithFS(fstest.MapFS{
		"ok.lua": {Data: []byte(`function on_turn(self) self.set("ran", 1) end`)},
	}))
	defer en.Close()

	assert.Equal(t, script.CodeScriptError, errCode(t, en.Attach(w, e, "function (")))
	assert.Equal(t, script.CodeScriptError, errCode(t, en.Attach(w, e, `error("boom")`)))
	assert.Equal(t, script.CodeScriptNotFound, errCode(t, en.Attach(w, e, "missing.lua")))
	assert.Equal(t, script.CodeScriptNotFound, errCode(t, script.NewEngine().Attach(w, e, "ok.lua")))
	assert.Zero(t, en.Loaded())

	require.NoError(t, en.Attach(w, e, "ok.lua"))
	w.Turn()
	assert.Equal(t, "1", e.State.GetStringOrFallback("ran", ""))
}

func TestRunawayScriptsTimeOut(t *testing.T) {
	w := sim.NewWorld(core.Pt(10, 10))
	e := sim.NewEntity(core.Pt(2, 1))
	w.AddEntity(e)
	en := script.NewEngine(script.WithTimeout(20 * time.Millisecond))
	defer en.Close()

	err := en.Attach(w, e, `while true do end`)
	assert.Equal(t, script.CodeScriptError, errCode(t, err), "top-level loop")

	require.NoError(t, en.Attach(w, e, `
function on_turn(self)
  if self.get("spin") == "yes" then
    while true do end
  end
  self.set("turned", "yes")
end
function on_state_changed(self, t)
  if t.key == "turned" then self.set("seen", t.value) end
end
`))
	e.State.SetString("spin", "yes")
	start := time.Now()
	w.Turn()
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, e.State.Has("turned"))

	e.State.SetString("spin", "no")
	w.Turn()
	assert.Equal(t, "yes", e.State.GetStringOrFallback("turned", ""))
	assert.Equal(t, "yes", e.State.GetStringOrFallback("seen", ""), "nested handler on the same state")
}

func TestStatesReleasedWithEntity(t *testing.T) {
	w, e, en := setup(t, `function on_turn(self) end`)
	require.Equal(t, 1, en.Loaded())

	w.Destroy(e)
	w.UpdateEntityList()

	assert.Zero(t, en.Loaded())
}

func TestHandlerNames(t *testing.T) {
	for _, kind := range sim.TriggerKinds {
		name, ok := script.HandlerName(kind)
		assert.True(t, ok, kind)
		assert.NotEmpty(t, name)
	}
	_, ok := script.HandlerName("OnCustom")
	assert.False(t, ok)
}

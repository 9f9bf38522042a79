package sim_test

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tidepool/internal/core"
	"github.com/vovakirdan/tidepool/internal/sim"
)

type catalog map[string]sim.Template

func (c catalog) Template(name string) (sim.Template, error) {
	t, ok := c[name]
	if !ok {
		return sim.Template{}, errors.New("not in catalog")
	}
	return t, nil
}

type recorder struct {
	kinds []sim.TriggerKind
}

func (r *recorder) listen(e *sim.Entity, kinds ...sim.TriggerKind) {
	for _, k := range kinds {
		e.On(k, func(_ *sim.World, _ *sim.Entity, t sim.Trigger) {
			r.kinds = append(r.kinds, t.Kind())
		})
	}
}

func TestRoomCornersWrapAround(t *testing.T) {
	w := newWorld()

	tests := []struct {
		p      core.Point
		tl, br core.Point
	}{
		{core.Pt(5, 5), core.Pt(0, 0), core.Pt(10, 10)},
		{core.Pt(0, 0), core.Pt(0, 0), core.Pt(10, 10)},
		{core.Pt(10, 10), core.Pt(0, 0), core.Pt(10, 10)},
		{core.Pt(11, 11), core.Pt(11, 11), core.Pt(21, 21)},
		{core.Pt(15, 15), core.Pt(11, 11), core.Pt(21, 21)},
		{core.Pt(-5, -5), core.Pt(-11, -11), core.Pt(-1, -1)},
		{core.Pt(-1, 3), core.Pt(-11, 0), core.Pt(-1, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.p.String(), func(t *testing.T) {
			tl, br := w.GetRoomCornersAt(tt.p)
			assert.Equal(t, tt.tl, tl)
			assert.Equal(t, tt.br, br)
		})
	}

	for x := -35; x <= 35; x++ {
		for y := -35; y <= 35; y++ {
			p := core.Pt(x, y)
			room := w.GetRoomAt(p)
			require.True(t, room.Contains(p), "room %v must contain %v", room, p)
			tl, _ := w.GetRoomCornersAt(room.TopLeft())
			require.Equal(t, room.TopLeft(), tl, "tiling must be stable for %v", p)
		}
	}
}

func TestRoomCornersNormalize(t *testing.T) {
	w := newWorld()
	r := sim.NewRoom(w, core.Pt(4, 9), core.Pt(1, 2))

	assert.Equal(t, core.Pt(1, 2), r.TopLeft())
	assert.Equal(t, core.Pt(4, 9), r.BottomRight())
	assert.Equal(t, 4, r.Width())
	assert.Equal(t, 8, r.Height())
	assert.True(t, r.Contains(core.Pt(4, 9)))
	assert.False(t, r.Contains(core.Pt(5, 9)))
}

func TestRoomCacheNeedsRecalculation(t *testing.T) {
	w := newWorld()
	room := w.CurrentRoom()
	a := place(w, 1, 1)
	assert.Empty(t, room.Entities())

	room.RecalculateLiveEntities(false)
	assert.Equal(t, []*sim.Entity{a}, room.Entities())

	a.Active = false
	room.RecalculateLiveEntities(false)
	assert.Empty(t, room.Entities())
	room.RecalculateLiveEntities(true)
	assert.Equal(t, []*sim.Entity{a}, room.EntitiesAt(core.Pt(1, 1)))
}

func TestSoftDelete(t *testing.T) {
	w := newWorld()
	a := place(w, 1, 1)
	b := place(w, 2, 2)
	removed := 0
	w.AddRemoveListener(func(*sim.Entity) { removed++ })

	w.Destroy(a)
	w.Destroy(a)

	assert.True(t, w.IsDestroyed(a))
	assert.Equal(t, []*sim.Entity{b}, w.AllActiveEntities())
	assert.Equal(t, []*sim.Entity{b}, w.AllEntitiesIncludingInactive())
	assert.Empty(t, w.EntitiesAt(core.Pt(1, 1), true))
	assert.Same(t, a, w.Entity(a.ID), "handle resolves until commit")

	w.UpdateEntityList()
	assert.Nil(t, w.Entity(a.ID))
	assert.Nil(t, a.World())
	assert.Equal(t, 1, removed)
	assert.Equal(t, []*sim.Entity{b}, w.CurrentRoom().Entities())

	w.UpdateEntityList()
	assert.Equal(t, 1, removed)
	assert.Equal(t, []*sim.Entity{b}, w.AllEntitiesIncludingInactive())
	assert.Same(t, b, w.Entity(b.ID))
}

func TestStaleHandleNeverResolves(t *testing.T) {
	w := newWorld()
	a := place(w, 1, 1)
	old := a.ID
	w.Destroy(a)
	w.UpdateEntityList()

	c := place(w, 3, 3)

	assert.NotEqual(t, old, c.ID)
	assert.Nil(t, w.Entity(old))
	assert.Same(t, c, w.Entity(c.ID))
	assert.False(t, sim.EntityID(0).Valid())
	assert.Nil(t, w.Entity(0))
}

func TestAddEntityTwicePanics(t *testing.T) {
	w := newWorld()
	e := place(w, 0, 0)

	assert.Panics(t, func() { w.AddEntity(e) })
	assert.Panics(t, func() { newWorld().AddEntity(e) })
}

func TestStateUpdatesFireOnStateChanged(t *testing.T) {
	w := newWorld()
	e := place(w, 0, 0)
	var got []sim.StateTrigger
	e.On(sim.OnStateChanged, func(_ *sim.World, _ *sim.Entity, t sim.Trigger) {
		got = append(got, t.(sim.StateTrigger))
	})

	e.State.SetBool("is_open", true)
	e.State.SetBool("is_open", true)

	require.Len(t, got, 2, "equal re-set still notifies")
	assert.Equal(t, sim.StateChanged("is_open", "true"), got[1])
}

func TestSetCurrentRoom(t *testing.T) {
	w := newWorld()
	inFirst := place(w, 1, 1)
	inSecond := place(w, 12, 1)
	var first, second recorder
	first.listen(inFirst, sim.OnEnter, sim.OnExit)
	second.listen(inSecond, sim.OnEnter, sim.OnExit)

	w.SetCurrentRoom(w.GetRoomAt(core.Pt(3, 3)))
	assert.Empty(t, first.kinds, "same room is silent")

	w.SetCurrentRoom(w.GetRoomAt(core.Pt(15, 3)))
	assert.Equal(t, []sim.TriggerKind{sim.OnExit}, first.kinds)
	assert.Equal(t, []sim.TriggerKind{sim.OnEnter}, second.kinds)
	assert.Equal(t, core.Pt(11, 0), w.CurrentRoom().TopLeft())
}

func TestEnterRoom(t *testing.T) {
	w := newWorld()
	var origin, second recorder
	origin.listen(place(w, 1, 1), sim.OnEnter, sim.OnExit)
	second.listen(place(w, 12, 1), sim.OnEnter, sim.OnExit)

	w.EnterRoom(w.GetRoomAt(core.Pt(15, 3)))
	assert.Empty(t, origin.kinds, "no exit from a room never entered")
	assert.Equal(t, []sim.TriggerKind{sim.OnEnter}, second.kinds)
	assert.Equal(t, core.Pt(11, 0), w.CurrentRoom().TopLeft())

	w.EnterRoom(w.GetRoomAt(core.Pt(15, 3)))
	assert.Equal(t, []sim.TriggerKind{sim.OnEnter, sim.OnEnter}, second.kinds, "entering is explicit")
}

func TestMoveCompletedDispatch(t *testing.T) {
	w := newWorld()
	p := newPlayer(w, 1, 1)
	var under, target, bystander, far, self recorder
	all := []sim.TriggerKind{sim.OnTouch, sim.OnSteppedOff, sim.OnEntityMoved}
	under.listen(place(w, 1, 1), all...)
	target.listen(place(w, 2, 1), all...)
	bystander.listen(place(w, 7, 7), all...)
	far.listen(place(w, 30, 30), all...)
	self.listen(p, all...)

	var listened int
	w.AddMoveListener(func(sim.MoveData, *sim.MoveStatus) { listened++ })

	w.Rules().AttemptMoveInDirection(p, core.DirRight)

	assert.Equal(t, []sim.TriggerKind{sim.OnSteppedOff, sim.OnEntityMoved}, under.kinds)
	assert.Equal(t, []sim.TriggerKind{sim.OnTouch, sim.OnEntityMoved}, target.kinds)
	assert.Equal(t, []sim.TriggerKind{sim.OnEntityMoved}, bystander.kinds)
	assert.Equal(t, []sim.TriggerKind{sim.OnEntityMoved}, self.kinds)
	assert.Empty(t, far.kinds)
	assert.Equal(t, 1, listened)
}

func TestTouchFiresOnBlockedMove(t *testing.T) {
	w := newWorld()
	p := newPlayer(w, 1, 1)
	var under, wall recorder
	under.listen(place(w, 1, 1), sim.OnSteppedOff)
	wallEntity := place(w, 1, 0, sim.TagSolid)
	var by sim.EntityID
	wallEntity.On(sim.OnTouch, func(_ *sim.World, _ *sim.Entity, t sim.Trigger) {
		by = t.(sim.EntityTrigger).Entity
	})
	wall.listen(wallEntity, sim.OnTouch)

	status := w.Rules().AttemptMoveInDirection(p, core.DirUp)

	assert.False(t, status.WasSuccessful)
	assert.Equal(t, []sim.TriggerKind{sim.OnTouch}, wall.kinds)
	assert.Equal(t, p.ID, by)
	assert.Empty(t, under.kinds)
}

func TestCrossingRoomsGathersBothRooms(t *testing.T) {
	w := newWorld()
	p := newPlayer(w, 10, 5)
	var left, right recorder
	left.listen(place(w, 3, 3), sim.OnEntityMoved)
	right.listen(place(w, 15, 5), sim.OnEntityMoved)

	require.True(t, w.Rules().AttemptMoveInDirection(p, core.DirRight).WasSuccessful)

	assert.Len(t, left.kinds, 1)
	assert.Len(t, right.kinds, 1)
}

func TestDestroyedMidDispatchIsSkipped(t *testing.T) {
	w := newWorld()
	p := newPlayer(w, 1, 1)
	first := place(w, 2, 1)
	second := place(w, 2, 1)
	var hits int
	first.On(sim.OnTouch, func(w *sim.World, _ *sim.Entity, _ sim.Trigger) { w.Destroy(second) })
	second.On(sim.OnTouch, func(*sim.World, *sim.Entity, sim.Trigger) { hits++ })

	w.Rules().AttemptMoveInDirection(p, core.DirRight)

	assert.Zero(t, hits)
}

func TestSpawnAndPopulate(t *testing.T) {
	cat := catalog{
		"crate": {
			Name: "crate", Glyph: '#', Color: "brown", SortPriority: 3,
			Tags:  []string{sim.TagSolid, sim.TagPushable},
			State: map[string]string{"weight": "2"},
		},
	}
	w := sim.NewWorld(core.Pt(10, 10), sim.WithTemplates(cat))

	err := w.PopulateFromTemplate(sim.WorldTemplate{Entries: []sim.TemplateEntry{
		{Template: sim.PlayerTemplate, Position: core.Pt(0, 0)},
		{Template: "crate", Position: core.Pt(2, 2), ExtraState: map[string]string{"weight": "5"}},
		{Template: "", Position: core.Pt(4, 4), ExtraState: map[string]string{"script": "x"}},
	}})
	require.NoError(t, err)

	all := w.AllEntitiesIncludingInactive()
	require.Len(t, all, 2)

	crate := all[0]
	assert.Equal(t, "crate", crate.TemplateName)
	assert.True(t, crate.Tags.HasAll(sim.TagSolid, sim.TagPushable))
	assert.Equal(t, 5, crate.State.GetIntOrFallback("weight", 0))
	assert.Equal(t, 6, crate.SortPriority())
	assert.Equal(t, '#', crate.Appearance.Glyph)
	crate.Active = false
	assert.Equal(t, 7, crate.SortPriority())

	meta := all[1]
	assert.Empty(t, meta.TemplateName)
	assert.Zero(t, meta.Tags.Len())
	assert.Nil(t, meta.Appearance)
	assert.Equal(t, "x", meta.State.GetStringOrFallback("script", ""))
}

func TestSpawnUnknownTemplate(t *testing.T) {
	w := sim.NewWorld(core.Pt(10, 10), sim.WithTemplates(catalog{}))

	_, err := w.Spawn("lava", core.Pt(0, 0), nil)
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, sim.CodeUnknownTemplate, oopsErr.Code())
	assert.Empty(t, w.AllEntitiesIncludingInactive())

	_, err = sim.NewWorld(core.Pt(10, 10)).Spawn("lava", core.Pt(0, 0), nil)
	oopsErr, ok = oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, sim.CodeNoTemplates, oopsErr.Code())
}

type tagBinder struct{ bound []string }

func (b *tagBinder) Bind(_ *sim.World, e *sim.Entity) {
	b.bound = append(b.bound, e.TemplateName)
}

func TestBinderSeesEveryEntity(t *testing.T) {
	b := &tagBinder{}
	w := sim.NewWorld(core.Pt(10, 10), sim.WithBinder(b), sim.WithTemplates(catalog{"wall": {Name: "wall"}}))

	_, err := w.Spawn("wall", core.Pt(1, 1), nil)
	require.NoError(t, err)
	place(w, 2, 2)

	assert.Equal(t, []string{"wall", ""}, b.bound)
}

func TestLifecycleDispatch(t *testing.T) {
	w := newWorld()
	var here, inactive, away recorder
	here.listen(place(w, 1, 1), sim.OnWorldStart, sim.OnTurn, sim.OnReset)
	dormant := place(w, 2, 2)
	dormant.Active = false
	inactive.listen(dormant, sim.OnWorldStart, sim.OnTurn, sim.OnReset)
	away.listen(place(w, 40, 40), sim.OnWorldStart, sim.OnTurn, sim.OnReset)

	w.Start()
	w.Turn()
	w.Reset()

	want := []sim.TriggerKind{sim.OnWorldStart, sim.OnTurn, sim.OnReset}
	assert.Equal(t, want, here.kinds)
	assert.Equal(t, []sim.TriggerKind{sim.OnWorldStart, sim.OnReset}, inactive.kinds)
	assert.Equal(t, []sim.TriggerKind{sim.OnWorldStart, sim.OnReset}, away.kinds)
}

func TestDispatchToChannel(t *testing.T) {
	w := newWorld()
	src := place(w, 1, 1)
	var same, other, lowered recorder
	a := place(w, 3, 3)
	a.State.SetInt("channel", 2)
	same.listen(a, sim.OnSignalChange)
	b := place(w, 4, 4)
	b.State.SetInt("channel", 3)
	other.listen(b, sim.OnSignalChange)
	c := place(w, 5, 5)
	c.State.SetInt("channel", 2)
	c.Active = false
	lowered.listen(c, sim.OnSignalChange)

	w.DispatchToChannel(src, 2)

	assert.Len(t, same.kinds, 1)
	assert.Empty(t, other.kinds)
	assert.Len(t, lowered.kinds, 1)
}

func TestFireOutsideWorldIsNoop(t *testing.T) {
	e := sim.NewEntity(core.Pt(0, 0))
	called := false
	e.On(sim.OnTurn, func(*sim.World, *sim.Entity, sim.Trigger) { called = true })

	e.Fire(sim.Turn())

	assert.False(t, called)
	assert.True(t, e.Subscribed(sim.OnTurn))
	assert.False(t, e.Subscribed(sim.OnReset))
}

func TestCuesDrain(t *testing.T) {
	w := newWorld()
	w.Emit(sim.Cue{Kind: sim.CueSound, Name: "door_open"})

	assert.Len(t, w.DrainCues(), 1)
	assert.Empty(t, w.DrainCues())
}

package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tidepool/internal/core"
	"github.com/vovakirdan/tidepool/internal/sim"
)

func newWorld() *sim.World {
	return sim.NewWorld(core.Pt(10, 10))
}

func place(w *sim.World, x, y int, tags ...string) *sim.Entity {
	e := sim.NewEntity(core.Pt(x, y), tags...)
	w.AddEntity(e)
	return e
}

func newPlayer(w *sim.World, x, y int) *sim.Entity {
	return place(w, x, y, sim.TagPlayer, sim.TagSolid, sim.TagPusher, sim.TagPressesButtons)
}

func cueNames(cues []sim.Cue) []string {
	var names []string
	for _, c := range cues {
		names = append(names, c.Name)
	}
	return names
}

func TestMoveIntoEmptyCell(t *testing.T) {
	w := newWorld()
	p := newPlayer(w, 1, 1)

	status := w.Rules().AttemptMoveInDirection(p, core.DirDown)

	assert.True(t, status.WasSuccessful)
	assert.False(t, status.CausedPush)
	assert.Equal(t, core.Pt(1, 2), p.Position)
	assert.Equal(t, core.Pt(1, 1), status.Data.Source)
	assert.Equal(t, core.Pt(1, 2), status.Data.Destination)
}

func TestPushAdvancesMoverAndCrate(t *testing.T) {
	w := newWorld()
	p := newPlayer(w, 1, 1)
	crate := place(w, 2, 1, sim.TagSolid, sim.TagPushable)

	status := w.Rules().AttemptMoveInDirection(p, core.DirRight)

	require.True(t, status.WasSuccessful)
	assert.True(t, status.CausedPush)
	assert.Equal(t, core.Pt(2, 1), p.Position)
	assert.Equal(t, core.Pt(3, 1), crate.Position)
	require.Len(t, status.Dependencies, 1)
	assert.Equal(t, crate.ID, status.Dependencies[0].Data.Mover)
	assert.Contains(t, cueNames(w.DrainCues()), "push")
}

func TestPushChainOfPushers(t *testing.T) {
	w := newWorld()
	p := newPlayer(w, 1, 1)
	a := place(w, 2, 1, sim.TagSolid, sim.TagPushable, sim.TagPusher)
	b := place(w, 3, 1, sim.TagSolid, sim.TagPushable, sim.TagPusher)

	status := w.Rules().AttemptMoveInDirection(p, core.DirRight)

	require.True(t, status.WasSuccessful)
	assert.Equal(t, core.Pt(2, 1), p.Position)
	assert.Equal(t, core.Pt(3, 1), a.Position)
	assert.Equal(t, core.Pt(4, 1), b.Position)
}

func TestBlockedChainMovesNothing(t *testing.T) {
	tests := []struct {
		name string
		last []string
	}{
		{"crate then wall", []string{sim.TagSolid}},
		{"crate then unpushable crate", []string{sim.TagSolid, sim.TagPusher}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld()
			p := newPlayer(w, 1, 1)
			crate := place(w, 2, 1, sim.TagSolid, sim.TagPushable)
			wall := place(w, 3, 1, tt.last...)

			status := w.Rules().AttemptMoveInDirection(p, core.DirRight)

			assert.False(t, status.WasSuccessful)
			assert.False(t, status.CausedPush)
			assert.Equal(t, core.Pt(1, 1), p.Position)
			assert.Equal(t, core.Pt(2, 1), crate.Position)
			assert.Equal(t, core.Pt(3, 1), wall.Position)
		})
	}
}

func TestPartialChainIsNotRolledBack(t *testing.T) {
	w := newWorld()
	p := newPlayer(w, 1, 1)
	loose := place(w, 2, 1, sim.TagPushable)
	stuck := place(w, 2, 1, sim.TagSolid, sim.TagPushable)
	place(w, 3, 1, sim.TagSolid)

	status := w.Rules().AttemptMoveInDirection(p, core.DirRight)

	assert.False(t, status.WasSuccessful)
	assert.True(t, status.CausedPush)
	assert.Equal(t, core.Pt(1, 1), p.Position)
	assert.Equal(t, core.Pt(3, 1), loose.Position, "successful sub-move stays committed")
	assert.Equal(t, core.Pt(2, 1), stuck.Position)
	require.Len(t, status.Dependencies, 2)
	assert.True(t, status.Dependencies[0].WasSuccessful)
	assert.False(t, status.Dependencies[1].WasSuccessful)
}

func TestSolidNonPusherBlockedBySolid(t *testing.T) {
	w := newWorld()
	rock := place(w, 1, 1, sim.TagSolid)
	crate := place(w, 2, 1, sim.TagSolid, sim.TagPushable)

	status := w.Rules().AttemptMoveInDirection(rock, core.DirRight)

	assert.False(t, status.WasSuccessful)
	assert.Equal(t, core.Pt(1, 1), rock.Position)
	assert.Equal(t, core.Pt(2, 1), crate.Position)
}

func TestWater(t *testing.T) {
	t.Run("walker is blocked", func(t *testing.T) {
		w := newWorld()
		p := newPlayer(w, 1, 1)
		water := place(w, 2, 1, sim.TagWater)

		status := w.Rules().AttemptMoveInDirection(p, core.DirRight)

		assert.False(t, status.WasSuccessful)
		assert.Equal(t, core.Pt(1, 1), p.Position)
		assert.False(t, w.IsDestroyed(water))
	})

	t.Run("filler drowns", func(t *testing.T) {
		w := newWorld()
		crate := place(w, 1, 1, sim.TagFillsWater)
		water := place(w, 2, 1, sim.TagWater)

		status := w.Rules().AttemptMoveInDirection(crate, core.DirRight)

		assert.True(t, status.WasSuccessful)
		assert.True(t, w.IsDestroyed(water))
		assert.True(t, w.IsDestroyed(crate))
		assert.Empty(t, w.AllEntitiesIncludingInactive())
		assert.Contains(t, cueNames(w.DrainCues()), "sink")
	})

	t.Run("floater deactivates", func(t *testing.T) {
		w := newWorld()
		log := place(w, 1, 1, sim.TagFillsWater, sim.TagFloatsInWater)
		water := place(w, 2, 1, sim.TagWater)

		status := w.Rules().AttemptMoveInDirection(log, core.DirRight)

		assert.True(t, status.WasSuccessful)
		assert.True(t, w.IsDestroyed(water))
		assert.False(t, w.IsDestroyed(log))
		assert.False(t, log.Active)
		assert.Equal(t, core.Pt(2, 1), log.Position)
		assert.Empty(t, w.AllActiveEntities())
		assert.Equal(t, []*sim.Entity{log}, w.AllEntitiesIncludingInactive())
		assert.Contains(t, cueNames(w.DrainCues()), "splash")
	})

	t.Run("pushed crate fills water", func(t *testing.T) {
		w := newWorld()
		p := newPlayer(w, 1, 1)
		crate := place(w, 2, 1, sim.TagSolid, sim.TagPushable, sim.TagFillsWater)
		water := place(w, 3, 1, sim.TagWater)

		status := w.Rules().AttemptMoveInDirection(p, core.DirRight)

		assert.True(t, status.WasSuccessful)
		assert.True(t, w.IsDestroyed(crate))
		assert.True(t, w.IsDestroyed(water))
		assert.Equal(t, core.Pt(2, 1), p.Position)

		// the gap is filled, the player can walk on
		status = w.Rules().AttemptMoveInDirection(p, core.DirRight)
		assert.True(t, status.WasSuccessful)
	})

	t.Run("failed move discards deferred effects", func(t *testing.T) {
		w := newWorld()
		block := place(w, 1, 1, sim.TagSolid, sim.TagFillsWater)
		water := place(w, 2, 1, sim.TagWater)
		place(w, 2, 1, sim.TagSolid)

		status := w.Rules().AttemptMoveInDirection(block, core.DirRight)

		assert.False(t, status.WasSuccessful)
		assert.Zero(t, status.Pending())
		assert.False(t, w.IsDestroyed(water))
		assert.False(t, w.IsDestroyed(block))
	})
}

func TestClosedDoorBlocksSolid(t *testing.T) {
	tests := []struct {
		name  string
		state map[string]string
		ok    bool
	}{
		{"closed", map[string]string{"is_open": "false"}, false},
		{"missing flag counts as closed", nil, false},
		{"garbage counts as closed", map[string]string{"is_open": "ajar"}, false},
		{"open", map[string]string{"is_open": "true"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld()
			p := newPlayer(w, 1, 1)
			door := place(w, 2, 1, sim.TagDoor)
			for k, v := range tt.state {
				door.State.Set(k, v)
			}

			status := w.Rules().AttemptMoveInDirection(p, core.DirRight)
			assert.Equal(t, tt.ok, status.WasSuccessful)
		})
	}

	t.Run("opening before the attempt lets the mover through", func(t *testing.T) {
		w := newWorld()
		p := newPlayer(w, 1, 1)
		door := place(w, 2, 1, sim.TagDoor)
		door.State.SetBool("is_open", false)

		require.False(t, w.Rules().AttemptMoveInDirection(p, core.DirRight).WasSuccessful)
		door.State.SetBool("is_open", true)
		assert.True(t, w.Rules().AttemptMoveInDirection(p, core.DirRight).WasSuccessful)
		assert.Equal(t, core.Pt(2, 1), p.Position)
	})

	t.Run("non-solid movers pass closed doors", func(t *testing.T) {
		w := newWorld()
		ghost := place(w, 1, 1)
		place(w, 2, 1, sim.TagDoor)

		assert.True(t, w.Rules().AttemptMoveInDirection(ghost, core.DirRight).WasSuccessful)
	})
}

func TestInactiveEntitiesDoNotCollide(t *testing.T) {
	w := newWorld()
	p := newPlayer(w, 1, 1)
	wall := place(w, 2, 1, sim.TagSolid)
	wall.Active = false

	assert.True(t, w.Rules().AttemptMoveInDirection(p, core.DirRight).WasSuccessful)
}

func TestWaitIsNotAMove(t *testing.T) {
	w := newWorld()
	p := newPlayer(w, 1, 1)
	touched := 0
	pad := place(w, 1, 1)
	pad.On(sim.OnTouch, func(*sim.World, *sim.Entity, sim.Trigger) { touched++ })
	pad.On(sim.OnEntityMoved, func(*sim.World, *sim.Entity, sim.Trigger) { touched++ })

	status := w.Rules().AttemptMoveInDirection(p, core.DirNone)

	assert.False(t, status.WasSuccessful)
	assert.Equal(t, core.Pt(1, 1), p.Position)
	assert.Zero(t, touched)
}

func TestWarpIgnoresRules(t *testing.T) {
	w := newWorld()
	p := newPlayer(w, 1, 1)
	wall := place(w, 5, 5, sim.TagSolid)
	var got []sim.Trigger
	wall.On(sim.OnTouch, func(_ *sim.World, _ *sim.Entity, tr sim.Trigger) { got = append(got, tr) })

	var seen []sim.MoveData
	w.AddMoveListener(func(d sim.MoveData, _ *sim.MoveStatus) { seen = append(seen, d) })

	status := w.Rules().WarpToPosition(p, core.Pt(5, 5))

	assert.True(t, status.WasSuccessful)
	assert.Equal(t, core.Pt(5, 5), p.Position)
	require.Len(t, seen, 1)
	assert.True(t, seen[0].IsWarp())
	require.Len(t, got, 1)
	assert.Equal(t, sim.Touch(p.ID), got[0])
}

func TestCustomRules(t *testing.T) {
	w := newWorld()
	p := newPlayer(w, 1, 1)
	place(w, 2, 1, "Ice")
	w.Rules().AddRule(sim.ConditionRule{
		Name:   "ice-blocks-players",
		Mover:  sim.HasTags(sim.TagPlayer),
		Target: sim.HasTags("Ice"),
		Effect: func(c sim.RuleContext) { c.Status.Fail() },
	})

	assert.False(t, w.Rules().AttemptMoveInDirection(p, core.DirRight).WasSuccessful)
	assert.Len(t, w.Rules().Rules(), len(sim.DefaultRules())+1)
}

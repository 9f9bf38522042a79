package sim

import (
	"github.com/vovakirdan/tidepool/internal/core"
)

// Predicate matches an entity.
type Predicate func(e *Entity) bool

// HasTags matches entities carrying every tag.
func HasTags(tags ...string) Predicate {
	return func(e *Entity) bool { return e.Tags.HasAll(tags...) }
}

// HasAnyTag matches entities carrying at least one tag.
func HasAnyTag(tags ...string) Predicate {
	return func(e *Entity) bool { return e.Tags.HasAny(tags...) }
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(e *Entity) bool { return !p(e) }
}

// All matches when every predicate matches.
func All(ps ...Predicate) Predicate {
	return func(e *Entity) bool {
		for _, p := range ps {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// StateBool matches entities whose boolean state key equals want.
// Missing or unparsable values count as false.
func StateBool(key string, want bool) Predicate {
	return func(e *Entity) bool { return e.State.GetBoolOrFallback(key, false) == want }
}

// RuleContext is handed to a matching rule's effect.
type RuleContext struct {
	Rules  *RuleComputer
	Mover  *Entity
	Target *Entity
	Status *MoveStatus
}

// World returns the world the move happens in.
func (c RuleContext) World() *World {
	return c.Rules.world
}

// ConditionRule pairs mover and target conditions with an effect.
type ConditionRule struct {
	Name   string
	Mover  Predicate
	Target Predicate
	Effect func(c RuleContext)
}

// DefaultRules returns the movement rules in evaluation order.
func DefaultRules() []ConditionRule {
	return []ConditionRule{
		{
			Name:   "solid-non-pusher-blocked",
			Mover:  All(HasTags(TagSolid), Not(HasTags(TagPusher))),
			Target: HasTags(TagSolid),
			Effect: func(c RuleContext) { c.Status.Fail() },
		},
		{
			Name:   "solid-unpushable-blocks",
			Mover:  HasTags(TagSolid),
			Target: All(HasTags(TagSolid), Not(HasTags(TagPushable))),
			Effect: func(c RuleContext) { c.Status.Fail() },
		},
		{
			Name:   "push",
			Mover:  HasTags(TagSolid, TagPusher),
			Target: HasTags(TagPushable),
			Effect: pushEffect,
		},
		{
			Name:   "water-blocks-walkers",
			Mover:  Not(HasAnyTag(TagFloatsInWater, TagFillsWater)),
			Target: HasTags(TagWater),
			Effect: func(c RuleContext) { c.Status.Fail() },
		},
		{
			Name:   "closed-door-blocks-solid",
			Mover:  HasTags(TagSolid),
			Target: All(HasTags(TagDoor), StateBool("is_open", false)),
			Effect: func(c RuleContext) { c.Status.Fail() },
		},
		{
			Name:   "float-on-water",
			Mover:  HasTags(TagFillsWater, TagFloatsInWater),
			Target: HasTags(TagWater),
			Effect: floatEffect,
		},
		{
			Name:   "drown-in-water",
			Mover:  All(HasTags(TagFillsWater), Not(HasTags(TagFloatsInWater))),
			Target: HasTags(TagWater),
			Effect: drownEffect,
		},
	}
}

func pushEffect(c RuleContext) {
	sub := c.Rules.AttemptMoveInDirection(c.Target, c.Status.Data.Direction)
	c.Status.DependOnMove(sub)
	if sub.WasSuccessful {
		c.Status.CausedPush = true
	}
}

func floatEffect(c RuleContext) {
	w, mover, water := c.World(), c.Mover, c.Target
	c.Status.Defer(func() {
		w.Destroy(water)
		mover.Active = false
		w.Emit(Cue{Kind: CueSound, Name: "splash", Entity: mover.ID, Position: water.Position})
		w.logger.Debug("entity floats", "entity", mover, "water", water.ID)
	})
}

func drownEffect(c RuleContext) {
	w, mover, water := c.World(), c.Mover, c.Target
	c.Status.Defer(func() {
		w.Destroy(water)
		w.Destroy(mover)
		w.Emit(Cue{Kind: CueSound, Name: "sink", Entity: mover.ID, Position: water.Position})
		w.logger.Debug("entity drowns", "entity", mover, "water", water.ID)
	})
}

// RuleComputer resolves move legality, push chains and their side effects.
type RuleComputer struct {
	world *World
	rules []ConditionRule
}

// NewRuleComputer creates a rule computer bound to w with the default rules.
func NewRuleComputer(w *World) *RuleComputer {
	return &RuleComputer{world: w, rules: DefaultRules()}
}

// Rules returns the active rule list.
func (rc *RuleComputer) Rules() []ConditionRule {
	return rc.rules
}

// SetRules replaces the rule list. Rules run in slice order.
func (rc *RuleComputer) SetRules(rules []ConditionRule) {
	rc.rules = rules
}

// AddRule appends a rule after the existing ones.
func (rc *RuleComputer) AddRule(r ConditionRule) {
	rc.rules = append(rc.rules, r)
}

// AttemptMoveInDirection resolves one step of mover.
//
// Every active entity at the destination is checked against every rule in
// order, so several rules may fire for one cell. Pushes recurse. A successful
// move commits the mover's position and then runs deferred effects. Blocked
// moves are a normal outcome and still complete, so touch triggers fire.
//
// DirNone is not a step and returns a failed status without dispatching.
func (rc *RuleComputer) AttemptMoveInDirection(mover *Entity, dir core.Direction) *MoveStatus {
	data := MoveData{
		Mover:       mover.ID,
		Source:      mover.Position,
		Destination: mover.Position.Step(dir),
		Direction:   dir,
	}
	status := NewMoveStatus(data)
	if dir == core.DirNone {
		status.Fail()
		return status
	}

	for _, target := range rc.world.EntitiesAt(data.Destination, false) {
		if target == mover {
			continue
		}
		for _, rule := range rc.rules {
			if rule.Mover(mover) && rule.Target(target) {
				rc.world.logger.Debug("rule matched", "rule", rule.Name, "mover", mover, "target", target)
				rule.Effect(RuleContext{Rules: rc, Mover: mover, Target: target, Status: status})
			}
		}
	}

	if status.WasSuccessful {
		mover.Position = data.Destination
		status.runDeferred()
		if status.CausedPush {
			rc.world.Emit(Cue{Kind: CueSound, Name: "push", Entity: mover.ID, Position: data.Destination})
		}
	} else {
		status.discard()
	}

	rc.world.logger.Debug("move resolved", "move", data, "ok", status.WasSuccessful, "push", status.CausedPush)
	rc.world.OnMoveCompleted(data, status)
	return status
}

// WarpToPosition teleports mover without consulting any rule and dispatches
// the completion with DirNone.
func (rc *RuleComputer) WarpToPosition(mover *Entity, pos core.Point) *MoveStatus {
	data := MoveData{
		Mover:       mover.ID,
		Source:      mover.Position,
		Destination: pos,
		Direction:   core.DirNone,
	}
	status := NewMoveStatus(data)
	mover.Position = pos
	rc.world.logger.Debug("warp", "move", data)
	rc.world.OnMoveCompleted(data, status)
	return status
}

package sim

import (
	"fmt"

	"github.com/vovakirdan/tidepool/internal/core"
)

// Appearance is the visual handle forwarded to renderers. Rules never read it.
type Appearance struct {
	Sheet string
	Frame int
	Color core.Color
	Glyph rune
}

type binding struct {
	kind     TriggerKind
	behavior Behavior
}

// Entity is a grid occupant. Entities are owned by at most one World, which
// assigns ID when the entity is added.
type Entity struct {
	ID           EntityID
	TemplateName string
	Position     core.Point
	Tags         Tags
	State        *State
	Appearance   *Appearance

	// TemplatePriority comes from the template and feeds SortPriority.
	TemplatePriority int

	// Active entities take part in collision and movement queries.
	// Inactive ones still exist and render as background.
	Active bool

	behaviors []binding
	world     *World
}

// NewEntity creates an active entity with empty tags and state.
func NewEntity(pos core.Point, tags ...string) *Entity {
	return &Entity{
		Position: pos,
		Tags:     NewTags(tags...),
		State:    NewState(),
		Active:   true,
	}
}

// World returns the owning world, or nil before AddEntity.
func (e *Entity) World() *World {
	return e.world
}

// SortPriority orders drawing: lower values draw on top.
// Inactive entities sink below active entities of the same template priority.
func (e *Entity) SortPriority() int {
	p := e.TemplatePriority * 2
	if !e.Active {
		p++
	}
	return p
}

// On subscribes a behavior to a trigger kind. Several behaviors may share a kind;
// they run in registration order.
func (e *Entity) On(kind TriggerKind, b Behavior) {
	e.behaviors = append(e.behaviors, binding{kind: kind, behavior: b})
}

// Subscribed reports whether any behavior listens for kind.
func (e *Entity) Subscribed(kind TriggerKind) bool {
	for _, b := range e.behaviors {
		if b.kind == kind {
			return true
		}
	}
	return false
}

// Fire delivers t to every behavior subscribed to its kind.
// Entities outside a world have nobody to observe them, so Fire is a no-op there.
func (e *Entity) Fire(t Trigger) {
	if e.world == nil {
		return
	}
	kind := t.Kind()
	// Behaviors may subscribe more behaviors while running.
	bound := e.behaviors
	for _, b := range bound {
		if b.kind == kind {
			b.behavior(e.world, e, t)
		}
	}
}

// String returns a short debug form such as "crate#3.0@(4,2)".
func (e *Entity) String() string {
	name := e.TemplateName
	if name == "" {
		name = "meta"
	}
	return fmt.Sprintf("%s%v@%v", name, e.ID, e.Position)
}

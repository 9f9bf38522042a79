package sim

import (
	"fmt"

	"github.com/vovakirdan/tidepool/internal/core"
)

// Room is a rectangular window over world space with a cached list of the
// entities inside it. The cache is rebuilt by a full scan and is only valid
// until entity positions or membership change.
type Room struct {
	world       *World
	topLeft     core.Point
	bottomRight core.Point

	entities        []*Entity
	includeInactive bool
}

// NewRoom creates a room spanning two opposite corners in any order and fills
// its cache with active entities.
func NewRoom(w *World, a, b core.Point) *Room {
	r := &Room{
		world:       w,
		topLeft:     core.Pt(core.Min(a.X, b.X), core.Min(a.Y, b.Y)),
		bottomRight: core.Pt(core.Max(a.X, b.X), core.Max(a.Y, b.Y)),
	}
	r.RecalculateLiveEntities(false)
	return r
}

// TopLeft returns the minimum corner.
func (r *Room) TopLeft() core.Point { return r.topLeft }

// BottomRight returns the maximum corner.
func (r *Room) BottomRight() core.Point { return r.bottomRight }

// Width returns the number of columns, both edges included.
func (r *Room) Width() int { return r.bottomRight.X - r.topLeft.X + 1 }

// Height returns the number of rows, both edges included.
func (r *Room) Height() int { return r.bottomRight.Y - r.topLeft.Y + 1 }

// Contains reports whether p lies inside the room. Both edges are inclusive.
func (r *Room) Contains(p core.Point) bool {
	return p.X >= r.topLeft.X && p.X <= r.bottomRight.X &&
		p.Y >= r.topLeft.Y && p.Y <= r.bottomRight.Y
}

// Same reports whether two rooms cover the same tile of the room grid.
func (r *Room) Same(other *Room) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.topLeft == other.topLeft
}

// RecalculateLiveEntities rebuilds the cache from the world's entity list.
func (r *Room) RecalculateLiveEntities(includeInactive bool) {
	r.includeInactive = includeInactive
	r.entities = r.entities[:0]
	if r.world == nil {
		return
	}
	var source []*Entity
	if includeInactive {
		source = r.world.AllEntitiesIncludingInactive()
	} else {
		source = r.world.AllActiveEntities()
	}
	for _, e := range source {
		if r.Contains(e.Position) {
			r.entities = append(r.entities, e)
		}
	}
}

// Entities returns a snapshot of the cached members. Entities queued for
// destruction since the last recalculation are left out.
func (r *Room) Entities() []*Entity {
	out := make([]*Entity, 0, len(r.entities))
	for _, e := range r.entities {
		if r.world != nil && r.world.IsDestroyed(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// EntitiesAt returns cached members positioned exactly at p.
func (r *Room) EntitiesAt(p core.Point) []*Entity {
	var out []*Entity
	for _, e := range r.Entities() {
		if e.Position == p {
			out = append(out, e)
		}
	}
	return out
}

// EntitiesWithTag returns cached members carrying tag.
func (r *Room) EntitiesWithTag(tag string) []*Entity {
	var out []*Entity
	for _, e := range r.Entities() {
		if e.Tags.Has(tag) {
			out = append(out, e)
		}
	}
	return out
}

func (r *Room) String() string {
	return fmt.Sprintf("room[%v-%v]", r.topLeft, r.bottomRight)
}

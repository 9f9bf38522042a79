package sim

import "fmt"

// EntityID is a generational handle into a World's entity arena.
// The low 32 bits hold the slot index plus one, the high 32 bits the slot generation.
// The zero value is never issued.
type EntityID uint64

const slotBits = 32

func makeEntityID(index, gen uint32) EntityID {
	return EntityID(uint64(gen)<<slotBits | uint64(index+1))
}

func (id EntityID) index() uint32 {
	return uint32(id) - 1
}

func (id EntityID) generation() uint32 {
	return uint32(uint64(id) >> slotBits)
}

// Valid reports whether the handle was issued by an arena at some point.
func (id EntityID) Valid() bool {
	return uint32(id) != 0
}

func (id EntityID) String() string {
	if !id.Valid() {
		return "#nil"
	}
	return fmt.Sprintf("#%d.%d", id.index(), id.generation())
}

type slot struct {
	gen    uint32
	entity *Entity
}

// arena owns entity slots. Freed slots are reused with a bumped generation so
// stale handles never resolve to a newer entity.
type arena struct {
	slots []slot
	free  []uint32
}

func (a *arena) insert(e *Entity) EntityID {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot{})
	}
	a.slots[idx].entity = e
	return makeEntityID(idx, a.slots[idx].gen)
}

func (a *arena) get(id EntityID) *Entity {
	if !id.Valid() {
		return nil
	}
	idx := id.index()
	if int(idx) >= len(a.slots) {
		return nil
	}
	s := a.slots[idx]
	if s.gen != id.generation() {
		return nil
	}
	return s.entity
}

func (a *arena) remove(id EntityID) {
	if a.get(id) == nil {
		return
	}
	idx := id.index()
	a.slots[idx].entity = nil
	a.slots[idx].gen++
	a.free = append(a.free, idx)
}

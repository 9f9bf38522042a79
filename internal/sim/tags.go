package sim

import "sort"

// Well-known tags consulted by the default movement rules and behaviors.
const (
	TagPlayer         = "Player"
	TagSolid          = "Solid"
	TagPusher         = "Pusher"
	TagPushable       = "Pushable"
	TagWater          = "Water"
	TagFillsWater     = "FillsWater"
	TagFloatsInWater  = "FloatsInWater"
	TagDoor           = "Door"
	TagButton         = "Button"
	TagBridge         = "Bridge"
	TagPressesButtons = "PressesButtons"
	TagTeleporter     = "Teleporter"
	TagGoal           = "Goal"
)

// Tags is a set of string markers. The zero value is an empty, usable set.
type Tags struct {
	set map[string]struct{}
}

// NewTags creates a set holding the given tags.
func NewTags(tags ...string) Tags {
	var t Tags
	for _, tag := range tags {
		t.Add(tag)
	}
	return t
}

// Add inserts a tag. Adding an existing tag is a no-op.
func (t *Tags) Add(tag string) {
	if t.set == nil {
		t.set = make(map[string]struct{})
	}
	t.set[tag] = struct{}{}
}

// Remove deletes a tag if present.
func (t *Tags) Remove(tag string) {
	delete(t.set, tag)
}

// Has reports whether tag is present.
func (t Tags) Has(tag string) bool {
	_, ok := t.set[tag]
	return ok
}

// HasAll reports whether every given tag is present. An empty list is true.
func (t Tags) HasAll(tags ...string) bool {
	for _, tag := range tags {
		if !t.Has(tag) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one given tag is present.
func (t Tags) HasAny(tags ...string) bool {
	for _, tag := range tags {
		if t.Has(tag) {
			return true
		}
	}
	return false
}

// Len returns the number of tags.
func (t Tags) Len() int {
	return len(t.set)
}

// List returns the tags in sorted order.
func (t Tags) List() []string {
	out := make([]string, 0, len(t.set))
	for tag := range t.set {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (t Tags) Clone() Tags {
	return NewTags(t.List()...)
}

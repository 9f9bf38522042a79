// Package behavior holds the built-in entity behaviors and the registry that
// binds them to entities by tag or state as they join a world.
// Behaviors register themselves in init() functions.
package behavior

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tidepool/internal/sim"
)

// Definition describes one behavior.
type Definition struct {
	// Name is a unique identifier (e.g. "button", "door").
	Name string

	// Title is a human-readable description for listings.
	Title string

	// Applies reports whether an entity should receive the behavior.
	Applies func(e *sim.Entity) bool

	// Attach subscribes the behavior's handlers on e.
	Attach func(b *Binder, w *sim.World, e *sim.Entity) error
}

// Info is the listing form of a Definition.
type Info struct {
	Name  string
	Title string
}

var (
	definitions = make(map[string]Definition)
	mu          sync.RWMutex
)

// Register adds a behavior definition.
// Panics if a behavior with the same name is already registered.
func Register(d Definition) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := definitions[d.Name]; exists {
		panic(fmt.Sprintf("behavior: %q already registered", d.Name))
	}
	definitions[d.Name] = d
}

// List returns all registered behaviors sorted by name.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(definitions))
	for name, d := range definitions {
		result = append(result, Info{Name: name, Title: d.Title})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Lookup returns a definition by name.
func Lookup(name string) (Definition, error) {
	mu.RLock()
	defer mu.RUnlock()

	d, ok := definitions[name]
	if !ok {
		return Definition{}, fmt.Errorf("behavior: unknown behavior %q", name)
	}
	return d, nil
}

// Exists checks if a behavior with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := definitions[name]
	return ok
}

// sorted returns definitions in name order so binding is deterministic.
func sorted() []Definition {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]Definition, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func tagged(tag string) func(e *sim.Entity) bool {
	return func(e *sim.Entity) bool { return e.Tags.Has(tag) }
}

func hasState(key string) func(e *sim.Entity) bool {
	return func(e *sim.Entity) bool { return e.State.Has(key) }
}

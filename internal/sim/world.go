package sim

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tidepool/internal/core"
)

// Binder attaches behaviors to entities as they join a world.
type Binder interface {
	Bind(w *World, e *Entity)
}

// MoveListener observes every completed move after entity triggers ran.
type MoveListener func(data MoveData, status *MoveStatus)

// Option configures a World.
type Option func(*World)

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithTemplates sets the template provider used by Spawn.
func WithTemplates(p TemplateProvider) Option {
	return func(w *World) { w.templates = p }
}

// WithColors sets the color provider used by Spawn.
func WithColors(p ColorProvider) Option {
	return func(w *World) { w.colors = p }
}

// WithBinder sets the binder called for every added entity.
func WithBinder(b Binder) Option {
	return func(w *World) { w.binder = b }
}

// World owns entities, the current room and the rule computer.
//
// Destroy is a soft delete: the entity disappears from every query at once and
// is removed from the backing list at the next UpdateEntityList. Dispatch loops
// iterate snapshots, so behaviors may add and destroy entities freely.
type World struct {
	roomSize core.Point

	arena    arena
	entities []*Entity
	pending  map[EntityID]struct{}

	current *Room
	rules   *RuleComputer

	templates TemplateProvider
	colors    ColorProvider
	binder    Binder

	moveListeners   []MoveListener
	removeListeners []func(e *Entity)

	// moves holds the completions being dispatched, innermost last.
	moves []completion

	cues   []Cue
	logger *log.Logger
}

// NewWorld creates an empty world. roomSize is the interior size of one room
// and the current room starts as the one containing the origin.
func NewWorld(roomSize core.Point, opts ...Option) *World {
	w := &World{
		roomSize: roomSize,
		pending:  make(map[EntityID]struct{}),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.rules = NewRuleComputer(w)
	w.current = w.GetRoomAt(core.Point{})
	return w
}

// Logger returns the world's logger.
func (w *World) Logger() *log.Logger { return w.logger }

// RoomSize returns the configured room size.
func (w *World) RoomSize() core.Point { return w.roomSize }

// Rules returns the rule computer.
func (w *World) Rules() *RuleComputer { return w.rules }

// Templates returns the template provider, which may be nil.
func (w *World) Templates() TemplateProvider { return w.templates }

// AddEntity takes ownership of e and returns its new handle.
// Adding an entity that already belongs to a world panics.
func (w *World) AddEntity(e *Entity) EntityID {
	if e.world != nil {
		panic("sim: entity " + e.String() + " already belongs to a world")
	}
	if e.State == nil {
		e.State = NewState()
	}
	e.world = w
	e.ID = w.arena.insert(e)
	w.entities = append(w.entities, e)
	e.State.OnUpdated(func(key, value string) {
		w.fire(e, StateChanged(key, value))
	})
	if w.binder != nil {
		w.binder.Bind(w, e)
	}
	w.logger.Debug("entity added", "entity", e)
	return e.ID
}

// Spawn instantiates a template at pos and adds it. An empty name creates a
// metadata-only entity. extra overrides template state without notifications.
func (w *World) Spawn(name string, pos core.Point, extra map[string]string) (*Entity, error) {
	var e *Entity
	if name == "" {
		e = NewEntity(pos)
	} else {
		if w.templates == nil {
			return nil, errNoTemplates(name)
		}
		t, err := w.templates.Template(name)
		if err != nil {
			return nil, errUnknownTemplate(name, err)
		}
		e = NewEntityFromTemplate(t, pos, w.colors)
	}
	for k, v := range extra {
		e.State.values[k] = v
	}
	w.AddEntity(e)
	return e, nil
}

// PopulateFromTemplate spawns every entry except the player and refreshes the
// current room. It stops at the first unknown template.
func (w *World) PopulateFromTemplate(wt WorldTemplate) error {
	for _, entry := range wt.Entries {
		if entry.Template == PlayerTemplate {
			continue
		}
		if _, err := w.Spawn(entry.Template, entry.Position, entry.ExtraState); err != nil {
			return err
		}
	}
	w.current.RecalculateLiveEntities(w.current.includeInactive)
	return nil
}

// Destroy queues e for removal. Repeated calls are no-ops.
func (w *World) Destroy(e *Entity) {
	if e == nil || e.world != w {
		return
	}
	if _, ok := w.pending[e.ID]; ok {
		return
	}
	w.pending[e.ID] = struct{}{}
	w.logger.Debug("entity destroyed", "entity", e)
}

// IsDestroyed reports whether e is queued for removal or no longer owned by w.
func (w *World) IsDestroyed(e *Entity) bool {
	if e == nil || e.world != w {
		return true
	}
	_, ok := w.pending[e.ID]
	return ok
}

// Entity resolves a handle. Entities queued for removal still resolve until
// UpdateEntityList commits; stale handles return nil.
func (w *World) Entity(id EntityID) *Entity {
	return w.arena.get(id)
}

// AllActiveEntities returns a snapshot of live active entities.
func (w *World) AllActiveEntities() []*Entity {
	out := make([]*Entity, 0, len(w.entities))
	for _, e := range w.entities {
		if e.Active && !w.IsDestroyed(e) {
			out = append(out, e)
		}
	}
	return out
}

// AllEntitiesIncludingInactive returns a snapshot of every live entity.
func (w *World) AllEntitiesIncludingInactive() []*Entity {
	out := make([]*Entity, 0, len(w.entities))
	for _, e := range w.entities {
		if !w.IsDestroyed(e) {
			out = append(out, e)
		}
	}
	return out
}

// EntitiesAt returns live entities positioned exactly at p.
func (w *World) EntitiesAt(p core.Point, includeInactive bool) []*Entity {
	var out []*Entity
	for _, e := range w.entities {
		if e.Position != p || w.IsDestroyed(e) {
			continue
		}
		if e.Active || includeInactive {
			out = append(out, e)
		}
	}
	return out
}

// EntitiesWithTag returns live active entities carrying tag.
func (w *World) EntitiesWithTag(tag string) []*Entity {
	var out []*Entity
	for _, e := range w.AllActiveEntities() {
		if e.Tags.Has(tag) {
			out = append(out, e)
		}
	}
	return out
}

// UpdateEntityList commits pending removals and rebuilds the current room cache.
// Calling it again without new destructions changes nothing.
func (w *World) UpdateEntityList() {
	if len(w.pending) > 0 {
		var removed []*Entity
		kept := w.entities[:0]
		for _, e := range w.entities {
			if _, ok := w.pending[e.ID]; ok {
				removed = append(removed, e)
				continue
			}
			kept = append(kept, e)
		}
		for i := len(kept); i < len(w.entities); i++ {
			w.entities[i] = nil
		}
		w.entities = kept
		for _, e := range removed {
			w.arena.remove(e.ID)
			e.world = nil
			for _, fn := range w.removeListeners {
				fn(e)
			}
		}
		w.pending = make(map[EntityID]struct{})
		w.logger.Debug("entity list committed", "removed", len(removed), "live", len(w.entities))
	}
	w.current.RecalculateLiveEntities(w.current.includeInactive)
}

// AddRemoveListener registers fn to run for every entity physically removed.
func (w *World) AddRemoveListener(fn func(e *Entity)) {
	w.removeListeners = append(w.removeListeners, fn)
}

// GetRoomCornersAt returns the room tile containing p. Rooms are one tile
// larger than roomSize in each axis because neighbours share a border edge.
func (w *World) GetRoomCornersAt(p core.Point) (topLeft, bottomRight core.Point) {
	iw, ih := w.roomSize.X+1, w.roomSize.Y+1
	topLeft = p.Sub(core.Pt(core.Mod(p.X, iw), core.Mod(p.Y, ih)))
	return topLeft, topLeft.Add(w.roomSize)
}

// GetRoomAt builds a fresh room for the tile containing p.
func (w *World) GetRoomAt(p core.Point) *Room {
	tl, br := w.GetRoomCornersAt(p)
	return NewRoom(w, tl, br)
}

// CurrentRoom returns the active room.
func (w *World) CurrentRoom() *Room { return w.current }

// SetCurrentRoom switches rooms, dispatching OnExit to the old room's active
// entities and OnEnter to the new one's. Re-entering the same room is silent.
func (w *World) SetCurrentRoom(r *Room) {
	if r == nil || w.current.Same(r) {
		return
	}
	prev := w.current
	prev.RecalculateLiveEntities(false)
	r.RecalculateLiveEntities(false)
	w.current = r
	w.logger.Debug("room changed", "from", prev, "to", r)
	w.DispatchToRoom(prev, Exit())
	w.DispatchToRoom(r, Enter())
}

// EnterRoom makes r current and dispatches OnEnter to its active entities
// without an OnExit to the previous room. Used when play begins in r.
func (w *World) EnterRoom(r *Room) {
	if r == nil {
		return
	}
	r.RecalculateLiveEntities(false)
	w.current = r
	w.logger.Debug("room entered", "room", r)
	w.DispatchToRoom(r, Enter())
}

type completion struct {
	data   MoveData
	status *MoveStatus
}

// CurrentMove returns the innermost move whose completion is being dispatched.
// Behaviors use it to tell warps from steps.
func (w *World) CurrentMove() (MoveData, *MoveStatus, bool) {
	if len(w.moves) == 0 {
		return MoveData{}, nil, false
	}
	c := w.moves[len(w.moves)-1]
	return c.data, c.status, true
}

// AddMoveListener registers a world-level move completion observer.
func (w *World) AddMoveListener(fn MoveListener) {
	w.moveListeners = append(w.moveListeners, fn)
}

// OnMoveCompleted dispatches move triggers to the rooms a move touched.
//
// Entities come from the source room, plus the destination room when a
// successful move crossed a boundary. Entities at the destination get OnTouch
// even when the move failed, entities at the source get OnSteppedOff on success,
// and every gathered entity gets OnEntityMoved. The mover never touches or
// steps off itself. World move listeners run last.
func (w *World) OnMoveCompleted(data MoveData, status *MoveStatus) {
	w.moves = append(w.moves, completion{data: data, status: status})
	defer func() { w.moves = w.moves[:len(w.moves)-1] }()

	src := w.GetRoomAt(data.Source)
	gathered := src.Entities()
	if status.WasSuccessful {
		if dst := w.GetRoomAt(data.Destination); !dst.Same(src) {
			seen := make(map[EntityID]struct{}, len(gathered))
			for _, e := range gathered {
				seen[e.ID] = struct{}{}
			}
			for _, e := range dst.Entities() {
				if _, ok := seen[e.ID]; !ok {
					gathered = append(gathered, e)
				}
			}
		}
	}

	for _, e := range gathered {
		if e.ID != data.Mover && e.Position == data.Destination {
			w.fire(e, Touch(data.Mover))
		}
	}
	if status.WasSuccessful {
		for _, e := range gathered {
			if e.ID != data.Mover && e.Position == data.Source {
				w.fire(e, SteppedOff(data.Mover))
			}
		}
	}
	for _, e := range gathered {
		w.fire(e, EntityMoved(data.Mover))
	}

	listeners := w.moveListeners
	for _, fn := range listeners {
		fn(data, status)
	}
}

// fire skips entities destroyed earlier in the same dispatch.
func (w *World) fire(e *Entity, t Trigger) {
	if w.IsDestroyed(e) {
		return
	}
	e.Fire(t)
}

// DispatchToRoom fires t on every live member of r's cache.
func (w *World) DispatchToRoom(r *Room, t Trigger) {
	for _, e := range r.Entities() {
		w.fire(e, t)
	}
}

// DispatchToChannel sends OnSignalChange to every entity in source's room,
// inactive ones included, whose "channel" state equals channel.
func (w *World) DispatchToChannel(source *Entity, channel int) {
	room := w.GetRoomAt(source.Position)
	room.RecalculateLiveEntities(true)
	t := SignalChange(source.ID, channel)
	w.logger.Debug("signal", "source", source, "channel", channel)
	for _, e := range room.Entities() {
		if ch, ok := e.State.GetInt("channel"); ok && ch == channel {
			w.fire(e, t)
		}
	}
}

// ChannelMembers returns live entities in the room containing p whose
// "channel" state equals channel and that carry tag, inactive ones included.
func (w *World) ChannelMembers(p core.Point, channel int, tag string) []*Entity {
	room := w.GetRoomAt(p)
	room.RecalculateLiveEntities(true)
	var out []*Entity
	for _, e := range room.Entities() {
		if !e.Tags.Has(tag) {
			continue
		}
		if ch, ok := e.State.GetInt("channel"); ok && ch == channel {
			out = append(out, e)
		}
	}
	return out
}

// Start dispatches OnWorldStart to every live entity.
func (w *World) Start() {
	for _, e := range w.AllEntitiesIncludingInactive() {
		w.fire(e, WorldStart())
	}
}

// Reset dispatches OnReset to every live entity.
func (w *World) Reset() {
	for _, e := range w.AllEntitiesIncludingInactive() {
		w.fire(e, Reset())
	}
}

// Turn dispatches OnTurn to the active entities of the current room.
func (w *World) Turn() {
	w.current.RecalculateLiveEntities(false)
	w.DispatchToRoom(w.current, Turn())
}

// Emit queues a presentation cue.
func (w *World) Emit(c Cue) {
	w.cues = append(w.cues, c)
}

// DrainCues returns and clears queued cues.
func (w *World) DrainCues() []Cue {
	out := w.cues
	w.cues = nil
	return out
}

package sim

import "fmt"

// TriggerKind names an event that entity behaviors can subscribe to.
// Kinds are plain comparable strings so content can introduce new ones.
type TriggerKind string

// Built-in trigger kinds dispatched by the World and its RuleComputer.
const (
	OnTouch        TriggerKind = "OnTouch"
	OnEnter        TriggerKind = "OnEnter"
	OnEntityMoved  TriggerKind = "OnEntityMoved"
	OnStateChanged TriggerKind = "OnStateChanged"
	OnSignalChange TriggerKind = "OnSignalChange"
	OnTurn         TriggerKind = "OnTurn"
	OnWorldStart   TriggerKind = "OnWorldStart"
	OnSteppedOff   TriggerKind = "OnSteppedOff"
	OnExit         TriggerKind = "OnExit"
	OnReset        TriggerKind = "OnReset"
)

// TriggerKinds lists the built-in kinds in dispatch-table order.
var TriggerKinds = []TriggerKind{
	OnTouch, OnEnter, OnEntityMoved, OnStateChanged, OnSignalChange,
	OnTurn, OnWorldStart, OnSteppedOff, OnExit, OnReset,
}

// Trigger is a dispatched event with an optional typed payload.
type Trigger interface {
	Kind() TriggerKind
	trigger()
}

// Behavior reacts to a trigger delivered to self.
type Behavior func(w *World, self *Entity, t Trigger)

// BasicTrigger carries no payload.
type BasicTrigger struct {
	kind TriggerKind
}

func (t BasicTrigger) Kind() TriggerKind { return t.kind }
func (BasicTrigger) trigger()            {}
func (t BasicTrigger) String() string    { return string(t.kind) }

// EntityTrigger carries the entity that caused it, usually a mover.
type EntityTrigger struct {
	kind   TriggerKind
	Entity EntityID
}

func (t EntityTrigger) Kind() TriggerKind { return t.kind }
func (EntityTrigger) trigger()            {}
func (t EntityTrigger) String() string    { return fmt.Sprintf("%s(%v)", t.kind, t.Entity) }

// StateTrigger carries the key and value of a state update.
type StateTrigger struct {
	Key   string
	Value string
}

func (StateTrigger) Kind() TriggerKind { return OnStateChanged }
func (StateTrigger) trigger()          {}
func (t StateTrigger) String() string  { return fmt.Sprintf("%s(%s=%s)", OnStateChanged, t.Key, t.Value) }

// SignalTrigger carries the entity that changed a channel and the channel number.
type SignalTrigger struct {
	Source  EntityID
	Channel int
}

func (SignalTrigger) Kind() TriggerKind { return OnSignalChange }
func (SignalTrigger) trigger()          {}
func (t SignalTrigger) String() string {
	return fmt.Sprintf("%s(%v ch=%d)", OnSignalChange, t.Source, t.Channel)
}

// NewBasicTrigger creates a payload-free trigger of any kind, including custom ones.
func NewBasicTrigger(kind TriggerKind) BasicTrigger { return BasicTrigger{kind: kind} }

// NewEntityTrigger creates an entity-payload trigger of any kind.
func NewEntityTrigger(kind TriggerKind, id EntityID) EntityTrigger {
	return EntityTrigger{kind: kind, Entity: id}
}

// Touch is dispatched to entities a mover bumps into.
func Touch(mover EntityID) EntityTrigger { return NewEntityTrigger(OnTouch, mover) }

// SteppedOff is dispatched to entities a mover leaves.
func SteppedOff(mover EntityID) EntityTrigger { return NewEntityTrigger(OnSteppedOff, mover) }

// EntityMoved is dispatched to every live entity after a successful move.
func EntityMoved(mover EntityID) EntityTrigger { return NewEntityTrigger(OnEntityMoved, mover) }

// StateChanged is dispatched to an entity whose state key was written.
func StateChanged(key, value string) StateTrigger {
	return StateTrigger{Key: key, Value: value}
}

// SignalChange is dispatched to listeners of a channel that flipped.
func SignalChange(source EntityID, channel int) SignalTrigger {
	return SignalTrigger{Source: source, Channel: channel}
}

// Enter is dispatched when an entity's room becomes current.
func Enter() BasicTrigger { return NewBasicTrigger(OnEnter) }

// Exit is dispatched when an entity's room stops being current.
func Exit() BasicTrigger { return NewBasicTrigger(OnExit) }

// Turn is dispatched to every live entity once per turn.
func Turn() BasicTrigger { return NewBasicTrigger(OnTurn) }

// WorldStart is dispatched once when the world starts.
func WorldStart() BasicTrigger { return NewBasicTrigger(OnWorldStart) }

// Reset is dispatched when the world resets.
func Reset() BasicTrigger { return NewBasicTrigger(OnReset) }

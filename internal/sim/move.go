package sim

import (
	"fmt"

	"github.com/vovakirdan/tidepool/internal/core"
)

// MoveData is the immutable record of one attempted move.
type MoveData struct {
	Mover       EntityID
	Source      core.Point
	Destination core.Point
	Direction   core.Direction
}

// IsWarp reports whether the move was a teleport rather than a step.
func (d MoveData) IsWarp() bool {
	return d.Direction == core.DirNone
}

func (d MoveData) String() string {
	return fmt.Sprintf("%v %v->%v %v", d.Mover, d.Source, d.Destination, d.Direction)
}

// MoveStatus is the mutable result of resolving a move.
//
// Destructive effects are queued with Defer so that every condition at the
// destination is evaluated against the pre-move world. They run once, after the
// mover's position is committed, and only if the move succeeded.
type MoveStatus struct {
	Data          MoveData
	WasSuccessful bool
	CausedPush    bool

	// Dependencies are the push sub-moves this move waited on, in resolution order.
	Dependencies []*MoveStatus

	deferred []func()
}

// NewMoveStatus creates a status that is successful until something fails it.
func NewMoveStatus(data MoveData) *MoveStatus {
	return &MoveStatus{Data: data, WasSuccessful: true}
}

// Fail marks the move as blocked.
func (s *MoveStatus) Fail() {
	s.WasSuccessful = false
}

// DependOnMove links a push sub-move. A failed sub-move fails this move.
// Position changes already committed by a successful sub-move are not undone.
func (s *MoveStatus) DependOnMove(sub *MoveStatus) {
	s.Dependencies = append(s.Dependencies, sub)
	if !sub.WasSuccessful {
		s.WasSuccessful = false
	}
}

// Defer queues an action to run after resolution completes.
func (s *MoveStatus) Defer(fn func()) {
	s.deferred = append(s.deferred, fn)
}

// Pending returns the number of queued deferred actions.
func (s *MoveStatus) Pending() int {
	return len(s.deferred)
}

func (s *MoveStatus) runDeferred() {
	actions := s.deferred
	s.deferred = nil
	for _, fn := range actions {
		fn()
	}
}

// discard drops queued actions of a failed move.
func (s *MoveStatus) discard() {
	s.deferred = nil
}

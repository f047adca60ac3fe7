package sim

import "fmt"

// Action is one of the four discrete robot moves.
type Action int

const (
	ActionUp Action = iota
	ActionDown
	ActionLeft
	ActionRight
)

// NumActions is the size of the discrete action space.
const NumActions = 4

// actionDeltas is the single action <-> delta table. Both directions of the
// mapping are derived from it.
var actionDeltas = [NumActions]Cell{
	ActionUp:    {Row: -1, Col: 0},
	ActionDown:  {Row: 1, Col: 0},
	ActionLeft:  {Row: 0, Col: -1},
	ActionRight: {Row: 0, Col: 1},
}

var actionNames = [NumActions]string{"UP", "DOWN", "LEFT", "RIGHT"}

// Valid reports whether a is inside the 4-way encoding.
func (a Action) Valid() bool {
	return a >= 0 && a < NumActions
}

func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// Delta returns the unit displacement of a.
func (a Action) Delta() (Cell, error) {
	if !a.Valid() {
		return Cell{}, fmt.Errorf("%w: %d", ErrInvalidAction, int(a))
	}
	return actionDeltas[a], nil
}

// ActionForDelta is the inverse of Delta. Zero, diagonal and non-unit
// deltas have no action.
func ActionForDelta(d Cell) (Action, bool) {
	for a, delta := range actionDeltas {
		if delta == d {
			return Action(a), true
		}
	}
	return 0, false
}

// ParseAction converts an externally supplied integer into an Action.
func ParseAction(v int) (Action, error) {
	a := Action(v)
	if !a.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAction, v)
	}
	return a, nil
}

// AllActions returns the actions in encoding order.
func AllActions() []Action {
	return []Action{ActionUp, ActionDown, ActionLeft, ActionRight}
}

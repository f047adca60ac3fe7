package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// WaitingOrder selects which in-domain item SelectWaitingItemAction targets.
type WaitingOrder int

const (
	// WaitingOrderMin targets the item with the smallest waiting time, i.e. the
	// newest one. This is the historical behaviour of the "oldest item" policy.
	WaitingOrderMin WaitingOrder = iota
	// WaitingOrderMax targets the item with the largest waiting time, i.e. the
	// one that has waited longest.
	WaitingOrderMax
)

func (o WaitingOrder) String() string {
	if o == WaitingOrderMax {
		return "max"
	}
	return "min"
}

// Robot moves inside a fixed rectangular domain of the warehouse grid.
type Robot struct {
	id     int
	pos    Cell
	domain Domain

	// ItemsCollected counts items picked up by this robot. Advisory only:
	// no policy reads it.
	ItemsCollected int

	rng    *rand.Rand // shared warehouse stream, used for fallback actions
	router *Router    // built on first heuristic call
}

// NewRobot places a robot at pos inside domain. rng is the simulation's
// shared random stream.
func NewRobot(id int, pos Cell, domain Domain, rng *rand.Rand) *Robot {
	return &Robot{
		id:     id,
		pos:    pos,
		domain: domain,
		rng:    rng,
	}
}

// ID returns the robot identifier.
func (r *Robot) ID() int { return r.id }

// Position returns the robot's global grid cell.
func (r *Robot) Position() Cell { return r.pos }

// Domain returns the rectangle the robot is confined to.
func (r *Robot) Domain() Domain { return r.domain }

// LocalPosition returns the robot's cell relative to its domain.
func (r *Robot) LocalPosition() Cell { return r.domain.ToLocal(r.pos) }

// Act applies a move. A move that would leave the domain is silently
// dropped; an action outside the encoding is an error and moves nothing.
func (r *Robot) Act(a Action) error {
	delta, err := a.Delta()
	if err != nil {
		return err
	}
	r.SetPosition(r.pos.Add(delta))
	return nil
}

// SetPosition moves the robot to pos if pos is inside its domain and
// reports whether it moved.
func (r *Robot) SetPosition(pos Cell) bool {
	if !r.domain.Contains(pos) {
		return false
	}
	r.pos = pos
	return true
}

// Router returns the robot's domain router, building it on first use.
func (r *Robot) Router() *Router {
	if r.router == nil {
		r.router = NewRouter(r.domain.Rows(), r.domain.Cols())
		logrus.Debugf("robot %d: built router for %dx%d domain (%d edges)",
			r.id, r.domain.Rows(), r.domain.Cols(), r.router.NumEdges())
	}
	return r.router
}

// SelectRandomAction draws uniformly over the four actions.
func (r *Robot) SelectRandomAction() Action {
	return Action(r.rng.Intn(NumActions))
}

// SelectNaiveAction takes one step towards the closest item in an image
// observation (cells equal to 1). Ties go to the first such cell in
// row-major order. Falls back to a random action when there is no item or
// the robot already stands on its target.
func (r *Robot) SelectNaiveAction(obs *mat.Dense) Action {
	p := r.PathToClosestItem(obs)
	if a, ok := FirstAction(p); ok {
		return a
	}
	return r.SelectRandomAction()
}

// PathToClosestItem returns the domain-local shortest path from the robot to
// the nearest item marked in obs, or nil if obs holds no reachable item.
func (r *Robot) PathToClosestItem(obs *mat.Dense) []Cell {
	router := r.Router()
	rows, cols := obs.Dims()
	from := r.LocalPosition()

	minDistance := rows + cols
	var target *Cell
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if obs.At(i, j) != 1 {
				continue
			}
			c := Cell{Row: i, Col: j}
			d, ok := router.Distance(from, c)
			if ok && d < minDistance {
				minDistance = d
				target = &c
			}
		}
	}
	if target == nil {
		return nil
	}
	return router.Path(from, *target)
}

// SelectWaitingItemAction takes one step towards the in-domain item chosen
// by order among items. The roster may contain items anywhere in the grid;
// only those inside the domain are considered. Falls back to a random action
// like SelectNaiveAction.
func (r *Robot) SelectWaitingItemAction(items []*Item, order WaitingOrder) Action {
	p := r.PathToWaitingItem(items, order)
	if a, ok := FirstAction(p); ok {
		return a
	}
	return r.SelectRandomAction()
}

// PathToWaitingItem returns the domain-local shortest path to the item
// selected by order, or nil when no item lies inside the domain.
func (r *Robot) PathToWaitingItem(items []*Item, order WaitingOrder) []Cell {
	router := r.Router()
	target := selectByWaitingTime(r.ItemsInDomain(items), order)
	if target == nil {
		return nil
	}
	return router.Path(r.LocalPosition(), r.domain.ToLocal(target.Position))
}

// ItemsInDomain filters items to those inside the robot's domain, keeping
// roster order.
func (r *Robot) ItemsInDomain(items []*Item) []*Item {
	var in []*Item
	for _, it := range items {
		if r.domain.Contains(it.Position) {
			in = append(in, it)
		}
	}
	return in
}

// selectByWaitingTime returns the first item with the extreme waiting time.
func selectByWaitingTime(items []*Item, order WaitingOrder) *Item {
	var best *Item
	for _, it := range items {
		if best == nil {
			best = it
			continue
		}
		switch order {
		case WaitingOrderMax:
			if it.WaitingTime > best.WaitingTime {
				best = it
			}
		default:
			if it.WaitingTime < best.WaitingTime {
				best = it
			}
		}
	}
	return best
}

// FirstAction converts the first edge of path into an action. It reports
// false for paths shorter than two cells and for first edges that are not a
// single up/down/left/right step.
func FirstAction(path []Cell) (Action, bool) {
	if len(path) < 2 {
		return 0, false
	}
	return ActionForDelta(path[1].Sub(path[0]))
}

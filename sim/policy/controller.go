package policy

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/inference-sim/warehouse-sim/sim"
)

// Controller supplies one action per robot, in roster order, for the next
// Warehouse.Step. Controllers only read warehouse state.
type Controller interface {
	Actions(w *sim.Warehouse) []sim.Action
}

// Random picks every robot's action uniformly from its own stream, leaving
// the warehouse stream to item spawning.
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a Random controller drawing from rng.
func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (c *Random) Actions(w *sim.Warehouse) []sim.Action {
	actions := make([]sim.Action, len(w.Robots()))
	for i := range actions {
		actions[i] = sim.Action(c.rng.Intn(sim.NumActions))
	}
	return actions
}

// Naive sends each robot toward the nearest item in its image observation.
// Robots with nothing in view fall back to a random move from the
// warehouse stream.
type Naive struct{}

func (c *Naive) Actions(w *sim.Warehouse) []sim.Action {
	state := w.State()
	actions := make([]sim.Action, len(w.Robots()))
	for i, r := range w.Robots() {
		actions[i] = r.SelectNaiveAction(r.ObserveImage(state))
	}
	return actions
}

// WaitingTime sends each robot toward the item in its domain selected by
// waiting time: the newest for sim.WaitingOrderMin, the oldest for
// sim.WaitingOrderMax.
type WaitingTime struct {
	Order sim.WaitingOrder
}

func (c *WaitingTime) Actions(w *sim.Warehouse) []sim.Action {
	actions := make([]sim.Action, len(w.Robots()))
	for i, r := range w.Robots() {
		actions[i] = r.SelectWaitingItemAction(w.Items(), c.Order)
	}
	return actions
}

// controllerNames maps accepted controller names.
var controllerNames = map[string]bool{
	"random":      true,
	"naive":       true,
	"waiting-min": true,
	"waiting-max": true,
}

// IsValidController returns true if name is a recognized controller.
func IsValidController(name string) bool {
	return controllerNames[name]
}

// ValidControllers lists the recognized controller names, sorted.
func ValidControllers() []string {
	names := make([]string, 0, len(controllerNames))
	for n := range controllerNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewController creates a controller by name. rng is used by "random" only.
// Panics on an unknown name; callers validate with IsValidController first.
func NewController(name string, rng *rand.Rand) Controller {
	switch name {
	case "random":
		return NewRandom(rng)
	case "naive":
		return &Naive{}
	case "waiting-min":
		return &WaitingTime{Order: sim.WaitingOrderMin}
	case "waiting-max":
		return &WaitingTime{Order: sim.WaitingOrderMax}
	default:
		panic(fmt.Sprintf("unknown controller %q; valid controllers: %v", name, ValidControllers()))
	}
}

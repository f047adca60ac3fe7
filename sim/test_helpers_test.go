package sim

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// singleRobotConfig is the 5x5 grid with one robot owning the whole grid
// and shelf spacing 2.
func singleRobotConfig(prob float64) Config {
	return Config{
		NColumns:               5,
		NRows:                  5,
		NRobotsRow:             1,
		NRobotsColumn:          1,
		DistanceBetweenShelves: 2,
		RobotDomainSize:        [2]int{5, 5},
		ProbItemAppears:        prob,
		NStepsEpisode:          10,
		ObsType:                ObsImage,
	}
}

// newTestWarehouse builds and resets a warehouse seeded with seed.
func newTestWarehouse(t *testing.T, cfg Config, seed int64) *Warehouse {
	t.Helper()
	rng := NewPartitionedRNG(NewSimulationKey(seed)).ForSubsystem(SubsystemWarehouse)
	w, err := NewWarehouse(cfg, rng)
	if err != nil {
		t.Fatalf("NewWarehouse: %v", err)
	}
	w.Reset()
	return w
}

// newTestRobot places a robot in a domain with a fixed-seed stream.
func newTestRobot(pos Cell, domain Domain) *Robot {
	return NewRobot(0, pos, domain, rand.New(rand.NewSource(1)))
}

// imageObs builds a domain-local image observation with items at the given
// local cells and the robot (-1) at self.
func imageObs(rows, cols int, self Cell, items ...Cell) *mat.Dense {
	obs := mat.NewDense(rows, cols, nil)
	for _, c := range items {
		obs.Set(c.Row, c.Col, 1)
	}
	obs.Set(self.Row, self.Col, obs.At(self.Row, self.Col)-1)
	return obs
}

// setItems replaces the live roster, for scenario setup.
func setItems(w *Warehouse, cells ...Cell) {
	w.items = nil
	for _, c := range cells {
		w.items = append(w.items, NewItem(w.itemID, c))
		w.itemID++
	}
}

func itemIDs(items []*Item) map[int]bool {
	ids := make(map[int]bool, len(items))
	for _, it := range items {
		ids[it.ID] = true
	}
	return ids
}

func manhattan(a, b Cell) int {
	d := a.Sub(b)
	return abs(d.Row) + abs(d.Col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

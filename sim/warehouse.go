package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/inference-sim/warehouse-sim/sim/trace"
)

// Reward is the per-step reward duplicated into a pair; wrappers that need
// two reward signals may split it.
type Reward [2]int

// Warehouse is the grid world: it owns the robot and item rosters and the
// reset/step transition logic.
//
// Thread-safety: NOT thread-safe. The whole simulation is one actor.
type Warehouse struct {
	cfg Config
	rng *rand.Rand

	robots []*Robot
	items  []*Item

	itemID         int // next item id
	episodeStep    int
	itemsCollected int

	metrics *EpisodeMetrics
	trace   *trace.EpisodeTrace // nil = no tracing
}

// NewWarehouse validates cfg and creates a warehouse drawing all randomness
// from rng. Call Reset before the first Step.
func NewWarehouse(cfg Config, rng *rand.Rand) (*Warehouse, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("warehouse requires a random source")
	}
	return &Warehouse{
		cfg:     cfg,
		rng:     rng,
		metrics: NewEpisodeMetrics(),
	}, nil
}

// Seed resets the warehouse random stream. Together with Reset and the same
// action sequence this reproduces an episode exactly.
func (w *Warehouse) Seed(seed int64) {
	w.rng.Seed(seed)
}

// SetTrace attaches a trace that receives one record per Step. Pass nil to
// stop tracing.
func (w *Warehouse) SetTrace(et *trace.EpisodeTrace) {
	w.trace = et
}

// Reset starts a new episode: robots back at their domain centers, a fresh
// item roster with an initial spawn, counters cleared.
func (w *Warehouse) Reset() (Reward, bool) {
	w.placeRobots()
	w.itemID = 0
	w.itemsCollected = 0
	w.items = nil
	w.episodeStep = 0
	w.metrics = NewEpisodeMetrics()
	spawned := w.addItems()
	w.metrics.ItemsSpawned += spawned
	w.metrics.observeLive(len(w.items))
	logrus.Debugf("[episode reset] %d robots, %d initial items", len(w.robots), spawned)
	return Reward{0, 0}, false
}

// Step advances the simulation by one synchronous tick. actions[i] is
// applied to the i-th robot of the roster. The whole action list is
// validated before anything moves.
func (w *Warehouse) Step(actions []Action) (Reward, bool, error) {
	if len(actions) != len(w.robots) {
		return Reward{}, false, fmt.Errorf("%w: got %d actions for %d robots", ErrActionCount, len(actions), len(w.robots))
	}
	for i, a := range actions {
		if !a.Valid() {
			return Reward{}, false, fmt.Errorf("robot %d: %w: %d", w.robots[i].ID(), ErrInvalidAction, int(a))
		}
	}

	w.robotsAct(actions)
	reward, collections := w.computeReward()
	w.removeItems()
	w.increaseItemWaitingTime()
	spawned := w.addItems()
	w.episodeStep++
	done := w.cfg.NStepsEpisode <= w.episodeStep

	w.metrics.Steps++
	w.metrics.TotalReward += reward
	w.metrics.ItemsSpawned += spawned
	w.metrics.observeLive(len(w.items))

	if w.trace != nil {
		acts := make([]int, len(actions))
		for i, a := range actions {
			acts[i] = int(a)
		}
		w.trace.RecordStep(trace.StepRecord{
			Step:        w.episodeStep,
			Actions:     acts,
			Reward:      reward,
			Collections: collections,
			Spawned:     spawned,
			LiveItems:   len(w.items),
			Done:        done,
		})
	}
	logrus.Debugf("[step %05d] reward=%d spawned=%d live=%d", w.episodeStep, reward, spawned, len(w.items))
	return Reward{reward, reward}, done, nil
}

// placeRobots builds the roster: one robot per domain, ids row-major over
// the domain grid, neighbouring domains sharing one row or column.
func (w *Warehouse) placeRobots() {
	h, wd := w.cfg.RobotDomainSize[0], w.cfg.RobotDomainSize[1]
	w.robots = make([]*Robot, 0, w.cfg.NumRobots())
	id := 0
	for i := 0; i < w.cfg.NRobotsRow; i++ {
		for j := 0; j < w.cfg.NRobotsColumn; j++ {
			domain := Domain{
				RowMin: i * (h - 1),
				ColMin: j * (wd - 1),
				RowMax: (i + 1) * (h - 1),
				ColMax: (j + 1) * (wd - 1),
			}
			w.robots = append(w.robots, NewRobot(id, domain.Center(), domain, w.rng))
			id++
		}
	}
}

func (w *Warehouse) robotsAct(actions []Action) {
	for i, a := range actions {
		// Actions were validated by Step.
		_ = w.robots[i].Act(a)
	}
}

// computeReward credits every item that shares a cell with a robot exactly
// once, to the first such robot in roster order.
func (w *Warehouse) computeReward() (int, []trace.CollectionRecord) {
	reward := 0
	var collections []trace.CollectionRecord
	for _, it := range w.items {
		for _, r := range w.robots {
			if r.Position() != it.Position {
				continue
			}
			reward++
			w.itemsCollected++
			r.ItemsCollected++
			w.metrics.ItemsCollected++
			w.metrics.WaitingTimeSum += it.WaitingTime
			w.metrics.WaitingTimes = append(w.metrics.WaitingTimes, it.WaitingTime)
			w.metrics.CollectedByRobot[r.ID()]++
			collections = append(collections, trace.CollectionRecord{
				ItemID:      it.ID,
				RobotID:     r.ID(),
				Row:         it.Position.Row,
				Col:         it.Position.Col,
				WaitingTime: it.WaitingTime,
			})
			logrus.Debugf("robot %d collected item %d at %v after %d ticks", r.ID(), it.ID, it.Position, it.WaitingTime)
			break
		}
	}
	return reward, collections
}

// removeItems drops every item a robot stands on. The roster is rebuilt
// rather than edited in place.
func (w *Warehouse) removeItems() {
	occupied := make(map[Cell]bool, len(w.robots))
	for _, r := range w.robots {
		occupied[r.Position()] = true
	}
	remaining := make([]*Item, 0, len(w.items))
	for _, it := range w.items {
		if !occupied[it.Position] {
			remaining = append(remaining, it)
		}
	}
	w.items = remaining
}

func (w *Warehouse) increaseItemWaitingTime() {
	for _, it := range w.items {
		it.IncreaseWaitingTime()
	}
}

// addItems spawns new items on free shelf cells and returns how many were
// created. Rows that are multiples of the shelf spacing accept items in
// every column; other rows only in columns that are multiples of it. One
// random draw is made per candidate cell, in row-major order, whether or
// not the cell is free.
func (w *Warehouse) addItems() int {
	spacing := w.cfg.DistanceBetweenShelves
	occupied := make(map[Cell]bool, len(w.items))
	for _, it := range w.items {
		occupied[it.Position] = true
	}
	spawned := 0
	for row := 0; row < w.cfg.NRows; row++ {
		step := spacing
		if row%spacing == 0 {
			step = 1
		}
		for col := 0; col < w.cfg.NColumns; col += step {
			loc := Cell{Row: row, Col: col}
			if w.rng.Float64() < w.cfg.ProbItemAppears && !occupied[loc] {
				w.items = append(w.items, NewItem(w.itemID, loc))
				w.itemID++
				occupied[loc] = true
				spawned++
			}
		}
	}
	return spawned
}

// State builds the two-channel presence bitmap of the current grid.
func (w *Warehouse) State() State {
	s := NewState(w.cfg.NRows, w.cfg.NColumns)
	for _, it := range w.items {
		s.Items.Set(it.Position.Row, it.Position.Col, 1)
	}
	for _, r := range w.robots {
		p := r.Position()
		s.Robots.Set(p.Row, p.Col, 1)
	}
	return s
}

// Observation returns robot id's observation in the configured encoding.
func (w *Warehouse) Observation(id int) (mat.Matrix, error) {
	r, err := w.Robot(id)
	if err != nil {
		return nil, err
	}
	return r.Observe(w.State(), w.cfg.ObsType)
}

// RenderImage is the single-channel view handed to render surfaces:
// items count +1 and robots -2 per cell.
func (w *Warehouse) RenderImage() *mat.Dense {
	s := w.State()
	img := mat.NewDense(w.cfg.NRows, w.cfg.NColumns, nil)
	img.Scale(-2, s.Robots)
	img.Add(img, s.Items)
	return img
}

// Domains lists the robot domains in roster order.
func (w *Warehouse) Domains() []Domain {
	ds := make([]Domain, len(w.robots))
	for i, r := range w.robots {
		ds[i] = r.Domain()
	}
	return ds
}

// Robot looks up a robot by id.
func (w *Warehouse) Robot(id int) (*Robot, error) {
	if id < 0 || id >= len(w.robots) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRobot, id)
	}
	return w.robots[id], nil
}

// Robots returns the roster in action order. Callers must not modify it.
func (w *Warehouse) Robots() []*Robot { return w.robots }

// Items returns the live item roster. Callers must not modify it.
func (w *Warehouse) Items() []*Item { return w.items }

// Config returns the static configuration.
func (w *Warehouse) Config() Config { return w.cfg }

// EpisodeStep is the number of ticks executed since the last Reset.
func (w *Warehouse) EpisodeStep() int { return w.episodeStep }

// ItemsCollected is the number of items collected since the last Reset.
func (w *Warehouse) ItemsCollected() int { return w.itemsCollected }

// Metrics returns the statistics of the current episode.
func (w *Warehouse) Metrics() *EpisodeMetrics { return w.metrics }

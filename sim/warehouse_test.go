package sim

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/warehouse-sim/sim/trace"
)

// twoByTwoConfig is a 9x9 grid split into four 5x5 domains.
func twoByTwoConfig() Config {
	return Config{
		NColumns:               9,
		NRows:                  9,
		NRobotsRow:             2,
		NRobotsColumn:          2,
		DistanceBetweenShelves: 2,
		RobotDomainSize:        [2]int{5, 5},
		ProbItemAppears:        0.1,
		NStepsEpisode:          50,
		ObsType:                ObsVector,
	}
}

func TestNewWarehouse_RejectsInvalidConfigAndNilRNG(t *testing.T) {
	cfg := singleRobotConfig(0.5)
	cfg.ProbItemAppears = 1.5
	_, err := NewWarehouse(cfg, rand.New(rand.NewSource(1)))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = NewWarehouse(singleRobotConfig(0.5), nil)
	assert.Error(t, err)
}

func TestReset_PlacesRobotsAtDomainCentersRowMajor(t *testing.T) {
	w := newTestWarehouse(t, twoByTwoConfig(), 1)

	wantDomains := []Domain{
		{RowMin: 0, ColMin: 0, RowMax: 4, ColMax: 4},
		{RowMin: 0, ColMin: 4, RowMax: 4, ColMax: 8},
		{RowMin: 4, ColMin: 0, RowMax: 8, ColMax: 4},
		{RowMin: 4, ColMin: 4, RowMax: 8, ColMax: 8},
	}
	wantPositions := []Cell{{Row: 2, Col: 2}, {Row: 2, Col: 6}, {Row: 6, Col: 2}, {Row: 6, Col: 6}}

	require.Len(t, w.Robots(), 4)
	assert.Equal(t, wantDomains, w.Domains())
	for i, r := range w.Robots() {
		assert.Equal(t, i, r.ID())
		assert.Equal(t, wantPositions[i], r.Position())
	}
}

func TestReset_ReturnsZeroRewardAndClearsEpisode(t *testing.T) {
	w := newTestWarehouse(t, singleRobotConfig(0.3), 4)
	_, _, err := w.Step([]Action{ActionUp})
	require.NoError(t, err)

	reward, done := w.Reset()

	assert.Equal(t, Reward{0, 0}, reward)
	assert.False(t, done)
	assert.Equal(t, 0, w.EpisodeStep())
	assert.Equal(t, 0, w.ItemsCollected())
	for i, it := range w.Items() {
		assert.Equal(t, i, it.ID, "item ids restart at zero")
		assert.Equal(t, 0, it.WaitingTime)
	}
}

func TestSpawn_FullProbabilityFillsEveryCandidateCell(t *testing.T) {
	// GIVEN a 5x5 grid with shelf spacing 2 and spawn probability 1
	w := newTestWarehouse(t, singleRobotConfig(1.0), 0)

	// THEN pick rows 0,2,4 are full and aisle rows 1,3 hold columns 0,2,4
	want := map[Cell]bool{}
	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			if row%2 == 0 || col%2 == 0 {
				want[Cell{Row: row, Col: col}] = true
			}
		}
	}
	got := map[Cell]bool{}
	for _, it := range w.Items() {
		got[it.Position] = true
	}
	assert.Len(t, w.Items(), 21)
	assert.Equal(t, want, got)
}

func TestSpawn_AisleColumnsFollowGridWidth(t *testing.T) {
	// A grid wider than it is tall still offers every spacing-aligned column
	// in aisle rows.
	cfg := Config{
		NColumns: 9, NRows: 5, NRobotsRow: 1, NRobotsColumn: 2,
		DistanceBetweenShelves: 2, RobotDomainSize: [2]int{5, 5},
		ProbItemAppears: 1, NStepsEpisode: 5, ObsType: ObsImage,
	}
	w := newTestWarehouse(t, cfg, 0)

	var aisle []int
	for _, it := range w.Items() {
		if it.Position.Row == 1 {
			aisle = append(aisle, it.Position.Col)
		}
	}
	assert.Equal(t, []int{0, 2, 4, 6, 8}, aisle)
	assert.Len(t, w.Items(), 3*9+2*5)
}

func TestStep_StepOntoItemCollectsIt(t *testing.T) {
	// GIVEN the full 5x5 layout with the robot at (2,2)
	w := newTestWarehouse(t, singleRobotConfig(1.0), 0)
	var target *Item
	for _, it := range w.Items() {
		if it.Position == (Cell{Row: 1, Col: 2}) {
			target = it
		}
	}
	require.NotNil(t, target)

	// WHEN the robot steps up onto (1,2)
	reward, done, err := w.Step([]Action{ActionUp})
	require.NoError(t, err)

	// THEN reward is 1 and that item is gone from the next state read
	assert.Equal(t, Reward{1, 1}, reward)
	assert.False(t, done)
	assert.False(t, itemIDs(w.Items())[target.ID])
	assert.Equal(t, 1, w.ItemsCollected())
	assert.Equal(t, 1, w.Robots()[0].ItemsCollected)
}

func TestStep_InvariantsUnderRandomPlay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProbItemAppears = 0.2
	cfg.NStepsEpisode = 300
	w := newTestWarehouse(t, cfg, 21)
	driver := rand.New(rand.NewSource(8))

	for step := 0; step < cfg.NStepsEpisode; step++ {
		before := itemIDs(w.Items())
		actions := make([]Action, len(w.Robots()))
		for i := range actions {
			actions[i] = Action(driver.Intn(NumActions))
		}

		reward, _, err := w.Step(actions)
		require.NoError(t, err)

		// Domain containment
		for _, r := range w.Robots() {
			require.True(t, r.Domain().Contains(r.Position()), "robot %d left %v at %v", r.ID(), r.Domain(), r.Position())
		}
		// No duplicate items after the spawn phase
		seen := map[Cell]bool{}
		for _, it := range w.Items() {
			require.False(t, seen[it.Position], "duplicate item at %v", it.Position)
			seen[it.Position] = true
		}
		// Reward equals items removed this tick
		after := itemIDs(w.Items())
		removed := 0
		for id := range before {
			if !after[id] {
				removed++
			}
		}
		require.Equal(t, removed, reward[0], "step %d", step)
		require.Equal(t, reward[0], reward[1])
	}
}

func TestStep_SharedCellCreditsItemOnce(t *testing.T) {
	// GIVEN two robots whose domains share column 4 and one item on it
	cfg := Config{
		NColumns: 9, NRows: 5, NRobotsRow: 1, NRobotsColumn: 2,
		DistanceBetweenShelves: 2, RobotDomainSize: [2]int{5, 5},
		ProbItemAppears: 0, NStepsEpisode: 5, ObsType: ObsImage,
	}
	w := newTestWarehouse(t, cfg, 0)
	require.True(t, w.Robots()[0].SetPosition(Cell{Row: 1, Col: 4}))
	require.True(t, w.Robots()[1].SetPosition(Cell{Row: 1, Col: 4}))
	setItems(w, Cell{Row: 2, Col: 4})

	// WHEN both step down onto it
	reward, _, err := w.Step([]Action{ActionDown, ActionDown})
	require.NoError(t, err)

	// THEN it is collected once, by the first robot in roster order
	assert.Equal(t, Reward{1, 1}, reward)
	assert.Empty(t, w.Items())
	assert.Equal(t, 1, w.Robots()[0].ItemsCollected)
	assert.Equal(t, 0, w.Robots()[1].ItemsCollected)
}

func TestStep_SurvivingItemsAge(t *testing.T) {
	w := newTestWarehouse(t, singleRobotConfig(0), 0)
	setItems(w, Cell{Row: 0, Col: 0}, Cell{Row: 4, Col: 4})

	for i := 1; i <= 3; i++ {
		// Robot oscillates around the center and never reaches a corner.
		a := ActionUp
		if i%2 == 0 {
			a = ActionDown
		}
		_, _, err := w.Step([]Action{a})
		require.NoError(t, err)
		for _, it := range w.Items() {
			assert.Equal(t, i, it.WaitingTime)
		}
	}
}

func TestStep_DoneAtEpisodeLength(t *testing.T) {
	w := newTestWarehouse(t, singleRobotConfig(0.2), 3)
	for i := 1; i <= 10; i++ {
		_, done, err := w.Step([]Action{ActionLeft})
		require.NoError(t, err)
		assert.Equal(t, i == 10, done, "step %d", i)
	}
	assert.Equal(t, 10, w.EpisodeStep())
}

func TestStep_RejectsMismatchedActionCount(t *testing.T) {
	w := newTestWarehouse(t, twoByTwoConfig(), 0)

	_, _, err := w.Step([]Action{ActionUp, ActionUp})
	assert.True(t, errors.Is(err, ErrActionCount))

	_, _, err = w.Step(nil)
	assert.True(t, errors.Is(err, ErrActionCount))
	assert.Equal(t, 0, w.EpisodeStep())
}

func TestStep_InvalidActionMovesNobody(t *testing.T) {
	w := newTestWarehouse(t, twoByTwoConfig(), 0)
	before := make([]Cell, len(w.Robots()))
	for i, r := range w.Robots() {
		before[i] = r.Position()
	}
	items := len(w.Items())

	_, _, err := w.Step([]Action{ActionUp, Action(7), ActionDown, ActionLeft})

	assert.True(t, errors.Is(err, ErrInvalidAction))
	for i, r := range w.Robots() {
		assert.Equal(t, before[i], r.Position())
	}
	assert.Len(t, w.Items(), items)
	assert.Equal(t, 0, w.EpisodeStep())
}

func TestWarehouse_SameSeedSameEpisode(t *testing.T) {
	cfg := twoByTwoConfig()
	cfg.ProbItemAppears = 0.3

	play := func(w *Warehouse) [][]Item {
		driver := rand.New(rand.NewSource(77))
		var snapshots [][]Item
		for step := 0; step < 40; step++ {
			actions := make([]Action, len(w.Robots()))
			for i, r := range w.Robots() {
				if driver.Intn(2) == 0 {
					actions[i] = r.SelectRandomAction()
				} else {
					actions[i] = r.SelectNaiveAction(r.ObserveImage(w.State()))
				}
			}
			_, _, err := w.Step(actions)
			require.NoError(t, err)
			snap := make([]Item, len(w.Items()))
			for i, it := range w.Items() {
				snap[i] = *it
			}
			snapshots = append(snapshots, snap)
		}
		return snapshots
	}

	a := play(newTestWarehouse(t, cfg, 1234))
	b := play(newTestWarehouse(t, cfg, 1234))
	assert.Equal(t, a, b, "two warehouses with the same seed diverged")

	// Reseeding a used warehouse replays the episode too.
	w := newTestWarehouse(t, cfg, 1234)
	play(w)
	w.Seed(1234)
	w.Reset()
	assert.Equal(t, a, play(w))
}

func TestState_ChannelsArePresenceBits(t *testing.T) {
	w := newTestWarehouse(t, singleRobotConfig(0), 0)
	setItems(w, Cell{Row: 2, Col: 2}, Cell{Row: 0, Col: 4})

	s := w.State()
	assert.Equal(t, 1.0, s.Items.At(2, 2))
	assert.Equal(t, 1.0, s.Items.At(0, 4))
	assert.Equal(t, 1.0, s.Robots.At(2, 2))
	assert.Equal(t, 0.0, s.Robots.At(0, 4))

	img := w.RenderImage()
	assert.Equal(t, -1.0, img.At(2, 2), "robot on item")
	assert.Equal(t, 1.0, img.At(0, 4), "item")
	assert.Equal(t, 0.0, img.At(4, 4), "empty")
}

func TestObservation_UsesConfiguredType(t *testing.T) {
	w := newTestWarehouse(t, twoByTwoConfig(), 0)

	obs, err := w.Observation(3)
	require.NoError(t, err)
	rows, cols := obs.Dims()
	assert.Equal(t, VectorLength(5, 5), rows)
	assert.Equal(t, 1, cols)

	_, err = w.Observation(4)
	assert.True(t, errors.Is(err, ErrUnknownRobot))
}

func TestWarehouse_TraceAndMetricsAgree(t *testing.T) {
	cfg := singleRobotConfig(0.5)
	w := newTestWarehouse(t, cfg, 9)
	initial := len(w.Items())
	et := trace.NewEpisodeTrace(trace.TraceConfig{Level: trace.TraceLevelSteps}, 2)
	w.SetTrace(et)

	total := 0
	for i := 0; i < cfg.NStepsEpisode; i++ {
		r := w.Robots()[0]
		reward, _, err := w.Step([]Action{r.SelectNaiveAction(r.ObserveImage(w.State()))})
		require.NoError(t, err)
		total += reward[0]
	}

	summary := trace.Summarize(et)
	m := w.Metrics()
	assert.Equal(t, cfg.NStepsEpisode, summary.TotalSteps)
	assert.Equal(t, total, summary.TotalReward)
	assert.Equal(t, total, m.TotalReward)
	assert.Equal(t, total, m.ItemsCollected)
	assert.Equal(t, initial+summary.TotalSpawned, m.ItemsSpawned)
	assert.Equal(t, len(w.Items()), et.Steps[len(et.Steps)-1].LiveItems)
	assert.True(t, et.Steps[len(et.Steps)-1].Done)
	assert.Equal(t, 2, et.Steps[0].Episode)
}

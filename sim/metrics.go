// Tracks episode-wide warehouse statistics such as reward, spawned and
// collected items, and how long collected items had waited.

package sim

import (
	"fmt"
	"io"
	"sort"
)

// EpisodeMetrics aggregates statistics about one episode for final
// reporting. Reset clears them.
type EpisodeMetrics struct {
	Steps          int // ticks executed
	TotalReward    int // sum of per-step rewards
	ItemsSpawned   int // items created, including the initial spawn at reset
	ItemsCollected int // items removed by robots
	WaitingTimeSum int // sum of waiting times of collected items at collection
	PeakLiveItems  int // max number of simultaneously live items

	WaitingTimes []int // waiting time of each collected item, in collection order

	CollectedByRobot map[int]int // robot ID -> items collected
}

// NewEpisodeMetrics returns zeroed metrics.
func NewEpisodeMetrics() *EpisodeMetrics {
	return &EpisodeMetrics{CollectedByRobot: make(map[int]int)}
}

// MeanReward is the average reward per step.
func (m *EpisodeMetrics) MeanReward() float64 {
	if m.Steps == 0 {
		return 0
	}
	return float64(m.TotalReward) / float64(m.Steps)
}

// MeanWaitingTime is the average waiting time of collected items.
func (m *EpisodeMetrics) MeanWaitingTime() float64 {
	if m.ItemsCollected == 0 {
		return 0
	}
	return float64(m.WaitingTimeSum) / float64(m.ItemsCollected)
}

func (m *EpisodeMetrics) observeLive(n int) {
	if n > m.PeakLiveItems {
		m.PeakLiveItems = n
	}
}

// Print displays aggregated metrics at the end of an episode.
func (m *EpisodeMetrics) Print(w io.Writer, episode int) {
	fmt.Fprintf(w, "=== Episode %d Metrics ===\n", episode)
	fmt.Fprintf(w, "Steps                : %d\n", m.Steps)
	fmt.Fprintf(w, "Total Reward         : %d\n", m.TotalReward)
	fmt.Fprintf(w, "Items Spawned        : %d\n", m.ItemsSpawned)
	fmt.Fprintf(w, "Items Collected      : %d\n", m.ItemsCollected)
	fmt.Fprintf(w, "Peak Live Items      : %d\n", m.PeakLiveItems)
	if m.Steps > 0 {
		fmt.Fprintf(w, "Mean Reward / Step   : %.3f\n", m.MeanReward())
	}
	if m.ItemsCollected > 0 {
		fmt.Fprintf(w, "Mean Waiting Time    : %.2f ticks\n", m.MeanWaitingTime())
		fmt.Fprintf(w, "P50 / P90 Waiting    : %.1f / %.1f ticks\n", m.WaitingTimePercentile(50), m.WaitingTimePercentile(90))
	}
	ids := make([]int, 0, len(m.CollectedByRobot))
	for id := range m.CollectedByRobot {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  robot %-3d collected : %d\n", id, m.CollectedByRobot[id])
	}
}

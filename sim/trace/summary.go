package trace

// TraceSummary aggregates statistics from an EpisodeTrace.
type TraceSummary struct {
	TotalSteps       int
	TotalReward      int
	MeanReward       float64
	MaxStepReward    int
	TotalSpawned     int
	TotalCollected   int
	MeanCollectWait  float64
	CollectedByRobot map[int]int // robot ID → items collected
}

// Summarize computes aggregate statistics from an EpisodeTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(et *EpisodeTrace) *TraceSummary {
	summary := &TraceSummary{
		CollectedByRobot: make(map[int]int),
	}
	if et == nil {
		return summary
	}

	summary.TotalSteps = len(et.Steps)
	waitSum := 0
	for _, s := range et.Steps {
		summary.TotalReward += s.Reward
		summary.TotalSpawned += s.Spawned
		if s.Reward > summary.MaxStepReward {
			summary.MaxStepReward = s.Reward
		}
		for _, c := range s.Collections {
			summary.TotalCollected++
			summary.CollectedByRobot[c.RobotID]++
			waitSum += c.WaitingTime
		}
	}

	if summary.TotalSteps > 0 {
		summary.MeanReward = float64(summary.TotalReward) / float64(summary.TotalSteps)
	}
	if summary.TotalCollected > 0 {
		summary.MeanCollectWait = float64(waitSum) / float64(summary.TotalCollected)
	}

	return summary
}

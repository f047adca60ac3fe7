package trace

// TraceLevel controls the verbosity of episode tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps captures one record per simulation tick.
	TraceLevelSteps TraceLevel = "steps"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelSteps: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether records should be collected at all.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelSteps
}

// EpisodeTrace collects step records during one warehouse episode.
type EpisodeTrace struct {
	Config  TraceConfig
	Episode int
	Steps   []StepRecord
}

// NewEpisodeTrace creates an EpisodeTrace ready for recording.
func NewEpisodeTrace(config TraceConfig, episode int) *EpisodeTrace {
	return &EpisodeTrace{
		Config:  config,
		Episode: episode,
		Steps:   make([]StepRecord, 0),
	}
}

// RecordStep appends a step record. Records are dropped when tracing is disabled.
func (et *EpisodeTrace) RecordStep(record StepRecord) {
	if !et.Config.Enabled() {
		return
	}
	record.Episode = et.Episode
	et.Steps = append(et.Steps, record)
}

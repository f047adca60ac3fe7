package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/warehouse-sim/sim/trace"
)

func sampleTrace(episode, steps int) *trace.EpisodeTrace {
	et := trace.NewEpisodeTrace(trace.TraceConfig{Level: trace.TraceLevelSteps}, episode)
	for i := 1; i <= steps; i++ {
		rec := trace.StepRecord{
			Step:      i,
			Actions:   []int{i % 4, (i + 1) % 4},
			Spawned:   i % 2,
			LiveItems: 3 + i,
			Done:      i == steps,
		}
		if i%3 == 0 {
			rec.Reward = 1
			rec.Collections = []trace.CollectionRecord{{ItemID: i, RobotID: 1, Row: 2, Col: i, WaitingTime: i * 2}}
		}
		et.RecordStep(rec)
	}
	return et
}

func TestTraceWriter_RoundTrip(t *testing.T) {
	// GIVEN two traced episodes written to one file
	path := filepath.Join(t.TempDir(), "traces", "run.jsonl.zst")
	w, err := NewTraceWriter(path)
	require.NoError(t, err)
	a, b := sampleTrace(0, 5), sampleTrace(1, 4)
	require.NoError(t, w.WriteEpisode(a))
	require.NoError(t, w.WriteEpisode(b))
	assert.Equal(t, 9, w.Written())
	require.NoError(t, w.Close())

	// WHEN the file is read back
	records, err := ReadTrace(path)
	require.NoError(t, err)

	// THEN every record survives in order and groups into the two episodes
	require.Len(t, records, 9)
	assert.Equal(t, a.Steps, records[:5])
	assert.Equal(t, b.Steps, records[5:])

	episodes := GroupEpisodes(records)
	require.Len(t, episodes, 2)
	assert.Equal(t, 0, episodes[0].Episode)
	assert.Equal(t, *trace.Summarize(a), *trace.Summarize(episodes[0]))
	assert.Equal(t, *trace.Summarize(b), *trace.Summarize(episodes[1]))
}

func TestTraceWriter_FileIsCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl.zst")
	w, err := NewTraceWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteEpisode(sampleTrace(0, 3)))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	// zstd frame magic number, little endian 0xFD2FB528.
	require.GreaterOrEqual(t, len(raw), 4)
	assert.Equal(t, []byte{0x28, 0xB5, 0x2F, 0xFD}, raw[:4])
}

func TestTraceWriter_WriteAfterCloseFails(t *testing.T) {
	w, err := NewTraceWriter(filepath.Join(t.TempDir(), "run.jsonl.zst"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Error(t, w.WriteStep(trace.StepRecord{Step: 1}))
	assert.NoError(t, w.Close(), "second close is a no-op")
}

func TestTraceWriter_NilEpisodeIsNoOp(t *testing.T) {
	w, err := NewTraceWriter(filepath.Join(t.TempDir(), "run.jsonl.zst"))
	require.NoError(t, err)
	defer w.Close()
	assert.NoError(t, w.WriteEpisode(nil))
	assert.Equal(t, 0, w.Written())
}

func TestNewTraceWriter_EmptyPath(t *testing.T) {
	_, err := NewTraceWriter("")
	assert.Error(t, err)
}

func TestReadTrace_MissingFile(t *testing.T) {
	_, err := ReadTrace(filepath.Join(t.TempDir(), "absent.jsonl.zst"))
	assert.Error(t, err)
}

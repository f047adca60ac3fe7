package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/inference-sim/warehouse-sim/sim/trace"
)

// TraceWriter appends step records as zstd-compressed JSON lines to a single
// file. Safe for concurrent use.
type TraceWriter struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
}

// NewTraceWriter creates (or truncates) the trace file at path.
func NewTraceWriter(path string) (*TraceWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("empty trace path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &TraceWriter{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

// Path returns the file being written.
func (t *TraceWriter) Path() string { return t.path }

// Written is the number of records written so far.
func (t *TraceWriter) Written() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}

// WriteStep appends one record.
func (t *TraceWriter) WriteStep(rec trace.StepRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.w == nil {
		return fmt.Errorf("trace writer closed")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := t.w.Write(b); err != nil {
		return err
	}
	if err := t.w.WriteByte('\n'); err != nil {
		return err
	}
	t.n++
	return nil
}

// WriteEpisode appends every record of et, in order.
func (t *TraceWriter) WriteEpisode(et *trace.EpisodeTrace) error {
	if et == nil {
		return nil
	}
	for _, rec := range et.Steps {
		if err := t.WriteStep(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered records and finishes the zstd frame.
func (t *TraceWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var err1 error
	if t.w != nil {
		err1 = t.w.Flush()
		t.w = nil
	}
	if t.enc != nil {
		if err := t.enc.Close(); err1 == nil {
			err1 = err
		}
		t.enc = nil
	}
	if t.f != nil {
		if err := t.f.Close(); err1 == nil {
			err1 = err
		}
		t.f = nil
	}
	return err1
}

// ReadTrace decodes every record of a file written by TraceWriter.
func ReadTrace(path string) ([]trace.StepRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var records []trace.StepRecord
	jd := json.NewDecoder(dec)
	for {
		var rec trace.StepRecord
		if err := jd.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return records, fmt.Errorf("decoding trace record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// GroupEpisodes splits records into per-episode traces, ordered by first
// appearance.
func GroupEpisodes(records []trace.StepRecord) []*trace.EpisodeTrace {
	var out []*trace.EpisodeTrace
	byEpisode := make(map[int]*trace.EpisodeTrace)
	for _, rec := range records {
		et, ok := byEpisode[rec.Episode]
		if !ok {
			et = trace.NewEpisodeTrace(trace.TraceConfig{Level: trace.TraceLevelSteps}, rec.Episode)
			byEpisode[rec.Episode] = et
			out = append(out, et)
		}
		et.RecordStep(rec)
	}
	return out
}

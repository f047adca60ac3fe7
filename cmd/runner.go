package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/warehouse-sim/render"
	"github.com/inference-sim/warehouse-sim/sim"
	"github.com/inference-sim/warehouse-sim/sim/policy"
	"github.com/inference-sim/warehouse-sim/sim/trace"
	"github.com/inference-sim/warehouse-sim/store"
)

// runOptions is everything one `run` invocation needs after flag parsing.
type runOptions struct {
	Config   sim.Config
	Seed     int64
	Episodes int
	Policy   string

	TraceOut string // zstd JSONL trace file; empty disables tracing
	IndexDB  string // SQLite episode index; empty disables indexing

	Renderer    *render.Renderer // nil disables rendering
	RenderDelay time.Duration
}

// runResult summarizes a finished run.
type runResult struct {
	RunID    string
	Episodes []sim.EpisodeMetrics
	Stopped  bool // the user quit the render surface early
}

// runEpisodes drives opts.Episodes episodes of the warehouse with the chosen
// controller, printing per-episode metrics to out.
func runEpisodes(ctx context.Context, opts runOptions, out io.Writer) (*runResult, error) {
	if opts.Episodes <= 0 {
		return nil, fmt.Errorf("episodes must be positive, got %d", opts.Episodes)
	}
	if !policy.IsValidController(opts.Policy) {
		return nil, fmt.Errorf("unknown policy %q; valid policies: %v", opts.Policy, policy.ValidControllers())
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(opts.Seed))
	w, err := sim.NewWarehouse(opts.Config, rng.ForSubsystem(sim.SubsystemWarehouse))
	if err != nil {
		return nil, err
	}
	ctrl := policy.NewController(opts.Policy, rng.ForSubsystem(sim.SubsystemController))
	res := &runResult{RunID: store.NewRunID()}

	var idx *store.EpisodeIndex
	if opts.IndexDB != "" {
		idx, err = store.OpenSQLite(opts.IndexDB)
		if err != nil {
			return nil, fmt.Errorf("opening episode index: %w", err)
		}
		defer idx.Close()
		cfgText, err := configYAML(opts.Config)
		if err != nil {
			return nil, err
		}
		if err := idx.RecordRun(ctx, store.RunRow{
			RunID:     res.RunID,
			Seed:      opts.Seed,
			Policy:    opts.Policy,
			Episodes:  opts.Episodes,
			Config:    cfgText,
			StartedAt: time.Now(),
		}); err != nil {
			return nil, err
		}
	}

	var tw *store.TraceWriter
	if opts.TraceOut != "" {
		tw, err = store.NewTraceWriter(opts.TraceOut)
		if err != nil {
			return nil, fmt.Errorf("opening trace file: %w", err)
		}
		defer func() {
			if cerr := tw.Close(); cerr != nil {
				logrus.Errorf("closing trace file: %v", cerr)
			}
		}()
	}

	logrus.Infof("Run %s: %d episodes, policy=%s, seed=%d, %d robots",
		res.RunID, opts.Episodes, opts.Policy, opts.Seed, opts.Config.NumRobots())

	for ep := 0; ep < opts.Episodes && !res.Stopped; ep++ {
		w.Reset()
		var et *trace.EpisodeTrace
		if tw != nil {
			et = trace.NewEpisodeTrace(trace.TraceConfig{Level: trace.TraceLevelSteps}, ep)
		}
		w.SetTrace(et)

		if err := playEpisode(ctx, w, ctrl, opts, ep, res); err != nil {
			return res, err
		}

		m := *w.Metrics()
		res.Episodes = append(res.Episodes, m)
		m.Print(out, ep)

		if tw != nil {
			if err := tw.WriteEpisode(et); err != nil {
				return res, fmt.Errorf("writing trace of episode %d: %w", ep, err)
			}
		}
		if idx != nil {
			if err := idx.RecordEpisode(ctx, store.EpisodeRow{
				RunID:           res.RunID,
				Episode:         ep,
				Steps:           m.Steps,
				TotalReward:     m.TotalReward,
				ItemsSpawned:    m.ItemsSpawned,
				ItemsCollected:  m.ItemsCollected,
				PeakLiveItems:   m.PeakLiveItems,
				MeanWaitingTime: m.MeanWaitingTime(),
				TracePath:       opts.TraceOut,
			}); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

func playEpisode(ctx context.Context, w *sim.Warehouse, ctrl policy.Controller, opts runOptions, ep int, res *runResult) error {
	if opts.Renderer != nil {
		opts.Renderer.Draw(w, ep)
	}
	for done := false; !done; {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		_, done, err = w.Step(ctrl.Actions(w))
		if err != nil {
			return fmt.Errorf("episode %d step %d: %w", ep, w.EpisodeStep()+1, err)
		}
		if opts.Renderer != nil {
			opts.Renderer.Draw(w, ep)
			if !opts.Renderer.Wait(opts.RenderDelay) {
				logrus.Info("Render surface closed, stopping run")
				res.Stopped = true
				return nil
			}
		}
	}
	return nil
}

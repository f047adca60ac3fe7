package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/warehouse-sim/render"
	"github.com/inference-sim/warehouse-sim/sim"
	"github.com/inference-sim/warehouse-sim/sim/policy"
	"github.com/inference-sim/warehouse-sim/sim/trace"
	"github.com/inference-sim/warehouse-sim/store"
)

var (
	// CLI flags for `run`
	configPath   string  // Warehouse parameter file
	seed         int64   // Seed for item spawning and controller randomness
	episodes     int     // Number of episodes to play
	policyName   string  // Controller supplying robot actions
	logLevel     string  // Log verbosity level
	traceOut     string  // zstd JSONL step trace output
	indexDB      string  // SQLite episode index
	renderFrames bool    // Draw frames on the terminal
	renderDelay  float64 // Seconds between rendered frames
	stepsEpisode int     // Episode length override
	probItem     float64 // Spawn probability override

	// CLI flags for `episodes`
	listIndexDB string // SQLite episode index to read
	runID       string // Run to list episodes of
	traceFile   string // Trace file to summarize
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "warehouse-sim",
	Short: "Multi-robot warehouse grid-world simulator",
}

// runCmd plays episodes using parameters from the config file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run warehouse episodes with a built-in controller",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		cfg, err := resolveConfig(configPath, cmd.Flags().Changed("config"))
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		applyOverrides(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("%v", err)
		}

		opts := runOptions{
			Config:      cfg,
			Seed:        seed,
			Episodes:    episodes,
			Policy:      policyName,
			TraceOut:    traceOut,
			IndexDB:     indexDB,
			RenderDelay: time.Duration(cfg.RenderDelay * float64(time.Second)),
		}
		if cfg.Render {
			r, err := render.NewTerminal()
			if err != nil {
				logrus.Fatalf("Failed to open terminal: %v", err)
			}
			defer r.Close()
			opts.Renderer = r
		}

		startTime := time.Now()
		res, err := runEpisodes(context.Background(), opts, os.Stdout)
		if err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}
		logrus.Infof("Run %s complete: %d episodes in %v", res.RunID, len(res.Episodes), time.Since(startTime))
	},
}

// episodesCmd inspects the episode index or a trace file
var episodesCmd = &cobra.Command{
	Use:   "episodes",
	Short: "List recorded runs and episodes, or summarize a trace file",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		if err := listEpisodes(context.Background(), cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// applyOverrides copies explicitly set flags over file values.
func applyOverrides(cmd *cobra.Command, cfg *sim.Config) {
	if cmd.Flags().Changed("render") {
		cfg.Render = renderFrames
	}
	if cmd.Flags().Changed("render-delay") {
		cfg.RenderDelay = renderDelay
	}
	if cmd.Flags().Changed("steps") {
		cfg.NStepsEpisode = stepsEpisode
	}
	if cmd.Flags().Changed("prob") {
		cfg.ProbItemAppears = probItem
	}
}

func listEpisodes(ctx context.Context, out io.Writer) error {
	if traceFile != "" {
		records, err := store.ReadTrace(traceFile)
		if err != nil {
			return fmt.Errorf("reading trace: %w", err)
		}
		printTraceSummaries(out, store.GroupEpisodes(records))
		return nil
	}

	idx, err := store.OpenSQLite(listIndexDB)
	if err != nil {
		return fmt.Errorf("opening episode index: %w", err)
	}
	defer idx.Close()

	if runID == "" {
		runs, err := idx.Runs(ctx)
		if err != nil {
			return err
		}
		printRuns(out, runs)
		return nil
	}
	rows, err := idx.Episodes(ctx, runID)
	if err != nil {
		return err
	}
	printEpisodes(out, rows)
	return nil
}

func printRuns(out io.Writer, runs []store.RunRow) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tPOLICY\tSEED\tEPISODES")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", r.RunID, r.StartedAt.Format(time.RFC3339), r.Policy, r.Seed, r.Episodes)
	}
	_ = tw.Flush()
}

func printEpisodes(out io.Writer, rows []store.EpisodeRow) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EPISODE\tSTEPS\tREWARD\tSPAWNED\tCOLLECTED\tPEAK\tMEAN_WAIT")
	for _, e := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%.2f\n",
			e.Episode, e.Steps, e.TotalReward, e.ItemsSpawned, e.ItemsCollected, e.PeakLiveItems, e.MeanWaitingTime)
	}
	_ = tw.Flush()
}

func printTraceSummaries(out io.Writer, ets []*trace.EpisodeTrace) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EPISODE\tSTEPS\tREWARD\tMAX_STEP\tSPAWNED\tCOLLECTED\tMEAN_WAIT")
	for _, et := range ets {
		s := trace.Summarize(et)
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%.2f\n",
			et.Episode, s.TotalSteps, s.TotalReward, s.MaxStepReward, s.TotalSpawned, s.TotalCollected, s.MeanCollectWait)
	}
	_ = tw.Flush()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&configPath, "config", defaultConfigPath, "Warehouse parameter file (YAML)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for item spawning and controller randomness")
	runCmd.Flags().IntVar(&episodes, "episodes", 1, "Number of episodes to play")
	runCmd.Flags().StringVar(&policyName, "policy", "naive", fmt.Sprintf("Controller supplying robot actions %v", policy.ValidControllers()))
	runCmd.Flags().StringVar(&traceOut, "trace-out", "", "Write per-step records to this zstd JSONL file")
	runCmd.Flags().StringVar(&indexDB, "index-db", "", "Record run and episode summaries in this SQLite file")
	runCmd.Flags().BoolVar(&renderFrames, "render", false, "Draw frames on the terminal (overrides config)")
	runCmd.Flags().Float64Var(&renderDelay, "render-delay", 0.5, "Seconds between rendered frames (overrides config)")
	runCmd.Flags().IntVar(&stepsEpisode, "steps", 100, "Steps per episode (overrides config)")
	runCmd.Flags().Float64Var(&probItem, "prob", 0.05, "Item spawn probability per shelf cell (overrides config)")

	episodesCmd.Flags().StringVar(&listIndexDB, "index-db", "episodes.db", "SQLite episode index")
	episodesCmd.Flags().StringVar(&runID, "run", "", "List the episodes of this run instead of all runs")
	episodesCmd.Flags().StringVar(&traceFile, "trace", "", "Summarize a trace file instead of reading the index")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(episodesCmd)
}

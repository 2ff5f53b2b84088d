package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datapilot-io/datapilot/pkg/agent"
	"github.com/datapilot-io/datapilot/pkg/dataset"
	"github.com/datapilot-io/datapilot/pkg/evaluate"
	"github.com/datapilot-io/datapilot/pkg/memory"
	"github.com/datapilot-io/datapilot/pkg/model"
	"github.com/datapilot-io/datapilot/pkg/policy"
	"github.com/datapilot-io/datapilot/pkg/report"
	"github.com/datapilot-io/datapilot/pkg/telemetry"
)

func newRunCommand() *cobra.Command {
	var (
		dataPath     string
		target       string
		outputRoot   string
		seed         int64
		testSize     float64
		maxReplans   int
		memoryPath   string
		traceEnabled bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the modeling loop over one dataset",
		Long: `Execute one full run: profile the dataset, create a plan, train and
evaluate candidate models, reflect on the outcome, and replan within the
budget if reflection asks for it.

On success the run's output directory path is printed to stdout as the
last line.`,
		Example: `  # Explicit target column
  datapilot run --data data/churn.csv --target churned

  # Infer the target column
  datapilot run --data data/churn.csv --target auto

  # Allow up to two replan cycles with a fixed split seed
  datapilot run --data data/churn.csv --target auto --seed 7 --max_replans 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output_root") || cfg.OutputRoot == "" {
				cfg.OutputRoot = outputRoot
			}
			if cmd.Flags().Changed("memory") || cfg.MemoryPath == "" {
				cfg.MemoryPath = memoryPath
			}
			if traceEnabled {
				cfg.Tracing.Enabled = true
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			tracer, err := telemetry.NewTracer(cfg.Tracing, "datapilot", version)
			if err != nil {
				return err
			}
			defer func() {
				if err := tracer.Shutdown(cmd.Context()); err != nil {
					logger.WithError(err).Warn("Tracer shutdown failed")
				}
			}()

			store, err := memory.Open(cfg.MemoryPath)
			if err != nil {
				return agent.NewIOError("open memory store", err)
			}

			orch, err := agent.NewOrchestrator(agent.OrchestratorConfig{
				Memory:    store,
				Planner:   policy.NewPlanner(),
				Reflector: policy.NewReflector(),
				Replan:    policy.NewReplanStrategy(),
				Loader:    agent.LoaderFunc(dataset.LoadCSV),
				Trainer:   model.NewStage(logger),
				Evaluator: evaluate.NewEvaluator(logger),
				Renderer:  report.NewRenderer(),
				Logger:    logger,
				Tracer:    tracer,
			})
			if err != nil {
				return err
			}

			outDir, err := orch.Run(cmd.Context(), agent.RunOptions{
				DataPath:     dataPath,
				Target:       target,
				OutputRoot:   cfg.OutputRoot,
				Seed:         seed,
				TestFraction: testSize,
				MaxReplans:   maxReplans,
			})
			if err != nil {
				return err
			}

			// Automation consumes the last stdout line as the output path.
			fmt.Println(outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "path to CSV dataset")
	cmd.Flags().StringVar(&target, "target", "", "target column name or 'auto'")
	cmd.Flags().StringVar(&outputRoot, "output_root", "outputs", "outputs folder")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().Float64Var(&testSize, "test_size", 0.2, "test split fraction")
	cmd.Flags().IntVar(&maxReplans, "max_replans", 1, "max replan cycles")
	cmd.Flags().StringVar(&memoryPath, "memory", "agent_memory.json", "memory store file")
	cmd.Flags().BoolVar(&traceEnabled, "trace", false, "emit run-stage spans to stderr")

	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

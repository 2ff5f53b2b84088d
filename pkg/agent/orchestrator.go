package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/datapilot-io/datapilot/pkg/dataset"
	"github.com/datapilot-io/datapilot/pkg/evaluate"
	"github.com/datapilot-io/datapilot/pkg/memory"
	"github.com/datapilot-io/datapilot/pkg/model"
	"github.com/datapilot-io/datapilot/pkg/telemetry"
)

// Persisted artifact filenames inside a run's output directory.
const (
	ArtifactProfile    = "eda_summary.json"
	ArtifactPlan       = "plan.json"
	ArtifactMetrics    = "metrics.json"
	ArtifactReflection = "reflection.json"
	ArtifactReport     = "report.md"
)

// OrchestratorConfig wires an Orchestrator's collaborators and policies.
// All fields except Tracer are required.
type OrchestratorConfig struct {
	Memory    MemoryStore
	Planner   Planner
	Reflector Reflector
	Replan    ReplanStrategy
	Loader    DatasetLoader
	Trainer   Trainer
	Evaluator Evaluator
	Renderer  ReportRenderer
	Logger    *telemetry.Logger
	Tracer    *telemetry.Tracer
}

// Orchestrator owns the run lifecycle: context creation, the
// plan/train/evaluate/reflect loop, termination, and artifact and memory
// persistence. It executes single-threaded and synchronously; the only
// shared durable resource it touches is the memory store, which it treats
// as exclusively owned for the run's duration.
type Orchestrator struct {
	memory    MemoryStore
	planner   Planner
	reflector Reflector
	replan    ReplanStrategy
	loader    DatasetLoader
	trainer   Trainer
	evaluator Evaluator
	renderer  ReportRenderer

	log      *telemetry.Logger
	tracer   *telemetry.Tracer
	validate *validator.Validate
}

// NewOrchestrator creates an orchestrator from its configuration.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	switch {
	case cfg.Memory == nil:
		return nil, fmt.Errorf("orchestrator requires a memory store")
	case cfg.Planner == nil:
		return nil, fmt.Errorf("orchestrator requires a planner")
	case cfg.Reflector == nil:
		return nil, fmt.Errorf("orchestrator requires a reflector")
	case cfg.Replan == nil:
		return nil, fmt.Errorf("orchestrator requires a replan strategy")
	case cfg.Loader == nil:
		return nil, fmt.Errorf("orchestrator requires a dataset loader")
	case cfg.Trainer == nil:
		return nil, fmt.Errorf("orchestrator requires a trainer")
	case cfg.Evaluator == nil:
		return nil, fmt.Errorf("orchestrator requires an evaluator")
	case cfg.Renderer == nil:
		return nil, fmt.Errorf("orchestrator requires a report renderer")
	case cfg.Logger == nil:
		return nil, fmt.Errorf("orchestrator requires a logger")
	}

	tracer := cfg.Tracer
	if tracer == nil {
		var err error
		tracer, err = telemetry.NewTracer(telemetry.TracingConfig{}, "datapilot", "dev")
		if err != nil {
			return nil, err
		}
	}

	return &Orchestrator{
		memory:    cfg.Memory,
		planner:   cfg.Planner,
		reflector: cfg.Reflector,
		replan:    cfg.Replan,
		loader:    cfg.Loader,
		trainer:   cfg.Trainer,
		evaluator: cfg.Evaluator,
		renderer:  cfg.Renderer,
		log:       cfg.Logger.NewComponentLogger("agent"),
		tracer:    tracer,
		validate:  validator.New(),
	}, nil
}

// planDocument is the on-disk shape of plan.json.
type planDocument struct {
	Plan Plan `json:"plan"`
}

// Run executes one full run and returns the run's output directory.
//
// Every iteration overwrites the artifact set and upserts the memory
// record, so the output directory and memory always reflect the latest
// iteration, not a history. Any stage failure aborts the run immediately;
// partial artifacts are left on disk, never rolled back. The only
// retry-like mechanism is the explicit replan loop.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (string, error) {
	if err := o.validate.Struct(opts); err != nil {
		return "", fmt.Errorf("invalid run options: %w", err)
	}

	runID := time.Now().UTC().Format("20060102_150405") + "_" + uuid.NewString()[:8]
	outputDir := filepath.Join(opts.OutputRoot, runID)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", NewIOError("create output directory", err).WithStage("init")
	}

	rc := RunContext{
		RunID:        runID,
		StartedAt:    nowISO(),
		DataPath:     opts.DataPath,
		Target:       opts.Target,
		OutputDir:    outputDir,
		Seed:         opts.Seed,
		TestFraction: opts.TestFraction,
		MaxReplans:   opts.MaxReplans,
	}
	log := o.log.WithRunID(runID)
	phase := PhaseInit
	setPhase := func(next Phase) {
		phase = next
		log.WithStage(string(phase)).Debug("Phase transition")
	}

	log.Infof("Loading dataset: %s", opts.DataPath)
	frame, err := o.loader.Load(opts.DataPath)
	if err != nil {
		return "", NewDataError("load dataset", err).WithStage(string(phase))
	}
	log.Infof("Loaded %d rows x %d cols", frame.Rows(), frame.Cols())

	// The sentinel "auto" triggers inference; any other name is taken
	// verbatim and only validated by the profiler.
	if strings.EqualFold(strings.TrimSpace(rc.Target), TargetAuto) {
		inferred, ok := dataset.InferTarget(frame)
		if !ok {
			return "", NewPlanningError("cannot infer target column; provide an explicit target", nil).
				WithStage(string(phase))
		}
		rc.Target = inferred
		log.Infof("Inferred target: %s", inferred)
	}

	profileCtx, span := o.tracer.StartStage(ctx, "profile")
	profile, err := dataset.ProfileFrame(frame, rc.Target)
	span.End()
	if err != nil {
		return "", NewDataError("profile dataset", err).WithStage(string(phase))
	}
	fp := dataset.Fingerprint(frame, rc.Target)
	setPhase(PhaseProfiled)

	var hint *memory.Record
	if rec, ok := o.memory.Get(fp); ok {
		hint = &rec
		log.Infof("Memory hit: previously best=%s for %s", rec.BestModel, fp)
	}

	_, span = o.tracer.StartStage(profileCtx, "plan")
	plan := o.planner.CreatePlan(profile, hint)
	span.End()
	setPhase(PhasePlanned)
	log.Infof("Plan: %v", plan)

	replans := 0
	for {
		setPhase(PhaseTraining)
		trainCtx, span := o.tracer.StartStage(ctx, "train", attribute.Int("iteration", replans))
		ranked, err := o.trainer.Train(trainCtx, frame, rc.Target, profile, rc.Seed, rc.TestFraction)
		span.End()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", err
			}
			if errors.Is(err, model.ErrNoTrainableRows) {
				return "", NewDataError("train candidates", err).WithStage(string(phase))
			}
			return "", NewModelError("train candidates", err).WithStage(string(phase))
		}

		_, span = o.tracer.StartStage(ctx, "evaluate", attribute.Int("iteration", replans))
		payload, err := o.evaluator.Evaluate(ranked, outputDir)
		span.End()
		if err != nil {
			return "", NewIOError("evaluate candidates", err).WithStage(string(phase))
		}
		setPhase(PhaseEvaluated)

		_, span = o.tracer.StartStage(ctx, "reflect", attribute.Int("iteration", replans))
		reflection := o.reflector.Reflect(profile, payload.BestMetrics, payload.AllMetrics)
		span.End()
		setPhase(PhaseReflected)

		if err := o.persistArtifacts(rc, fp, profile, plan, payload, reflection); err != nil {
			return "", err
		}
		if err := o.upsertMemory(fp, rc.Target, profile, payload); err != nil {
			return "", err
		}

		if !o.reflector.ShouldReplan(reflection) {
			break
		}
		if replans >= rc.MaxReplans {
			// Consumed budget is a stop, not a failure.
			log.Warn("Replan suggested, but max replans reached; stopping")
			break
		}

		replans++
		setPhase(PhaseReplan)
		log.Infof("Replanning attempt #%d", replans)

		_, span = o.tracer.StartStage(ctx, "replan", attribute.Int("iteration", replans))
		newPlan, newProfile := o.replan.Apply(plan, profile, reflection)
		span.End()

		// Replan output is validated at the boundary so a misbehaving
		// strategy fails loudly instead of corrupting the loop state.
		if !newPlan.Extends(plan) {
			return "", NewPlanningError("replan strategy shortened or reordered the plan", nil).
				WithStage(string(phase))
		}
		if err := newProfile.Validate(); err != nil {
			return "", NewPlanningError("replan strategy produced an invalid profile", err).
				WithStage(string(phase))
		}
		plan, profile = newPlan, newProfile
	}

	setPhase(PhaseDone)
	log.Infof("Done. Outputs saved to %s", outputDir)
	return outputDir, nil
}

// persistArtifacts writes the iteration's four JSON artifacts and the
// rendered report into the run's output directory, overwriting previous
// iterations.
func (o *Orchestrator) persistArtifacts(
	rc RunContext,
	fp string,
	profile *dataset.Profile,
	plan Plan,
	payload *evaluate.Payload,
	reflection Reflection,
) error {
	artifacts := []struct {
		name string
		v    interface{}
	}{
		{ArtifactProfile, profile},
		{ArtifactPlan, planDocument{Plan: plan}},
		{ArtifactMetrics, payload},
		{ArtifactReflection, reflection},
	}
	for _, a := range artifacts {
		if err := evaluate.WriteJSON(filepath.Join(rc.OutputDir, a.name), a.v); err != nil {
			return NewIOError("persist "+a.name, err)
		}
	}

	report, err := o.renderer.Render(rc, fp, profile, plan, payload, reflection)
	if err != nil {
		return NewIOError("render report", err)
	}
	if err := os.WriteFile(filepath.Join(rc.OutputDir, ArtifactReport), report, 0644); err != nil {
		return NewIOError("persist "+ArtifactReport, err)
	}
	return nil
}

// upsertMemory records the iteration's best outcome under the dataset
// fingerprint. This runs every iteration, including ones about to be
// superseded by a replan; only the final upsert is externally observable
// as "final".
func (o *Orchestrator) upsertMemory(fp, target string, profile *dataset.Profile, payload *evaluate.Payload) error {
	rec := memory.Record{
		LastSeen:  nowISO(),
		Target:    target,
		Shape:     map[string]int{"rows": profile.Shape.Rows, "cols": profile.Shape.Cols},
		BestModel: payload.BestMetrics.Model,
		BestMetrics: memory.MetricSet{
			"accuracy":          payload.BestMetrics.Accuracy,
			"balanced_accuracy": payload.BestMetrics.BalancedAccuracy,
			"f1_macro":          payload.BestMetrics.F1Macro,
			"precision_macro":   payload.BestMetrics.PrecisionMacro,
			"recall_macro":      payload.BestMetrics.RecallMacro,
		},
	}
	if err := o.memory.Upsert(fp, rec); err != nil {
		return NewIOError("update memory store", err)
	}
	return nil
}

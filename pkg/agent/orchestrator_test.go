package agent

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/datapilot-io/datapilot/pkg/dataset"
	"github.com/datapilot-io/datapilot/pkg/evaluate"
	"github.com/datapilot-io/datapilot/pkg/memory"
	"github.com/datapilot-io/datapilot/pkg/model"
	"github.com/datapilot-io/datapilot/pkg/telemetry"
)

// Mock implementations for testing

type mockMemory struct {
	records map[string]memory.Record
	upserts int
}

func newMockMemory() *mockMemory {
	return &mockMemory{records: make(map[string]memory.Record)}
}

func (m *mockMemory) Get(fp string) (memory.Record, bool) {
	rec, ok := m.records[fp]
	return rec, ok
}

func (m *mockMemory) Upsert(fp string, rec memory.Record) error {
	m.records[fp] = rec
	m.upserts++
	return nil
}

type mockPlanner struct {
	plan Plan
}

func (m *mockPlanner) CreatePlan(profile *dataset.Profile, hint *memory.Record) Plan {
	return m.plan.Clone()
}

type mockReflector struct {
	replan Reflection
}

func (m *mockReflector) Reflect(profile *dataset.Profile, best model.Metrics, all []model.Metrics) Reflection {
	return m.replan
}

func (m *mockReflector) ShouldReplan(r Reflection) bool {
	return r.ReplanRecommended
}

type mockReplan struct {
	applied int
	// apply overrides the default extend-by-marker behavior when set.
	apply func(plan Plan, profile *dataset.Profile) (Plan, *dataset.Profile)
}

func (m *mockReplan) Apply(plan Plan, profile *dataset.Profile, r Reflection) (Plan, *dataset.Profile) {
	m.applied++
	if m.apply != nil {
		return m.apply(plan, profile)
	}
	return append(plan.Clone(), "retry"), profile.Clone()
}

type mockTrainer struct {
	calls int
	err   error
}

func (m *mockTrainer) Train(ctx context.Context, f *dataset.Frame, target string, profile *dataset.Profile,
	seed int64, testFraction float64) (*model.Ranked, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &model.Ranked{
		Results: []model.Result{{
			Name:       "Stub",
			Metrics:    model.Metrics{Model: "Stub", Accuracy: 0.9, BalancedAccuracy: 0.9, F1Macro: 0.9},
			TrueLabels: []string{"a", "b"},
			PredLabels: []string{"a", "b"},
		}},
		Classes: []string{"a", "b"},
	}, nil
}

type mockEvaluator struct{}

func (m *mockEvaluator) Evaluate(ranked *model.Ranked, outDir string) (*evaluate.Payload, error) {
	return &evaluate.Payload{
		BestMetrics: ranked.Best().Metrics,
		AllMetrics:  ranked.AllMetrics(),
	}, nil
}

type mockRenderer struct{}

func (m *mockRenderer) Render(rc RunContext, fingerprint string, profile *dataset.Profile, plan Plan,
	payload *evaluate.Payload, reflection Reflection) ([]byte, error) {
	return []byte("# report\n"), nil
}

// testFixture bundles an orchestrator with its observable mocks.
type testFixture struct {
	orch    *Orchestrator
	memory  *mockMemory
	trainer *mockTrainer
	replan  *mockReplan
}

// setupOrchestrator builds an orchestrator over a small in-memory dataset.
func setupOrchestrator(t *testing.T, reflection Reflection) *testFixture {
	t.Helper()

	loader := LoaderFunc(func(path string) (*dataset.Frame, error) {
		return dataset.NewFrame([]string{"x", "label"}, [][]string{
			{"1", "a"}, {"2", "b"}, {"3", "a"}, {"4", "b"},
		})
	})

	fix := &testFixture{
		memory:  newMockMemory(),
		trainer: &mockTrainer{},
		replan:  &mockReplan{},
	}
	orch, err := NewOrchestrator(OrchestratorConfig{
		Memory:    fix.memory,
		Planner:   &mockPlanner{plan: Plan{"profile_dataset", "train_models"}},
		Reflector: &mockReflector{replan: reflection},
		Replan:    fix.replan,
		Loader:    loader,
		Trainer:   fix.trainer,
		Evaluator: &mockEvaluator{},
		Renderer:  &mockRenderer{},
		Logger:    testLoggerFor(t),
	})
	if err != nil {
		t.Fatalf("failed to build orchestrator: %v", err)
	}
	fix.orch = orch
	return fix
}

// defaultOptions returns valid run options rooted in the test's temp dir.
func defaultOptions(t *testing.T) RunOptions {
	t.Helper()

	return RunOptions{
		DataPath:     "synthetic.csv",
		Target:       "label",
		OutputRoot:   t.TempDir(),
		Seed:         42,
		TestFraction: 0.2,
		MaxReplans:   1,
	}
}

// TestRunHappyPath tests a clean single-iteration run and its artifacts
func TestRunHappyPath(t *testing.T) {
	fix := setupOrchestrator(t, Reflection{Status: StatusOK})
	opts := defaultOptions(t)

	outDir, err := fix.orch.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !strings.HasPrefix(outDir, opts.OutputRoot) {
		t.Errorf("output dir %s not under root %s", outDir, opts.OutputRoot)
	}
	for _, name := range []string{ArtifactProfile, ArtifactPlan, ArtifactMetrics, ArtifactReflection, ArtifactReport} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(outDir, ArtifactPlan))
	if err != nil {
		t.Fatalf("failed to read plan artifact: %v", err)
	}
	var doc planDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("plan artifact is not valid JSON: %v", err)
	}
	if len(doc.Plan) != 2 {
		t.Errorf("unexpected persisted plan: %v", doc.Plan)
	}

	if fix.trainer.calls != 1 {
		t.Errorf("expected 1 training iteration, got %d", fix.trainer.calls)
	}
	if fix.memory.upserts != 1 {
		t.Errorf("expected 1 memory upsert, got %d", fix.memory.upserts)
	}
	for _, rec := range fix.memory.records {
		if rec.BestModel != "Stub" {
			t.Errorf("expected memory to record the best model, got %s", rec.BestModel)
		}
		if rec.Target != "label" {
			t.Errorf("expected memory to record the target, got %s", rec.Target)
		}
	}
}

// TestRunReplanBudget tests that an always-replanning reflector runs exactly
// budget+1 iterations
func TestRunReplanBudget(t *testing.T) {
	fix := setupOrchestrator(t, Reflection{Status: StatusNeedsAttention, ReplanRecommended: true})
	opts := defaultOptions(t)
	opts.MaxReplans = 2

	if _, err := fix.orch.Run(context.Background(), opts); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if fix.trainer.calls != 3 {
		t.Errorf("expected 3 iterations for budget 2, got %d", fix.trainer.calls)
	}
	if fix.replan.applied != 2 {
		t.Errorf("expected 2 replans, got %d", fix.replan.applied)
	}
	// Every iteration persists, including the final one.
	if fix.memory.upserts != 3 {
		t.Errorf("expected 3 memory upserts, got %d", fix.memory.upserts)
	}
}

// TestRunZeroReplanBudget tests that a zero budget still runs one iteration
func TestRunZeroReplanBudget(t *testing.T) {
	fix := setupOrchestrator(t, Reflection{Status: StatusNeedsAttention, ReplanRecommended: true})
	opts := defaultOptions(t)
	opts.MaxReplans = 0

	if _, err := fix.orch.Run(context.Background(), opts); err != nil {
		t.Fatalf("consumed budget must not fail the run: %v", err)
	}
	if fix.trainer.calls != 1 {
		t.Errorf("expected a single iteration, got %d", fix.trainer.calls)
	}
	if fix.replan.applied != 0 {
		t.Errorf("expected no replans, got %d", fix.replan.applied)
	}
}

// TestRunInvalidOptions tests option validation before any work starts
func TestRunInvalidOptions(t *testing.T) {
	fix := setupOrchestrator(t, Reflection{Status: StatusOK})

	bad := defaultOptions(t)
	bad.TestFraction = 0
	if _, err := fix.orch.Run(context.Background(), bad); err == nil {
		t.Error("expected error for zero test fraction")
	}

	bad = defaultOptions(t)
	bad.DataPath = ""
	if _, err := fix.orch.Run(context.Background(), bad); err == nil {
		t.Error("expected error for missing data path")
	}

	bad = defaultOptions(t)
	bad.MaxReplans = -1
	if _, err := fix.orch.Run(context.Background(), bad); err == nil {
		t.Error("expected error for negative replan budget")
	}

	if fix.trainer.calls != 0 {
		t.Errorf("invalid options must not reach training, got %d calls", fix.trainer.calls)
	}
}

// TestRunTargetInference tests the auto target sentinel
func TestRunTargetInference(t *testing.T) {
	fix := setupOrchestrator(t, Reflection{Status: StatusOK})
	opts := defaultOptions(t)
	opts.Target = "auto"

	if _, err := fix.orch.Run(context.Background(), opts); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, rec := range fix.memory.records {
		if rec.Target != "label" {
			t.Errorf("expected inferred target label, got %s", rec.Target)
		}
	}
}

// TestRunLoaderFailure tests error classification for unloadable datasets
func TestRunLoaderFailure(t *testing.T) {
	fix := setupOrchestrator(t, Reflection{Status: StatusOK})
	opts := defaultOptions(t)
	opts.DataPath = filepath.Join(t.TempDir(), "missing.csv")

	// The stub loader always succeeds; a real run on a missing file is
	// covered by swapping in the real loader.
	orch, err := NewOrchestrator(OrchestratorConfig{
		Memory:    fix.memory,
		Planner:   &mockPlanner{plan: Plan{"profile_dataset"}},
		Reflector: &mockReflector{},
		Replan:    fix.replan,
		Loader:    LoaderFunc(dataset.LoadCSV),
		Trainer:   fix.trainer,
		Evaluator: &mockEvaluator{},
		Renderer:  &mockRenderer{},
		Logger:    testLoggerFor(t),
	})
	if err != nil {
		t.Fatalf("failed to build orchestrator: %v", err)
	}

	_, err = orch.Run(context.Background(), opts)
	if !IsDataError(err) {
		t.Errorf("expected a data error, got %v", err)
	}
}

// TestRunTrainErrorClassification tests the data/model error split on
// training failures
func TestRunTrainErrorClassification(t *testing.T) {
	fix := setupOrchestrator(t, Reflection{Status: StatusOK})
	fix.trainer.err = model.ErrNoTrainableRows
	_, err := fix.orch.Run(context.Background(), defaultOptions(t))
	if !IsDataError(err) {
		t.Errorf("expected a data error for no trainable rows, got %v", err)
	}

	fix = setupOrchestrator(t, Reflection{Status: StatusOK})
	fix.trainer.err = errors.New("singular matrix")
	_, err = fix.orch.Run(context.Background(), defaultOptions(t))
	if !IsModelError(err) {
		t.Errorf("expected a model error for a fit failure, got %v", err)
	}
}

// TestRunMisbehavingReplanStrategy tests boundary validation of replan
// output
func TestRunMisbehavingReplanStrategy(t *testing.T) {
	fix := setupOrchestrator(t, Reflection{Status: StatusNeedsAttention, ReplanRecommended: true})
	fix.replan.apply = func(plan Plan, profile *dataset.Profile) (Plan, *dataset.Profile) {
		// Drop the first task: the new plan no longer extends the old one.
		return plan[1:].Clone(), profile.Clone()
	}

	_, err := fix.orch.Run(context.Background(), defaultOptions(t))
	if !IsPlanningError(err) {
		t.Errorf("expected a planning error for a shortened plan, got %v", err)
	}
}

// TestNewOrchestratorValidation tests required collaborator checks
func TestNewOrchestratorValidation(t *testing.T) {
	_, err := NewOrchestrator(OrchestratorConfig{})
	if err == nil {
		t.Error("expected error for an empty configuration")
	}
}

// testLoggerFor builds a quiet logger.
func testLoggerFor(t *testing.T) *telemetry.Logger {
	t.Helper()

	log, err := telemetry.NewLogger(telemetry.LoggingConfig{
		Level:  "error",
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log
}

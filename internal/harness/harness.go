package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/lizard/internal/config"
	"github.com/roach88/lizard/internal/engine"
	"github.com/roach88/lizard/internal/grammar"
	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/store"
	"github.com/roach88/lizard/internal/testutil"
)

// clockStep is how far the deterministic wall clock advances per reading.
const clockStep = time.Millisecond

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string

	// Run is the engine result of the scenario batch.
	Run *engine.Result

	// Traces holds the replay reports of the scenario's trace strings, in
	// scenario order.
	Traces []engine.ReplayReport
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Harness is the test execution engine.
// It runs scenarios with a deterministic clock and run id, on one worker.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	meta   engine.RunMeta
	cfg    *config.Config
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the configuration and build the engine
// 2. Run the scenario strings, or the configured generators
// 3. Store the run in the in-memory database
// 4. Replay the trace strings
// 5. Evaluate assertions against the run and the stored records
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h, err := newHarness(scenario, st)
	if err != nil {
		return nil, err
	}

	run, err := h.execute(ctx, scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to run scenario: %w", err)
	}
	if err := run.Save(ctx, st, h.meta); err != nil {
		return nil, fmt.Errorf("failed to store run: %w", err)
	}
	h.logger.Info("scenario run stored", "scenario", scenario.Name, "run_id", run.RunID)

	result := &Result{Pass: true, Errors: []string{}, Run: run}
	for _, s := range scenario.Trace {
		result.Traces = append(result.Traces, h.engine.Replay(ir.GrammarString(s)).Report())
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

func newHarness(scenario *Scenario, st *store.Store) (*Harness, error) {
	cfg, err := config.Load(scenario.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	seed, err := cfg.Mesh()
	if err != nil {
		return nil, err
	}
	start, err := cfg.Start(seed)
	if err != nil {
		return nil, err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	hash, err := cfg.Hash()
	if err != nil {
		return nil, err
	}
	canonical, err := cfg.CanonicalJSON()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.DiscardHandler) // Suppress logs in tests
	clock := testutil.NewDeterministicClock(clockStep)
	opts := append(cfg.EngineOptions(),
		engine.WithWorkers(1),
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(scenario.RunID)),
		engine.WithNow(clock.Now),
		engine.WithLogger(logger),
	)
	eng, err := engine.New(seed, start, registry, opts...)
	if err != nil {
		return nil, err
	}

	return &Harness{
		store:  st,
		engine: eng,
		cfg:    cfg,
		logger: logger,
		meta: engine.RunMeta{
			ConfigHash:   hash,
			Config:       canonical,
			Alphabet:     cfg.Alphabet,
			ExportPrefix: cfg.ExportPrefix,
		},
	}, nil
}

// execute runs the scenario strings, or the configured generators when the
// scenario lists none.
func (h *Harness) execute(ctx context.Context, scenario *Scenario) (*engine.Result, error) {
	if len(scenario.Strings) > 0 {
		batch := make([]ir.GrammarString, len(scenario.Strings))
		for i, s := range scenario.Strings {
			batch[i] = ir.GrammarString(s)
		}
		return h.engine.Run(ctx, batch)
	}

	sources, err := h.cfg.Sources()
	if err != nil {
		return nil, err
	}
	collection, err := grammar.Collect(ctx, sources...)
	if err != nil {
		return nil, err
	}
	return h.engine.RunCollection(ctx, collection)
}

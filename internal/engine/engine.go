package engine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/lizard/internal/features"
	"github.com/roach88/lizard/internal/grammar"
	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/lizard"
	"github.com/roach88/lizard/internal/mesh"
	"github.com/roach88/lizard/internal/relax"
)

// Engine replays batches of strings against a shared seed mesh.
//
// Thread-safety model:
//   - the seed is copied at construction and only ever read afterwards
//   - every attempt edits its own copy of the seed
//   - Run may be called from several goroutines
type Engine struct {
	seed      *mesh.Mesh
	seedLoops int
	start     lizard.Cursor
	registry  *lizard.Registry

	workers   int
	smoother  Smoother
	features  features.Options
	precision features.Precision
	runIDs    RunIDGenerator
	now       func() time.Time
	logger    *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithWorkers sets the number of attempt goroutines.
//
// Default: runtime.GOMAXPROCS(0). Values below 1 are treated as 1.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		e.workers = max(n, 1)
	}
}

// WithSmoother replaces the default relaxation step of the validity filter.
func WithSmoother(s Smoother) EngineOption {
	return func(e *Engine) {
		e.smoother = s
	}
}

// WithoutSmoothing disables the relaxation step. The manifold and boundary
// checks still apply.
func WithoutSmoothing() EngineOption {
	return func(e *Engine) {
		e.smoother = nil
	}
}

// WithFeatures sets the feature options and key precision.
//
// Default: no neighbourhood histogram, integer keys.
func WithFeatures(opts features.Options, p features.Precision) EngineOption {
	return func(e *Engine) {
		e.features = opts
		e.precision = p
	}
}

// WithRunIDGenerator sets the run id source. Tests use FixedGenerator.
func WithRunIDGenerator(g RunIDGenerator) EngineOption {
	return func(e *Engine) {
		e.runIDs = g
	}
}

// WithNow sets the wall clock used for StartedAt and Duration.
//
// Default: time.Now.
func WithNow(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the logger. Batches log at Info, rejections at Debug.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine exploring seed from the cursor start.
//
// The seed must be a manifold quad mesh and start must be one of its edges
// with no polyedge being collected. Both are checked once here so that a
// bad setup fails the run instead of every string.
func New(seed *mesh.Mesh, start lizard.Cursor, registry *lizard.Registry, opts ...EngineOption) (*Engine, error) {
	if seed == nil {
		return nil, NewInvalidSeedError(errors.New("nil mesh"))
	}
	if err := seed.CheckManifold(); err != nil {
		return nil, NewInvalidSeedError(err)
	}
	if !seed.HasEdge(start.Tail, start.Head) {
		return nil, NewInvalidCursorError(start.String(), mesh.ErrNotFound)
	}
	if start.Collecting() {
		return nil, NewInvalidCursorError(start.String(), errors.New("cursor must not carry a polyedge"))
	}

	e := &Engine{
		seed:      seed.Copy(),
		seedLoops: len(seed.BoundaryLoops()),
		start:     start.Clone(),
		registry:  registry,
		workers:   runtime.GOMAXPROCS(0),
		smoother:  relax.New(),
		precision: features.PrecisionInteger,
		runIDs:    UUIDv7Generator{},
		now:       time.Now,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// AttemptRecord is the outcome of one string.
type AttemptRecord struct {
	Seq    int64
	String ir.GrammarString
	// Code is empty for survivors.
	Code     ir.FailureCode
	Symbol   rune
	Position int
	Message  string
	// Key is the feature key, set whenever the replay succeeded.
	Key string
}

// Survived reports whether the string passed every stage.
func (r AttemptRecord) Survived() bool {
	return r.Code == ""
}

// Result is the outcome of a batch.
type Result struct {
	RunID string
	Stats Stats
	// Attempts holds one record per attempted string in sequence order.
	Attempts []AttemptRecord
	// Pool holds the survivors grouped by feature key.
	Pool *Pool
	// Interrupted is set when the context ended before every string was
	// attempted.
	Interrupted bool
	StartedAt   time.Time
	Duration    time.Duration
}

// Run deduplicates batch preserving first occurrence and replays every
// distinct string.
func (e *Engine) Run(ctx context.Context, batch []ir.GrammarString) (*Result, error) {
	seen := make(map[ir.GrammarString]struct{}, len(batch))
	unique := make([]ir.GrammarString, 0, len(batch))
	for _, s := range batch {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		unique = append(unique, s)
	}
	return e.run(ctx, len(batch), unique)
}

// RunCollection replays the strings of a generator collection.
func (e *Engine) RunCollection(ctx context.Context, c *grammar.Collection) (*Result, error) {
	return e.run(ctx, c.Generated, c.Unique)
}

func (e *Engine) run(ctx context.Context, generated int, batch []ir.GrammarString) (*Result, error) {
	runID := e.runIDs.Generate()
	started := e.now()
	logger := e.logger.With("run_id", runID)
	logger.Info("batch started", "strings", len(batch), "workers", e.workers)

	records := make([]AttemptRecord, len(batch))
	done := make([]bool, len(batch))
	partials := make([]*Pool, e.workers)
	jobs := make(chan int)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range batch {
			select {
			case <-gctx.Done():
				return nil
			case jobs <- i:
			}
		}
		return nil
	})
	for w := range e.workers {
		pool := NewPool()
		partials[w] = pool
		g.Go(func() error {
			for i := range jobs {
				if gctx.Err() != nil {
					continue
				}
				// Sequence numbers follow input order, starting at 1.
				records[i] = e.attempt(logger, int64(i+1), batch[i], pool)
				done[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pool := NewPool()
	for _, p := range partials {
		pool.Merge(p)
	}

	res := &Result{RunID: runID, Stats: newStats(), Pool: pool, StartedAt: started}
	res.Stats.Generated = generated
	res.Stats.Unique = len(batch)
	for i, rec := range records {
		if !done[i] {
			continue
		}
		res.Attempts = append(res.Attempts, rec)
		res.Stats.Attempted++
		switch {
		case rec.Survived():
			res.Stats.Succeeded++
			res.Stats.Survivors++
		default:
			res.Stats.Failures[rec.Code]++
			if !rec.Code.IsReplayFailure() {
				res.Stats.Succeeded++
			}
		}
	}
	res.Stats.UniqueMeshesPre = pool.Len()
	pool.Prune()
	res.Stats.UniqueMeshes = pool.Len()
	res.Stats.Duplicates = res.Stats.Survivors - res.Stats.UniqueMeshes
	res.Interrupted = res.Stats.Attempted < len(batch)
	res.Duration = e.now().Sub(started)

	if err := res.Stats.Check(); err != nil {
		var re *RuntimeError
		if errors.As(err, &re) {
			re.RunID = runID
		}
		return nil, err
	}

	logger.Info("batch finished",
		"attempted", res.Stats.Attempted,
		"succeeded", res.Stats.Succeeded,
		"survivors", res.Stats.Survivors,
		"unique_meshes", res.Stats.UniqueMeshes,
		"interrupted", res.Interrupted,
		"duration", res.Duration)
	return res, nil
}

// Replay is the full evaluation of one string.
type Replay struct {
	Record AttemptRecord
	// Trace is nil only when the cursor could not be placed.
	Trace *lizard.Trace
	// Mesh is the edited copy, set whenever the replay succeeded, even if
	// the validity filter rejected it.
	Mesh   *mesh.Mesh
	Vector features.Vector
}

// Replay evaluates s alone, keeping its trace. The outcome is the one s
// would have in a batch.
func (e *Engine) Replay(s ir.GrammarString) Replay {
	return e.evaluate(1, s)
}

// evaluate runs one string through replay, unification, fingerprint and
// the validity filter.
func (e *Engine) evaluate(seq int64, s ir.GrammarString) Replay {
	r := Replay{Record: AttemptRecord{Seq: seq, String: s, Position: ir.NoPosition}}

	m, trace, err := lizard.Attempt(e.seed, e.start, e.registry, s)
	r.Trace = trace
	if err != nil {
		r.Record = reject(r.Record, err)
		return r
	}

	r.Mesh = m
	r.Vector, r.Record.Key = features.Fingerprint(m, e.features, e.precision)

	filter := Filter{Smoother: e.smoother, SeedLoops: e.seedLoops}
	if rejection := filter.Check(m); rejection != nil {
		r.Record = reject(r.Record, rejection)
	}
	return r
}

// attempt evaluates one string and files it in pool.
func (e *Engine) attempt(logger *slog.Logger, seq int64, s ir.GrammarString, pool *Pool) AttemptRecord {
	r := e.evaluate(seq, s)
	rec := r.Record
	if !rec.Survived() {
		logger.Debug("attempt rejected",
			"string", string(rec.String),
			"code", string(rec.Code),
			"position", rec.Position)
	}
	if r.Mesh == nil {
		return rec
	}

	member := Member{Seq: seq, String: s, Vector: r.Vector, Rejected: rec.Code}
	if rec.Survived() {
		member.Mesh = r.Mesh
	}
	pool.Add(rec.Key, member)
	return rec
}

func reject(rec AttemptRecord, err error) AttemptRecord {
	var ae *ir.AttemptError
	if !errors.As(err, &ae) {
		// Init rejected the cursor on the copy; New already checked it on
		// the seed, so this is a broken invariant.
		ae = ir.NewStageError(ir.CodeCursorInvariant, err)
	}
	rec.Code = ae.Code
	rec.Symbol = ae.Symbol
	rec.Position = ae.Position
	rec.Message = ae.Error()
	return rec
}

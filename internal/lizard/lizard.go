package lizard

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/mesh"
)

var (
	// ErrNotInitialized indicates Replay before Init.
	ErrNotInitialized = errors.New("cursor not initialized")

	// ErrReplayed indicates a second Replay on the same automaton.
	ErrReplayed = errors.New("automaton already replayed a string")

	// ErrNoCorner indicates a mesh without a boundary corner to start on.
	ErrNoCorner = errors.New("no boundary corner")
)

// State is the lifecycle of an automaton.
type State int

const (
	Running State = iota
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Step is one applied rule.
type Step struct {
	Position int
	Symbol   rune
	Rule     string
	Cursor   Cursor
	Mutation Mutation
}

// Trace is the record of a replay. Steps hold every rule that succeeded;
// Failure is set when the replay aborted.
type Trace struct {
	String  ir.GrammarString
	Start   Cursor
	Steps   []Step
	Failure *ir.AttemptError
}

// Lizard drives a cursor over a mesh it owns for the duration of a replay.
type Lizard struct {
	mesh     *mesh.Mesh
	registry *Registry
	cursor   Cursor
	ready    bool
	replayed bool
	state    State
	logger   *slog.Logger
}

// Option configures a Lizard.
type Option func(*Lizard)

// WithLogger sets the logger used for per-step debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lizard) {
		l.logger = logger
	}
}

// New returns an automaton editing m in place.
func New(m *mesh.Mesh, registry *Registry, opts ...Option) *Lizard {
	l := &Lizard{
		mesh:     m,
		registry: registry,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Init places the cursor on the edge tail->head.
func (l *Lizard) Init(tail, head mesh.VertexID) error {
	if !l.mesh.HasEdge(tail, head) {
		return fmt.Errorf("init cursor %d->%d: %w", tail, head, mesh.ErrNotFound)
	}
	l.cursor = Cursor{Tail: tail, Head: head}
	l.ready = true
	return nil
}

// InitOnCorner places the cursor on the boundary at the smallest-id vertex
// of degree two. The head is the boundary neighbour h such that a face
// lies left of h->tail.
func (l *Lizard) InitOnCorner() error {
	tail, head, err := CornerCursor(l.mesh)
	if err != nil {
		return err
	}
	return l.Init(tail, head)
}

// CornerCursor finds the starting edge used by InitOnCorner.
func CornerCursor(m *mesh.Mesh) (tail, head mesh.VertexID, err error) {
	for _, v := range m.Vertices() {
		if m.Degree(v) != 2 || !m.IsBoundaryVertex(v) {
			continue
		}
		for _, h := range m.Neighbors(v) {
			if _, ok := m.FaceLeft(h, v); ok {
				return v, h, nil
			}
		}
	}
	return 0, 0, ErrNoCorner
}

// State returns the lifecycle state.
func (l *Lizard) State() State { return l.state }

// Cursor returns a copy of the current cursor.
func (l *Lizard) Cursor() Cursor { return l.cursor.Clone() }

// Mesh returns the mesh being edited.
func (l *Lizard) Mesh() *mesh.Mesh { return l.mesh }

// Replay applies every symbol of s in order. The first failing symbol
// aborts the replay with an *ir.AttemptError; the trace is returned either
// way. A Lizard replays at most one string.
func (l *Lizard) Replay(s ir.GrammarString) (*Trace, error) {
	if !l.ready {
		return nil, ErrNotInitialized
	}
	if l.replayed {
		return nil, ErrReplayed
	}
	l.replayed = true

	trace := &Trace{String: s, Start: l.cursor.Clone()}
	for pos, symbol := range s.Runes() {
		rule, ok := l.registry.Lookup(symbol)
		if !ok {
			return trace, l.fail(trace, ir.NewUnknownSymbolError(symbol, pos))
		}

		next, mut, err := rule.Apply(l.mesh, l.cursor.Clone())
		if err != nil {
			return trace, l.fail(trace, ir.NewSymbolError(ir.CodeRulePrecondition, symbol, pos, err))
		}
		if !l.mesh.HasEdge(next.Tail, next.Head) {
			err := fmt.Errorf("cursor %d->%d is not an edge after %s", next.Tail, next.Head, rule.Name())
			return trace, l.fail(trace, ir.NewSymbolError(ir.CodeCursorInvariant, symbol, pos, err))
		}

		l.cursor = next
		trace.Steps = append(trace.Steps, Step{
			Position: pos,
			Symbol:   symbol,
			Rule:     rule.Name(),
			Cursor:   next.Clone(),
			Mutation: mut,
		})
		l.logger.Debug("rule applied",
			"string", string(s),
			"position", pos,
			"rule", rule.Name(),
			"cursor", next.String())
	}

	l.state = Succeeded
	return trace, nil
}

func (l *Lizard) fail(trace *Trace, err *ir.AttemptError) error {
	l.state = Failed
	trace.Failure = err
	l.logger.Debug("replay aborted",
		"string", string(trace.String),
		"code", string(err.Code),
		"position", err.Position)
	return err
}

// Attempt replays s on a private copy of seed starting at start, then
// unifies face orientation. The seed is never modified. On success the
// edited copy is returned.
func Attempt(seed *mesh.Mesh, start Cursor, registry *Registry, s ir.GrammarString, opts ...Option) (*mesh.Mesh, *Trace, error) {
	m := seed.Copy()
	l := New(m, registry, opts...)
	if err := l.Init(start.Tail, start.Head); err != nil {
		return nil, nil, err
	}

	trace, err := l.Replay(s)
	if err != nil {
		return nil, trace, err
	}
	if err := m.UnifyCycles(); err != nil {
		failure := ir.NewStageError(ir.CodeUnificationFailed, err)
		trace.Failure = failure
		return nil, trace, failure
	}
	return m, trace, nil
}

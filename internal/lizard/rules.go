package lizard

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/lizard/internal/mesh"
)

// ErrCollecting indicates a rule that is not allowed while a polyedge is
// being collected.
var ErrCollecting = errors.New("polyedge collection in progress")

// Turn moves the cursor forward: the head becomes the tail and the new
// head is the neighbour following the old tail counter-clockwise around it.
// While collecting, the new head extends the polyedge.
type Turn struct{}

func (Turn) Name() string { return "turn" }

func (Turn) Apply(m *mesh.Mesh, c Cursor) (Cursor, Mutation, error) {
	w, err := m.CCW(c.Head, c.Tail)
	if err != nil {
		return c, Mutation{}, fmt.Errorf("turn: %w", err)
	}
	next := Cursor{Tail: c.Head, Head: w}
	if c.Collecting() {
		next.Polyedge = append(slices.Clone(c.Polyedge), w)
	}
	return next, Mutation{}, nil
}

// Pivot keeps the head and swings the tail counter-clockwise around it.
type Pivot struct{}

func (Pivot) Name() string { return "pivot" }

func (Pivot) Apply(m *mesh.Mesh, c Cursor) (Cursor, Mutation, error) {
	w, err := m.CCW(c.Head, c.Tail)
	if err != nil {
		return c, Mutation{}, fmt.Errorf("pivot: %w", err)
	}
	next := c.Clone()
	next.Tail = w
	return next, Mutation{}, nil
}

// Add starts collecting a polyedge at the head, or, when already
// collecting, inserts a strip along the collected polyedge.
type Add struct{}

func (Add) Name() string { return "add" }

func (Add) Apply(m *mesh.Mesh, c Cursor) (Cursor, Mutation, error) {
	if !c.Collecting() {
		next := c.Clone()
		next.Polyedge = []mesh.VertexID{c.Head}
		return next, Mutation{Kind: MutationStartPolyedge}, nil
	}

	dup, err := m.AddStrip(c.Polyedge)
	if err != nil {
		return c, Mutation{}, fmt.Errorf("add: %w", err)
	}
	next := Cursor{Tail: c.Tail, Head: c.Head}
	if !m.HasEdge(next.Tail, next.Head) {
		if d, ok := dup[next.Head]; ok && m.HasEdge(next.Tail, d) {
			next.Head = d
		}
	}
	return next, Mutation{
		Kind:     MutationAddStrip,
		Polyedge: slices.Clone(c.Polyedge),
		Remap:    dup,
	}, nil
}

// Delete removes the strip through the cursor edge. The head moves to the
// merged vertex and the tail to its smallest neighbour.
type Delete struct{}

func (Delete) Name() string { return "delete" }

func (Delete) Apply(m *mesh.Mesh, c Cursor) (Cursor, Mutation, error) {
	if c.Collecting() {
		return c, Mutation{}, fmt.Errorf("delete: %w", ErrCollecting)
	}

	merged, err := m.DeleteStrip(c.Tail, c.Head)
	if err != nil {
		return c, Mutation{}, fmt.Errorf("delete: %w", err)
	}
	head := c.Head
	if r, ok := merged[head]; ok {
		head = r
	}
	next := Cursor{Head: head, Tail: head}
	if nbrs := m.Neighbors(head); len(nbrs) > 0 {
		next.Tail = nbrs[0]
	}
	return next, Mutation{
		Kind:  MutationDeleteStrip,
		Edge:  mesh.NewEdge(c.Tail, c.Head),
		Remap: merged,
	}, nil
}

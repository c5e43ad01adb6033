package lizard

import (
	"fmt"
	"slices"

	"github.com/roach88/lizard/internal/mesh"
)

// Cursor is a directed edge tail->head plus the auxiliary state of the
// reference rules. Polyedge is nil unless a polyedge is being collected.
type Cursor struct {
	Tail     mesh.VertexID
	Head     mesh.VertexID
	Polyedge []mesh.VertexID
}

// Collecting reports whether a polyedge is being collected.
func (c Cursor) Collecting() bool {
	return c.Polyedge != nil
}

// Clone returns a copy that shares no memory with c.
func (c Cursor) Clone() Cursor {
	if c.Polyedge != nil {
		c.Polyedge = slices.Clone(c.Polyedge)
	}
	return c
}

func (c Cursor) String() string {
	if c.Collecting() {
		return fmt.Sprintf("%d->%d %v", c.Tail, c.Head, c.Polyedge)
	}
	return fmt.Sprintf("%d->%d", c.Tail, c.Head)
}

// MutationKind names the mesh edit performed by a rule.
type MutationKind string

const (
	MutationNone          MutationKind = ""
	MutationStartPolyedge MutationKind = "start_polyedge"
	MutationAddStrip      MutationKind = "add_strip"
	MutationDeleteStrip   MutationKind = "delete_strip"
)

// Mutation records what a rule did to the mesh.
type Mutation struct {
	Kind     MutationKind
	Polyedge []mesh.VertexID // add_strip
	Edge     mesh.Edge       // delete_strip
	// Remap maps vertices to their duplicates (add) or merged
	// representatives (delete).
	Remap map[mesh.VertexID]mesh.VertexID
}

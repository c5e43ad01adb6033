package mesh

import (
	"fmt"
	"slices"
)

// IsBoundaryVertex reports whether v lies on an edge with a single face.
func (m *Mesh) IsBoundaryVertex(v VertexID) bool {
	if !m.HasVertex(v) {
		return false
	}
	for _, u := range m.neighbors[v] {
		if len(m.edgeFaces[NewEdge(u, v)]) == 1 {
			return true
		}
	}
	return false
}

// BoundaryEdges returns the edges with exactly one incident face.
func (m *Mesh) BoundaryEdges() []Edge {
	var out []Edge
	for e, fs := range m.edgeFaces {
		if len(fs) == 1 {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, compareEdges)
	return out
}

// BoundaryLoops returns the closed boundary polygons of the mesh. Each loop
// lists its vertices once, walking the boundary with the mesh on the right.
// Loops are ordered by their first vertex, which is the smallest id the
// walk started from.
func (m *Mesh) BoundaryLoops() [][]VertexID {
	// A boundary halfedge a->b has no face while b->a does.
	next := make(map[VertexID][]VertexID)
	var starts []halfedge
	for he := range m.left {
		rev := halfedge{he.to, he.from}
		if _, ok := m.left[rev]; ok {
			continue
		}
		next[rev.from] = append(next[rev.from], rev.to)
		starts = append(starts, rev)
	}
	for v := range next {
		slices.Sort(next[v])
	}
	slices.SortFunc(starts, func(a, b halfedge) int {
		if a.from != b.from {
			return int(a.from - b.from)
		}
		return int(a.to - b.to)
	})

	used := make(map[halfedge]bool, len(starts))
	var loops [][]VertexID
	for _, start := range starts {
		if used[start] {
			continue
		}
		loop := []VertexID{start.from}
		used[start] = true
		cur := start.to
		for cur != start.from {
			loop = append(loop, cur)
			var step halfedge
			found := false
			for _, w := range next[cur] {
				if he := (halfedge{cur, w}); !used[he] {
					step, found = he, true
					break
				}
			}
			if !found {
				break
			}
			used[step] = true
			cur = step.to
		}
		loops = append(loops, loop)
	}
	return loops
}

// CheckManifold returns an error wrapping ErrNonManifold describing the first
// violation found, or nil. A manifold mesh has at most two faces per edge,
// consistently oriented face cycles, and a single fan of faces around each
// vertex.
func (m *Mesh) CheckManifold() error {
	for _, e := range m.Edges() {
		if n := len(m.edgeFaces[e]); n > 2 {
			return fmt.Errorf("%w: edge %s is shared by %d faces", ErrNonManifold, e, n)
		}
	}
	if m.conflicts > 0 {
		return fmt.Errorf("%w: %d halfedges are claimed by two faces", ErrNonManifold, m.conflicts)
	}
	for _, v := range m.Vertices() {
		if len(m.vertexFaces[v]) == 0 {
			return fmt.Errorf("%w: vertex %d has no face", ErrNonManifold, v)
		}
		if !m.singleFan(v) {
			return fmt.Errorf("%w: faces around vertex %d do not form a single fan", ErrNonManifold, v)
		}
	}
	return nil
}

// IsManifold reports whether CheckManifold finds no violation.
func (m *Mesh) IsManifold() bool {
	return m.CheckManifold() == nil
}

// singleFan reports whether the link of v is connected: the faces around v
// chain into one open or closed fan through shared edges.
func (m *Mesh) singleFan(v VertexID) bool {
	link := newDisjointSet[VertexID]()
	for _, f := range m.vertexFaces[v] {
		link.union(m.pred(f, v), m.succ(f, v))
	}
	return len(link.groups()) == 1
}

// UnifyCycles orients every face consistently with the lowest-id face of
// its connected component. Faces are flipped by reversing their cycle.
// On error the mesh is unchanged.
func (m *Mesh) UnifyCycles() error {
	for _, e := range m.Edges() {
		if n := len(m.edgeFaces[e]); n > 2 {
			return fmt.Errorf("%w: edge %s is shared by %d faces", ErrNonManifold, e, n)
		}
	}

	faces := make([][]VertexID, len(m.faces))
	for i, f := range m.faces {
		if f != nil {
			faces[i] = slices.Clone(f)
		}
	}

	visited := make(map[FaceID]bool, m.numFaces)
	for _, seed := range m.Faces() {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		queue := []FaceID{seed}
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			cycle := faces[f]
			for i, a := range cycle {
				b := cycle[(i+1)%len(cycle)]
				for _, g := range m.edgeFaces[NewEdge(a, b)] {
					if g == f {
						continue
					}
					same := hasHalfedge(faces[g], a, b)
					if visited[g] {
						if same {
							return fmt.Errorf("%w: faces %d and %d both traverse %d->%d", ErrOrientation, f, g, a, b)
						}
						continue
					}
					if same {
						slices.Reverse(faces[g])
					}
					visited[g] = true
					queue = append(queue, g)
				}
			}
		}
	}

	m.faces = faces
	m.reindex()
	return nil
}

func hasHalfedge(face []VertexID, a, b VertexID) bool {
	for i, u := range face {
		if u == a && face[(i+1)%len(face)] == b {
			return true
		}
	}
	return false
}

// Strips returns the edge strips of the mesh. Two edges belong to the same
// strip when they are opposite edges of a quad. Each strip lists its edges
// in ascending order; strips are ordered by their first edge.
func (m *Mesh) Strips() [][]Edge {
	ds := newDisjointSet[Edge]()
	for e := range m.edgeFaces {
		ds.add(e)
	}
	for _, face := range m.faces {
		if len(face) != 4 {
			continue
		}
		ds.union(NewEdge(face[0], face[1]), NewEdge(face[2], face[3]))
		ds.union(NewEdge(face[1], face[2]), NewEdge(face[3], face[0]))
	}

	var strips [][]Edge
	for _, members := range ds.groups() {
		slices.SortFunc(members, compareEdges)
		strips = append(strips, members)
	}
	slices.SortFunc(strips, func(a, b []Edge) int {
		return compareEdges(a[0], b[0])
	})
	return strips
}

// NumStrips returns the number of strips.
func (m *Mesh) NumStrips() int {
	return len(m.Strips())
}

// StripOf returns the strip containing the edge (u, v).
func (m *Mesh) StripOf(u, v VertexID) ([]Edge, error) {
	target := NewEdge(u, v)
	if _, ok := m.edgeFaces[target]; !ok {
		return nil, fmt.Errorf("%w: edge %s", ErrNotFound, target)
	}
	for _, strip := range m.Strips() {
		if _, found := slices.BinarySearchFunc(strip, target, compareEdges); found {
			return strip, nil
		}
	}
	return nil, fmt.Errorf("%w: strip of edge %s", ErrNotFound, target)
}

// TopoIndex returns (regular - degree) / 4 where regular is 4 for interior
// vertices and 3 for boundary vertices.
func (m *Mesh) TopoIndex(v VertexID) float64 {
	regular := 4
	if m.IsBoundaryVertex(v) {
		regular = 3
	}
	return float64(regular-m.Degree(v)) / 4
}

// TopoIndices returns the index of every live vertex in id order.
func (m *Mesh) TopoIndices() []float64 {
	vs := m.Vertices()
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = m.TopoIndex(v)
	}
	return out
}

// TopoIndicesNeighborhood returns, for every live vertex in id order, the
// sum of the indices of its neighbours.
func (m *Mesh) TopoIndicesNeighborhood() []float64 {
	vs := m.Vertices()
	out := make([]float64, len(vs))
	for i, v := range vs {
		for _, u := range m.neighbors[v] {
			out[i] += m.TopoIndex(u)
		}
	}
	return out
}

// IsSingular reports whether v is an irregular vertex: interior with degree
// other than 4, or boundary with degree other than 3. Boundary corners of
// degree 2 are singular.
func (m *Mesh) IsSingular(v VertexID) bool {
	if m.IsBoundaryVertex(v) {
		return m.Degree(v) != 3
	}
	return m.Degree(v) != 4
}

// Singularities returns the singular vertices in ascending order.
func (m *Mesh) Singularities() []VertexID {
	var out []VertexID
	for _, v := range m.Vertices() {
		if m.IsSingular(v) {
			out = append(out, v)
		}
	}
	return out
}

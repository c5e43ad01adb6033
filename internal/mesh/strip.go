package mesh

import (
	"fmt"
	"slices"
)

// AddStrip inserts a strip of quads along polyedge, a vertex path through
// consecutive edges of the mesh. Every path vertex is duplicated; faces on
// the right of the path are reattached to the duplicates and one new quad
// is added per path edge.
//
// An open polyedge must be simple and start and end on the boundary. A
// closed polyedge repeats its first vertex at the end and needs at least
// four edges. On success the map from original to duplicate vertex is
// returned; on error the mesh is unchanged.
func (m *Mesh) AddStrip(polyedge []VertexID) (map[VertexID]VertexID, error) {
	if len(polyedge) < 2 {
		return nil, fmt.Errorf("%w: polyedge needs at least two vertices, got %d", ErrPrecondition, len(polyedge))
	}

	closed := polyedge[0] == polyedge[len(polyedge)-1]
	path := polyedge
	if closed {
		if len(polyedge)-1 < 4 {
			return nil, fmt.Errorf("%w: closed polyedge needs at least four edges, got %d", ErrPrecondition, len(polyedge)-1)
		}
		path = polyedge[:len(polyedge)-1]
	}

	seen := make(map[VertexID]bool, len(path))
	for _, v := range path {
		if !m.HasVertex(v) {
			return nil, fmt.Errorf("%w: polyedge vertex %d: %w", ErrPrecondition, v, ErrNotFound)
		}
		if seen[v] {
			return nil, fmt.Errorf("%w: polyedge visits vertex %d twice", ErrPrecondition, v)
		}
		seen[v] = true
	}
	for i := 0; i+1 < len(polyedge); i++ {
		if !m.HasEdge(polyedge[i], polyedge[i+1]) {
			return nil, fmt.Errorf("%w: polyedge step %d->%d is not an edge", ErrPrecondition, polyedge[i], polyedge[i+1])
		}
	}
	if !closed {
		for _, end := range []VertexID{path[0], path[len(path)-1]} {
			if !m.IsBoundaryVertex(end) {
				return nil, fmt.Errorf("%w: open polyedge must end on the boundary, vertex %d is interior", ErrPrecondition, end)
			}
		}
	}

	n := len(path)
	fans := make([][]FaceID, n)
	for i, v := range path {
		var (
			prev, next       VertexID
			hasPrev, hasNext bool
		)
		switch {
		case closed:
			prev, next = path[(i+n-1)%n], path[(i+1)%n]
			hasPrev, hasNext = true, true
		default:
			if i > 0 {
				prev, hasPrev = path[i-1], true
			}
			if i < n-1 {
				next, hasNext = path[i+1], true
			}
		}

		fan, err := m.rightFan(v, prev, next, hasPrev, hasNext)
		if err != nil {
			return nil, err
		}
		fans[i] = fan
	}

	dup := make(map[VertexID]VertexID, n)
	for _, v := range path {
		id := VertexID(len(m.points))
		m.points = append(m.points, m.points[v])
		m.alive = append(m.alive, true)
		dup[v] = id
	}
	for i, v := range path {
		for _, f := range fans[i] {
			face := m.faces[f]
			face[slices.Index(face, v)] = dup[v]
		}
	}
	for i := 0; i+1 < len(polyedge); i++ {
		a, b := polyedge[i], polyedge[i+1]
		m.faces = append(m.faces, []VertexID{a, dup[a], dup[b], b})
	}

	m.reindex()
	return dup, nil
}

// rightFan collects the faces around v that lie on the right of the path
// prev->v->next. Endpoints of an open path sweep until the boundary.
func (m *Mesh) rightFan(v, prev, next VertexID, hasPrev, hasNext bool) ([]FaceID, error) {
	var fan []FaceID
	limit := len(m.vertexFaces[v]) + 1
	add := func(f FaceID) error {
		if slices.Contains(fan, f) || len(fan) >= limit {
			return fmt.Errorf("%w: faces around vertex %d do not form a fan", ErrPrecondition, v)
		}
		fan = append(fan, f)
		return nil
	}

	// Clockwise from next: the face left of x->v, then its successor of v.
	sweepCW := func(from, stop VertexID, hasStop bool) (bool, error) {
		x := from
		for {
			f, ok := m.left[halfedge{x, v}]
			if !ok {
				return false, nil
			}
			if err := add(f); err != nil {
				return false, err
			}
			x = m.succ(f, v)
			if hasStop && x == stop {
				return true, nil
			}
			if x == from {
				return false, fmt.Errorf("%w: polyedge cannot leave interior vertex %d on the boundary", ErrPrecondition, v)
			}
		}
	}
	// Counter-clockwise from prev: the face left of v->x, then its
	// predecessor of v.
	sweepCCW := func(from VertexID) error {
		x := from
		for {
			f, ok := m.left[halfedge{v, x}]
			if !ok {
				return nil
			}
			if err := add(f); err != nil {
				return err
			}
			x = m.pred(f, v)
			if x == from {
				return fmt.Errorf("%w: polyedge cannot reach the boundary at interior vertex %d", ErrPrecondition, v)
			}
		}
	}

	switch {
	case hasPrev && hasNext:
		reached, err := sweepCW(next, prev, true)
		if err != nil {
			return nil, err
		}
		if !reached {
			// The right side is cut by the boundary; finish from prev.
			if err := sweepCCW(prev); err != nil {
				return nil, err
			}
		}
	case hasNext:
		if _, err := sweepCW(next, 0, false); err != nil {
			return nil, err
		}
	case hasPrev:
		if err := sweepCCW(prev); err != nil {
			return nil, err
		}
	}
	return fan, nil
}

// DeleteStrip removes the strip containing the edge (u, v). Each strip edge
// is collapsed: its endpoints merge into the smaller id, placed at the mean
// of the merged positions. The strip's faces are removed.
//
// Fails when a remaining face would lose a vertex or when no face would
// remain. On success the map from every merged vertex to its
// representative is returned; on error the mesh is unchanged.
func (m *Mesh) DeleteStrip(u, v VertexID) (map[VertexID]VertexID, error) {
	strip, err := m.StripOf(u, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}

	inStrip := make(map[FaceID]bool)
	merge := newDisjointSet[VertexID]()
	for _, e := range strip {
		merge.union(e.U, e.V)
		for _, f := range m.edgeFaces[e] {
			inStrip[f] = true
		}
	}

	rep := make(map[VertexID]VertexID)
	centroid := make(map[VertexID]Point)
	for _, members := range merge.groups() {
		r := slices.Min(members)
		var c Point
		for _, w := range members {
			rep[w] = r
			p := m.points[w]
			c.X += p.X
			c.Y += p.Y
			c.Z += p.Z
		}
		k := float64(len(members))
		centroid[r] = Point{X: c.X / k, Y: c.Y / k, Z: c.Z / k}
	}

	faces := make([][]VertexID, len(m.faces))
	remaining := 0
	for i, face := range m.faces {
		if face == nil || inStrip[FaceID(i)] {
			continue
		}
		relabeled := make([]VertexID, len(face))
		for k, w := range face {
			if r, ok := rep[w]; ok {
				w = r
			}
			relabeled[k] = w
		}
		if distinct(relabeled) != len(relabeled) {
			return nil, fmt.Errorf("%w: deleting strip of %s collapses face %d", ErrPrecondition, NewEdge(u, v), i)
		}
		faces[i] = relabeled
		remaining++
	}
	if remaining == 0 {
		return nil, fmt.Errorf("%w: deleting strip of %s leaves no face", ErrPrecondition, NewEdge(u, v))
	}

	used := make([]bool, len(m.points))
	for _, face := range faces {
		for _, w := range face {
			used[w] = true
		}
	}
	for r, p := range centroid {
		m.points[r] = p
	}
	for w := range m.alive {
		m.alive[w] = m.alive[w] && used[w]
	}
	m.faces = faces
	m.reindex()
	return rep, nil
}

package mesh

import (
	"fmt"
	"slices"
)

// VertexID addresses a vertex in the arena.
type VertexID int

// FaceID addresses a face in the arena.
type FaceID int

// Point is a vertex position.
type Point struct {
	X, Y, Z float64
}

// Edge is an undirected edge with U < V.
type Edge struct {
	U, V VertexID
}

// NewEdge returns the normalized undirected edge between u and v.
func NewEdge(u, v VertexID) Edge {
	if u > v {
		u, v = v, u
	}
	return Edge{U: u, V: v}
}

func (e Edge) String() string {
	return fmt.Sprintf("(%d,%d)", e.U, e.V)
}

type halfedge struct {
	from, to VertexID
}

// Mesh is a quad mesh stored as an arena of vertices and face cycles.
type Mesh struct {
	points []Point
	alive  []bool
	faces  [][]VertexID // nil when removed

	// Derived, rebuilt by reindex.
	left        map[halfedge]FaceID
	edgeFaces   map[Edge][]FaceID
	vertexFaces [][]FaceID
	neighbors   [][]VertexID
	conflicts   int // halfedges claimed by more than one face
	numVertices int
	numFaces    int
}

// FromVerticesAndFaces builds a mesh from positions and quad faces given as
// vertex cycles. Every face must have four distinct, valid vertices and
// every vertex must be used by at least one face.
func FromVerticesAndFaces(points []Point, faces [][]VertexID) (*Mesh, error) {
	if len(faces) == 0 {
		return nil, fmt.Errorf("%w: mesh has no faces", ErrInvalidMesh)
	}

	m := &Mesh{
		points: slices.Clone(points),
		alive:  make([]bool, len(points)),
		faces:  make([][]VertexID, 0, len(faces)),
	}
	used := make([]bool, len(points))
	for i, face := range faces {
		if len(face) != 4 {
			return nil, fmt.Errorf("%w: face %d has %d vertices, want 4", ErrInvalidMesh, i, len(face))
		}
		for _, v := range face {
			if v < 0 || int(v) >= len(points) {
				return nil, fmt.Errorf("%w: face %d references vertex %d", ErrInvalidMesh, i, v)
			}
			used[v] = true
		}
		if distinct(face) != 4 {
			return nil, fmt.Errorf("%w: face %d repeats a vertex", ErrInvalidMesh, i)
		}
		m.faces = append(m.faces, slices.Clone(face))
	}
	for v, ok := range used {
		if !ok {
			return nil, fmt.Errorf("%w: vertex %d is not used by any face", ErrInvalidMesh, v)
		}
		m.alive[v] = true
	}

	m.reindex()
	return m, nil
}

// Grid builds an nx by ny grid of quads on the unit square centred at the
// origin. Vertex (i, j) has id j*(nx+1)+i; faces are counter-clockwise.
func Grid(nx, ny int) (*Mesh, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("%w: grid size must be at least 1x1, got %dx%d", ErrInvalidMesh, nx, ny)
	}

	points := make([]Point, 0, (nx+1)*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			points = append(points, Point{
				X: float64(i)/float64(nx) - 0.5,
				Y: float64(j)/float64(ny) - 0.5,
			})
		}
	}

	id := func(i, j int) VertexID { return VertexID(j*(nx+1) + i) }
	faces := make([][]VertexID, 0, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			faces = append(faces, []VertexID{id(i, j), id(i+1, j), id(i+1, j+1), id(i, j+1)})
		}
	}
	return FromVerticesAndFaces(points, faces)
}

// Copy returns a deep copy. The copy shares nothing with m.
func (m *Mesh) Copy() *Mesh {
	c := &Mesh{
		points: slices.Clone(m.points),
		alive:  slices.Clone(m.alive),
		faces:  make([][]VertexID, len(m.faces)),
	}
	for i, f := range m.faces {
		if f != nil {
			c.faces[i] = slices.Clone(f)
		}
	}
	c.reindex()
	return c
}

// reindex rebuilds every derived structure from the arena.
func (m *Mesh) reindex() {
	m.left = make(map[halfedge]FaceID)
	m.edgeFaces = make(map[Edge][]FaceID)
	m.vertexFaces = make([][]FaceID, len(m.points))
	m.neighbors = make([][]VertexID, len(m.points))
	m.conflicts = 0
	m.numFaces = 0
	m.numVertices = 0

	for i, face := range m.faces {
		if face == nil {
			continue
		}
		f := FaceID(i)
		m.numFaces++
		for k, u := range face {
			v := face[(k+1)%len(face)]
			he := halfedge{u, v}
			if _, taken := m.left[he]; taken {
				m.conflicts++
			} else {
				m.left[he] = f
			}
			e := NewEdge(u, v)
			m.edgeFaces[e] = append(m.edgeFaces[e], f)
			m.vertexFaces[u] = append(m.vertexFaces[u], f)
		}
	}

	for e := range m.edgeFaces {
		m.neighbors[e.U] = append(m.neighbors[e.U], e.V)
		m.neighbors[e.V] = append(m.neighbors[e.V], e.U)
	}
	for v := range m.neighbors {
		slices.Sort(m.neighbors[v])
		if m.alive[v] {
			m.numVertices++
		}
	}
}

// NumVertices returns the number of live vertices.
func (m *Mesh) NumVertices() int { return m.numVertices }

// NumEdges returns the number of undirected edges.
func (m *Mesh) NumEdges() int { return len(m.edgeFaces) }

// NumFaces returns the number of live faces.
func (m *Mesh) NumFaces() int { return m.numFaces }

// Vertices returns the live vertex ids in ascending order.
func (m *Mesh) Vertices() []VertexID {
	out := make([]VertexID, 0, m.numVertices)
	for v, ok := range m.alive {
		if ok {
			out = append(out, VertexID(v))
		}
	}
	return out
}

// Faces returns the live face ids in ascending order.
func (m *Mesh) Faces() []FaceID {
	out := make([]FaceID, 0, m.numFaces)
	for f, face := range m.faces {
		if face != nil {
			out = append(out, FaceID(f))
		}
	}
	return out
}

// FaceVertices returns a copy of the vertex cycle of f, or nil if f is not
// a live face.
func (m *Mesh) FaceVertices(f FaceID) []VertexID {
	if f < 0 || int(f) >= len(m.faces) {
		return nil
	}
	return slices.Clone(m.faces[f])
}

// HasVertex reports whether v is a live vertex.
func (m *Mesh) HasVertex(v VertexID) bool {
	return v >= 0 && int(v) < len(m.alive) && m.alive[v]
}

// HasEdge reports whether u and v are joined by an edge.
func (m *Mesh) HasEdge(u, v VertexID) bool {
	_, ok := m.edgeFaces[NewEdge(u, v)]
	return ok
}

// Edges returns every undirected edge in ascending order.
func (m *Mesh) Edges() []Edge {
	out := make([]Edge, 0, len(m.edgeFaces))
	for e := range m.edgeFaces {
		out = append(out, e)
	}
	slices.SortFunc(out, compareEdges)
	return out
}

// FaceLeft returns the face whose cycle contains u followed by v.
func (m *Mesh) FaceLeft(u, v VertexID) (FaceID, bool) {
	f, ok := m.left[halfedge{u, v}]
	return f, ok
}

// Neighbors returns the vertices adjacent to v in ascending order.
func (m *Mesh) Neighbors(v VertexID) []VertexID {
	if !m.HasVertex(v) {
		return nil
	}
	return slices.Clone(m.neighbors[v])
}

// Degree returns the number of edges incident to v.
func (m *Mesh) Degree(v VertexID) int {
	if !m.HasVertex(v) {
		return 0
	}
	return len(m.neighbors[v])
}

// Position returns the coordinates of v.
func (m *Mesh) Position(v VertexID) Point {
	return m.points[v]
}

// SetPosition moves v to p.
func (m *Mesh) SetPosition(v VertexID, p Point) {
	m.points[v] = p
}

// CCW returns the neighbour that follows from counter-clockwise around
// center. It requires a face left of center->from.
func (m *Mesh) CCW(center, from VertexID) (VertexID, error) {
	f, ok := m.left[halfedge{center, from}]
	if !ok {
		return 0, fmt.Errorf("%w left of %d->%d", ErrNoFace, center, from)
	}
	return m.pred(f, center), nil
}

// CW returns the neighbour that follows from clockwise around center. It
// requires a face left of from->center.
func (m *Mesh) CW(center, from VertexID) (VertexID, error) {
	f, ok := m.left[halfedge{from, center}]
	if !ok {
		return 0, fmt.Errorf("%w left of %d->%d", ErrNoFace, from, center)
	}
	return m.succ(f, center), nil
}

func (m *Mesh) pred(f FaceID, v VertexID) VertexID {
	face := m.faces[f]
	i := slices.Index(face, v)
	return face[(i+len(face)-1)%len(face)]
}

func (m *Mesh) succ(f FaceID, v VertexID) VertexID {
	face := m.faces[f]
	i := slices.Index(face, v)
	return face[(i+1)%len(face)]
}

func distinct(face []VertexID) int {
	seen := make(map[VertexID]struct{}, len(face))
	for _, v := range face {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func compareEdges(a, b Edge) int {
	if a.U != b.U {
		return int(a.U - b.U)
	}
	return int(a.V - b.V)
}

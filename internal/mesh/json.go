package mesh

import (
	"encoding/json"
	"fmt"
)

// document is the exported form of a mesh. Vertices are renumbered densely
// in id order; faces reference the dense indices.
type document struct {
	Vertices [][3]float64 `json:"vertices"`
	Faces    [][]int      `json:"faces"`
}

// MarshalJSON encodes the live vertices and faces.
func (m *Mesh) MarshalJSON() ([]byte, error) {
	dense := make(map[VertexID]int, m.numVertices)
	doc := document{
		Vertices: make([][3]float64, 0, m.numVertices),
		Faces:    make([][]int, 0, m.numFaces),
	}
	for _, v := range m.Vertices() {
		dense[v] = len(doc.Vertices)
		p := m.points[v]
		doc.Vertices = append(doc.Vertices, [3]float64{p.X, p.Y, p.Z})
	}
	for _, f := range m.Faces() {
		face := make([]int, len(m.faces[f]))
		for i, v := range m.faces[f] {
			face[i] = dense[v]
		}
		doc.Faces = append(doc.Faces, face)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON replaces m with the decoded mesh.
func (m *Mesh) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMesh, err)
	}

	points := make([]Point, len(doc.Vertices))
	for i, xyz := range doc.Vertices {
		points[i] = Point{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	}
	faces := make([][]VertexID, len(doc.Faces))
	for i, face := range doc.Faces {
		faces[i] = make([]VertexID, len(face))
		for k, v := range face {
			faces[i][k] = VertexID(v)
		}
	}

	decoded, err := FromVerticesAndFaces(points, faces)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

// Signature returns a compact textual summary used in logs and traces.
func (m *Mesh) Signature() string {
	return fmt.Sprintf("V=%d E=%d F=%d", m.NumVertices(), m.NumEdges(), m.NumFaces())
}

// Package mesh provides an arena-based quad mesh with the topological
// editing operations the cursor automaton relies on.
//
// Vertices and faces are addressed by integer ids that stay stable for the
// lifetime of a mesh: removed elements are tombstoned, never renumbered.
// Faces are stored as vertex cycles. A face "left of" the directed edge
// u->v is the face whose cycle contains u immediately followed by v.
//
// Derived adjacency (halfedges, edge-to-face incidence, neighbour lists) is
// rebuilt eagerly after every mutation, so a mesh that is not being
// mutated may be read from several goroutines at once. Mutating operations
// validate fully before touching the arena: an error leaves the mesh
// unchanged.
package mesh

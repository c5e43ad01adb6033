// Package lizard replays grammar strings against a quad mesh through a
// moving directed-edge cursor.
//
// Each symbol selects a Rule from a Registry. A rule either returns the new
// cursor (and possibly edits the mesh) or fails without touching the mesh.
// The first failure aborts the whole string; there is no partial success.
// After every rule the driver re-checks that the cursor is still an edge.
//
// The reference rule set is:
//
//	t  turn: the head becomes the tail and the cursor turns counter-clockwise
//	p  pivot: the tail swings counter-clockwise around the head
//	a  add: the first a starts collecting a polyedge, the second inserts a strip along it
//	d  delete: remove the strip through the cursor edge
package lizard

package mesh

// disjointSet is a union-find over comparable keys with path compression.
type disjointSet[K comparable] struct {
	parent map[K]K
}

func newDisjointSet[K comparable]() *disjointSet[K] {
	return &disjointSet[K]{parent: make(map[K]K)}
}

func (d *disjointSet[K]) add(k K) {
	if _, ok := d.parent[k]; !ok {
		d.parent[k] = k
	}
}

func (d *disjointSet[K]) find(k K) K {
	d.add(k)
	root := k
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[k] != root {
		next := d.parent[k]
		d.parent[k] = root
		k = next
	}
	return root
}

func (d *disjointSet[K]) union(a, b K) {
	ra, rb := d.find(a), d.find(b)
	if ra != rb {
		d.parent[ra] = rb
	}
}

// groups returns the members of every set, keyed by root.
func (d *disjointSet[K]) groups() map[K][]K {
	out := make(map[K][]K)
	for k := range d.parent {
		r := d.find(k)
		out[r] = append(out[r], k)
	}
	return out
}

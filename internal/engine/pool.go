package engine

import (
	"cmp"
	"maps"
	"slices"

	"github.com/roach88/lizard/internal/features"
	"github.com/roach88/lizard/internal/ir"
	"github.com/roach88/lizard/internal/mesh"
)

// Member is one successfully replayed string filed under its feature key.
type Member struct {
	Seq    int64
	String ir.GrammarString
	Vector features.Vector
	// Mesh is nil for rejected members.
	Mesh *mesh.Mesh
	// Rejected is the validity filter's verdict, empty for survivors.
	Rejected ir.FailureCode
}

// Bucket groups the members that share a feature key. Members are kept in
// ascending Seq order.
type Bucket struct {
	Key     string
	Members []Member
}

// Claimant returns the member with the lowest sequence number.
func (b *Bucket) Claimant() Member {
	return b.Members[0]
}

// Duplicates returns every member except the claimant.
func (b *Bucket) Duplicates() []Member {
	return b.Members[1:]
}

// Pool maps feature keys to buckets.
//
// Thread-safety: Pool is NOT safe for concurrent use. Each worker fills
// its own Pool; partial pools are combined with Merge afterwards.
type Pool struct {
	buckets map[string]*Bucket
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{buckets: make(map[string]*Bucket)}
}

// Add files member under key.
func (p *Pool) Add(key string, member Member) {
	b, ok := p.buckets[key]
	if !ok {
		b = &Bucket{Key: key}
		p.buckets[key] = b
	}
	i, _ := slices.BinarySearchFunc(b.Members, member.Seq, func(m Member, seq int64) int {
		return cmp.Compare(m.Seq, seq)
	})
	b.Members = slices.Insert(b.Members, i, member)
}

// Merge moves every member of other into p. The result does not depend on
// the order in which partial pools are merged.
func (p *Pool) Merge(other *Pool) {
	for key, b := range other.buckets {
		for _, m := range b.Members {
			p.Add(key, m)
		}
	}
}

// Prune drops rejected members and the buckets they leave empty.
func (p *Pool) Prune() {
	for key, b := range p.buckets {
		b.Members = slices.DeleteFunc(b.Members, func(m Member) bool {
			return m.Rejected != ""
		})
		if len(b.Members) == 0 {
			delete(p.buckets, key)
		}
	}
}

// Len returns the number of buckets.
func (p *Pool) Len() int {
	return len(p.buckets)
}

// Size returns the number of members across all buckets.
func (p *Pool) Size() int {
	n := 0
	for _, b := range p.buckets {
		n += len(b.Members)
	}
	return n
}

// Keys returns the feature keys in ascending order.
func (p *Pool) Keys() []string {
	return slices.Sorted(maps.Keys(p.buckets))
}

// Bucket returns the bucket for key.
func (p *Pool) Bucket(key string) (*Bucket, bool) {
	b, ok := p.buckets[key]
	return b, ok
}

// Buckets returns every bucket in key order.
func (p *Pool) Buckets() []*Bucket {
	keys := p.Keys()
	out := make([]*Bucket, len(keys))
	for i, k := range keys {
		out[i] = p.buckets[k]
	}
	return out
}

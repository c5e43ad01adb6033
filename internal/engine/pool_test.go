package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lizard/internal/ir"
)

func member(seq int64, s string) Member {
	return Member{Seq: seq, String: ir.GrammarString(s)}
}

func TestPool_ClaimantIsLowestSeq(t *testing.T) {
	p := NewPool()
	p.Add("k", member(7, "late"))
	p.Add("k", member(2, "early"))
	p.Add("k", member(5, "middle"))

	b, ok := p.Bucket("k")
	require.True(t, ok)
	assert.Equal(t, ir.GrammarString("early"), b.Claimant().String)
	assert.Len(t, b.Duplicates(), 2)
	assert.Equal(t, int64(5), b.Members[1].Seq)
}

func TestPool_MergeOrderIndependent(t *testing.T) {
	build := func() (*Pool, *Pool) {
		a, b := NewPool(), NewPool()
		a.Add("x", member(3, "c"))
		a.Add("y", member(1, "a"))
		b.Add("x", member(2, "b"))
		b.Add("z", member(4, "d"))
		return a, b
	}

	a1, b1 := build()
	left := NewPool()
	left.Merge(a1)
	left.Merge(b1)

	a2, b2 := build()
	right := NewPool()
	right.Merge(b2)
	right.Merge(a2)

	assert.Equal(t, []string{"x", "y", "z"}, left.Keys())
	assert.Equal(t, left.Keys(), right.Keys())
	assert.Equal(t, 4, left.Size())
	for _, key := range left.Keys() {
		l, _ := left.Bucket(key)
		r, _ := right.Bucket(key)
		assert.Equal(t, l.Members, r.Members)
	}
	x, _ := left.Bucket("x")
	assert.Equal(t, ir.GrammarString("b"), x.Claimant().String)
}

func TestPool_Prune(t *testing.T) {
	p := NewPool()
	p.Add("keep", member(1, "a"))
	rejected := member(2, "b")
	rejected.Rejected = ir.CodeNonManifold
	p.Add("keep", rejected)
	gone := member(3, "c")
	gone.Rejected = ir.CodeSmoothingFailed
	p.Add("gone", gone)

	require.Equal(t, 2, p.Len())
	p.Prune()

	assert.Equal(t, []string{"keep"}, p.Keys())
	b, _ := p.Bucket("keep")
	assert.Len(t, b.Members, 1)
	assert.Len(t, p.Buckets(), 1)
}

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHashDeterminism(t *testing.T) {
	cfg := IRObject{
		"alphabet": IRString("atp"),
		"workers":  IRInt(4),
	}

	h1, err := ConfigHash(cfg)
	require.NoError(t, err)
	h2, err := ConfigHash(IRObject{"workers": IRInt(4), "alphabet": IRString("atp")})
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "key order must not matter")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")

	h3, err := ConfigHash(IRObject{"alphabet": IRString("tp"), "workers": IRInt(4)})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestStringID(t *testing.T) {
	id := StringID("2", "attta")
	assert.Equal(t, id, StringID("2", "attta"))
	assert.NotEqual(t, id, StringID("3", "attta"))
	assert.NotEqual(t, id, StringID("2", "atta"))
}

func TestDomainSeparation(t *testing.T) {
	// Same payload under different domains must not collide.
	assert.NotEqual(t, hashWithDomain(DomainBucket, []byte("x")), hashWithDomain(DomainString, []byte("x")))
	assert.Equal(t, BucketID("1,2,3"), BucketID("1,2,3"))
}

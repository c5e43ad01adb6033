package grammar

import (
	"slices"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lizard/internal/ir"
)

func render(seq []ir.GrammarString) []byte {
	var b strings.Builder
	for _, s := range seq {
		b.WriteString(string(s))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func TestBruteGolden(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		length   int
	}{
		{"brute_atp_2", "atp", 2},
		{"brute_tp_3", "tp", 3},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := Brute(ir.MustAlphabet(tt.alphabet), tt.length)
			require.NoError(t, err)
			g.Assert(t, tt.name, render(slices.Collect(seq)))
		})
	}
}

func TestBruteCount(t *testing.T) {
	a := ir.MustAlphabet("atpd")
	seq, err := Brute(a, 4)
	require.NoError(t, err)

	got := slices.Collect(seq)
	assert.Len(t, got, 256)
	assert.Equal(t, 256, BruteCount(a, 4))
	assert.Equal(t, ir.GrammarString("aaaa"), got[0])
	assert.Equal(t, ir.GrammarString("dddd"), got[255])
}

func TestBruteZeroLength(t *testing.T) {
	seq, err := Brute(ir.MustAlphabet("atp"), 0)
	require.NoError(t, err)
	assert.Equal(t, []ir.GrammarString{""}, slices.Collect(seq))
}

func TestBruteEarlyStop(t *testing.T) {
	seq, err := Brute(ir.MustAlphabet("atp"), 3)
	require.NoError(t, err)

	var got []ir.GrammarString
	for s := range seq {
		got = append(got, s)
		if len(got) == 4 {
			break
		}
	}
	assert.Equal(t, []ir.GrammarString{"aaa", "aat", "aap", "ata"}, got)
}

func TestBruteRejects(t *testing.T) {
	_, err := Brute(ir.Alphabet{}, 2)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = Brute(ir.MustAlphabet("atp"), -1)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

package generators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takakv/ristretto-bulletproofs/curve"
)

func TestDefaultPedersenGensCommitBinding(t *testing.T) {
	gens := DefaultPedersenGens()
	v := curve.ScalarFromUint64(42)
	blinding := curve.MustRandomScalar()

	c1 := gens.Commit(v, blinding)
	c2 := gens.Commit(v, blinding)
	assert.True(t, c1.IsEqual(c2))

	other := curve.MustRandomScalar()
	c3 := gens.Commit(v, other)
	assert.False(t, c1.IsEqual(c3))
}

func TestBulletproofGensGrowthPreservesPrefix(t *testing.T) {
	bg := NewBulletproofGens("test gens", 8, 2)
	g0, h0 := bg.ShareIter(0, 8)
	firstG := g0[0]
	firstH := h0[0]

	bg.ensureCapacity(16, 4)
	g1, h1 := bg.ShareIter(0, 8)

	assert.True(t, firstG.IsEqual(g1[0]))
	assert.True(t, firstH.IsEqual(h1[0]))
	assert.Equal(t, 16, bg.GensCapacity())
	assert.Equal(t, 4, bg.PartyCapacity())
}

func TestBulletproofGensRowsAreDistinct(t *testing.T) {
	bg := NewBulletproofGens("test gens", 4, 2)
	g0, _ := bg.ShareIter(0, 4)
	g1, _ := bg.ShareIter(1, 4)

	for i := range g0 {
		assert.False(t, g0[i].IsEqual(g1[i]))
	}
}

func TestBulletproofGensShareIterPanicsOutOfCapacity(t *testing.T) {
	bg := NewBulletproofGens("test gens", 4, 1)
	require.Panics(t, func() {
		bg.ShareIter(1, 4)
	})
}

func TestAllSharesMatchesShareIter(t *testing.T) {
	bg := NewBulletproofGens("test gens", 8, 2)
	g, h := bg.AllShares(2, 8)
	for j := 0; j < 2; j++ {
		gj, hj := bg.ShareIter(j, 8)
		for i := 0; i < 8; i++ {
			assert.True(t, g[j][i].IsEqual(gj[i]))
			assert.True(t, h[j][i].IsEqual(hj[i]))
		}
	}
}

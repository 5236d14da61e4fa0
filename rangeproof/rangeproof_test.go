package rangeproof

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takakv/ristretto-bulletproofs/curve"
	"github.com/takakv/ristretto-bulletproofs/generators"
	"github.com/takakv/ristretto-bulletproofs/transcript"
)

func TestSingleProveVerifyRoundTrip(t *testing.T) {
	pcGens := generators.DefaultPedersenGens()
	bpGens := generators.NewBulletproofGens("rangeproof test", 64, 1)

	v := uint64(1037578891)
	blinding := curve.MustRandomScalar()

	proverTr := transcript.New("doctest example")
	proof, commitment, err := ProveSingle(bpGens, pcGens, proverTr, v, blinding, 32)
	require.NoError(t, err)

	verifierTr := transcript.New("doctest example")
	err = proof.VerifySingle(bpGens, pcGens, verifierTr, commitment, 32)
	assert.NoError(t, err)
}

func TestSerializedSizeMatchesLayout(t *testing.T) {
	pcGens := generators.DefaultPedersenGens()
	bpGens := generators.NewBulletproofGens("rangeproof test", 64, 1)

	proverTr := transcript.New("doctest example")
	proof, _, err := ProveSingle(bpGens, pcGens, proverTr, 1037578891, curve.MustRandomScalar(), 32)
	require.NoError(t, err)

	encoded, err := proof.MarshalBinary()
	require.NoError(t, err)
	// 7 fixed elements (A,S,T1,T2,t_x,t_x_blinding,e_blinding) + log2(32)=5
	// rounds of (L,R) + final (a,b): (7 + 2*5 + 2) * 32 = 19*32 = 608.
	assert.Equal(t, 608, len(encoded))
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	pcGens := generators.DefaultPedersenGens()
	bpGens := generators.NewBulletproofGens("rangeproof test", 64, 2)

	values := []uint64{5, 12345}
	blindings := []curve.Scalar{curve.MustRandomScalar(), curve.MustRandomScalar()}

	proverTr := transcript.New("marshal test")
	proof, commitments, err := ProveMultiple(bpGens, pcGens, proverTr, values, blindings, 16)
	require.NoError(t, err)

	encoded, err := proof.MarshalBinary()
	require.NoError(t, err)

	decoded, err := Unmarshal(16, 2, encoded)
	require.NoError(t, err)

	verifierTr := transcript.New("marshal test")
	err = decoded.VerifyMultiple(bpGens, pcGens, verifierTr, commitments, 16)
	assert.NoError(t, err)
}

func TestAggregatedProveVerifyRoundTrip(t *testing.T) {
	pcGens := generators.DefaultPedersenGens()
	bpGens := generators.NewBulletproofGens("rangeproof aggregated test", 64, 8)

	for _, m := range []int{1, 2, 4, 8} {
		values := make([]uint64, m)
		blindings := make([]curve.Scalar, m)
		for i := range values {
			values[i] = uint64(10 + i*37)
			blindings[i] = curve.MustRandomScalar()
		}

		proverTr := transcript.New("AggregatedRangeProofTest")
		proof, commitments, err := ProveMultiple(bpGens, pcGens, proverTr, values, blindings, 32)
		require.NoError(t, err, "m=%d", m)

		verifierTr := transcript.New("AggregatedRangeProofTest")
		err = proof.VerifyMultiple(bpGens, pcGens, verifierTr, commitments, 32)
		assert.NoError(t, err, "m=%d", m)
	}
}

func TestVerifyRejectsTransciptMismatch(t *testing.T) {
	pcGens := generators.DefaultPedersenGens()
	bpGens := generators.NewBulletproofGens("rangeproof test", 64, 1)

	proverTr := transcript.New("label a")
	proof, commitment, err := ProveSingle(bpGens, pcGens, proverTr, 99, curve.MustRandomScalar(), 32)
	require.NoError(t, err)

	verifierTr := transcript.New("label b")
	err = proof.VerifySingle(bpGens, pcGens, verifierTr, commitment, 32)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongCommitment(t *testing.T) {
	pcGens := generators.DefaultPedersenGens()
	bpGens := generators.NewBulletproofGens("rangeproof test", 64, 1)

	proverTr := transcript.New("doctest example")
	proof, _, err := ProveSingle(bpGens, pcGens, proverTr, 99, curve.MustRandomScalar(), 32)
	require.NoError(t, err)

	wrongCommitment := pcGens.Commit(curve.ScalarFromUint64(100), curve.MustRandomScalar())
	verifierTr := transcript.New("doctest example")
	err = proof.VerifySingle(bpGens, pcGens, verifierTr, wrongCommitment, 32)
	assert.Error(t, err)
}

func TestDeltaMatchesNaiveSum(t *testing.T) {
	y := curve.MustRandomScalar()
	z := curve.MustRandomScalar()
	n := 32

	z2 := curve.NewScalar().Mul(z, z)
	z3 := curve.NewScalar().Mul(z2, z)

	powerG := curve.NewScalar()
	expY := curve.ScalarFromUint64(1)
	expTwo := curve.ScalarFromUint64(1)
	for i := 0; i < n; i++ {
		term := curve.NewScalar().Sub(z, z2)
		term = curve.NewScalar().Mul(term, expY)
		other := curve.NewScalar().Mul(z3, expTwo)
		term = curve.NewScalar().Sub(term, other)
		powerG = curve.NewScalar().Add(powerG, term)

		expY = curve.NewScalar().Mul(expY, y)
		expTwo = curve.NewScalar().Add(expTwo, expTwo)
	}

	assert.True(t, powerG.IsEqual(Delta(n, 1, y, z)))
}

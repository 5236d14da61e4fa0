package ipp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takakv/ristretto-bulletproofs/curve"
	"github.com/takakv/ristretto-bulletproofs/transcript"
)

func randomPoints(n int) []curve.Point {
	out := make([]curve.Point, n)
	for i := range out {
		out[i] = curve.NewPoint().Mul(curve.BasePoint(), curve.MustRandomScalar())
	}
	return out
}

func randomScalars(n int) []curve.Scalar {
	out := make([]curve.Scalar, n)
	for i := range out {
		out[i] = curve.MustRandomScalar()
	}
	return out
}

func buildCommitment(q curve.Point, g, h []curve.Point, a, b []curve.Scalar) curve.Point {
	p := curve.Identity()
	for i := range a {
		p = curve.NewPoint().Add(p, curve.NewPoint().Mul(g[i], a[i]))
		p = curve.NewPoint().Add(p, curve.NewPoint().Mul(h[i], b[i]))
	}
	c := curve.NewScalar()
	for i := range a {
		c = curve.NewScalar().Add(c, curve.NewScalar().Mul(a[i], b[i]))
	}
	p = curve.NewPoint().Add(p, curve.NewPoint().Mul(q, c))
	return p
}

func TestCreateVerifyRoundTrip(t *testing.T) {
	for _, k := range []int{1, 2, 4, 8, 16} {
		g := randomPoints(k)
		h := randomPoints(k)
		q := curve.NewPoint().Mul(curve.BasePoint(), curve.MustRandomScalar())
		a := randomScalars(k)
		b := randomScalars(k)
		p0 := buildCommitment(q, g, h, a, b)

		proverTr := transcript.New("ipp test")
		proof, err := Create(proverTr, q, g, h, a, b)
		require.NoError(t, err)

		verifierTr := transcript.New("ipp test")
		ok, err := proof.Verify(verifierTr, q, g, h, p0)
		require.NoError(t, err)
		assert.True(t, ok, "k=%d", k)
	}
}

func TestVerifyRejectsTamperedCommitment(t *testing.T) {
	k := 4
	g := randomPoints(k)
	h := randomPoints(k)
	q := curve.NewPoint().Mul(curve.BasePoint(), curve.MustRandomScalar())
	a := randomScalars(k)
	b := randomScalars(k)
	p0 := buildCommitment(q, g, h, a, b)

	proverTr := transcript.New("ipp test")
	proof, err := Create(proverTr, q, g, h, a, b)
	require.NoError(t, err)

	tampered := curve.NewPoint().Add(p0, curve.BasePoint())
	verifierTr := transcript.New("ipp test")
	ok, err := proof.Verify(verifierTr, q, g, h, tampered)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	k := 8
	g := randomPoints(k)
	h := randomPoints(k)
	q := curve.NewPoint().Mul(curve.BasePoint(), curve.MustRandomScalar())
	a := randomScalars(k)
	b := randomScalars(k)

	tr := transcript.New("ipp test")
	proof, err := Create(tr, q, g, h, a, b)
	require.NoError(t, err)

	encoded, err := proof.MarshalBinary()
	require.NoError(t, err)

	decoded, err := UnmarshalIPP(k, encoded)
	require.NoError(t, err)

	assert.True(t, proof.A.IsEqual(decoded.A))
	assert.True(t, proof.B.IsEqual(decoded.B))
	require.Equal(t, len(proof.L), len(decoded.L))
	for i := range proof.L {
		assert.True(t, proof.L[i].IsEqual(decoded.L[i]))
		assert.True(t, proof.R[i].IsEqual(decoded.R[i]))
	}
}

func TestUnmarshalRejectsWrongLength(t *testing.T) {
	_, err := UnmarshalIPP(8, make([]byte, 10))
	assert.Error(t, err)
}

func TestCreateRejectsNonPowerOfTwo(t *testing.T) {
	_, err := Create(transcript.New("t"), curve.BasePoint(), randomPoints(3), randomPoints(3), randomScalars(3), randomScalars(3))
	assert.ErrorIs(t, err, ErrInvalidInputLength)
}

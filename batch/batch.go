// Package batch implements deferred batch verification of range proofs:
// folding every proof's verification equation into one combined
// multiscalar multiplication, checked once at the end, rather than
// verifying each proof's equation to the identity point independently.
//
// This is grounded directly on the real BatchCollector this spec's
// original xelis-project/bulletproofs implementation uses internally
// (range_proof::BatchCollector, private to that crate but reachable
// through RangeProof::verify_batch): each proof contributes its own
// independently-sampled random batch factor so that a cheating prover
// cannot construct two invalid proofs whose errors cancel when summed —
// the factor is drawn locally per proof, never derived from either
// proof's own transcript, since it exists purely to separate proofs from
// each other at verification time. The teacher has no batch verifier at
// all (bulletproofs/bp.go's VerifyBP checks one proof's equation
// directly), so this package's structure follows the original crate
// rather than the teacher.
package batch

import (
	"crypto/rand"
	"io"

	"github.com/takakv/ristretto-bulletproofs/bperrors"
	"github.com/takakv/ristretto-bulletproofs/curve"
	"github.com/takakv/ristretto-bulletproofs/generators"
	"github.com/takakv/ristretto-bulletproofs/rangeproof"
	"github.com/takakv/ristretto-bulletproofs/transcript"
)

// ProofView names one proof to fold into a Collector: the proof itself,
// a transcript with the same initial state the prover used, the value
// commitments it claims to cover, and the bit width n.
type ProofView struct {
	Proof            *rangeproof.RangeProof
	Transcript       *transcript.Transcript
	ValueCommitments []curve.Point
	N                int
}

// Collector accumulates many proofs' verification equations into one
// deferred multiscalar multiplication. The zero value is not usable;
// construct one with NewCollector.
type Collector struct {
	bpGens *generators.BulletproofGens
	pcGens *generators.PedersenGens

	dynamicScalars []curve.Scalar
	dynamicPoints  []curve.Point

	pedersenBScalar         curve.Scalar
	pedersenBBlindingScalar curve.Scalar

	gScalars [][]curve.Scalar
	hScalars [][]curve.Scalar

	partyCapacity int
	gensCapacity  int
}

// NewCollector starts an empty batch against the given generator sets.
// Every proof later added via AddProof must have been built against the
// same bpGens, pcGens.
func NewCollector(bpGens *generators.BulletproofGens, pcGens *generators.PedersenGens) *Collector {
	return &Collector{
		bpGens:                  bpGens,
		pcGens:                  pcGens,
		pedersenBScalar:         curve.NewScalar(),
		pedersenBBlindingScalar: curve.NewScalar(),
	}
}

// AddProof replays view's transcript to recompute its challenges, draws a
// fresh local batch factor from rng, and folds the resulting verification
// equation into the collector's running state. It rejects an unsupported
// bit width, generators too small for (n, m) and a malformed inner-product
// proof length, but does not itself check the verification equation; call
// Verify once every proof has been added.
func (c *Collector) AddProof(view ProofView, rng io.Reader) error {
	m := len(view.ValueCommitments)
	n := view.N
	proof := view.Proof
	tr := view.Transcript.Clone()

	if n != 8 && n != 16 && n != 32 && n != 64 {
		return bperrors.ErrInvalidBitsize
	}
	if c.bpGens.GensCapacity() < n || c.bpGens.PartyCapacity() < m {
		return bperrors.ErrInvalidGeneratorsLength
	}

	tr.RangeProofDomainSep(n, m)
	for _, v := range view.ValueCommitments {
		tr.AppendPoint("V", v)
	}
	tr.AppendPoint("A", proof.A)
	tr.AppendPoint("S", proof.S)
	y := tr.ChallengeScalar("y")
	z := tr.ChallengeScalar("z")
	zz := curve.NewScalar().Mul(z, z)
	minusZ := curve.NewScalar().Neg(z)

	tr.AppendPoint("T_1", proof.T1)
	tr.AppendPoint("T_2", proof.T2)
	x := tr.ChallengeScalar("x")

	tr.AppendScalar("t_x", proof.TX)
	tr.AppendScalar("t_x_blinding", proof.TXBlinding)
	tr.AppendScalar("e_blinding", proof.EBlinding)
	w := tr.ChallengeScalar("w")

	tr.InnerProductDomainSep(n * m)
	xSq, xInvSq, s, err := proof.IPP.VerificationScalars(tr, n*m)
	if err != nil {
		return err
	}
	a, b := proof.IPP.A, proof.IPP.B
	tr.AppendScalar("ipp_a", a)
	tr.AppendScalar("ipp_b", b)
	cChallenge := tr.ChallengeScalar("c")

	batchFactor, err := curve.RandomScalar(rng)
	if err != nil {
		return err
	}
	scale := func(x curve.Scalar) curve.Scalar { return curve.NewScalar().Mul(x, batchFactor) }

	// dynamic_scalars / dynamic_points: 1, x, c*x, c*x^2, x_sq..., x_inv_sq...,
	// value_commitment_scalars..., each scaled by this proof's batch factor,
	// paired against A, S, T1, T2, L..., R..., V...
	c.dynamicScalars = append(c.dynamicScalars,
		scale(curve.ScalarFromUint64(1)),
		scale(x),
		scale(curve.NewScalar().Mul(cChallenge, x)),
		scale(curve.NewScalar().Mul(cChallenge, curve.NewScalar().Mul(x, x))),
	)
	c.dynamicPoints = append(c.dynamicPoints, proof.A, proof.S, proof.T1, proof.T2)

	for j, xs := range xSq {
		c.dynamicScalars = append(c.dynamicScalars, scale(xs))
		c.dynamicPoints = append(c.dynamicPoints, proof.IPP.L[j])
		c.dynamicScalars = append(c.dynamicScalars, scale(xInvSq[j]))
		c.dynamicPoints = append(c.dynamicPoints, proof.IPP.R[j])
	}

	zExp := curve.NewScalar().Mul(cChallenge, zz)
	for j := 0; j < m; j++ {
		c.dynamicScalars = append(c.dynamicScalars, scale(zExp))
		c.dynamicPoints = append(c.dynamicPoints, view.ValueCommitments[j])
		zExp = curve.NewScalar().Mul(zExp, z)
	}

	pedersenBlinding := curve.NewScalar().Neg(proof.EBlinding)
	pedersenBlinding = curve.NewScalar().Sub(pedersenBlinding, curve.NewScalar().Mul(cChallenge, proof.TXBlinding))
	c.pedersenBBlindingScalar = curve.NewScalar().Add(c.pedersenBBlindingScalar, scale(pedersenBlinding))

	ab := curve.NewScalar().Mul(a, b)
	txMinusAb := curve.NewScalar().Sub(proof.TX, ab)
	basepointScalar := curve.NewScalar().Mul(w, txMinusAb)
	deltaVal := rangeproof.Delta(n, m, y, z)
	basepointScalar = curve.NewScalar().Add(basepointScalar, curve.NewScalar().Mul(cChallenge, curve.NewScalar().Sub(deltaVal, proof.TX)))
	c.pedersenBScalar = curve.NewScalar().Add(c.pedersenBScalar, scale(basepointScalar))

	if m > c.partyCapacity {
		c.partyCapacity = m
	}
	if n > c.gensCapacity {
		c.gensCapacity = n
	}
	for len(c.gScalars) < c.partyCapacity {
		c.gScalars = append(c.gScalars, nil)
		c.hScalars = append(c.hScalars, nil)
	}
	for j := range c.gScalars {
		for len(c.gScalars[j]) < c.gensCapacity {
			c.gScalars[j] = append(c.gScalars[j], curve.NewScalar())
			c.hScalars[j] = append(c.hScalars[j], curve.NewScalar())
		}
	}

	powersOf2 := make([]curve.Scalar, n)
	cur := curve.ScalarFromUint64(1)
	two := curve.ScalarFromUint64(2)
	for i := 0; i < n; i++ {
		powersOf2[i] = cur
		cur = curve.NewScalar().Mul(cur, two)
	}
	yInv := curve.NewScalar().Inv(y)
	k := n * m
	zPow := curve.ScalarFromUint64(1)
	idx := 0
	// y's exponent runs continuously across the whole flat n*m range, the
	// same convention rangeproof.VerifyMultiple uses: party j's i-th slot
	// sits at flat index j*n+i, so yInvPow must not reset to 1 at each
	// party boundary.
	yInvPow := curve.ScalarFromUint64(1)
	for j := 0; j < m; j++ {
		for i := 0; i < n; i++ {
			gi := curve.NewScalar().Sub(minusZ, curve.NewScalar().Mul(a, s[idx]))
			c.gScalars[j][i] = curve.NewScalar().Add(c.gScalars[j][i], scale(gi))

			sInv := s[k-1-idx]
			zAnd2 := curve.NewScalar().Mul(powersOf2[i], zPow)
			term := curve.NewScalar().Sub(curve.NewScalar().Mul(zz, zAnd2), curve.NewScalar().Mul(b, sInv))
			hi := curve.NewScalar().Add(z, curve.NewScalar().Mul(yInvPow, term))
			c.hScalars[j][i] = curve.NewScalar().Add(c.hScalars[j][i], scale(hi))

			yInvPow = curve.NewScalar().Mul(yInvPow, yInv)
			idx++
		}
		zPow = curve.NewScalar().Mul(zPow, z)
	}

	return nil
}

// Verify performs the single deferred multiscalar multiplication over
// every proof AddProof folded in, returning ErrVerification if the
// combined equation does not evaluate to the identity point.
func (c *Collector) Verify() error {
	g, h := c.bpGens.AllShares(c.partyCapacity, c.gensCapacity)

	acc := curve.Identity()
	for i, pt := range c.dynamicPoints {
		acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(pt, c.dynamicScalars[i]))
	}
	for j := 0; j < c.partyCapacity; j++ {
		for i := 0; i < c.gensCapacity; i++ {
			acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(g[j][i], c.gScalars[j][i]))
			acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(h[j][i], c.hScalars[j][i]))
		}
	}
	acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(c.pcGens.BBlinding, c.pedersenBBlindingScalar))
	acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(c.pcGens.B, c.pedersenBScalar))

	if !acc.IsIdentity() {
		return bperrors.ErrVerification
	}
	return nil
}

// VerifyBatch is a convenience wrapper that folds every view in one call
// and verifies the result, using crypto/rand.Reader for each proof's
// batch factor.
func VerifyBatch(bpGens *generators.BulletproofGens, pcGens *generators.PedersenGens, views []ProofView) error {
	c := NewCollector(bpGens, pcGens)
	for _, v := range views {
		if err := c.AddProof(v, rand.Reader); err != nil {
			return err
		}
	}
	return c.Verify()
}

// Package rangeproof assembles the generators, transcript, mpc and ipp
// packages into the public proving and verification surface: a single
// RangeProof type proving that one or more committed values lie in
// [0, 2^n), built either directly (ProveSingle/ProveMultiple, running the
// MPC state machine locally against trusted local shares) or by relaying
// mpc.Party/mpc.Dealer messages between independent processes.
//
// The teacher's bulletproofs/bp.go and bulletproofs/multibp.go compute this
// same proof directly, inline, in one function each — no separated
// commit/challenge/respond phases and no aggregation-capable construction
// beyond a single multibp.go special case. This package instead drives the
// mpc package's three-round state machine for a single local value (m=1)
// or several (m>1), mirroring the real xelis-project/bulletproofs
// implementation's prove_multiple, which always runs the aggregation
// protocol locally and treats the single-value case as m=1.
package rangeproof

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/takakv/ristretto-bulletproofs/bperrors"
	"github.com/takakv/ristretto-bulletproofs/curve"
	"github.com/takakv/ristretto-bulletproofs/generators"
	"github.com/takakv/ristretto-bulletproofs/ipp"
	"github.com/takakv/ristretto-bulletproofs/mpc"
	"github.com/takakv/ristretto-bulletproofs/transcript"
)

// RangeProof is a non-interactive proof that m committed values each lie
// in [0, 2^n), for n and m implicitly known to (agreed upon by) the
// prover and verifier.
type RangeProof struct {
	A, S       curve.Point
	T1, T2     curve.Point
	TX         curve.Scalar
	TXBlinding curve.Scalar
	EBlinding  curve.Scalar
	IPP        *ipp.Proof
}

// ProveSingle proves that v lies in [0, 2^n) under commitment
// pcGens.Commit(v, vBlinding), appending to tr. It is a thin wrapper around
// ProveMultiple for the m=1 case.
func ProveSingle(bpGens *generators.BulletproofGens, pcGens *generators.PedersenGens, tr *transcript.Transcript, v uint64, vBlinding curve.Scalar, n int) (*RangeProof, curve.Point, error) {
	proof, commitments, err := ProveMultiple(bpGens, pcGens, tr, []uint64{v}, []curve.Scalar{vBlinding}, n)
	if err != nil {
		return nil, nil, err
	}
	return proof, commitments[0], nil
}

// ProveMultiple proves that every value in values lies in [0, 2^n),
// aggregating len(values) per-value statements into a single proof. It
// runs the mpc.Party/mpc.Dealer protocol locally, as a single process
// playing every role, using crypto/rand.Reader for every random draw.
func ProveMultiple(bpGens *generators.BulletproofGens, pcGens *generators.PedersenGens, tr *transcript.Transcript, values []uint64, blindings []curve.Scalar, n int) (*RangeProof, []curve.Point, error) {
	return proveMultipleWithRand(bpGens, pcGens, tr, values, blindings, n, rand.Reader)
}

func proveMultipleWithRand(bpGens *generators.BulletproofGens, pcGens *generators.PedersenGens, tr *transcript.Transcript, values []uint64, blindings []curve.Scalar, n int, rng io.Reader) (*RangeProof, []curve.Point, error) {
	if len(values) != len(blindings) {
		return nil, nil, bperrors.ErrWrongNumBlindingFactors
	}
	m := len(values)

	dealer, err := mpc.NewDealer(bpGens, pcGens, tr, n, m)
	if err != nil {
		return nil, nil, err
	}

	parties := make([]*mpc.PartyAwaitingPosition, m)
	for j := range values {
		p, err := mpc.NewParty(bpGens, pcGens, values[j], blindings[j], n)
		if err != nil {
			return nil, nil, err
		}
		parties[j] = p
	}

	// Each party's bit-commitment round is independent of every other
	// party's until the dealer folds them together, so it fans out across
	// a bounded worker pool and joins back in party-index order before the
	// transcript is touched.
	bitParties := make([]*mpc.PartyAwaitingBitChallenge, m)
	bitCommitments := make([]mpc.BitCommitment, m)
	valueCommitments := make([]curve.Point, m)
	{
		var g errgroup.Group
		g.SetLimit(4)
		for j, p := range parties {
			j, p := j, p
			g.Go(func() error {
				next, bc, err := p.AssignPosition(j, rng)
				if err != nil {
					return err
				}
				p.Zeroize()
				bitParties[j] = next
				bitCommitments[j] = bc
				valueCommitments[j] = bc.VJ
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	}

	polyDealer, bitChallenge, err := dealer.ReceiveBitCommitments(bitCommitments)
	if err != nil {
		return nil, nil, err
	}

	polyParties := make([]*mpc.PartyAwaitingPolyChallenge, m)
	polyCommitments := make([]mpc.PolyCommitment, m)
	{
		var g errgroup.Group
		g.SetLimit(4)
		for j, p := range bitParties {
			j, p := j, p
			g.Go(func() error {
				next, pc, err := p.ApplyChallenge(bitChallenge, rng)
				if err != nil {
					return err
				}
				p.Zeroize()
				polyParties[j] = next
				polyCommitments[j] = pc
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	}

	shareDealer, polyChallenge, err := polyDealer.ReceivePolyCommitments(polyCommitments)
	if err != nil {
		return nil, nil, err
	}

	shares := make([]mpc.ProofShare, m)
	for j, p := range polyParties {
		share, err := p.ApplyChallenge(polyChallenge)
		if err != nil {
			return nil, nil, err
		}
		p.Zeroize()
		shares[j] = share
	}

	aggregated, err := shareDealer.ReceiveTrustedShares(shares)
	if err != nil {
		return nil, nil, err
	}

	q := curve.NewPoint().Mul(pcGens.B, aggregated.W)
	g, h := bpGens.AllShares(m, n)
	flatG := flatten(g)
	flatH := flatten(h)
	// r(x) carries a y^idx factor at every flat index, so the inner-product
	// argument runs over H rescaled by y^-idx, the same factor the verifier
	// applies to H.
	yInv := curve.NewScalar().Inv(shareDealer.Y())
	yInvPow := curve.ScalarFromUint64(1)
	for i := range flatH {
		flatH[i] = curve.NewPoint().Mul(flatH[i], yInvPow)
		yInvPow = curve.NewScalar().Mul(yInvPow, yInv)
	}

	tr.InnerProductDomainSep(n * m)
	ippProof, err := ipp.Create(tr, q, flatG, flatH, aggregated.L, aggregated.R)
	if err != nil {
		return nil, nil, err
	}
	// Create copies a, b into its own scratch before folding, so the
	// aggregated l(x), r(x) vectors are safe to wipe once it returns.
	aggregated.Zeroize()

	proof := &RangeProof{
		A: shareDealer.A(), S: shareDealer.S(),
		T1: shareDealer.T1(), T2: shareDealer.T2(),
		TX: aggregated.TX, TXBlinding: aggregated.TXBlinding, EBlinding: aggregated.EBlinding,
		IPP: ippProof,
	}
	return proof, valueCommitments, nil
}

func flatten(rows [][]curve.Point) []curve.Point {
	if len(rows) == 0 {
		return nil
	}
	out := make([]curve.Point, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

// Delta computes
//
//	(z - z^2)*<1, y^(n*m)> - sum_{j=0}^{m-1} z^(j+3) * <1, 2^n>
//
// the constant term the aggregated range statement's t(x) polynomial must
// match at x's constant coefficient, for the verifier to check without
// learning any individual party's witness.
func Delta(n, m int, y, z curve.Scalar) curve.Scalar {
	sumY := sumOfPowers(y, n*m)
	sum2 := sumOfPowers(curve.ScalarFromUint64(2), n)
	sumZ := sumOfPowers(z, m)

	z2 := curve.NewScalar().Mul(z, z)
	z3 := curve.NewScalar().Mul(z2, z)

	zMinusZ2 := curve.NewScalar().Sub(z, z2)
	left := curve.NewScalar().Mul(zMinusZ2, sumY)

	right := curve.NewScalar().Mul(z3, sum2)
	right = curve.NewScalar().Mul(right, sumZ)

	return curve.NewScalar().Sub(left, right)
}

func sumOfPowers(x curve.Scalar, n int) curve.Scalar {
	sum := curve.NewScalar()
	cur := curve.ScalarFromUint64(1)
	for i := 0; i < n; i++ {
		sum = curve.NewScalar().Add(sum, cur)
		cur = curve.NewScalar().Mul(cur, x)
	}
	return sum
}

// VerifySingle verifies a single-value range proof against value
// commitment v under the same (bpGens, pcGens, n) the prover used, and a
// transcript with identical initial state to the prover's.
func (p *RangeProof) VerifySingle(bpGens *generators.BulletproofGens, pcGens *generators.PedersenGens, tr *transcript.Transcript, v curve.Point, n int) error {
	return p.VerifyMultiple(bpGens, pcGens, tr, []curve.Point{v}, n)
}

// VerifyMultiple verifies an aggregated range proof against its value
// commitments. It replays the same challenge derivation add_proof uses for
// batch verification, but with a batch factor of 1 and a direct (rather
// than deferred) multiscalar-multiplication check, so a single proof can
// be verified without going through the batch collector.
func (p *RangeProof) VerifyMultiple(bpGens *generators.BulletproofGens, pcGens *generators.PedersenGens, tr *transcript.Transcript, valueCommitments []curve.Point, n int) error {
	m := len(valueCommitments)
	if n != 8 && n != 16 && n != 32 && n != 64 {
		return bperrors.ErrInvalidBitsize
	}
	if bpGens.GensCapacity() < n || bpGens.PartyCapacity() < m {
		return bperrors.ErrInvalidGeneratorsLength
	}

	tr.RangeProofDomainSep(n, m)
	for _, v := range valueCommitments {
		tr.AppendPoint("V", v)
	}
	tr.AppendPoint("A", p.A)
	tr.AppendPoint("S", p.S)
	y := tr.ChallengeScalar("y")
	z := tr.ChallengeScalar("z")

	tr.AppendPoint("T_1", p.T1)
	tr.AppendPoint("T_2", p.T2)
	x := tr.ChallengeScalar("x")

	tr.AppendScalar("t_x", p.TX)
	tr.AppendScalar("t_x_blinding", p.TXBlinding)
	tr.AppendScalar("e_blinding", p.EBlinding)
	w := tr.ChallengeScalar("w")

	tr.InnerProductDomainSep(n * m)
	xSq, xInvSq, s, err := p.IPP.VerificationScalars(tr, n*m)
	if err != nil {
		return err
	}
	a, b := p.IPP.A, p.IPP.B
	tr.AppendScalar("ipp_a", a)
	tr.AppendScalar("ipp_b", b)
	c := tr.ChallengeScalar("c")

	g, h := bpGens.AllShares(m, n)
	flatG := flatten(g)
	flatH := flatten(h)

	zz := curve.NewScalar().Mul(z, z)
	minusZ := curve.NewScalar().Neg(z)

	acc := curve.NewPoint().Set(p.A)
	acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(p.S, x))
	acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(p.T1, curve.NewScalar().Mul(c, x)))
	acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(p.T2, curve.NewScalar().Mul(c, curve.NewScalar().Mul(x, x))))

	for j, l := range p.IPP.L {
		acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(l, xSq[j]))
	}
	for j, r := range p.IPP.R {
		acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(r, xInvSq[j]))
	}

	zExp := curve.NewScalar().Mul(c, zz)
	for j := 0; j < m; j++ {
		acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(valueCommitments[j], zExp))
		zExp = curve.NewScalar().Mul(zExp, z)
	}

	// concat_z_and_2[idx] = z^j * 2^i for idx = j*n+i, matching the
	// aggregated l(x)/r(x) vectors' party-major layout.
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
	// y's exponent runs continuously across the whole flat n*m range (not
	// reset at each party boundary): party j's i-th slot sits at flat
	// index j*n+i, exactly the idx this loop already tracks, so yInvPow
	// must keep accumulating y^-idx across the outer loop too.
	yInvPow := curve.ScalarFromUint64(1)
	for j := 0; j < m; j++ {
		for i := 0; i < n; i++ {
			gi := curve.NewScalar().Sub(minusZ, curve.NewScalar().Mul(a, s[idx]))
			acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(flatG[idx], gi))

			sInv := s[k-1-idx]
			zAnd2 := curve.NewScalar().Mul(powersOf2[i], zPow)
			term := curve.NewScalar().Sub(curve.NewScalar().Mul(zz, zAnd2), curve.NewScalar().Mul(b, sInv))
			hi := curve.NewScalar().Add(z, curve.NewScalar().Mul(yInvPow, term))
			acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(flatH[idx], hi))

			yInvPow = curve.NewScalar().Mul(yInvPow, yInv)
			idx++
		}
		zPow = curve.NewScalar().Mul(zPow, z)
	}

	pedersenBlindingScalar := curve.NewScalar().Neg(p.EBlinding)
	pedersenBlindingScalar = curve.NewScalar().Sub(pedersenBlindingScalar, curve.NewScalar().Mul(c, p.TXBlinding))
	acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(pcGens.BBlinding, pedersenBlindingScalar))

	ab := curve.NewScalar().Mul(a, b)
	txMinusAb := curve.NewScalar().Sub(p.TX, ab)
	basepointScalar := curve.NewScalar().Mul(w, txMinusAb)
	deltaVal := Delta(n, m, y, z)
	basepointScalar = curve.NewScalar().Add(basepointScalar, curve.NewScalar().Mul(c, curve.NewScalar().Sub(deltaVal, p.TX)))
	acc = curve.NewPoint().Add(acc, curve.NewPoint().Mul(pcGens.B, basepointScalar))

	if !acc.IsIdentity() {
		return bperrors.ErrVerification
	}
	return nil
}

// MarshalBinary encodes the proof as A‖S‖T1‖T2‖t_x‖t_x_blinding‖e_blinding
// followed by the inner-product proof's own encoding.
func (p *RangeProof) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 7*curve.PointSize+len(p.IPP.L)*2*curve.PointSize+2*curve.ScalarSize)
	out = append(out, curve.EncodePoint(p.A)...)
	out = append(out, curve.EncodePoint(p.S)...)
	out = append(out, curve.EncodePoint(p.T1)...)
	out = append(out, curve.EncodePoint(p.T2)...)
	out = append(out, curve.EncodeScalar(p.TX)...)
	out = append(out, curve.EncodeScalar(p.TXBlinding)...)
	out = append(out, curve.EncodeScalar(p.EBlinding)...)
	ippBytes, err := p.IPP.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, ippBytes...)
	return out, nil
}

// Unmarshal decodes a range proof over an n-bit, m-party aggregated
// statement (k = n*m total bits) from its canonical byte encoding.
func Unmarshal(n, m int, data []byte) (*RangeProof, error) {
	const head = 7 * curve.PointSize
	if len(data) < head {
		return nil, fmt.Errorf("%w: proof too short", bperrors.ErrFormat)
	}
	off := 0
	readPoint := func() (curve.Point, error) {
		pt, err := curve.DecodePoint(data[off : off+curve.PointSize])
		off += curve.PointSize
		return pt, err
	}
	readScalar := func() (curve.Scalar, error) {
		s, err := curve.DecodeScalar(data[off : off+curve.ScalarSize])
		off += curve.ScalarSize
		return s, err
	}

	a, err := readPoint()
	if err != nil {
		return nil, fmt.Errorf("%w: A: %v", bperrors.ErrFormat, err)
	}
	s, err := readPoint()
	if err != nil {
		return nil, fmt.Errorf("%w: S: %v", bperrors.ErrFormat, err)
	}
	t1, err := readPoint()
	if err != nil {
		return nil, fmt.Errorf("%w: T1: %v", bperrors.ErrFormat, err)
	}
	t2, err := readPoint()
	if err != nil {
		return nil, fmt.Errorf("%w: T2: %v", bperrors.ErrFormat, err)
	}
	tx, err := readScalar()
	if err != nil {
		return nil, fmt.Errorf("%w: t_x: %v", bperrors.ErrFormat, err)
	}
	txBlinding, err := readScalar()
	if err != nil {
		return nil, fmt.Errorf("%w: t_x_blinding: %v", bperrors.ErrFormat, err)
	}
	eBlinding, err := readScalar()
	if err != nil {
		return nil, fmt.Errorf("%w: e_blinding: %v", bperrors.ErrFormat, err)
	}

	ippProof, err := ipp.UnmarshalIPP(n*m, data[off:])
	if err != nil {
		return nil, err
	}

	return &RangeProof{
		A: a, S: s, T1: t1, T2: t2,
		TX: tx, TXBlinding: txBlinding, EBlinding: eBlinding,
		IPP: ippProof,
	}, nil
}

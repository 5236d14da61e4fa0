package mpc

import (
	"github.com/takakv/ristretto-bulletproofs/bperrors"
	"github.com/takakv/ristretto-bulletproofs/curve"
	"github.com/takakv/ristretto-bulletproofs/generators"
	"github.com/takakv/ristretto-bulletproofs/transcript"
)

// DealerAwaitingBitCommitments is the Dealer's initial state: it knows the
// statement shape (n, m) and the shared transcript, and is waiting to
// collect every party's Round 1 bit commitment.
type DealerAwaitingBitCommitments struct {
	bpGens *generators.BulletproofGens
	pcGens *generators.PedersenGens
	tr     *transcript.Transcript
	n, m   int
}

// NewDealer validates (n, m) against the available generators and starts a
// fresh Dealer, appending the rangeproof domain separator to tr. Fails fast
// with the same taxonomy ProveSingle/ProveMultiple surface: InvalidBitsize,
// InvalidAggregationSize, InvalidGeneratorsLength.
func NewDealer(bpGens *generators.BulletproofGens, pcGens *generators.PedersenGens, tr *transcript.Transcript, n, m int) (*DealerAwaitingBitCommitments, error) {
	if n != 8 && n != 16 && n != 32 && n != 64 {
		return nil, bperrors.ErrInvalidBitsize
	}
	if m <= 0 || m&(m-1) != 0 {
		return nil, bperrors.ErrInvalidAggregationSize
	}
	if bpGens.GensCapacity() < n || bpGens.PartyCapacity() < m {
		return nil, bperrors.ErrInvalidGeneratorsLength
	}
	tr.RangeProofDomainSep(n, m)
	return &DealerAwaitingBitCommitments{bpGens: bpGens, pcGens: pcGens, tr: tr, n: n, m: m}, nil
}

// ReceiveBitCommitments sums the m parties' A_j, S_j and V_j, appends V_j
// in party order, validates and appends A and S, and derives the (y, z)
// bit challenge. Each party's own V_j is retained (not just the sum) so a
// later untrusted ReceiveShares can audit party j's share against its own
// V_j rather than only the aggregate.
func (d *DealerAwaitingBitCommitments) ReceiveBitCommitments(commitments []BitCommitment) (*DealerAwaitingPolyCommitments, BitChallenge, error) {
	if len(commitments) != d.m {
		return nil, BitChallenge{}, bperrors.ErrWrongNumBlindingFactors
	}

	// A zero commitment (0 value, 0 blinding) is a legitimate statement —
	// "this party contributes nothing" — so it is appended like any other
	// rather than rejected.
	for _, c := range commitments {
		d.tr.AppendPoint("V", c.VJ)
	}

	aPoint := curve.Identity()
	sPoint := curve.Identity()
	valueCommitments := make([]curve.Point, d.m)
	for j, c := range commitments {
		aPoint = curve.NewPoint().Add(aPoint, c.AJ)
		sPoint = curve.NewPoint().Add(sPoint, c.SJ)
		valueCommitments[j] = c.VJ
	}
	if aPoint.IsIdentity() || sPoint.IsIdentity() {
		return nil, BitChallenge{}, bperrors.ErrVerification
	}
	d.tr.AppendPoint("A", aPoint)
	d.tr.AppendPoint("S", sPoint)

	y := d.tr.ChallengeScalar("y")
	z := d.tr.ChallengeScalar("z")

	next := &DealerAwaitingPolyCommitments{
		bpGens: d.bpGens, pcGens: d.pcGens, tr: d.tr, n: d.n, m: d.m,
		y: y, z: z, aPoint: aPoint, sPoint: sPoint,
		valueCommitments: valueCommitments,
	}
	return next, BitChallenge{Y: y, Z: z}, nil
}

// DealerAwaitingPolyCommitments has derived (y, z) and is waiting for every
// party's Round 2 polynomial commitment.
type DealerAwaitingPolyCommitments struct {
	bpGens         *generators.BulletproofGens
	pcGens         *generators.PedersenGens
	tr             *transcript.Transcript
	n, m           int
	y, z           curve.Scalar
	aPoint, sPoint curve.Point

	valueCommitments []curve.Point
}

// ReceivePolyCommitments sums T_1, T_2, appends both, and derives the x
// challenge. Each party's own T_1_j, T_2_j is retained alongside its V_j
// for the same reason.
func (d *DealerAwaitingPolyCommitments) ReceivePolyCommitments(commitments []PolyCommitment) (*DealerAwaitingProofShares, PolyChallenge, error) {
	if len(commitments) != d.m {
		return nil, PolyChallenge{}, bperrors.ErrWrongNumBlindingFactors
	}

	t1Point := curve.Identity()
	t2Point := curve.Identity()
	for _, c := range commitments {
		t1Point = curve.NewPoint().Add(t1Point, c.T1J)
		t2Point = curve.NewPoint().Add(t2Point, c.T2J)
	}
	d.tr.AppendPoint("T_1", t1Point)
	d.tr.AppendPoint("T_2", t2Point)

	x := d.tr.ChallengeScalar("x")

	next := &DealerAwaitingProofShares{
		bpGens: d.bpGens, pcGens: d.pcGens, tr: d.tr, n: d.n, m: d.m,
		y: d.y, z: d.z, aPoint: d.aPoint, sPoint: d.sPoint,
		t1Point: t1Point, t2Point: t2Point, x: x,
		valueCommitments: d.valueCommitments, polyCommitments: commitments,
	}
	return next, PolyChallenge{X: x}, nil
}

// DealerAwaitingProofShares has derived x and is waiting for every party's
// Round 3 proof share.
type DealerAwaitingProofShares struct {
	bpGens           *generators.BulletproofGens
	pcGens           *generators.PedersenGens
	tr               *transcript.Transcript
	n, m             int
	y, z             curve.Scalar
	aPoint, sPoint   curve.Point
	t1Point, t2Point curve.Point
	x                curve.Scalar

	valueCommitments []curve.Point
	polyCommitments  []PolyCommitment
}

// AggregatedShares is the Dealer's Round 3 output: the summed scalars and
// concatenated l(x), r(x) vectors the RangeProof façade needs to build the
// final inner-product proof and the w challenge already derived from them.
type AggregatedShares struct {
	TX         curve.Scalar
	TXBlinding curve.Scalar
	EBlinding  curve.Scalar
	L, R       []curve.Scalar
	W          curve.Scalar
}

// Zeroize wipes the aggregated l(x), r(x) vectors, the one piece of this
// struct that is genuinely secret witness data (each entry reveals a
// linear combination of a party's bits and blinding randomness). TX,
// TXBlinding and EBlinding are deliberately left alone: they are the
// proof's own revealed t_x, t_x_blinding and e_blinding fields, not
// secrets, and the RangeProof façade copies them by reference — zeroizing
// them here would corrupt the proof it just built. Call this only after
// L, R have been folded into an inner-product proof and are no longer
// needed.
func (a *AggregatedShares) Zeroize() {
	curve.ZeroizeAll(a.L)
	curve.ZeroizeAll(a.R)
}

// ReceiveShares validates each party's share before aggregating:
//
//  1. its l, r vectors have the expected length;
//  2. its claimed t_x_j actually equals <l_j, r_j> (internal
//     self-consistency between the vectors it is about to hand over and
//     the scalar it claims they fold to); and
//  3. auditShare's commitment-opening check, tying t_x_j and
//     t_x_blinding_j back to that party's own V_j, T_1_j, T_2_j.
//
// The first two checks alone do not catch a dishonest party: a party
// always computes t_x_j as exactly <l_j, r_j> by construction, so any
// self-consistent party, honest or not, passes them automatically — they
// only catch a corrupted or truncated message, not a lie. The third check
// is the one that actually binds the share to a statement about the
// party's committed value: a party whose v_j does not fit in n bits (for
// example, one that presented a full 64-bit value against n=32 bpGens)
// committed that value in full in V_j, but its bit decomposition only
// ever encodes v_j mod 2^n, so t_x_j ends up computed for the wrong value
// and auditShare's equation fails to hold.
//
// Any party whose share fails any of the three checks is reported via
// MalformedProofSharesError so the caller can identify and exclude
// exactly the misbehaving parties, rather than discarding the whole
// aggregation round.
func (d *DealerAwaitingProofShares) ReceiveShares(shares []ProofShare) (*AggregatedShares, error) {
	if len(shares) != d.m {
		return nil, bperrors.ErrWrongNumBlindingFactors
	}

	var bad []int
	for j, share := range shares {
		if !share.checkSize(d.n) {
			bad = append(bad, j)
			continue
		}
		if !innerProduct(share.L, share.R).IsEqual(share.TxJ) {
			bad = append(bad, j)
			continue
		}
		if !d.auditShare(j, share) {
			bad = append(bad, j)
		}
	}
	if len(bad) > 0 {
		return nil, &bperrors.MalformedProofSharesError{BadShares: bad}
	}

	return d.ReceiveTrustedShares(shares)
}

// auditShare checks share j's claimed (t_x_j, t_x_blinding_j) against the
// V_j, T_1_j, T_2_j that party j itself committed to in Rounds 1 and 2:
//
//	Com(t_x_j, t_x_blinding_j) =?= z^(j+2)*V_j + x*T_1_j + x^2*T_2_j + delta_j(n,y,z,j)*B
//
// which follows from expanding t_x_j = t0_j + t1_j*x + t2_j*x^2 and
// t_x_blinding_j = z^(j+2)*v_blinding_j + x*t1_blinding_j +
// x^2*t2_blinding_j against T_1_j = Com(t1_j, t1_blinding_j), T_2_j =
// Com(t2_j, t2_blinding_j), and the bit-decomposition identity t0_j =
// z^(j+2)*v_j + delta_j(n,y,z,j) (the per-party analogue of the single
// statement's t0 = z^2*v + delta(n,y,z)). V_j = Com(v_j, v_blinding_j) is
// the one place v_j itself enters this equation, so it is the only thing
// that can catch a v_j that does not actually match the bits the party
// fed into l_j, r_j.
func (d *DealerAwaitingProofShares) auditShare(j int, share ProofShare) bool {
	zExp := curve.ScalarFromUint64(1)
	for i := 0; i < j+2; i++ {
		zExp = curve.NewScalar().Mul(zExp, d.z)
	}

	lhs := d.pcGens.Commit(share.TxJ, share.TxBlindingJ)

	rhs := curve.NewPoint().Mul(d.valueCommitments[j], zExp)
	rhs = curve.NewPoint().Add(rhs, curve.NewPoint().Mul(d.polyCommitments[j].T1J, d.x))
	x2 := curve.NewScalar().Mul(d.x, d.x)
	rhs = curve.NewPoint().Add(rhs, curve.NewPoint().Mul(d.polyCommitments[j].T2J, x2))
	rhs = curve.NewPoint().Add(rhs, curve.NewPoint().Mul(d.pcGens.B, partyDelta(d.n, j, d.y, d.z)))

	return lhs.IsEqual(rhs)
}

// partyDelta computes (z - z^2)*<1, y^n> - z^(j+3)*<1, 2^n>, the constant
// term party j's own t(x) polynomial carries once z^(j+2)*v_j is
// subtracted out. Unlike Delta's continuous sum over the whole n*m range,
// party j's y powers start at y^(j*n), matching the flat index its l(x),
// r(x) slice occupies in the aggregated vectors (see party.go's
// powersOfFrom); summing partyDelta over j = 0..m-1 recovers exactly
// rangeproof.Delta(n, m, y, z).
func partyDelta(n, j int, y, z curve.Scalar) curve.Scalar {
	sumY := sumOfPowersFrom(y, j*n, n)
	sum2 := sumOfPowersFrom(curve.ScalarFromUint64(2), 0, n)

	z2 := curve.NewScalar().Mul(z, z)
	zMinusZ2 := curve.NewScalar().Sub(z, z2)
	left := curve.NewScalar().Mul(zMinusZ2, sumY)

	zExp := curve.ScalarFromUint64(1)
	for i := 0; i < j+3; i++ {
		zExp = curve.NewScalar().Mul(zExp, z)
	}
	right := curve.NewScalar().Mul(zExp, sum2)

	return curve.NewScalar().Sub(left, right)
}

func sumOfPowersFrom(x curve.Scalar, start, n int) curve.Scalar {
	base := curve.ScalarFromUint64(1)
	for i := 0; i < start; i++ {
		base = curve.NewScalar().Mul(base, x)
	}
	sum := curve.NewScalar()
	cur := base
	for i := 0; i < n; i++ {
		sum = curve.NewScalar().Add(sum, cur)
		cur = curve.NewScalar().Mul(cur, x)
	}
	return sum
}

// ReceiveTrustedShares sums the shares without per-party validation — the
// fast path used when the caller already trusts every contributor (e.g.
// RangeProof.ProveMultiple driving the protocol locally for a single
// process's own values).
func (d *DealerAwaitingProofShares) ReceiveTrustedShares(shares []ProofShare) (*AggregatedShares, error) {
	if len(shares) != d.m {
		return nil, bperrors.ErrWrongNumBlindingFactors
	}

	tx := curve.NewScalar()
	txBlinding := curve.NewScalar()
	eBlinding := curve.NewScalar()
	l := make([]curve.Scalar, 0, d.n*d.m)
	r := make([]curve.Scalar, 0, d.n*d.m)
	for _, share := range shares {
		tx = curve.NewScalar().Add(tx, share.TxJ)
		txBlinding = curve.NewScalar().Add(txBlinding, share.TxBlindingJ)
		eBlinding = curve.NewScalar().Add(eBlinding, share.EBlindingJ)
		l = append(l, share.L...)
		r = append(r, share.R...)
	}

	d.tr.AppendScalar("t_x", tx)
	d.tr.AppendScalar("t_x_blinding", txBlinding)
	d.tr.AppendScalar("e_blinding", eBlinding)
	w := d.tr.ChallengeScalar("w")

	return &AggregatedShares{TX: tx, TXBlinding: txBlinding, EBlinding: eBlinding, L: l, R: r, W: w}, nil
}

// Y and Z expose the bit challenge this Dealer derived. The RangeProof
// façade uses Y to rescale the H generators by y^-idx before building the
// final inner-product proof.
func (d *DealerAwaitingProofShares) Y() curve.Scalar { return d.y }
func (d *DealerAwaitingProofShares) Z() curve.Scalar { return d.z }

// A and S expose the summed Round 1 commitments for the façade to embed in
// the final RangeProof.
func (d *DealerAwaitingProofShares) A() curve.Point { return d.aPoint }
func (d *DealerAwaitingProofShares) S() curve.Point { return d.sPoint }

// T1 and T2 expose the summed Round 2 commitments for the façade to embed
// in the final RangeProof.
func (d *DealerAwaitingProofShares) T1() curve.Point { return d.t1Point }
func (d *DealerAwaitingProofShares) T2() curve.Point { return d.t2Point }

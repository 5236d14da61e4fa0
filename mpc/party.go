// Package mpc implements the multi-party computation protocol that lets
// several independent provers jointly build one aggregated range proof
// without revealing their secret values to each other or to the Dealer:
// the Party and Dealer linear state machines, their three rounds of wire
// messages, and the Dealer's untrusted-share validation.
//
// The teacher's bulletproofs/multibp.go computes the same l(X)/r(X)
// polynomial construction and per-party z^{j+2} exponent offsets
// (zPowersTimesTwoVec), but only for a single process building the entire
// aggregated proof from all the secrets at once — it has no notion of a
// party that holds just its own witness. This package generalises that
// math into the message-passing split spec.md's component table
// describes: a Party only ever sees its own v, v_blinding, and the slice
// of generators the Dealer's BulletproofGens.ShareIter hands it.
package mpc

import (
	"io"

	"github.com/takakv/ristretto-bulletproofs/bperrors"
	"github.com/takakv/ristretto-bulletproofs/curve"
	"github.com/takakv/ristretto-bulletproofs/generators"
)

// PartyAwaitingPosition is a party's initial state: it knows its secret
// value and blinding, but has not yet learned its index within the
// aggregation or committed to anything.
type PartyAwaitingPosition struct {
	bpGens *generators.BulletproofGens
	pcGens *generators.PedersenGens
	n      int
	v      uint64
	vBlind curve.Scalar
}

// NewParty constructs a party for value v under blinding vBlind, proving it
// lies in [0, 2^n). n must be one of {8, 16, 32, 64} and gens must already
// support it; the Dealer is responsible for checking this before parties
// are even constructed (mirroring the original's Dealer::new fail-fast).
//
// NewParty does not reject v >= 2^n. Whether v fits in n bits is not
// something a party's own constructor can be trusted to enforce — a
// dishonest party is exactly a party that calls NewParty with an
// out-of-range v and proceeds anyway. The Dealer catches this at
// ReceiveShares, by auditing each share against the V_j the party
// committed to in Round 1; see dealer.go's auditShare.
func NewParty(bpGens *generators.BulletproofGens, pcGens *generators.PedersenGens, v uint64, vBlind curve.Scalar, n int) (*PartyAwaitingPosition, error) {
	if n != 8 && n != 16 && n != 32 && n != 64 {
		return nil, bperrors.ErrInvalidBitsize
	}
	return &PartyAwaitingPosition{bpGens: bpGens, pcGens: pcGens, n: n, v: v, vBlind: vBlind}, nil
}

// Zeroize wipes the party's secret blinding scalar. Call it once a caller
// has moved on to the state AssignPosition returns; the constructed
// PartyAwaitingPosition must not be used again afterwards.
func (p *PartyAwaitingPosition) Zeroize() {
	p.v = 0
	curve.Zeroize(p.vBlind)
}

// PartyAwaitingBitChallenge holds everything the party needs to answer the
// Dealer's (y, z) challenge: its bit decomposition, its blinding vectors,
// and the random scalars it has already committed to in A_j, S_j.
type PartyAwaitingBitChallenge struct {
	n         int
	v         uint64
	vBlind    curve.Scalar
	j         int
	g, h      []curve.Point
	pcGens    *generators.PedersenGens
	aBlinding curve.Scalar
	sBlinding curve.Scalar
	sL, sR    []curve.Scalar
	aL, aR    []curve.Scalar
}

// AssignPosition learns the party's index j within the aggregation, draws
// its blinding randomness from rng, and emits its Round 1 bit commitment.
func (p *PartyAwaitingPosition) AssignPosition(j int, rng io.Reader) (*PartyAwaitingBitChallenge, BitCommitment, error) {
	g, h := p.bpGens.ShareIter(j, p.n)

	aL := make([]curve.Scalar, p.n)
	aR := make([]curve.Scalar, p.n)
	for i := 0; i < p.n; i++ {
		bit := (p.v >> uint(i)) & 1
		aL[i] = curve.ScalarFromUint64(bit)
		aR[i] = curve.NewScalar().Sub(aL[i], curve.ScalarFromUint64(1))
	}

	aBlinding, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, BitCommitment{}, err
	}
	A := curve.NewPoint().Mul(p.pcGens.BBlinding, aBlinding)
	for i := 0; i < p.n; i++ {
		A = curve.NewPoint().Add(A, curve.NewPoint().Mul(g[i], aL[i]))
		A = curve.NewPoint().Add(A, curve.NewPoint().Mul(h[i], aR[i]))
	}

	sL := make([]curve.Scalar, p.n)
	sR := make([]curve.Scalar, p.n)
	for i := 0; i < p.n; i++ {
		sL[i], err = curve.RandomScalar(rng)
		if err != nil {
			return nil, BitCommitment{}, err
		}
		sR[i], err = curve.RandomScalar(rng)
		if err != nil {
			return nil, BitCommitment{}, err
		}
	}
	sBlinding, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, BitCommitment{}, err
	}
	S := curve.NewPoint().Mul(p.pcGens.BBlinding, sBlinding)
	for i := 0; i < p.n; i++ {
		S = curve.NewPoint().Add(S, curve.NewPoint().Mul(g[i], sL[i]))
		S = curve.NewPoint().Add(S, curve.NewPoint().Mul(h[i], sR[i]))
	}

	V := p.pcGens.Commit(curve.ScalarFromUint64(p.v), p.vBlind)

	next := &PartyAwaitingBitChallenge{
		// vBlind is copied rather than aliased so Zeroize-ing this
		// PartyAwaitingPosition the instant AssignPosition returns cannot
		// reach into the next state's still-needed copy.
		n: p.n, v: p.v, vBlind: curve.CopyScalar(p.vBlind), j: j, g: g, h: h, pcGens: p.pcGens,
		aBlinding: aBlinding, sBlinding: sBlinding, sL: sL, sR: sR, aL: aL, aR: aR,
	}
	return next, BitCommitment{VJ: V, AJ: A, SJ: S}, nil
}

// Zeroize wipes the party's secret bit decomposition and blinding
// randomness. Call it once a caller has moved on to the state
// ApplyChallenge returns; this PartyAwaitingBitChallenge must not be used
// again afterwards.
func (p *PartyAwaitingBitChallenge) Zeroize() {
	p.v = 0
	curve.Zeroize(p.vBlind)
	curve.Zeroize(p.aBlinding)
	curve.Zeroize(p.sBlinding)
	curve.ZeroizeAll(p.sL)
	curve.ZeroizeAll(p.sR)
	curve.ZeroizeAll(p.aL)
	curve.ZeroizeAll(p.aR)
}

// PartyAwaitingPolyChallenge holds the degree-1 polynomial coefficients
// l(X), r(X) and the poly-commitment blindings, waiting for the Dealer's x
// challenge.
type PartyAwaitingPolyChallenge struct {
	n          int
	j          int
	vBlind     curve.Scalar
	z          curve.Scalar
	aBlinding  curve.Scalar
	sBlinding  curve.Scalar
	t1Blinding curve.Scalar
	t2Blinding curve.Scalar
	l0, l1     []curve.Scalar
	r0, r1     []curve.Scalar
}

// ApplyChallenge consumes the Dealer's (y, z) bit challenge and emits the
// party's Round 2 polynomial commitment.
//
// l(X) = l0 + l1*X, r(X) = r0 + r1*X with
//   l0 = a_L - z*1, l1 = s_L
//   r0 = y^n ∘ (a_R + z*1) + z^{j+2}*2^n, r1 = y^n ∘ s_R
// t(X) = <l(X), r(X)> = t0 + t1*X + t2*X^2, t1 = <l1,r0> + <l0,r1>, t2 = <l1,r1>.
// The z^{j+2} offset (rather than a bare z^2) is what keeps the m parties'
// range statements from cancelling against each other when the Dealer sums
// them, exactly the zPowersTimesTwoVec construction the teacher's
// multibp.go computes for a single combined process.
//
// y's exponent, unlike z's, is not reset per party: party j's i-th slot
// sits at flat index j*n+i in the aggregated l(x)/r(x) vectors, and the
// verifier rescales H by y^-idx at that same flat index, so r0 must use
// y^(j*n+i) rather than restart at y^0 for every party.
func (p *PartyAwaitingBitChallenge) ApplyChallenge(bc BitChallenge, rng io.Reader) (*PartyAwaitingPolyChallenge, PolyCommitment, error) {
	z := bc.Z
	yPow := powersOfFrom(bc.Y, p.j*p.n, p.n)
	two := curve.ScalarFromUint64(2)
	twoPow := powersOf(two, p.n)

	// z^{j+2}
	zExp := curve.ScalarFromUint64(1)
	for i := 0; i < p.j+2; i++ {
		zExp = curve.NewScalar().Mul(zExp, z)
	}

	l0 := make([]curve.Scalar, p.n)
	r0 := make([]curve.Scalar, p.n)
	for i := 0; i < p.n; i++ {
		l0[i] = curve.NewScalar().Sub(p.aL[i], z)
		aRz := curve.NewScalar().Add(p.aR[i], z)
		r0[i] = curve.NewScalar().Mul(yPow[i], aRz)
		r0[i] = curve.NewScalar().Add(r0[i], curve.NewScalar().Mul(zExp, twoPow[i]))
	}
	// Copied rather than aliased, same reason as vBlind below: this state
	// must survive Zeroize-ing the PartyAwaitingBitChallenge it came from.
	l1 := make([]curve.Scalar, p.n)
	for i := range p.sL {
		l1[i] = curve.CopyScalar(p.sL[i])
	}
	r1 := make([]curve.Scalar, p.n)
	for i := 0; i < p.n; i++ {
		r1[i] = curve.NewScalar().Mul(yPow[i], p.sR[i])
	}

	t1 := curve.NewScalar().Add(innerProduct(l1, r0), innerProduct(l0, r1))
	t2 := innerProduct(l1, r1)

	t1Blinding, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, PolyCommitment{}, err
	}
	t2Blinding, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, PolyCommitment{}, err
	}
	T1 := p.pcGens.Commit(t1, t1Blinding)
	T2 := p.pcGens.Commit(t2, t2Blinding)

	next := &PartyAwaitingPolyChallenge{
		// vBlind, aBlinding and sBlinding are copied rather than aliased so
		// that Zeroize-ing this PartyAwaitingBitChallenge the instant
		// ApplyChallenge returns cannot reach into the next state's copies,
		// which are still needed to compute t_x_blinding and e_blinding.
		n: p.n, j: p.j, vBlind: curve.CopyScalar(p.vBlind), z: z,
		aBlinding: curve.CopyScalar(p.aBlinding), sBlinding: curve.CopyScalar(p.sBlinding),
		t1Blinding: t1Blinding, t2Blinding: t2Blinding,
		l0: l0, l1: l1, r0: r0, r1: r1,
	}
	return next, PolyCommitment{T1J: T1, T2J: T2}, nil
}

// ApplyChallenge consumes the Dealer's x challenge and emits the party's
// final proof share. It refuses with ErrMaliciousDealer if x is zero: a
// zero evaluation point collapses l(x), r(x) to l0, r0 and would let the
// Dealer read the witness straight out of the share.
func (p *PartyAwaitingPolyChallenge) ApplyChallenge(pc PolyChallenge) (ProofShare, error) {
	x := pc.X
	if x.IsZero() {
		return ProofShare{}, bperrors.ErrMaliciousDealer
	}

	l := make([]curve.Scalar, p.n)
	r := make([]curve.Scalar, p.n)
	for i := 0; i < p.n; i++ {
		l[i] = curve.NewScalar().Add(p.l0[i], curve.NewScalar().Mul(p.l1[i], x))
		r[i] = curve.NewScalar().Add(p.r0[i], curve.NewScalar().Mul(p.r1[i], x))
	}
	tx := innerProduct(l, r)

	x2 := curve.NewScalar().Mul(x, x)
	// z^{j+2}, recomputed the same way ApplyChallenge(BitChallenge) derived it.
	zExp := curve.ScalarFromUint64(1)
	for i := 0; i < p.j+2; i++ {
		zExp = curve.NewScalar().Mul(zExp, p.z)
	}
	txBlinding := curve.NewScalar().Mul(p.t2Blinding, x2)
	txBlinding = curve.NewScalar().Add(txBlinding, curve.NewScalar().Mul(p.t1Blinding, x))
	txBlinding = curve.NewScalar().Add(txBlinding, curve.NewScalar().Mul(zExp, p.vBlind))

	eBlinding := curve.NewScalar().Add(p.aBlinding, curve.NewScalar().Mul(p.sBlinding, x))

	return ProofShare{TxJ: tx, TxBlindingJ: txBlinding, EBlindingJ: eBlinding, L: l, R: r}, nil
}

// Zeroize wipes the party's secret polynomial coefficients and blinding
// randomness. Call it once ApplyChallenge has produced the final
// ProofShare; this PartyAwaitingPolyChallenge must not be used again
// afterwards.
func (p *PartyAwaitingPolyChallenge) Zeroize() {
	curve.Zeroize(p.vBlind)
	curve.Zeroize(p.aBlinding)
	curve.Zeroize(p.sBlinding)
	curve.Zeroize(p.t1Blinding)
	curve.Zeroize(p.t2Blinding)
	curve.ZeroizeAll(p.l0)
	curve.ZeroizeAll(p.l1)
	curve.ZeroizeAll(p.r0)
	curve.ZeroizeAll(p.r1)
}

func powersOf(x curve.Scalar, n int) []curve.Scalar {
	return powersOfFrom(x, 0, n)
}

// powersOfFrom returns [x^start, x^(start+1), ..., x^(start+n-1)].
func powersOfFrom(x curve.Scalar, start, n int) []curve.Scalar {
	base := curve.ScalarFromUint64(1)
	for i := 0; i < start; i++ {
		base = curve.NewScalar().Mul(base, x)
	}
	out := make([]curve.Scalar, n)
	cur := base
	for i := 0; i < n; i++ {
		out[i] = cur
		cur = curve.NewScalar().Mul(cur, x)
	}
	return out
}

func innerProduct(a, b []curve.Scalar) curve.Scalar {
	acc := curve.NewScalar()
	for i := range a {
		acc = curve.NewScalar().Add(acc, curve.NewScalar().Mul(a[i], b[i]))
	}
	return acc
}

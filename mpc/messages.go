package mpc

import "github.com/takakv/ristretto-bulletproofs/curve"

// BitCommitment is the wire message a Party sends the Dealer after Round 1:
// its value commitment and its commitments to the bit vector and the
// blinding vector.
type BitCommitment struct {
	VJ curve.Point
	AJ curve.Point
	SJ curve.Point
}

// BitChallenge is the wire message the Dealer broadcasts back after
// aggregating Round 1: the two challenges derived from A, S.
type BitChallenge struct {
	Y curve.Scalar
	Z curve.Scalar
}

// PolyCommitment is the wire message a Party sends the Dealer after Round
// 2: its commitments to the two non-constant coefficients of t(X).
type PolyCommitment struct {
	T1J curve.Point
	T2J curve.Point
}

// PolyChallenge is the wire message the Dealer broadcasts back after
// aggregating Round 2: the evaluation point x.
type PolyChallenge struct {
	X curve.Scalar
}

// ProofShare is the wire message a Party sends the Dealer after Round 3:
// its contribution to the aggregated proof. l and r are its length-n slice
// of the aggregated l(x), r(x) vectors.
type ProofShare struct {
	TxJ         curve.Scalar
	TxBlindingJ curve.Scalar
	EBlindingJ  curve.Scalar
	L           []curve.Scalar
	R           []curve.Scalar
}

// checkSize reports whether the share's vectors have the expected length n,
// the first check the Dealer's per-party validation performs against an
// untrusted share.
func (s ProofShare) checkSize(n int) bool {
	return len(s.L) == n && len(s.R) == n
}

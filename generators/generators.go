// Package generators derives the public base points the range proof engine
// commits against: the fixed Pedersen pair, and the growable per-party rows
// of Bulletproof generators used by the bit-vector commitments and the
// inner-product argument.
//
// The teacher derives its generator set once, at a fixed bit width, via
// SEEDH + "g" + i / SEEDH + "h" + i labels fed through zkrp's P-256
// MapToGroup (bulletproofs/bp.go Setup). This package keeps that labelled,
// deterministic derivation but generalises it two ways the teacher's
// single-party, fixed-width engine never needed: a party index folded into
// the label so an aggregated proof's m parties each get an independent,
// non-overlapping generator row, and a capacity that can grow by appending
// new labelled points rather than re-deriving the whole table.
package generators

import (
	"github.com/takakv/ristretto-bulletproofs/curve"
)

// PedersenGens holds the base points used for every Pedersen commitment in
// the system: B for the committed value, B_blinding for the blinding
// factor.
type PedersenGens struct {
	B         curve.Point
	BBlinding curve.Point
}

// DefaultPedersenGens returns the fixed, well-known Pedersen base pair: B is
// the Ristretto255 generator, and B_blinding is the hash-to-curve image of a
// fixed label over B's encoding, mirroring the teacher's H := MapToGroup(SEEDH)
// construction but binding the label to B's own bytes instead of a bare
// string constant, so B_blinding's derivation is self-describing.
func DefaultPedersenGens() *PedersenGens {
	b := curve.BasePoint()
	label := append([]byte("ristretto-bulletproofs/pedersen/B_blinding/"), curve.EncodePoint(b)...)
	return &PedersenGens{
		B:         b,
		BBlinding: curve.HashToPoint(label),
	}
}

// Commit returns v*B + blinding*B_blinding.
func (g *PedersenGens) Commit(v, blinding curve.Scalar) curve.Point {
	return curve.NewPoint().Add(
		curve.NewPoint().Mul(g.B, v),
		curve.NewPoint().Mul(g.BBlinding, blinding),
	)
}

// BulletproofGens holds the growable per-party generator tables G[j][i] and
// H[j][i]. Row j belongs to the j-th party of an aggregated proof; for a
// single-value proof only row 0 is used.
type BulletproofGens struct {
	label         string
	gensCapacity  int
	partyCapacity int
	g             [][]curve.Point
	h             [][]curve.Point
}

// NewBulletproofGens derives a fresh generator set able to support range
// proofs up to gensCapacity bits, aggregated across up to partyCapacity
// parties. label domain-separates this generator set from any other the
// caller might derive (e.g. for a different application).
func NewBulletproofGens(label string, gensCapacity, partyCapacity int) *BulletproofGens {
	bg := &BulletproofGens{label: label}
	bg.ensureCapacity(gensCapacity, partyCapacity)
	return bg
}

// rowLabel builds the label for party j's i-th generator of the given kind,
// reusing curve.IndexedLabel's fixed-width, collision-free index encoding.
func (bg *BulletproofGens) rowLabel(kind string, party, index int) []byte {
	return curve.IndexedLabel(bg.label, kind, party, index)
}

// ensureCapacity grows the generator tables to at least (gensCapacity,
// partyCapacity), deriving only the rows and columns that do not already
// exist. Because each generator's label is a pure function of (label, kind,
// party, index), growing the table never changes the bytes of any
// previously derived generator: old prefixes are never re-derived, matching
// the spec's requirement that BulletproofGens growth be non-destructive.
func (bg *BulletproofGens) ensureCapacity(gensCapacity, partyCapacity int) {
	if gensCapacity <= bg.gensCapacity && partyCapacity <= bg.partyCapacity {
		return
	}
	if gensCapacity < bg.gensCapacity {
		gensCapacity = bg.gensCapacity
	}
	if partyCapacity < bg.partyCapacity {
		partyCapacity = bg.partyCapacity
	}

	newG := make([][]curve.Point, partyCapacity)
	newH := make([][]curve.Point, partyCapacity)
	for j := 0; j < partyCapacity; j++ {
		newG[j] = make([]curve.Point, gensCapacity)
		newH[j] = make([]curve.Point, gensCapacity)
		for i := 0; i < gensCapacity; i++ {
			if j < bg.partyCapacity && i < bg.gensCapacity {
				newG[j][i] = bg.g[j][i]
				newH[j][i] = bg.h[j][i]
				continue
			}
			newG[j][i] = curve.HashToPoint(bg.rowLabel("G", j, i))
			newH[j][i] = curve.HashToPoint(bg.rowLabel("H", j, i))
		}
	}
	bg.g, bg.h = newG, newH
	bg.gensCapacity, bg.partyCapacity = gensCapacity, partyCapacity
}

// GensCapacity reports the maximum bit width this generator set currently
// supports.
func (bg *BulletproofGens) GensCapacity() int { return bg.gensCapacity }

// PartyCapacity reports the maximum aggregation factor this generator set
// currently supports.
func (bg *BulletproofGens) PartyCapacity() int { return bg.partyCapacity }

// ShareIter exposes party j's row of n generators, for use by a single
// Party building its own bit-vector commitment. It panics if party or n
// exceed the table's current capacity; callers must grow the table first.
func (bg *BulletproofGens) ShareIter(party, n int) (g, h []curve.Point) {
	if party >= bg.partyCapacity || n > bg.gensCapacity {
		panic("generators: requested share exceeds generator capacity")
	}
	return bg.g[party][:n], bg.h[party][:n]
}

// AllShares returns the full m x n sub-matrix of G and H generators the
// verifier needs to check an m-party, n-bit aggregated proof.
func (bg *BulletproofGens) AllShares(m, n int) (g, h [][]curve.Point) {
	if m > bg.partyCapacity || n > bg.gensCapacity {
		panic("generators: requested shares exceed generator capacity")
	}
	g = make([][]curve.Point, m)
	h = make([][]curve.Point, m)
	for j := 0; j < m; j++ {
		g[j] = bg.g[j][:n]
		h[j] = bg.h[j][:n]
	}
	return g, h
}

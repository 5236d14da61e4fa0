// Package curve fixes the group this module operates over to Ristretto255
// and exposes the small set of operations the proof engine needs on top of
// github.com/cloudflare/circl/group: scalar/point aliases, secure random
// sampling, and canonical encode/decode.
//
// The teacher (takakv/msc-poc) wraps circl behind a multi-curve
// algebra.Group/group.Group interface because its voting protocol needs to
// swap between finite-field and elliptic-curve groups. This spec only ever
// runs over Ristretto255 (every other group is a named non-goal), so the
// indirection collapses to direct use of group.Ristretto255.
package curve

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"math/big"

	"github.com/cloudflare/circl/group"
)

// order is the Ristretto255 group (and scalar field) order, the same
// constant the teacher's group/ristretto255.go hard-codes for its
// r255Group.curveOrder.
var order, _ = new(big.Int).SetString(
	"1000000000000000000000000000000014def9dea2f79cd65812631a5cf5d3ed", 16)

// Order returns the prime order of the Ristretto255 group.
func Order() *big.Int { return new(big.Int).Set(order) }

// Scalar is an element of the Ristretto255 scalar field.
type Scalar = group.Scalar

// Point is an element of the Ristretto255 group.
type Point = group.Element

// ScalarSize and PointSize are the canonical encoded lengths, in bytes.
const (
	ScalarSize = 32
	PointSize  = 32
)

// NewScalar returns a zero-valued scalar.
func NewScalar() Scalar { return group.Ristretto255.NewScalar() }

// NewPoint returns the identity point.
func NewPoint() Point { return group.Ristretto255.NewElement() }

// Identity returns the group's identity element.
func Identity() Point { return group.Ristretto255.Identity() }

// BasePoint returns the Ristretto255 generator.
func BasePoint() Point { return group.Ristretto255.Generator() }

// ScalarFromUint64 lifts a small integer into the scalar field.
func ScalarFromUint64(v uint64) Scalar {
	return group.Ristretto255.NewScalar().SetUint64(v)
}

// ReduceWideScalar reduces a wide (wider than ScalarSize) big-endian byte
// string modulo the group order and lifts it into a Scalar. Used both for
// RNG output and for transcript challenge bytes, so that neither source
// needs its own modular-bias argument: 16 extra bytes of input over
// ScalarSize keeps the bias from a plain mod-reduction far below any
// practical distinguishing advantage.
func ReduceWideScalar(wide []byte) Scalar {
	v := new(big.Int).SetBytes(wide)
	v.Mod(v, order)
	return group.Ristretto255.NewScalar().SetBigInt(v)
}

// RandomScalar samples a uniformly random scalar from r, which must be a
// cryptographically secure source of randomness.
func RandomScalar(r io.Reader) (Scalar, error) {
	raw := make([]byte, ScalarSize+16)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, err
	}
	return ReduceWideScalar(raw), nil
}

// MustRandomScalar is RandomScalar against crypto/rand.Reader, panicking only
// if the system RNG itself fails (an unrecoverable environment fault).
func MustRandomScalar() Scalar {
	s, err := RandomScalar(rand.Reader)
	if err != nil {
		panic("curve: system randomness source failed: " + err.Error())
	}
	return s
}

// HashToPoint derives a point deterministically from a domain-separated
// label, with no known discrete log relative to any other derived point or
// the generator. Used to build the Pedersen blinding base and the
// Bulletproof generator tables, mirroring the teacher's repeated
// `MapToGroup(SEEDH + "g" + i)` pattern (bulletproofs/bp.go Setup), but
// driven through circl's HashToElement instead of zkrp's P-256 MapToGroup.
func HashToPoint(label []byte) Point {
	return group.Ristretto255.HashToElement(label, []byte("ristretto-bulletproofs-generator"))
}

// IndexedLabel builds a deterministic, collision-free label for the j-th
// party's i-th generator of the given kind ("G" or "H"). Indices are
// appended as fixed-width big-endian integers (rather than the decimal
// fmt.Sprint the teacher uses for its MapToGroup seeds) so that, say,
// party 1 index 1 can never collide with party 11 index "" for any index
// magnitude; kept as raw bytes rather than a string so the binary suffix
// is never mistaken for, or mangled as, UTF-8 text.
func IndexedLabel(base, kind string, party, index int) []byte {
	label := append([]byte(base), '/')
	label = append(label, kind...)
	label = append(label, '/')
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(party))
	binary.BigEndian.PutUint32(buf[4:8], uint32(index))
	return append(label, buf[:]...)
}

// DecodePoint decompresses a canonical 32-byte Ristretto255 point. Decoding
// failures (including the identity's special non-canonical encodings) are
// reported as an error rather than a panic: callers on the verification
// path must be able to reject a proof that embeds garbage bytes.
func DecodePoint(b []byte) (Point, error) {
	p := NewPoint()
	if err := p.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeScalar decodes a canonical 32-byte little-endian scalar, rejecting
// non-canonical encodings (values >= the group order).
func DecodeScalar(b []byte) (Scalar, error) {
	s := NewScalar()
	if err := s.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return s, nil
}

// EncodePoint returns the 32-byte compressed encoding of p.
func EncodePoint(p Point) []byte {
	b, err := p.MarshalBinary()
	if err != nil {
		panic("curve: marshalling a valid element cannot fail: " + err.Error())
	}
	return b
}

// EncodeScalar returns the 32-byte canonical little-endian encoding of s.
func EncodeScalar(s Scalar) []byte {
	b, err := s.MarshalBinary()
	if err != nil {
		panic("curve: marshalling a valid scalar cannot fail: " + err.Error())
	}
	return b
}

// CopyScalar returns a new scalar holding the same value as s, independent
// of s's own storage. Used where a later protocol state needs to outlive an
// earlier one carrying the same value, so the earlier state's Zeroize does
// not corrupt the later one.
func CopyScalar(s Scalar) Scalar {
	return NewScalar().Add(s, NewScalar())
}

// Zeroize overwrites s in place with the zero scalar. group.Scalar gives no
// stronger guarantee than "SetUint64 mutates the receiver" — there is no
// exposed way to wipe the backing bytes directly — so this is the strongest
// zeroization callers holding a circl scalar can perform without reaching
// past the group interface. s must be non-nil.
func Zeroize(s Scalar) {
	s.SetUint64(0)
}

// ZeroizeAll zeroizes every scalar in ss, skipping nil entries.
func ZeroizeAll(ss []Scalar) {
	for _, s := range ss {
		if s != nil {
			Zeroize(s)
		}
	}
}

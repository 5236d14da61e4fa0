// Package bperrors holds the error taxonomy shared by every other package
// in this module: generators, ipp, mpc, rangeproof, and batch all reject
// malformed input with one of these sentinel values, or with
// MalformedProofSharesError for the one case that needs structured data.
//
// The original xelis-project/bulletproofs Rust crate this spec was
// distilled from keeps exactly this shape: a single crate::errors::
// ProofError enum (InvalidBitsize, InvalidGeneratorsLength, FormatError,
// VerificationError, WrongNumBlindingFactors, ...) imported by
// range_proof, party, dealer and generators alike. The teacher has no
// equivalent — bulletproofs/bp.go and bulletproofs/bip.go just call
// errors.New inline at each call site — so this package follows the
// teacher's plain errors.New/fmt.Errorf style for the values themselves,
// but borrows the original's "one shared taxonomy module" structure so
// every package in the pipeline can fail with the same vocabulary instead
// of each inventing its own strings.
package bperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBitsize is returned when n is not one of {8, 16, 32, 64}.
	ErrInvalidBitsize = errors.New("bulletproofs: invalid bitsize")
	// ErrInvalidAggregationSize is returned when m is not a power of two.
	ErrInvalidAggregationSize = errors.New("bulletproofs: invalid aggregation size")
	// ErrInvalidGeneratorsLength is returned when the available generators
	// are too small for the requested (n, m).
	ErrInvalidGeneratorsLength = errors.New("bulletproofs: generators too short for requested bitsize/aggregation")
	// ErrWrongNumBlindingFactors is returned when len(blindings) != len(values).
	ErrWrongNumBlindingFactors = errors.New("bulletproofs: number of blinding factors does not match number of values")
	// ErrFormat is returned when a proof's byte encoding is malformed:
	// wrong length, or a non-canonical scalar/point encoding.
	ErrFormat = errors.New("bulletproofs: malformed proof encoding")
	// ErrVerification is returned when the verification equation does not
	// evaluate to the identity point, or any commitment fails to decompress.
	ErrVerification = errors.New("bulletproofs: verification failed")
	// ErrMaliciousDealer is returned by a Party when the Dealer derives a
	// challenge x == 0, which would make the polynomial evaluation trivial
	// and leak the witness if the party proceeded.
	ErrMaliciousDealer = errors.New("bulletproofs: dealer produced a degenerate challenge")
)

// MalformedProofSharesError reports which parties' proof shares failed the
// Dealer's per-party validation, so the caller can identify and exclude the
// dishonest (or merely buggy) contributors rather than discarding the
// whole aggregation round blind.
type MalformedProofSharesError struct {
	BadShares []int
}

func (e *MalformedProofSharesError) Error() string {
	return fmt.Sprintf("bulletproofs: malformed proof shares from parties %v", e.BadShares)
}

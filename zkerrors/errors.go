// Package zkerrors defines the fatal error taxonomy shared by every
// stage of the proving and verification pipeline. All errors here are
// deterministic functions of their inputs: none are meaningful to retry.
package zkerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per taxonomy entry. Wrap with fmt.Errorf("...: %w", ErrX)
// to attach context while keeping errors.Is(err, ErrX) working.
var (
	// ErrBadDomain is returned when domain validation fails: N not a
	// power of two, c == 0, or ω does not have exact order N.
	ErrBadDomain = errors.New("zkerrors: invalid domain parameters")

	// ErrBadParams is returned for malformed top-level parameters: k == 0,
	// b_blk == 0, and similar.
	ErrBadParams = errors.New("zkerrors: invalid parameters")

	// ErrBadRowLen is returned when a witness row's length does not match
	// the AIR spec's register count k.
	ErrBadRowLen = errors.New("zkerrors: row length mismatch")

	// ErrDegreeOverflow is returned when the PCS aggregator is asked to
	// absorb more coefficients than max_degree+1.
	ErrDegreeOverflow = errors.New("zkerrors: polynomial degree exceeds SRS capacity")

	// ErrSRSMissing is returned when a verifier operation needs the G2
	// SRS element but none was loaded.
	ErrSRSMissing = errors.New("zkerrors: SRS not loaded")

	// ErrTranscriptMismatch is returned when the verifier's independently
	// derived challenge set diverges from the one implied by the proof.
	ErrTranscriptMismatch = errors.New("zkerrors: transcript challenge mismatch")

	// ErrAlgebra is returned when the closing identity Z_H(ζ)·Q(ζ) − R(ζ) = 0
	// fails to hold.
	ErrAlgebra = errors.New("zkerrors: algebraic identity check failed")

	// ErrPairing is returned when a KZG pairing equation fails to hold.
	ErrPairing = errors.New("zkerrors: pairing check failed")
)

// Wrap attaches context to a sentinel error while preserving errors.Is.
func Wrap(sentinel error, context string) error {
	return fmt.Errorf("%s: %w", context, sentinel)
}

// Wrapf is Wrap with formatting.
func Wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}

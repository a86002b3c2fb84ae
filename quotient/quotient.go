// Package quotient implements the quotient builder of spec §4.7: feed the
// residual stream into a blocked INTT to get R's coefficients, then fold
// the result down by the vanishing polynomial X^N − c via streaming
// synthetic long division, producing Q(X) such that
// R(X) = Q(X)·(X^N − c) + r(X), deg(r) < N.
//
// Grounded on the teacher's use of a single coefficient buffer for
// post-FFT polynomial manipulation (internal/backend/bw6-761/plonk) —
// generalized here from one fixed-size buffer into two interchangeable
// backends (materialized slice, file-backed tape) so the fold runs in
// O(b_blk) resident memory regardless of buffer placement.
package quotient

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/nume-crypto/sszkp/ntt"
	"github.com/nume-crypto/sszkp/zkerrors"
)

// FoldDown performs the in-memory variant of the fold-down of spec §4.7:
//
//	for i from deg downto N:
//	    q[i-N] += r[i]
//	    r[i-N] += c·r[i]
//	    r[i]    = 0
//
// buf holds R's coefficients low→high on entry (length L >= n) and is
// mutated in place; the returned q and r slices alias buf's tail and head
// respectively. In place, q[i-N] is stored in buf[i] itself: once step i
// has run, buf[i] is final and holds q[i-N] rather than being zeroed.
// len(r) == n always; r should be all-zero for an exact quotient (spec §8
// "quotient exactness").
func FoldDown(buf []fr.Element, n uint64, c fr.Element) (q, r []fr.Element, err error) {
	l := uint64(len(buf))
	if l < n {
		return nil, nil, zkerrors.Wrapf(zkerrors.ErrBadParams, "buffer length %d shorter than domain size %d", l, n)
	}
	for i := l - 1; i >= n; i-- {
		var cTerm fr.Element
		cTerm.Mul(&c, &buf[i])
		buf[i-n].Add(&buf[i-n], &cTerm)
		if i == 0 {
			break
		}
	}
	return buf[n:], buf[:n], nil
}

// TapeFoldDown performs the same fold-down directly against a file-backed
// tape of length `length` (>= n), touching only the two scalar positions
// (i, i-n) per step plus O(1) temporaries — true O(1) resident memory for
// the fold itself, independent of b_blk, since synthetic division only
// ever needs two live positions at a time. As in FoldDown, positions
// n..length-1 end up holding Q's coefficients low→high (q[i-n] at
// position i) and 0..n-1 hold the remainder.
func TapeFoldDown(tape *ntt.Tape, length int, n uint64, c fr.Element) error {
	if uint64(length) < n {
		return zkerrors.Wrapf(zkerrors.ErrBadParams, "tape length %d shorter than domain size %d", length, n)
	}
	for i := uint64(length - 1); i >= n; i-- {
		ri, err := tape.Get(int(i))
		if err != nil {
			return err
		}
		lo, err := tape.Get(int(i - n))
		if err != nil {
			return err
		}

		var cTerm fr.Element
		cTerm.Mul(&c, &ri)
		lo.Add(&lo, &cTerm)

		if err := tape.Set(int(i-n), lo); err != nil {
			return err
		}
		if i == 0 {
			break
		}
	}
	return nil
}

// Coeffs drains a materialized buffer's quotient and remainder halves by
// running FoldDown; a thin wrapper kept for call sites that only have a
// plain slice of R's coefficients rather than an INTT result in hand.
func Coeffs(rCoeffs []fr.Element, n uint64, c fr.Element) (q, r []fr.Element, err error) {
	buf := make([]fr.Element, len(rCoeffs))
	copy(buf, rCoeffs)
	return FoldDown(buf, n, c)
}

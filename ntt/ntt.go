// Package ntt implements the blocked inverse NTT of spec §4.2: a
// transform from a time-ordered stream of N evaluations over H to
// coefficient tiles of length ≤ b_blk, emitted in either low→high or
// high→low order.
//
// Two execution modes are provided: InMemory, which buffers all N
// evaluations and runs a standard radix-2 Cooley–Tukey inverse transform,
// and the tape-backed mode in tape.go, which performs the transform
// in place on a file-backed tape with O(b_blk) resident state.
//
// The butterfly/twiddle structure here is the same one gnark-crypto's
// ecc/bn254/fr/fft package implements (FFT/FFTInverse/BitReverse); domain
// uses that package directly to derive ω, but the transform itself is
// reimplemented here because the stock API commits to an in-memory,
// non-streaming shape incompatible with tile emission.
package ntt

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/nume-crypto/sszkp/streamutil"
	"github.com/nume-crypto/sszkp/zkerrors"
)

// Transform computes the forward NTT of coeffs (length N, a power of two)
// over the subgroup generated by omega, in place. It is the left inverse
// of INTT and exists chiefly so round-trip tests can assert
// INTT(Transform(a)) == a (spec §8).
func Transform(a []fr.Element, omega fr.Element) {
	n := len(a)
	bitReverse(a)
	butterflies(a, omega)
	_ = n
}

// inverse runs the inverse transform in place: bit-reverse, butterfly with
// ω^{-1}, then scale every element by N^{-1}.
func inverse(a []fr.Element, omega fr.Element) {
	var omegaInv fr.Element
	omegaInv.Inverse(&omega)

	bitReverse(a)
	butterflies(a, omegaInv)

	var nInv fr.Element
	nInv.SetUint64(uint64(len(a))).Inverse(&nInv)
	for i := range a {
		a[i].Mul(&a[i], &nInv)
	}
}

// butterflies runs the standard iterative Cooley–Tukey butterfly network
// over bit-reversed input a, using omega as the N-th root of unity driving
// every stage's twiddle factors.
func butterflies(a []fr.Element, omega fr.Element) {
	n := len(a)
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		// twiddle for this stage: an element of order `size`
		var stageRoot fr.Element
		stageRoot.Exp(omega, new(big.Int).SetUint64(uint64(n/size)))

		for start := 0; start < n; start += size {
			var w fr.Element
			w.SetOne()
			for j := 0; j < half; j++ {
				var u, v fr.Element
				u = a[start+j]
				v.Mul(&a[start+j+half], &w)

				a[start+j].Add(&u, &v)
				a[start+j+half].Sub(&u, &v)

				w.Mul(&w, &stageRoot)
			}
		}
	}
}

// bitReverse permutes a into bit-reversed order in place; len(a) must be a
// power of two.
func bitReverse(a []fr.Element) {
	n := len(a)
	if n == 0 {
		return
	}
	bits := 0
	for 1<<bits < n {
		bits++
	}
	for i := 0; i < n; i++ {
		j := reverseBits(uint(i), bits)
		if j > i {
			a[i], a[j] = a[j], a[i]
		}
	}
}

func reverseBits(x uint, bits int) uint {
	var r uint
	for i := 0; i < bits; i++ {
		r = (r << 1) | (x & 1)
		x >>= 1
	}
	return r
}

// InMemoryINTT buffers up to N evaluations fed via Push, then on Finish
// runs a standard radix-2 inverse transform and exposes the result as a
// tile stream in the requested order.
type InMemoryINTT struct {
	n      int
	blk    int
	omega  fr.Element
	evals  []fr.Element
	filled int
}

// NewInMemory creates an in-memory blocked INTT for a size-n domain
// generated by omega, emitting tiles of ≤ blk elements.
func NewInMemory(n int, omega fr.Element, blk int) (*InMemoryINTT, error) {
	if n == 0 || n&(n-1) != 0 {
		return nil, zkerrors.Wrapf(zkerrors.ErrBadParams, "N=%d must be a power of two", n)
	}
	if blk <= 0 {
		return nil, zkerrors.Wrap(zkerrors.ErrBadParams, "block size must be positive")
	}
	return &InMemoryINTT{
		n:     n,
		blk:   blk,
		omega: omega,
		evals: make([]fr.Element, n),
	}, nil
}

// Push appends the next time-ordered evaluation(s). Contract (spec §4.2):
// callers feed exactly N evaluations over the course of a transform;
// PushChecked errors on overflow, Push (unchecked finisher) truncates.
func (m *InMemoryINTT) Push(e fr.Element) {
	if m.filled >= m.n {
		return // unchecked finisher: silently truncate extra evaluations
	}
	m.evals[m.filled] = e
	m.filled++
}

// PushChecked is Push but returns ErrDegreeOverflow instead of truncating.
func (m *InMemoryINTT) PushChecked(e fr.Element) error {
	if m.filled >= m.n {
		return zkerrors.Wrap(zkerrors.ErrDegreeOverflow, "INTT received more than N evaluations")
	}
	m.Push(e)
	return nil
}

// Finish zero-pads any missing evaluations, runs the inverse transform,
// and returns a tile stream over the resulting coefficients in the
// requested order.
func (m *InMemoryINTT) Finish(order streamutil.Order) streamutil.CoeffTileStream {
	// façade zero-pads if fewer than N evaluations were pushed (spec §4.2).
	for m.filled < m.n {
		m.evals[m.filled] = fr.Element{}
		m.filled++
	}
	coeffs := make([]fr.Element, m.n)
	copy(coeffs, m.evals)
	inverse(coeffs, m.omega)
	return streamutil.NewSliceCoeffStream(coeffs, m.blk, order)
}

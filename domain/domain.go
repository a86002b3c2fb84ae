// Copyright 2020 ConsenSys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package domain models the evaluation domain H = {ω^i : 0 ≤ i < N} and
// its vanishing polynomial Z_H(X) = X^N − c.
package domain

import (
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/zeebo/blake3"

	"github.com/nume-crypto/sszkp/zkerrors"
)

// smallPrimeFactors are the only primes that can divide a power-of-two N.
var smallPrimeFactors = [...]uint64{2}

// Domain is (N, ω, c): a multiplicative subgroup of order N together with
// the vanishing constant of the (possibly shifted) coset it represents.
type Domain struct {
	N     uint64
	Omega fr.Element
	C     fr.Element
}

// New builds and validates a Domain of cardinality n with vanishing
// constant c. n must be a power of two; c must be nonzero.
//
// ω is obtained from gnark-crypto's own FFT domain construction
// (fft.NewDomain), which is guaranteed to return a generator of exact
// order n for any power-of-two n; New re-validates that guarantee
// per spec rather than trusting it blindly.
func New(n uint64, c fr.Element) (Domain, error) {
	if n == 0 || n&(n-1) != 0 {
		return Domain{}, zkerrors.Wrapf(zkerrors.ErrBadDomain, "N=%d is not a power of two", n)
	}
	if c.IsZero() {
		return Domain{}, zkerrors.Wrap(zkerrors.ErrBadDomain, "vanishing constant c must be nonzero")
	}

	fftDomain := fft.NewDomain(n)
	d := Domain{N: n, Omega: fftDomain.Generator, C: c}
	if err := d.validate(); err != nil {
		return Domain{}, err
	}
	return d, nil
}

// NewSubgroup is New with c = 1, the pure subgroup case.
func NewSubgroup(n uint64) (Domain, error) {
	var one fr.Element
	one.SetOne()
	return New(n, one)
}

// validate checks ω^N = 1 and, for each prime divisor p of N, ω^(N/p) ≠ 1 —
// i.e. ω has exact order N, not a proper divisor of it.
func (d Domain) validate() error {
	var acc fr.Element
	acc.Exp(d.Omega, new(big.Int).SetUint64(d.N))
	if !acc.IsOne() {
		return zkerrors.Wrap(zkerrors.ErrBadDomain, "ω^N != 1")
	}
	for _, p := range smallPrimeFactors {
		if d.N%p != 0 {
			continue
		}
		var probe fr.Element
		probe.Exp(d.Omega, new(big.Int).SetUint64(d.N/p))
		if probe.IsOne() {
			return zkerrors.Wrapf(zkerrors.ErrBadDomain, "ω^(N/%d) == 1, order of ω is a proper divisor of N", p)
		}
	}
	return nil
}

// VanishingEval returns Z_H(ζ) = ζ^N − c.
func (d Domain) VanishingEval(zeta fr.Element) fr.Element {
	var res fr.Element
	res.Exp(zeta, new(big.Int).SetUint64(d.N))
	res.Sub(&res, &d.C)
	return res
}

// Contains reports whether x is a root of the vanishing polynomial
// Z_H(X) = X^N − c, i.e. whether x^N == c. For c = 1 this is membership
// in the subgroup H itself.
func (d Domain) Contains(x fr.Element) bool {
	var xn fr.Element
	xn.Exp(x, new(big.Int).SetUint64(d.N))
	return xn.Equal(&d.C)
}

// Element returns ω^i.
func (d Domain) Element(i uint64) fr.Element {
	var res fr.Element
	res.Exp(d.Omega, new(big.Int).SetUint64(i))
	return res
}

// Digest returns a 32-byte BLAKE3 hash over (N, ω, c). This is a diagnostic
// identifier only — it is never security-binding; the transcript binds the
// full header instead (spec §4.1).
func (d Domain) Digest() [32]byte {
	h := blake3.New()
	var nBytes [8]byte
	binary.LittleEndian.PutUint64(nBytes[:], d.N)
	_, _ = h.Write(nBytes[:])
	omegaBytes := d.Omega.Bytes()
	_, _ = h.Write(omegaBytes[:])
	cBytes := d.C.Bytes()
	_, _ = h.Write(cBytes[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

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

// Package accumulator implements the permutation and lookup Z
// accumulators of spec §4.5: multiplicative, block-factorizable running
// products emitted in time order.
//
// The φ_perm product structure is grounded on the teacher's permutation
// construction (buildPermutation / ccomputePermutationPolynomials in
// internal/backend/bw6-761/plonk/setup.go): there, id/σ columns are
// derived once from an R1CS's wire cycles and committed directly; here
// the same id(w)/σ(w) product shape drives a streaming Z column instead,
// since the AIR model (spec §3) supplies id/σ per register directly
// rather than deriving them from a constraint system.
package accumulator

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/nume-crypto/sszkp/air"
)

// Carry is the accumulator's state threaded across block boundaries: a
// single field element per spec §3 ("PermAcc/LookupAcc: one field
// element z"). The zero value is NOT Z(0) = 1 — use NewCarry.
type Carry struct {
	Z fr.Element
}

// NewCarry returns the accumulator's initial state, Z(0) = 1.
func NewCarry() Carry {
	var c Carry
	c.Z.SetOne()
	return c
}

// BlockOutput is one block's contribution: the Z values at every row in
// the block (Z(i) evaluated before applying row i's factor, i.e. the
// "evolving" column itself) plus the carry to hand to the next block.
type BlockOutput struct {
	Z     []fr.Element
	Carry Carry
}

// phiPerm computes Π_j (w_j + β·id_j + γ) / Π_j (w_j + β·σ_j + γ) for one
// row's Locals (spec §4.5).
func phiPerm(locals air.Locals, beta, gamma fr.Element) fr.Element {
	var num, den fr.Element
	num.SetOne()
	den.SetOne()

	var term fr.Element
	for j := range locals.W {
		term.Mul(&beta, &locals.ID[j])
		term.Add(&term, &locals.W[j])
		term.Add(&term, &gamma)
		num.Mul(&num, &term)

		term.Mul(&beta, &locals.Sigma[j])
		term.Add(&term, &locals.W[j])
		term.Add(&term, &gamma)
		den.Mul(&den, &term)
	}

	var denInv fr.Element
	denInv.Inverse(&den)
	num.Mul(&num, &denInv)
	return num
}

// AbsorbBlockPerm evaluates the permutation accumulator across one
// block's Locals, starting from in.Z, and returns the Z values produced
// at each row of the block plus the carry for the next block. This is
// the streaming realization of spec §4.9 Phase C's "absorb_block_perm":
// the carry threads the real running product across blocks, resolving
// the Z-threading inconsistency noted in spec §9 rather than reproducing
// it (every block receives the true prior carry, never a reset to 1).
func AbsorbBlockPerm(in Carry, locals []air.Locals, beta, gamma fr.Element) BlockOutput {
	out := BlockOutput{Z: make([]fr.Element, len(locals))}
	z := in.Z
	for i, l := range locals {
		out.Z[i] = z
		phi := phiPerm(l, beta, gamma)
		var next fr.Element
		next.Mul(&z, &phi)
		z = next
	}
	out.Carry = Carry{Z: z}
	return out
}

// phiLookup computes a demo lookup factor by compressing the table
// columns carried in locals.Selectors with powers of eta:
// Σ_j Selectors[j]·eta^j. The witness values in locals.W do not enter the
// factor. rhs, when non-nil, is divided into the compressed numerator;
// this mirrors a ratio-style lookup argument without committing to one
// fixed table layout.
func phiLookup(locals air.Locals, eta fr.Element, rhs *fr.Element) fr.Element {
	var compressed, pow fr.Element
	pow.SetOne()
	for j := range locals.Selectors {
		var term fr.Element
		term.Mul(&locals.Selectors[j], &pow)
		compressed.Add(&compressed, &term)
		pow.Mul(&pow, &eta)
	}
	if rhs == nil {
		return compressed
	}
	var rhsInv fr.Element
	rhsInv.Inverse(rhs)
	compressed.Mul(&compressed, &rhsInv)
	return compressed
}

// AbsorbBlockLookup is the lookup-argument analogue of AbsorbBlockPerm,
// producing the optional Z_L column (spec §4.5).
func AbsorbBlockLookup(in Carry, locals []air.Locals, eta fr.Element, rhs []fr.Element) BlockOutput {
	out := BlockOutput{Z: make([]fr.Element, len(locals))}
	z := in.Z
	for i, l := range locals {
		out.Z[i] = z
		var rhsPtr *fr.Element
		if rhs != nil {
			rhsPtr = &rhs[i]
		}
		phi := phiLookup(l, eta, rhsPtr)
		var next fr.Element
		next.Mul(&z, &phi)
		z = next
	}
	out.Carry = Carry{Z: z}
	return out
}

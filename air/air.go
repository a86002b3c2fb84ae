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

// Package air implements the Algebraic Intermediate Representation block
// evaluator of spec §4.4: a pure per-block function
// (boundary_in, rows) → (per-register values, row locals, boundary_out).
//
// The id/σ/selector table model generalizes the teacher's fixed PLONK
// gate tables (Ql, Qr, Qm, Qo, Qk and the permutation's id/σ columns in
// internal/backend/bw6-761/plonk/setup.go) from a hardwired 3-wire gate
// into an arbitrary k-register AIR with a pluggable gate function.
package air

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/nume-crypto/sszkp/zkerrors"
)

// Row is one trace row: k field elements.
type Row []fr.Element

// Table is a column of values indexed modulo its own length — the
// fallback described in spec §4.4 ("looked up modulo column length, or
// defaulted to identity/cyclic shift/zeros if absent") is implemented by
// the accessor methods below, not by the table itself.
type Table []fr.Element

// At returns table[i % len(table)], or the fallback value if the table is
// empty.
func (t Table) At(i int, fallback fr.Element) fr.Element {
	if len(t) == 0 {
		return fallback
	}
	return t[i%len(t)]
}

// Spec is a fixed AIR specification: register count k plus the id/σ/
// selector tables and gate constraints shared by every block evaluation
// of a single proof (spec §3 "AIR spec").
type Spec struct {
	K uint64

	// IDTable, SigmaTable, Selectors are one column per register unless
	// the column is empty, in which case identity (IDTable), cyclic shift
	// (SigmaTable: row -> row+1), or zero (Selectors) is substituted.
	IDTable    []Table
	SigmaTable []Table
	Selectors  []Table

	// Gates are the selector-gated demo constraints summed into gate(i)
	// in the residual (spec §4.6).
	Gates []Gate
}

// Gate is one selector-gated constraint: SelectorIndex picks the selector
// column gating it, and Eval computes the constraint's value for a row
// (zero means satisfied).
type Gate struct {
	SelectorIndex int
	Eval          func(locals Locals) fr.Element
}

// Validate checks the spec's basic invariants (spec §3: k >= 1).
func (s Spec) Validate() error {
	if s.K == 0 {
		return zkerrors.Wrap(zkerrors.ErrBadParams, "AIR register count k must be >= 1")
	}
	return nil
}

// Locals is the row-major tuple consumed by gates and accumulators
// (spec §3 "Locals").
type Locals struct {
	W         Row
	ID        Row
	Sigma     Row
	Selectors Row
}

// BlockResult is the output of one pure block evaluation (spec §3).
type BlockResult struct {
	RegMVals   []fr.Element // reg_m_vals[i] = row.regs[m], time order within the block
	Locals     []Locals
	BoundaryIn []fr.Element
	BoundaryOut []fr.Element
}

// AllRegsResult is the "all-regs" variant of BlockResult: every register's
// time series instead of a single target register m.
type AllRegsResult struct {
	Regs        [][]fr.Element // Regs[m][i]
	Locals      []Locals
	BoundaryIn  []fr.Element
	BoundaryOut []fr.Element
}

// idDefault returns i itself as a field element (the "identity" fallback).
func idDefault(i int) fr.Element {
	var e fr.Element
	e.SetUint64(uint64(i))
	return e
}

// sigmaDefault returns i+1 (the "cyclic shift" fallback).
func sigmaDefault(i int) fr.Element {
	var e fr.Element
	e.SetUint64(uint64(i + 1))
	return e
}

// rowLocals builds one row's Locals from the spec's tables, given the
// row's absolute counter (time index within the whole trace).
func rowLocals(spec Spec, row Row, rowCtr int) Locals {
	k := int(spec.K)
	id := make(Row, k)
	sigma := make(Row, k)
	sel := make(Row, k)
	for m := 0; m < k; m++ {
		if m < len(spec.IDTable) {
			id[m] = spec.IDTable[m].At(rowCtr, idDefault(rowCtr))
		} else {
			id[m] = idDefault(rowCtr)
		}
		if m < len(spec.SigmaTable) {
			sigma[m] = spec.SigmaTable[m].At(rowCtr, sigmaDefault(rowCtr))
		} else {
			sigma[m] = sigmaDefault(rowCtr)
		}
		if m < len(spec.Selectors) {
			sel[m] = spec.Selectors[m].At(rowCtr, fr.Element{})
		} else {
			sel[m] = fr.Element{}
		}
	}
	return Locals{W: row, ID: id, Sigma: sigma, Selectors: sel}
}

// EvalBlock evaluates the single target register m over one block of
// rows already read from a re-streamable witness source, given
// boundary_in — the previous block's final row (spec §4.4). startCtr is
// the absolute row counter of the first row in the block, used to index
// the id/σ/selector tables.
func EvalBlock(spec Spec, rows []Row, startCtr int, m int, boundaryIn []fr.Element) (BlockResult, error) {
	if err := spec.Validate(); err != nil {
		return BlockResult{}, err
	}
	res := BlockResult{
		RegMVals:   make([]fr.Element, len(rows)),
		Locals:     make([]Locals, len(rows)),
		BoundaryIn: boundaryIn,
	}
	var last Row
	for i, row := range rows {
		if len(row) != int(spec.K) {
			return BlockResult{}, zkerrors.Wrapf(zkerrors.ErrBadRowLen, "row %d has length %d, want %d", startCtr+i, len(row), spec.K)
		}
		res.RegMVals[i] = row[m]
		res.Locals[i] = rowLocals(spec, row, startCtr+i)
		last = row
	}
	if last != nil {
		res.BoundaryOut = append([]fr.Element(nil), last...)
	} else {
		res.BoundaryOut = boundaryIn
	}
	return res, nil
}

// EvalBlockAllRegs is the all-registers variant of EvalBlock.
func EvalBlockAllRegs(spec Spec, rows []Row, startCtr int, boundaryIn []fr.Element) (AllRegsResult, error) {
	if err := spec.Validate(); err != nil {
		return AllRegsResult{}, err
	}
	k := int(spec.K)
	res := AllRegsResult{
		Regs:       make([][]fr.Element, k),
		Locals:     make([]Locals, len(rows)),
		BoundaryIn: boundaryIn,
	}
	for m := range res.Regs {
		res.Regs[m] = make([]fr.Element, len(rows))
	}
	var last Row
	for i, row := range rows {
		if len(row) != k {
			return AllRegsResult{}, zkerrors.Wrapf(zkerrors.ErrBadRowLen, "row %d has length %d, want %d", startCtr+i, len(row), k)
		}
		for m := 0; m < k; m++ {
			res.Regs[m][i] = row[m]
		}
		res.Locals[i] = rowLocals(spec, row, startCtr+i)
		last = row
	}
	if last != nil {
		res.BoundaryOut = append([]fr.Element(nil), last...)
	} else {
		res.BoundaryOut = boundaryIn
	}
	return res, nil
}

// StandardGate builds the teacher's fixed PLONK gate
// ql·l + qr·r + qm·l·r + qo·o + qk generalized to arbitrary register
// indices li, ri, oi. The row's value in selector column selectorIdx
// supplies ql (and is also the gate's SelectorIndex); qr, qm, qo, qk are
// fixed constants. Reinterpreted here as one built-in AIR gate family
// rather than a hardwired circuit compiler output.
func StandardGate(selectorIdx, li, ri, oi int, qr, qm, qo, qk fr.Element) Gate {
	return Gate{
		SelectorIndex: selectorIdx,
		Eval: func(locals Locals) fr.Element {
			var term, sum fr.Element

			ql := locals.Selectors[selectorIdx]
			sum.Mul(&ql, &locals.W[li])

			term.Mul(&qr, &locals.W[ri])
			sum.Add(&sum, &term)

			term.Mul(&qm, &locals.W[li])
			term.Mul(&term, &locals.W[ri])
			sum.Add(&sum, &term)

			term.Mul(&qo, &locals.W[oi])
			sum.Add(&sum, &term)

			sum.Add(&sum, &qk)
			return sum
		},
	}
}

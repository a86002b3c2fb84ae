// Package residual implements the per-row residual stream and the
// verifier-side symbolic residual of spec §4.6:
//
//	R(i) = α·gate(i) + (Z(i+1)·Π(w+β·id+γ) − Z(i)·Π(w+β·σ+γ)) + boundary(i)
//
// spec §9 notes an apparent inconsistency in a "legacy" helper that
// resets the permutation carry to zero at the start of every block
// instead of threading the real running product across block
// boundaries, and explicitly recommends against reproducing it. EvalBlock
// below holds no carry of its own: it takes each row's Z(i) and Z(i+1)
// from the caller, who threads the accumulator carry returned by
// accumulator.AbsorbBlockPerm from one block into the next (as the
// prover's residual pass does). The only way to get the legacy (wrong)
// behavior is for a caller to pass accumulator.NewCarry() at every block
// instead of threading that carry.
package residual

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/nume-crypto/sszkp/accumulator"
	"github.com/nume-crypto/sszkp/air"
	"github.com/nume-crypto/sszkp/domain"
	"github.com/nume-crypto/sszkp/ntt"
	"github.com/nume-crypto/sszkp/pcs"
	"github.com/nume-crypto/sszkp/streamutil"
)

// RowEmitter receives one residual value per row, in time order.
type RowEmitter func(rowIdx int, r fr.Element) error

// Carries bundles the permutation (and optional lookup) carries threaded
// across block boundaries.
type Carries struct {
	Perm   accumulator.Carry
	Lookup accumulator.Carry
}

// NewCarries returns the initial carry state (Z(0) = 1 for both
// accumulators).
func NewCarries() Carries {
	return Carries{Perm: accumulator.NewCarry(), Lookup: accumulator.NewCarry()}
}

// EvalBlock computes R(i) for one block of locals plus the accumulator
// values already produced for that block (spec §4.6), emitting each row's
// residual via emit. n is the domain size N, used to detect the final row
// (i == N-1) for the boundary term.
//
// zNext supplies Z(i+1) for each row i in the block; the caller is
// responsible for having advanced the accumulator one step further than
// the locals it hands in (i.e. zNext[i] is the Z value the *next* row of
// the trace would have started from), which accumulator.AbsorbBlockPerm's
// carry already gives by construction when blocks are processed in
// order: zNext[i] for i < len(locals)-1 is out.Z[i+1], and for the last
// row of the block it is the carry handed to the next block's
// AbsorbBlockPerm call.
func EvalBlock(
	spec air.Spec,
	startCtr int,
	n uint64,
	locals []air.Locals,
	zCur []fr.Element,
	zNext []fr.Element,
	beta, gamma, alpha fr.Element,
	emit RowEmitter,
) error {
	for i, l := range locals {
		rowIdx := startCtr + i

		var gateSum fr.Element
		for _, g := range spec.Gates {
			sel := l.Selectors[g.SelectorIndex]
			val := g.Eval(l)
			var term fr.Element
			term.Mul(&sel, &val)
			gateSum.Add(&gateSum, &term)
		}
		var alphaGate fr.Element
		alphaGate.Mul(&alpha, &gateSum)

		var numProd, denProd, term fr.Element
		numProd.SetOne()
		denProd.SetOne()
		for j := range l.W {
			term.Mul(&beta, &l.ID[j])
			term.Add(&term, &l.W[j])
			term.Add(&term, &gamma)
			numProd.Mul(&numProd, &term)

			term.Mul(&beta, &l.Sigma[j])
			term.Add(&term, &l.W[j])
			term.Add(&term, &gamma)
			denProd.Mul(&denProd, &term)
		}

		var permTermA, permTermB fr.Element
		permTermA.Mul(&zNext[i], &numProd)
		permTermB.Mul(&zCur[i], &denProd)
		var permDiff fr.Element
		permDiff.Sub(&permTermA, &permTermB)

		var boundary fr.Element
		if rowIdx == 0 {
			var one fr.Element
			one.SetOne()
			var d fr.Element
			d.Sub(&zCur[i], &one)
			boundary.Add(&boundary, &d)
		}
		if uint64(rowIdx) == n-1 {
			var one fr.Element
			one.SetOne()
			var d fr.Element
			d.Sub(&zNext[i], &one)
			boundary.Add(&boundary, &d)
		}

		var r fr.Element
		r.Add(&alphaGate, &permDiff)
		r.Add(&r, &boundary)

		if err := emit(rowIdx, r); err != nil {
			return err
		}
	}
	return nil
}

// PublicPolyEval evaluates a public (non-witness) per-row table at ζ, by
// treating the table's defaulted time-domain values as evaluations over
// H, converting to coefficients via the blocked INTT, and evaluating via
// streaming Horner. Used by the verifier to recompute ID(ζ), σ(ζ), and
// Selectors(ζ) directly from the public AIR spec rather than from a
// proof opening, since id/σ/selector columns are public data fixed by the
// AIR spec and require no witness-hiding commitment.
func PublicPolyEval(dom domain.Domain, table air.Table, fallback func(i int) fr.Element, blkSize int, zeta fr.Element) (fr.Element, error) {
	m, err := ntt.NewInMemory(int(dom.N), dom.Omega, blkSize)
	if err != nil {
		return fr.Element{}, err
	}
	for i := uint64(0); i < dom.N; i++ {
		m.Push(table.At(int(i), fallback(int(i))))
	}
	stream := m.Finish(streamutil.LowToHigh)
	return pcs.StreamingHornerEval(stream, zeta)
}

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

// Package pcs implements the streaming KZG polynomial commitment
// aggregator, streaming Horner evaluator, and streaming opening-proof
// builder of spec §4.3.
//
// The commit/open/verify shape is grounded directly on gnark-crypto's
// kzg package (Commit via MSM, Open via dividePolyByXminusA synthetic
// division, Verify via a single pairing check), restructured so every
// operation consumes a tile stream instead of a materialized slice.
package pcs

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/nume-crypto/sszkp/srs"
	"github.com/nume-crypto/sszkp/streamutil"
	"github.com/nume-crypto/sszkp/zkerrors"
)

// Commitment is a KZG commitment: a single G1 point.
type Commitment = bn254.G1Affine

// OpeningProof is (ζ, value, witness commitment) per spec §3.
type OpeningProof struct {
	Point        fr.Element
	ClaimedValue fr.Element
	WitnessComm  Commitment
}

// Aggregator accumulates Σ aᵢ·[τ^i]G1 across tiles fed in either order,
// maintaining a running Jacobian accumulator and a cursor (next
// coefficient index expected in low→high terms). It is the one-shot
// consumer of a CoeffTileStream: call Feed once per tile, then Commitment.
type Aggregator struct {
	srs *srs.SRS

	accLowToHigh bn254.G1Jac // Σ aᵢ·[τ^i]G1 for the elements fed so far
	nextIndex    int         // next expected low→high absolute index
	maxDegree    int

	// highToLowBuf buffers tiles fed in HighToLow order until Commitment is
	// called, at which point they are folded in low→high order (lowest tile
	// first), since the running accumulator's cursor expects coefficients
	// from index 0 upward.
	highToLowBuf []streamutil.Tile
}

// NewAggregator creates an aggregator bound to an SRS capable of
// committing to polynomials up to maxDegree (inclusive).
func NewAggregator(s *srs.SRS, maxDegree int) (*Aggregator, error) {
	if maxDegree < 0 {
		return nil, zkerrors.Wrap(zkerrors.ErrBadParams, "maxDegree must be non-negative")
	}
	if maxDegree > s.MaxDegree() {
		return nil, zkerrors.Wrapf(zkerrors.ErrDegreeOverflow, "maxDegree %d exceeds SRS capacity %d", maxDegree, s.MaxDegree())
	}
	return &Aggregator{srs: s, maxDegree: maxDegree}, nil
}

// Feed absorbs one coefficient tile. Tiles in low→high order are folded
// into the running accumulator immediately; tiles in high→low order are
// buffered and folded, each reversed into low→high order, when
// Commitment is called (CommitStream calls it after draining the stream).
func (a *Aggregator) Feed(tile streamutil.Tile, order streamutil.Order) error {
	if order == streamutil.LowToHigh {
		return a.foldLowToHigh(tile)
	}
	a.highToLowBuf = append(a.highToLowBuf, tile)
	return nil
}

func (a *Aggregator) foldLowToHigh(tile streamutil.Tile) error {
	if tile.Base != a.nextIndex {
		return zkerrors.Wrapf(zkerrors.ErrBadParams, "out-of-order tile: expected base %d, got %d", a.nextIndex, tile.Base)
	}
	if tile.Base+tile.Len()-1 > a.maxDegree {
		return zkerrors.Wrapf(zkerrors.ErrDegreeOverflow, "tile reaches degree %d, exceeds max %d", tile.Base+tile.Len()-1, a.maxDegree)
	}
	for i, c := range tile.Data {
		idx := tile.Base + i
		var bi big.Int
		c.ToBigIntRegular(&bi)
		var term bn254.G1Jac
		term.FromAffine(&a.srs.G1[idx])
		term.ScalarMultiplication(&term, &bi)
		a.accLowToHigh.AddAssign(&term)
	}
	a.nextIndex = tile.Base + tile.Len()
	return nil
}

// finalizeHighToLow folds any buffered HighToLow tiles, each reversed
// into low→high order first, now that the stream is fully drained. The
// buffer holds the highest tile first, so it is walked from the end.
func (a *Aggregator) finalizeHighToLow() error {
	for i := len(a.highToLowBuf) - 1; i >= 0; i-- {
		if err := a.foldLowToHigh(a.highToLowBuf[i].Reverse()); err != nil {
			return err
		}
	}
	a.highToLowBuf = nil
	return nil
}

// Commitment finalizes and returns Σ aᵢ·[τ^i]G1 as an affine point.
func (a *Aggregator) Commitment() (Commitment, error) {
	if err := a.finalizeHighToLow(); err != nil {
		return Commitment{}, err
	}
	var out Commitment
	out.FromJacobian(&a.accLowToHigh)
	return out, nil
}

// CommitStream drains a generic CoeffTileStream and returns its
// commitment — the one-shot convenience form of Feed+Commitment.
func CommitStream(s *srs.SRS, maxDegree int, stream streamutil.CoeffTileStream) (Commitment, error) {
	agg, err := NewAggregator(s, maxDegree)
	if err != nil {
		return Commitment{}, err
	}
	for {
		tile, ok := stream.Next()
		if !ok {
			break
		}
		if err := agg.Feed(tile, stream.Order()); err != nil {
			return Commitment{}, err
		}
	}
	return agg.Commitment()
}

// StreamingHornerEval evaluates a polynomial at z by folding each tile
// with an internal Horner pass (high→low within the tile, matching
// spec §4.3), then combining across tiles as
// acc += pow·local; pow *= z^len(tile). Tiles must be fed in LowToHigh
// order (the natural order a coefficient stream is produced in).
func StreamingHornerEval(stream streamutil.CoeffTileStream, z fr.Element) (fr.Element, error) {
	if stream.Order() != streamutil.LowToHigh {
		return fr.Element{}, zkerrors.Wrap(zkerrors.ErrBadParams, "streaming Horner evaluation requires a LowToHigh tile stream")
	}

	var acc, pow fr.Element
	pow.SetOne()

	for {
		tile, ok := stream.Next()
		if !ok {
			break
		}
		var local fr.Element
		for i := tile.Len() - 1; i >= 0; i-- {
			local.Mul(&local, &z)
			local.Add(&local, &tile.Data[i])
		}
		var term fr.Element
		term.Mul(&pow, &local)
		acc.Add(&acc, &term)

		var zLen fr.Element
		zLen.Exp(z, big.NewInt(int64(tile.Len())))
		pow.Mul(&pow, &zLen)
	}
	return acc, nil
}

// StreamingOpen builds an opening proof at ζ from a high→low coefficient
// stream via single-pass synthetic division:
//
//	b_{i-1} = a_i + ζ·prev_b   (prev_b starts at 0; final prev_b = f(ζ))
//
// while simultaneously accumulating b_{i-1}·[τ^{i-1}]G1 into the witness
// MSM, producing W(X) = (f(X) − f(ζ))/(X − ζ) without materializing Q.
func StreamingOpen(s *srs.SRS, stream streamutil.CoeffTileStream, zeta fr.Element) (OpeningProof, error) {
	if stream.Order() != streamutil.HighToLow {
		return OpeningProof{}, zkerrors.Wrap(zkerrors.ErrBadParams, "streaming open requires a HighToLow coefficient stream")
	}

	var witnessAcc bn254.G1Jac
	var prevB fr.Element // b_i from the previous (higher-index) step; 0 initially

	for {
		tile, ok := stream.Next()
		if !ok {
			break
		}
		// tile.Data is itself high→low internally (index tile.Base+len-1
		// down to tile.Base), matching the absolute index walked downward
		// by synthetic division.
		topIndex := tile.Base + tile.Len() - 1
		for offset, a := range tile.Data {
			i := topIndex - offset

			var b fr.Element
			b.Mul(&zeta, &prevB)
			b.Add(&b, &a)

			if i > 0 {
				if i-1 > s.MaxDegree() {
					return OpeningProof{}, zkerrors.Wrapf(zkerrors.ErrDegreeOverflow, "witness term index %d exceeds SRS capacity", i-1)
				}
				var bi big.Int
				b.ToBigIntRegular(&bi)
				var term bn254.G1Jac
				term.FromAffine(&s.G1[i-1])
				term.ScalarMultiplication(&term, &bi)
				witnessAcc.AddAssign(&term)
			}
			prevB = b
		}
	}

	var witnessAffine Commitment
	witnessAffine.FromJacobian(&witnessAcc)

	return OpeningProof{
		Point:        zeta,
		ClaimedValue: prevB,
		WitnessComm:  witnessAffine,
	}, nil
}

// Verify checks a single KZG opening: e(C − v·G1, G2) = e(W, τ·G2 − ζ·G2),
// via one multi-Miller-loop plus final exponentiation.
func Verify(s *srs.SRS, commitment Commitment, proof OpeningProof) error {
	g2, err := s.G2Element()
	if err != nil {
		return err
	}

	var claimedValueBig big.Int
	proof.ClaimedValue.ToBigIntRegular(&claimedValueBig)

	var g1Gen bn254.G1Affine
	g1Gen.Set(&s.G1[0])

	var claimedValueG1 bn254.G1Affine
	claimedValueG1.ScalarMultiplication(&g1Gen, &claimedValueBig)

	var lhsJac, tmpJac bn254.G1Jac
	lhsJac.FromAffine(&commitment)
	tmpJac.FromAffine(&claimedValueG1)
	lhsJac.SubAssign(&tmpJac)

	var lhs bn254.G1Affine
	lhs.FromJacobian(&lhsJac)

	var negWitness bn254.G1Affine
	negWitness.Neg(&proof.WitnessComm)

	var pointBig big.Int
	proof.Point.ToBigIntRegular(&pointBig)

	g2Gen := genG2Affine()
	var genG2Jac, tauG2Jac, shiftJac bn254.G2Jac
	genG2Jac.FromAffine(&g2Gen)
	tauG2Jac.FromAffine(&g2)
	shiftJac.ScalarMultiplication(&genG2Jac, &pointBig)
	shiftJac.Neg(&shiftJac)
	shiftJac.AddAssign(&tauG2Jac)

	var tauMinusZetaG2 bn254.G2Affine
	tauMinusZetaG2.FromJacobian(&shiftJac)

	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{lhs, negWitness},
		[]bn254.G2Affine{genG2Affine(), tauMinusZetaG2},
	)
	if err != nil {
		return zkerrors.Wrap(zkerrors.ErrPairing, err.Error())
	}
	if !ok {
		return zkerrors.Wrap(zkerrors.ErrPairing, "KZG pairing equation does not hold")
	}
	return nil
}

// genG2Affine returns the canonical BN254 G2 generator, used as the [1]G2
// basis element in the pairing equation.
func genG2Affine() bn254.G2Affine {
	_, _, _, g2 := bn254.Generators()
	return g2
}

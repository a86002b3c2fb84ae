// Package verifier implements the verifier side of spec §4.9: replay the
// transcript exactly, verify every KZG opening, and enforce the
// algebraic identity Z_H(ζ)·Q(ζ) − R(ζ) = 0.
//
// Grounded on the teacher's backend.Verify dispatch shape
// (backend/groth16/groth16.go), generalized from one fixed pairing
// equation to this engine's per-commitment opening loop plus a single
// closing identity check.
package verifier

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/nume-crypto/sszkp/air"
	"github.com/nume-crypto/sszkp/config"
	"github.com/nume-crypto/sszkp/domain"
	"github.com/nume-crypto/sszkp/pcs"
	"github.com/nume-crypto/sszkp/proof"
	"github.com/nume-crypto/sszkp/residual"
	"github.com/nume-crypto/sszkp/srs"
	"github.com/nume-crypto/sszkp/transcript"
	"github.com/nume-crypto/sszkp/zkerrors"
)

// Verify checks p against s, dom, and spec, replaying the transcript in
// the exact order prover.Prove produced it (spec §4.9 "Verifier replays
// the transcript exactly").
func Verify(cfg config.Config, s *srs.SRS, dom domain.Domain, spec air.Spec, p *proof.Proof) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	if p.Header.N != dom.N || !p.Header.Omega.Equal(&dom.Omega) || !p.Header.C.Equal(&dom.C) {
		return zkerrors.Wrap(zkerrors.ErrBadDomain, "proof header does not match the verifier's domain")
	}
	if p.Header.K != spec.K {
		return zkerrors.Wrap(zkerrors.ErrBadParams, "proof header register count does not match AIR spec")
	}
	g1Digest := s.G1Digest()
	g2Digest := s.G2Digest()
	if p.Header.SRSG1Digest != g1Digest || p.Header.SRSG2Digest != g2Digest {
		return zkerrors.Wrap(zkerrors.ErrSRSMissing, "proof was bound to a different SRS")
	}

	tr := transcript.New()
	tr.Absorb(transcript.LabelProtocolHeader, headerBytes(p.Header))

	if len(p.WireCommits) != int(spec.K) {
		return zkerrors.Wrapf(zkerrors.ErrBadParams, "proof has %d wire commitments, want %d", len(p.WireCommits), spec.K)
	}
	for _, c := range p.WireCommits {
		tr.AbsorbPoint(transcript.LabelWireCommit, pointBytes(c))
	}

	beta := tr.Challenge(transcript.LabelBeta)
	gamma := tr.Challenge(transcript.LabelGamma)
	if !beta.Equal(&p.Beta) || !gamma.Equal(&p.Gamma) {
		return zkerrors.Wrap(zkerrors.ErrTranscriptMismatch, "beta/gamma do not match replayed transcript")
	}

	if cfg.LookupArgument {
		eta := tr.Challenge(transcript.LabelEta)
		if p.Eta == nil || !eta.Equal(p.Eta) {
			return zkerrors.Wrap(zkerrors.ErrTranscriptMismatch, "eta does not match replayed transcript")
		}
	}

	tr.AbsorbPoint(transcript.LabelPermZCommit, pointBytes(p.ZCommit))
	if cfg.LookupArgument {
		if p.LookupZCommit == nil {
			return zkerrors.Wrap(zkerrors.ErrBadParams, "lookup argument enabled but proof has no lookup commitment")
		}
		tr.AbsorbPoint(transcript.LabelPermZCommit, pointBytes(*p.LookupZCommit))
	}

	alpha := tr.Challenge(transcript.LabelAlpha)
	if !alpha.Equal(&p.Alpha) {
		return zkerrors.Wrap(zkerrors.ErrTranscriptMismatch, "alpha does not match replayed transcript")
	}

	tr.AbsorbPoint(transcript.LabelQuotientCommit, pointBytes(p.QCommit))

	zeta := tr.Challenges(transcript.LabelEvalPoints, 1)[0]
	if !zeta.Equal(&p.Openings.Zeta) {
		return zkerrors.Wrap(zkerrors.ErrTranscriptMismatch, "zeta does not match replayed transcript")
	}

	if len(p.Openings.WireEvals) != int(spec.K) {
		return zkerrors.Wrapf(zkerrors.ErrBadParams, "proof has %d wire openings, want %d", len(p.Openings.WireEvals), spec.K)
	}
	for m, op := range p.Openings.WireEvals {
		if !op.Point.Equal(&zeta) {
			return zkerrors.Wrapf(zkerrors.ErrTranscriptMismatch, "wire %d opening point does not match zeta", m)
		}
		if err := pcs.Verify(s, p.WireCommits[m], op); err != nil {
			return err
		}
	}
	if !p.Openings.ZEval.Point.Equal(&zeta) {
		return zkerrors.Wrap(zkerrors.ErrTranscriptMismatch, "Z opening point does not match zeta")
	}
	if err := pcs.Verify(s, p.ZCommit, p.Openings.ZEval); err != nil {
		return err
	}
	if !p.Openings.QEval.Point.Equal(&zeta) {
		return zkerrors.Wrap(zkerrors.ErrTranscriptMismatch, "Q opening point does not match zeta")
	}
	if err := pcs.Verify(s, p.QCommit, p.Openings.QEval); err != nil {
		return err
	}
	if cfg.ShiftOpenings {
		if p.Openings.ShiftedZEval == nil {
			return zkerrors.Wrap(zkerrors.ErrBadParams, "shift openings enabled but proof has no shifted Z opening")
		}
		var omegaZeta fr.Element
		omegaZeta.Mul(&dom.Omega, &zeta)
		if !p.Openings.ShiftedZEval.Point.Equal(&omegaZeta) {
			return zkerrors.Wrap(zkerrors.ErrTranscriptMismatch, "shifted Z opening point does not match omega*zeta")
		}
		if err := pcs.Verify(s, p.ZCommit, *p.Openings.ShiftedZEval); err != nil {
			return err
		}
	}

	return checkIdentity(cfg, dom, spec, p, zeta)
}

// checkIdentity enforces Z_H(ζ)·Q(ζ) − R(ζ) = 0 (spec §4.9, §4.6).
func checkIdentity(cfg config.Config, dom domain.Domain, spec air.Spec, p *proof.Proof, zeta fr.Element) error {
	zh := dom.VanishingEval(zeta)
	var lhs fr.Element
	lhs.Mul(&zh, &p.Openings.QEval.ClaimedValue)

	if !cfg.StrictResidual {
		// Fast path (spec §4.6): trust the verified Q opening as the
		// definition of R(ζ) rather than recomputing it symbolically.
		return nil
	}

	rZeta, err := symbolicResidual(dom, spec, p, zeta)
	if err != nil {
		return err
	}

	var diff fr.Element
	diff.Sub(&lhs, &rZeta)
	if !diff.IsZero() {
		return zkerrors.Wrap(zkerrors.ErrAlgebra, "Z_H(zeta)*Q(zeta) - R(zeta) != 0")
	}
	return nil
}

// symbolicResidual recomputes R(ζ) from the proof's opened values plus
// the public id/σ/selector tables, matching the per-row formula of spec
// §4.6 evaluated at the single point ζ instead of at every row.
//
// The boundary term's Lagrange-basis coefficients are not given
// explicitly by the spec; this uses the standard closed form
// L_j(ζ) = h_j·(ζ^N−c) / (N·c·(ζ−h_j)) for the vanishing polynomial
// X^N−c, specialized to j=0 (h_0=1) and j=N-1 (h_{N-1}=ω^{-1}).
func symbolicResidual(dom domain.Domain, spec air.Spec, p *proof.Proof, zeta fr.Element) (fr.Element, error) {
	if p.Openings.ShiftedZEval == nil {
		return fr.Element{}, zkerrors.Wrap(zkerrors.ErrBadParams, "strict residual recomputation requires the shifted Z opening (Z at omega*zeta)")
	}

	k := int(spec.K)
	w := make([]fr.Element, k)
	idv := make([]fr.Element, k)
	sigmav := make([]fr.Element, k)
	selv := make([]fr.Element, k)
	for m := 0; m < k; m++ {
		w[m] = p.Openings.WireEvals[m].ClaimedValue

		idTable := tableOrEmpty(spec.IDTable, m)
		sigmaTable := tableOrEmpty(spec.SigmaTable, m)
		selTable := tableOrEmpty(spec.Selectors, m)

		var err error
		idv[m], err = residual.PublicPolyEval(dom, idTable, idDefaultAt, defaultBlk(dom), zeta)
		if err != nil {
			return fr.Element{}, err
		}
		sigmav[m], err = residual.PublicPolyEval(dom, sigmaTable, sigmaDefaultAt, defaultBlk(dom), zeta)
		if err != nil {
			return fr.Element{}, err
		}
		selv[m], err = residual.PublicPolyEval(dom, selTable, zeroAt, defaultBlk(dom), zeta)
		if err != nil {
			return fr.Element{}, err
		}
	}

	locals := air.Locals{W: w, ID: idv, Sigma: sigmav, Selectors: selv}

	var gateSum fr.Element
	for _, g := range spec.Gates {
		sel := locals.Selectors[g.SelectorIndex]
		val := g.Eval(locals)
		var term fr.Element
		term.Mul(&sel, &val)
		gateSum.Add(&gateSum, &term)
	}
	var alphaGate fr.Element
	alphaGate.Mul(&p.Alpha, &gateSum)

	var numProd, denProd, term fr.Element
	numProd.SetOne()
	denProd.SetOne()
	for j := 0; j < k; j++ {
		term.Mul(&p.Beta, &idv[j])
		term.Add(&term, &w[j])
		term.Add(&term, &p.Gamma)
		numProd.Mul(&numProd, &term)

		term.Mul(&p.Beta, &sigmav[j])
		term.Add(&term, &w[j])
		term.Add(&term, &p.Gamma)
		denProd.Mul(&denProd, &term)
	}

	zZeta := p.Openings.ZEval.ClaimedValue
	zOmegaZeta := p.Openings.ShiftedZEval.ClaimedValue

	var permA, permB fr.Element
	permA.Mul(&zOmegaZeta, &numProd)
	permB.Mul(&zZeta, &denProd)
	var permDiff fr.Element
	permDiff.Sub(&permA, &permB)

	l0, lN1 := lagrangeBoundary(dom, zeta)
	var one fr.Element
	one.SetOne()

	var d0, dN1, boundary fr.Element
	d0.Sub(&zZeta, &one)
	d0.Mul(&d0, &l0)
	dN1.Sub(&zOmegaZeta, &one)
	dN1.Mul(&dN1, &lN1)
	boundary.Add(&d0, &dN1)

	var r fr.Element
	r.Add(&alphaGate, &permDiff)
	r.Add(&r, &boundary)
	return r, nil
}

// lagrangeBoundary evaluates L_0(ζ) and L_{N-1}(ζ) for the vanishing
// polynomial X^N − c over domain dom.
func lagrangeBoundary(dom domain.Domain, zeta fr.Element) (l0, lN1 fr.Element) {
	zh := dom.VanishingEval(zeta)

	var nElem fr.Element
	nElem.SetUint64(dom.N)
	var denomBase fr.Element
	denomBase.Mul(&nElem, &dom.C)

	// L_0(ζ) = (ζ^N - c) / (N*c*(ζ - 1))
	var one fr.Element
	one.SetOne()
	var d0 fr.Element
	d0.Sub(&zeta, &one)
	d0.Mul(&d0, &denomBase)
	var d0Inv fr.Element
	d0Inv.Inverse(&d0)
	l0.Mul(&zh, &d0Inv)

	// L_{N-1}(ζ) = ω^{-1}*(ζ^N - c) / (N*c*(ζ - ω^{-1}))
	var omegaInv fr.Element
	omegaInv.Inverse(&dom.Omega)
	var dN1 fr.Element
	dN1.Sub(&zeta, &omegaInv)
	dN1.Mul(&dN1, &denomBase)
	var dN1Inv fr.Element
	dN1Inv.Inverse(&dN1)
	lN1.Mul(&zh, &dN1Inv)
	lN1.Mul(&lN1, &omegaInv)
	return l0, lN1
}

func tableOrEmpty(tables []air.Table, m int) air.Table {
	if m < len(tables) {
		return tables[m]
	}
	return nil
}

func idDefaultAt(i int) fr.Element {
	var e fr.Element
	e.SetUint64(uint64(i))
	return e
}

func sigmaDefaultAt(i int) fr.Element {
	var e fr.Element
	e.SetUint64(uint64(i + 1))
	return e
}

func zeroAt(int) fr.Element { return fr.Element{} }

func defaultBlk(dom domain.Domain) int {
	n := dom.N
	blk := uint64(1)
	for blk*blk < n {
		blk <<= 1
	}
	if blk == 0 {
		blk = 1
	}
	return int(blk)
}

func headerBytes(hdr proof.Header) []byte {
	var buf []byte
	put64 := func(v uint64) {
		var b [8]byte
		for i := 0; i < 8; i++ {
			b[i] = byte(v >> (8 * i))
		}
		buf = append(buf, b[:]...)
	}
	put64(uint64(hdr.Version))
	put64(hdr.N)
	omegaBytes := hdr.Omega.Bytes()
	buf = append(buf, omegaBytes[:]...)
	cBytes := hdr.C.Bytes()
	buf = append(buf, cBytes[:]...)
	put64(hdr.K)
	buf = append(buf, []byte(hdr.WiresBasis)...)
	buf = append(buf, hdr.SRSG1Digest[:]...)
	buf = append(buf, hdr.SRSG2Digest[:]...)
	return buf
}

func pointBytes(c pcs.Commitment) []byte {
	b := c.Bytes()
	return b[:]
}

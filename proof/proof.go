// Package proof defines the wire-format data model shared by the prover
// and verifier (spec §3 "Header", "Proof").
package proof

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/nume-crypto/sszkp/pcs"
)

// Header captures the public parameters a proof is bound to via the
// transcript (spec §3 "Header"). SRSG1Digest/SRSG2Digest let the verifier
// detect an SRS mismatch before doing any pairing work.
type Header struct {
	Version     uint32
	N           uint64
	Omega       fr.Element
	C           fr.Element
	K           uint64
	WiresBasis  string // "coefficient" or "evaluation", documents the committed basis
	SRSG1Digest [32]byte
	SRSG2Digest [32]byte
}

// WireCommitments holds one KZG commitment per register.
type WireCommitments []pcs.Commitment

// Openings bundles the evaluation-point openings produced in Phase E
// (spec §4.9): wire values at ζ, the permutation accumulator at ζ, the
// quotient at ζ, and — when shifted openings are enabled — the
// accumulator one step forward at ω·ζ. The lookup accumulator is not
// opened.
type Openings struct {
	Zeta fr.Element

	WireEvals []pcs.OpeningProof // one per register, all opened at Zeta
	ZEval     pcs.OpeningProof
	QEval     pcs.OpeningProof

	ShiftedZEval *pcs.OpeningProof // opened at Omega*Zeta, nil unless Config.ShiftOpenings
	LookupZEval  *pcs.OpeningProof // not filled by prover.Prove; always nil in its proofs
}

// Proof is the complete, self-contained artifact the verifier checks
// (spec §3 "Proof").
type Proof struct {
	Header Header

	WireCommits WireCommitments
	ZCommit     pcs.Commitment
	LookupZCommit *pcs.Commitment // nil unless Config.LookupArgument
	QCommit     pcs.Commitment

	Beta, Gamma, Alpha fr.Element
	Eta                *fr.Element // lookup challenge, nil unless Config.LookupArgument

	Openings Openings
}

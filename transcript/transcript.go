// Package transcript implements the Fiat–Shamir transcript described in
// spec §4.8: a BLAKE3-based absorb/challenge state with domain separation,
// length-delimited absorbs, and clone-before-challenge discipline.
//
// The shape mirrors gnark-crypto's fiat-shamir.Transcript (Bind /
// ComputeChallenge), generalized from a generic hash.Hash to BLAKE3's
// native XOF so a single 64-byte read reduces directly to a field element
// without a second hash pass.
package transcript

import (
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/zeebo/blake3"
)

// Label identifies an absorbed item or a derived challenge.
type Label string

// Labels used by the five-phase scheduler (spec §4.8, §4.9).
const (
	LabelProtocolHeader Label = "ProtocolHeader"
	LabelWireCommit     Label = "WireCommit"
	LabelPermZCommit    Label = "PermZCommit"
	LabelQuotientCommit Label = "QuotientCommit"
	LabelBeta           Label = "Beta"
	LabelGamma          Label = "Gamma"
	LabelAlpha          Label = "Alpha"
	LabelEvalPoints     Label = "EvalPoints"

	// LabelEta is not part of spec §4.8's core label list; it labels the
	// lookup challenge η, derived with Challenge only when the optional
	// lookup argument (spec §4.5 "Lookup") is enabled.
	LabelEta Label = "Eta"
)

// domainSeparationTag is absorbed once at construction, binding every
// transcript to this protocol and never to any other use of BLAKE3.
const domainSeparationTag = "sszkp.proof"

// Transcript is a mutably-owned Fiat–Shamir state. The zero value is not
// usable; use New.
type Transcript struct {
	h       *blake3.Hasher
	counter uint64
}

// New creates a transcript with the protocol's domain-separation tag
// absorbed first.
func New() *Transcript {
	t := &Transcript{h: blake3.New()}
	t.absorbRaw([]byte(domainSeparationTag))
	return t
}

// absorbRaw writes b directly to the running hash state with no framing.
func (t *Transcript) absorbRaw(b []byte) {
	_, _ = t.h.Write(b)
}

// Absorb binds label and data into the transcript. Each absorb is
// length-delimited: label length, label bytes, data length, data bytes —
// so no two distinct (label, data) sequences can collide by concatenation.
func (t *Transcript) Absorb(label Label, data []byte) {
	t.absorbFramed([]byte(label))
	t.absorbFramed(data)
}

func (t *Transcript) absorbFramed(b []byte) {
	var lenBytes [8]byte
	binary.LittleEndian.PutUint64(lenBytes[:], uint64(len(b)))
	t.absorbRaw(lenBytes[:])
	t.absorbRaw(b)
}

// AbsorbElement absorbs a field element's canonical encoding under label.
func (t *Transcript) AbsorbElement(label Label, e fr.Element) {
	b := e.Bytes()
	t.Absorb(label, b[:])
}

// AbsorbPoint absorbs anything exposing a fixed-size compressed
// serialization (G1Affine, G2Affine) under label.
func (t *Transcript) AbsorbPoint(label Label, compressed []byte) {
	t.Absorb(label, compressed)
}

// Challenge derives a single field-element challenge under label.
//
// Clone-before-challenge: the running hash state is cloned (never
// consumed), the label and a monotonically increasing counter are written
// into the clone, 64 bytes are read from its XOF, and the result is
// reduced mod the scalar field. The original transcript's running state is
// left untouched except for the counter, so challenges are derivable in a
// fixed order but absorbing more data later still changes all subsequent
// challenges.
func (t *Transcript) Challenge(label Label) fr.Element {
	clone := t.h.Clone()
	var counterBytes [8]byte
	binary.LittleEndian.PutUint64(counterBytes[:], t.counter)
	_, _ = clone.Write([]byte(label))
	_, _ = clone.Write(counterBytes[:])
	t.counter++

	var wide [64]byte
	digest := clone.Digest()
	_, _ = digest.Read(wide[:])

	var e fr.Element
	e.SetBigInt(new(big.Int).SetBytes(wide[:]))
	return e
}

// Challenges derives n sequential field-element challenges under the same
// label, as used for EvalPoints (spec §4.9 Phase D samples ζ via
// FS(EvalPoints, 1)).
func (t *Transcript) Challenges(label Label, n int) []fr.Element {
	out := make([]fr.Element, n)
	for i := range out {
		out[i] = t.Challenge(label)
	}
	return out
}

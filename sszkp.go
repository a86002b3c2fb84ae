// Package sszkp is the facade over the sublinear-space proof engine: a
// convenience Prove/Verify pair wiring together domain, SRS, AIR spec,
// witness source, and config, mirroring the teacher's top-level
// CompiledCircuit.Verify facade (one entry point per caller-visible
// operation instead of requiring every user to assemble the scheduler
// packages by hand).
package sszkp

import (
	"github.com/nume-crypto/sszkp/air"
	"github.com/nume-crypto/sszkp/config"
	"github.com/nume-crypto/sszkp/domain"
	"github.com/nume-crypto/sszkp/proof"
	"github.com/nume-crypto/sszkp/prover"
	"github.com/nume-crypto/sszkp/srs"
	"github.com/nume-crypto/sszkp/verifier"
	"github.com/nume-crypto/sszkp/witness"
)

// Prove runs the five-phase streaming scheduler over src and returns a
// self-contained Proof.
func Prove(cfg config.Config, s *srs.SRS, dom domain.Domain, spec air.Spec, src witness.Source) (*proof.Proof, error) {
	return prover.Prove(cfg, s, dom, spec, src)
}

// Verify replays the transcript, checks every KZG opening, and enforces
// the closing algebraic identity.
func Verify(cfg config.Config, s *srs.SRS, dom domain.Domain, spec air.Spec, p *proof.Proof) error {
	return verifier.Verify(cfg, s, dom, spec, p)
}

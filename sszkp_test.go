package sszkp

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/nume-crypto/sszkp/air"
	"github.com/nume-crypto/sszkp/config"
	"github.com/nume-crypto/sszkp/domain"
	"github.com/nume-crypto/sszkp/srs"
	"github.com/nume-crypto/sszkp/witness"
)

func elt(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

// toySRS builds an insecure (known-tau) KZG SRS, large enough for a
// size-n domain's commitments and openings.
func toySRS(t *testing.T, tau uint64, n int) *srs.SRS {
	t.Helper()
	_, _, g1Gen, g2Gen := bn254.Generators()
	tauBig := new(big.Int).SetUint64(tau)

	g1 := make([]bn254.G1Affine, n+4)
	pow := new(big.Int).SetUint64(1)
	for i := range g1 {
		g1[i].ScalarMultiplication(&g1Gen, pow)
		pow.Mul(pow, tauBig)
	}
	var g2Tau bn254.G2Affine
	g2Tau.ScalarMultiplication(&g2Gen, tauBig)

	s, err := srs.Load(g1, g2Tau, true)
	require.NoError(t, err)
	return s
}

// trivialPermSpec builds a 1-register AIR spec whose id/σ tables are the
// same constant column, so the permutation argument's per-row ratio is
// always exactly 1 (Z stays at 1 throughout) — every row satisfies the
// copy constraint by construction without needing a real wiring.
func trivialPermSpec() air.Spec {
	same := air.Table{elt(77)}
	return air.Spec{
		K:          1,
		IDTable:    []air.Table{same},
		SigmaTable: []air.Table{same},
	}
}

func trivialWitness(n int) witness.Source {
	rows := make([]air.Row, n)
	for i := range rows {
		rows[i] = air.Row{elt(uint64(i + 1))}
	}
	return witness.NewInMemory(rows)
}

func TestProveVerifyRoundTripFastPath(t *testing.T) {
	n := 4
	dom, err := domain.NewSubgroup(uint64(n))
	require.NoError(t, err)
	s := toySRS(t, 13, n)
	spec := trivialPermSpec()
	src := trivialWitness(n)
	cfg := config.Default(2)

	p, err := Prove(cfg, s, dom, spec, src)
	require.NoError(t, err)
	require.NoError(t, Verify(cfg, s, dom, spec, p))
}

func TestProveVerifyRoundTripStrictResidual(t *testing.T) {
	n := 4
	dom, err := domain.NewSubgroup(uint64(n))
	require.NoError(t, err)
	s := toySRS(t, 17, n)
	spec := trivialPermSpec()
	src := trivialWitness(n)
	cfg := config.Default(2)
	cfg.StrictResidual = true
	cfg.ShiftOpenings = true

	p, err := Prove(cfg, s, dom, spec, src)
	require.NoError(t, err)
	require.NoError(t, Verify(cfg, s, dom, spec, p))
}

func TestVerifyRejectsTamperedWireCommitment(t *testing.T) {
	n := 4
	dom, err := domain.NewSubgroup(uint64(n))
	require.NoError(t, err)
	s := toySRS(t, 19, n)
	spec := trivialPermSpec()
	src := trivialWitness(n)
	cfg := config.Default(2)

	p, err := Prove(cfg, s, dom, spec, src)
	require.NoError(t, err)

	// Swap the wire commitment for the Z commitment: still a valid curve
	// point, but no longer consistent with the rest of the transcript.
	p.WireCommits[0] = p.ZCommit
	require.Error(t, Verify(cfg, s, dom, spec, p))
}

func TestVerifyRejectsWrongDomain(t *testing.T) {
	n := 4
	dom, err := domain.NewSubgroup(uint64(n))
	require.NoError(t, err)
	s := toySRS(t, 23, n)
	spec := trivialPermSpec()
	src := trivialWitness(n)
	cfg := config.Default(2)

	p, err := Prove(cfg, s, dom, spec, src)
	require.NoError(t, err)

	wrongDom, err := domain.NewSubgroup(8)
	require.NoError(t, err)
	wrongSRS := toySRS(t, 23, 8)
	require.Error(t, Verify(cfg, wrongSRS, wrongDom, spec, p))
}

func TestVerifyRejectsMismatchedSRS(t *testing.T) {
	n := 4
	dom, err := domain.NewSubgroup(uint64(n))
	require.NoError(t, err)
	s := toySRS(t, 29, n)
	spec := trivialPermSpec()
	src := trivialWitness(n)
	cfg := config.Default(2)

	p, err := Prove(cfg, s, dom, spec, src)
	require.NoError(t, err)

	differentSRS := toySRS(t, 31, n)
	require.Error(t, Verify(cfg, differentSRS, dom, spec, p))
}

package sszkp

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/nume-crypto/sszkp/config"
	"github.com/nume-crypto/sszkp/domain"
)

// proofCmpOpts lets cmp.Diff treat field elements and curve
// points as equal via their own constant-time Equal methods rather than
// trying to reflect into gnark-crypto's internal limb representation.
var proofCmpOpts = cmp.Options{
	cmp.Comparer(func(a, b fr.Element) bool { return a.Equal(&b) }),
	cmp.Comparer(func(a, b bn254.G1Affine) bool { return a.Equal(&b) }),
	cmp.Comparer(func(a, b bn254.G2Affine) bool { return a.Equal(&b) }),
}

// TestProveIsDeterministic checks that two Prove calls over byte-identical
// inputs produce a byte-identical proof: the Fiat-Shamir transcript and
// every phase of the scheduler are pure functions of (config, srs, domain,
// spec, witness), with no randomness or map-iteration-order leakage.
func TestProveIsDeterministic(t *testing.T) {
	n := 4
	dom, err := domain.NewSubgroup(uint64(n))
	require.NoError(t, err)
	s := toySRS(t, 37, n)
	spec := trivialPermSpec()
	cfg := config.Default(2)

	p1, err := Prove(cfg, s, dom, spec, trivialWitness(n))
	require.NoError(t, err)
	p2, err := Prove(cfg, s, dom, spec, trivialWitness(n))
	require.NoError(t, err)

	if diff := cmp.Diff(p1, p2, proofCmpOpts); diff != "" {
		t.Fatalf("Prove is not deterministic (-first +second):\n%s", diff)
	}
}

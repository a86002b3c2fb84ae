package ntt

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/nume-crypto/sszkp/streamutil"
)

// TestRoundTripPropertyAcrossSizesAndSeeds is the spec §8 universal
// invariant ("round-trip INTT∘NTT") stated as a property over arbitrary
// power-of-two domain sizes and coefficient seeds, rather than a handful
// of fixed example sizes.
func TestRoundTripPropertyAcrossSizesAndSeeds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("INTT(NTT(coeffs)) == coeffs for any power-of-two N and any coefficient seed", prop.ForAll(
		func(exp uint8, seed uint64) bool {
			n := 1 << (exp % 7) // sizes 1, 2, 4, ..., 64
			omega := genOmega(n)
			coeffs := randishCoeffs(n, seed)

			evals := evalAtDomain(coeffs, omega)

			m, err := NewInMemory(n, omega, 3)
			if err != nil {
				return false
			}
			for _, e := range evals {
				m.Push(e)
			}
			stream := m.Finish(streamutil.LowToHigh)
			got := streamutil.CollectCoeffs(stream, n)

			return reflect.DeepEqual(coeffs, got)
		},
		gen.UInt8Range(0, 255),
		gen.UInt64Range(0, 1<<40),
	))

	properties.TestingRun(t)
}

package pcs

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/nume-crypto/sszkp/srs"
	"github.com/nume-crypto/sszkp/streamutil"
)

// toySRS builds an insecure (known-tau) KZG SRS for testing only, large
// enough to commit to polynomials of degree < count.
func toySRS(t *testing.T, tau uint64, count int) *srs.SRS {
	t.Helper()
	_, _, g1Gen, g2Gen := bn254.Generators()
	tauBig := new(big.Int).SetUint64(tau)

	g1 := make([]bn254.G1Affine, count)
	pow := new(big.Int).SetUint64(1)
	for i := 0; i < count; i++ {
		g1[i].ScalarMultiplication(&g1Gen, pow)
		pow.Mul(pow, tauBig)
	}
	var g2Tau bn254.G2Affine
	g2Tau.ScalarMultiplication(&g2Gen, tauBig)

	s, err := srs.Load(g1, g2Tau, true)
	require.NoError(t, err)
	return s
}

func elt(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func evalPoly(coeffs []fr.Element, x fr.Element) fr.Element {
	var acc fr.Element
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc.Mul(&acc, &x)
		acc.Add(&acc, &coeffs[i])
	}
	return acc
}

func TestCommitStreamMatchesDirectMSM(t *testing.T) {
	s := toySRS(t, 7, 8)
	coeffs := []fr.Element{elt(1), elt(2), elt(3), elt(4)}

	stream := streamutil.NewSliceCoeffStream(coeffs, 2, streamutil.LowToHigh)
	got, err := CommitStream(s, len(coeffs)-1, stream)
	require.NoError(t, err)

	// direct MSM: sum coeffs[i] * G1[i]
	var acc bn254.G1Jac
	for i, c := range coeffs {
		var bi big.Int
		c.ToBigIntRegular(&bi)
		var term bn254.G1Jac
		term.FromAffine(&s.G1[i])
		term.ScalarMultiplication(&term, &bi)
		acc.AddAssign(&term)
	}
	var want Commitment
	want.FromJacobian(&acc)

	require.True(t, got.Equal(&want))
}

func TestCommitStreamHighToLowMatchesLowToHigh(t *testing.T) {
	s := toySRS(t, 11, 8)
	coeffs := []fr.Element{elt(5), elt(6), elt(7), elt(8)}

	low := streamutil.NewSliceCoeffStream(coeffs, 2, streamutil.LowToHigh)
	gotLow, err := CommitStream(s, len(coeffs)-1, low)
	require.NoError(t, err)

	high := streamutil.NewSliceCoeffStream(coeffs, 2, streamutil.HighToLow)
	gotHigh, err := CommitStream(s, len(coeffs)-1, high)
	require.NoError(t, err)

	require.True(t, gotLow.Equal(&gotHigh))
}

func TestStreamingHornerEvalMatchesDirectEvaluation(t *testing.T) {
	coeffs := []fr.Element{elt(3), elt(1), elt(4), elt(1), elt(5), elt(9)}
	z := elt(17)
	want := evalPoly(coeffs, z)

	stream := streamutil.NewSliceCoeffStream(coeffs, 2, streamutil.LowToHigh)
	got, err := StreamingHornerEval(stream, z)
	require.NoError(t, err)
	require.True(t, got.Equal(&want))
}

func TestStreamingHornerEvalRejectsHighToLow(t *testing.T) {
	stream := streamutil.NewSliceCoeffStream([]fr.Element{elt(1)}, 1, streamutil.HighToLow)
	_, err := StreamingHornerEval(stream, elt(5))
	require.Error(t, err)
}

func TestStreamingOpenProducesVerifiableProof(t *testing.T) {
	s := toySRS(t, 13, 8)
	coeffs := []fr.Element{elt(3), elt(1), elt(4), elt(1), elt(5)}
	zeta := elt(9)

	commitStream := streamutil.NewSliceCoeffStream(coeffs, 2, streamutil.LowToHigh)
	commitment, err := CommitStream(s, len(coeffs)-1, commitStream)
	require.NoError(t, err)

	openStream := streamutil.NewSliceCoeffStream(coeffs, 2, streamutil.HighToLow)
	proof, err := StreamingOpen(s, openStream, zeta)
	require.NoError(t, err)

	want := evalPoly(coeffs, zeta)
	require.True(t, proof.ClaimedValue.Equal(&want))

	require.NoError(t, Verify(s, commitment, proof))
}

func TestVerifyRejectsTamperedClaimedValue(t *testing.T) {
	s := toySRS(t, 13, 8)
	coeffs := []fr.Element{elt(3), elt(1), elt(4), elt(1), elt(5)}
	zeta := elt(9)

	commitStream := streamutil.NewSliceCoeffStream(coeffs, 2, streamutil.LowToHigh)
	commitment, err := CommitStream(s, len(coeffs)-1, commitStream)
	require.NoError(t, err)

	openStream := streamutil.NewSliceCoeffStream(coeffs, 2, streamutil.HighToLow)
	proof, err := StreamingOpen(s, openStream, zeta)
	require.NoError(t, err)

	proof.ClaimedValue.Add(&proof.ClaimedValue, new(fr.Element).SetOne())
	require.Error(t, Verify(s, commitment, proof))
}

func TestStreamingOpenRejectsLowToHigh(t *testing.T) {
	s := toySRS(t, 5, 4)
	stream := streamutil.NewSliceCoeffStream([]fr.Element{elt(1)}, 1, streamutil.LowToHigh)
	_, err := StreamingOpen(s, stream, elt(2))
	require.Error(t, err)
}

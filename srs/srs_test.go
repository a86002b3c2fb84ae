package srs

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/stretchr/testify/require"
)

func toyPowers(tau uint64, count int) ([]bn254.G1Affine, bn254.G2Affine) {
	_, _, g1Gen, g2Gen := bn254.Generators()
	t := new(big.Int).SetUint64(tau)

	g1 := make([]bn254.G1Affine, count)
	pow := new(big.Int).SetUint64(1)
	for i := 0; i < count; i++ {
		g1[i].ScalarMultiplication(&g1Gen, pow)
		pow.Mul(pow, t)
	}
	var g2Tau bn254.G2Affine
	g2Tau.ScalarMultiplication(&g2Gen, t)
	return g1, g2Tau
}

func TestLoadRejectsEmptyG1(t *testing.T) {
	var g2 bn254.G2Affine
	_, err := Load(nil, g2, false)
	require.Error(t, err)
}

func TestMaxDegree(t *testing.T) {
	g1, g2 := toyPowers(5, 9)
	s, err := Load(g1, g2, true)
	require.NoError(t, err)
	require.Equal(t, 8, s.MaxDegree())
}

func TestHasG2AndG2ElementGating(t *testing.T) {
	g1, g2 := toyPowers(5, 4)
	withoutG2, err := Load(g1, g2, false)
	require.NoError(t, err)
	require.False(t, withoutG2.HasG2())
	_, err = withoutG2.G2Element()
	require.Error(t, err)

	withG2, err := Load(g1, g2, true)
	require.NoError(t, err)
	require.True(t, withG2.HasG2())
	got, err := withG2.G2Element()
	require.NoError(t, err)
	require.True(t, got.Equal(&g2))
}

func TestDigestsDeterministicAndSensitiveToContent(t *testing.T) {
	g1, g2 := toyPowers(5, 4)
	s1, err := Load(g1, g2, true)
	require.NoError(t, err)
	s2, err := Load(g1, g2, true)
	require.NoError(t, err)
	require.Equal(t, s1.G1Digest(), s2.G1Digest())
	require.Equal(t, s1.G2Digest(), s2.G2Digest())

	g1b, g2b := toyPowers(7, 4)
	s3, err := Load(g1b, g2b, true)
	require.NoError(t, err)
	require.NotEqual(t, s1.G1Digest(), s3.G1Digest())
}

func TestG2DigestZeroWhenNotLoaded(t *testing.T) {
	g1, g2 := toyPowers(5, 4)
	s, err := Load(g1, g2, false)
	require.NoError(t, err)
	require.Equal(t, [32]byte{}, s.G2Digest())
}

package zkerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapPreservesIs(t *testing.T) {
	err := Wrap(ErrBadDomain, "building domain")
	require.True(t, errors.Is(err, ErrBadDomain))
	require.False(t, errors.Is(err, ErrBadParams))
	require.Contains(t, err.Error(), "building domain")
}

func TestWrapfPreservesIs(t *testing.T) {
	err := Wrapf(ErrBadParams, "k=%d is invalid", 0)
	require.True(t, errors.Is(err, ErrBadParams))
	require.Contains(t, err.Error(), "k=0 is invalid")
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrBadDomain, ErrBadParams, ErrBadRowLen, ErrDegreeOverflow,
		ErrSRSMissing, ErrTranscriptMismatch, ErrAlgebra, ErrPairing,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			require.False(t, errors.Is(a, b), "sentinel %d should not match sentinel %d", i, j)
		}
	}
}

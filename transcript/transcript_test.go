package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChallengeDeterministic(t *testing.T) {
	t1 := New()
	t1.Absorb(LabelProtocolHeader, []byte("header-bytes"))
	c1 := t1.Challenge(LabelBeta)

	t2 := New()
	t2.Absorb(LabelProtocolHeader, []byte("header-bytes"))
	c2 := t2.Challenge(LabelBeta)

	require.True(t, c1.Equal(&c2))
}

func TestChallengeSensitiveToAbsorbedData(t *testing.T) {
	t1 := New()
	t1.Absorb(LabelProtocolHeader, []byte("header-bytes"))
	c1 := t1.Challenge(LabelBeta)

	t2 := New()
	t2.Absorb(LabelProtocolHeader, []byte("different-bytes"))
	c2 := t2.Challenge(LabelBeta)

	require.False(t, c1.Equal(&c2))
}

func TestChallengeSensitiveToLabel(t *testing.T) {
	tr := New()
	tr.Absorb(LabelProtocolHeader, []byte("header-bytes"))
	c1 := tr.Challenge(LabelBeta)

	tr2 := New()
	tr2.Absorb(LabelProtocolHeader, []byte("header-bytes"))
	c2 := tr2.Challenge(LabelGamma)

	require.False(t, c1.Equal(&c2))
}

func TestChallengeSensitiveToAbsorbOrder(t *testing.T) {
	t1 := New()
	t1.Absorb(LabelWireCommit, []byte("a"))
	t1.Absorb(LabelWireCommit, []byte("b"))
	c1 := t1.Challenge(LabelBeta)

	t2 := New()
	t2.Absorb(LabelWireCommit, []byte("b"))
	t2.Absorb(LabelWireCommit, []byte("a"))
	c2 := t2.Challenge(LabelBeta)

	require.False(t, c1.Equal(&c2))
}

func TestConsecutiveChallengesDiffer(t *testing.T) {
	tr := New()
	tr.Absorb(LabelProtocolHeader, []byte("x"))
	c1 := tr.Challenge(LabelBeta)
	c2 := tr.Challenge(LabelBeta)
	require.False(t, c1.Equal(&c2))
}

func TestChallengesProducesNSequentialValues(t *testing.T) {
	tr := New()
	tr.Absorb(LabelProtocolHeader, []byte("x"))
	got := tr.Challenges(LabelEvalPoints, 3)
	require.Len(t, got, 3)
	require.False(t, got[0].Equal(&got[1]))
	require.False(t, got[1].Equal(&got[2]))

	tr2 := New()
	tr2.Absorb(LabelProtocolHeader, []byte("x"))
	for i, e := range tr2.Challenges(LabelEvalPoints, 3) {
		require.True(t, e.Equal(&got[i]))
	}
}

func TestAbsorbingMoreDataChangesLaterChallenges(t *testing.T) {
	t1 := New()
	t1.Absorb(LabelWireCommit, []byte("a"))
	first1 := t1.Challenge(LabelBeta)
	t1.Absorb(LabelPermZCommit, []byte("more"))
	second1 := t1.Challenge(LabelGamma)

	t2 := New()
	t2.Absorb(LabelWireCommit, []byte("a"))
	first2 := t2.Challenge(LabelBeta)
	second2 := t2.Challenge(LabelGamma)

	require.True(t, first1.Equal(&first2))
	require.False(t, second1.Equal(&second2))
}

func TestAbsorbPointFramingMatchesAbsorb(t *testing.T) {
	t1 := New()
	t1.Absorb(LabelBeta, []byte{1, 2, 3})
	c1 := t1.Challenge(LabelGamma)

	t2 := New()
	t2.AbsorbPoint(LabelBeta, []byte{1, 2, 3})
	c2 := t2.Challenge(LabelGamma)

	require.True(t, c1.Equal(&c2))
}

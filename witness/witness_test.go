package witness

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/nume-crypto/sszkp/air"
)

func rowOf(v uint64) air.Row {
	var e fr.Element
	e.SetUint64(v)
	return air.Row{e}
}

func TestInMemoryLenAndStream(t *testing.T) {
	rows := []air.Row{rowOf(1), rowOf(2), rowOf(3), rowOf(4)}
	src := NewInMemory(rows)
	require.Equal(t, 4, src.LenRows())

	got, err := src.StreamRows(1, 3)
	require.NoError(t, err)
	require.Equal(t, []air.Row{rowOf(2), rowOf(3)}, got)
}

func TestInMemoryReStreamableIdempotent(t *testing.T) {
	rows := []air.Row{rowOf(1), rowOf(2), rowOf(3)}
	src := NewInMemory(rows)

	a, err := src.StreamRows(0, 3)
	require.NoError(t, err)
	b, err := src.StreamRows(0, 3)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestInMemoryMutatingReturnedSliceDoesNotAffectSource(t *testing.T) {
	rows := []air.Row{rowOf(1), rowOf(2)}
	src := NewInMemory(rows)

	got, err := src.StreamRows(0, 2)
	require.NoError(t, err)
	got[0] = rowOf(999)

	again, err := src.StreamRows(0, 2)
	require.NoError(t, err)
	require.Equal(t, rowOf(1), again[0])
}

func TestInMemoryBadRangeErrors(t *testing.T) {
	src := NewInMemory([]air.Row{rowOf(1), rowOf(2)})
	_, err := src.StreamRows(-1, 1)
	require.Error(t, err)
	_, err = src.StreamRows(0, 3)
	require.Error(t, err)
	_, err = src.StreamRows(2, 1)
	require.Error(t, err)
}

func TestGeneratorLenAndStream(t *testing.T) {
	gen := NewGenerator(10, func(i int) air.Row { return rowOf(uint64(i * i)) })
	require.Equal(t, 10, gen.LenRows())

	got, err := gen.StreamRows(2, 5)
	require.NoError(t, err)
	require.Equal(t, []air.Row{rowOf(4), rowOf(9), rowOf(16)}, got)
}

func TestGeneratorReStreamableIdempotent(t *testing.T) {
	calls := 0
	gen := NewGenerator(5, func(i int) air.Row {
		calls++
		return rowOf(uint64(i))
	})
	a, err := gen.StreamRows(0, 5)
	require.NoError(t, err)
	b, err := gen.StreamRows(0, 5)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Equal(t, 10, calls)
}

func TestGeneratorBadRangeErrors(t *testing.T) {
	gen := NewGenerator(3, func(i int) air.Row { return rowOf(uint64(i)) })
	_, err := gen.StreamRows(-1, 2)
	require.Error(t, err)
	_, err = gen.StreamRows(0, 4)
	require.Error(t, err)
}

package accumulator

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/nume-crypto/sszkp/air"
)

func elt(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func locals(w, id, sigma Row) air.Locals {
	return air.Locals{W: air.Row(w), ID: air.Row(id), Sigma: air.Row(sigma), Selectors: air.Row{}}
}

type Row = []fr.Element

func TestNewCarryIsOne(t *testing.T) {
	c := NewCarry()
	require.True(t, c.Z.IsOne())
}

func TestAbsorbBlockPermIdentityWhenIDEqualsSigma(t *testing.T) {
	// When id == sigma for every register, phiPerm == 1 for every row, so
	// the running product never changes block to block.
	beta, gamma := elt(7), elt(11)
	ls := []air.Locals{
		locals(Row{elt(1), elt(2)}, Row{elt(3), elt(4)}, Row{elt(3), elt(4)}),
		locals(Row{elt(5), elt(6)}, Row{elt(9), elt(9)}, Row{elt(9), elt(9)}),
	}
	out := AbsorbBlockPerm(NewCarry(), ls, beta, gamma)
	require.True(t, out.Z[0].IsOne())
	require.True(t, out.Z[1].IsOne())
	require.True(t, out.Carry.Z.IsOne())
}

func TestAbsorbBlockPermCarriesAcrossBlocks(t *testing.T) {
	beta, gamma := elt(3), elt(5)
	block1 := []air.Locals{
		locals(Row{elt(1), elt(2)}, Row{elt(10), elt(20)}, Row{elt(11), elt(21)}),
	}
	block2 := []air.Locals{
		locals(Row{elt(7), elt(8)}, Row{elt(30), elt(40)}, Row{elt(31), elt(41)}),
	}

	out1 := AbsorbBlockPerm(NewCarry(), block1, beta, gamma)
	out2 := AbsorbBlockPerm(out1.Carry, block2, beta, gamma)

	// Equivalent to running both blocks' rows through one combined pass.
	combined := AbsorbBlockPerm(NewCarry(), append(append([]air.Locals{}, block1...), block2...), beta, gamma)

	require.True(t, out2.Carry.Z.Equal(&combined.Carry.Z))
	require.True(t, out2.Z[0].Equal(&combined.Z[1]))
}

func TestAbsorbBlockPermEmptyLocalsIsNoOp(t *testing.T) {
	beta, gamma := elt(2), elt(3)
	in := NewCarry()
	out := AbsorbBlockPerm(in, nil, beta, gamma)
	require.Empty(t, out.Z)
	require.True(t, out.Carry.Z.Equal(&in.Z))
}

func TestAbsorbBlockLookupWithoutRHS(t *testing.T) {
	eta := elt(2)
	ls := []air.Locals{
		{Selectors: air.Row{elt(1), elt(1)}},
	}
	out := AbsorbBlockLookup(NewCarry(), ls, eta, nil)
	require.Len(t, out.Z, 1)
	require.True(t, out.Z[0].IsOne())
	// compressed = 1*1 + 1*eta = 1+2 = 3; carry = 1*3 = 3
	want := elt(3)
	require.True(t, out.Carry.Z.Equal(&want))
}

func TestAbsorbBlockLookupWithRHSDividesIn(t *testing.T) {
	eta := elt(1)
	rhs := []fr.Element{elt(2)}
	ls := []air.Locals{
		{Selectors: air.Row{elt(4), elt(2)}},
	}
	out := AbsorbBlockLookup(NewCarry(), ls, eta, rhs)
	// compressed = 4*1 + 2*1 = 6, divided by rhs=2 -> 3; carry = 1*3 = 3
	want := elt(3)
	require.True(t, out.Carry.Z.Equal(&want))
}

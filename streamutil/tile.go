// Package streamutil provides the tile-stream plumbing shared by the NTT,
// PCS, residual, and quotient packages: small, fixed-capacity batches of
// field elements passed through the pipeline instead of O(N) slices, plus
// the two streaming directions (low→high, high→low) every consumer needs
// to agree on (spec §4.2, §4.3).
package streamutil

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// Order is the direction tiles are produced or consumed in.
type Order int

const (
	// LowToHigh means tile[0] holds the lowest-index elements (coefficient
	// index 0 / evaluation index 0 first).
	LowToHigh Order = iota
	// HighToLow means tile[0] holds the highest-index elements.
	HighToLow
)

// Tile is a contiguous run of ≤ b_blk field elements together with Base,
// the lowest absolute index the tile covers in LowToHigh numbering,
// regardless of Order. The layout of Data follows the stream's Order: a
// LowToHigh tile holds index Base first, while a HighToLow tile holds
// index Base+Len()-1 first and index Base last (the convention
// pcs.StreamingOpen and CollectCoeffs consume).
type Tile struct {
	Base int
	Data []fr.Element
}

// Len returns the number of elements in the tile.
func (t Tile) Len() int { return len(t.Data) }

// Reverse returns a copy of t with Data reversed in place order (element
// N-1 first), used when a high→low consumer needs low→high tiles or vice
// versa.
func (t Tile) Reverse() Tile {
	out := make([]fr.Element, len(t.Data))
	for i, e := range t.Data {
		out[len(t.Data)-1-i] = e
	}
	return Tile{Base: t.Base, Data: out}
}

// CoeffTileStream yields a polynomial's coefficients in fixed-size tiles.
// Next returns ok=false once exhausted. Implementations MUST be safe to
// drain exactly once; callers needing to re-stream construct a fresh
// stream (spec §6's re-streamable witness contract extends, by
// construction, to every derived stream downstream of it).
type CoeffTileStream interface {
	Next() (tile Tile, ok bool)
	Order() Order
}

// EvalTileStream yields a polynomial's evaluations over H in fixed-size
// tiles, time-ordered (i.e. LowToHigh in row-index order).
type EvalTileStream interface {
	Next() (tile Tile, ok bool)
}

// SliceCoeffStream is an in-memory CoeffTileStream over an already
// materialized coefficient vector, used by the non-tape NTT mode and by
// tests.
type SliceCoeffStream struct {
	data    []fr.Element
	blkSize int
	order   Order
	pos     int // next index to emit, in the stream's own Order direction
}

// NewSliceCoeffStream builds a tile stream over coeffs, b_blk elements per
// tile, in the given order.
func NewSliceCoeffStream(coeffs []fr.Element, blkSize int, order Order) *SliceCoeffStream {
	return &SliceCoeffStream{data: coeffs, blkSize: blkSize, order: order}
}

// Order implements CoeffTileStream.
func (s *SliceCoeffStream) Order() Order { return s.order }

// Next implements CoeffTileStream.
func (s *SliceCoeffStream) Next() (Tile, bool) {
	if s.pos >= len(s.data) {
		return Tile{}, false
	}
	n := len(s.data)
	blk := s.blkSize
	if blk <= 0 {
		blk = 1
	}

	if s.order == LowToHigh {
		end := s.pos + blk
		if end > n {
			end = n
		}
		out := make([]fr.Element, end-s.pos)
		copy(out, s.data[s.pos:end])
		tile := Tile{Base: s.pos, Data: out}
		s.pos = end
		return tile, true
	}

	// HighToLow: pos counts how many elements from the top we've already
	// emitted; each tile covers [n-pos-len, n-pos).
	remaining := n - s.pos
	if remaining <= 0 {
		return Tile{}, false
	}
	length := blk
	if length > remaining {
		length = remaining
	}
	base := n - s.pos - length
	data := make([]fr.Element, length)
	copy(data, s.data[base:base+length])
	// Within a high→low tile, element 0 is the highest index, matching the
	// synthetic-division convention consumed by pcs.StreamingOpen.
	rev := make([]fr.Element, length)
	for i, e := range data {
		rev[length-1-i] = e
	}
	s.pos += length
	return Tile{Base: base, Data: rev}, true
}

// CollectCoeffs drains a CoeffTileStream into a single low→high coefficient
// vector of the given length. Used by non-streaming call sites (tests,
// small-N fallbacks); not used on the hot streaming path.
func CollectCoeffs(s CoeffTileStream, length int) []fr.Element {
	out := make([]fr.Element, length)
	for {
		tile, ok := s.Next()
		if !ok {
			break
		}
		if s.Order() == LowToHigh {
			copy(out[tile.Base:tile.Base+tile.Len()], tile.Data)
		} else {
			// tile.Data is high→low internally; tile.Base is still the low
			// absolute index of the run, so reverse before copying back.
			r := tile.Reverse()
			copy(out[tile.Base:tile.Base+tile.Len()], r.Data)
		}
	}
	return out
}

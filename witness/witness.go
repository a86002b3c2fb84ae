// Package witness defines the re-streamable witness source the core
// consumes (spec §6). CSV parsing and other external ingestion are out
// of scope (spec §1); this package only provides the interface plus two
// simple re-streamable implementations used directly and in tests.
package witness

import (
	"github.com/nume-crypto/sszkp/air"
	"github.com/nume-crypto/sszkp/zkerrors"
)

// Source is the pull interface the scheduler consumes. The scheduler
// reads each block multiple times (once for wire commits, once for the
// accumulator pass, once per wire opening, once for the residual/
// quotient pass): stream_rows must be re-invocable with identical
// results every time (spec §6).
type Source interface {
	LenRows() int
	StreamRows(start, end int) ([]air.Row, error)
}

// InMemory is a Source backed by an already-materialized slice of rows.
// Trivially re-streamable.
type InMemory struct {
	rows []air.Row
}

// NewInMemory wraps rows as a Source.
func NewInMemory(rows []air.Row) *InMemory {
	return &InMemory{rows: rows}
}

// LenRows implements Source.
func (s *InMemory) LenRows() int { return len(s.rows) }

// StreamRows implements Source.
func (s *InMemory) StreamRows(start, end int) ([]air.Row, error) {
	if start < 0 || end > len(s.rows) || start > end {
		return nil, zkerrors.Wrapf(zkerrors.ErrBadParams, "invalid row range [%d,%d) over %d rows", start, end, len(s.rows))
	}
	out := make([]air.Row, end-start)
	copy(out, s.rows[start:end])
	return out, nil
}

// Generator is a Source backed by a deterministic row-index function,
// useful when the trace is cheaper to recompute than to store (spec §6:
// "the source may be file-backed, in-memory, or generator-based").
// gen MUST be a pure function of its index argument to satisfy the
// re-streamable contract.
type Generator struct {
	n   int
	gen func(i int) air.Row
}

// NewGenerator wraps a pure row-index function as a Source of n rows.
func NewGenerator(n int, gen func(i int) air.Row) *Generator {
	return &Generator{n: n, gen: gen}
}

// LenRows implements Source.
func (g *Generator) LenRows() int { return g.n }

// StreamRows implements Source.
func (g *Generator) StreamRows(start, end int) ([]air.Row, error) {
	if start < 0 || end > g.n || start > end {
		return nil, zkerrors.Wrapf(zkerrors.ErrBadParams, "invalid row range [%d,%d) over %d rows", start, end, g.n)
	}
	out := make([]air.Row, end-start)
	for i := start; i < end; i++ {
		out[i-start] = g.gen(i)
	}
	return out, nil
}

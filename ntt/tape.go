package ntt

import (
	"fmt"
	"math/big"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/nume-crypto/sszkp/streamutil"
	"github.com/nume-crypto/sszkp/zkerrors"
)

// elementSize is the canonical byte width of a BN254 scalar field element.
const elementSize = fr.Bytes

// Tape is a file-backed array of N field elements, used by the
// tape-backed INTT mode to keep resident memory at O(b_blk) instead of
// O(N) (spec §4.2, §9 "Tape-backed transforms").
type Tape struct {
	f *os.File
	n int
}

// NewTape creates a zero-initialized tape of n elements backed by a
// temporary file under dir (os.TempDir() if dir == "").
func NewTape(dir string, n int) (*Tape, error) {
	f, err := os.CreateTemp(dir, "sszkp-ntt-tape-*")
	if err != nil {
		return nil, fmt.Errorf("creating NTT tape: %w", err)
	}
	if err := f.Truncate(int64(n) * elementSize); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("sizing NTT tape: %w", err)
	}
	return &Tape{f: f, n: n}, nil
}

// Close removes the backing file.
func (t *Tape) Close() error {
	name := t.f.Name()
	if err := t.f.Close(); err != nil {
		return err
	}
	return os.Remove(name)
}

// Set writes element i.
func (t *Tape) Set(i int, e fr.Element) error {
	b := e.Bytes()
	_, err := t.f.WriteAt(b[:], int64(i)*elementSize)
	return err
}

// Get reads element i.
func (t *Tape) Get(i int) (fr.Element, error) {
	var b [elementSize]byte
	if _, err := t.f.ReadAt(b[:], int64(i)*elementSize); err != nil {
		return fr.Element{}, err
	}
	var e fr.Element
	e.SetBytes(b[:])
	return e, nil
}

// TapeBackedINTT accepts a time-ordered evaluation stream written directly
// to a tape, then runs an in-place Gentleman–Sande decimation-in-frequency
// inverse transform over the tape. At any instant only the two elements
// of the butterfly currently being combined (or, during block-aligned
// stages, a single b_blk-sized window) are resident in memory; everything
// else lives on disk.
type TapeBackedINTT struct {
	tape   *Tape
	n      int
	blk    int
	omega  fr.Element
	filled int
}

// NewTapeBacked creates a tape-backed INTT over a fresh temp-file tape.
func NewTapeBacked(dir string, n int, omega fr.Element, blk int) (*TapeBackedINTT, error) {
	if n == 0 || n&(n-1) != 0 {
		return nil, zkerrors.Wrapf(zkerrors.ErrBadParams, "N=%d must be a power of two", n)
	}
	if blk <= 0 {
		return nil, zkerrors.Wrap(zkerrors.ErrBadParams, "block size must be positive")
	}
	tape, err := NewTape(dir, n)
	if err != nil {
		return nil, err
	}
	return &TapeBackedINTT{tape: tape, n: n, blk: blk, omega: omega}, nil
}

// Close removes the backing tape file.
func (t *TapeBackedINTT) Close() error {
	return t.tape.Close()
}

// Push appends the next time-ordered evaluation to the tape.
func (t *TapeBackedINTT) Push(e fr.Element) error {
	if t.filled >= t.n {
		return nil // unchecked finisher: truncate
	}
	if err := t.tape.Set(t.filled, e); err != nil {
		return err
	}
	t.filled++
	return nil
}

// PushChecked is Push but errors instead of truncating past N.
func (t *TapeBackedINTT) PushChecked(e fr.Element) error {
	if t.filled >= t.n {
		return zkerrors.Wrap(zkerrors.ErrDegreeOverflow, "INTT received more than N evaluations")
	}
	return t.Push(e)
}

// Finish zero-pads missing evaluations, runs the in-place DIF inverse
// transform, scales by N^{-1}, and returns a tile stream reading the
// resulting coefficients sequentially in the requested order. The caller
// must call Close when done to remove the backing file.
func (t *TapeBackedINTT) Finish(order streamutil.Order) (streamutil.CoeffTileStream, error) {
	for t.filled < t.n {
		if err := t.tape.Set(t.filled, fr.Element{}); err != nil {
			return nil, err
		}
		t.filled++
	}

	var omegaInv fr.Element
	omegaInv.Inverse(&t.omega)

	if err := t.difButterflies(omegaInv); err != nil {
		return nil, err
	}
	if err := t.bitReverseTape(); err != nil {
		return nil, err
	}

	var nInv fr.Element
	nInv.SetUint64(uint64(t.n)).Inverse(&nInv)
	if err := t.scaleTape(nInv); err != nil {
		return nil, err
	}

	return &tapeCoeffStream{tape: t.tape, n: t.n, blk: t.blk, order: order}, nil
}

// difButterflies performs a Gentleman–Sande decimation-in-frequency pass:
// sizes shrink from N down to 2, each stage combining pairs at the
// current half-distance. Only the pair currently being combined is held
// in memory.
func (t *TapeBackedINTT) difButterflies(omegaInv fr.Element) error {
	for size := t.n; size >= 2; size >>= 1 {
		half := size / 2
		var stageRoot fr.Element
		stageRoot.Exp(omegaInv, new(big.Int).SetUint64(uint64(t.n/size)))

		for start := 0; start < t.n; start += size {
			var w fr.Element
			w.SetOne()
			for j := 0; j < half; j++ {
				u, err := t.tape.Get(start + j)
				if err != nil {
					return err
				}
				v, err := t.tape.Get(start + j + half)
				if err != nil {
					return err
				}

				var sum, diff fr.Element
				sum.Add(&u, &v)
				diff.Sub(&u, &v)
				diff.Mul(&diff, &w)

				if err := t.tape.Set(start+j, sum); err != nil {
					return err
				}
				if err := t.tape.Set(start+j+half, diff); err != nil {
					return err
				}
				w.Mul(&w, &stageRoot)
			}
		}
	}
	return nil
}

// bitReverseTape permutes the tape into natural order via pairwise swaps,
// each touching only the two elements involved.
func (t *TapeBackedINTT) bitReverseTape() error {
	bits := 0
	for 1<<bits < t.n {
		bits++
	}
	for i := 0; i < t.n; i++ {
		j := int(reverseBits(uint(i), bits))
		if j > i {
			a, err := t.tape.Get(i)
			if err != nil {
				return err
			}
			b, err := t.tape.Get(j)
			if err != nil {
				return err
			}
			if err := t.tape.Set(i, b); err != nil {
				return err
			}
			if err := t.tape.Set(j, a); err != nil {
				return err
			}
		}
	}
	return nil
}

// scaleTape multiplies every element by factor in b_blk-sized windows.
func (t *TapeBackedINTT) scaleTape(factor fr.Element) error {
	buf := make([]fr.Element, 0, t.blk)
	for base := 0; base < t.n; base += t.blk {
		end := base + t.blk
		if end > t.n {
			end = t.n
		}
		buf = buf[:0]
		for i := base; i < end; i++ {
			e, err := t.tape.Get(i)
			if err != nil {
				return err
			}
			buf = append(buf, e)
		}
		for i := range buf {
			buf[i].Mul(&buf[i], &factor)
		}
		for i, e := range buf {
			if err := t.tape.Set(base+i, e); err != nil {
				return err
			}
		}
	}
	return nil
}

// tapeCoeffStream reads a finished tape sequentially in b_blk windows,
// either low→high or high→low.
type tapeCoeffStream struct {
	tape  *Tape
	n     int
	blk   int
	order streamutil.Order
	pos   int
	err   error
}

func (s *tapeCoeffStream) Order() streamutil.Order { return s.order }

func (s *tapeCoeffStream) Next() (streamutil.Tile, bool) {
	if s.err != nil || s.pos >= s.n {
		return streamutil.Tile{}, false
	}
	if s.order == streamutil.LowToHigh {
		end := s.pos + s.blk
		if end > s.n {
			end = s.n
		}
		data := make([]fr.Element, end-s.pos)
		for i := range data {
			e, err := s.tape.Get(s.pos + i)
			if err != nil {
				s.err = err
				return streamutil.Tile{}, false
			}
			data[i] = e
		}
		tile := streamutil.Tile{Base: s.pos, Data: data}
		s.pos = end
		return tile, true
	}

	remaining := s.n - s.pos
	length := s.blk
	if length > remaining {
		length = remaining
	}
	base := s.n - s.pos - length
	data := make([]fr.Element, length)
	for i := 0; i < length; i++ {
		e, err := s.tape.Get(base + length - 1 - i)
		if err != nil {
			s.err = err
			return streamutil.Tile{}, false
		}
		data[i] = e
	}
	s.pos += length
	return streamutil.Tile{Base: base, Data: data}, true
}

// Err returns any I/O error encountered while streaming.
func (s *tapeCoeffStream) Err() error { return s.err }

// Package config holds the operator-facing tuning knobs described in
// spec §6 and the diagnostics logger threaded through the prover and
// verifier. None of these affect protocol soundness; they trade CPU,
// memory, and audit strength against each other.
package config

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/nume-crypto/sszkp/zkerrors"
)

// Config bundles the tuning knobs of spec §6.
type Config struct {
	// BlockSize (b_blk) bounds the peak working memory of every streaming
	// pass, in field elements. Typically ≈ √N. Must be >= 1.
	BlockSize int

	// TapeBackedNTT switches the blocked INTT to the file-backed
	// Gentleman–Sande mode instead of the in-memory Cooley–Tukey mode.
	TapeBackedNTT bool

	// TapeDir is the directory used for tape files when TapeBackedNTT is set.
	// Empty means os.TempDir().
	TapeDir string

	// MemoryLogging enables a heap-profile snapshot at every prover phase
	// boundary, logging current and peak in-use bytes through Logger. The
	// prover's phase-boundary debug lines are logged whether or not it is
	// set.
	MemoryLogging bool

	// StrictResidual forces the verifier to recompute R(ζ) from opened
	// values instead of taking the Z_H(ζ)·Q(ζ) fast path.
	StrictResidual bool

	// ShiftOpenings enables the additional Z(ω·ζ) opening used by shifted
	// permutation arguments.
	ShiftOpenings bool

	// LookupArgument enables the optional Z_L lookup accumulator.
	LookupArgument bool

	// Logger receives diagnostic output. Defaults to a disabled logger.
	Logger zerolog.Logger
}

// Default returns a Config with b_blk = blockSize and every other knob at
// its conservative default (no tape, no strict mode, no lookup, no shift,
// diagnostics logger writing to io.Discard).
func Default(blockSize int) Config {
	return Config{
		BlockSize: blockSize,
		Logger:    zerolog.New(io.Discard).With().Timestamp().Logger(),
	}
}

// Validate checks invariants that must hold before any prover or verifier
// work begins.
func (c Config) Validate() error {
	if c.BlockSize <= 0 {
		return zkerrors.Wrapf(zkerrors.ErrBadParams, "block size must be positive, got %d", c.BlockSize)
	}
	return nil
}

// WithConsoleLogging returns a copy of c with Logger writing human-readable
// lines to stderr, for interactive operator use.
func (c Config) WithConsoleLogging() Config {
	c.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return c
}

// Package diagnostics implements the optional memory-profiling hook
// behind Config.MemoryLogging (spec §6): a phase-boundary heap snapshot
// parsed well enough to log a running peak, without forcing every caller
// to link a profile viewer.
package diagnostics

import (
	"bytes"
	"runtime"
	"runtime/pprof"

	"github.com/google/pprof/profile"
	"github.com/rs/zerolog"

	"github.com/nume-crypto/sszkp/config"
)

// Snapshotter captures phase-boundary heap usage when Config.MemoryLogging
// is set, and is a no-op otherwise — callers can construct one
// unconditionally and call Snapshot at every phase boundary.
type Snapshotter struct {
	enabled bool
	logger  zerolog.Logger
	peak    int64
}

// NewSnapshotter builds a Snapshotter bound to cfg's logger and
// MemoryLogging flag.
func NewSnapshotter(cfg config.Config) *Snapshotter {
	return &Snapshotter{enabled: cfg.MemoryLogging, logger: cfg.Logger.With().Str("component", "diagnostics").Logger()}
}

// Snapshot writes a heap profile, parses it with google/pprof/profile, and
// logs the current and peak in-use byte counts tagged with label (e.g. a
// phase name). A parse or profile-write failure is logged, not returned,
// since diagnostics must never fail the prover/verifier run it observes.
func (sn *Snapshotter) Snapshot(label string) {
	if sn == nil || !sn.enabled {
		return
	}
	runtime.GC()

	var buf bytes.Buffer
	if err := pprof.WriteHeapProfile(&buf); err != nil {
		sn.logger.Warn().Err(err).Str("phase", label).Msg("heap profile write failed")
		return
	}

	prof, err := profile.Parse(&buf)
	if err != nil {
		sn.logger.Warn().Err(err).Str("phase", label).Msg("heap profile parse failed")
		return
	}

	inuseIdx := -1
	for i, st := range prof.SampleType {
		if st.Type == "inuse_space" {
			inuseIdx = i
			break
		}
	}
	if inuseIdx < 0 {
		return
	}

	var total int64
	for _, s := range prof.Sample {
		if inuseIdx < len(s.Value) {
			total += s.Value[inuseIdx]
		}
	}
	if total > sn.peak {
		sn.peak = total
	}
	sn.logger.Info().Str("phase", label).Int64("inuse_bytes", total).Int64("peak_bytes", sn.peak).Msg("heap snapshot")
}

// Peak returns the largest inuse_space total observed so far, in bytes.
func (sn *Snapshotter) Peak() int64 {
	if sn == nil {
		return 0
	}
	return sn.peak
}

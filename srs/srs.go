// Copyright 2020 ConsenSys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package srs holds the KZG structured reference string: {τ^i·G1}
// for i in [0, N), and τ·G2. Loading is the HTTP/CLI adapters' job
// (spec §1); this package only accepts already-materialized points and
// exposes digests for header-binding.
package srs

import (
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/zeebo/blake3"

	"github.com/nume-crypto/sszkp/zkerrors"
)

// SRS is a read-only, process-shareable set of KZG powers.
//
// An SRS is safe for concurrent reads once loaded: the core never mutates
// one after Load returns (spec §5 "Shared resources").
type SRS struct {
	G1 []bn254.G1Affine // {τ^i G1}_{i=0..len(G1)-1}
	G2 bn254.G2Affine   // τ·G2

	g2Loaded bool

	g1Digest [32]byte
	g2Digest [32]byte
}

// MaxDegree returns the largest polynomial degree this SRS can commit to
// or open (len(G1) - 1).
func (s *SRS) MaxDegree() int {
	return len(s.G1) - 1
}

// Load builds an SRS from already-materialized G1 powers and the τ·G2
// element. g2 may be the zero value if the caller only intends to prove
// (never verify) with this handle; HasG2 reports whether it was supplied.
func Load(g1 []bn254.G1Affine, g2 bn254.G2Affine, g2Loaded bool) (*SRS, error) {
	if len(g1) == 0 {
		return nil, zkerrors.Wrap(zkerrors.ErrBadParams, "SRS must contain at least one G1 power")
	}
	s := &SRS{G1: g1, G2: g2, g2Loaded: g2Loaded}
	s.g1Digest = digestG1(g1)
	if g2Loaded {
		s.g2Digest = digestG2(g2)
	}
	return s, nil
}

// HasG2 reports whether τ·G2 was loaded (needed only by the verifier).
func (s *SRS) HasG2() bool {
	return s.g2Loaded
}

// G2Element returns τ·G2, erroring if it was never loaded.
func (s *SRS) G2Element() (bn254.G2Affine, error) {
	if !s.g2Loaded {
		return bn254.G2Affine{}, zkerrors.Wrap(zkerrors.ErrSRSMissing, "τ·G2 was not loaded into this SRS handle")
	}
	return s.G2, nil
}

// G1Digest returns a 32-byte BLAKE3 digest of the canonical compressed
// serialization of the G1 powers, used in the proof header (spec §4.9
// Phase A, §6).
func (s *SRS) G1Digest() [32]byte {
	return s.g1Digest
}

// G2Digest returns the digest of τ·G2, or the zero digest if G2 was not
// loaded.
func (s *SRS) G2Digest() [32]byte {
	return s.g2Digest
}

func digestG1(points []bn254.G1Affine) [32]byte {
	h := blake3.New()
	for i := range points {
		b := points[i].Bytes()
		_, _ = h.Write(b[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func digestG2(p bn254.G2Affine) [32]byte {
	h := blake3.New()
	b := p.Bytes()
	_, _ = h.Write(b[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// global is the process-wide guarded SRS holder discussed in spec §9
// ("Global SRS state"). It exists purely for ergonomic callers that don't
// want to thread an *SRS through every call; prover.Prove and
// verifier.Verify also accept an explicit *SRS directly, which is the
// composable/testable path.
var (
	globalOnce sync.Once
	globalSRS  *SRS
	globalErr  error
)

// InitGlobal loads the process-wide SRS exactly once; subsequent calls are
// no-ops that return the first result, matching a classic sync.Once
// guarded-singleton shape.
func InitGlobal(g1 []bn254.G1Affine, g2 bn254.G2Affine, g2Loaded bool) (*SRS, error) {
	globalOnce.Do(func() {
		globalSRS, globalErr = Load(g1, g2, g2Loaded)
	})
	return globalSRS, globalErr
}

// Global returns the process-wide SRS, or nil if InitGlobal was never
// called.
func Global() *SRS {
	return globalSRS
}

// Copyright 2023 Google LLC
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

package semver

// sentinelKind distinguishes a Bound anchored at a concrete Version from
// one anchored at one of the two universal sentinels.
type sentinelKind int8

const (
	concreteBound sentinelKind = iota
	minSentinel                // MIN_VER: below every concrete version
	maxSentinel                // MAX_VER: above every concrete version
)

// Bound is a SemVer version (or one of the MIN_VER/MAX_VER sentinels)
// plus an inclusive/exclusive flag.
type Bound struct {
	kind      sentinelKind
	version   Version
	Inclusive bool
}

// MinBound is the universal lower sentinel, MIN_VER, inclusive.
func MinBound() Bound { return Bound{kind: minSentinel, Inclusive: true} }

// MaxBound is the universal upper sentinel, MAX_VER, inclusive.
func MaxBound() Bound { return Bound{kind: maxSentinel, Inclusive: true} }

// NewBound returns a Bound anchored at the given concrete version.
func NewBound(v Version, inclusive bool) Bound {
	return Bound{kind: concreteBound, version: v, Inclusive: inclusive}
}

// IsSentinel reports whether b is MIN_VER or MAX_VER rather than a
// concrete version.
func (b Bound) IsSentinel() bool { return b.kind != concreteBound }

// IsMin reports whether b is the MIN_VER sentinel.
func (b Bound) IsMin() bool { return b.kind == minSentinel }

// IsMax reports whether b is the MAX_VER sentinel.
func (b Bound) IsMax() bool { return b.kind == maxSentinel }

// Version returns the concrete version of b. It panics if b is a
// sentinel; callers should check IsSentinel first.
func (b Bound) Version() Version {
	if b.kind != concreteBound {
		panic("semver: Bound.Version called on a sentinel bound")
	}
	return b.version
}

// compareBound implements the bound-ordering rule of SPEC_FULL.md §4.1:
// MIN_VER < v < MAX_VER for any concrete v, and at the same concrete
// version an inclusive bound sorts before an exclusive one. This single
// ordering function is used uniformly for both lower and upper bounds by
// Range.Intersect, matching the original implementation's Bound.__lt__.
func compareBound(a, b Bound) int {
	if a.kind == minSentinel && b.kind == minSentinel {
		return 0
	}
	if a.kind == maxSentinel && b.kind == maxSentinel {
		return 0
	}
	if a.kind == minSentinel {
		if b.kind == minSentinel {
			return 0
		}
		return -1
	}
	if b.kind == minSentinel {
		return 1
	}
	if a.kind == maxSentinel {
		if b.kind == maxSentinel {
			return 0
		}
		return 1
	}
	if b.kind == maxSentinel {
		return -1
	}
	if c := compareVersion(a.version, b.version); c != 0 {
		return c
	}
	if a.Inclusive == b.Inclusive {
		return 0
	}
	if a.Inclusive {
		return -1
	}
	return 1
}

// maxBound returns whichever of a, b compares greater under compareBound.
func maxBound(a, b Bound) Bound {
	if compareBound(a, b) >= 0 {
		return a
	}
	return b
}

// minBound returns whichever of a, b compares smaller under compareBound.
func minBound(a, b Bound) Bound {
	if compareBound(a, b) <= 0 {
		return a
	}
	return b
}

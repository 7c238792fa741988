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

// This file implements the partial -> Range compilation rules of
// SPEC_FULL.md §4.1, grounded on util/semver/interval.go's
// opVersionToSpan and on version_man.py's PartialVersion.primitive /
// .tilde / .caret methods.

// emptyRange is a canonical representation of the empty interval,
// produced by operators like ">*" that are satisfiable by no version.
func emptyRange() Range {
	return Range{Min: MaxBound(), Max: Bound{kind: maxSentinel, Inclusive: false}}
}

// noopRange compiles the bare partial form (no operator).
func noopRange(p partial) Range {
	switch p.k() {
	case 0:
		return Range{Min: MinBound(), Max: MaxBound()}
	case 1:
		M := p.major()
		return Range{
			Min: NewBound(Version{Major: M}, true),
			Max: NewBound(Version{Major: M + 1, Prerelease: "0"}, false),
		}
	case 2:
		M, m := p.major(), p.minor()
		return Range{
			Min: NewBound(Version{Major: M, Minor: m}, true),
			Max: NewBound(Version{Major: M, Minor: m + 1, Prerelease: "0"}, false),
		}
	default:
		v := p.concrete()
		return Range{Min: NewBound(v, true), Max: NewBound(v, true)}
	}
}

// gteRange compiles ">=P".
func gteRange(p partial) Range {
	return Range{Min: noopRange(p).Min, Max: MaxBound()}
}

// gtRange compiles ">P".
func gtRange(p partial) Range {
	switch p.k() {
	case 0:
		return emptyRange()
	case 1:
		M := p.major()
		return Range{Min: NewBound(Version{Major: M + 1}, true), Max: MaxBound()}
	case 2:
		M, m := p.major(), p.minor()
		return Range{Min: NewBound(Version{Major: M, Minor: m + 1}, true), Max: MaxBound()}
	default:
		v := p.concrete()
		return Range{Min: NewBound(v, false), Max: MaxBound()}
	}
}

// lteRange compiles "<=P".
func lteRange(p partial) Range {
	if p.k() == 3 {
		return Range{Min: MinBound(), Max: NewBound(p.concrete(), true)}
	}
	return Range{Min: MinBound(), Max: noopRange(p).Max}
}

// ltRange compiles "<P".
func ltRange(p partial) Range {
	if p.k() == 3 {
		return Range{Min: MinBound(), Max: NewBound(p.concrete(), false)}
	}
	lo := noopRange(p).Min
	if lo.IsSentinel() {
		return Range{Min: MinBound(), Max: Bound{kind: lo.kind, Inclusive: false}}
	}
	return Range{Min: MinBound(), Max: NewBound(lo.version, false)}
}

// tildeRange compiles "~P": bounded above by the start of the next minor
// release. A missing/wildcard minor degenerates to ">=" semantics on the
// major component.
func tildeRange(p partial) Range {
	switch p.k() {
	case 0, 1:
		return gteRange(p)
	default:
		M, m := p.major(), p.minor()
		var lower Version
		if p.k() == 3 {
			lower = p.concrete()
		} else {
			lower = Version{Major: M, Minor: m}
		}
		upper := Version{Major: M, Minor: m + 1, Prerelease: "0"}
		return Range{Min: NewBound(lower, true), Max: NewBound(upper, false)}
	}
}

// caretRange compiles "^P": the "next breaking change" range. With major
// 0 it compiles to the same range tildeRange does; otherwise it is
// bounded above by the next major release. Missing minor/patch default
// to 0 in the lower bound.
func caretRange(p partial) Range {
	switch p.k() {
	case 0:
		return gteRange(p)
	case 1:
		M := p.major()
		if M == 0 {
			return tildeRange(p)
		}
		return Range{
			Min: NewBound(Version{Major: M}, true),
			Max: NewBound(Version{Major: M + 1, Prerelease: "0"}, false),
		}
	case 2:
		M, m := p.major(), p.minor()
		lower := Version{Major: M, Minor: m}
		if M == 0 {
			return Range{Min: NewBound(lower, true), Max: NewBound(Version{Major: 0, Minor: m + 1, Prerelease: "0"}, false)}
		}
		return Range{Min: NewBound(lower, true), Max: NewBound(Version{Major: M + 1, Prerelease: "0"}, false)}
	default:
		v := p.concrete()
		if v.Major == 0 {
			return tildeRange(p)
		}
		upper := Version{Major: v.Major + 1, Prerelease: "0"}
		return Range{Min: NewBound(v, true), Max: NewBound(upper, false)}
	}
}

// hyphenRange compiles "P1 - P2".
func hyphenRange(p1, p2 partial) Range {
	return Range{Min: noopRange(p1).Min, Max: noopRange(p2).Max}
}

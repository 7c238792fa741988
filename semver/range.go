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

// Range is a contiguous interval [Min, Max] between two Bounds.
type Range struct {
	Min, Max Bound
}

// empty reports whether the range admits no version at all.
func (r Range) empty() bool {
	c := compareBound(r.Min, r.Max)
	if c > 0 {
		return true
	}
	if c == 0 {
		return !(r.Min.Inclusive && r.Max.Inclusive)
	}
	return false
}

// Contains reports whether v falls inside r, honoring inclusivity and
// NPM's prerelease-admission rule: a prerelease version is contained only
// if one of the range's bounds is itself a prerelease at the same
// (major, minor, patch); otherwise it is excluded even when numerically
// inside the interval.
func (r Range) Contains(v Version) bool {
	if !boundAdmitsAsLower(r.Min, v) {
		return false
	}
	if !boundAdmitsAsUpper(r.Max, v) {
		return false
	}
	if v.Prerelease == "" {
		return true
	}
	if !r.Min.IsSentinel() && r.Min.version.Prerelease != "" && sameTriple(r.Min.version, v) {
		return true
	}
	if !r.Max.IsSentinel() && r.Max.version.Prerelease != "" && sameTriple(r.Max.version, v) {
		return true
	}
	return false
}

func boundAdmitsAsLower(b Bound, v Version) bool {
	if b.IsMin() {
		return true
	}
	if b.IsMax() {
		return false
	}
	c := compareVersion(b.version, v)
	if b.Inclusive {
		return c <= 0
	}
	return c < 0
}

func boundAdmitsAsUpper(b Bound, v Version) bool {
	if b.IsMax() {
		return true
	}
	if b.IsMin() {
		return false
	}
	c := compareVersion(v, b.version)
	if b.Inclusive {
		return c <= 0
	}
	return c < 0
}

// overlaps reports whether a and b share any version.
func overlaps(a, b Range) bool {
	return compareBound(a.Min, b.Max) <= 0 && compareBound(b.Min, a.Max) <= 0
}

// Intersect returns the intersection of a and b and whether it is
// non-empty.
func Intersect(a, b Range) (Range, bool) {
	if !overlaps(a, b) {
		return Range{}, false
	}
	r := Range{Min: maxBound(a.Min, b.Min), Max: minBound(a.Max, b.Max)}
	if r.empty() {
		return Range{}, false
	}
	return r, true
}

// union merges a and b into one Range, assuming they overlap or touch.
func union(a, b Range) Range {
	return Range{Min: minBound(a.Min, b.Min), Max: maxBound(a.Max, b.Max)}
}

// RangeSet is a disjunction of Ranges, the compiled form of a specifier.
type RangeSet []Range

// IntersectSets distributes intersection pairwise across two range sets
// and simplifies the result, per SPEC_FULL.md §4.1 "Intersection".
func IntersectSets(a, b RangeSet) RangeSet {
	var out RangeSet
	for _, ra := range a {
		for _, rb := range b {
			if r, ok := Intersect(ra, rb); ok {
				out = append(out, r)
			}
		}
	}
	return Simplify(out)
}

// UnionSets folds two range sets together and simplifies the result.
func UnionSets(a, b RangeSet) RangeSet {
	return Simplify(append(append(RangeSet{}, a...), b...))
}

// Simplify folds pairwise-overlapping ranges in rs into a minimal,
// sorted, disjoint set, per SPEC_FULL.md §4.1 "Union".
func Simplify(rs RangeSet) RangeSet {
	var live []Range
	for _, r := range rs {
		if !r.empty() {
			live = append(live, r)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sortRanges(live)
	out := []Range{live[0]}
	for _, r := range live[1:] {
		last := &out[len(out)-1]
		if overlaps(*last, r) {
			*last = union(*last, r)
			continue
		}
		out = append(out, r)
	}
	return out
}

func sortRanges(rs []Range) {
	// Small, bounded inputs (a specifier rarely compiles to more than a
	// handful of ranges); insertion sort keeps this dependency-free.
	for i := 1; i < len(rs); i++ {
		for j := i; j > 0 && compareBound(rs[j].Min, rs[j-1].Min) < 0; j-- {
			rs[j], rs[j-1] = rs[j-1], rs[j]
		}
	}
}

// Contains reports whether v is admitted by any range in rs.
func (rs RangeSet) Contains(v Version) bool {
	for _, r := range rs {
		if r.Contains(v) {
			return true
		}
	}
	return false
}

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

// Constraint is a parsed specifier: a simplified, disjoint RangeSet plus
// the original specifier string it was compiled from (kept for error
// messages and for Distribution.dependencies serialization).
type Constraint struct {
	Spec   string
	Ranges RangeSet
}

// ParseSpecifier parses spec into a Constraint.
func ParseSpecifier(spec string) (Constraint, error) {
	rs, err := ParseConstraint(spec)
	if err != nil {
		return Constraint{}, err
	}
	return Constraint{Spec: spec, Ranges: rs}, nil
}

// Accept reports whether v satisfies c.
func (c Constraint) Accept(v Version) bool { return c.Ranges.Contains(v) }

// Intersect returns the intersection of c and other. The resulting
// Constraint's Spec is a synthetic combination of both for diagnostics;
// only Ranges is used for further computation.
func (c Constraint) Intersect(other Constraint) Constraint {
	return Constraint{
		Spec:   c.Spec + " && " + other.Spec,
		Ranges: IntersectSets(c.Ranges, other.Ranges),
	}
}

// Satisfiable reports whether c admits any version at all.
func (c Constraint) Satisfiable() bool { return len(c.Ranges) > 0 }

// FlatPyRange renders c as a single Python specifier string, per
// SPEC_FULL.md §4.1. It fails if c compiled to more than one disjoint
// range.
func (c Constraint) FlatPyRange() (string, error) {
	return FlatPyRange(c.Ranges)
}

// HighestMatching scans candidates (assumed sorted ascending by SemVer
// precedence) and returns the highest one c accepts.
func (c Constraint) HighestMatching(candidates []Version) (Version, bool) {
	for i := len(candidates) - 1; i >= 0; i-- {
		if c.Accept(candidates[i]) {
			return candidates[i], true
		}
	}
	return Version{}, false
}

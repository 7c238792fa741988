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

/*
Package resolve bridges NPM's nested node_modules dependency graph into
a set of synthetic, flat Python distributions (SPEC_FULL.md §4.3),
grounded on original_source's resolver.py (VersionConstraint, Node,
Resolver) and on util/resolve/npm/resolve.go's Client-driven resolver
shape.
*/
package resolve

import "github.com/Xowap/npym/semver"

// VersionConstraint tracks the admissible range set for one
// distribution as the tree is built, grounded on resolver.py's
// VersionConstraint class.
type VersionConstraint struct {
	c semver.Constraint
}

// NewConstraint parses an NPM specifier into a VersionConstraint,
// grounded on VersionConstraint.from_spec.
func NewConstraint(spec string) (VersionConstraint, error) {
	c, err := semver.ParseSpecifier(spec)
	if err != nil {
		return VersionConstraint{}, err
	}
	return VersionConstraint{c: c}, nil
}

// HasMatches reports whether the constraint still admits anything,
// grounded on VersionConstraint.has_matches.
func (vc VersionConstraint) HasMatches() bool {
	return vc.c.Satisfiable()
}

// Accept reports whether v satisfies the constraint.
func (vc VersionConstraint) Accept(v semver.Version) bool {
	return vc.c.Accept(v)
}

// Intersect returns the intersection of vc and other, grounded on
// VersionConstraint.intersect.
func (vc VersionConstraint) Intersect(other VersionConstraint) VersionConstraint {
	return VersionConstraint{c: vc.c.Intersect(other.c)}
}

// FlatPyRange renders vc as a single Python range specifier, grounded
// on VersionConstraint.flat_py_range.
func (vc VersionConstraint) FlatPyRange() (string, error) {
	return vc.c.FlatPyRange()
}

// String renders the constraint's original specifier, for diagnostics.
func (vc VersionConstraint) String() string {
	return vc.c.Spec
}

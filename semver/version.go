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
Package semver implements the NPM version-specifier grammar: parsing a
specifier into a canonical disjunction of Ranges, intersecting and
unioning range sets, and translating a range into a Python-style
specifier string.
*/
package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a concrete, fully resolved SemVer version: major.minor.patch
// with an optional prerelease and an optional build.
type Version struct {
	Major, Minor, Patch int64
	Prerelease          string // dot-separated identifiers, no leading "-"
	Build                string // dot-separated identifiers, no leading "+"
}

// String renders v in canonical SemVer form.
func (v Version) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		sb.WriteByte('-')
		sb.WriteString(v.Prerelease)
	}
	if v.Build != "" {
		sb.WriteByte('+')
		sb.WriteString(v.Build)
	}
	return sb.String()
}

// sameTriple reports whether a and b share the same major.minor.patch.
func sameTriple(a, b Version) bool {
	return a.Major == b.Major && a.Minor == b.Minor && a.Patch == b.Patch
}

// compareVersion implements SemVer precedence: numeric triple first, then
// prerelease (a version without a prerelease is greater than one with, at
// the same triple), then dot-identifier-wise prerelease comparison. Build
// metadata never participates in ordering.
func compareVersion(a, b Version) int {
	if c := cmpInt(a.Major, b.Major); c != 0 {
		return c
	}
	if c := cmpInt(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := cmpInt(a.Patch, b.Patch); c != 0 {
		return c
	}
	if a.Prerelease == "" && b.Prerelease == "" {
		return 0
	}
	if a.Prerelease == "" {
		return 1 // release > prerelease
	}
	if b.Prerelease == "" {
		return -1
	}
	return comparePrerelease(a.Prerelease, b.Prerelease)
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePrerelease compares two dot-separated prerelease identifier
// lists per the SemVer spec: numeric identifiers compare numerically and
// sort lower than any alphanumeric identifier; equal-length prefixes are
// broken by the shorter list sorting lower.
func comparePrerelease(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareIdentifier(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return cmpInt(int64(len(as)), int64(len(bs)))
}

func compareIdentifier(a, b string) int {
	an, aIsNum := isNumericIdentifier(a)
	bn, bIsNum := isNumericIdentifier(b)
	switch {
	case aIsNum && bIsNum:
		return cmpInt(an, bn)
	case aIsNum && !bIsNum:
		return -1
	case !aIsNum && bIsNum:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func isNumericIdentifier(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Compare returns -1, 0 or 1 as a is less than, equal to, or greater than
// b, per SemVer precedence (build metadata ignored).
func Compare(a, b Version) int { return compareVersion(a, b) }

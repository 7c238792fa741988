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

import "fmt"

// upperBoundVersion strips the synthetic "-0" prerelease marker that the
// compile rules in compile.go attach to an exclusive upper bound to mean
// "anything at or after M.m.p, including its prereleases, is excluded"
// (see SPEC_FULL.md §4.1 "Why prerelease-0 on exclusive upper bounds").
// That marker is an artifact of SemVer interval arithmetic, not a real
// version component, so it must not leak into the rendered Python bound:
// the upper bound of "1.x" renders as "<2.0.0", not "<2.0.00".
func upperBoundVersion(b Bound) Version {
	v := b.Version()
	if !b.Inclusive && v.Prerelease == "0" && v.Build == "" {
		v.Prerelease = ""
	}
	return v
}

// PyString translates r into a Python-style version specifier, per the
// table in SPEC_FULL.md §4.1. It fails if r's bounds don't convert to
// valid Python versions (see ToPythonVersion).
func (r Range) PyString() (string, error) {
	if r.empty() {
		return "<0.0.0", nil
	}
	minSentinel, maxSentinel := r.Min.IsMin(), r.Max.IsMax()

	switch {
	case minSentinel && maxSentinel:
		return ">=0.0.0", nil
	case minSentinel:
		pv, err := ToPythonVersion(upperBoundVersion(r.Max))
		if err != nil {
			return "", err
		}
		if r.Max.Inclusive {
			return "<=" + pv, nil
		}
		return "<" + pv, nil
	case maxSentinel:
		pv, err := ToPythonVersion(r.Min.Version())
		if err != nil {
			return "", err
		}
		if r.Min.Inclusive {
			return ">=" + pv, nil
		}
		return ">" + pv, nil
	default:
		if compareVersion(r.Min.Version(), r.Max.Version()) == 0 && r.Min.Inclusive && r.Max.Inclusive {
			pv, err := ToPythonVersion(r.Min.Version())
			if err != nil {
				return "", err
			}
			return "==" + pv, nil
		}
		lowPv, err := ToPythonVersion(r.Min.Version())
		if err != nil {
			return "", err
		}
		highPv, err := ToPythonVersion(upperBoundVersion(r.Max))
		if err != nil {
			return "", err
		}
		lowOp, highOp := ">=", "<="
		if !r.Min.Inclusive {
			lowOp = ">"
		}
		if !r.Max.Inclusive {
			highOp = "<"
		}
		return fmt.Sprintf("%s%s,%s%s", lowOp, lowPv, highOp, highPv), nil
	}
}

// FlatPyRange translates a RangeSet into a single Python specifier
// string. Per SPEC_FULL.md §4.1, an empty set renders as "<0.0.0" and a
// set with more than one disjoint range has no clean Python rendering.
func FlatPyRange(rs RangeSet) (string, error) {
	switch len(rs) {
	case 0:
		return "<0.0.0", nil
	case 1:
		return rs[0].PyString()
	default:
		return "", fmt.Errorf("semver: %d disjoint ranges have no single python specifier", len(rs))
	}
}

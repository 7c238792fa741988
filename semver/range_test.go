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

import "testing"

func v(s string) Version {
	ver, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return ver
}

func rangeString(r Range) string {
	lo := "MIN"
	if !r.Min.IsSentinel() {
		lo = r.Min.Version().String()
	}
	hi := "MAX"
	if !r.Max.IsSentinel() {
		hi = r.Max.Version().String()
	}
	loBr, hiBr := "[", "]"
	if !r.Min.Inclusive {
		loBr = "("
	}
	if !r.Max.Inclusive {
		hiBr = ")"
	}
	return loBr + lo + ", " + hi + hiBr
}

func TestParseConstraintCanonicalRanges(t *testing.T) {
	cases := []struct {
		spec string
		want []string
	}{
		{"1.0.0", []string{"[1.0.0, 1.0.0]"}},
		{"1.x", []string{"[1.0.0, 2.0.0-0)"}},
		{"~1.2.3", []string{"[1.2.3, 1.3.0-0)"}},
		{"^1.2.3", []string{"[1.2.3, 2.0.0-0)"}},
		{"^0.1.2", []string{"[0.1.2, 0.2.0-0)"}},
		{">1 <=3 <=3.4 >1.2 || 5.x", []string{"[2.0.0, 3.5.0-0)", "[5.0.0, 6.0.0-0)"}},
		{"1.x - 2.x", []string{"[1.0.0, 3.0.0-0)"}},
		{">=1.0.2 <2.1.2", []string{"[1.0.2, 2.1.2)"}},
		{"<1.0.0 || >=2.3.1 <2.4.5 || >=2.5.2 <3.0.0", []string{"[MIN, 1.0.0)", "[2.3.1, 2.4.5)", "[2.5.2, 3.0.0)"}},
	}
	for _, tc := range cases {
		t.Run(tc.spec, func(t *testing.T) {
			rs, err := ParseConstraint(tc.spec)
			if err != nil {
				t.Fatalf("ParseConstraint(%q): %v", tc.spec, err)
			}
			if len(rs) != len(tc.want) {
				t.Fatalf("ParseConstraint(%q) = %d ranges, want %d", tc.spec, len(rs), len(tc.want))
			}
			for i, r := range rs {
				got := rangeString(r)
				if got != tc.want[i] {
					t.Errorf("range %d: got %s, want %s", i, got, tc.want[i])
				}
			}
		})
	}
}

func TestParseConstraintRejectsNonRangeSpecifiers(t *testing.T) {
	for _, spec := range []string{"latest", "http://example.com/x.tgz", "file:../x", "git+https://example.com/x.git"} {
		if _, err := ParseConstraint(spec); err == nil {
			t.Errorf("ParseConstraint(%q) succeeded, want parse error", spec)
		}
	}
}

func TestContainmentMonotone(t *testing.T) {
	rs, err := ParseConstraint("^1.2.3")
	if err != nil {
		t.Fatal(err)
	}
	universal := RangeSet{{Min: MinBound(), Max: MaxBound()}}
	for _, s := range []string{"1.2.3", "1.9.9", "1.2.3-nope"} {
		ver := mustParsePrerelease(t, s)
		if rs.Contains(ver) {
			inter := IntersectSets(rs, universal)
			if !inter.Contains(ver) {
				t.Errorf("monotonicity violated for %s", s)
			}
		}
	}
}

func mustParsePrerelease(t *testing.T, s string) Version {
	t.Helper()
	ver, err := ParseVersion(s)
	if err != nil {
		t.Fatal(err)
	}
	return ver
}

func TestPrereleaseAdmission(t *testing.T) {
	rs, err := ParseConstraint("^1.2.3")
	if err != nil {
		t.Fatal(err)
	}
	// 1.9.9-beta is numerically inside [1.2.3, 2.0.0-0) but its bounds
	// are not prereleases at the same triple, so it is excluded.
	if rs.Contains(v("1.9.9-beta")) {
		t.Error("unrelated-triple prerelease should not be admitted")
	}
	rs2, err := ParseConstraint(">=1.0.0-0 <2.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if !rs2.Contains(v("1.0.0-0")) {
		t.Error("lower-bound-triple prerelease should be admitted")
	}
}

func TestIntersectionCommutativeAssociative(t *testing.T) {
	a, _ := ParseConstraint(">=1.0.0 <3.0.0")
	b, _ := ParseConstraint(">=2.0.0 <4.0.0")
	c, _ := ParseConstraint(">=1.5.0 <3.5.0")

	ab := IntersectSets(a, b)
	ba := IntersectSets(b, a)
	if rangeSetString(ab) != rangeSetString(ba) {
		t.Errorf("intersection not commutative: %v vs %v", ab, ba)
	}

	abc1 := IntersectSets(IntersectSets(a, b), c)
	abc2 := IntersectSets(a, IntersectSets(b, c))
	if rangeSetString(abc1) != rangeSetString(abc2) {
		t.Errorf("intersection not associative: %v vs %v", abc1, abc2)
	}
}

func rangeSetString(rs RangeSet) string {
	s := ""
	for _, r := range rs {
		s += rangeString(r) + ";"
	}
	return s
}

func TestFlatPyRangeRoundTrip(t *testing.T) {
	cases := map[string]string{
		"1.0.0":   "==1.0.0",
		"1.x":     ">=1.0.0,<2.0.0",
		"~1.2.3":  ">=1.2.3,<1.3.0",
	}
	for spec, want := range cases {
		rs, err := ParseConstraint(spec)
		if err != nil {
			t.Fatal(err)
		}
		got, err := FlatPyRange(rs)
		if err != nil {
			t.Fatalf("FlatPyRange(%q): %v", spec, err)
		}
		if got != want {
			t.Errorf("FlatPyRange(%q) = %q, want %q", spec, got, want)
		}
	}
}

func TestFlatPyRangeRejectsDisjoint(t *testing.T) {
	rs, err := ParseConstraint("<1.0.0 || >=2.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := FlatPyRange(rs); err == nil {
		t.Error("expected error translating disjoint range set")
	}
}

// TestFlatPyRangeRejectsTouchingBoundary covers a pair of ranges whose
// boundaries meet at the same version with no shared point (one
// inclusive, the other exclusive at that version): they must stay
// disjoint rather than being folded into a universal range.
func TestFlatPyRangeRejectsTouchingBoundary(t *testing.T) {
	rs, err := ParseConstraint("<=1.2.3 || >1.2.3")
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 2 {
		t.Fatalf("Simplify() folded a touching-but-disjoint pair into %d range(s), want 2", len(rs))
	}
	if _, err := FlatPyRange(rs); err == nil {
		t.Error("expected error translating disjoint range set")
	}
}

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

package names

import (
	"context"
	"testing"
)

func TestTheoreticalNames(t *testing.T) {
	cases := map[string]string{
		"@14islands/r3f-scroll-rig": "npym.n14islands.r3f-scroll-rig",
		"@42/42":                    "npym.n42.n42",
		"@_/_":                      "npym.undefined.undefined",
	}
	for js, want := range cases {
		got := Normalize(js).Theoretical("npym")
		if got != want {
			t.Errorf("Normalize(%q).Theoretical = %q, want %q", js, got, want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, js := range []string{"Left-Pad", "@Babel/Core", "some.weird__name", "42cents"} {
		n := Normalize(js)
		// Re-normalizing an already-normalized component must be a fixed
		// point: normalize(normalize(n)) == normalize(n).
		again := Normalize(n.Package)
		if again.Package != n.Package {
			t.Errorf("normalize(%q).Package = %q not idempotent: renormalized to %q", js, n.Package, again.Package)
		}
	}
}

type fakeLookup struct {
	data map[string][]ExistingEntry
}

func (f fakeLookup) DistributionsByBase(_ context.Context, bases []string) (map[string][]ExistingEntry, error) {
	out := map[string][]ExistingEntry{}
	for _, b := range bases {
		if e, ok := f.data[b]; ok {
			out[b] = e
		}
	}
	return out, nil
}

func TestImportChunkDisjointForDistinctNames(t *testing.T) {
	m := NewMapper("npym")
	ctx := context.Background()
	got, err := m.ImportChunk(ctx, fakeLookup{}, []string{"left-pad", "right-pad", "@foo/bar"})
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, a := range got {
		if seen[a.PythonName] {
			t.Errorf("duplicate python name %q for disjoint inputs", a.PythonName)
		}
		seen[a.PythonName] = true
	}
}

func TestImportChunkDedupStable(t *testing.T) {
	m := NewMapper("npym")
	ctx := context.Background()

	// A and B collide on their searchable base ("_" and "-" both
	// normalize to "-": "npym.left-pad", base "npym-left-pad"); import
	// [A, B] first, establishing dedup_seq 0 and 1.
	a, b := "left-pad", "left_pad"
	firstPass, err := m.ImportChunk(ctx, fakeLookup{}, []string{a, b})
	if err != nil {
		t.Fatal(err)
	}
	seqOf := map[string]Assignment{}
	for _, asn := range firstPass {
		seqOf[asn.JSName] = asn
	}

	// Now import C, which also collides, as a separate later chunk
	// against storage that already has A and B committed.
	c := "left.pad"
	existingData := map[string][]ExistingEntry{}
	for _, asn := range firstPass {
		existingData[asn.PythonNameBase] = append(existingData[asn.PythonNameBase], ExistingEntry{JSName: asn.JSName, DedupSeq: asn.DedupSeq})
	}
	secondPass, err := m.ImportChunk(ctx, fakeLookup{data: existingData}, []string{c})
	if err != nil {
		t.Fatal(err)
	}
	if len(secondPass) != 1 {
		t.Fatalf("expected 1 new assignment, got %d", len(secondPass))
	}
	gotSeparate := secondPass[0]

	// Compare against importing [A, B, C] together in one chunk.
	together, err := m.ImportChunk(ctx, fakeLookup{}, []string{a, b, c})
	if err != nil {
		t.Fatal(err)
	}
	var gotTogether Assignment
	for _, asn := range together {
		if asn.JSName == c {
			gotTogether = asn
		}
	}
	if gotSeparate.PythonName != gotTogether.PythonName {
		t.Errorf("dedup not stable across import batching: %q vs %q", gotSeparate.PythonName, gotTogether.PythonName)
	}
}

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

package resolve

import (
	"context"
	"testing"

	"github.com/Xowap/npym/names"
	"github.com/Xowap/npym/npmregistry"
	"github.com/Xowap/npym/store"
)

func fixtureVersion(jsName, version string, deps map[string]string) npmregistry.VersionDoc {
	return npmregistry.VersionDoc{Name: jsName, Version: version, Dependencies: deps}
}

// newFixture builds a tiny two-package graph: root depends on "left-pad"
// at "^1.0.0", and "left-pad" has three published versions, two of
// which (1.0.0 and 1.3.0) satisfy the range, mirroring the shape
// resolver.py's own test fixtures use (a single branch, one version pick).
func newFixture(t *testing.T) (*Resolver, *store.Memory) {
	t.Helper()
	reg := npmregistry.NewMemory()
	reg.AddPackage(npmregistry.PackageDoc{
		Name: "root",
		Versions: map[string]npmregistry.VersionDoc{
			"1.0.0": fixtureVersion("root", "1.0.0", map[string]string{"left-pad": "^1.0.0"}),
		},
	})
	reg.AddPackage(npmregistry.PackageDoc{
		Name: "left-pad",
		Versions: map[string]npmregistry.VersionDoc{
			"1.0.0": fixtureVersion("left-pad", "1.0.0", nil),
			"1.3.0": fixtureVersion("left-pad", "1.3.0", nil),
			"2.0.0": fixtureVersion("left-pad", "2.0.0", nil),
		},
	})

	st := store.NewMemory()
	ctx := context.Background()
	if err := st.InsertDistributions(ctx, []store.Distribution{
		{JSName: "root", PythonName: "npym.root", PythonNameBase: "npym-root", PythonNameSearchable: "npym-root"},
		{JSName: "left-pad", PythonName: "npym.left-pad", PythonNameBase: "npym-left-pad", PythonNameSearchable: "npym-left-pad"},
	}); err != nil {
		t.Fatal(err)
	}

	mapper := names.NewMapper("npym")
	return NewResolver(reg, st, mapper), st
}

func TestBuildDepTreePicksHighestSatisfyingVersion(t *testing.T) {
	r, _ := newFixture(t)
	tree, err := r.BuildDepTree(context.Background(), "root", "1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.at(tree.Root()).children) != 1 {
		t.Fatalf("root should have exactly one child, got %d", len(tree.at(tree.Root()).children))
	}
	child := tree.at(tree.at(tree.Root()).children[0])
	if child.version.jsVersion != "1.3.0" {
		t.Errorf("left-pad resolved to %q, want 1.3.0 (highest version satisfying ^1.0.0)", child.version.jsVersion)
	}
}

func TestResolveNodesAssignsRootAndSyntheticNames(t *testing.T) {
	r, _ := newFixture(t)
	ctx := context.Background()
	tree, err := r.BuildDepTree(ctx, "root", "1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if err := r.ResolveNodes(ctx, tree, "npym.root"); err != nil {
		t.Fatal(err)
	}
	rootRes := tree.at(tree.Root()).resolution
	if rootRes == nil || rootRes.pythonName != "npym.root" {
		t.Fatalf("root resolution = %+v, want pythonName npym.root", rootRes)
	}
	child := tree.at(tree.at(tree.Root()).children[0])
	if child.resolution == nil {
		t.Fatal("child node was never resolved")
	}
	if got, want := child.resolution.pythonName, "npym.left-pad.x"; len(got) <= len(want) || got[:len(want)] != want {
		t.Errorf("child python name = %q, want prefix %q", got, want)
	}
}

func TestCreateDistributionsLinksOriginalAndGeneratedFor(t *testing.T) {
	r, st := newFixture(t)
	ctx := context.Background()
	tree, err := r.BuildDepTree(ctx, "root", "1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if err := r.ResolveNodes(ctx, tree, "npym.root"); err != nil {
		t.Fatal(err)
	}

	rootDeps, synths, err := r.CreateDistributions(ctx, tree, "root-version-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rootDeps) != 1 {
		t.Fatalf("rootDeps = %+v, want exactly one entry", rootDeps)
	}
	if len(synths) != 1 {
		t.Fatalf("synths = %+v, want exactly one synthetic distribution", synths)
	}

	leftPad, err := st.DistributionByJSName(ctx, "left-pad")
	if err != nil {
		t.Fatal(err)
	}
	got := synths[0]
	if got.Distribution.Original != leftPad.ID {
		t.Errorf("Original = %q, want %q (left-pad's primary distribution)", got.Distribution.Original, leftPad.ID)
	}
	if got.Distribution.GeneratedFor != "root-version-1" {
		t.Errorf("GeneratedFor = %q, want root-version-1", got.Distribution.GeneratedFor)
	}
	if got.Distribution.IsPrimary() {
		t.Error("synthetic distribution reported IsPrimary() == true")
	}
}

func TestDeepFetchIsIdempotent(t *testing.T) {
	r, _ := newFixture(t)
	ctx := context.Background()
	if err := r.deepFetch(ctx, []string{"root"}); err != nil {
		t.Fatal(err)
	}
	if err := r.deepFetch(ctx, []string{"root"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.cache.getPackage("left-pad"); !ok {
		t.Error("deepFetch should have transitively cached left-pad")
	}
}

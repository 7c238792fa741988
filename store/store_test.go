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

package store

import (
	"context"
	"errors"
	"testing"
)

func TestInsertDistributionsOnConflictDoNothing(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	d := Distribution{JSName: "left-pad", PythonName: "npym.left-pad", PythonNameBase: "npym-left-pad", PythonNameSearchable: "npym-left-pad"}
	if err := m.InsertDistributions(ctx, []Distribution{d}); err != nil {
		t.Fatal(err)
	}
	d2 := d
	d2.Description = "a different description"
	if err := m.InsertDistributions(ctx, []Distribution{d2}); err != nil {
		t.Fatal(err)
	}
	got, err := m.DistributionByJSName(ctx, "left-pad")
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != "" {
		t.Errorf("second insert should have been skipped, got description %q", got.Description)
	}
}

func TestDistributionByJSNameNotFound(t *testing.T) {
	m := NewMemory()
	if _, err := m.DistributionByJSName(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDistributionsByBaseOrdersByDedupSeq(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ds := []Distribution{
		{JSName: "left_pad", PythonName: "npym.xaaaaaaaa.left-pad", PythonNameBase: "npym-left-pad", PythonNameSearchable: "npym-xaaaaaaaa-left-pad", DedupSeq: 1},
		{JSName: "left-pad", PythonName: "npym.left-pad", PythonNameBase: "npym-left-pad", PythonNameSearchable: "npym-left-pad", DedupSeq: 0},
	}
	if err := m.InsertDistributions(ctx, ds); err != nil {
		t.Fatal(err)
	}
	got, err := m.DistributionsByBase(ctx, []string{"npym-left-pad"})
	if err != nil {
		t.Fatal(err)
	}
	entries := got["npym-left-pad"]
	if len(entries) != 2 || entries[0].JSName != "left-pad" || entries[1].JSName != "left_pad" {
		t.Errorf("unexpected order: %+v", entries)
	}
}

func TestLockDistributionForUpdatePassesLockedRow(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	d := Distribution{JSName: "left-pad", PythonName: "npym.left-pad", PythonNameBase: "npym-left-pad", PythonNameSearchable: "npym-left-pad"}
	if err := m.InsertDistributions(ctx, []Distribution{d}); err != nil {
		t.Fatal(err)
	}
	got, _ := m.DistributionByJSName(ctx, "left-pad")
	called := false
	err := m.LockDistributionForUpdate(ctx, got.ID, func(locked Distribution) error {
		called = true
		if locked.JSName != "left-pad" {
			t.Errorf("locked.JSName = %q, want left-pad", locked.JSName)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("callback never invoked")
	}
}

func TestArchivePathFourLevelPrefix(t *testing.T) {
	p, err := ArchivePath(TranslatorV1, "aabbccddeeff00112233445566778899aabbccddeeff00112233445566778899", "npym.left-pad", "1.3.0")
	if err != nil {
		t.Fatal(err)
	}
	want := "distributions/v1/aa/bb/cc/dd/npym_left_pad-1.3.0-py3-none-any.whl"
	if p != want {
		t.Errorf("ArchivePath() = %q, want %q", p, want)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	dist := Distribution{JSName: "left-pad", PythonName: "npym.left-pad", PythonNameBase: "npym-left-pad", PythonNameSearchable: "npym-left-pad"}
	if err := m.InsertDistributions(ctx, []Distribution{dist}); err != nil {
		t.Fatal(err)
	}
	v := Version{Distribution: "dist-1", PythonVersion: "1.3.0", JSVersion: "1.3.0"}
	if err := m.InsertVersions(ctx, []Version{v}); err != nil {
		t.Fatal(err)
	}
	vs, err := m.VersionsByDistribution(ctx, "dist-1")
	if err != nil || len(vs) != 1 {
		t.Fatalf("VersionsByDistribution: %v, %+v", err, vs)
	}
	a := Archive{Version: vs[0].ID, Format: FormatWheel, Translator: TranslatorV1, HashSHA256: "deadbeef"}
	if err := m.PutArchive(ctx, a); err != nil {
		t.Fatal(err)
	}
	got, err := m.ArchiveByVersion(ctx, vs[0].ID, FormatWheel, TranslatorV1)
	if err != nil {
		t.Fatal(err)
	}
	if got.HashSHA256 != "deadbeef" {
		t.Errorf("HashSHA256 = %q, want deadbeef", got.HashSHA256)
	}
}

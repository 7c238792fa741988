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

package wheel

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"testing"

	"github.com/Xowap/npym/npmregistry"
	"github.com/Xowap/npym/store"
)

// buildTarball gzips a tar archive containing one "package/" entry per
// given (path, content) pair, mirroring an NPM tarball's layout.
func buildTarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		hdr := &tar.Header{Name: "package/" + name, Mode: 0o644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newFixture(t *testing.T) (*Synthesizer, *npmregistry.Memory, *store.Memory) {
	t.Helper()
	reg := npmregistry.NewMemory()
	st := store.NewMemory()
	blobs := store.NewFileBlobStore(t.TempDir())

	tgz := buildTarball(t, map[string]string{
		"package.json": `{"name":"left-pad","version":"1.3.0"}`,
		"index.js":     "module.exports = function leftPad() {};\n",
	})
	sum := sha256.Sum256(tgz)
	reg.AddTarball("https://registry.npmjs.org/left-pad/-/left-pad-1.3.0.tgz", tgz)

	doc := npmregistry.VersionDoc{
		Name:        "left-pad",
		Version:     "1.3.0",
		Description: "String left padding",
		License:     json.RawMessage(`"MIT"`),
		Dist: npmregistry.Dist{
			Tarball:   "https://registry.npmjs.org/left-pad/-/left-pad-1.3.0.tgz",
			Integrity: "sha256-" + base64.StdEncoding.EncodeToString(sum[:]),
		},
	}
	reg.AddPackage(npmregistry.PackageDoc{Name: "left-pad", Versions: map[string]npmregistry.VersionDoc{"1.3.0": doc}})

	dist := store.Distribution{JSName: "left-pad", PythonName: "npym.left-pad", PythonNameBase: "npym-left-pad", PythonNameSearchable: "npym-left-pad"}
	if err := st.InsertDistributions(context.Background(), []store.Distribution{dist}); err != nil {
		t.Fatal(err)
	}

	s := NewSynthesizer(reg, st, blobs, "npym")
	return s, reg, st
}

func TestSynthesizeBuildsAndStoresArchive(t *testing.T) {
	s, reg, st := newFixture(t)
	ctx := context.Background()

	dist, err := st.DistributionByJSName(ctx, "left-pad")
	if err != nil {
		t.Fatal(err)
	}
	version := store.Version{Distribution: dist.ID, PythonVersion: "1.3.0", JSVersion: "1.3.0"}
	if err := st.InsertVersions(ctx, []store.Version{version}); err != nil {
		t.Fatal(err)
	}
	versions, err := st.VersionsByDistribution(ctx, dist.ID)
	if err != nil || len(versions) != 1 {
		t.Fatalf("VersionsByDistribution: %v, %v", versions, err)
	}
	version = versions[0]

	doc, err := reg.Package(ctx, "left-pad")
	if err != nil {
		t.Fatal(err)
	}

	archive, err := s.Synthesize(ctx, dist, version, doc.Versions["1.3.0"])
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if archive.Format != store.FormatWheel || archive.Translator != store.TranslatorV1 {
		t.Errorf("archive = %+v, want FormatWheel/TranslatorV1", archive)
	}
	if archive.HashSHA256 == "" || archive.Path == "" {
		t.Errorf("archive missing hash/path: %+v", archive)
	}

	rc, err := s.Blobs.Get(ctx, archive.Path)
	if err != nil {
		t.Fatalf("Blobs.Get() error = %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("opening produced wheel as zip: %v", err)
	}

	wantNames := map[string]bool{
		"npym/node_modules/left-pad/package.json": true,
		"npym/node_modules/left-pad/index.js":     true,
		"npym.left-pad-1.3.0.dist-info/WHEEL":      true,
		"npym.left-pad-1.3.0.dist-info/LICENSE":    true,
		"npym.left-pad-1.3.0.dist-info/METADATA":   true,
		"npym.left-pad-1.3.0.dist-info/RECORD":     true,
	}
	for _, f := range zr.File {
		delete(wantNames, f.Name)
	}
	if len(wantNames) > 0 {
		t.Errorf("wheel missing expected entries: %v", wantNames)
	}
}

func TestSynthesizeRejectsBadIntegrity(t *testing.T) {
	s, reg, st := newFixture(t)
	ctx := context.Background()

	dist, _ := st.DistributionByJSName(ctx, "left-pad")
	doc, _ := reg.Package(ctx, "left-pad")
	v := doc.Versions["1.3.0"]
	v.Dist.Integrity = "sha256-" + base64.StdEncoding.EncodeToString(make([]byte, 32))

	version := store.Version{Distribution: dist.ID, PythonVersion: "1.3.0", JSVersion: "1.3.0"}
	if err := st.InsertVersions(ctx, []store.Version{version}); err != nil {
		t.Fatal(err)
	}
	versions, _ := st.VersionsByDistribution(ctx, dist.ID)

	if _, err := s.Synthesize(ctx, dist, versions[0], v); err != ErrIntegrity {
		t.Errorf("Synthesize() error = %v, want ErrIntegrity", err)
	}
}

func TestSanitizeCollapsesNonPrintableRuns(t *testing.T) {
	got := sanitize("hello\n\tworld\x00!")
	want := "hello world !"
	if got != want {
		t.Errorf("sanitize() = %q, want %q", got, want)
	}
}

func TestScriptKeyDedup(t *testing.T) {
	entries := buildScriptEntries("some-pkg", map[string]string{
		"foo-bar": "bin/a.js",
		"foo.bar": "bin/b.js",
	})
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].key == entries[1].key {
		t.Errorf("expected distinct dedup keys, got both %q", entries[0].key)
	}
}

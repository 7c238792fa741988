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
Package wheel synthesizes a Python wheel archive from one NPM package
version (SPEC_FULL.md §4.4), grounded on original_source's
translator.py (PackageTranslator: _download_source,
_check_source_integrity, _extract_source, _copy_source,
_write_dist_info_*, _zip_wheel) and on util/pypi's wheel.go/metadata.go
for the Go-idiomatic shape of the structures being written (read there
in the parsing direction; used here in the generation direction).
*/
package wheel

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/Xowap/npym/npmregistry"
	"github.com/Xowap/npym/semver"
	"github.com/Xowap/npym/spdx"
	"github.com/Xowap/npym/store"
)

// ErrIntegrity is returned when a downloaded tarball's hash does not
// match its declared dist.integrity value (spec.md §7 "Integrity
// failure": fatal, synthesis aborts).
var ErrIntegrity = fmt.Errorf("wheel: source integrity check failed")

// Synthesizer builds wheel Archives for Distribution/Version pairs.
type Synthesizer struct {
	Client npmregistry.Client
	Store  store.Store
	Blobs  store.BlobStore
	Prefix string
}

// NewSynthesizer builds a Synthesizer.
func NewSynthesizer(client npmregistry.Client, st store.Store, blobs store.BlobStore, prefix string) *Synthesizer {
	return &Synthesizer{Client: client, Store: st, Blobs: blobs, Prefix: prefix}
}

// Synthesize builds (or returns the already-synthesized) Archive for
// dist/version, grounded on translator.py's PackageTranslator._translate
// step order: download, verify, extract, copy into the node_modules
// subtree, write dist-info, zip, hash. Unlike translator.py, which lays
// the tree out on disk under a TemporaryDirectory, this builds the
// whole wheel as an in-memory file set before zipping — SPEC_FULL.md's
// wheel layout is small enough per package that the path-traversal
// bookkeeping translator.py does with Path.is_relative_to is unnecessary
// once every destination path is computed by this package itself
// rather than taken from the tarball's own entry names unchecked.
func (s *Synthesizer) Synthesize(ctx context.Context, dist store.Distribution, version store.Version, doc npmregistry.VersionDoc) (store.Archive, error) {
	if existing, err := s.Store.ArchiveByVersion(ctx, version.ID, store.FormatWheel, store.TranslatorV1); err == nil {
		return existing, nil
	}

	raw, err := s.downloadAndVerify(ctx, doc.Dist)
	if err != nil {
		return store.Archive{}, err
	}

	pkgFiles, err := extractTarball(raw)
	if err != nil {
		return store.Archive{}, fmt.Errorf("wheel: extracting %s: %w", dist.JSName, err)
	}

	files := map[string][]byte{}
	nodeModulesRoot := fmt.Sprintf("%s/node_modules/%s", s.Prefix, dist.JSName)
	for rel, data := range pkgFiles {
		files[path.Join(nodeModulesRoot, rel)] = data
	}

	distInfoDir := fmt.Sprintf("%s-%s.dist-info", dist.PythonName, version.PythonVersion)
	if err := s.writeDistInfo(ctx, files, distInfoDir, dist, version, doc); err != nil {
		return store.Archive{}, err
	}

	wheelBytes, err := zipTree(files)
	if err != nil {
		return store.Archive{}, fmt.Errorf("wheel: zipping %s: %w", dist.JSName, err)
	}

	sum := sha256.Sum256(wheelBytes)
	hashHex := hex.EncodeToString(sum[:])

	archivePath, err := store.ArchivePath(store.TranslatorV1, hashHex, dist.PythonName, version.PythonVersion)
	if err != nil {
		return store.Archive{}, err
	}
	if err := s.Blobs.Put(ctx, archivePath, bytes.NewReader(wheelBytes)); err != nil {
		return store.Archive{}, fmt.Errorf("wheel: storing archive: %w", err)
	}

	archive := store.Archive{
		Version:    version.ID,
		Format:     store.FormatWheel,
		Translator: store.TranslatorV1,
		HashSHA256: hashHex,
		Path:       archivePath,
	}
	if err := s.Store.PutArchive(ctx, archive); err != nil {
		return store.Archive{}, fmt.Errorf("wheel: recording archive: %w", err)
	}
	return archive, nil
}

// downloadAndVerify fetches dist.Tarball and checks it against
// dist.Integrity ("algo-base64hash"), grounded on translator.py's
// _download_source + _check_source_integrity.
func (s *Synthesizer) downloadAndVerify(ctx context.Context, dist npmregistry.Dist) ([]byte, error) {
	rc, err := s.Client.Tarball(ctx, dist)
	if err != nil {
		return nil, fmt.Errorf("wheel: downloading tarball: %w", err)
	}
	defer rc.Close()

	algo, want, err := parseIntegrity(dist.Integrity)
	if err != nil {
		return nil, err
	}
	h, err := newHash(algo)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(io.MultiWriter(&buf, h), rc); err != nil {
		return nil, fmt.Errorf("wheel: reading tarball: %w", err)
	}
	if !bytes.Equal(h.Sum(nil), want) {
		return nil, ErrIntegrity
	}
	return buf.Bytes(), nil
}

func parseIntegrity(integrity string) (algo string, digest []byte, err error) {
	a, b64, ok := strings.Cut(integrity, "-")
	if !ok {
		return "", nil, fmt.Errorf("wheel: malformed integrity value %q", integrity)
	}
	digest, err = base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", nil, fmt.Errorf("wheel: decoding integrity digest: %w", err)
	}
	return a, digest, nil
}

func newHash(algo string) (hash.Hash, error) {
	switch algo {
	case "sha1":
		return sha1.New(), nil
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("wheel: unsupported integrity algorithm %q", algo)
	}
}

// extractTarball reads a gzip-compressed npm tarball and returns every
// regular file found under its "package/" root, keyed by its path
// relative to that root, grounded on translator.py's _extract_source +
// _copy_source (which together extract the whole tarball, then copy
// only "source/package" into the wheel).
func extractTarball(raw []byte) (map[string][]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	out := map[string][]byte{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar entry: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		rel, ok := strings.CutPrefix(path.Clean(hdr.Name), "package/")
		if !ok {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", hdr.Name, err)
		}
		out[rel] = data
	}
	return out, nil
}

// zipTree deflates files (level 9, matching translator.py's
// zipfile.ZipFile(..., compresslevel=9, compression=ZIP_DEFLATED)) in
// sorted path order for byte-stable output.
func zipTree(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	for _, n := range names {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: n, Method: zip.Deflate})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[n]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// normalizeLicense canonicalizes an NPM license string through spdx,
// falling back to the raw sanitized string when it doesn't parse as a
// valid SPDX expression (SPEC_FULL.md §4.4 "License normalization").
func normalizeLicense(raw string) string {
	raw = sanitize(raw)
	if raw == "" {
		return ""
	}
	expr, err := spdx.Parse(raw)
	if err != nil {
		return raw
	}
	expr.Canon()
	return expr.String()
}

// flatPyRange translates an NPM specifier into a Python range string,
// falling back to ">=0.0.0" on any translation failure, matching
// translator.py's _generate_dependencies_req try/except ValueError.
func flatPyRange(spec string) string {
	c, err := semver.ParseSpecifier(spec)
	if err != nil {
		return ">=0.0.0"
	}
	r, err := c.FlatPyRange()
	if err != nil {
		return ">=0.0.0"
	}
	return r
}

// requiresDist computes the python_name -> range pairs to render as
// Requires-Dist lines, grounded on translator.py's
// _generate_dependencies_req: for a primary distribution, merge
// dependencies and peerDependencies and translate each js_name via
// Store lookups; for a synthetic distribution, its Dependencies map is
// already fully resolved by the resolver and used verbatim.
func (s *Synthesizer) requiresDist(ctx context.Context, dist store.Distribution, doc npmregistry.VersionDoc) ([][2]string, error) {
	out := [][2]string{{s.Prefix, ">=0.0.0"}}

	if !dist.IsPrimary() {
		keys := make([]string, 0, len(dist.Dependencies))
		for k := range dist.Dependencies {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, [2]string{k, dist.Dependencies[k]})
		}
		return out, nil
	}

	merged := map[string]string{}
	for n, v := range doc.Dependencies {
		merged[n] = v
	}
	for n, v := range doc.PeerDependencies {
		merged[n] = v
	}
	jsNames := make([]string, 0, len(merged))
	for n := range merged {
		jsNames = append(jsNames, n)
	}
	sort.Strings(jsNames)

	for _, jsName := range jsNames {
		d, err := s.Store.DistributionByJSName(ctx, jsName)
		if err != nil {
			continue // unmapped dependency: silently dropped, per translator.py
		}
		out = append(out, [2]string{d.PythonName, flatPyRange(merged[jsName])})
	}
	return out, nil
}

// sanitize collapses any run of non-printable characters to a single
// space, grounded on translator.py's sanitize: re.sub(r"([^\x20-\x7e]|[\r\n])+", " ", ...).
func sanitize(s string) string {
	var sb strings.Builder
	inRun := false
	for _, r := range s {
		if r >= 0x20 && r <= 0x7e {
			sb.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			sb.WriteByte(' ')
			inRun = true
		}
	}
	return strings.TrimSpace(sb.String())
}

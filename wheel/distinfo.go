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
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/Xowap/npym/npmregistry"
	"github.com/Xowap/npym/store"
)

// writeDistInfo populates files under "{distInfoDir}/" and, last, its
// RECORD, grounded line-for-line on translator.py's
// _write_dist_info_wheel/_license/_metadata/_records.
func (s *Synthesizer) writeDistInfo(ctx context.Context, files map[string][]byte, distInfoDir string, dist store.Distribution, version store.Version, doc npmregistry.VersionDoc) error {
	files[path.Join(distInfoDir, "WHEEL")] = []byte(strings.Join([]string{
		"Wheel-Version: 1.0",
		"Generator: npym v1",
		"Root-Is-Purelib: true",
		"Tag: py3-none-any",
		"",
	}, "\n"))

	license := normalizeLicense(doc.LicenseString())
	if license != "" {
		files[path.Join(distInfoDir, "LICENSE")] = []byte(fmt.Sprintf("License: %s\n", license))
	}

	metadata, err := s.buildMetadata(ctx, dist, version, doc, license)
	if err != nil {
		return err
	}
	files[path.Join(distInfoDir, "METADATA")] = []byte(metadata)

	if bin := doc.BinMap(); len(bin) > 0 {
		entries := buildScriptEntries(dist.JSName, bin)
		files[path.Join(pythonNamePath(dist.PythonName), "__init__.py")] = []byte(entrypointsModule(dist.JSName, entries))
		if len(entries) == 1 {
			files[path.Join(pythonNamePath(dist.PythonName), "__main__.py")] = []byte(entrypointsMain(entries[0]))
		}
		files[path.Join(distInfoDir, "entry_points.txt")] = []byte(entryPointsTxt(dist.PythonName, entries))
	}

	files[path.Join(distInfoDir, "RECORD")] = []byte(buildRecord(files, distInfoDir))
	return nil
}

// pythonNamePath turns a dotted python_name into the path of the
// package directory it names, e.g. "npym.left-pad" -> "npym/left-pad".
func pythonNamePath(pythonName string) string {
	return strings.ReplaceAll(pythonName, ".", "/")
}

// buildMetadata renders dist-info/METADATA, preserving translator.py's
// exact field emission order: Metadata-Version, Name, Version, Summary,
// then the optional Home-page/Keywords/Author/Author-email/Maintainer/
// Maintainer-email/License/Project-URL(s) fields in that order, finally
// one Requires-Dist line per resolved dependency.
func (s *Synthesizer) buildMetadata(ctx context.Context, dist store.Distribution, version store.Version, doc npmregistry.VersionDoc, license string) (string, error) {
	author, authorEmail := doc.AuthorInfo()
	bugsTracker := doc.BugsURL()
	repository := doc.RepositoryURL()

	var maintainerNames, maintainerEmails []string
	for _, m := range doc.Maintainers {
		if m.Name != "" {
			maintainerNames = append(maintainerNames, sanitize(m.Name))
		}
		if m.Email != "" {
			maintainerEmails = append(maintainerEmails, sanitize(m.Email))
		}
	}

	lines := []string{
		"Metadata-Version: 2.1",
		fmt.Sprintf("Name: %s", dist.PythonName),
		fmt.Sprintf("Version: %s", version.PythonVersion),
		fmt.Sprintf("Summary: %s", sanitize(doc.Description)),
	}

	if doc.Homepage != "" {
		lines = append(lines, fmt.Sprintf("Home-page: %s", sanitize(doc.Homepage)))
	}
	if len(doc.Keywords) > 0 {
		kw := make([]string, len(doc.Keywords))
		for i, k := range doc.Keywords {
			kw[i] = sanitize(k)
		}
		lines = append(lines, fmt.Sprintf("Keywords: %s", strings.Join(kw, ",")))
	}
	if author != "" {
		lines = append(lines, fmt.Sprintf("Author: %s", sanitize(author)))
	}
	if authorEmail != "" {
		lines = append(lines, fmt.Sprintf("Author-email: %s", sanitize(authorEmail)))
	}
	if len(maintainerNames) > 0 {
		lines = append(lines, fmt.Sprintf("Maintainer: %s", strings.Join(maintainerNames, ", ")))
	}
	if len(maintainerEmails) > 0 {
		lines = append(lines, fmt.Sprintf("Maintainer-email: %s", strings.Join(maintainerEmails, ", ")))
	}
	if license != "" {
		lines = append(lines, fmt.Sprintf("License: %s", sanitize(license)))
	}
	if bugsTracker != "" {
		lines = append(lines, fmt.Sprintf("Project-URL: Bug Tracker, %s", sanitize(bugsTracker)))
	}
	if repository != "" {
		lines = append(lines, fmt.Sprintf("Project-URL: Repository, %s", sanitize(repository)))
	}

	req, err := s.requiresDist(ctx, dist, doc)
	if err != nil {
		return "", err
	}
	for _, pair := range req {
		lines = append(lines, fmt.Sprintf("Requires-Dist: %s (%s)", pair[0], pair[1]))
	}

	return strings.Join(lines, "\n") + "\n", nil
}

// buildRecord renders dist-info/RECORD: one "{path},sha256={digest},{size}"
// line per file already written, in sorted path order, plus a trailing
// "{dist-info}/RECORD,," line with no hash or size for itself, grounded
// on translator.py's _write_dist_info_records.
func buildRecord(files map[string][]byte, distInfoDir string) string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var sb strings.Builder
	for _, p := range paths {
		sum := sha256.Sum256(files[p])
		digest := base64.RawURLEncoding.EncodeToString(sum[:])
		fmt.Fprintf(&sb, "%s,sha256=%s,%d\n", p, digest, len(files[p]))
	}
	fmt.Fprintf(&sb, "%s/RECORD,,\n", distInfoDir)
	return sb.String()
}

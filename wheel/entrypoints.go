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
	"fmt"
	"sort"
	"strings"

	"github.com/Xowap/npym/names"
)

// scriptEntry is one console-script binding, after dedup.
type scriptEntry struct {
	original string // the raw NPM bin name
	key      string // deduplicated, underscore-joined script name
	jsPath   string // path of the script inside the package, e.g. "bin/cli.js"
}

// scriptKey lowercases name and collapses every run of non-alphanumeric
// characters to a single "_", the script-name equivalent of
// names.normalizeComponent's dash-joining for Python distribution
// components (package.json "bin" names are file-system-ish strings, not
// NPM package names, so they get their own, underscore-joined
// normalization rather than reusing names.Normalize directly).
func scriptKey(name string) string {
	var sb strings.Builder
	inRun := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			sb.WriteByte('_')
			inRun = true
		}
	}
	return strings.Trim(sb.String(), "_")
}

// buildScriptEntries normalizes bin into deduplicated scriptEntry
// values, in deterministic (sorted by original name) order. Dedup
// mirrors SPEC_FULL.md §4.4's reuse of names' dedup-tagging mechanism
// (names.Tag), applied to the underscore-joined script key instead of a
// Python distribution name: the first script to land on a given key
// keeps it bare, every later collision becomes "x{tag}_{key}".
func buildScriptEntries(jsName string, bin map[string]string) []scriptEntry {
	originals := make([]string, 0, len(bin))
	for n := range bin {
		originals = append(originals, n)
	}
	sort.Strings(originals)

	seq := map[string]int{}
	entries := make([]scriptEntry, 0, len(originals))
	for _, orig := range originals {
		base := scriptKey(orig)
		n := seq[base]
		seq[base] = n + 1

		key := base
		if n > 0 {
			key = fmt.Sprintf("x%s_%s", names.Tag(jsName, base, n), base)
		}
		entries = append(entries, scriptEntry{original: orig, key: key, jsPath: bin[orig]})
	}
	return entries
}

// entrypointsModule renders the __init__.py source for a bin-bearing
// package: it imports the npym runtime's entry-point dispatcher and
// exposes one attribute per deduplicated script name, each invoking the
// named script inside the package's vendored node_modules tree. There
// is no reference implementation of this runtime helper anywhere in the
// retrieved original source (see DESIGN.md); the shape below is an
// original design, chosen so that entry_points.txt's "module:attr"
// convention has something concrete to point at.
func entrypointsModule(jsName string, entries []scriptEntry) string {
	var sb strings.Builder
	sb.WriteString("from npym.runtime import Entrypoints\n\n")
	fmt.Fprintf(&sb, "entrypoints = Entrypoints(%q, {\n", jsName)
	for _, e := range entries {
		fmt.Fprintf(&sb, "    %q: %q,\n", e.key, e.jsPath)
	}
	sb.WriteString("})\n")
	return sb.String()
}

// entrypointsMain renders __main__.py, written only when a package has
// exactly one console script, so `python -m <package>` also works.
func entrypointsMain(entry scriptEntry) string {
	return fmt.Sprintf("from . import entrypoints\n\nentrypoints.run(%q)\n", entry.key)
}

// entryPointsTxt renders dist-info/entry_points.txt's [console_scripts]
// section, binding every original NPM script name to its deduplicated
// attribute on the generated entrypoints module.
func entryPointsTxt(pythonName string, entries []scriptEntry) string {
	var sb strings.Builder
	sb.WriteString("[console_scripts]\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s = %s:entrypoints.%s\n", e.original, pythonName, e.key)
	}
	return sb.String()
}

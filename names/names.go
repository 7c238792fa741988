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
Package names normalizes NPM package names into the disjoint Python
distribution namespace (SPEC_FULL.md §4.2), grounded on
original_source's npm.py (NormName, make_safe_py_name, _norm_py_name,
_searchable_py_name).
*/
package names

import "strings"

// NormName is the normalized (org, package) split of one NPM name.
type NormName struct {
	JSName  string
	HasOrg  bool
	Org     string // normalized; "" unless HasOrg
	Package string // normalized; never ""; "undefined" is a valid value
}

// Normalize splits and normalizes an NPM name ("package" or
// "@org/package") per SPEC_FULL.md §4.2.
func Normalize(jsName string) NormName {
	org, pkg, hasOrg := splitOrgPackage(jsName)
	normOrg := normalizeComponent(org)
	normPkg := normalizeComponent(pkg)

	if normPkg == "" {
		normPkg = "undefined"
	}
	if hasOrg && normOrg == "" {
		normOrg = "undefined"
	}
	if hasOrg {
		normOrg = prefixDigitLeading(normOrg)
	}
	normPkg = prefixDigitLeading(normPkg)

	return NormName{JSName: jsName, HasOrg: hasOrg, Org: normOrg, Package: normPkg}
}

// splitOrgPackage splits "@org/package" into ("org", "package", true), or
// treats a name with no "@" prefix as ("", name, false).
func splitOrgPackage(jsName string) (org, pkg string, hasOrg bool) {
	if !strings.HasPrefix(jsName, "@") {
		return "", jsName, false
	}
	rest := jsName[1:]
	i := strings.IndexByte(rest, '/')
	if i < 0 {
		return "", rest, true
	}
	return rest[:i], rest[i+1:], true
}

// normalizeComponent lowercases s and collapses every run of
// non-alphanumeric characters to a single "-", stripping any leading or
// trailing "-".
func normalizeComponent(s string) string {
	s = strings.ToLower(s)
	var sb strings.Builder
	inRun := false
	for _, r := range s {
		if isAlnum(r) {
			sb.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			sb.WriteByte('-')
			inRun = true
		}
	}
	return strings.Trim(sb.String(), "-")
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// prefixDigitLeading prepends "n" to s if s begins with a digit, so the
// result is always a valid Python identifier segment.
func prefixDigitLeading(s string) string {
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		return "n" + s
	}
	return s
}

// Theoretical returns the undecorated ("dedup_seq == 0") Python name for
// n under the given prefix: "{prefix}.{org}.{package}" or
// "{prefix}.{package}".
func (n NormName) Theoretical(prefix string) string {
	if n.HasOrg {
		return prefix + "." + n.Org + "." + n.Package
	}
	return prefix + "." + n.Package
}

// Searchable collapses "." and "_" to "-" in a Python name, matching how
// Python package managers normalize query input (SPEC_FULL.md §4.2
// "Searchable form").
func Searchable(pyName string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == '_' {
			return '-'
		}
		return r
	}, pyName)
}

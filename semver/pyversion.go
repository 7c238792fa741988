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

import (
	"fmt"
	"regexp"
)

// pep440ish validates (without fully parsing) that a literal
// concatenation of a release triple, a prerelease suffix, and a build
// suffix forms a string PEP 440 would accept. It is deliberately a
// subset of the full PEP 440 grammar util/semver/pep440.go implements
// for general ecosystem translation: this package only ever needs to
// validate strings it has itself constructed, never arbitrary PyPI
// version strings, so a full parser is not warranted (see DESIGN.md).
var pep440ish = regexp.MustCompile(`(?i)^[0-9]+\.[0-9]+\.[0-9]+` +
	`((?:[-_.]?(?:a|b|c|rc|alpha|beta|pre|preview)[-_.]?[0-9]*)` +
	`|(?:[-_.]?(?:post|rev|r)[-_.]?[0-9]*)` +
	`|(?:[-_.]?dev[-_.]?[0-9]*))*$`)

// ToPythonVersion converts a concrete SemVer version into its Python
// equivalent: finalize(major.minor.patch), then the prerelease and build
// identifiers concatenated literally, per SPEC_FULL.md §4.1's
// "SemVer → Python version conversion" rule. It fails with a
// *ConversionError if the result is not a valid Python version string.
func ToPythonVersion(v Version) (string, error) {
	s := fmt.Sprintf("%d.%d.%d%s%s", v.Major, v.Minor, v.Patch, v.Prerelease, v.Build)
	if !pep440ish.MatchString(s) {
		return "", &ConversionError{Version: v.String()}
	}
	return s, nil
}

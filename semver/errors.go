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

import "fmt"

// ParseError reports that a specifier or version string could not be
// parsed: a URL, a dist-tag like "latest", a "file:" reference, or any
// other string the NPM range grammar does not admit.
type ParseError struct {
	Input string
	Cause string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("semver: cannot parse %q: %s", e.Input, e.Cause)
}

func parseErrorf(input, format string, args ...any) error {
	return &ParseError{Input: input, Cause: fmt.Sprintf(format, args...)}
}

// ConversionError reports that a concrete SemVer version has no valid
// Python-ecosystem equivalent.
type ConversionError struct {
	Version string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("semver: %q has no valid python version equivalent", e.Version)
}

// Copyright 2024 Google LLC
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

package spdx

import "testing"

func TestParseAndString(t *testing.T) {
	cases := []string{
		"MIT",
		"Apache-2.0",
		"(MIT OR Apache-2.0)",
		"MIT AND Apache-2.0",
		"GPL-2.0-only WITH Classpath-exception-2.0",
		"GPL-3.0-or-later+",
	}
	for _, s := range cases {
		e, err := Parse(s)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", s, err)
			continue
		}
		if e.String() != s {
			t.Errorf("Parse(%q).String() = %q, want %q", s, e.String(), s)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"MIT OR",
		"MIT AND AND Apache-2.0",
		"(MIT OR Apache-2.0",
		"MIT OR Apache-2.0)",
		"MIT Apache-2.0",
	}
	for _, s := range cases {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
	}
}

func TestCanonSortsOperands(t *testing.T) {
	e, err := Parse("Zlib OR MIT OR Apache-2.0")
	if err != nil {
		t.Fatal(err)
	}
	e.Canon()
	want := "Apache-2.0 OR MIT OR Zlib"
	if got := e.String(); got != want {
		t.Errorf("Canon().String() = %q, want %q", got, want)
	}
}

func TestCanonDropsOutermostParen(t *testing.T) {
	e, err := Parse("(MIT)")
	if err != nil {
		t.Fatal(err)
	}
	e.Canon()
	if got := e.String(); got != "MIT" {
		t.Errorf("Canon().String() = %q, want %q", got, "MIT")
	}
}

func TestSlashIsOrAlias(t *testing.T) {
	e, err := Parse("MIT/Apache-2.0")
	if err != nil {
		t.Fatal(err)
	}
	// The parser accepts "/" as a deprecated OR alias but always renders
	// the canonical "OR" spelling.
	if got, want := e.String(), "MIT OR Apache-2.0"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

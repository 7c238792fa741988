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
Package store defines the Distribution/Version/Archive/Download entity
model (SPEC_FULL.md §3) and the Store interface the rest of the module
relies on for persistence (SPEC_FULL.md §6), grounded on
original_source's models.py and on util/resolve/client.go's
Client/LocalClient split.
*/
package store

import "time"

// Distribution is one js_name ↔ python_name mapping (SPEC_FULL.md §3).
// A primary distribution has Original and GeneratedFor both zero; a
// synthetic distribution has both set.
type Distribution struct {
	ID                   string
	JSName               string
	PythonName           string
	PythonNameBase       string
	PythonNameSearchable string
	DedupSeq             int
	Description          string

	// Original points at the primary Distribution this one is a
	// synthetic copy of. Empty for primary distributions.
	Original string
	// GeneratedFor points at the root Version this synthetic
	// distribution was generated for. Empty for primary distributions.
	GeneratedFor string

	// Dependencies maps python_name to a flat Python range specifier.
	// Nil means "not yet resolved".
	Dependencies map[string]string
}

// IsPrimary reports whether d is a primary (non-synthetic) distribution.
func (d Distribution) IsPrimary() bool {
	return d.Original == "" && d.GeneratedFor == ""
}

// Version is one (Distribution, PythonVersion) pair.
type Version struct {
	ID             string
	Distribution   string // Distribution.ID
	PythonVersion  string
	JSVersion      string
	Dependencies   map[string]string // only meaningful on tree roots
}

// ArchiveFormat enumerates the archive kinds a Version can have. Only
// Wheel is synthesized by this module; Sdist is modeled for parity with
// the original schema but never produced (SPEC_FULL.md §3).
type ArchiveFormat string

const (
	FormatWheel ArchiveFormat = "wheel"
	FormatSdist ArchiveFormat = "sdist"
)

// Translator versions the synthesis algorithm; bumping it invalidates
// cached Archives so they regenerate.
type Translator string

const TranslatorV1 Translator = "v1"

// Archive is one synthesized artifact for a Version.
type Archive struct {
	ID         string
	Version    string // Version.ID
	Format     ArchiveFormat
	Translator Translator
	HashSHA256 string
	Path       string // storage path, e.g. distributions/v1/ab/cd/ef/01/name.whl
}

// Download is an append-only fetch event against an Archive.
type Download struct {
	ID      string
	Archive string // Archive.ID
	Date    time.Time
}

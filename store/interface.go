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

	"github.com/Xowap/npym/names"
)

// ErrNotFound is returned by lookups that find no matching row.
var ErrNotFound = errors.New("store: not found")

// ErrConflict is returned when a caller attempts to violate a uniqueness
// invariant the Store enforces outside of the documented
// on-conflict-do-nothing bulk-insert paths (e.g. select-for-update
// contention surfaced as a conflict rather than a block).
var ErrConflict = errors.New("store: conflict")

// Store is the persistence interface the core depends on
// (SPEC_FULL.md §6 "Storage"). Every Store implementation must be safe
// for concurrent use.
type Store interface {
	// DistributionByJSName looks up a primary distribution
	// (generated_for = null) by its NPM name.
	DistributionByJSName(ctx context.Context, jsName string) (Distribution, error)
	// DistributionByPythonName looks up any distribution, primary or
	// synthetic, by its globally unique python_name.
	DistributionByPythonName(ctx context.Context, pythonName string) (Distribution, error)
	// DistributionByPythonNameSearchable looks up any distribution by
	// its globally unique searchable python name.
	DistributionByPythonNameSearchable(ctx context.Context, searchable string) (Distribution, error)
	// DistributionsByBase implements names.Lookup: for each given
	// python_name_base, returns the already-committed primary
	// distributions sharing it, ordered by dedup_seq ascending.
	DistributionsByBase(ctx context.Context, bases []string) (map[string][]names.ExistingEntry, error)
	// InsertDistributions bulk-inserts distributions, skipping (not
	// erroring on) any whose js_name already exists.
	InsertDistributions(ctx context.Context, ds []Distribution) error
	// LockDistributionForUpdate takes a row-level exclusive lock on a
	// distribution for the duration of fn, e.g. an archive
	// lookup-or-create, so concurrent requests serialize instead of
	// both synthesizing.
	LockDistributionForUpdate(ctx context.Context, id string, fn func(Distribution) error) error

	// VersionsByDistribution returns all known Versions of a
	// distribution.
	VersionsByDistribution(ctx context.Context, distributionID string) ([]Version, error)
	// InsertVersions bulk-inserts versions, skipping any whose
	// (distribution, python_version) pair already exists.
	InsertVersions(ctx context.Context, vs []Version) error
	// SetVersionDependencies persists a root Version's resolved
	// dependency map.
	SetVersionDependencies(ctx context.Context, versionID string, deps map[string]string) error

	// ArchiveByVersion looks up the Archive for a (version, format,
	// translator) triple.
	ArchiveByVersion(ctx context.Context, versionID string, format ArchiveFormat, translator Translator) (Archive, error)
	// PutArchive creates or replaces the Archive row for a version.
	PutArchive(ctx context.Context, a Archive) error
	// DeleteArchive removes an Archive row (translator bump
	// invalidation).
	DeleteArchive(ctx context.Context, id string) error

	// RecordDownload appends a Download event.
	RecordDownload(ctx context.Context, d Download) error
}

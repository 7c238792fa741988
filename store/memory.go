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
	"fmt"
	"sort"
	"sync"

	"github.com/Xowap/npym/names"
)

// Memory is a mutex-guarded in-memory Store, grounded on
// util/resolve/client.go's LocalClient: maps protected by one mutex,
// good enough to back tests and the example command. It does not
// persist across process restarts and is not a database.
type Memory struct {
	mu sync.Mutex

	distByID           map[string]Distribution
	distByJSName       map[string]string // primary-only: js_name -> id
	distByPythonName   map[string]string
	distBySearchable   map[string]string
	versByID           map[string]Version
	versByDistribution map[string][]string // distribution id -> version ids, insertion order
	archByID           map[string]Archive
	archByVersionKey   map[string]string // "versionID|format|translator" -> archive id
	downloads          []Download

	seq int
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		distByID:           map[string]Distribution{},
		distByJSName:       map[string]string{},
		distByPythonName:   map[string]string{},
		distBySearchable:   map[string]string{},
		versByID:           map[string]Version{},
		versByDistribution: map[string][]string{},
		archByID:           map[string]Archive{},
		archByVersionKey:   map[string]string{},
	}
}

func (m *Memory) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func archiveKey(versionID string, format ArchiveFormat, translator Translator) string {
	return string(versionID) + "|" + string(format) + "|" + string(translator)
}

// DistributionByJSName implements Store.
func (m *Memory) DistributionByJSName(_ context.Context, jsName string) (Distribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.distByJSName[jsName]
	if !ok {
		return Distribution{}, fmt.Errorf("store: js_name %q: %w", jsName, ErrNotFound)
	}
	return m.distByID[id], nil
}

// DistributionByPythonName implements Store.
func (m *Memory) DistributionByPythonName(_ context.Context, pythonName string) (Distribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.distByPythonName[pythonName]
	if !ok {
		return Distribution{}, fmt.Errorf("store: python_name %q: %w", pythonName, ErrNotFound)
	}
	return m.distByID[id], nil
}

// DistributionByPythonNameSearchable implements Store.
func (m *Memory) DistributionByPythonNameSearchable(_ context.Context, searchable string) (Distribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.distBySearchable[searchable]
	if !ok {
		return Distribution{}, fmt.Errorf("store: python_name_searchable %q: %w", searchable, ErrNotFound)
	}
	return m.distByID[id], nil
}

// DistributionsByBase implements Store (and names.Lookup).
func (m *Memory) DistributionsByBase(_ context.Context, bases []string) (map[string][]names.ExistingEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := map[string]bool{}
	for _, b := range bases {
		wanted[b] = true
	}
	out := map[string][]names.ExistingEntry{}
	for _, d := range m.distByID {
		if !d.IsPrimary() {
			continue
		}
		if !wanted[d.PythonNameBase] {
			continue
		}
		out[d.PythonNameBase] = append(out[d.PythonNameBase], names.ExistingEntry{JSName: d.JSName, DedupSeq: d.DedupSeq})
	}
	for base, entries := range out {
		sort.Slice(entries, func(i, j int) bool { return entries[i].DedupSeq < entries[j].DedupSeq })
		out[base] = entries
	}
	return out, nil
}

// InsertDistributions implements Store: skips (does not error on) any
// distribution whose js_name already exists, matching the
// ON-CONFLICT-DO-NOTHING semantics of spec.md §4.2 step 4.
func (m *Memory) InsertDistributions(_ context.Context, ds []Distribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range ds {
		key := d.JSName
		if !d.IsPrimary() {
			key = d.GeneratedFor + "|" + d.JSName // (generated_for, js_name) unique for synthetics
		}
		if _, exists := m.distByJSNameKey(key, d.IsPrimary()); exists {
			continue
		}
		if d.ID == "" {
			d.ID = m.nextID("dist")
		}
		m.distByID[d.ID] = d
		if d.IsPrimary() {
			m.distByJSName[d.JSName] = d.ID
		}
		m.distByPythonName[d.PythonName] = d.ID
		m.distBySearchable[d.PythonNameSearchable] = d.ID
	}
	return nil
}

func (m *Memory) distByJSNameKey(key string, primary bool) (string, bool) {
	if primary {
		id, ok := m.distByJSName[key]
		return id, ok
	}
	for id, d := range m.distByID {
		if !d.IsPrimary() && d.GeneratedFor+"|"+d.JSName == key {
			return id, true
		}
	}
	return "", false
}

// LockDistributionForUpdate implements Store. Memory has no real
// row-level locking; the store's single mutex is held for the whole
// callback, which is sufficient to serialize archive
// lookup-or-create against a reference in-memory store.
func (m *Memory) LockDistributionForUpdate(_ context.Context, id string, fn func(Distribution) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.distByID[id]
	if !ok {
		return fmt.Errorf("store: distribution %q: %w", id, ErrNotFound)
	}
	return fn(d)
}

// VersionsByDistribution implements Store.
func (m *Memory) VersionsByDistribution(_ context.Context, distributionID string) ([]Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.versByDistribution[distributionID]
	out := make([]Version, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.versByID[id])
	}
	return out, nil
}

// InsertVersions implements Store: skips any (distribution,
// python_version) pair that already exists.
func (m *Memory) InsertVersions(_ context.Context, vs []Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range vs {
		dup := false
		for _, id := range m.versByDistribution[v.Distribution] {
			if m.versByID[id].PythonVersion == v.PythonVersion {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		if v.ID == "" {
			v.ID = m.nextID("ver")
		}
		m.versByID[v.ID] = v
		m.versByDistribution[v.Distribution] = append(m.versByDistribution[v.Distribution], v.ID)
	}
	return nil
}

// SetVersionDependencies implements Store.
func (m *Memory) SetVersionDependencies(_ context.Context, versionID string, deps map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.versByID[versionID]
	if !ok {
		return fmt.Errorf("store: version %q: %w", versionID, ErrNotFound)
	}
	v.Dependencies = deps
	m.versByID[versionID] = v
	return nil
}

// ArchiveByVersion implements Store.
func (m *Memory) ArchiveByVersion(_ context.Context, versionID string, format ArchiveFormat, translator Translator) (Archive, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.archByVersionKey[archiveKey(versionID, format, translator)]
	if !ok {
		return Archive{}, fmt.Errorf("store: archive for version %q: %w", versionID, ErrNotFound)
	}
	return m.archByID[id], nil
}

// PutArchive implements Store.
func (m *Memory) PutArchive(_ context.Context, a Archive) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = m.nextID("arch")
	}
	m.archByID[a.ID] = a
	m.archByVersionKey[archiveKey(a.Version, a.Format, a.Translator)] = a.ID
	return nil
}

// DeleteArchive implements Store.
func (m *Memory) DeleteArchive(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.archByID[id]
	if !ok {
		return nil
	}
	delete(m.archByID, id)
	delete(m.archByVersionKey, archiveKey(a.Version, a.Format, a.Translator))
	return nil
}

// RecordDownload implements Store.
func (m *Memory) RecordDownload(_ context.Context, d Download) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = m.nextID("dl")
	}
	m.downloads = append(m.downloads, d)
	return nil
}

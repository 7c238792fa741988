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

package names

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Mapper assigns Python distribution names under a fixed prefix.
type Mapper struct {
	Prefix string
}

// NewMapper returns a Mapper that prefixes every assigned name with
// prefix (e.g. "npym").
func NewMapper(prefix string) *Mapper {
	return &Mapper{Prefix: prefix}
}

// Assignment is one row's worth of name-mapper output, ready to be
// persisted on a Distribution.
type Assignment struct {
	JSName                string
	PythonName            string
	PythonNameBase         string // dedup bucket key: Searchable(theoretical name)
	PythonNameSearchable  string // Searchable(PythonName); globally unique
	DedupSeq              int
}

// Tag computes the 8-hex-character dedup tag for the (seq > 0) entry of
// a colliding bucket, per SPEC_FULL.md §4.2: SHA-256 of
// "{js_name}:{py_name}:{seq}", where py_name is the theoretical
// (dedup_seq == 0) name for the bucket.
func Tag(jsName, theoreticalName string, seq int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d", jsName, theoreticalName, seq)))
	return hex.EncodeToString(sum[:])[:8]
}

// Assign computes the Distribution-ready name fields for jsName, given
// its normalized form, the bucket's theoretical name, and its position
// (seq) within the bucket. seq == 0 keeps the theoretical name verbatim;
// seq > 0 injects an "x{tag}" segment immediately after the prefix.
func (m *Mapper) Assign(n NormName, theoretical string, seq int) Assignment {
	pyName := theoretical
	if seq > 0 {
		tag := Tag(n.JSName, theoretical, seq)
		if n.HasOrg {
			pyName = fmt.Sprintf("%s.x%s.%s.%s", m.Prefix, tag, n.Org, n.Package)
		} else {
			pyName = fmt.Sprintf("%s.x%s.%s", m.Prefix, tag, n.Package)
		}
	}
	return Assignment{
		JSName:               n.JSName,
		PythonName:           pyName,
		PythonNameBase:       Searchable(theoretical),
		PythonNameSearchable: Searchable(pyName),
		DedupSeq:             seq,
	}
}

// ExistingEntry is one already-committed primary distribution sharing a
// python_name_base bucket, as reported by storage.
type ExistingEntry struct {
	JSName   string
	DedupSeq int
}

// Lookup fetches, for each of the given python_name_base values, the
// already-committed primary distributions sharing that bucket, ordered
// by DedupSeq ascending. It is satisfied by store.Store.
type Lookup interface {
	DistributionsByBase(ctx context.Context, bases []string) (map[string][]ExistingEntry, error)
}

// ImportChunk normalizes a chunk of NPM names and assigns them Python
// names, consulting lookup for already-committed collisions so that
// dedup_seq assignment is stable across incremental imports
// (SPEC_FULL.md §4.2 "Bulk import"). Names already present in lookup are
// omitted from the result; callers insert the rest with
// on-conflict-do-nothing on js_name.
func (m *Mapper) ImportChunk(ctx context.Context, lookup Lookup, jsNames []string) ([]Assignment, error) {
	norms := make([]NormName, len(jsNames))
	theoretical := make([]string, len(jsNames))
	bases := make([]string, len(jsNames))
	baseSet := map[string]bool{}
	for i, js := range jsNames {
		n := Normalize(js)
		norms[i] = n
		theoretical[i] = n.Theoretical(m.Prefix)
		bases[i] = Searchable(theoretical[i])
		baseSet[bases[i]] = true
	}

	baseList := make([]string, 0, len(baseSet))
	for b := range baseSet {
		baseList = append(baseList, b)
	}
	existing, err := lookup.DistributionsByBase(ctx, baseList)
	if err != nil {
		return nil, fmt.Errorf("names: looking up existing distributions: %w", err)
	}

	// Per-base ordered index: DB entries first (preserving their
	// committed order), then newly-seen names appended in chunk order,
	// skipping duplicates already present either in storage or earlier
	// in this same chunk.
	type bucket struct {
		order []string // js_names in dedup_seq order
		seen  map[string]bool
	}
	buckets := map[string]*bucket{}
	for base, entries := range existing {
		b := &bucket{seen: map[string]bool{}}
		for _, e := range entries {
			b.order = append(b.order, e.JSName)
			b.seen[e.JSName] = true
		}
		buckets[base] = b
	}

	var out []Assignment
	for i, n := range norms {
		base := bases[i]
		b, ok := buckets[base]
		if !ok {
			b = &bucket{seen: map[string]bool{}}
			buckets[base] = b
		}
		if b.seen[n.JSName] {
			continue // already committed in a prior import
		}
		b.seen[n.JSName] = true
		b.order = append(b.order, n.JSName)
		seq := len(b.order) - 1
		out = append(out, m.Assign(n, theoretical[i], seq))
	}
	return out, nil
}

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

package resolve

import (
	"sync"

	"github.com/Xowap/npym/internal/lru"
	"github.com/Xowap/npym/npmregistry"
)

// defaultCacheSize bounds the number of package documents and version
// lists kept in process memory at once. Unlike a distributed process,
// this module only ever talks to one registry from one machine, so a
// single in-process lru.Cache per kind of entry is all SPEC_FULL.md's
// ambient caching calls for.
const defaultCacheSize = 4096

// metadataCache memoizes registry lookups and serializes concurrent
// fetches of the same package name, grounded on resolver.py's
// functools + defaultdict(asyncio.Lock) combination (Resolver.__init__
// builds both a dict cache and a dict of locks keyed by js_name).
type metadataCache struct {
	packages *lru.Cache[string, npmregistry.PackageDoc]
	versions *lru.Cache[string, []resolvedVersion]

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMetadataCache() *metadataCache {
	return &metadataCache{
		packages: lru.New[string, npmregistry.PackageDoc](defaultCacheSize),
		versions: lru.New[string, []resolvedVersion](defaultCacheSize),
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing fetches of jsName, creating it
// on first use. Locks are never removed: the set of distinct package
// names touched by one resolution is bounded by the dependency graph
// size, so this cannot leak unbounded memory within a single run.
func (c *metadataCache) lockFor(jsName string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[jsName]
	if !ok {
		l = &sync.Mutex{}
		c.locks[jsName] = l
	}
	return l
}

func (c *metadataCache) getPackage(jsName string) (npmregistry.PackageDoc, bool) {
	return c.packages.Get(jsName)
}

func (c *metadataCache) putPackage(jsName string, doc npmregistry.PackageDoc) {
	c.packages.Add(jsName, doc)
}

func (c *metadataCache) getVersions(jsName string) ([]resolvedVersion, bool) {
	return c.versions.Get(jsName)
}

func (c *metadataCache) putVersions(jsName string, vs []resolvedVersion) {
	c.versions.Add(jsName, vs)
}

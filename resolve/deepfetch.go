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
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Xowap/npym/npmregistry"
)

// debug gates verbose tracing of the fetch loop, grounded on
// util/resolve/npm/resolve.go's debug-bool + log.Printf idiom (left
// off by default; flip to trace a stuck resolution by hand).
const debug = false

// deepFetch concurrently primes the metadata cache with every package
// transitively reachable from roots, grounded on resolver.py's
// deep_fetch: a work queue of names still "to_fetch", drained by
// fan-out goroutines (one errgroup per level of the queue) instead of
// Python's per-name asyncio.Lock + asyncio.gather.
//
// Unlike resolver.py, a single malformed dependency specifier or a 404
// for one transitive package must not abort the whole prefetch: those
// are exactly the "can't happen, but the registry is full of
// surprises" cases spec.md §7 asks us to skip over silently, so errors
// from getPackageInfo are logged (in debug mode) and swallowed here.
// Only cancellation of ctx propagates: once a level finishes after ctx
// is done, deepFetch returns ctx.Err().
func (r *Resolver) deepFetch(ctx context.Context, roots []string) error {
	var mu sync.Mutex
	fetched := make(map[string]bool)
	queue := append([]string(nil), roots...)

	for len(queue) > 0 {
		batch := queue
		queue = nil

		g, gctx := errgroup.WithContext(ctx)
		discovered := make([][]string, len(batch))

		for i, jsName := range batch {
			i, jsName := i, jsName
			mu.Lock()
			already := fetched[jsName]
			fetched[jsName] = true
			mu.Unlock()
			if already {
				continue
			}

			g.Go(func() error {
				doc, err := r.getPackageInfo(gctx, jsName)
				if err != nil {
					if debug {
						log.Printf("resolve: deepFetch: %s: %v", jsName, err)
					}
					return nil
				}
				discovered[i] = dependencyNamesOf(doc)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		mu.Lock()
		for _, names := range discovered {
			for _, n := range names {
				if !fetched[n] {
					queue = append(queue, n)
				}
			}
		}
		mu.Unlock()
	}
	return nil
}

// dependencyNamesOf collects every distinct package name named by any
// version's regular dependencies in doc, grounded on resolver.py's
// deep_fetch, which only ever walks version.get("dependencies", {}) —
// peerDependencies never feeds prefetch or tree-building there, only
// wheel.requiresDist's Requires-Dist merge.
func dependencyNamesOf(doc npmregistry.PackageDoc) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range doc.Versions {
		for name := range v.Dependencies {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

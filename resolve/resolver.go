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
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/Xowap/npym/internal/canonhash"
	"github.com/Xowap/npym/names"
	"github.com/Xowap/npym/npmregistry"
	"github.com/Xowap/npym/semver"
	"github.com/Xowap/npym/store"
)

// Resolver flattens one NPM package's dependency tree into a set of
// synthetic Python distributions, grounded end to end on
// original_source's resolver.py (VersionConstraint, Node, Resolver).
type Resolver struct {
	Client npmregistry.Client
	Store  store.Store
	Mapper *names.Mapper

	cache *metadataCache
}

// NewResolver builds a Resolver, grounded on util/resolve/npm/resolve.go's
// NewResolver(client) constructor shape.
func NewResolver(client npmregistry.Client, st store.Store, mapper *names.Mapper) *Resolver {
	return &Resolver{
		Client: client,
		Store:  st,
		Mapper: mapper,
		cache:  newMetadataCache(),
	}
}

// getPackageInfo fetches (and caches) a package's full metadata
// document, serialized per js_name so concurrent requesters of the same
// package share one registry round trip, grounded on resolver.py's
// get_package_info (functools-cached + per-name asyncio.Lock).
func (r *Resolver) getPackageInfo(ctx context.Context, jsName string) (npmregistry.PackageDoc, error) {
	if doc, ok := r.cache.getPackage(jsName); ok {
		return doc, nil
	}
	lock := r.cache.lockFor(jsName)
	lock.Lock()
	defer lock.Unlock()

	if doc, ok := r.cache.getPackage(jsName); ok {
		return doc, nil
	}
	doc, err := r.Client.Package(ctx, jsName)
	if err != nil {
		return npmregistry.PackageDoc{}, err
	}
	r.cache.putPackage(jsName, doc)
	return doc, nil
}

// getPackageVersions returns every version of jsName as a
// resolvedVersion, sorted descending by SemVer precedence, grounded on
// resolver.py's get_package_versions / package_versions (the
// local-Version bulk-insert step is handled later, by
// CreateDistributions and its caller, not here).
func (r *Resolver) getPackageVersions(ctx context.Context, jsName string) ([]resolvedVersion, error) {
	if vs, ok := r.cache.getVersions(jsName); ok {
		return vs, nil
	}
	doc, err := r.getPackageInfo(ctx, jsName)
	if err != nil {
		return nil, err
	}

	var out []resolvedVersion
	for raw := range doc.Versions {
		sv, err := semver.ParseVersion(raw)
		if err != nil {
			if debug {
				log.Printf("resolve: %s: skipping unparseable version %q: %v", jsName, raw, err)
			}
			continue
		}
		pyVersion, err := semver.ToPythonVersion(sv)
		if err != nil {
			if debug {
				log.Printf("resolve: %s: skipping %q: %v", jsName, raw, err)
			}
			continue
		}
		out = append(out, resolvedVersion{
			distributionID: jsName,
			jsName:         jsName,
			jsVersion:      sv.String(),
			pythonVersion:  pyVersion,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		vi, _ := semver.ParseVersion(out[i].jsVersion)
		vj, _ := semver.ParseVersion(out[j].jsVersion)
		return semver.Compare(vi, vj) > 0
	})
	r.cache.putVersions(jsName, out)
	return out, nil
}

// findBestVersion returns the highest version of jsName accepted by c,
// grounded on resolver.py's find_best_version (a linear scan over
// versions already sorted descending, returning the first accepted).
func (r *Resolver) findBestVersion(ctx context.Context, c VersionConstraint, jsName string) (resolvedVersion, bool, error) {
	versions, err := r.getPackageVersions(ctx, jsName)
	if err != nil {
		return resolvedVersion{}, false, err
	}
	for _, v := range versions {
		sv, err := semver.ParseVersion(v.jsVersion)
		if err != nil {
			continue
		}
		if c.Accept(sv) {
			return v, true, nil
		}
	}
	return resolvedVersion{}, false, nil
}

// getDependencies returns the regular dependency specs declared by
// jsName@jsVersion, grounded on resolver.py's get_dependencies, which
// reads only version_info["dependencies"] — peerDependencies never
// feeds tree-building there, only wheel.requiresDist's Requires-Dist
// merge (raises ValueError when the version can't be found; here that
// maps to ErrNotFound, which build_dep_tree treats the same way
// resolver.py's caller does: log and skip the edge).
func (r *Resolver) getDependencies(ctx context.Context, jsName, jsVersion string) (map[string]string, error) {
	doc, err := r.getPackageInfo(ctx, jsName)
	if err != nil {
		return nil, err
	}
	v, ok := doc.Versions[jsVersion]
	if !ok {
		return nil, fmt.Errorf("resolve: %s@%s: %w", jsName, jsVersion, ErrNotFound)
	}
	return v.Dependencies, nil
}

// pendingEdge is one not-yet-ingested dependency edge discovered while
// walking the tree, grounded on resolver.py's queue of (current_node,
// dep) pairs drained by build_dep_tree's while loop.
type pendingEdge struct {
	requester nodeIdx
	jsName    string
	spec      string
}

// BuildDepTree resolves rootJSName@rootJSVersion into a Tree by
// breadth-first ingesting every transitive dependency, grounded on
// resolver.py's Resolver.build_dep_tree: deep_fetch warms the cache
// first so the synchronous BFS below never blocks on network I/O, then
// a queue of edges is drained, re-queuing any node ingest() reports as
// modified exactly like the Python version's `if modified: queue.extend(...)`.
func (r *Resolver) BuildDepTree(ctx context.Context, rootJSName, rootJSVersion string) (*Tree, error) {
	if err := r.deepFetch(ctx, []string{rootJSName}); err != nil {
		return nil, err
	}

	rootPyVersion, err := pyVersionOf(rootJSVersion)
	if err != nil {
		return nil, err
	}
	tree, err := NewTree(resolvedVersion{
		distributionID: rootJSName,
		jsName:         rootJSName,
		jsVersion:      rootJSVersion,
		pythonVersion:  rootPyVersion,
	})
	if err != nil {
		return nil, err
	}

	queue, err := r.edgesOf(ctx, tree.Root(), rootJSName, rootJSVersion)
	if err != nil {
		return nil, err
	}

	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]

		c, err := NewConstraint(e.spec)
		if err != nil {
			if debug {
				log.Printf("resolve: skipping %s %q: unparseable specifier: %v", e.jsName, e.spec, err)
			}
			continue
		}

		if err := r.deepFetch(ctx, []string{e.jsName}); err != nil {
			return nil, err
		}
		best, found, err := r.findBestVersion(ctx, c, e.jsName)
		if err != nil {
			if debug {
				log.Printf("resolve: skipping %s %q: %v", e.jsName, e.spec, err)
			}
			continue
		}
		if !found {
			return nil, fmt.Errorf("resolve: %s %q: %w", e.jsName, e.spec, ErrUnsatisfiable)
		}

		modified, affected := tree.ingest(e.requester, best, c, func(c VersionConstraint, distributionID string) (resolvedVersion, bool) {
			v, ok, err := r.findBestVersion(ctx, c, distributionID)
			if err != nil {
				return resolvedVersion{}, false
			}
			return v, ok
		})
		if modified {
			more, err := r.edgesOf(ctx, affected, tree.at(affected).version.jsName, tree.at(affected).version.jsVersion)
			if err != nil {
				return nil, err
			}
			queue = append(queue, more...)
		}
	}

	return tree, nil
}

// edgesOf fetches jsName@jsVersion's dependency map and turns it into
// pendingEdges requested by node i. Only regular dependencies feed the
// tree (spec.md's Non-goals explicitly drop NPM peer-dependency
// fidelity; peer specs are merged into Requires-Dist separately, by
// wheel.requiresDist, from the doc it is handed directly).
func (r *Resolver) edgesOf(ctx context.Context, i nodeIdx, jsName, jsVersion string) ([]pendingEdge, error) {
	regular, err := r.getDependencies(ctx, jsName, jsVersion)
	if err != nil {
		if debug {
			log.Printf("resolve: %s@%s: %v", jsName, jsVersion, err)
		}
		return nil, nil
	}
	var out []pendingEdge
	for name, spec := range regular {
		out = append(out, pendingEdge{requester: i, jsName: name, spec: spec})
	}
	return out, nil
}

func pyVersionOf(jsVersion string) (string, error) {
	sv, err := semver.ParseVersion(jsVersion)
	if err != nil {
		return "", err
	}
	return semver.ToPythonVersion(sv)
}

// ResolveNodes assigns every node its synthetic identity, grounded on
// resolver.py's _resolve_nodes: the root keeps the plain distribution
// identity, every other node gets "{theoretical python_name}.x{tag}"
// (the dedup_seq == 0 name of its NPM name, see basePythonName) where
// the tag is a content hash of (root name, root version, node_modules
// path, this version's own dependency map), so resolving the same root
// again yields the same names while nodes at different paths get
// different ones.
func (r *Resolver) ResolveNodes(ctx context.Context, tree *Tree, rootPythonName string) error {
	var resolveOne func(i nodeIdx) error
	resolveOne = func(i nodeIdx) error {
		n := tree.at(i)
		path := strings.Join(tree.ancestorsJSNames(i), "/node_modules/")

		if i == tree.Root() {
			n.resolution = &nodeResolution{pythonName: rootPythonName, jsName: path}
		} else {
			regular, err := r.getDependencies(ctx, n.version.jsName, n.version.jsVersion)
			if err != nil {
				regular = nil
			}
			root := tree.at(tree.rootOf(i))
			sig := map[string]any{
				"name":         root.version.jsName,
				"version":      root.version.jsVersion,
				"path":         path,
				"dependencies": regular,
			}
			tag := canonhash.Hash(sig, 8)
			base := n.version.distributionID
			pythonName := fmt.Sprintf("%s.x%s", basePythonName(base, r.Mapper.Prefix), tag)
			n.resolution = &nodeResolution{pythonName: pythonName, jsName: path}
		}

		for _, c := range n.children {
			if err := resolveOne(c); err != nil {
				return err
			}
		}
		return nil
	}
	return resolveOne(tree.Root())
}

// basePythonName returns the theoretical (dedup_seq == 0) python_name
// for an NPM package name, matching names.NormName.Theoretical.
func basePythonName(jsName, prefix string) string {
	return names.Normalize(jsName).Theoretical(prefix)
}

// CreateDistributions walks a resolved Tree and builds the synthetic
// Distribution/Version rows to persist, grounded on resolver.py's
// _create_distributions: each non-root node becomes a synthetic
// Distribution pointing at its primary via Original and at the root's
// Version via GeneratedFor; every node's Dependencies map is built from
// its children's (resolution.python_name -> constraint.flat_py_range()).
// The root's own Dependencies map is returned separately for the
// caller to persist directly onto its existing Version row.
type CreatedDistribution struct {
	Distribution store.Distribution
	Version      store.Version
}

func (r *Resolver) CreateDistributions(ctx context.Context, tree *Tree, rootVersionID string) (rootDeps map[string]string, synths []CreatedDistribution, err error) {
	deps := make(map[nodeIdx]map[string]string)

	var collect func(i nodeIdx) error
	collect = func(i nodeIdx) error {
		n := tree.at(i)
		m := make(map[string]string)
		for _, c := range n.children {
			child := tree.at(c)
			rng, err := child.constraint.FlatPyRange()
			if err != nil {
				return fmt.Errorf("resolve: flattening range for %s: %w", child.version.jsName, err)
			}
			m[child.resolution.pythonName] = rng
			if err := collect(c); err != nil {
				return err
			}
		}
		deps[i] = m
		return nil
	}
	if err := collect(tree.Root()); err != nil {
		return nil, nil, err
	}

	rootDeps = deps[tree.Root()]

	tree.walk(tree.Root(), func(i nodeIdx) bool {
		if i == tree.Root() {
			return true
		}
		n := tree.at(i)

		primary, lookupErr := r.Store.DistributionByJSName(ctx, n.version.jsName)
		if lookupErr != nil {
			err = fmt.Errorf("resolve: looking up primary distribution for %s: %w", n.version.jsName, lookupErr)
			return false
		}

		synths = append(synths, CreatedDistribution{
			Distribution: store.Distribution{
				JSName:               n.resolution.jsName,
				PythonName:           n.resolution.pythonName,
				PythonNameBase:       names.Searchable(basePythonName(n.version.jsName, r.Mapper.Prefix)),
				PythonNameSearchable: names.Searchable(n.resolution.pythonName),
				Original:             primary.ID,
				GeneratedFor:         rootVersionID,
				Dependencies:         deps[i],
			},
			Version: store.Version{
				PythonVersion: n.version.pythonVersion,
				JSVersion:     n.version.jsVersion,
			},
		})
		return true
	})
	if err != nil {
		return nil, nil, err
	}

	return rootDeps, synths, nil
}

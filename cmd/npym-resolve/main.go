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
npym-resolve is an example program that resolves a single version of a
published npm package into its flattened set of synthetic Python
distributions, printing the result to stdout, grounded on
examples/go/resolve/main.go (plain os.Args parsing, log.SetFlags(0), no
flag-parsing library) but talking to the public NPM registry over HTTPS
instead of the internal deps.dev Insights API.
*/
package main

import (
	"context"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Xowap/npym/names"
	"github.com/Xowap/npym/npmregistry"
	"github.com/Xowap/npym/resolve"
	"github.com/Xowap/npym/store"
)

const usage = "Usage: npym-resolve <package-name> <package-version>"

func main() {
	log.SetFlags(0)
	if len(os.Args) != 3 {
		log.Fatal(usage)
	}
	rootJSName, rootJSVersion := os.Args[1], os.Args[2]

	client := npmregistry.NewHTTPClient(30 * time.Second)
	st := store.NewMemory()
	mapper := names.NewMapper("npym")
	resolver := resolve.NewResolver(client, st, mapper)
	ctx := context.Background()

	rootTheoretical := names.Normalize(rootJSName).Theoretical(mapper.Prefix)
	rootAssignment := mapper.Assign(names.Normalize(rootJSName), rootTheoretical, 0)
	rootDist := store.Distribution{
		JSName:               rootJSName,
		PythonName:           rootAssignment.PythonName,
		PythonNameBase:       rootAssignment.PythonNameBase,
		PythonNameSearchable: rootAssignment.PythonNameSearchable,
	}
	if err := st.InsertDistributions(ctx, []store.Distribution{rootDist}); err != nil {
		log.Fatalf("Registering root distribution: %v", err)
	}
	rootDist, err := st.DistributionByJSName(ctx, rootJSName)
	if err != nil {
		log.Fatalf("Looking up root distribution: %v", err)
	}

	start := time.Now()
	log.Printf("Resolving: %s@%s", rootJSName, rootJSVersion)
	tree, err := resolver.BuildDepTree(ctx, rootJSName, rootJSVersion)
	if err != nil {
		log.Fatalf("BuildDepTree: %v", err)
	}
	if err := resolver.ResolveNodes(ctx, tree, rootDist.PythonName); err != nil {
		log.Fatalf("ResolveNodes: %v", err)
	}
	log.Printf("Resolved in %v", time.Since(start))

	rootVersion := store.Version{
		Distribution:  rootDist.ID,
		PythonVersion: tree.RootPythonVersion(),
		JSVersion:     rootJSVersion,
	}
	if err := st.InsertVersions(ctx, []store.Version{rootVersion}); err != nil {
		log.Fatalf("Registering root version: %v", err)
	}
	versions, err := st.VersionsByDistribution(ctx, rootDist.ID)
	if err != nil || len(versions) == 0 {
		log.Fatalf("Looking up root version: %v", err)
	}
	rootVersion = versions[len(versions)-1]

	rootDeps, synths, err := resolver.CreateDistributions(ctx, tree, rootVersion.ID)
	if err != nil {
		log.Fatalf("CreateDistributions: %v", err)
	}
	if err := st.SetVersionDependencies(ctx, rootVersion.ID, rootDeps); err != nil {
		log.Fatalf("SetVersionDependencies: %v", err)
	}

	distributions := make([]store.Distribution, len(synths))
	versionsOut := make([]store.Version, len(synths))
	for i, s := range synths {
		distributions[i] = s.Distribution
	}
	if err := st.InsertDistributions(ctx, distributions); err != nil {
		log.Fatalf("InsertDistributions: %v", err)
	}
	for i, s := range synths {
		d, err := st.DistributionByPythonName(ctx, s.Distribution.PythonName)
		if err != nil {
			log.Fatalf("Looking up synthetic distribution %s: %v", s.Distribution.PythonName, err)
		}
		s.Version.Distribution = d.ID
		versionsOut[i] = s.Version
	}
	if err := st.InsertVersions(ctx, versionsOut); err != nil {
		log.Fatalf("InsertVersions: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	defer w.Flush()
	_, _ = w.Write([]byte("PYTHON NAME\tJS NAME\tPYTHON VERSION\tPRIMARY FOR\n"))
	_, _ = w.Write([]byte(rootDist.PythonName + "\t" + rootDist.JSName + "\t" + rootVersion.PythonVersion + "\t(root)\n"))
	for _, s := range synths {
		_, _ = w.Write([]byte(s.Distribution.PythonName + "\t" + s.Distribution.JSName + "\t" + s.Version.PythonVersion + "\t" + s.Distribution.Original + "\n"))
	}
}

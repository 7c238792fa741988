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
Package npmregistry defines the inbound interface used to fetch package
metadata from the public NPM registry, and the one HTTP-backed
implementation of it (SPEC_FULL.md §6), grounded on
original_source's npm.py (the Npm class: get_package_info,
import_names) and on util/resolve's Client/LocalClient split
(util/resolve/client.go).
*/
package npmregistry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when the registry has no document for a
// requested package name.
var ErrNotFound = errors.New("npmregistry: package not found")

// Dist describes one version's npm-style "dist" block.
type Dist struct {
	Tarball   string `json:"tarball"`
	Integrity string `json:"integrity"`
	Shasum    string `json:"shasum"`
}

// VersionDoc is one entry of a package document's "versions" map.
type VersionDoc struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Description          string            `json:"description"`
	Homepage             string            `json:"homepage"`
	Keywords             []string          `json:"keywords"`
	Author               json.RawMessage   `json:"author"`
	Maintainers          []Person          `json:"maintainers"`
	Bugs                 json.RawMessage   `json:"bugs"`
	Repository           json.RawMessage   `json:"repository"`
	Dependencies         map[string]string `json:"dependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	Bin                  json.RawMessage   `json:"bin"`
	License              json.RawMessage   `json:"license"`
	Dist                 Dist              `json:"dist"`
	Deprecated           string            `json:"deprecated"`
}

// Person is an NPM "author"/"maintainers" entry.
type Person struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthorInfo returns the package's author name and email, normalizing
// NPM's "author" field, which may be a bare "Name <email>"-less string
// or a {name, email} object.
func (v VersionDoc) AuthorInfo() (name, email string) {
	if len(v.Author) == 0 {
		return "", ""
	}
	var asString string
	if json.Unmarshal(v.Author, &asString) == nil {
		return asString, ""
	}
	var asPerson Person
	if json.Unmarshal(v.Author, &asPerson) == nil {
		return asPerson.Name, asPerson.Email
	}
	return "", ""
}

// BugsURL returns the package's issue-tracker URL, normalizing NPM's
// "bugs" field, which may be a bare URL string or a {url, email} object.
func (v VersionDoc) BugsURL() string {
	if len(v.Bugs) == 0 {
		return ""
	}
	var asString string
	if json.Unmarshal(v.Bugs, &asString) == nil {
		return asString
	}
	var asObject struct {
		URL string `json:"url"`
	}
	if json.Unmarshal(v.Bugs, &asObject) == nil {
		return asObject.URL
	}
	return ""
}

// RepositoryURL returns the package's source repository URL,
// normalizing NPM's "repository" field, which may be a bare URL string
// or a {type, url} object.
func (v VersionDoc) RepositoryURL() string {
	if len(v.Repository) == 0 {
		return ""
	}
	var asString string
	if json.Unmarshal(v.Repository, &asString) == nil {
		return asString
	}
	var asObject struct {
		URL string `json:"url"`
	}
	if json.Unmarshal(v.Repository, &asObject) == nil {
		return asObject.URL
	}
	return ""
}

// PackageDoc is NPM's per-package metadata document, trimmed to the
// fields this module consumes (SPEC_FULL.md §6).
type PackageDoc struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	DistTags    map[string]string     `json:"dist-tags"`
	Versions    map[string]VersionDoc `json:"versions"`
}

// BinNames returns the package's console-script names, normalizing
// both of NPM's "bin" shapes: a bare string (binary named after the
// package) or a map of script-name to path.
func (v VersionDoc) BinNames() []string {
	if len(v.Bin) == 0 {
		return nil
	}
	var asString string
	if json.Unmarshal(v.Bin, &asString) == nil {
		if asString == "" {
			return nil
		}
		return []string{v.Name}
	}
	var asMap map[string]string
	if json.Unmarshal(v.Bin, &asMap) == nil {
		names := make([]string, 0, len(asMap))
		for name := range asMap {
			names = append(names, name)
		}
		return names
	}
	return nil
}

// BinMap returns the package's console-script name-to-path mapping,
// normalizing both of NPM's "bin" shapes the same way BinNames does. A
// bare string names a single script after the package itself.
func (v VersionDoc) BinMap() map[string]string {
	if len(v.Bin) == 0 {
		return nil
	}
	var asString string
	if json.Unmarshal(v.Bin, &asString) == nil {
		if asString == "" {
			return nil
		}
		return map[string]string{v.Name: asString}
	}
	var asMap map[string]string
	if json.Unmarshal(v.Bin, &asMap) == nil {
		return asMap
	}
	return nil
}

// LicenseString returns the package's declared license, normalizing
// NPM's legacy {type: "MIT"} object shape alongside the modern plain
// SPDX-expression string.
func (v VersionDoc) LicenseString() string {
	if len(v.License) == 0 {
		return ""
	}
	var asString string
	if json.Unmarshal(v.License, &asString) == nil {
		return asString
	}
	var asObject struct {
		Type string `json:"type"`
	}
	if json.Unmarshal(v.License, &asObject) == nil {
		return asObject.Type
	}
	return ""
}

// Client fetches the data needed to resolve and synthesize packages
// from the NPM registry. Implementations must be safe for concurrent
// use, since resolve.Resolver fans out lookups across goroutines.
type Client interface {
	// Package fetches the full metadata document for one package.
	Package(ctx context.Context, name string) (PackageDoc, error)
	// Tarball fetches the tarball bytes referenced by a Dist.
	Tarball(ctx context.Context, dist Dist) (io.ReadCloser, error)
	// AllNames streams every known NPM package name, in whatever order
	// the upstream feed provides them, invoking fn once per chunk.
	AllNames(ctx context.Context, chunkSize int, fn func(chunk []string) error) error
}

// HTTPClient is the concrete Client backed by net/http, grounded on
// npm.py's Npm class: one base URL for package documents, one constant
// URL for the daily all-names export.
type HTTPClient struct {
	BaseURL    string // e.g. "https://registry.npmjs.org"
	NamesURL   string // e.g. nice-registry/all-the-package-names's names.json
	HTTPClient *http.Client
}

// NewHTTPClient returns an HTTPClient with the public registry defaults
// and a bounded request timeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		BaseURL:  "https://registry.npmjs.org",
		NamesURL: "https://raw.githubusercontent.com/nice-registry/all-the-package-names/master/names.json",
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Package implements Client.
func (c *HTTPClient) Package(ctx context.Context, name string) (PackageDoc, error) {
	u := c.BaseURL + "/" + url.PathEscape(name)
	// Scoped packages ("@org/pkg") must keep their slash, unlike a bare
	// PathEscape of the whole name.
	if strings.HasPrefix(name, "@") {
		parts := strings.SplitN(name[1:], "/", 2)
		if len(parts) == 2 {
			u = c.BaseURL + "/@" + url.PathEscape(parts[0]) + "/" + url.PathEscape(parts[1])
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return PackageDoc{}, fmt.Errorf("npmregistry: building request for %q: %w", name, err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return PackageDoc{}, fmt.Errorf("npmregistry: fetching %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return PackageDoc{}, fmt.Errorf("npmregistry: %q: %w", name, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return PackageDoc{}, fmt.Errorf("npmregistry: %q: unexpected status %s", name, resp.Status)
	}

	var doc PackageDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return PackageDoc{}, fmt.Errorf("npmregistry: decoding %q: %w", name, err)
	}
	return doc, nil
}

// Tarball implements Client.
func (c *HTTPClient) Tarball(ctx context.Context, dist Dist) (io.ReadCloser, error) {
	if dist.Tarball == "" {
		return nil, fmt.Errorf("npmregistry: dist has no tarball URL")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dist.Tarball, nil)
	if err != nil {
		return nil, fmt.Errorf("npmregistry: building tarball request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("npmregistry: fetching tarball %q: %w", dist.Tarball, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("npmregistry: tarball %q: unexpected status %s", dist.Tarball, resp.Status)
	}
	return resp.Body, nil
}

// AllNames implements Client, streaming the daily all-names export
// (originally consumed in Python via json_stream so the whole ~2M-name
// array is never held in memory at once). Go's encoding/json supports
// the same incremental pattern natively via (*json.Decoder).Token, so no
// extra streaming library is wired here (see DESIGN.md).
func (c *HTTPClient) AllNames(ctx context.Context, chunkSize int, fn func(chunk []string) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.NamesURL, nil)
	if err != nil {
		return fmt.Errorf("npmregistry: building names request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("npmregistry: fetching names feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("npmregistry: names feed: unexpected status %s", resp.Status)
	}

	dec := json.NewDecoder(resp.Body)
	if _, err := dec.Token(); err != nil { // consume the opening '['
		return fmt.Errorf("npmregistry: names feed: %w", err)
	}

	chunk := make([]string, 0, chunkSize)
	for dec.More() {
		var name string
		if err := dec.Decode(&name); err != nil {
			return fmt.Errorf("npmregistry: names feed: %w", err)
		}
		chunk = append(chunk, name)
		if len(chunk) == chunkSize {
			if err := fn(chunk); err != nil {
				return err
			}
			chunk = make([]string, 0, chunkSize)
		}
	}
	if len(chunk) > 0 {
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

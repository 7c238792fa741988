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

package npmregistry

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Memory is an in-memory Client fixture, grounded on
// util/resolve/client.go's LocalClient: a hand-populated registry used
// by tests and the example command, with no network access.
type Memory struct {
	Docs     map[string]PackageDoc
	Tarballs map[string][]byte // keyed by Dist.Tarball
	Names    []string
}

// NewMemory returns an empty Memory registry.
func NewMemory() *Memory {
	return &Memory{
		Docs:     map[string]PackageDoc{},
		Tarballs: map[string][]byte{},
	}
}

// AddPackage registers a package document, and its name in the
// all-names feed if not already present.
func (m *Memory) AddPackage(doc PackageDoc) {
	m.Docs[doc.Name] = doc
	for _, n := range m.Names {
		if n == doc.Name {
			return
		}
	}
	m.Names = append(m.Names, doc.Name)
}

// AddTarball registers the tarball bytes served for a given tarball URL.
func (m *Memory) AddTarball(url string, data []byte) {
	m.Tarballs[url] = data
}

// Package implements Client.
func (m *Memory) Package(_ context.Context, name string) (PackageDoc, error) {
	doc, ok := m.Docs[name]
	if !ok {
		return PackageDoc{}, fmt.Errorf("npmregistry: %q: %w", name, ErrNotFound)
	}
	return doc, nil
}

// Tarball implements Client.
func (m *Memory) Tarball(_ context.Context, dist Dist) (io.ReadCloser, error) {
	data, ok := m.Tarballs[dist.Tarball]
	if !ok {
		return nil, fmt.Errorf("npmregistry: no fixture tarball for %q: %w", dist.Tarball, ErrNotFound)
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

// AllNames implements Client.
func (m *Memory) AllNames(_ context.Context, chunkSize int, fn func(chunk []string) error) error {
	for i := 0; i < len(m.Names); i += chunkSize {
		end := i + chunkSize
		if end > len(m.Names) {
			end = len(m.Names)
		}
		if err := fn(m.Names[i:end]); err != nil {
			return err
		}
	}
	return nil
}

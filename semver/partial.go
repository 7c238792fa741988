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

package semver

import "strconv"

// component is one of the (up to three) numeric slots of a partial
// version. open means the slot was missing entirely or written as a
// wildcard ("x", "X", "*").
type component struct {
	open  bool
	value int64
}

// partial is a parsed `xr[.xr[.xr[qualifier]]]` production: a version
// with possibly-wildcard or missing trailing components, plus an
// optional prerelease/build qualifier.
type partial struct {
	components [3]component
	prerelease string
	build      string
}

// k returns the index (0=major, 1=minor, 2=patch) of the first open
// component, or 3 if the partial is fully concrete.
func (p partial) k() int {
	for i, c := range p.components {
		if c.open {
			return i
		}
	}
	return 3
}

// major, minor, patch return the concrete values of those slots; callers
// must only read a slot that k() guarantees is concrete.
func (p partial) major() int64 { return p.components[0].value }
func (p partial) minor() int64 { return p.components[1].value }
func (p partial) patch() int64 { return p.components[2].value }

// concrete builds the fully-resolved Version a fully-concrete partial
// (k()==3) denotes.
func (p partial) concrete() Version {
	return Version{
		Major:      p.major(),
		Minor:      p.minor(),
		Patch:      p.patch(),
		Prerelease: p.prerelease,
		Build:      p.build,
	}
}

// parsePartial parses the `xr[.xr[.xr[qualifier]]]` grammar production.
func parsePartial(s string) (partial, error) {
	if s == "" {
		return partial{components: [3]component{{open: true}, {open: true}, {open: true}}}, nil
	}
	core := s
	var build string
	if i := indexByte(core, '+'); i >= 0 {
		core, build = core[:i], core[i+1:]
	}
	var prerelease string
	if i := indexByte(core, '-'); i >= 0 {
		core, prerelease = core[:i], core[i+1:]
	}

	fields := splitDot(core)
	if len(fields) == 0 || len(fields) > 3 {
		return partial{}, parseErrorf(s, "malformed version core %q", core)
	}
	var p partial
	for i := range p.components {
		p.components[i].open = true
	}
	for i, f := range fields {
		c, err := parseComponent(f)
		if err != nil {
			return partial{}, parseErrorf(s, "%v", err)
		}
		p.components[i] = c
	}
	p.prerelease = prerelease
	p.build = build
	return p, nil
}

func parseComponent(f string) (component, error) {
	if f == "x" || f == "X" || f == "*" {
		return component{open: true}, nil
	}
	if f == "" {
		return component{}, parseErrorf(f, "empty version component")
	}
	for i := 0; i < len(f); i++ {
		if f[i] < '0' || f[i] > '9' {
			return component{}, parseErrorf(f, "%q is not numeric or a wildcard", f)
		}
	}
	if len(f) > 1 && f[0] == '0' {
		return component{}, parseErrorf(f, "%q has a leading zero", f)
	}
	n, err := strconv.ParseInt(f, 10, 64)
	if err != nil {
		return component{}, parseErrorf(f, "%v", err)
	}
	return component{value: n}, nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func splitDot(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

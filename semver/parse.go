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

import "strings"

// ParseConstraint parses an NPM-style version specifier (the `range_set`
// grammar production) into its canonical, simplified RangeSet.
func ParseConstraint(spec string) (RangeSet, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return RangeSet{{Min: MinBound(), Max: MaxBound()}}, nil
	}
	var out RangeSet
	for _, part := range strings.Split(spec, "||") {
		r, err := parseRange(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return Simplify(out), nil
}

// parseRange parses a single `range`: a hyphen range or a simple-set.
func parseRange(s string) (Range, error) {
	if s == "" {
		return Range{Min: MinBound(), Max: MaxBound()}, nil
	}
	if left, right, ok := splitHyphen(s); ok {
		p1, err := parsePartial(left)
		if err != nil {
			return Range{}, err
		}
		p2, err := parsePartial(right)
		if err != nil {
			return Range{}, err
		}
		return hyphenRange(p1, p2), nil
	}
	tokens := mergeOperatorTokens(strings.Fields(s))
	if len(tokens) == 0 {
		return Range{}, parseErrorf(s, "empty range")
	}
	cur := Range{Min: MinBound(), Max: MaxBound()}
	for _, tok := range tokens {
		r, err := parseSimple(tok)
		if err != nil {
			return Range{}, err
		}
		ir, ok := Intersect(cur, r)
		if !ok {
			cur = emptyRange()
			continue
		}
		cur = ir
	}
	return cur, nil
}

// splitHyphen finds the top-level " - " hyphen-range separator, which is
// distinguished from a prerelease hyphen by requiring surrounding
// whitespace.
func splitHyphen(s string) (left, right string, ok bool) {
	for i := 1; i+1 < len(s); i++ {
		if s[i] == '-' && s[i-1] == ' ' && s[i+1] == ' ' {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), true
		}
	}
	return "", "", false
}

var comparatorTokens = []string{">=", "<=", "<", ">", "="}

// mergeOperatorTokens re-joins a bare comparator token (e.g. from
// ">= 1.2.3", which node-semver permits with internal whitespace) with
// the partial that follows it.
func mergeOperatorTokens(tokens []string) []string {
	var out []string
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if isBareComparator(t) && i+1 < len(tokens) {
			out = append(out, t+tokens[i+1])
			i++
			continue
		}
		out = append(out, t)
	}
	return out
}

func isBareComparator(t string) bool {
	for _, c := range comparatorTokens {
		if t == c {
			return true
		}
	}
	return false
}

// parseSimple parses a single `simple`: a primitive, a tilde, a caret,
// or a bare partial.
func parseSimple(tok string) (Range, error) {
	switch {
	case strings.HasPrefix(tok, "~"):
		p, err := parsePartial(tok[1:])
		if err != nil {
			return Range{}, err
		}
		return tildeRange(p), nil
	case strings.HasPrefix(tok, "^"):
		p, err := parsePartial(tok[1:])
		if err != nil {
			return Range{}, err
		}
		return caretRange(p), nil
	case strings.HasPrefix(tok, ">="):
		return compilePrimitive(tok[2:], gteRange)
	case strings.HasPrefix(tok, "<="):
		return compilePrimitive(tok[2:], lteRange)
	case strings.HasPrefix(tok, ">"):
		return compilePrimitive(tok[1:], gtRange)
	case strings.HasPrefix(tok, "<"):
		return compilePrimitive(tok[1:], ltRange)
	case strings.HasPrefix(tok, "="):
		return compilePrimitive(tok[1:], noopRange)
	default:
		return compilePrimitive(tok, noopRange)
	}
}

func compilePrimitive(rest string, compile func(partial) Range) (Range, error) {
	p, err := parsePartial(rest)
	if err != nil {
		return Range{}, err
	}
	return compile(p), nil
}

// ParseVersion parses a single, fully concrete SemVer version string
// (no wildcards), as found in a registry's `version` field.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	p, err := parsePartial(s)
	if err != nil {
		return Version{}, err
	}
	if p.k() != 3 {
		return Version{}, parseErrorf(s, "not a concrete version")
	}
	return p.concrete(), nil
}

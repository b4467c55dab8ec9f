// Copyright 2025 walteh LLC
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

// Package ignore matches slash separated paths, relative to a walk root,
// against doublestar exclusion globs.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// DefaultPatterns keeps version control metadata out of every walk.
var DefaultPatterns = []string{"**/.git/**"}

// 🚫 Matcher decides whether a path is excluded
type Matcher struct {
	patterns []string
}

// 🏭 New validates the patterns and builds a Matcher. An empty pattern list
// matches nothing.
func New(patterns ...string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid ignore pattern %q", p)
		}
		m.patterns = append(m.patterns, p)
	}
	return m, nil
}

// Patterns returns a copy of the configured patterns.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}

// Match reports whether the file at rel is excluded.
func (m *Matcher) Match(rel string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range m.patterns {
		// patterns are validated in New, Match cannot fail
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// MatchDir reports whether the directory at rel, and so everything below it,
// is excluded. A trailing "/**" in a pattern also covers the directory itself.
func (m *Matcher) MatchDir(rel string) bool {
	if rel == "" || rel == "." {
		return false
	}
	return m.Match(rel) || m.Match(strings.TrimSuffix(filepath.ToSlash(rel), "/")+"/")
}

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

// Package rules holds the ordered old to new string mapping that drives both
// content rewriting and name abbreviation.
package rules

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrEmptyKey is returned when a rule has no text to match.
var ErrEmptyKey = errors.Base("rule key must not be empty")

// 🔄 Rule is a single literal replacement
type Rule struct {
	Old string `json:"old" yaml:"old" toml:"old" hcl:"old"`
	New string `json:"new" yaml:"new" toml:"new" hcl:"new"`
}

// 📚 Map is an ordered set of rules keyed by Rule.Old.
//
// Rules apply in insertion order. Setting an existing key keeps its position
// and replaces its value. A Map must not be mutated once it is shared between
// goroutines; every read method is safe for concurrent use.
type Map struct {
	rules []Rule
	index map[string]int
}

// 🏭 New builds a Map from rules, last write wins for duplicate keys
func New(rules ...Rule) (*Map, error) {
	m := &Map{index: make(map[string]int, len(rules))}
	for _, r := range rules {
		if err := m.Set(r.Old, r.New); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is New for compiled-in tables.
func MustNew(rules ...Rule) *Map {
	m, err := New(rules...)
	if err != nil {
		panic(err)
	}
	return m
}

// Set adds or updates a rule.
func (m *Map) Set(old, new string) error {
	if old == "" {
		return errors.WithStack(ErrEmptyKey)
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[old]; ok {
		m.rules[i].New = new
		return nil
	}
	m.index[old] = len(m.rules)
	m.rules = append(m.rules, Rule{Old: old, New: new})
	return nil
}

// Get returns the replacement for old.
func (m *Map) Get(old string) (string, bool) {
	if m == nil {
		return "", false
	}
	i, ok := m.index[old]
	if !ok {
		return "", false
	}
	return m.rules[i].New, true
}

// Len returns the number of rules.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

// Rules returns a copy of the rules in application order.
func (m *Map) Rules() []Rule {
	if m == nil {
		return nil
	}
	out := make([]Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

// Merge returns a new Map holding m's rules followed by other's. Keys already
// present in m keep their position and take other's value.
func (m *Map) Merge(other *Map) *Map {
	out := &Map{index: make(map[string]int, m.Len()+other.Len())}
	for _, r := range m.Rules() {
		_ = out.Set(r.Old, r.New)
	}
	for _, r := range other.Rules() {
		_ = out.Set(r.Old, r.New)
	}
	return out
}

// MaxKeyLen is the length in bytes of the longest key.
func (m *Map) MaxKeyLen() int {
	max := 0
	for _, r := range m.Rules() {
		if len(r.Old) > max {
			max = len(r.Old)
		}
	}
	return max
}

// String renders the map as "old -> new" pairs.
func (m *Map) String() string {
	parts := make([]string, 0, m.Len())
	for _, r := range m.Rules() {
		parts = append(parts, r.Old+" -> "+r.New)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

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

// Package rename plans and applies file and directory renames derived from a
// rule map applied to entry names.
package rename

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/recode/pkg/ignore"
	"github.com/walteh/recode/pkg/rules"
	"github.com/walteh/recode/pkg/text"
)

// DefaultSkipNames are never renamed regardless of rule matches.
var DefaultSkipNames = []string{"launch.json", "Doxyfile"}

// 🔁 Pair is one planned rename
type Pair struct {
	Old string `json:"old" yaml:"old"`
	New string `json:"new" yaml:"new"`
}

// Mapping is an ordered list of renames.
type Mapping []Pair

// Sort orders by descending new path length, then by new path, so deeper
// entries come before their parents.
func (m Mapping) Sort() {
	sort.SliceStable(m, func(i, j int) bool {
		if len(m[i].New) != len(m[j].New) {
			return len(m[i].New) > len(m[j].New)
		}
		return m[i].New < m[j].New
	})
}

// BaseNames maps each old base name to its new base name. The first pair
// wins when two entries share an old base name.
func (m Mapping) BaseNames() *rules.Map {
	out := rules.MustNew()
	for _, p := range m {
		oldBase, newBase := filepath.Base(p.Old), filepath.Base(p.New)
		if _, ok := out.Get(oldBase); ok {
			continue
		}
		_ = out.Set(oldBase, newBase)
	}
	return out
}

// 🗺️ Plan holds the renames computed for one root
type Plan struct {
	Root  string  `json:"root" yaml:"root"`
	Files Mapping `json:"files" yaml:"files"`
	Dirs  Mapping `json:"dirs" yaml:"dirs"`
}

// Empty reports whether nothing would be renamed.
func (p *Plan) Empty() bool {
	return p == nil || (len(p.Files) == 0 && len(p.Dirs) == 0)
}

// PlannerOptions configures a Planner
type PlannerOptions struct {
	// SkipNames are base names that are never renamed. nil means
	// DefaultSkipNames plus the running executable's name.
	SkipNames []string
	// Ignore excludes paths relative to the root, directories with their
	// whole subtree.
	Ignore *ignore.Matcher
}

// 📐 Planner computes rename mappings
type Planner struct {
	fs   afero.Fs
	skip map[string]struct{}
	opts PlannerOptions
}

// 🏭 NewPlanner creates a Planner
func NewPlanner(fs afero.Fs, opts PlannerOptions) *Planner {
	names := opts.SkipNames
	if names == nil {
		names = append([]string(nil), DefaultSkipNames...)
		if exe, err := os.Executable(); err == nil {
			names = append(names, filepath.Base(exe))
		}
	}
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	return &Planner{fs: fs, skip: skip, opts: opts}
}

// Plan applies m to the name of every entry below root. Files and
// directories whose names change are returned in separate, sorted mappings.
// Old and new paths share the same parent.
func (p *Planner) Plan(ctx context.Context, root string, m *rules.Map) (*Plan, error) {
	logger := zerolog.Ctx(ctx)

	info, err := p.fs.Stat(root)
	if err != nil {
		return nil, errors.Errorf("planning renames under %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("planning renames under %s: not a directory", root)
	}

	plan := &Plan{Root: root}

	err = afero.Walk(p.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Errorf("relativizing %s: %w", path, err)
		}

		if hasGitComponent(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() && p.opts.Ignore.MatchDir(rel) {
			return filepath.SkipDir
		}
		if !info.IsDir() && p.opts.Ignore.Match(rel) {
			return nil
		}

		name := info.Name()
		if _, ok := p.skip[name]; ok {
			logger.Trace().Str("path", path).Msg("name is in the skip set")
			return nil
		}

		newName := RenameBase(name, m)
		if newName == name {
			return nil
		}

		pair := Pair{Old: path, New: filepath.Join(filepath.Dir(path), newName)}
		if info.IsDir() {
			plan.Dirs = append(plan.Dirs, pair)
		} else {
			plan.Files = append(plan.Files, pair)
		}
		logger.Info().Str("path", path).Str("new_name", newName).Msg("will rename")
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("planning renames under %s: %w", root, err)
	}

	plan.Files.Sort()
	plan.Dirs.Sort()

	return plan, nil
}

// RenameBase applies m to the stem of name and keeps its extension.
// Dot files such as ".bashrc" and names ending in a dot have no extension.
func RenameBase(name string, m *rules.Map) string {
	stem, ext := splitExt(name)
	return text.Apply(stem, m) + ext
}

func splitExt(name string) (string, string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i:]
}

func hasGitComponent(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == ".git" {
			return true
		}
	}
	return false
}

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

// Package collect walks a tree and returns the regular files that classify as
// text, together with their encodings.
package collect

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/recode/pkg/charset"
	"github.com/walteh/recode/pkg/ignore"
)

// DefaultWorkers bounds concurrent classifications.
const DefaultWorkers = 20

// Set maps a path to the encoding it decodes with.
type Set map[string]charset.Encoding

// Paths returns the collected paths in lexical order.
func (s Set) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Options configures a Collector
type Options struct {
	// Workers defaults to DefaultWorkers.
	Workers int
	// Ignore excludes paths relative to the walk root. nil excludes nothing.
	Ignore *ignore.Matcher
}

// 🔎 Collector finds text files
type Collector struct {
	fs         afero.Fs
	classifier *charset.Classifier
	opts       Options
}

// 🏭 New creates a Collector
func New(fs afero.Fs, classifier *charset.Classifier, opts Options) *Collector {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Collector{fs: fs, classifier: classifier, opts: opts}
}

// Collect classifies every regular file under root and keeps the text ones.
// Only a failure to walk root itself is an error; unreadable entries below it
// are logged and skipped.
func (c *Collector) Collect(ctx context.Context, root string) (Set, error) {
	logger := zerolog.Ctx(ctx)

	paths, err := c.walk(ctx, root)
	if err != nil {
		return nil, err
	}

	verdicts := make([]charset.Classification, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			verdicts[i] = c.classifier.Classify(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set := make(Set, len(paths))
	for _, v := range verdicts {
		if !v.IsText() {
			logger.Debug().Str("path", v.Path).Stringer("kind", v.Kind).Msg("skipping non text file")
			continue
		}
		set[v.Path] = v.Encoding
	}

	logger.Debug().Int("files", len(paths)).Int("text", len(set)).Str("root", root).Msg("collected text files")

	return set, nil
}

func (c *Collector) walk(ctx context.Context, root string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	info, err := c.fs.Stat(root)
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("walking %s: not a directory", root)
	}

	var paths []string
	err = afero.Walk(c.fs, root, func(path string, info os.FileInfo, err error) error {
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

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Errorf("relativizing %s: %w", path, err)
		}

		if info.IsDir() {
			if c.opts.Ignore.MatchDir(rel) {
				logger.Trace().Str("path", path).Msg("skipping ignored directory")
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if c.opts.Ignore.Match(rel) {
			logger.Trace().Str("path", path).Msg("skipping ignored file")
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", root, err)
	}

	return paths, nil
}

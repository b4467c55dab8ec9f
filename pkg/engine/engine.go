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

// Package engine drives a collection pass and then fans content rewrites out
// over a bounded worker pool.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/recode/pkg/collect"
	"github.com/walteh/recode/pkg/rewrite"
	"github.com/walteh/recode/pkg/rules"
)

// DefaultWorkers bounds concurrent rewrites.
const DefaultWorkers = 20

// Options configures an Engine
type Options struct {
	// Workers defaults to DefaultWorkers.
	Workers int
}

// 📊 Summary aggregates one run
type Summary struct {
	Collected    int
	Processed    int
	Changed      int
	Unchanged    int
	Failed       int
	Replacements int
	// Results holds one entry per processed file, in path order.
	Results []rewrite.Result
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d processed, %d changed, %d unchanged, %d failed, %d replacements",
		s.Processed, s.Changed, s.Unchanged, s.Failed, s.Replacements)
}

// Succeeded is the number of files processed without error.
func (s *Summary) Succeeded() int {
	return s.Processed - s.Failed
}

// ⚙️ Engine runs a rule map over a tree
type Engine struct {
	collector *collect.Collector
	rewriter  *rewrite.Rewriter
	opts      Options
}

// 🏭 New creates an Engine
func New(collector *collect.Collector, rewriter *rewrite.Rewriter, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Engine{collector: collector, rewriter: rewriter, opts: opts}
}

// Run collects the text files under root once, rewrites each of them and
// waits for every rewrite before returning. Per file failures are counted in
// the summary; only a collection failure or cancellation is an error.
func (e *Engine) Run(ctx context.Context, root string, m *rules.Map) (*Summary, error) {
	logger := zerolog.Ctx(ctx)

	if m == nil || m.Len() == 0 {
		logger.Warn().Str("root", root).Msg("no rules to apply")
	}

	files, err := e.collector.Collect(ctx, root)
	if err != nil {
		return nil, errors.Errorf("collecting text files: %w", err)
	}

	paths := files.Paths()
	logger.Info().Int("files", len(paths)).Str("root", root).Msg("found text files to process")

	results := make([]rewrite.Result, len(paths))
	done := make([]bool, len(paths))

	g := new(errgroup.Group)
	g.SetLimit(e.opts.Workers)
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = e.rewriter.RewriteFile(ctx, path, files[path], m)
			done[i] = true
			return nil
		})
	}
	_ = g.Wait()

	summary := &Summary{Collected: len(paths)}
	for i, r := range results {
		if !done[i] {
			continue
		}
		summary.Results = append(summary.Results, r)
		summary.Processed++
		switch {
		case r.Err != nil:
			summary.Failed++
		case r.Changed:
			summary.Changed++
			summary.Replacements += r.Replacements
		default:
			summary.Unchanged++
		}
	}

	if err := ctx.Err(); err != nil {
		logger.Warn().Err(err).Stringer("summary", summary).Msg("run cancelled")
		return summary, err
	}

	logger.Info().Stringer("summary", summary).Msg("replacement run complete")
	return summary, nil
}

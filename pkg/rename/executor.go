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

package rename

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultFileWorkers bounds concurrent file renames.
const DefaultFileWorkers = 4

// Stats counts the outcome of a batch
type Stats struct {
	Succeeded int
	Failed    int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d succeeded, %d failed", s.Succeeded, s.Failed)
}

// Add returns the sum of two batches.
func (s Stats) Add(o Stats) Stats {
	return Stats{Succeeded: s.Succeeded + o.Succeeded, Failed: s.Failed + o.Failed}
}

// ExecutorOptions configures an Executor
type ExecutorOptions struct {
	// Workers defaults to DefaultFileWorkers.
	Workers int
	// Observe, when set, is called once per attempted entry. It may be
	// called concurrently by ApplyFiles.
	Observe func(kind string, p Pair, err error)
}

// Kinds passed to ExecutorOptions.Observe
const (
	KindFile = "file"
	KindDir  = "dir"
)

// 🚚 Executor performs planned renames. A failing entry is logged and
// counted; the rest of the batch continues.
type Executor struct {
	fs   afero.Fs
	opts ExecutorOptions
}

// 🏭 NewExecutor creates an Executor
func NewExecutor(fs afero.Fs, opts ExecutorOptions) *Executor {
	if opts.Workers <= 0 {
		opts.Workers = DefaultFileWorkers
	}
	return &Executor{fs: fs, opts: opts}
}

// ApplyFiles moves every file in m on a small pool. The destination parent
// is created and an existing destination is replaced. The error is only
// non-nil when ctx ends before the batch was scheduled.
func (e *Executor) ApplyFiles(ctx context.Context, m Mapping) (Stats, error) {
	logger := zerolog.Ctx(ctx)

	ok := make([]bool, len(m))
	attempted := make([]bool, len(m))

	g := new(errgroup.Group)
	g.SetLimit(e.opts.Workers)
	for i, pair := range m {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			attempted[i] = true
			err := e.moveFile(pair)
			e.observe(KindFile, pair, err)
			if err != nil {
				logger.Error().Err(err).Str("old", pair.Old).Str("new", pair.New).Msg("renaming file failed")
				return nil
			}
			logger.Info().Str("old", pair.Old).Str("new", pair.New).Msg("renamed file")
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	var stats Stats
	for i := range m {
		switch {
		case ok[i]:
			stats.Succeeded++
		case attempted[i]:
			stats.Failed++
		}
	}

	logger.Info().Stringer("stats", stats).Msg("file renames completed")
	return stats, ctx.Err()
}

func (e *Executor) observe(kind string, p Pair, err error) {
	if e.opts.Observe != nil {
		e.opts.Observe(kind, p, err)
	}
}

func (e *Executor) moveFile(p Pair) error {
	src, err := e.fs.Stat(p.Old)
	if err != nil {
		return errors.Errorf("source %s: %w", p.Old, err)
	}
	if err := e.fs.MkdirAll(filepath.Dir(p.New), 0o755); err != nil {
		return errors.Errorf("creating parent of %s: %w", p.New, err)
	}
	// on case insensitive filesystems a case only rename sees itself as the
	// destination
	if dst, err := e.fs.Stat(p.New); err == nil && !os.SameFile(src, dst) {
		if err := e.fs.Remove(p.New); err != nil {
			return errors.Errorf("removing existing %s: %w", p.New, err)
		}
	}
	if err := e.fs.Rename(p.Old, p.New); err != nil {
		return errors.Errorf("renaming %s: %w", p.Old, err)
	}
	return nil
}

// ApplyDirs moves directories one at a time in mapping order. Identical
// pairs are skipped; a missing source is logged and counted as failed.
func (e *Executor) ApplyDirs(ctx context.Context, m Mapping) (Stats, error) {
	logger := zerolog.Ctx(ctx)

	var stats Stats
	for _, pair := range m {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if pair.Old == pair.New {
			continue
		}
		if _, err := e.fs.Stat(pair.Old); err != nil {
			logger.Error().Err(err).Str("old", pair.Old).Msg("directory to rename not found")
			e.observe(KindDir, pair, errors.Errorf("source %s: %w", pair.Old, err))
			stats.Failed++
			continue
		}
		if err := e.fs.Rename(pair.Old, pair.New); err != nil {
			logger.Error().Err(err).Str("old", pair.Old).Str("new", pair.New).Msg("renaming directory failed")
			e.observe(KindDir, pair, errors.Errorf("renaming %s: %w", pair.Old, err))
			stats.Failed++
			continue
		}
		e.observe(KindDir, pair, nil)
		logger.Info().Str("old", pair.Old).Str("new", pair.New).Msg("renamed directory")
		stats.Succeeded++
	}

	logger.Info().Stringer("stats", stats).Msg("directory renames completed")
	return stats, nil
}

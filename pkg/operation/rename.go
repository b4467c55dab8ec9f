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

package operation

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/recode/pkg/engine"
	"github.com/walteh/recode/pkg/log"
	"github.com/walteh/recode/pkg/rename"
	"github.com/walteh/recode/pkg/rules"
	"github.com/walteh/recode/pkg/text"
)

// 🔧 RenameOptions configures a Renamer
type RenameOptions struct {
	Options
	// SkipNames overrides the planner's skip set.
	SkipNames []string
	// FileWorkers bounds concurrent file moves.
	FileWorkers int
	// RenameRoot also renames the root directory when its own name matches.
	RenameRoot bool
	// RecordFile, when set, receives the executed plan as YAML or JSON.
	RecordFile string
	// Now defaults to time.Now.
	Now func() time.Time
}

// 📋 RenameReport describes one rename run
type RenameReport struct {
	RunID        string
	Plan         *rename.Plan
	FileContents *engine.Summary
	DirContents  *engine.Summary
	Files        rename.Stats
	Dirs         rename.Stats
	// Root is where the tree lives after the run.
	Root string
}

// 🏷️ Renamer renames entries whose names match the rules and rewrites
// references to them
type Renamer struct {
	opts    RenameOptions
	engine  *engine.Engine
	planner *rename.Planner
}

// 🏭 NewRenamer creates a Renamer
func NewRenamer(opts RenameOptions) *Renamer {
	opts.Options = opts.Options.withDefaults()
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Renamer{
		opts:    opts,
		engine:  newEngine(opts.Options),
		planner: rename.NewPlanner(opts.Fs, rename.PlannerOptions{SkipNames: opts.SkipNames, Ignore: opts.Ignore}),
	}
}

// Run executes the full rename workflow under root. Contents are rewritten
// before anything moves. In dry run mode the plan and content results are
// computed and nothing is written.
func (r *Renamer) Run(ctx context.Context, root string) (*RenameReport, error) {
	now := r.opts.Now()
	runID := rename.NewRunID(now)

	ctx = zerolog.Ctx(ctx).With().Str("run_id", runID.String()).Logger().WithContext(ctx)
	logger := log.FromContext(ctx)

	report := &RenameReport{RunID: runID.String(), Root: root}

	logger.StartPhase(ctx, log.Phase{Name: "plan", Root: root, RunID: report.RunID})
	plan, err := r.planner.Plan(ctx, root, r.opts.Rules)
	logger.EndPhase(ctx)
	if err != nil {
		return report, errors.Errorf("planning: %w", err)
	}
	report.Plan = plan
	logger.Infof("planned %d file and %d directory renames", len(plan.Files), len(plan.Dirs))

	if m := plan.Files.BaseNames(); m.Len() > 0 {
		report.FileContents, err = runContents(ctx, r.engine, log.Phase{Name: "file references", Root: root, RunID: report.RunID}, m)
		if err != nil {
			return report, errors.Errorf("rewriting file references: %w", err)
		}
	}

	dirRules, err := directoryRules(root, plan.Dirs, r.opts.Rules)
	if err != nil {
		return report, err
	}
	if dirRules.Len() > 0 {
		report.DirContents, err = runContents(ctx, r.engine, log.Phase{Name: "directory references", Root: root, RunID: report.RunID}, dirRules)
		if err != nil {
			return report, errors.Errorf("rewriting directory references: %w", err)
		}
	}

	if r.opts.RenameRoot {
		if newBase := rename.RenameBase(filepath.Base(root), r.opts.Rules); newBase != filepath.Base(root) {
			plan.Dirs = append(plan.Dirs, rename.Pair{Old: root, New: filepath.Join(filepath.Dir(root), newBase)})
		}
	}

	if r.opts.DryRun {
		logger.Info("dry run, nothing renamed")
		return report, nil
	}

	executor := rename.NewExecutor(r.opts.Fs, rename.ExecutorOptions{
		Workers: r.opts.FileWorkers,
		Observe: func(kind string, p rename.Pair, err error) {
			logger.LogFileOperation(ctx, renameOperation(kind, p, err))
		},
	})

	logger.StartPhase(ctx, log.Phase{Name: "rename files", Root: root, RunID: report.RunID})
	report.Files, err = executor.ApplyFiles(ctx, plan.Files)
	logger.EndPhase(ctx)
	logger.Summary("rename files", statsSummary(report.Files))
	if err != nil {
		return report, errors.Errorf("renaming files: %w", err)
	}

	logger.StartPhase(ctx, log.Phase{Name: "rename directories", Root: root, RunID: report.RunID})
	report.Dirs, err = executor.ApplyDirs(ctx, plan.Dirs)
	logger.EndPhase(ctx)
	logger.Summary("rename directories", statsSummary(report.Dirs))
	if err != nil {
		return report, errors.Errorf("renaming directories: %w", err)
	}

	if n := len(plan.Dirs); n > 0 && plan.Dirs[n-1].Old == root {
		if _, statErr := r.opts.Fs.Stat(plan.Dirs[n-1].New); statErr == nil {
			report.Root = plan.Dirs[n-1].New
		}
	}

	if r.opts.RecordFile != "" {
		if err := rename.WriteRecord(r.opts.Fs, r.opts.RecordFile, rename.NewRecord(runID, plan, now)); err != nil {
			return report, err
		}
		logger.Successf("rename record written to %s", r.opts.RecordFile)
	}

	return report, nil
}

// directoryRules maps each renamed directory's path, relative to the parent
// of root, to its new relative path with the base rules applied again, and
// appends the base rules.
func directoryRules(root string, dirs rename.Mapping, base *rules.Map) (*rules.Map, error) {
	parent := filepath.Dir(root)
	out := rules.MustNew()
	for _, p := range dirs {
		oldRel, err := filepath.Rel(parent, p.Old)
		if err != nil {
			return nil, errors.Errorf("relativizing %s: %w", p.Old, err)
		}
		newRel, err := filepath.Rel(parent, p.New)
		if err != nil {
			return nil, errors.Errorf("relativizing %s: %w", p.New, err)
		}
		if err := out.Set(filepath.ToSlash(oldRel), text.Apply(filepath.ToSlash(newRel), base)); err != nil {
			return nil, err
		}
	}
	return out.Merge(base), nil
}

func renameOperation(kind string, p rename.Pair, err error) log.FileOperation {
	op := log.FileOperation{
		Path:      filepath.Base(p.Old) + " -> " + filepath.Base(p.New),
		Kind:      log.KindFile,
		Status:    "renamed",
		IsRenamed: err == nil,
		IsFailed:  err != nil,
		Err:       err,
	}
	if kind == rename.KindDir {
		op.Kind = log.KindDir
	}
	if err != nil {
		op.Status = "failed"
	}
	return op
}

func statsSummary(s rename.Stats) log.Summary {
	return log.Summary{Processed: s.Succeeded + s.Failed, Succeeded: s.Succeeded, Failed: s.Failed}
}

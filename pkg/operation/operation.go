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
	"fmt"

	"github.com/spf13/afero"

	"github.com/walteh/recode/pkg/charset"
	"github.com/walteh/recode/pkg/collect"
	"github.com/walteh/recode/pkg/engine"
	"github.com/walteh/recode/pkg/ignore"
	"github.com/walteh/recode/pkg/log"
	"github.com/walteh/recode/pkg/rewrite"
	"github.com/walteh/recode/pkg/rules"
)

// 🔧 Options configures both workflows
type Options struct {
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Rules is the base rule map. nil applies no rules.
	Rules *rules.Map
	// Ignore excludes paths relative to the root.
	Ignore *ignore.Matcher
	// Detector defaults to the platform detector for Fs.
	Detector charset.Detector
	// Workers bounds classification and rewrite concurrency.
	Workers int
	// BufferSize and ChunkMode are passed to the rewriter.
	BufferSize int
	ChunkMode  rewrite.ChunkMode
	// DryRun computes everything and writes nothing.
	DryRun bool
}

func (o Options) withDefaults() Options {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Rules == nil {
		o.Rules = rules.MustNew()
	}
	if o.Detector == nil {
		// auto never fails
		o.Detector, _ = charset.NewDetector(o.Fs, charset.StrategyAuto)
	}
	if o.Workers <= 0 {
		o.Workers = engine.DefaultWorkers
	}
	return o
}

// newEngine builds the collect and rewrite pipeline for o.
func newEngine(o Options) *engine.Engine {
	classifier := charset.NewClassifier(o.Fs, o.Detector)
	collector := collect.New(o.Fs, classifier, collect.Options{Workers: o.Workers, Ignore: o.Ignore})
	rewriter := rewrite.New(o.Fs, rewrite.Options{
		BufferSize: o.BufferSize,
		ChunkMode:  o.ChunkMode,
		DryRun:     o.DryRun,
	})
	return engine.New(collector, rewriter, engine.Options{Workers: o.Workers})
}

// runContents runs one engine pass as a console phase and reports every
// changed or failed file.
func runContents(ctx context.Context, e *engine.Engine, phase log.Phase, m *rules.Map) (*engine.Summary, error) {
	logger := log.FromContext(ctx)

	logger.StartPhase(ctx, phase)
	defer logger.EndPhase(ctx)

	summary, err := e.Run(ctx, phase.Root, m)
	if summary != nil {
		for _, r := range summary.Results {
			if !r.Changed && r.Err == nil {
				continue
			}
			logger.LogFileOperation(ctx, contentOperation(r))
		}
		logger.Summary(phase.Name, log.Summary{
			Processed: summary.Processed,
			Succeeded: summary.Succeeded(),
			Failed:    summary.Failed,
		})
	}
	return summary, err
}

func contentOperation(r rewrite.Result) log.FileOperation {
	op := log.FileOperation{
		Path:         r.Path,
		Kind:         log.KindContent,
		Replacements: r.Replacements,
		IsModified:   r.Changed,
		Err:          r.Err,
	}
	switch {
	case r.Err != nil:
		op.Status = "failed"
		op.IsFailed = true
	case r.Changed:
		op.Status = fmt.Sprintf("%d replacements", r.Replacements)
	default:
		op.Status = "no change"
	}
	return op
}

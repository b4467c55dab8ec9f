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

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/recode/pkg/engine"
	"github.com/walteh/recode/pkg/log"
)

// ✏️ Replacer rewrites every text file under a root with one rule map
type Replacer struct {
	opts   Options
	engine *engine.Engine
}

// 🏭 NewReplacer creates a Replacer
func NewReplacer(opts Options) *Replacer {
	opts = opts.withDefaults()
	return &Replacer{opts: opts, engine: newEngine(opts)}
}

// Run performs a single content pass over root.
func (r *Replacer) Run(ctx context.Context, root string) (*engine.Summary, error) {
	zerolog.Ctx(ctx).Debug().Str("root", root).Stringer("rules", r.opts.Rules).Bool("dry_run", r.opts.DryRun).Msg("replacing words")

	summary, err := runContents(ctx, r.engine, log.Phase{Name: "replace", Root: root}, r.opts.Rules)
	if err != nil {
		return summary, errors.Errorf("replacing words under %s: %w", root, err)
	}
	return summary, nil
}

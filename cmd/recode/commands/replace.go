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

package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/recode/cmd/recode/opts"
	"github.com/walteh/recode/pkg/log"
	"github.com/walteh/recode/pkg/operation"
	"github.com/walteh/recode/pkg/rewrite"
	"github.com/walteh/recode/pkg/rules"
)

// NewReplaceCmd creates the replace command
func NewReplaceCmd(o *opts.RootOpts) *cobra.Command {
	var flags sharedFlags

	cmd := &cobra.Command{
		Use:   "replace <code_path>",
		Short: "Replace words in every text file under a directory",
		Long: `Replace rewrites the content of every text file under code_path.
It will:
1. Classify each regular file as text (with its encoding) or binary
2. Apply the rules in order to every text file
3. Write back only the files that changed, in their original encoding

Without --config_file or --rules the compiled-in object file renames are used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			root, err := ValidateRoot(o.Fs, args[0])
			if err != nil {
				return err
			}

			options, err := flags.options(ctx, cmd, o.Fs, rules.DefaultObjectRenames())
			if err != nil {
				return err
			}

			logger.Header("replacing words in " + root)

			summary, err := operation.NewReplacer(options).Run(ctx, root)
			if err != nil {
				return errors.Errorf("replace: %w", err)
			}

			if options.DryRun {
				writeDiffs(cmd.OutOrStdout(), summary.Results)
			}

			logger.Successf("done: %s", summary)
			return nil
		},
	}

	flags.bind(cmd)

	return cmd
}

// writeDiffs prints a character level diff for every changed file.
func writeDiffs(w io.Writer, results []rewrite.Result) {
	dmp := diffmatchpatch.New()
	for _, r := range results {
		if !r.Changed {
			continue
		}
		diffs := dmp.DiffMain(r.Before, r.After, false)
		diffs = dmp.DiffCleanupSemantic(diffs)
		fmt.Fprintf(w, "%s %s\n", color.New(color.Bold).Sprint("---"), r.Path)
		fmt.Fprintln(w, dmp.DiffPrettyText(diffs))
	}
}

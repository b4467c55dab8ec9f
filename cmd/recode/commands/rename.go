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
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/recode/cmd/recode/opts"
	"github.com/walteh/recode/pkg/log"
	"github.com/walteh/recode/pkg/operation"
	"github.com/walteh/recode/pkg/rename"
	"github.com/walteh/recode/pkg/rules"
)

// NewRenameCmd creates the rename command
func NewRenameCmd(o *opts.RootOpts) *cobra.Command {
	var (
		flags       sharedFlags
		recordFile  string
		renameRoot  bool
		fileWorkers int
	)

	cmd := &cobra.Command{
		Use:   "rename <code_path>",
		Short: "Rename files and directories whose names match the rules",
		Long: `Rename applies the rules to every file and directory name under code_path.
It will:
1. Plan the renames (extensions are kept, .git is never touched)
2. Rewrite references to renamed files and directories in text files
3. Move files, then directories, deepest first
4. Optionally rename code_path itself (--rename-root)
5. Optionally write the plan to --record_file (YAML, or JSON for .json)

Without --config_file or --rules the compiled-in vocabulary is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			root, err := ValidateRoot(o.Fs, args[0])
			if err != nil {
				return err
			}

			options, err := flags.options(ctx, cmd, o.Fs, rules.DefaultVocabulary())
			if err != nil {
				return err
			}

			if recordFile != "" {
				recordFile, err = homedir.Expand(recordFile)
				if err != nil {
					return errors.Errorf("expanding record_file: %w", err)
				}
				if recordFile, err = filepath.Abs(recordFile); err != nil {
					return errors.Errorf("resolving record_file: %w", err)
				}
			}
			if fileWorkers < 0 {
				return errors.Errorf("--file-workers must not be negative, got %d", fileWorkers)
			}

			logger.Header("renaming under " + root)

			report, err := operation.NewRenamer(operation.RenameOptions{
				Options:     options,
				FileWorkers: fileWorkers,
				RenameRoot:  renameRoot,
				RecordFile:  recordFile,
			}).Run(ctx, root)
			if err != nil {
				return errors.Errorf("rename: %w", err)
			}

			if options.DryRun {
				return writePlan(cmd.OutOrStdout(), report.Plan)
			}

			total := report.Files.Add(report.Dirs)
			logger.Successf("done: %s, code_path is now %s", total, report.Root)
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&recordFile, "record_file", "", "file to store the rename result")
	cmd.Flags().BoolVar(&renameRoot, "rename-root", false, "also rename code_path itself when its name matches")
	cmd.Flags().IntVar(&fileWorkers, "file-workers", rename.DefaultFileWorkers, "concurrent file renames")

	return cmd
}

// writePlan renders the planned renames as a table.
func writePlan(w io.Writer, plan *rename.Plan) error {
	if plan.Empty() {
		fmt.Fprintln(w, "nothing to rename")
		return nil
	}

	data := pterm.TableData{{"Kind", "Old", "New"}}
	for _, p := range plan.Files {
		data = append(data, []string{"file", p.Old, p.New})
	}
	for _, p := range plan.Dirs {
		data = append(data, []string{"dir", p.Old, p.New})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Errorf("rendering plan: %w", err)
	}
	fmt.Fprintln(w, out)
	return nil
}

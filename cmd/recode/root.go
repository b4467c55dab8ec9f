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

package main

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/walteh/recode/cmd/recode/commands"
	"github.com/walteh/recode/cmd/recode/opts"
	"github.com/walteh/recode/pkg/log"
)

// newRootCmd builds the command tree
func newRootCmd(fs afero.Fs, stdout, stderr io.Writer) *cobra.Command {
	o := &opts.RootOpts{Fs: fs, Stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "recode",
		Short: "Bulk word replacement and renaming across a source tree",
		Long: `recode rewrites words in every text file of a directory tree and renames
files and directories whose names contain them. Binary files and files
that cannot be decoded safely are never touched.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zlog := newLogger(o)
			ctx := zlog.WithContext(cmd.Context())
			ctx = log.NewContext(ctx, log.New(cmd.OutOrStdout(), zlog))
			cmd.SetContext(ctx)
			return nil
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	addRootFlags(rootCmd, o)

	rootCmd.AddCommand(
		commands.NewReplaceCmd(o),
		commands.NewRenameCmd(o),
		newVersionCmd(),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&o.JSONLogs, "json-logs", false, "write structured logs as JSON")
}

// newLogger configures zerolog based on flags. Console output already covers
// progress, so structured logs stay at warn unless asked for.
func newLogger(o *opts.RootOpts) zerolog.Logger {
	level := zerolog.WarnLevel
	switch {
	case o.Debug:
		level = zerolog.DebugLevel
	case o.JSONLogs:
		level = zerolog.InfoLevel
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: o.Stderr, TimeFormat: time.Kitchen}
	if o.JSONLogs {
		w = o.Stderr
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

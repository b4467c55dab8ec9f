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
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/recode/pkg/charset"
	"github.com/walteh/recode/pkg/config"
	"github.com/walteh/recode/pkg/ignore"
	"github.com/walteh/recode/pkg/log"
	"github.com/walteh/recode/pkg/operation"
	"github.com/walteh/recode/pkg/rewrite"
	"github.com/walteh/recode/pkg/rules"
)

var (
	// ErrPathNotExist is returned when code_path does not exist.
	ErrPathNotExist = errors.Base("code_path does not exist")

	// ErrNotDirectory is returned when code_path is not a directory.
	ErrNotDirectory = errors.Base("code_path is not a directory")
)

// Exit codes for invalid roots
const (
	ExitPathNotExist = -1
	ExitNotDirectory = -2
)

// 🚪 ExitError carries the process exit code for a pre-flight failure
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ValidateRoot expands and absolutizes path and checks that it is an
// existing directory.
func ValidateRoot(fs afero.Fs, path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.Errorf("expanding %s: %w", path, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", path, err)
	}

	info, err := fs.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &ExitError{Code: ExitPathNotExist, Err: errors.Errorf("%w: code_path=%s", ErrPathNotExist, path)}
		}
		return "", errors.Errorf("checking %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", &ExitError{Code: ExitNotDirectory, Err: errors.Errorf("%w: code_path=%s", ErrNotDirectory, path)}
	}
	return abs, nil
}

// sharedFlags are the flags both workflows accept
type sharedFlags struct {
	configFile string
	rulesFile  string
	workers    int
	bufferSize int
	chunkMode  string
	detector   string
	ignore     []string
	noDefault  bool
	dryRun     bool
}

func (f *sharedFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configFile, "config_file", "", "words file with one \"old new\" pair per line, replaces the default rules when it exists")
	cmd.Flags().StringVar(&f.rulesFile, "rules", "", "structured rule file (.yaml, .yml, .json, .hcl, .toml)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "concurrent classifications and rewrites (default 20)")
	cmd.Flags().IntVar(&f.bufferSize, "buffer-size", 0, "read chunk size in bytes (default 16384)")
	cmd.Flags().StringVar(&f.chunkMode, "chunk-mode", "", "aware (default) or local")
	cmd.Flags().StringVar(&f.detector, "detector", "", "encoding detector: auto (default), file, sniff or probe")
	cmd.Flags().StringArrayVar(&f.ignore, "ignore", nil, "doublestar glob, relative to code_path, to exclude (repeatable)")
	cmd.Flags().BoolVar(&f.noDefault, "no-default-ignore", false, "do not exclude "+fmt.Sprint(ignore.DefaultPatterns))
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "show what would change without writing")
}

// options resolves flags and rule files into operation options. Flags win
// over values from the rule file. The words file, when it exists, replaces
// every other rule source.
func (f *sharedFlags) options(ctx context.Context, cmd *cobra.Command, fs afero.Fs, defaults *rules.Map) (operation.Options, error) {
	logger := log.FromContext(ctx)

	o := operation.Options{
		Fs:         fs,
		Rules:      defaults,
		Workers:    f.workers,
		BufferSize: f.bufferSize,
		DryRun:     f.dryRun,
	}
	chunkMode := f.chunkMode
	detector := f.detector

	var patterns []string
	if !f.noDefault {
		patterns = append(patterns, ignore.DefaultPatterns...)
	}

	if f.rulesFile != "" {
		cfg, err := config.Load(ctx, fs, f.rulesFile)
		if err != nil {
			return o, errors.Errorf("loading rules: %w", err)
		}
		if len(cfg.Rules) > 0 {
			m, err := cfg.RuleMap()
			if err != nil {
				return o, err
			}
			o.Rules = m
		}
		patterns = append(patterns, cfg.Ignore...)
		if !cmd.Flags().Changed("workers") && cfg.Workers > 0 {
			o.Workers = cfg.Workers
		}
		if !cmd.Flags().Changed("buffer-size") && cfg.BufferSize > 0 {
			o.BufferSize = cfg.BufferSize
		}
		if !cmd.Flags().Changed("chunk-mode") && cfg.ChunkMode != "" {
			chunkMode = cfg.ChunkMode
		}
		if !cmd.Flags().Changed("detector") && cfg.Detector != "" {
			detector = cfg.Detector
		}
	}

	if f.configFile != "" {
		path, err := homedir.Expand(f.configFile)
		if err != nil {
			return o, errors.Errorf("expanding config_file: %w", err)
		}
		if info, statErr := fs.Stat(path); statErr == nil && !info.IsDir() {
			m, err := config.LoadWords(ctx, fs, path)
			if err != nil {
				return o, err
			}
			o.Rules = m
		} else {
			logger.Warningf("config file %s not found, keeping %d rules", f.configFile, o.Rules.Len())
		}
	}

	if o.Workers < 0 {
		return o, errors.Errorf("--workers must not be negative, got %d", o.Workers)
	}
	if o.BufferSize < 0 {
		return o, errors.Errorf("--buffer-size must not be negative, got %d", o.BufferSize)
	}

	mode, err := rewrite.ParseChunkMode(chunkMode)
	if err != nil {
		return o, err
	}
	o.ChunkMode = mode

	strategy, err := charset.ParseStrategy(detector)
	if err != nil {
		return o, err
	}
	o.Detector, err = charset.NewDetector(fs, strategy)
	if err != nil {
		return o, errors.Errorf("selecting detector: %w", err)
	}

	o.Ignore, err = ignore.New(append(patterns, f.ignore...)...)
	if err != nil {
		return o, err
	}

	return o, nil
}

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

// Package rewrite applies a rule map to the content of a single file, writing
// it back in its original encoding only when a rule fired.
package rewrite

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/recode/pkg/charset"
	"github.com/walteh/recode/pkg/rules"
	"github.com/walteh/recode/pkg/text"
)

// DefaultBufferSize is the decoded chunk size used for reading.
const DefaultBufferSize = 16 * 1024

// ErrNotRoundTrip marks files whose bytes do not survive a decode and
// re-encode unchanged. Rewriting them would alter unrelated content.
var ErrNotRoundTrip = errors.Base("content does not round trip through its encoding")

// ✂️ ChunkMode selects how rules see content read in chunks
type ChunkMode string

const (
	// ChunkModeBoundaryAware applies the rules to the stitched content, so a
	// match spanning two chunks is found.
	ChunkModeBoundaryAware ChunkMode = "aware"
	// ChunkModeLocal applies the rules to each chunk on its own. A match
	// spanning two chunks is missed.
	ChunkModeLocal ChunkMode = "local"
)

// ParseChunkMode accepts the chunk mode names used on the command line.
func ParseChunkMode(s string) (ChunkMode, error) {
	switch m := ChunkMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ChunkModeBoundaryAware, nil
	case ChunkModeBoundaryAware, ChunkModeLocal:
		return m, nil
	default:
		return "", errors.Errorf("unknown chunk mode %q (want aware or local)", s)
	}
}

// Options configures a Rewriter
type Options struct {
	// BufferSize defaults to DefaultBufferSize.
	BufferSize int
	// ChunkMode defaults to ChunkModeBoundaryAware.
	ChunkMode ChunkMode
	// DryRun computes results without writing. Before and After are only
	// filled in this mode.
	DryRun bool
}

// 📝 Result is the outcome for one file
type Result struct {
	Path         string
	Changed      bool
	Replacements int
	Before       string
	After        string
	Err          error
}

// Failed reports whether the file could not be processed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// ✍️ Rewriter rewrites files in place
type Rewriter struct {
	fs   afero.Fs
	opts Options
}

// 🏭 New creates a Rewriter
func New(fs afero.Fs, opts Options) *Rewriter {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.ChunkMode == "" {
		opts.ChunkMode = ChunkModeBoundaryAware
	}
	return &Rewriter{fs: fs, opts: opts}
}

// Options returns the effective options.
func (r *Rewriter) Options() Options {
	return r.opts
}

// RewriteFile never returns an error directly. Failures are logged, reported
// in Result.Err, and leave the file untouched.
func (r *Rewriter) RewriteFile(ctx context.Context, path string, enc charset.Encoding, m *rules.Map) Result {
	logger := zerolog.Ctx(ctx).With().Str("path", path).Str("encoding", enc.Name()).Logger()

	result := Result{Path: path}

	before, after, count, err := r.transform(path, enc, m)
	if err != nil {
		logger.Error().Err(err).Msg("rewriting file failed")
		result.Err = err
		return result
	}

	if count == 0 {
		logger.Trace().Msg("no rule matched")
		return result
	}

	result.Changed = true
	result.Replacements = count

	if r.opts.DryRun {
		result.Before = before
		result.After = after
		logger.Debug().Int("replacements", count).Msg("would rewrite file")
		return result
	}

	encoded, err := enc.Encode([]byte(after))
	if err != nil {
		logger.Error().Err(err).Msg("encoding rewritten content failed")
		return Result{Path: path, Err: err}
	}

	if err := r.writeAtomic(path, encoded); err != nil {
		logger.Error().Err(err).Msg("writing rewritten content failed")
		return Result{Path: path, Err: err}
	}

	logger.Debug().Int("replacements", count).Msg("rewrote file")
	return result
}

// transform reads and decodes path chunk by chunk and applies the rules
// according to the chunk mode.
func (r *Rewriter) transform(path string, enc charset.Encoding, m *rules.Map) (string, string, int, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return "", "", 0, errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var raw bytes.Buffer
	var src io.Reader = f
	if !enc.Transparent() {
		src = io.TeeReader(f, &raw)
	}
	decoded := enc.NewReader(src)

	var (
		before bytes.Buffer
		after  strings.Builder
		count  int
	)

	chunk := make([]byte, r.opts.BufferSize)
	for {
		n, err := io.ReadFull(decoded, chunk)
		if n > 0 {
			before.Write(chunk[:n])
			if r.opts.ChunkMode == ChunkModeLocal {
				res := text.ReplaceText(string(chunk[:n]), m)
				after.WriteString(res.Content)
				count += res.ReplacementCount
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return "", "", 0, errors.Errorf("decoding %s as %s: %w", path, enc.Name(), err)
		}
	}

	if !enc.Transparent() {
		reencoded, err := enc.Encode(before.Bytes())
		if err != nil {
			return "", "", 0, errors.Errorf("checking %s: %w", path, err)
		}
		if !bytes.Equal(reencoded, raw.Bytes()) {
			return "", "", 0, errors.Errorf("checking %s as %s: %w", path, enc.Name(), ErrNotRoundTrip)
		}
	}

	if r.opts.ChunkMode == ChunkModeLocal {
		return before.String(), after.String(), count, nil
	}

	res := text.ReplaceText(before.String(), m)
	return before.String(), res.Content, res.ReplacementCount, nil
}

// writeAtomic replaces path with content through a sibling temp file so that
// readers see either the old or the new file, never a partial one. The
// original permission bits are kept.
func (r *Rewriter) writeAtomic(path string, content []byte) error {
	info, err := r.fs.Stat(path)
	if err != nil {
		return errors.Errorf("stat %s: %w", path, err)
	}

	tmp, err := afero.TempFile(r.fs, filepath.Dir(path), "."+filepath.Base(path)+".recode-*")
	if err != nil {
		return errors.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = r.fs.Remove(tmpName)
	}

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		cleanup()
		return errors.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Errorf("closing %s: %w", tmpName, err)
	}
	if err := r.fs.Chmod(tmpName, info.Mode().Perm()); err != nil {
		cleanup()
		return errors.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := r.fs.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

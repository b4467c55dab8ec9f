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

package config

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/recode/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// 📖 LoadWords reads a words file from disk
func LoadWords(ctx context.Context, fs afero.Fs, path string) (*rules.Map, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Errorf("expanding words path: %w", err)
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening words file: %w", err)
	}
	defer f.Close()

	m, err := ParseWords(f)
	if err != nil {
		return nil, errors.Errorf("parsing words file %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("rules", m.Len()).Msg("loaded words file")
	return m, nil
}

// 📝 ParseWords parses "old new" lines. Blank lines, lines starting with '#'
// and lines without a space are skipped.
func ParseWords(r io.Reader) (*rules.Map, error) {
	m, _ := rules.New()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}

		if err := m.Set(key, upperFirst(value)); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("scanning: %w", err)
	}

	return m, nil
}

// 💾 WriteWords writes m in the words format, one rule per line.
func WriteWords(w io.Writer, m *rules.Map) error {
	bw := bufio.NewWriter(w)
	for _, r := range m.Rules() {
		if strings.ContainsAny(r.Old, " \n") || strings.Contains(r.New, "\n") {
			return errors.Errorf("rule %q cannot be written in words format", r.Old)
		}
		if _, err := fmt.Fprintf(bw, "%s %s\n", r.Old, r.New); err != nil {
			return errors.Errorf("writing rule: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Errorf("flushing words: %w", err)
	}
	return nil
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return strings.ToUpper(string(r)) + s[size:]
}

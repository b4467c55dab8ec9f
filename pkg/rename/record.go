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
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🧾 Record is the persisted form of a rename run
type Record struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Root      string    `json:"root" yaml:"root"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Files     Mapping   `json:"files" yaml:"files"`
	Dirs      Mapping   `json:"dirs" yaml:"dirs"`
}

// NewRecord stamps a plan with a run identifier and creation time.
func NewRecord(runID ulid.ULID, plan *Plan, now time.Time) *Record {
	rec := &Record{RunID: runID.String(), CreatedAt: now.UTC()}
	if plan != nil {
		rec.Root = plan.Root
		rec.Files = plan.Files
		rec.Dirs = plan.Dirs
	}
	return rec
}

// NewRunID returns a fresh, time ordered run identifier.
func NewRunID(now time.Time) ulid.ULID {
	return ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy())
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// WriteRecord stores rec as JSON when path ends in ".json" and as YAML
// otherwise. Missing parent directories are created.
func WriteRecord(fs afero.Fs, path string, rec *Record) error {
	var buf bytes.Buffer
	if isJSON(path) {
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return errors.Errorf("encoding record: %w", err)
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(rec); err != nil {
			return errors.Errorf("encoding record: %w", err)
		}
		if err := enc.Close(); err != nil {
			return errors.Errorf("encoding record: %w", err)
		}
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Errorf("creating record directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return errors.Errorf("writing record %s: %w", path, err)
	}
	return nil
}

// ReadRecord loads a record written by WriteRecord.
func ReadRecord(fs afero.Fs, path string) (*Record, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading record %s: %w", path, err)
	}

	var rec Record
	if isJSON(path) {
		err = json.Unmarshal(data, &rec)
	} else {
		err = yaml.Unmarshal(data, &rec)
	}
	if err != nil {
		return nil, errors.Errorf("decoding record %s: %w", path, err)
	}
	return &rec, nil
}

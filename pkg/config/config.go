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
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/recode/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config represents a complete rule file
type Config struct {
	Rules      []rules.Rule `json:"rules" yaml:"rules" toml:"rules"`
	Ignore     []string     `json:"ignore,omitempty" yaml:"ignore,omitempty" toml:"ignore,omitempty"`
	Workers    int          `json:"workers,omitempty" yaml:"workers,omitempty" toml:"workers,omitempty"`
	BufferSize int          `json:"buffer_size,omitempty" yaml:"buffer_size,omitempty" toml:"buffer_size,omitempty"`
	ChunkMode  string       `json:"chunk_mode,omitempty" yaml:"chunk_mode,omitempty" toml:"chunk_mode,omitempty"`
	Detector   string       `json:"detector,omitempty" yaml:"detector,omitempty" toml:"detector,omitempty"`
}

// 🎯 Load loads a rule file, choosing the parser by extension
func Load(ctx context.Context, fs afero.Fs, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	path, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Errorf("expanding config path: %w", err)
	}

	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(filepath.Base(path))
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	for i, r := range cfg.Rules {
		if r.Old == "" {
			return errors.Errorf("rule %d: old is required", i)
		}
	}
	for _, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	if cfg.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.BufferSize < 0 {
		return errors.Errorf("buffer_size must not be negative, got %d", cfg.BufferSize)
	}
	cfg.ChunkMode = strings.ToLower(strings.TrimSpace(cfg.ChunkMode))
	cfg.Detector = strings.ToLower(strings.TrimSpace(cfg.Detector))
	return nil
}

// RuleMap returns the rules in file order.
func (cfg *Config) RuleMap() (*rules.Map, error) {
	m, err := rules.New(cfg.Rules...)
	if err != nil {
		return nil, errors.Errorf("building rule map: %w", err)
	}
	return m, nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%d rules, %d ignore patterns", len(cfg.Rules), len(cfg.Ignore))
}

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
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/recode/pkg/rules"
)

func TestLoad(t *testing.T) {
	wantRules := []rules.Rule{
		{Old: "Hello world", New: "hello everyone"},
		{Old: "Hello", New: "hello"},
	}

	tests := []struct {
		name        string
		filename    string
		config      string
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "yaml_config",
			filename: "rules.yaml",
			config: `
rules:
  - old: Hello world
    new: hello everyone
  - old: Hello
    new: hello
ignore:
  - "**/vendor/**"
workers: 8
buffer_size: 4096
chunk_mode: Local
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, wantRules, cfg.Rules, "rules should match")
				assert.Equal(t, []string{"**/vendor/**"}, cfg.Ignore, "ignore should match")
				assert.Equal(t, 8, cfg.Workers, "workers should match")
				assert.Equal(t, 4096, cfg.BufferSize, "buffer size should match")
				assert.Equal(t, "local", cfg.ChunkMode, "chunk mode should be normalised")
			},
		},
		{
			name:     "json_config",
			filename: "rules.json",
			config:   `{"rules":[{"old":"Hello world","new":"hello everyone"},{"old":"Hello","new":"hello"}],"detector":"probe"}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, wantRules, cfg.Rules, "rules should match")
				assert.Equal(t, "probe", cfg.Detector, "detector should match")
			},
		},
		{
			name:     "hcl_config",
			filename: "rules.hcl",
			config: `
rule {
  old = "Hello world"
  new = "hello everyone"
}
rule {
  old = "Hello"
  new = "hello"
}
ignore  = ["build/**"]
workers = 3
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, wantRules, cfg.Rules, "rules should match")
				assert.Equal(t, []string{"build/**"}, cfg.Ignore, "ignore should match")
				assert.Equal(t, 3, cfg.Workers, "workers should match")
			},
		},
		{
			name:     "toml_config",
			filename: "rules.toml",
			config: `
workers = 2

[[rules]]
old = "Hello world"
new = "hello everyone"

[[rules]]
old = "Hello"
new = "hello"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, wantRules, cfg.Rules, "rules should match")
				assert.Equal(t, 2, cfg.Workers, "workers should match")
			},
		},
		{
			name:        "unknown_yaml_field",
			filename:    "rules.yaml",
			config:      "nope: true\n",
			errContains: "parsing YAML",
		},
		{
			name:        "unknown_json_field",
			filename:    "rules.json",
			config:      `{"nope":true}`,
			errContains: "parsing JSON",
		},
		{
			name:        "empty_rule_key",
			filename:    "rules.yaml",
			config:      "rules:\n  - old: \"\"\n    new: x\n",
			errContains: "rule 0: old is required",
		},
		{
			name:        "bad_ignore_glob",
			filename:    "rules.yaml",
			config:      "ignore: [\"[\"]\n",
			errContains: "invalid ignore pattern",
		},
		{
			name:        "negative_workers",
			filename:    "rules.yaml",
			config:      "workers: -1\n",
			errContains: "workers must not be negative",
		},
		{
			name:        "unsupported_extension",
			filename:    "rules.ini",
			config:      "",
			errContains: "no parser found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/cfg/"+tt.filename, []byte(tt.config), 0o644))

			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
			cfg, err := Load(ctx, fs, "/cfg/"+tt.filename)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), afero.NewMemMapFs(), "/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestConfigRuleMap(t *testing.T) {
	cfg := &Config{Rules: []rules.Rule{
		{Old: "a", New: "1"},
		{Old: "b", New: "2"},
		{Old: "a", New: "3"},
	}}

	m, err := cfg.RuleMap()
	require.NoError(t, err)
	assert.Equal(t, []rules.Rule{{Old: "a", New: "3"}, {Old: "b", New: "2"}}, m.Rules())
	assert.Equal(t, "3 rules, 0 ignore patterns", cfg.String())
}

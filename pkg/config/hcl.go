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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/walteh/recode/pkg/rules"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
//
//	rule {
//	  old = "Hello"
//	  new = "hello"
//	}
//	ignore  = ["**/vendor/**"]
//	workers = 20
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "rules.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclConfig struct {
		Rules []struct {
			Old string `hcl:"old"`
			New string `hcl:"new"`
		} `hcl:"rule,block"`
		Ignore     []string `hcl:"ignore,optional"`
		Workers    int      `hcl:"workers,optional"`
		BufferSize int      `hcl:"buffer_size,optional"`
		ChunkMode  string   `hcl:"chunk_mode,optional"`
		Detector   string   `hcl:"detector,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		Ignore:     hclCfg.Ignore,
		Workers:    hclCfg.Workers,
		BufferSize: hclCfg.BufferSize,
		ChunkMode:  hclCfg.ChunkMode,
		Detector:   hclCfg.Detector,
	}
	for _, r := range hclCfg.Rules {
		cfg.Rules = append(cfg.Rules, rules.Rule{Old: r.Old, New: r.New})
	}

	return cfg, nil
}
